package postgres

import (
	"context"
	"database/sql"
	"errors"

	"trucklog/internal/domain"
	"trucklog/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	id, driver_id, status,
	current_lat, current_lng, current_address,
	pickup_lat, pickup_lng, pickup_address,
	delivery_lat, delivery_lng, delivery_address,
	departure_time, estimated_arrival,
	total_distance_miles, total_duration_hours,
	created_at, completed_at
`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	var completedAt sql.NullTime
	if !trip.CompletedAt.IsZero() {
		completedAt = sql.NullTime{Time: trip.CompletedAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.DriverID,
		trip.Status,
		trip.CurrentLocation.Lat, trip.CurrentLocation.Lng, trip.CurrentLocation.Address,
		trip.PickupLocation.Lat, trip.PickupLocation.Lng, trip.PickupLocation.Address,
		trip.DeliveryLocation.Lat, trip.DeliveryLocation.Lng, trip.DeliveryLocation.Address,
		trip.DepartureTime,
		trip.EstimatedArrival,
		trip.TotalDistanceMiles,
		trip.TotalDurationHours,
		trip.CreatedAt,
		completedAt,
	)

	return err
}

func scanTrip(row interface{ Scan(...any) error }) (*domain.Trip, error) {
	var trip domain.Trip
	var completedAt sql.NullTime

	err := row.Scan(
		&trip.ID,
		&trip.DriverID,
		&trip.Status,
		&trip.CurrentLocation.Lat, &trip.CurrentLocation.Lng, &trip.CurrentLocation.Address,
		&trip.PickupLocation.Lat, &trip.PickupLocation.Lng, &trip.PickupLocation.Address,
		&trip.DeliveryLocation.Lat, &trip.DeliveryLocation.Lng, &trip.DeliveryLocation.Address,
		&trip.DepartureTime,
		&trip.EstimatedArrival,
		&trip.TotalDistanceMiles,
		&trip.TotalDurationHours,
		&trip.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	return &trip, nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// GetAll retrieves all trips.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET status = $1, departure_time = $2, estimated_arrival = $3,
		    total_distance_miles = $4, total_duration_hours = $5, completed_at = $6
		WHERE id = $7
	`

	var completedAt sql.NullTime
	if !trip.CompletedAt.IsZero() {
		completedAt = sql.NullTime{Time: trip.CompletedAt, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		trip.Status,
		trip.DepartureTime,
		trip.EstimatedArrival,
		trip.TotalDistanceMiles,
		trip.TotalDurationHours,
		completedAt,
		trip.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetActiveByDriverID retrieves the planned or in-progress trip for a driver.
// Returns nil if no active trip exists.
func (r *TripRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE driver_id = $1 AND status IN ($2, $3)
		LIMIT 1
	`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, driverID, domain.TripStatusPlanned, domain.TripStatusInProgress))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
