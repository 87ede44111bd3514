package postgres

import (
	"context"
	"database/sql"

	"trucklog/internal/domain"
	"trucklog/internal/repository"
)

// StopRepository is a PostgreSQL implementation of repository.StopRepository.
type StopRepository struct {
	q Querier
}

// NewStopRepository creates a new PostgreSQL stop repository.
func NewStopRepository(db *sql.DB) *StopRepository {
	return &StopRepository{q: db}
}

// NewStopRepositoryWithTx creates a stop repository using a transaction.
func NewStopRepositoryWithTx(tx *sql.Tx) *StopRepository {
	return &StopRepository{q: tx}
}

// CreateBatch persists all stops of a trip.
func (r *StopRepository) CreateBatch(ctx context.Context, stops []domain.Stop) error {
	query := `
		INSERT INTO stops (
			id, trip_id, type, sequence,
			lat, lng, address,
			distance_from_origin_miles,
			arrival_time, departure_time, duration_seconds,
			required_for_compliance, remark
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, stop := range stops {
		_, err := r.q.ExecContext(ctx, query,
			stop.ID,
			stop.TripID,
			stop.Type,
			stop.Sequence,
			stop.Location.Lat, stop.Location.Lng, stop.Location.Address,
			stop.DistanceFromOriginMiles,
			stop.ArrivalTime,
			stop.DepartureTime,
			int64(stop.Duration.Seconds()),
			stop.RequiredForCompliance,
			stop.Remark,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByTripID retrieves a trip's stops ordered by sequence.
func (r *StopRepository) GetByTripID(ctx context.Context, tripID string) ([]domain.Stop, error) {
	query := `
		SELECT id, trip_id, type, sequence,
		       lat, lng, address,
		       distance_from_origin_miles,
		       arrival_time, departure_time, duration_seconds,
		       required_for_compliance, remark
		FROM stops WHERE trip_id = $1 ORDER BY sequence
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		var stop domain.Stop
		var durationSeconds int64

		if err := rows.Scan(
			&stop.ID,
			&stop.TripID,
			&stop.Type,
			&stop.Sequence,
			&stop.Location.Lat, &stop.Location.Lng, &stop.Location.Address,
			&stop.DistanceFromOriginMiles,
			&stop.ArrivalTime,
			&stop.DepartureTime,
			&durationSeconds,
			&stop.RequiredForCompliance,
			&stop.Remark,
		); err != nil {
			return nil, err
		}

		stop.Duration = secondsToDuration(durationSeconds)
		stops = append(stops, stop)
	}

	return stops, rows.Err()
}

// DeleteByTripID removes all stops of a trip.
func (r *StopRepository) DeleteByTripID(ctx context.Context, tripID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM stops WHERE trip_id = $1`, tripID)
	return err
}

// Ensure StopRepository implements repository.StopRepository.
var _ repository.StopRepository = (*StopRepository)(nil)
