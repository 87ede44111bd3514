package postgres

import (
	"context"
	"database/sql"
	"time"

	"trucklog/internal/domain"
	"trucklog/internal/repository"
)

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}

// PeriodRepository is a PostgreSQL implementation of repository.PeriodRepository.
type PeriodRepository struct {
	q Querier
}

// NewPeriodRepository creates a new PostgreSQL period repository.
func NewPeriodRepository(db *sql.DB) *PeriodRepository {
	return &PeriodRepository{q: db}
}

// NewPeriodRepositoryWithTx creates a period repository using a transaction.
func NewPeriodRepositoryWithTx(tx *sql.Tx) *PeriodRepository {
	return &PeriodRepository{q: tx}
}

// CreateBatch persists all duty periods of a trip.
func (r *PeriodRepository) CreateBatch(ctx context.Context, periods []domain.DutyPeriod) error {
	query := `
		INSERT INTO duty_periods (
			id, trip_id, status, start_time, end_time,
			start_lat, start_lng, start_address,
			end_lat, end_lng, end_address,
			distance_miles, remark, related_stop_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, p := range periods {
		var relatedStopID sql.NullString
		if p.RelatedStopID != "" {
			relatedStopID = sql.NullString{String: p.RelatedStopID, Valid: true}
		}

		_, err := r.q.ExecContext(ctx, query,
			p.ID,
			p.TripID,
			p.Status,
			p.Start,
			p.End,
			p.StartLocation.Lat, p.StartLocation.Lng, p.StartLocation.Address,
			p.EndLocation.Lat, p.EndLocation.Lng, p.EndLocation.Address,
			p.DistanceMiles,
			p.Remark,
			relatedStopID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByTripID retrieves a trip's periods ordered by start time.
func (r *PeriodRepository) GetByTripID(ctx context.Context, tripID string) ([]domain.DutyPeriod, error) {
	query := `
		SELECT id, trip_id, status, start_time, end_time,
		       start_lat, start_lng, start_address,
		       end_lat, end_lng, end_address,
		       distance_miles, remark, related_stop_id
		FROM duty_periods WHERE trip_id = $1 ORDER BY start_time
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []domain.DutyPeriod
	for rows.Next() {
		var p domain.DutyPeriod
		var relatedStopID sql.NullString

		if err := rows.Scan(
			&p.ID,
			&p.TripID,
			&p.Status,
			&p.Start,
			&p.End,
			&p.StartLocation.Lat, &p.StartLocation.Lng, &p.StartLocation.Address,
			&p.EndLocation.Lat, &p.EndLocation.Lng, &p.EndLocation.Address,
			&p.DistanceMiles,
			&p.Remark,
			&relatedStopID,
		); err != nil {
			return nil, err
		}

		if relatedStopID.Valid {
			p.RelatedStopID = relatedStopID.String
		}
		periods = append(periods, p)
	}

	return periods, rows.Err()
}

// DeleteByTripID removes all periods of a trip.
func (r *PeriodRepository) DeleteByTripID(ctx context.Context, tripID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM duty_periods WHERE trip_id = $1`, tripID)
	return err
}

// Ensure PeriodRepository implements repository.PeriodRepository.
var _ repository.PeriodRepository = (*PeriodRepository)(nil)
