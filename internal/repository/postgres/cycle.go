package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"trucklog/internal/domain"
	"trucklog/internal/repository"
)

// CycleRepository is a PostgreSQL implementation of repository.CycleRepository.
type CycleRepository struct {
	q Querier
}

// NewCycleRepository creates a new PostgreSQL cycle repository.
func NewCycleRepository(db *sql.DB) *CycleRepository {
	return &CycleRepository{q: db}
}

// NewCycleRepositoryWithTx creates a cycle repository using a transaction.
func NewCycleRepositoryWithTx(tx *sql.Tx) *CycleRepository {
	return &CycleRepository{q: tx}
}

// GetByDriverID retrieves a driver's cycle state.
// Returns nil if the driver has no state yet.
func (r *CycleRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.CycleState, error) {
	query := `
		SELECT driver_id, cycle_start_date, cycle_on_duty_hours, current_date_tracked,
		       today_driving_hours, today_on_duty_hours,
		       current_status, current_status_since,
		       last_break_end, continuous_driving_since, updated_at
		FROM cycle_states WHERE driver_id = $1
	`

	var state domain.CycleState
	var lastBreakEnd sql.NullTime
	var continuousSince sql.NullTime

	err := r.q.QueryRowContext(ctx, query, driverID).Scan(
		&state.DriverID,
		&state.CycleStartDate,
		&state.CycleOnDutyHours,
		&state.CurrentDate,
		&state.TodayDrivingHours,
		&state.TodayOnDutyHours,
		&state.CurrentStatus,
		&state.CurrentStatusSince,
		&lastBreakEnd,
		&continuousSince,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if lastBreakEnd.Valid {
		t := lastBreakEnd.Time
		state.LastBreakEnd = &t
	}
	if continuousSince.Valid {
		t := continuousSince.Time
		state.ContinuousDrivingSince = &t
	}

	return &state, nil
}

// Save creates or replaces a driver's cycle state.
func (r *CycleRepository) Save(ctx context.Context, state *domain.CycleState) error {
	query := `
		INSERT INTO cycle_states (
			driver_id, cycle_start_date, cycle_on_duty_hours, current_date_tracked,
			today_driving_hours, today_on_duty_hours,
			current_status, current_status_since,
			last_break_end, continuous_driving_since, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (driver_id) DO UPDATE SET
			cycle_start_date = EXCLUDED.cycle_start_date,
			cycle_on_duty_hours = EXCLUDED.cycle_on_duty_hours,
			current_date_tracked = EXCLUDED.current_date_tracked,
			today_driving_hours = EXCLUDED.today_driving_hours,
			today_on_duty_hours = EXCLUDED.today_on_duty_hours,
			current_status = EXCLUDED.current_status,
			current_status_since = EXCLUDED.current_status_since,
			last_break_end = EXCLUDED.last_break_end,
			continuous_driving_since = EXCLUDED.continuous_driving_since,
			updated_at = EXCLUDED.updated_at
	`

	var lastBreakEnd sql.NullTime
	if state.LastBreakEnd != nil {
		lastBreakEnd = sql.NullTime{Time: *state.LastBreakEnd, Valid: true}
	}
	var continuousSince sql.NullTime
	if state.ContinuousDrivingSince != nil {
		continuousSince = sql.NullTime{Time: *state.ContinuousDrivingSince, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		state.DriverID,
		state.CycleStartDate,
		state.CycleOnDutyHours,
		state.CurrentDate,
		state.TodayDrivingHours,
		state.TodayOnDutyHours,
		state.CurrentStatus,
		state.CurrentStatusSince,
		lastBreakEnd,
		continuousSince,
		state.UpdatedAt,
	)

	return err
}

// CreateDailyRecord archives one day of a driver's history.
func (r *CycleRepository) CreateDailyRecord(ctx context.Context, record *domain.DailyRecord) error {
	query := `
		INSERT INTO daily_records (id, driver_id, date, driving_hours, on_duty_hours, off_duty_hours)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		record.ID,
		record.DriverID,
		record.Date,
		record.DrivingHours,
		record.OnDutyHours,
		record.OffDutyHours,
	)

	return err
}

// GetDailyRecords retrieves a driver's archived days on or after since.
func (r *CycleRepository) GetDailyRecords(ctx context.Context, driverID string, since time.Time) ([]domain.DailyRecord, error) {
	query := `
		SELECT id, driver_id, date, driving_hours, on_duty_hours, off_duty_hours
		FROM daily_records
		WHERE driver_id = $1 AND date >= $2
		ORDER BY date
	`

	rows, err := r.q.QueryContext(ctx, query, driverID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.DailyRecord
	for rows.Next() {
		var record domain.DailyRecord
		if err := rows.Scan(
			&record.ID,
			&record.DriverID,
			&record.Date,
			&record.DrivingHours,
			&record.OnDutyHours,
			&record.OffDutyHours,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Ensure CycleRepository implements repository.CycleRepository.
var _ repository.CycleRepository = (*CycleRepository)(nil)
