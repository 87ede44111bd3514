package repository

import (
	"context"
	"time"

	"trucklog/internal/domain"
)

// CycleRepository defines the persistence operations for rolling HOS state.
type CycleRepository interface {
	// GetByDriverID retrieves a driver's cycle state.
	// Returns nil if the driver has no state yet.
	GetByDriverID(ctx context.Context, driverID string) (*domain.CycleState, error)

	// Save creates or replaces a driver's cycle state.
	Save(ctx context.Context, state *domain.CycleState) error

	// CreateDailyRecord archives one day of a driver's history.
	CreateDailyRecord(ctx context.Context, record *domain.DailyRecord) error

	// GetDailyRecords retrieves a driver's archived days on or after since,
	// ordered by date.
	GetDailyRecords(ctx context.Context, driverID string, since time.Time) ([]domain.DailyRecord, error)
}
