package repository

import (
	"context"

	"trucklog/internal/domain"
)

// PeriodRepository defines the persistence operations for duty periods.
type PeriodRepository interface {
	// CreateBatch persists all duty periods of a trip.
	CreateBatch(ctx context.Context, periods []domain.DutyPeriod) error

	// GetByTripID retrieves a trip's periods ordered by start time.
	GetByTripID(ctx context.Context, tripID string) ([]domain.DutyPeriod, error)

	// DeleteByTripID removes all periods of a trip (used when re-planning).
	DeleteByTripID(ctx context.Context, tripID string) error
}
