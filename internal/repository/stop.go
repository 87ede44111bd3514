package repository

import (
	"context"

	"trucklog/internal/domain"
)

// StopRepository defines the persistence operations for planned stops.
type StopRepository interface {
	// CreateBatch persists all stops of a trip.
	CreateBatch(ctx context.Context, stops []domain.Stop) error

	// GetByTripID retrieves a trip's stops ordered by sequence.
	GetByTripID(ctx context.Context, tripID string) ([]domain.Stop, error)

	// DeleteByTripID removes all stops of a trip (used when re-planning).
	DeleteByTripID(ctx context.Context, tripID string) error
}
