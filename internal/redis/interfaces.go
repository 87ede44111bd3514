package redis

import (
	"context"
	"time"

	"trucklog/internal/domain"
)

// FeasibilityCacheInterface defines the interface for feasibility memoization.
type FeasibilityCacheInterface interface {
	GetFeasibility(ctx context.Context, key string) (*domain.FeasibilityReport, error)
	SetFeasibility(ctx context.Context, key string, report *domain.FeasibilityReport) error
}

// LockStoreInterface defines the interface for per-driver distributed locking.
type LockStoreInterface interface {
	AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error)
	ReleaseDriverLock(ctx context.Context, driverID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ FeasibilityCacheInterface = (*CacheStore)(nil)
	_ LockStoreInterface        = (*LockStore)(nil)
)
