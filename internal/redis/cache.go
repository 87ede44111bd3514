package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trucklog/internal/domain"
)

// CacheStore handles feasibility-report caching in Redis. Feasibility is a
// deterministic function of its inputs, so entries within the TTL window are
// acceptable even when slightly stale.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	FeasibilityCacheTTL = 5 * time.Minute  // inputs rarely change mid-planning
	CycleCacheTTL       = 30 * time.Second // cycle state mutates on every status change
)

// Key prefixes
const (
	feasibilityCachePrefix = "cache:feasibility:"
	cycleCachePrefix       = "cache:cycle:"
)

// FeasibilityKey builds a deterministic cache key over the semantic inputs of
// a feasibility check: trip identity, estimated hours, leg durations,
// departure time and the fuel-stop distance. Identical inputs hash
// identically, preserving cache-hit behavior across calls.
func FeasibilityKey(tripID string, estimatedDrivingHours float64, legDurations []float64, departure time.Time, maxFuelDistance float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%.4f|%d|%.1f", tripID, estimatedDrivingHours, departure.Unix(), maxFuelDistance)
	for _, d := range legDurations {
		fmt.Fprintf(h, "|%.4f", d)
	}
	return feasibilityCachePrefix + hex.EncodeToString(h.Sum(nil))
}

// GetFeasibility retrieves a cached feasibility report. A nil report with a
// nil error is a cache miss.
func (s *CacheStore) GetFeasibility(ctx context.Context, key string) (*domain.FeasibilityReport, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var report domain.FeasibilityReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SetFeasibility stores a feasibility report under the given key.
func (s *CacheStore) SetFeasibility(ctx context.Context, key string, report *domain.FeasibilityReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, FeasibilityCacheTTL).Err()
}

// CachedCycleState is a cached snapshot of a driver's rolling HOS state.
type CachedCycleState struct {
	DriverID               string     `json:"driver_id"`
	CycleOnDutyHours       float64    `json:"cycle_on_duty_hours"`
	TodayDrivingHours      float64    `json:"today_driving_hours"`
	TodayOnDutyHours       float64    `json:"today_on_duty_hours"`
	CurrentStatus          string     `json:"current_status"`
	CurrentStatusSince     time.Time  `json:"current_status_since"`
	ContinuousDrivingSince *time.Time `json:"continuous_driving_since,omitempty"`
	LastBreakEnd           *time.Time `json:"last_break_end,omitempty"`
}

// GetCycleState retrieves a driver's cached cycle state.
func (s *CacheStore) GetCycleState(ctx context.Context, driverID string) (*CachedCycleState, error) {
	key := cycleCachePrefix + driverID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var state CachedCycleState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SetCycleState stores a driver's cycle state in cache.
func (s *CacheStore) SetCycleState(ctx context.Context, state *CachedCycleState) error {
	key := cycleCachePrefix + state.DriverID
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, CycleCacheTTL).Err()
}

// InvalidateCycleState removes a driver's cycle state from cache.
func (s *CacheStore) InvalidateCycleState(ctx context.Context, driverID string) error {
	key := cycleCachePrefix + driverID
	return s.client.Del(ctx, key).Err()
}
