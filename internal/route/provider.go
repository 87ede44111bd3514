package route

import (
	"context"
	"errors"

	"trucklog/internal/domain"
)

// ErrRouteUnavailable is returned when the provider cannot resolve a leg.
// Planning that leg must short-circuit; this is an external-dependency failure,
// never an infeasibility result.
var ErrRouteUnavailable = errors.New("route provider unavailable")

// Result is the resolved route for a single origin/destination pair.
type Result struct {
	DistanceMiles float64
	DurationHours float64
	Waypoints     []domain.Location
	Success       bool
	Error         string
}

// Provider resolves distance, duration and waypoints between two points.
// The planner consumes already-resolved routes and never fetches anything
// itself, so implementations own all network and timeout concerns.
type Provider interface {
	GetRoute(ctx context.Context, origin, destination domain.Location) (*Result, error)
}
