package planner

import (
	"trucklog/internal/domain"
)

// OptimizeResult reports what an optimization pass actually achieved.
type OptimizeResult struct {
	Improved     bool
	Message      string
	StopsRemoved int
	Schedule     *Schedule
}

// Optimize attempts to reduce the stop count of a fully planned schedule by
// combining spatially close fuel and break stops that synthesis did not merge.
// The pass is idempotent. Feasibility is re-validated afterward: if the merge
// would introduce new break violations, or nothing merges, the original
// schedule is kept and the pass honestly reports no improvement.
func (p *Planner) Optimize(sched *Schedule) *OptimizeResult {
	if sched == nil || len(sched.Stops) < 2 {
		return &OptimizeResult{Improved: false, Message: "no improvement", Schedule: sched}
	}

	drafts := draftsFromStops(sched)
	merged := mergeDrafts(drafts, p.cfg.MergeBufferMiles)
	if len(merged) == len(drafts) {
		return &OptimizeResult{Improved: false, Message: "no improvement", Schedule: sched}
	}

	tripID := ""
	if len(sched.Stops) > 0 {
		tripID = sched.Stops[0].TripID
	}
	stops, periods, end := p.synthesize(tripID, sched.Departure, sched.Origin, merged)

	before := p.engine.ValidateBreakRequirement(sched.Periods)
	after := p.engine.ValidateBreakRequirement(periods)
	if len(after.Violations) > len(before.Violations) || contiguityViolation(periods) != nil {
		return &OptimizeResult{Improved: false, Message: "no improvement", Schedule: sched}
	}

	// Refresh the carried report against the merged schedule: the break scan
	// over the new periods replaces the original's, and feasibility follows
	// the refreshed violation list.
	refreshed := sched.Feasibility
	refreshed.Violations = append([]domain.Violation(nil), after.Violations...)
	refreshed.Feasible = len(refreshed.Violations) == 0

	optimized := &Schedule{
		Departure:          sched.Departure,
		Origin:             sched.Origin,
		Stops:              stops,
		Periods:            periods,
		Feasibility:        refreshed,
		TotalDistanceMiles: sched.TotalDistanceMiles,
		TotalDurationHours: end.Sub(sched.Departure).Hours(),
		EstimatedArrival:   end,
	}

	return &OptimizeResult{
		Improved:     true,
		Message:      "combined nearby fuel and break stops",
		StopsRemoved: len(drafts) - len(merged),
		Schedule:     optimized,
	}
}

// draftsFromStops reconstructs draft candidates from a planned schedule,
// recovering each stop's cumulative driving offset from its timestamps.
func draftsFromStops(sched *Schedule) []stopDraft {
	drafts := make([]stopDraft, 0, len(sched.Stops))
	prevDeparture := sched.Departure
	var driveOffset float64
	for _, s := range sched.Stops {
		driveOffset += s.ArrivalTime.Sub(prevDeparture).Hours()
		drafts = append(drafts, stopDraft{
			Type:               s.Type,
			DriveOffsetHours:   driveOffset,
			Duration:           s.Duration,
			DistanceFromOrigin: s.DistanceFromOriginMiles,
			Location:           s.Location,
			Required:           s.RequiredForCompliance,
			Remark:             s.Remark,
		})
		prevDeparture = s.DepartureTime
	}
	return drafts
}
