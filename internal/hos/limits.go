package hos

import (
	"time"

	"trucklog/internal/domain"
)

// Limits holds the numeric HOS regulatory constants. They are configuration,
// not hard-coded: alternate duty-cycle rulesets inject their own values.
type Limits struct {
	MaxDailyDrivingHours      float64 // driving per day
	MaxDailyOnDutyHours       float64 // on-duty window per day
	MinOffDutyHours           float64 // daily reset length
	MaxContinuousDrivingHours float64 // driving allowed before a break
	MinBreakMinutes           float64 // qualifying break length
	MaxCycleHours             float64 // rolling cycle on-duty budget
	CycleDays                 int     // rolling cycle length
}

// DefaultLimits returns the US federal property-carrying ruleset.
func DefaultLimits() Limits {
	return Limits{
		MaxDailyDrivingHours:      11,
		MaxDailyOnDutyHours:       14,
		MinOffDutyHours:           10,
		MaxContinuousDrivingHours: 8,
		MinBreakMinutes:           30,
		MaxCycleHours:             70,
		CycleDays:                 8,
	}
}

// MinBreakDuration returns the qualifying break length as a time.Duration.
func (l Limits) MinBreakDuration() time.Duration {
	return time.Duration(l.MinBreakMinutes * float64(time.Minute))
}

// CycleSnapshot is a driver's pre-trip HOS state, taken from the cycle state
// tracker. A nil snapshot degrades the engine to basic (stateless) validation.
type CycleSnapshot struct {
	TotalCycleHours        float64
	TodayDrivingHours      float64
	TodayOnDutyHours       float64
	CurrentDutyStatus      domain.DutyStatus
	CurrentStatusStart     time.Time
	ContinuousDrivingSince *time.Time
	LastBreakEnd           *time.Time
}

// SnapshotFromState builds an engine snapshot from a tracked cycle state.
func SnapshotFromState(cs *domain.CycleState) *CycleSnapshot {
	if cs == nil {
		return nil
	}
	return &CycleSnapshot{
		TotalCycleHours:        cs.CycleOnDutyHours,
		TodayDrivingHours:      cs.TodayDrivingHours,
		TodayOnDutyHours:       cs.TodayOnDutyHours,
		CurrentDutyStatus:      cs.CurrentStatus,
		CurrentStatusStart:     cs.CurrentStatusSince,
		ContinuousDrivingSince: cs.ContinuousDrivingSince,
		LastBreakEnd:           cs.LastBreakEnd,
	}
}
