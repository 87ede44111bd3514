package hos

import (
	"fmt"
	"sort"
	"time"

	"trucklog/internal/domain"
)

// Dwell time charged for pickup and delivery when the caller does not supply
// its own on-duty overhead.
const DefaultTerminalDwellHours = 2.0 // 1h pickup + 1h delivery

// Engine evaluates duty periods and hour totals against a set of HOS limits.
// All methods are pure: the engine never mutates its inputs and never fails on
// out-of-range numbers (they are clamped and surfaced as warnings).
type Engine struct {
	limits Limits
}

// NewEngine creates an engine bound to the given limits.
func NewEngine(limits Limits) *Engine {
	return &Engine{limits: limits}
}

// Limits returns the ruleset the engine was built with.
func (e *Engine) Limits() Limits {
	return e.limits
}

// LimitCheck is the result of a single daily-limit validation.
type LimitCheck struct {
	Compliant      bool
	ActualHours    float64
	LimitHours     float64
	ViolationHours float64 // how far past the limit (zero when compliant)
	RemainingHours float64 // budget left under the limit (zero when violated)
	Warnings       []string
}

// ValidateDailyDriving checks hours against the daily driving limit.
// Exactly at the limit is compliant.
func (e *Engine) ValidateDailyDriving(hours float64) LimitCheck {
	return e.checkMax(hours, e.limits.MaxDailyDrivingHours, "daily driving")
}

// ValidateDailyOnDuty checks hours against the daily on-duty window.
func (e *Engine) ValidateDailyOnDuty(hours float64) LimitCheck {
	return e.checkMax(hours, e.limits.MaxDailyOnDutyHours, "daily on-duty")
}

// ValidateOffDuty checks that an off-duty stretch satisfies the daily reset
// minimum. Exactly at the minimum is compliant.
func (e *Engine) ValidateOffDuty(hours float64) LimitCheck {
	hours, warnings := clampHours(hours, "off-duty")
	check := LimitCheck{
		ActualHours: hours,
		LimitHours:  e.limits.MinOffDutyHours,
		Warnings:    warnings,
	}
	if hours < e.limits.MinOffDutyHours {
		check.ViolationHours = e.limits.MinOffDutyHours - hours
		return check
	}
	check.Compliant = true
	check.RemainingHours = hours - e.limits.MinOffDutyHours
	return check
}

func (e *Engine) checkMax(hours, limit float64, label string) LimitCheck {
	hours, warnings := clampHours(hours, label)
	check := LimitCheck{
		ActualHours: hours,
		LimitHours:  limit,
		Warnings:    warnings,
	}
	if hours > limit {
		check.ViolationHours = hours - limit
		return check
	}
	check.Compliant = true
	check.RemainingHours = limit - hours
	return check
}

// clampHours recovers from negative hour inputs by clamping to zero and
// reporting a validation warning, per the engine's failure semantics.
func clampHours(hours float64, label string) (float64, []string) {
	if hours < 0 {
		return 0, []string{fmt.Sprintf("negative %s hours (%.2f) clamped to 0", label, hours)}
	}
	return hours, nil
}

// BreakCheck is the result of scanning periods for the break-after-driving rule.
type BreakCheck struct {
	Compliant   bool
	Violations  []domain.Violation
	BreaksTaken int
}

// ValidateBreakRequirement walks periods in start-time order, accumulating
// continuous driving time. Any off-duty or sleeper-berth period at least as
// long as the qualifying break resets the accumulator. A break is only
// recognized once fully observed; there is no lookahead. When the accumulator
// exceeds the continuous-driving threshold before a qualifying break appears,
// one violation is recorded for that stretch and the accumulator resets so a
// single uncovered stretch yields a single violation.
func (e *Engine) ValidateBreakRequirement(periods []domain.DutyPeriod) BreakCheck {
	ordered := make([]domain.DutyPeriod, len(periods))
	copy(ordered, periods)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start.Before(ordered[j].Start) })

	check := BreakCheck{}
	minBreak := e.limits.MinBreakDuration()
	threshold := e.limits.MaxContinuousDrivingHours

	var continuousStart *time.Time
	var continuousDriving time.Duration

	for _, p := range ordered {
		switch p.Status {
		case domain.DutyStatusDriving:
			if continuousStart == nil {
				start := p.Start
				continuousStart = &start
			}
			continuousDriving += p.Duration()
			if continuousDriving.Hours() > threshold {
				windowStart := *continuousStart
				windowEnd := p.End
				check.Violations = append(check.Violations, domain.Violation{
					Type:        domain.ViolationContinuousDriving,
					Severity:    domain.SeverityMajor,
					Message:     fmt.Sprintf("%.2f hours of continuous driving without a %.0f-minute break", continuousDriving.Hours(), e.limits.MinBreakMinutes),
					ActualHours: continuousDriving.Hours(),
					LimitHours:  threshold,
					Shortfall:   continuousDriving.Hours() - threshold,
					WindowStart: &windowStart,
					WindowEnd:   &windowEnd,
				})
				continuousDriving = 0
				continuousStart = nil
			}
		case domain.DutyStatusOffDuty, domain.DutyStatusSleeperBerth:
			if p.Duration() >= minBreak {
				continuousDriving = 0
				continuousStart = nil
				check.BreaksTaken++
			}
		}
		// on-duty-not-driving neither accumulates nor resets the driving clock
	}

	check.Compliant = len(check.Violations) == 0
	return check
}

// ComputeRequiredBreaks returns the breaks and resets a trip of the given size
// must contain: one qualifying break per full continuous-driving block, and one
// daily reset per full on-duty window beyond the first. Offsets are cumulative
// trip hours. Emission follows the same strict comparison as the limit checks,
// so a trip of exactly one block needs nothing.
func (e *Engine) ComputeRequiredBreaks(totalTripHours, drivingHours float64) []domain.RequiredBreak {
	drivingHours, _ = clampHours(drivingHours, "driving")
	totalTripHours, _ = clampHours(totalTripHours, "trip")

	var out []domain.RequiredBreak
	for i := 1; float64(i)*e.limits.MaxContinuousDrivingHours < drivingHours; i++ {
		out = append(out, domain.RequiredBreak{
			Kind:          domain.BreakKindRest,
			AtHourOffset:  float64(i) * e.limits.MaxContinuousDrivingHours,
			DurationHours: e.limits.MinBreakMinutes / 60,
			Reason:        fmt.Sprintf("%.0f-minute break after %.0f hours of driving", e.limits.MinBreakMinutes, e.limits.MaxContinuousDrivingHours),
		})
	}
	for i := 1; float64(i)*e.limits.MaxDailyOnDutyHours < totalTripHours; i++ {
		out = append(out, domain.RequiredBreak{
			Kind:          domain.BreakKindDailyReset,
			AtHourOffset:  float64(i) * e.limits.MaxDailyOnDutyHours,
			DurationHours: e.limits.MinOffDutyHours,
			Reason:        fmt.Sprintf("%.0f-hour reset after %.0f-hour on-duty window", e.limits.MinOffDutyHours, e.limits.MaxDailyOnDutyHours),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AtHourOffset < out[j].AtHourOffset })
	return out
}

// FeasibilityRequest describes a proposed trip for a feasibility check.
type FeasibilityRequest struct {
	Departure             time.Time
	EstimatedDrivingHours float64
	// OnDutyExtraHours is non-driving on-duty overhead (pickup/delivery dwell).
	OnDutyExtraHours float64
}

// Feasibility tests whether the proposed trip can be completed legally. With a
// snapshot it accounts for the driver's pre-trip state; without one it degrades
// to basic validation and says so in the warnings. Infeasibility is the normal
// output shape, not an error.
func (e *Engine) Feasibility(req FeasibilityRequest, snap *CycleSnapshot) domain.FeasibilityReport {
	driving, warnings := clampHours(req.EstimatedDrivingHours, "estimated driving")

	extra, extraWarnings := clampHours(req.OnDutyExtraHours, "on-duty overhead")
	warnings = append(warnings, extraWarnings...)

	totalOnDuty := driving + extra
	required := e.ComputeRequiredBreaks(totalOnDuty, driving)

	report := domain.FeasibilityReport{
		RemainingDrivingHours: e.limits.MaxDailyDrivingHours,
		RemainingCycleHours:   e.limits.MaxCycleHours,
	}

	if snap == nil {
		warnings = append(warnings, "no current HOS status - basic validation only")
	} else {
		report.RemainingDrivingHours = e.limits.MaxDailyDrivingHours - snap.TodayDrivingHours
		if report.RemainingDrivingHours < 0 {
			report.RemainingDrivingHours = 0
		}
		report.RemainingCycleHours = e.limits.MaxCycleHours - snap.TotalCycleHours
		if report.RemainingCycleHours < 0 {
			report.RemainingCycleHours = 0
		}

		if totalOnDuty > report.RemainingCycleHours {
			report.Violations = append(report.Violations, domain.Violation{
				Type:        domain.ViolationInsufficientCycle,
				Severity:    domain.SeverityCritical,
				Message:     fmt.Sprintf("trip needs %.2f on-duty hours but only %.2f remain in the %d-day cycle", totalOnDuty, report.RemainingCycleHours, e.limits.CycleDays),
				ActualHours: totalOnDuty,
				LimitHours:  report.RemainingCycleHours,
				Shortfall:   totalOnDuty - report.RemainingCycleHours,
			})
		}

		if report.RemainingDrivingHours <= 0 {
			report.Violations = append(report.Violations, domain.Violation{
				Type:        domain.ViolationInsufficientDaily,
				Severity:    domain.SeverityCritical,
				Message:     "no daily driving hours remain; a daily reset is required before departure",
				ActualHours: snap.TodayDrivingHours,
				LimitHours:  e.limits.MaxDailyDrivingHours,
				Shortfall:   driving,
			})
		} else if driving > report.RemainingDrivingHours {
			// Not infeasible: the planner schedules a reset where the daily
			// budget runs out.
			required = append(required, domain.RequiredBreak{
				Kind:          domain.BreakKindDailyReset,
				AtHourOffset:  report.RemainingDrivingHours,
				DurationHours: e.limits.MinOffDutyHours,
				Reason:        "daily driving budget exhausted mid-trip",
			})
			if report.RemainingDrivingHours <= 1 {
				warnings = append(warnings, fmt.Sprintf("only %.2f driving hours remain today; trip will begin with almost no daily budget", report.RemainingDrivingHours))
			}
		}

		if snap.ContinuousDrivingSince != nil {
			continuous := req.Departure.Sub(*snap.ContinuousDrivingSince).Hours()
			if continuous > e.limits.MaxContinuousDrivingHours {
				required = append(required, domain.RequiredBreak{
					Kind:          domain.BreakKindRest,
					AtHourOffset:  0,
					DurationHours: e.limits.MinBreakMinutes / 60,
					Reason:        "immediate break required before departure",
				})
			}
		}
	}

	sort.Slice(required, func(i, j int) bool { return required[i].AtHourOffset < required[j].AtHourOffset })

	var breakHours float64
	for _, rb := range required {
		breakHours += rb.DurationHours
	}

	report.RequiredBreaks = required
	report.Warnings = warnings
	report.TotalTripHours = totalOnDuty + breakHours
	report.Feasible = len(report.Violations) == 0
	if !req.Departure.IsZero() {
		report.EstimatedCompletion = req.Departure.Add(time.Duration(report.TotalTripHours * float64(time.Hour)))
	}
	return report
}
