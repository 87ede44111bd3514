package hos

import (
	"math"
	"strings"
	"testing"
	"time"

	"trucklog/internal/domain"
)

var testDeparture = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func period(status domain.DutyStatus, start time.Time, hours float64) domain.DutyPeriod {
	return domain.DutyPeriod{
		Status: status,
		Start:  start,
		End:    start.Add(time.Duration(hours * float64(time.Hour))),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestValidateDailyDriving_ExactlyAtLimitIsCompliant(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	check := engine.ValidateDailyDriving(11.0)
	if !check.Compliant {
		t.Errorf("expected 11.0 hours to be compliant, got violation of %.4f", check.ViolationHours)
	}
	if !approx(check.RemainingHours, 0) {
		t.Errorf("expected zero remaining hours, got %.4f", check.RemainingHours)
	}
}

func TestValidateDailyDriving_JustOverLimit(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	check := engine.ValidateDailyDriving(11.01)
	if check.Compliant {
		t.Fatal("expected 11.01 hours to violate the 11-hour limit")
	}
	if !approx(check.ViolationHours, 0.01) {
		t.Errorf("expected violation of 0.01 hours, got %.4f", check.ViolationHours)
	}
}

func TestValidateDailyDriving_NegativeHoursClampedWithWarning(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	check := engine.ValidateDailyDriving(-3)
	if !check.Compliant {
		t.Error("clamped input should be compliant")
	}
	if check.ActualHours != 0 {
		t.Errorf("expected clamp to 0, got %.2f", check.ActualHours)
	}
	if len(check.Warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(check.Warnings))
	}
}

func TestValidateDailyOnDuty(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	if check := engine.ValidateDailyOnDuty(14.0); !check.Compliant {
		t.Error("expected 14.0 on-duty hours to be compliant")
	}
	if check := engine.ValidateDailyOnDuty(14.5); check.Compliant {
		t.Error("expected 14.5 on-duty hours to violate the window")
	}
}

func TestValidateOffDuty(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	if check := engine.ValidateOffDuty(10.0); !check.Compliant {
		t.Error("expected exactly 10 off-duty hours to qualify as a reset")
	}

	check := engine.ValidateOffDuty(9.5)
	if check.Compliant {
		t.Fatal("expected 9.5 off-duty hours to fall short")
	}
	if !approx(check.ViolationHours, 0.5) {
		t.Errorf("expected shortfall of 0.5, got %.4f", check.ViolationHours)
	}
}

func TestValidateBreakRequirement_ExactlyEightHoursCompliant(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	periods := []domain.DutyPeriod{
		period(domain.DutyStatusDriving, testDeparture, 8),
	}

	check := engine.ValidateBreakRequirement(periods)
	if !check.Compliant {
		t.Error("exactly 8 hours of continuous driving should not violate")
	}
}

func TestValidateBreakRequirement_OverEightHours(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	periods := []domain.DutyPeriod{
		period(domain.DutyStatusDriving, testDeparture, 8.5),
	}

	check := engine.ValidateBreakRequirement(periods)
	if check.Compliant {
		t.Fatal("8.5 hours of continuous driving should violate")
	}
	if len(check.Violations) != 1 {
		t.Fatalf("expected one violation for one stretch, got %d", len(check.Violations))
	}
	v := check.Violations[0]
	if v.Type != domain.ViolationContinuousDriving {
		t.Errorf("unexpected violation type %s", v.Type)
	}
	if !approx(v.Shortfall, 0.5) {
		t.Errorf("expected 0.5 hours past threshold, got %.4f", v.Shortfall)
	}
}

func TestValidateBreakRequirement_QualifyingBreakResetsClock(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	first := period(domain.DutyStatusDriving, testDeparture, 5)
	rest := period(domain.DutyStatusOffDuty, first.End, 0.5)
	second := period(domain.DutyStatusDriving, rest.End, 5)

	check := engine.ValidateBreakRequirement([]domain.DutyPeriod{first, rest, second})
	if !check.Compliant {
		t.Errorf("break between stretches should reset the clock, got %d violations", len(check.Violations))
	}
	if check.BreaksTaken != 1 {
		t.Errorf("expected one qualifying break, got %d", check.BreaksTaken)
	}
}

func TestValidateBreakRequirement_ShortBreakDoesNotReset(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	first := period(domain.DutyStatusDriving, testDeparture, 5)
	rest := period(domain.DutyStatusOffDuty, first.End, 0.25) // 15 minutes
	second := period(domain.DutyStatusDriving, rest.End, 5)

	check := engine.ValidateBreakRequirement([]domain.DutyPeriod{first, rest, second})
	if check.Compliant {
		t.Error("a 15-minute break must not reset the driving clock")
	}
	if check.BreaksTaken != 0 {
		t.Errorf("a short break should not count, got %d", check.BreaksTaken)
	}
}

func TestValidateBreakRequirement_OnDutyNeitherAccumulatesNorResets(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	first := period(domain.DutyStatusDriving, testDeparture, 5)
	loading := period(domain.DutyStatusOnDuty, first.End, 2)
	second := period(domain.DutyStatusDriving, loading.End, 4)

	// 5 + 4 = 9 hours of driving with no qualifying break in between.
	check := engine.ValidateBreakRequirement([]domain.DutyPeriod{first, loading, second})
	if check.Compliant {
		t.Error("on-duty time must not reset the continuous driving clock")
	}
}

func TestValidateBreakRequirement_UnorderedInput(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	first := period(domain.DutyStatusDriving, testDeparture, 5)
	rest := period(domain.DutyStatusOffDuty, first.End, 0.5)
	second := period(domain.DutyStatusDriving, rest.End, 5)

	// Same periods, shuffled.
	check := engine.ValidateBreakRequirement([]domain.DutyPeriod{second, first, rest})
	if !check.Compliant {
		t.Error("validation must sort periods by start time before scanning")
	}
}

func TestComputeRequiredBreaks_ShortTripNeedsNothing(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	// Exactly one continuous-driving block: strict comparison, no break.
	if got := engine.ComputeRequiredBreaks(8, 8); len(got) != 0 {
		t.Errorf("expected no required breaks for an 8-hour trip, got %d", len(got))
	}
}

func TestComputeRequiredBreaks_TenHourTrip(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	got := engine.ComputeRequiredBreaks(10.5, 10)
	if len(got) != 1 {
		t.Fatalf("expected exactly one required break, got %d", len(got))
	}
	if got[0].Kind != domain.BreakKindRest {
		t.Errorf("expected a rest break, got %s", got[0].Kind)
	}
	if !approx(got[0].AtHourOffset, 8) {
		t.Errorf("expected break at hour 8, got %.2f", got[0].AtHourOffset)
	}
	if !approx(got[0].DurationHours, 0.5) {
		t.Errorf("expected 30-minute break, got %.2f hours", got[0].DurationHours)
	}
}

func TestComputeRequiredBreaks_LongTripSortedByOffset(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	got := engine.ComputeRequiredBreaks(24, 20)
	// Breaks at 8 and 16 driving hours, one reset at the 14-hour window.
	if len(got) != 3 {
		t.Fatalf("expected 3 required stops, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].AtHourOffset < got[i-1].AtHourOffset {
			t.Fatal("required breaks must be sorted by offset")
		}
	}
	resets := 0
	for _, rb := range got {
		if rb.Kind == domain.BreakKindDailyReset {
			resets++
		}
	}
	if resets != 1 {
		t.Errorf("expected one daily reset, got %d", resets)
	}
}

func TestFeasibility_NoSnapshotDegradesToBasicValidation(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	report := engine.Feasibility(FeasibilityRequest{
		Departure:             testDeparture,
		EstimatedDrivingHours: 5,
	}, nil)

	if !report.Feasible {
		t.Error("a 5-hour trip with no history must be feasible")
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "basic validation only") {
			found = true
		}
	}
	if !found {
		t.Error("expected a degraded-validation warning when no snapshot is given")
	}
	if !approx(report.RemainingDrivingHours, 11) {
		t.Errorf("expected full daily budget, got %.2f", report.RemainingDrivingHours)
	}
}

func TestFeasibility_NearDailyLimitSchedulesResetInsteadOfRejecting(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	snap := &CycleSnapshot{
		TotalCycleHours:   40,
		TodayDrivingHours: 9.5,
		TodayOnDutyHours:  10,
	}
	report := engine.Feasibility(FeasibilityRequest{
		Departure:             testDeparture,
		EstimatedDrivingHours: 2.5,
	}, snap)

	if !report.Feasible {
		t.Fatalf("trip should be feasible with a scheduled reset, violations: %v", report.Violations)
	}
	if len(report.Violations) != 0 {
		t.Errorf("expected zero violations, got %d", len(report.Violations))
	}
	if !approx(report.RemainingDrivingHours, 1.5) {
		t.Errorf("expected 1.5 remaining driving hours, got %.2f", report.RemainingDrivingHours)
	}

	foundReset := false
	for _, rb := range report.RequiredBreaks {
		if rb.Kind == domain.BreakKindDailyReset && approx(rb.AtHourOffset, 1.5) {
			foundReset = true
		}
	}
	if !foundReset {
		t.Error("expected a daily reset required where the daily budget runs out")
	}
}

func TestFeasibility_ExhaustedDailyBudgetIsInfeasible(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	snap := &CycleSnapshot{
		TotalCycleHours:   40,
		TodayDrivingHours: 11,
	}
	report := engine.Feasibility(FeasibilityRequest{
		Departure:             testDeparture,
		EstimatedDrivingHours: 2,
	}, snap)

	if report.Feasible {
		t.Fatal("expected infeasibility with zero daily driving hours left")
	}
	if len(report.Violations) != 1 || report.Violations[0].Type != domain.ViolationInsufficientDaily {
		t.Errorf("expected a single insufficient-daily violation, got %v", report.Violations)
	}
}

func TestFeasibility_CycleOverrunIsInfeasible(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	snap := &CycleSnapshot{
		TotalCycleHours:   69,
		TodayDrivingHours: 2,
	}
	report := engine.Feasibility(FeasibilityRequest{
		Departure:             testDeparture,
		EstimatedDrivingHours: 3,
	}, snap)

	if report.Feasible {
		t.Fatal("expected infeasibility when the trip overruns the cycle budget")
	}
	found := false
	for _, v := range report.Violations {
		if v.Type == domain.ViolationInsufficientCycle && v.Severity == domain.SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Error("expected a critical insufficient-cycle violation")
	}
}

func TestFeasibility_ImmediateBreakBeforeDeparture(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	since := testDeparture.Add(-9 * time.Hour)
	snap := &CycleSnapshot{
		TotalCycleHours:        20,
		TodayDrivingHours:      2,
		ContinuousDrivingSince: &since,
	}
	report := engine.Feasibility(FeasibilityRequest{
		Departure:             testDeparture,
		EstimatedDrivingHours: 4,
	}, snap)

	if !report.Feasible {
		t.Fatalf("expected feasibility, violations: %v", report.Violations)
	}
	found := false
	for _, rb := range report.RequiredBreaks {
		if rb.Kind == domain.BreakKindRest && rb.AtHourOffset == 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected an immediate break at offset 0")
	}
}

func TestFeasibility_TotalTripHoursIncludeBreaks(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	report := engine.Feasibility(FeasibilityRequest{
		Departure:             testDeparture,
		EstimatedDrivingHours: 10,
		OnDutyExtraHours:      2,
	}, nil)

	// 12 on-duty hours plus one 30-minute break.
	if !approx(report.TotalTripHours, 12.5) {
		t.Errorf("expected 12.5 total trip hours, got %.2f", report.TotalTripHours)
	}
	want := testDeparture.Add(12*time.Hour + 30*time.Minute)
	if !report.EstimatedCompletion.Equal(want) {
		t.Errorf("expected completion at %v, got %v", want, report.EstimatedCompletion)
	}
}

func TestFeasibility_NegativeInputsClampedNotFatal(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	report := engine.Feasibility(FeasibilityRequest{
		Departure:             testDeparture,
		EstimatedDrivingHours: -4,
	}, nil)

	if !report.Feasible {
		t.Error("clamped input must not produce violations")
	}
	if len(report.Warnings) < 2 { // clamp warning + no-snapshot warning
		t.Errorf("expected clamp warning alongside degraded-validation warning, got %v", report.Warnings)
	}
}
