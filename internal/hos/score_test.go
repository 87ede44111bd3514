package hos

import (
	"testing"

	"trucklog/internal/domain"
)

func TestReportFrom_SeverityWeights(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	violations := []domain.Violation{
		{Type: domain.ViolationDailyDrivingLimit, Severity: domain.SeverityCritical},
		{Type: domain.ViolationContinuousDriving, Severity: domain.SeverityMajor},
		{Type: domain.ViolationDailyTimeAccounting, Severity: domain.SeverityMinor},
		{Type: domain.ViolationInvalidInput, Severity: domain.SeverityWarning},
	}
	warnings := []string{"one advisory"}

	report := engine.ReportFrom(violations, warnings)

	// 100 - 25 - 15 - 5 - 2 - 2 = 51
	if report.Score != 51 {
		t.Errorf("expected score 51, got %d", report.Score)
	}
	if report.Compliant {
		t.Error("report with violations must not be compliant")
	}
	if report.Grade != "F" {
		t.Errorf("expected grade F at 51, got %s", report.Grade)
	}
}

func TestReportFrom_ScoreFloorsAtZero(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	var violations []domain.Violation
	for i := 0; i < 5; i++ {
		violations = append(violations, domain.Violation{Severity: domain.SeverityCritical})
	}

	report := engine.ReportFrom(violations, nil)
	if report.Score != 0 {
		t.Errorf("expected score floor of 0, got %d", report.Score)
	}
}

func TestReportFrom_CleanReport(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	report := engine.ReportFrom(nil, nil)
	if report.Score != 100 || report.Grade != "A+" || !report.Compliant {
		t.Errorf("expected a perfect report, got score=%d grade=%s compliant=%v",
			report.Score, report.Grade, report.Compliant)
	}
}

func TestGradeForScore_Ladder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score int
		grade string
	}{
		{100, "A+"}, {95, "A+"},
		{94, "A"}, {90, "A"},
		{89, "B+"}, {85, "B+"},
		{84, "B"}, {80, "B"},
		{79, "C+"}, {75, "C+"},
		{74, "C"}, {70, "C"},
		{69, "D"}, {65, "D"},
		{64, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		if got := GradeForScore(tc.score); got != tc.grade {
			t.Errorf("GradeForScore(%d) = %s, want %s", tc.score, got, tc.grade)
		}
	}
}

func TestScoreAndReport_AccountsForPreTripHours(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	// 6 hours of trip driving on top of 6 pre-trip hours breaches the daily
	// driving limit even though neither alone would.
	snap := &CycleSnapshot{TodayDrivingHours: 6, TodayOnDutyHours: 6}
	periods := []domain.DutyPeriod{
		period(domain.DutyStatusDriving, testDeparture, 6),
	}

	report := engine.ScoreAndReport(periods, snap)
	if report.Compliant {
		t.Fatal("expected a daily driving violation from combined hours")
	}
	found := false
	for _, v := range report.Violations {
		if v.Type == domain.ViolationDailyDrivingLimit {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a daily driving violation, got %v", report.Violations)
	}
}

func TestScoreAndReport_CountsScheduledResets(t *testing.T) {
	t.Parallel()
	engine := NewEngine(DefaultLimits())

	drive := period(domain.DutyStatusDriving, testDeparture, 4)
	reset := period(domain.DutyStatusSleeperBerth, drive.End, 10)

	report := engine.ScoreAndReport([]domain.DutyPeriod{drive, reset}, nil)
	if report.ScheduledResets != 1 {
		t.Errorf("expected one scheduled reset, got %d", report.ScheduledResets)
	}
	if !report.Compliant {
		t.Errorf("expected a compliant schedule, got %v", report.Violations)
	}
}
