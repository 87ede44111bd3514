package logbook

import (
	"math"
	"testing"
	"time"

	"trucklog/internal/domain"
	"trucklog/internal/hos"
)

func newTestSegmenter() *Segmenter {
	return New(hos.NewEngine(hos.DefaultLimits()), DefaultConfig())
}

func period(status domain.DutyStatus, start time.Time, hours float64) domain.DutyPeriod {
	return domain.DutyPeriod{
		ID:     "p-" + start.Format("150405"),
		Status: status,
		Start:  start,
		End:    start.Add(time.Duration(hours * float64(time.Hour))),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBuildDailyLogs_MidnightCrosserSplitsIntoBothDays(t *testing.T) {
	t.Parallel()
	s := newTestSegmenter()

	start := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	logs := s.BuildDailyLogs([]domain.DutyPeriod{
		period(domain.DutyStatusDriving, start, 2.5), // 23:00 to 01:30
	})

	if len(logs) != 2 {
		t.Fatalf("expected two daily logs, got %d", len(logs))
	}

	day1, day2 := logs[0], logs[1]
	if !day1.Date.Before(day2.Date) {
		t.Error("daily logs must be ordered by date")
	}

	if len(day1.Periods) != 1 || !day1.Periods[0].End.Equal(day2.Date) {
		t.Error("first half must end exactly at midnight")
	}
	if len(day2.Periods) != 1 || !day2.Periods[0].Start.Equal(day2.Date) {
		t.Error("second half must start exactly at midnight")
	}
	if day1.Periods[0].Status != domain.DutyStatusDriving || day2.Periods[0].Status != domain.DutyStatusDriving {
		t.Error("both halves inherit the original status")
	}

	if !approx(day1.Totals[domain.DutyStatusDriving], 1) {
		t.Errorf("expected 1 driving hour on day one, got %.2f", day1.Totals[domain.DutyStatusDriving])
	}
	if !approx(day2.Totals[domain.DutyStatusDriving], 1.5) {
		t.Errorf("expected 1.5 driving hours on day two, got %.2f", day2.Totals[domain.DutyStatusDriving])
	}
}

func TestBuildDailyLogs_EveryDaySumsToTwentyFourHours(t *testing.T) {
	t.Parallel()
	s := newTestSegmenter()

	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	drive1 := period(domain.DutyStatusDriving, start, 8)
	rest := period(domain.DutyStatusOffDuty, drive1.End, 0.5)
	drive2 := period(domain.DutyStatusDriving, rest.End, 3)
	reset := period(domain.DutyStatusSleeperBerth, drive2.End, 10)
	drive3 := period(domain.DutyStatusDriving, reset.End, 5)

	logs := s.BuildDailyLogs([]domain.DutyPeriod{drive1, rest, drive2, reset, drive3})
	if len(logs) < 2 {
		t.Fatalf("expected the schedule to span multiple days, got %d", len(logs))
	}

	for _, dl := range logs {
		var sum float64
		for _, h := range dl.Totals {
			sum += h
		}
		if !approx(sum, 24) {
			t.Errorf("day %s totals sum to %.2f, want 24", dl.Date.Format("2006-01-02"), sum)
		}
		for _, v := range dl.Report.Violations {
			if v.Type == domain.ViolationDailyTimeAccounting {
				t.Errorf("day %s reported a time accounting violation", dl.Date.Format("2006-01-02"))
			}
		}
	}
}

func TestBuildDailyLogs_GridDefaultsToOffDuty(t *testing.T) {
	t.Parallel()
	s := newTestSegmenter()

	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	logs := s.BuildDailyLogs([]domain.DutyPeriod{
		period(domain.DutyStatusDriving, start, 4),
	})
	if len(logs) != 1 {
		t.Fatalf("expected one daily log, got %d", len(logs))
	}

	grid := logs[0].Grid
	if len(grid) != 96 {
		t.Fatalf("expected a 96-point grid, got %d", len(grid))
	}

	// 08:00 is point 32; midnight through 07:45 is uncovered.
	if grid[0] != domain.DutyStatusOffDuty {
		t.Errorf("uncovered points default to off-duty, got %s", grid[0])
	}
	if grid[32] != domain.DutyStatusDriving {
		t.Errorf("expected driving at 08:00, got %s", grid[32])
	}
	if grid[47] != domain.DutyStatusDriving { // 11:45, last point before noon
		t.Errorf("expected driving at 11:45, got %s", grid[47])
	}
	if grid[48] != domain.DutyStatusOffDuty { // 12:00, period has ended
		t.Errorf("expected off-duty at 12:00, got %s", grid[48])
	}
}

func TestBuildDailyLogs_UncoveredGapInsideSpanWarns(t *testing.T) {
	t.Parallel()
	s := newTestSegmenter()

	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	first := period(domain.DutyStatusDriving, start, 2)
	// One-hour hole, then more driving.
	second := period(domain.DutyStatusDriving, first.End.Add(time.Hour), 2)

	logs := s.BuildDailyLogs([]domain.DutyPeriod{first, second})
	if len(logs[0].Report.Warnings) == 0 {
		t.Error("expected a warning about uncovered points inside the scheduled span")
	}
}

func TestSplitAtMidnights_DistanceModes(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	crosser := period(domain.DutyStatusDriving, start, 2.5)
	crosser.DistanceMiles = 125

	firstSeg := New(hos.NewEngine(hos.DefaultLimits()), Config{
		GridResolutionMinutes: 15,
		DistanceSplitMode:     SplitModeFirstSegment,
	})
	out := firstSeg.splitAtMidnights([]domain.DutyPeriod{crosser})
	if len(out) != 2 {
		t.Fatalf("expected two halves, got %d", len(out))
	}
	if !approx(out[0].DistanceMiles, 125) || !approx(out[1].DistanceMiles, 0) {
		t.Errorf("first-segment mode: got %.1f / %.1f", out[0].DistanceMiles, out[1].DistanceMiles)
	}

	proportional := New(hos.NewEngine(hos.DefaultLimits()), Config{
		GridResolutionMinutes: 15,
		DistanceSplitMode:     SplitModeProportional,
	})
	out = proportional.splitAtMidnights([]domain.DutyPeriod{crosser})
	// 1 of 2.5 hours before midnight.
	if !approx(out[0].DistanceMiles, 50) || !approx(out[1].DistanceMiles, 75) {
		t.Errorf("proportional mode: got %.1f / %.1f", out[0].DistanceMiles, out[1].DistanceMiles)
	}
}

func TestSplitAtMidnights_MultiDayPeriod(t *testing.T) {
	t.Parallel()
	s := newTestSegmenter()

	// A 50-hour stretch crosses two midnights and yields three pieces.
	start := time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)
	out := s.splitAtMidnights([]domain.DutyPeriod{
		period(domain.DutyStatusSleeperBerth, start, 50),
	})
	if len(out) != 3 {
		t.Fatalf("expected three pieces, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if !out[i].Start.Equal(out[i-1].End) {
			t.Error("split pieces must remain contiguous")
		}
	}
	if !out[len(out)-1].End.Equal(start.Add(50 * time.Hour)) {
		t.Error("last piece must preserve the original end")
	}
}

func TestBuildDailyLogs_CompliantDayGradesHigh(t *testing.T) {
	t.Parallel()
	s := newTestSegmenter()

	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	drive1 := period(domain.DutyStatusDriving, start, 5)
	rest := period(domain.DutyStatusOffDuty, drive1.End, 0.5)
	drive2 := period(domain.DutyStatusDriving, rest.End, 4)

	logs := s.BuildDailyLogs([]domain.DutyPeriod{drive1, rest, drive2})
	report := logs[0].Report
	if !report.Compliant {
		t.Fatalf("expected a compliant day, got %v", report.Violations)
	}
	if report.Score != 100 || report.Grade != "A+" {
		t.Errorf("expected a perfect score, got %d (%s)", report.Score, report.Grade)
	}
	if report.ScheduledBreaks != 1 {
		t.Errorf("expected one scheduled break, got %d", report.ScheduledBreaks)
	}
}

func TestBuildDailyLogs_OverdrivingDayIsViolated(t *testing.T) {
	t.Parallel()
	s := newTestSegmenter()

	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	drive1 := period(domain.DutyStatusDriving, start, 8)
	rest := period(domain.DutyStatusOffDuty, drive1.End, 0.5)
	drive2 := period(domain.DutyStatusDriving, rest.End, 4) // 12 driving hours total

	logs := s.BuildDailyLogs([]domain.DutyPeriod{drive1, rest, drive2})
	report := logs[0].Report
	if report.Compliant {
		t.Fatal("expected a daily driving violation")
	}
	found := false
	for _, v := range report.Violations {
		if v.Type == domain.ViolationDailyDrivingLimit {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a daily driving limit violation, got %v", report.Violations)
	}
	if report.Score >= 100 {
		t.Error("violations must cost score")
	}
}
