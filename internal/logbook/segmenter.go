package logbook

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"trucklog/internal/domain"
	"trucklog/internal/hos"
)

// SplitMode controls how a midnight-crossing period's distance is attributed.
type SplitMode string

const (
	// SplitModeFirstSegment keeps all traveled miles on the first half and
	// attributes zero to the second, matching the leg-relative distance
	// bookkeeping used elsewhere in the system.
	SplitModeFirstSegment SplitMode = "first_segment"

	// SplitModeProportional splits miles by time share across the boundary.
	SplitModeProportional SplitMode = "proportional"
)

// Config holds the segmenter's knobs.
type Config struct {
	GridResolutionMinutes int
	DistanceSplitMode     SplitMode
}

// DefaultConfig returns the ELD-standard 15-minute grid and the
// source-compatible distance split.
func DefaultConfig() Config {
	return Config{
		GridResolutionMinutes: 15,
		DistanceSplitMode:     SplitModeFirstSegment,
	}
}

// DailyLog is one calendar day of a trip rendered for certification: the
// day's periods, the fixed-resolution grid, per-status totals and the per-day
// compliance report.
type DailyLog struct {
	Date    time.Time // midnight of the day, in the periods' zone
	Periods []domain.DutyPeriod
	Grid    []domain.DutyStatus
	Totals  map[domain.DutyStatus]float64 // hours
	Report  domain.ComplianceReport
}

// Segmenter partitions duty periods into legally formatted daily logs.
type Segmenter struct {
	engine *hos.Engine
	cfg    Config
}

// New creates a segmenter using the given engine and configuration.
func New(engine *hos.Engine, cfg Config) *Segmenter {
	return &Segmenter{engine: engine, cfg: cfg}
}

// BuildDailyLogs groups periods by calendar day, splitting midnight crossers,
// and validates each day. Input order does not matter.
func (s *Segmenter) BuildDailyLogs(periods []domain.DutyPeriod) []DailyLog {
	split := s.splitAtMidnights(periods)

	byDay := make(map[time.Time][]domain.DutyPeriod)
	for _, p := range split {
		day := dayOf(p.Start)
		byDay[day] = append(byDay[day], p)
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	logs := make([]DailyLog, 0, len(days))
	for _, day := range days {
		dayPeriods := byDay[day]
		sort.Slice(dayPeriods, func(i, j int) bool { return dayPeriods[i].Start.Before(dayPeriods[j].Start) })
		logs = append(logs, s.buildDay(day, dayPeriods))
	}
	return logs
}

// splitAtMidnights cuts every period crossing a calendar-day boundary into
// synthetic periods, each inheriting status, locations and remark. Distance
// attribution follows the configured split mode.
func (s *Segmenter) splitAtMidnights(periods []domain.DutyPeriod) []domain.DutyPeriod {
	var out []domain.DutyPeriod
	for _, p := range periods {
		for p.End.After(midnightAfter(p.Start)) {
			boundary := midnightAfter(p.Start)

			first := p
			first.ID = uuid.New().String()
			first.End = boundary

			second := p
			second.ID = uuid.New().String()
			second.Start = boundary

			switch s.cfg.DistanceSplitMode {
			case SplitModeProportional:
				share := first.Hours() / p.Hours()
				first.DistanceMiles = p.DistanceMiles * share
				second.DistanceMiles = p.DistanceMiles - first.DistanceMiles
			default:
				first.DistanceMiles = p.DistanceMiles
				second.DistanceMiles = 0
			}

			out = append(out, first)
			p = second
		}
		out = append(out, p)
	}
	return out
}

// buildDay renders the grid, totals and compliance report for one day.
func (s *Segmenter) buildDay(day time.Time, periods []domain.DutyPeriod) DailyLog {
	points := 24 * 60 / s.cfg.GridResolutionMinutes
	step := time.Duration(s.cfg.GridResolutionMinutes) * time.Minute
	pointHours := float64(s.cfg.GridResolutionMinutes) / 60

	grid := make([]domain.DutyStatus, points)
	totals := map[domain.DutyStatus]float64{
		domain.DutyStatusOffDuty:      0,
		domain.DutyStatusSleeperBerth: 0,
		domain.DutyStatusDriving:      0,
		domain.DutyStatusOnDuty:       0,
	}

	uncoveredInSpan := 0
	spanStart, spanEnd := coveredSpan(periods)

	for i := 0; i < points; i++ {
		instant := day.Add(time.Duration(i) * step)
		status, covered := statusAt(periods, instant)
		grid[i] = status
		totals[status] += pointHours
		if !covered && !spanStart.IsZero() && !instant.Before(spanStart) && instant.Before(spanEnd) {
			uncoveredInSpan++
		}
	}

	var violations []domain.Violation
	var warnings []string

	if uncoveredInSpan > 0 {
		warnings = append(warnings, fmt.Sprintf("%d grid points inside the scheduled span have no covering period", uncoveredInSpan))
	}

	if check := s.engine.ValidateDailyDriving(totals[domain.DutyStatusDriving]); !check.Compliant {
		violations = append(violations, violationFor(domain.ViolationDailyDrivingLimit, check, "driving"))
	}
	onDuty := totals[domain.DutyStatusDriving] + totals[domain.DutyStatusOnDuty]
	if check := s.engine.ValidateDailyOnDuty(onDuty); !check.Compliant {
		violations = append(violations, violationFor(domain.ViolationDailyOnDutyLimit, check, "on-duty"))
	}
	rest := totals[domain.DutyStatusOffDuty] + totals[domain.DutyStatusSleeperBerth]
	if check := s.engine.ValidateOffDuty(rest); !check.Compliant {
		violations = append(violations, domain.Violation{
			Type:        domain.ViolationInsufficientOffDuty,
			Severity:    domain.SeverityMajor,
			Message:     fmt.Sprintf("only %.2f off-duty hours in the day; %.0f required", rest, check.LimitHours),
			ActualHours: check.ActualHours,
			LimitHours:  check.LimitHours,
			Shortfall:   check.ViolationHours,
		})
	}

	breakCheck := s.engine.ValidateBreakRequirement(periods)
	violations = append(violations, breakCheck.Violations...)

	// 24-hour accounting. Totals are derived from the grid, so a mismatch
	// means the grid itself is malformed; surface it, never correct it.
	var sum float64
	for _, h := range totals {
		sum += h
	}
	if sum < 23.9 || sum > 24.1 {
		violations = append(violations, domain.Violation{
			Type:        domain.ViolationDailyTimeAccounting,
			Severity:    domain.SeverityMinor,
			Message:     fmt.Sprintf("daily status totals sum to %.2f hours, expected 24", sum),
			ActualHours: sum,
			LimitHours:  24,
		})
	}

	report := s.engine.ReportFrom(violations, warnings)
	report.ScheduledBreaks = breakCheck.BreaksTaken

	return DailyLog{
		Date:    day,
		Periods: periods,
		Grid:    grid,
		Totals:  totals,
		Report:  report,
	}
}

// statusAt returns the duty status active at the instant, defaulting to
// off-duty for uncovered points.
func statusAt(periods []domain.DutyPeriod, instant time.Time) (domain.DutyStatus, bool) {
	for _, p := range periods {
		if !instant.Before(p.Start) && instant.Before(p.End) {
			return p.Status, true
		}
	}
	return domain.DutyStatusOffDuty, false
}

func coveredSpan(periods []domain.DutyPeriod) (time.Time, time.Time) {
	if len(periods) == 0 {
		return time.Time{}, time.Time{}
	}
	return periods[0].Start, periods[len(periods)-1].End
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func midnightAfter(t time.Time) time.Time {
	return dayOf(t).Add(24 * time.Hour)
}

func violationFor(vt domain.ViolationType, check hos.LimitCheck, label string) domain.Violation {
	return domain.Violation{
		Type:        vt,
		Severity:    domain.SeverityCritical,
		Message:     fmt.Sprintf("daily %s hours %.2f exceed the %.0f-hour limit", label, check.ActualHours, check.LimitHours),
		ActualHours: check.ActualHours,
		LimitHours:  check.LimitHours,
		Shortfall:   check.ViolationHours,
	}
}
