package hos

import (
	"fmt"

	"trucklog/internal/domain"
)

// Score penalties per violation severity.
const (
	penaltyCritical = 25
	penaltyMajor    = 15
	penaltyMinor    = 5
	penaltyWarning  = 2
)

// ScoreAndReport runs the full check set over a period list plus the driver's
// starting conditions and produces a weighted compliance report.
func (e *Engine) ScoreAndReport(periods []domain.DutyPeriod, snap *CycleSnapshot) domain.ComplianceReport {
	var startDriving, startOnDuty float64
	if snap != nil {
		startDriving = snap.TodayDrivingHours
		startOnDuty = snap.TodayOnDutyHours
	}

	var drivingHours, onDutyHours float64
	for _, p := range periods {
		switch p.Status {
		case domain.DutyStatusDriving:
			drivingHours += p.Hours()
			onDutyHours += p.Hours()
		case domain.DutyStatusOnDuty:
			onDutyHours += p.Hours()
		}
	}

	var violations []domain.Violation
	var warnings []string

	if check := e.ValidateDailyDriving(startDriving + drivingHours); !check.Compliant {
		violations = append(violations, violationFromCheck(domain.ViolationDailyDrivingLimit, check, "driving"))
	} else {
		warnings = append(warnings, check.Warnings...)
	}
	if check := e.ValidateDailyOnDuty(startOnDuty + onDutyHours); !check.Compliant {
		violations = append(violations, violationFromCheck(domain.ViolationDailyOnDutyLimit, check, "on-duty"))
	} else {
		warnings = append(warnings, check.Warnings...)
	}

	breakCheck := e.ValidateBreakRequirement(periods)
	violations = append(violations, breakCheck.Violations...)

	required := e.ComputeRequiredBreaks(startOnDuty+onDutyHours, startDriving+drivingHours)
	requiredBreaks, requiredResets := 0, 0
	for _, rb := range required {
		if rb.Kind == domain.BreakKindDailyReset {
			requiredResets++
		} else {
			requiredBreaks++
		}
	}

	scheduledResets := 0
	for _, p := range periods {
		if p.Status != domain.DutyStatusOffDuty && p.Status != domain.DutyStatusSleeperBerth {
			continue
		}
		if p.Hours() >= e.limits.MinOffDutyHours {
			scheduledResets++
		}
	}

	report := e.ReportFrom(violations, warnings)
	report.RequiredBreaks = requiredBreaks
	report.ScheduledBreaks = breakCheck.BreaksTaken
	report.RequiredResets = requiredResets
	report.ScheduledResets = scheduledResets
	return report
}

// ReportFrom computes the weighted score and grade over an assembled set of
// violations and warnings. Exposed so the daily log segmenter can fold its own
// per-day checks into the same scoring scheme.
func (e *Engine) ReportFrom(violations []domain.Violation, warnings []string) domain.ComplianceReport {
	score := 100
	for _, v := range violations {
		switch v.Severity {
		case domain.SeverityCritical:
			score -= penaltyCritical
		case domain.SeverityMajor:
			score -= penaltyMajor
		case domain.SeverityMinor:
			score -= penaltyMinor
		case domain.SeverityWarning:
			score -= penaltyWarning
		}
	}
	score -= penaltyWarning * len(warnings)
	if score < 0 {
		score = 0
	}

	return domain.ComplianceReport{
		Score:      score,
		Grade:      GradeForScore(score),
		Compliant:  len(violations) == 0,
		Violations: violations,
		Warnings:   warnings,
	}
}

// GradeForScore maps a compliance score to the letter grade shown on the log.
func GradeForScore(score int) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 85:
		return "B+"
	case score >= 80:
		return "B"
	case score >= 75:
		return "C+"
	case score >= 70:
		return "C"
	case score >= 65:
		return "D"
	default:
		return "F"
	}
}

func violationFromCheck(vt domain.ViolationType, check LimitCheck, label string) domain.Violation {
	return domain.Violation{
		Type:        vt,
		Severity:    domain.SeverityCritical,
		Message:     fmt.Sprintf("daily %s hours %.2f exceed the %.0f-hour limit", label, check.ActualHours, check.LimitHours),
		ActualHours: check.ActualHours,
		LimitHours:  check.LimitHours,
		Shortfall:   check.ViolationHours,
	}
}
