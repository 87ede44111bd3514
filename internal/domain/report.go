package domain

import "time"

// ViolationType identifies which HOS rule a violation refers to.
type ViolationType string

const (
	ViolationDailyDrivingLimit   ViolationType = "DAILY_DRIVING_LIMIT"
	ViolationDailyOnDutyLimit    ViolationType = "DAILY_ON_DUTY_LIMIT"
	ViolationInsufficientOffDuty ViolationType = "INSUFFICIENT_OFF_DUTY"
	ViolationContinuousDriving   ViolationType = "CONTINUOUS_DRIVING_WITHOUT_BREAK"
	ViolationInsufficientDaily   ViolationType = "INSUFFICIENT_DAILY_DRIVING_HOURS"
	ViolationInsufficientCycle   ViolationType = "INSUFFICIENT_CYCLE_HOURS"
	ViolationDailyTimeAccounting ViolationType = "DAILY_TIME_ACCOUNTING"
	ViolationInvalidInput        ViolationType = "INVALID_INPUT"
)

// ViolationSeverity drives the compliance score penalty.
type ViolationSeverity string

const (
	SeverityCritical ViolationSeverity = "CRITICAL"
	SeverityMajor    ViolationSeverity = "MAJOR"
	SeverityMinor    ViolationSeverity = "MINOR"
	SeverityWarning  ViolationSeverity = "WARNING"
)

// Violation is a single HOS rule violation with the numbers behind it.
type Violation struct {
	Type        ViolationType
	Severity    ViolationSeverity
	Message     string
	ActualHours float64
	LimitHours  float64
	Shortfall   float64 // how far past the limit (or short of the minimum)
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// RequiredBreakKind distinguishes a 30-minute break from a 10-hour reset.
type RequiredBreakKind string

const (
	BreakKindRest       RequiredBreakKind = "BREAK"
	BreakKindDailyReset RequiredBreakKind = "DAILY_RESET"
)

// RequiredBreak is a break or reset the engine demands at a cumulative hour
// offset into the trip. Offset 0 means "before departure".
type RequiredBreak struct {
	Kind          RequiredBreakKind
	AtHourOffset  float64
	DurationHours float64
	Reason        string
}

// FeasibilityReport is the primary output of a feasibility check. Infeasibility
// is not an error: callers must inspect Feasible and the violation list.
type FeasibilityReport struct {
	Feasible              bool
	RequiredBreaks        []RequiredBreak
	Violations            []Violation
	Warnings              []string
	EstimatedCompletion   time.Time
	TotalTripHours        float64 // including inserted breaks and resets
	RemainingDrivingHours float64 // today's budget before the trip starts
	RemainingCycleHours   float64
}

// ComplianceReport aggregates the full check set over a trip or a single day.
type ComplianceReport struct {
	Score           int // 0-100
	Grade           string
	Compliant       bool
	Violations      []Violation
	Warnings        []string
	RequiredBreaks  int
	ScheduledBreaks int
	RequiredResets  int
	ScheduledResets int
}
