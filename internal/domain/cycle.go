package domain

import "time"

// CycleState is a driver's rolling hours-of-service state. One row per driver,
// created lazily on first reference and never deleted while the driver exists.
// Updates must be serialized per driver.
type CycleState struct {
	DriverID               string
	CycleStartDate         time.Time // start of the current 8-day cycle
	CycleOnDutyHours       float64   // cumulative on-duty hours used in the cycle
	CurrentDate            time.Time // calendar date the "today" counters refer to
	TodayDrivingHours      float64
	TodayOnDutyHours       float64
	CurrentStatus          DutyStatus
	CurrentStatusSince     time.Time
	LastBreakEnd           *time.Time // end of the last qualifying (>=30 min) break
	ContinuousDrivingSince *time.Time // nil after any qualifying break
	UpdatedAt              time.Time
}

// DailyRecord is an archived day of a driver's HOS history, written when the
// daily rollover zeroes the "today" counters.
type DailyRecord struct {
	ID           string
	DriverID     string
	Date         time.Time
	DrivingHours float64
	OnDutyHours  float64
	OffDutyHours float64
}
