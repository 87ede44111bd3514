package domain

import "time"

// DutyStatus represents a driver's duty status on the ELD log.
type DutyStatus string

const (
	DutyStatusOffDuty      DutyStatus = "OFF_DUTY"
	DutyStatusSleeperBerth DutyStatus = "SLEEPER_BERTH"
	DutyStatusDriving      DutyStatus = "DRIVING"
	DutyStatusOnDuty       DutyStatus = "ON_DUTY_NOT_DRIVING"
)

// Location is a resolved point along a route.
type Location struct {
	Lat     float64
	Lng     float64
	Address string
}

// DutyPeriod is a half-open interval [Start, End) spent in a single duty status.
// Periods belonging to one trip are contiguous and non-overlapping once the
// planner has resolved the schedule.
type DutyPeriod struct {
	ID            string
	TripID        string
	Status        DutyStatus
	Start         time.Time
	End           time.Time
	StartLocation Location
	EndLocation   Location
	DistanceMiles float64 // driving periods only
	Remark        string
	RelatedStopID string // stop whose time window produced this period, if any
}

// Duration returns the length of the period.
func (p DutyPeriod) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// Hours returns the length of the period in fractional hours.
func (p DutyPeriod) Hours() float64 {
	return p.End.Sub(p.Start).Hours()
}
