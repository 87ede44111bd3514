package domain

import "time"

// StopType represents the purpose of a stop along a planned route.
type StopType string

const (
	StopTypePickup         StopType = "PICKUP"
	StopTypeDelivery       StopType = "DELIVERY"
	StopTypeFuel           StopType = "FUEL"
	StopTypeMandatoryBreak StopType = "MANDATORY_BREAK"
	StopTypeDailyReset     StopType = "DAILY_RESET"
	StopTypeRest           StopType = "REST"
	StopTypeFuelAndBreak   StopType = "FUEL_AND_BREAK"
)

// DutyStatus returns the duty status a driver is in while stopped.
func (t StopType) DutyStatus() DutyStatus {
	switch t {
	case StopTypePickup, StopTypeDelivery:
		return DutyStatusOnDuty
	case StopTypeDailyReset:
		return DutyStatusSleeperBerth
	default:
		// fuel, mandatory break, rest, combined fuel+break
		return DutyStatusOffDuty
	}
}

// Stop is a point along a route where the truck is not moving.
type Stop struct {
	ID                      string
	TripID                  string
	Type                    StopType
	Sequence                int // strictly increasing, unique per trip
	Location                Location
	DistanceFromOriginMiles float64 // non-decreasing across sequence
	ArrivalTime             time.Time
	DepartureTime           time.Time
	Duration                time.Duration
	RequiredForCompliance   bool
	Remark                  string
}
