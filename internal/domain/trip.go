package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusPlanned    TripStatus = "PLANNED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// LegKind distinguishes the unloaded run to the pickup from the loaded run.
type LegKind string

const (
	LegKindDeadhead LegKind = "DEADHEAD"
	LegKindLoaded   LegKind = "LOADED"
)

// RouteLeg is one resolved segment of a route. Legs chain head-to-tail: the
// destination of leg i is the origin of leg i+1.
type RouteLeg struct {
	Kind          LegKind
	Origin        Location
	Destination   Location
	DistanceMiles float64
	DurationHours float64
	Waypoints     []Location
}

// Trip represents a planned or completed trip in the system.
type Trip struct {
	ID                 string
	DriverID           string
	Status             TripStatus
	CurrentLocation    Location
	PickupLocation     Location
	DeliveryLocation   Location
	DepartureTime      time.Time
	EstimatedArrival   time.Time
	TotalDistanceMiles float64
	TotalDurationHours float64 // including inserted breaks and resets
	CreatedAt          time.Time
	CompletedAt        time.Time
}
