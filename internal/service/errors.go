package service

import "errors"

var (
	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidDriverName is returned when a driver's name is empty.
	ErrInvalidDriverName = errors.New("invalid driver name")

	// ErrInvalidLocation is returned when location coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidDepartureTime is returned when a trip has no departure time.
	ErrInvalidDepartureTime = errors.New("invalid departure time")

	// ErrInvalidDutyStatus is returned when a status change names an unknown status.
	ErrInvalidDutyStatus = errors.New("invalid duty status")

	// ErrDriverHasActiveTrip is returned when a driver already has an active trip.
	ErrDriverHasActiveTrip = errors.New("driver already has an active trip")

	// ErrDriverStateBusy is returned when a driver's cycle state is locked by
	// another update.
	ErrDriverStateBusy = errors.New("driver state update already in progress")

	// ErrTripNotActive is returned when completing a trip that is not planned
	// or in progress.
	ErrTripNotActive = errors.New("trip not active")

	// ErrTripAlreadyCompleted is returned when completing a completed trip.
	ErrTripAlreadyCompleted = errors.New("trip already completed")
)
