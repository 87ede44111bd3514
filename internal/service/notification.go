package service

import (
	"github.com/rs/zerolog/log"

	"trucklog/internal/domain"
)

// NotificationService emits dispatcher-facing notifications for trip lifecycle
// events. The current implementation writes structured log events; a real
// deployment would push to a dispatch channel instead.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyTripPlanned announces a freshly planned trip and any compliance stops
// the schedule carries.
func (s *NotificationService) NotifyTripPlanned(trip *domain.Trip, report domain.FeasibilityReport) {
	if s == nil {
		return
	}
	log.Info().
		Str("trip_id", trip.ID).
		Str("driver_id", trip.DriverID).
		Float64("total_distance_miles", trip.TotalDistanceMiles).
		Float64("total_duration_hours", trip.TotalDurationHours).
		Int("required_breaks", len(report.RequiredBreaks)).
		Time("estimated_arrival", trip.EstimatedArrival).
		Msg("trip planned")
}

// NotifyTripInfeasible announces a trip that cannot be scheduled as requested.
func (s *NotificationService) NotifyTripInfeasible(driverID string, report domain.FeasibilityReport) {
	if s == nil {
		return
	}
	ev := log.Warn().
		Str("driver_id", driverID).
		Int("violations", len(report.Violations))
	if len(report.Violations) > 0 {
		ev = ev.Str("first_violation", report.Violations[0].Message)
	}
	ev.Msg("trip infeasible")
}

// NotifyTripCompleted announces a completed trip.
func (s *NotificationService) NotifyTripCompleted(trip *domain.Trip) {
	if s == nil {
		return
	}
	log.Info().
		Str("trip_id", trip.ID).
		Str("driver_id", trip.DriverID).
		Time("completed_at", trip.CompletedAt).
		Msg("trip completed")
}
