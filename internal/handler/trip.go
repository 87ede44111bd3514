package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trucklog/internal/domain"
	"trucklog/internal/service"
)

// TripHandler handles HTTP requests for trip planning and lifecycle.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// LocationBody is a location in request and response bodies.
type LocationBody struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// PlanTripRequest is the HTTP request body for planning a trip.
type PlanTripRequest struct {
	DriverID         string       `json:"driver_id"`
	CurrentLocation  LocationBody `json:"current_location"`
	PickupLocation   LocationBody `json:"pickup_location"`
	DeliveryLocation LocationBody `json:"delivery_location"`
	DepartureTime    time.Time    `json:"departure_time"`
}

// FeasibilityCheckRequest is the HTTP request body for a feasibility check.
type FeasibilityCheckRequest struct {
	DriverID         string       `json:"driver_id"`
	CurrentLocation  LocationBody `json:"current_location"`
	PickupLocation   LocationBody `json:"pickup_location"`
	DeliveryLocation LocationBody `json:"delivery_location"`
	DepartureTime    time.Time    `json:"departure_time"`
}

// ViolationResponse is one HOS violation in a response body.
type ViolationResponse struct {
	Type        string     `json:"type"`
	Severity    string     `json:"severity"`
	Message     string     `json:"message"`
	ActualHours float64    `json:"actual_hours,omitempty"`
	LimitHours  float64    `json:"limit_hours,omitempty"`
	Shortfall   float64    `json:"shortfall,omitempty"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
}

// RequiredBreakResponse is one demanded break or reset in a response body.
type RequiredBreakResponse struct {
	Kind          string  `json:"kind"`
	AtHourOffset  float64 `json:"at_hour_offset"`
	DurationHours float64 `json:"duration_hours"`
	Reason        string  `json:"reason"`
}

// FeasibilityResponse is the HTTP representation of a feasibility report.
type FeasibilityResponse struct {
	Feasible              bool                    `json:"feasible"`
	RequiredBreaks        []RequiredBreakResponse `json:"required_breaks"`
	Violations            []ViolationResponse     `json:"violations"`
	Warnings              []string                `json:"warnings"`
	EstimatedCompletion   time.Time               `json:"estimated_completion"`
	TotalTripHours        float64                 `json:"total_trip_hours"`
	RemainingDrivingHours float64                 `json:"remaining_driving_hours"`
	RemainingCycleHours   float64                 `json:"remaining_cycle_hours"`
}

// StopResponse is one scheduled stop in a response body.
type StopResponse struct {
	ID                      string       `json:"id"`
	Type                    string       `json:"type"`
	Sequence                int          `json:"sequence"`
	Location                LocationBody `json:"location"`
	DistanceFromOriginMiles float64      `json:"distance_from_origin_miles"`
	ArrivalTime             time.Time    `json:"arrival_time"`
	DepartureTime           time.Time    `json:"departure_time"`
	DurationMinutes         float64      `json:"duration_minutes"`
	RequiredForCompliance   bool         `json:"required_for_compliance"`
	Remark                  string       `json:"remark,omitempty"`
}

// PeriodResponse is one duty period in a response body.
type PeriodResponse struct {
	ID            string       `json:"id"`
	Status        string       `json:"status"`
	Start         time.Time    `json:"start"`
	End           time.Time    `json:"end"`
	StartLocation LocationBody `json:"start_location"`
	EndLocation   LocationBody `json:"end_location"`
	DistanceMiles float64      `json:"distance_miles"`
	Remark        string       `json:"remark,omitempty"`
	RelatedStopID string       `json:"related_stop_id,omitempty"`
}

// TripResponse is the HTTP response for trip data.
type TripResponse struct {
	ID                 string       `json:"id"`
	DriverID           string       `json:"driver_id"`
	Status             string       `json:"status"`
	CurrentLocation    LocationBody `json:"current_location"`
	PickupLocation     LocationBody `json:"pickup_location"`
	DeliveryLocation   LocationBody `json:"delivery_location"`
	DepartureTime      time.Time    `json:"departure_time"`
	EstimatedArrival   time.Time    `json:"estimated_arrival"`
	TotalDistanceMiles float64      `json:"total_distance_miles"`
	TotalDurationHours float64      `json:"total_duration_hours"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
}

// PlanTripResponse is the HTTP response for a planning request.
type PlanTripResponse struct {
	Trip        *TripResponse       `json:"trip,omitempty"`
	Stops       []StopResponse      `json:"stops"`
	Periods     []PeriodResponse    `json:"periods"`
	Feasibility FeasibilityResponse `json:"feasibility"`
}

// OptimizeTripResponse is the HTTP response for an optimization request.
type OptimizeTripResponse struct {
	Improved     bool             `json:"improved"`
	Message      string           `json:"message"`
	StopsRemoved int              `json:"stops_removed"`
	Trip         *TripResponse    `json:"trip,omitempty"`
	Stops        []StopResponse   `json:"stops"`
	Periods      []PeriodResponse `json:"periods"`
}

func locationBodyFrom(loc domain.Location) LocationBody {
	return LocationBody{Lat: loc.Lat, Lng: loc.Lng, Address: loc.Address}
}

func (b LocationBody) toDomain() domain.Location {
	return domain.Location{Lat: b.Lat, Lng: b.Lng, Address: b.Address}
}

func violationResponsesFrom(violations []domain.Violation) []ViolationResponse {
	out := make([]ViolationResponse, 0, len(violations))
	for _, v := range violations {
		out = append(out, ViolationResponse{
			Type:        string(v.Type),
			Severity:    string(v.Severity),
			Message:     v.Message,
			ActualHours: v.ActualHours,
			LimitHours:  v.LimitHours,
			Shortfall:   v.Shortfall,
			WindowStart: v.WindowStart,
			WindowEnd:   v.WindowEnd,
		})
	}
	return out
}

func feasibilityResponseFrom(report domain.FeasibilityReport) FeasibilityResponse {
	breaks := make([]RequiredBreakResponse, 0, len(report.RequiredBreaks))
	for _, b := range report.RequiredBreaks {
		breaks = append(breaks, RequiredBreakResponse{
			Kind:          string(b.Kind),
			AtHourOffset:  b.AtHourOffset,
			DurationHours: b.DurationHours,
			Reason:        b.Reason,
		})
	}
	warnings := report.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return FeasibilityResponse{
		Feasible:              report.Feasible,
		RequiredBreaks:        breaks,
		Violations:            violationResponsesFrom(report.Violations),
		Warnings:              warnings,
		EstimatedCompletion:   report.EstimatedCompletion,
		TotalTripHours:        report.TotalTripHours,
		RemainingDrivingHours: report.RemainingDrivingHours,
		RemainingCycleHours:   report.RemainingCycleHours,
	}
}

func stopResponsesFrom(stops []domain.Stop) []StopResponse {
	out := make([]StopResponse, 0, len(stops))
	for _, s := range stops {
		out = append(out, StopResponse{
			ID:                      s.ID,
			Type:                    string(s.Type),
			Sequence:                s.Sequence,
			Location:                locationBodyFrom(s.Location),
			DistanceFromOriginMiles: s.DistanceFromOriginMiles,
			ArrivalTime:             s.ArrivalTime,
			DepartureTime:           s.DepartureTime,
			DurationMinutes:         s.Duration.Minutes(),
			RequiredForCompliance:   s.RequiredForCompliance,
			Remark:                  s.Remark,
		})
	}
	return out
}

func periodResponsesFrom(periods []domain.DutyPeriod) []PeriodResponse {
	out := make([]PeriodResponse, 0, len(periods))
	for _, p := range periods {
		out = append(out, PeriodResponse{
			ID:            p.ID,
			Status:        string(p.Status),
			Start:         p.Start,
			End:           p.End,
			StartLocation: locationBodyFrom(p.StartLocation),
			EndLocation:   locationBodyFrom(p.EndLocation),
			DistanceMiles: p.DistanceMiles,
			Remark:        p.Remark,
			RelatedStopID: p.RelatedStopID,
		})
	}
	return out
}

func tripResponseFrom(trip *domain.Trip) *TripResponse {
	if trip == nil {
		return nil
	}
	resp := &TripResponse{
		ID:                 trip.ID,
		DriverID:           trip.DriverID,
		Status:             string(trip.Status),
		CurrentLocation:    locationBodyFrom(trip.CurrentLocation),
		PickupLocation:     locationBodyFrom(trip.PickupLocation),
		DeliveryLocation:   locationBodyFrom(trip.DeliveryLocation),
		DepartureTime:      trip.DepartureTime,
		EstimatedArrival:   trip.EstimatedArrival,
		TotalDistanceMiles: trip.TotalDistanceMiles,
		TotalDurationHours: trip.TotalDurationHours,
	}
	if !trip.CompletedAt.IsZero() {
		t := trip.CompletedAt
		resp.CompletedAt = &t
	}
	return resp
}

// Plan handles POST /v1/trips/plan
func (h *TripHandler) Plan(c *gin.Context) {
	var req PlanTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.tripService.PlanTrip(c.Request.Context(), service.PlanTripRequest{
		DriverID:         req.DriverID,
		CurrentLocation:  req.CurrentLocation.toDomain(),
		PickupLocation:   req.PickupLocation.toDomain(),
		DeliveryLocation: req.DeliveryLocation.toDomain(),
		DepartureTime:    req.DepartureTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := PlanTripResponse{
		Trip:        tripResponseFrom(result.Trip),
		Stops:       stopResponsesFrom(result.Stops),
		Periods:     periodResponsesFrom(result.Periods),
		Feasibility: feasibilityResponseFrom(result.Feasibility),
	}

	// An infeasible trip is reported, not created.
	if result.Trip == nil {
		respondJSON(c, http.StatusUnprocessableEntity, resp)
		return
	}
	respondJSON(c, http.StatusCreated, resp)
}

// CheckFeasibility handles POST /v1/feasibility
func (h *TripHandler) CheckFeasibility(c *gin.Context) {
	var req FeasibilityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	report, err := h.tripService.CheckFeasibility(c.Request.Context(), service.FeasibilityRequest{
		DriverID:         req.DriverID,
		CurrentLocation:  req.CurrentLocation.toDomain(),
		PickupLocation:   req.PickupLocation.toDomain(),
		DeliveryLocation: req.DeliveryLocation.toDomain(),
		DepartureTime:    req.DepartureTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, feasibilityResponseFrom(*report))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.GetAllTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]*TripResponse, 0, len(trips))
	for _, t := range trips {
		response = append(response, tripResponseFrom(t))
	}
	respondJSON(c, http.StatusOK, response)
}

// Get handles GET /v1/trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	detail, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PlanTripResponse{
		Trip:    tripResponseFrom(detail.Trip),
		Stops:   stopResponsesFrom(detail.Stops),
		Periods: periodResponsesFrom(detail.Periods),
	})
}

// Complete handles POST /v1/trips/:id/complete
func (h *TripHandler) Complete(c *gin.Context) {
	trip, err := h.tripService.CompleteTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponseFrom(trip))
}

// Optimize handles POST /v1/trips/:id/optimize
func (h *TripHandler) Optimize(c *gin.Context) {
	result, err := h.tripService.OptimizeTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, OptimizeTripResponse{
		Improved:     result.Improved,
		Message:      result.Message,
		StopsRemoved: result.StopsRemoved,
		Trip:         tripResponseFrom(result.Trip),
		Stops:        stopResponsesFrom(result.Stops),
		Periods:      periodResponsesFrom(result.Periods),
	})
}
