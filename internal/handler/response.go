package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trucklog/internal/repository"
	"trucklog/internal/route"
	"trucklog/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// The error is also attached to the gin context for logging and APM middleware.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidDriverName),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidDepartureTime),
		errors.Is(err, service.ErrInvalidDutyStatus):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrDriverHasActiveTrip),
		errors.Is(err, service.ErrDriverStateBusy),
		errors.Is(err, service.ErrTripNotActive),
		errors.Is(err, service.ErrTripAlreadyCompleted):
		return http.StatusConflict

	// Upstream route provider failures
	case errors.Is(err, route.ErrRouteUnavailable):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
