package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trucklog/internal/domain"
	"trucklog/internal/service"
)

// DriverHandler handles HTTP requests for drivers and their HOS state.
type DriverHandler struct {
	driverService *service.DriverService
	cycleService  *service.CycleService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, cycleService *service.CycleService) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
		cycleService:  cycleService,
	}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	CreatedAt     string `json:"created_at"`
}

// CycleStateResponse is the HTTP response for a driver's HOS state.
type CycleStateResponse struct {
	DriverID               string     `json:"driver_id"`
	CycleStartDate         string     `json:"cycle_start_date"`
	CycleOnDutyHours       float64    `json:"cycle_on_duty_hours"`
	CurrentDate            string     `json:"current_date"`
	TodayDrivingHours      float64    `json:"today_driving_hours"`
	TodayOnDutyHours       float64    `json:"today_on_duty_hours"`
	CurrentStatus          string     `json:"current_status"`
	CurrentStatusSince     time.Time  `json:"current_status_since"`
	LastBreakEnd           *time.Time `json:"last_break_end,omitempty"`
	ContinuousDrivingSince *time.Time `json:"continuous_driving_since,omitempty"`
}

// ChangeStatusRequest is the HTTP request body for a duty-status change.
type ChangeStatusRequest struct {
	Status string     `json:"status"`
	At     *time.Time `json:"at,omitempty"`
}

func driverResponseFrom(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		LicenseNumber: d.LicenseNumber,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
	}
}

func cycleStateResponseFrom(state *domain.CycleState) CycleStateResponse {
	return CycleStateResponse{
		DriverID:               state.DriverID,
		CycleStartDate:         state.CycleStartDate.Format("2006-01-02"),
		CycleOnDutyHours:       state.CycleOnDutyHours,
		CurrentDate:            state.CurrentDate.Format("2006-01-02"),
		TodayDrivingHours:      state.TodayDrivingHours,
		TodayOnDutyHours:       state.TodayOnDutyHours,
		CurrentStatus:          string(state.CurrentStatus),
		CurrentStatusSince:     state.CurrentStatusSince,
		LastBreakEnd:           state.LastBreakEnd,
		ContinuousDrivingSince: state.ContinuousDrivingSince,
	}
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	driver, err := h.driverService.RegisterDriver(c.Request.Context(), service.RegisterDriverRequest{
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverResponseFrom(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.GetAllDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, driverResponseFrom(d))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetCycleState handles GET /v1/drivers/:id/cycle
func (h *DriverHandler) GetCycleState(c *gin.Context) {
	driverID := c.Param("id")

	if _, err := h.driverService.GetDriver(c.Request.Context(), driverID); err != nil {
		respondError(c, err)
		return
	}

	state, err := h.cycleService.GetState(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cycleStateResponseFrom(state))
}

// ChangeStatus handles POST /v1/drivers/:id/status
func (h *DriverHandler) ChangeStatus(c *gin.Context) {
	driverID := c.Param("id")

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if _, err := h.driverService.GetDriver(c.Request.Context(), driverID); err != nil {
		respondError(c, err)
		return
	}

	var at time.Time
	if req.At != nil {
		at = *req.At
	}

	state, err := h.cycleService.ChangeStatus(c.Request.Context(), service.ChangeStatusRequest{
		DriverID: driverID,
		Status:   domain.DutyStatus(req.Status),
		At:       at,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cycleStateResponseFrom(state))
}
