package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trucklog/internal/logbook"
	"trucklog/internal/service"
)

// LogHandler handles HTTP requests for daily logs.
type LogHandler struct {
	logService *service.LogService
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(logService *service.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// ComplianceResponse is the HTTP representation of a per-day compliance report.
type ComplianceResponse struct {
	Score           int                 `json:"score"`
	Grade           string              `json:"grade"`
	Compliant       bool                `json:"compliant"`
	Violations      []ViolationResponse `json:"violations"`
	Warnings        []string            `json:"warnings"`
	RequiredBreaks  int                 `json:"required_breaks"`
	ScheduledBreaks int                 `json:"scheduled_breaks"`
	RequiredResets  int                 `json:"required_resets"`
	ScheduledResets int                 `json:"scheduled_resets"`
}

// DailyLogResponse is one calendar day of a trip in ELD log form.
type DailyLogResponse struct {
	Date    string             `json:"date"`
	Periods []PeriodResponse   `json:"periods"`
	Grid    []string           `json:"grid"`
	Totals  map[string]float64 `json:"totals"`
	Report  ComplianceResponse `json:"report"`
}

func dailyLogResponseFrom(dl logbook.DailyLog) DailyLogResponse {
	grid := make([]string, 0, len(dl.Grid))
	for _, status := range dl.Grid {
		grid = append(grid, string(status))
	}

	totals := make(map[string]float64, len(dl.Totals))
	for status, hours := range dl.Totals {
		totals[string(status)] = hours
	}

	warnings := dl.Report.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return DailyLogResponse{
		Date:    dl.Date.Format("2006-01-02"),
		Periods: periodResponsesFrom(dl.Periods),
		Grid:    grid,
		Totals:  totals,
		Report: ComplianceResponse{
			Score:           dl.Report.Score,
			Grade:           dl.Report.Grade,
			Compliant:       dl.Report.Compliant,
			Violations:      violationResponsesFrom(dl.Report.Violations),
			Warnings:        warnings,
			RequiredBreaks:  dl.Report.RequiredBreaks,
			ScheduledBreaks: dl.Report.ScheduledBreaks,
			RequiredResets:  dl.Report.RequiredResets,
			ScheduledResets: dl.Report.ScheduledResets,
		},
	}
}

// GetTripLogs handles GET /v1/trips/:id/logs
func (h *LogHandler) GetTripLogs(c *gin.Context) {
	logs, err := h.logService.GetTripLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DailyLogResponse, 0, len(logs))
	for _, dl := range logs {
		response = append(response, dailyLogResponseFrom(dl))
	}
	respondJSON(c, http.StatusOK, response)
}
