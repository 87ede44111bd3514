package service

import (
	"context"

	"trucklog/internal/logbook"
	"trucklog/internal/repository"
)

// LogService renders a trip's schedule as certified daily logs.
type LogService struct {
	tripRepo   repository.TripRepository
	periodRepo repository.PeriodRepository
	segmenter  *logbook.Segmenter
}

// NewLogService creates a new LogService.
func NewLogService(tripRepo repository.TripRepository, periodRepo repository.PeriodRepository, segmenter *logbook.Segmenter) *LogService {
	return &LogService{
		tripRepo:   tripRepo,
		periodRepo: periodRepo,
		segmenter:  segmenter,
	}
}

// GetTripLogs retrieves a trip's duty periods and partitions them into
// per-day logs with grids, totals and compliance grades.
func (s *LogService) GetTripLogs(ctx context.Context, tripID string) ([]logbook.DailyLog, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}

	periods, err := s.periodRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return s.segmenter.BuildDailyLogs(periods), nil
}
