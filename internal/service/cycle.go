package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"trucklog/internal/domain"
	"trucklog/internal/hos"
	"trucklog/internal/redis"
	"trucklog/internal/repository"
)

const driverLockTTL = 10 * time.Second

// CycleService owns a driver's rolling HOS state. Every mutation runs as a
// single read-modify-write serialized per driver through a distributed lock,
// so concurrent trip completions cannot interleave partial updates.
type CycleService struct {
	cycleRepo  repository.CycleRepository
	lockStore  redis.LockStoreInterface
	cacheStore *redis.CacheStore
	limits     hos.Limits
}

// NewCycleService creates a new CycleService.
func NewCycleService(
	cycleRepo repository.CycleRepository,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	limits hos.Limits,
) *CycleService {
	return &CycleService{
		cycleRepo:  cycleRepo,
		lockStore:  lockStore,
		cacheStore: cacheStore,
		limits:     limits,
	}
}

// GetState retrieves a driver's cycle state, creating it lazily with zero
// accumulated hours on first reference, and applies any pending daily rollover.
func (s *CycleService) GetState(ctx context.Context, driverID string) (*domain.CycleState, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.getOrCreate(ctx, driverID, time.Now())
}

// Snapshot returns the engine-facing view of a driver's current HOS state.
// Reads go through the cache; misses fall back to the repository.
func (s *CycleService) Snapshot(ctx context.Context, driverID string) (*hos.CycleSnapshot, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetCycleState(ctx, driverID)
		if err == nil && cached != nil {
			return &hos.CycleSnapshot{
				TotalCycleHours:        cached.CycleOnDutyHours,
				TodayDrivingHours:      cached.TodayDrivingHours,
				TodayOnDutyHours:       cached.TodayOnDutyHours,
				CurrentDutyStatus:      domain.DutyStatus(cached.CurrentStatus),
				CurrentStatusStart:     cached.CurrentStatusSince,
				ContinuousDrivingSince: cached.ContinuousDrivingSince,
				LastBreakEnd:           cached.LastBreakEnd,
			}, nil
		}
	}

	state, err := s.getOrCreate(ctx, driverID, time.Now())
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetCycleState(ctx, cachedFromState(state))
	}

	return hos.SnapshotFromState(state), nil
}

// ChangeStatusRequest contains the parameters for a manual duty-status change.
type ChangeStatusRequest struct {
	DriverID string
	Status   domain.DutyStatus
	At       time.Time
}

// ChangeStatus applies a manual duty-status change, closing out the elapsed
// time in the previous status.
func (s *CycleService) ChangeStatus(ctx context.Context, req ChangeStatusRequest) (*domain.CycleState, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	switch req.Status {
	case domain.DutyStatusOffDuty, domain.DutyStatusSleeperBerth, domain.DutyStatusDriving, domain.DutyStatusOnDuty:
	default:
		return nil, ErrInvalidDutyStatus
	}
	at := req.At
	if at.IsZero() {
		at = time.Now()
	}

	unlock, err := s.lock(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.getOrCreate(ctx, req.DriverID, at)
	if err != nil {
		return nil, err
	}

	s.closeOutStatus(state, at)

	if req.Status == domain.DutyStatusDriving && state.ContinuousDrivingSince == nil {
		t := at
		state.ContinuousDrivingSince = &t
	}
	state.CurrentStatus = req.Status
	state.CurrentStatusSince = at
	state.UpdatedAt = at

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// AbsorbTrip folds a completed trip's duty periods into the driver's rolling
// totals, archiving any day boundaries crossed along the way.
func (s *CycleService) AbsorbTrip(ctx context.Context, driverID string, periods []domain.DutyPeriod) (*domain.CycleState, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if len(periods) == 0 {
		return s.GetState(ctx, driverID)
	}

	ordered := make([]domain.DutyPeriod, len(periods))
	copy(ordered, periods)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start.Before(ordered[j].Start) })

	unlock, err := s.lock(ctx, driverID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.getOrCreate(ctx, driverID, ordered[0].Start)
	if err != nil {
		return nil, err
	}

	minBreak := s.limits.MinBreakDuration()

	for _, p := range ordered {
		if err := s.rollForward(ctx, state, dayOf(p.Start)); err != nil {
			return nil, err
		}

		hours := p.Hours()
		switch p.Status {
		case domain.DutyStatusDriving:
			state.TodayDrivingHours += hours
			state.TodayOnDutyHours += hours
			state.CycleOnDutyHours += hours
			if state.ContinuousDrivingSince == nil {
				t := p.Start
				state.ContinuousDrivingSince = &t
			}
		case domain.DutyStatusOnDuty:
			state.TodayOnDutyHours += hours
			state.CycleOnDutyHours += hours
		case domain.DutyStatusOffDuty, domain.DutyStatusSleeperBerth:
			if p.Duration() >= minBreak {
				t := p.End
				state.LastBreakEnd = &t
				state.ContinuousDrivingSince = nil
			}
		}
	}

	last := ordered[len(ordered)-1]
	state.CurrentStatus = last.Status
	state.CurrentStatusSince = last.End
	state.UpdatedAt = last.End

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}

	log.Info().
		Str("driver_id", driverID).
		Float64("today_driving_hours", state.TodayDrivingHours).
		Float64("cycle_on_duty_hours", state.CycleOnDutyHours).
		Msg("absorbed trip into cycle state")

	return state, nil
}

// getOrCreate loads the state, creating it on first reference, and rolls the
// "today" counters forward when the tracked date is behind now.
func (s *CycleService) getOrCreate(ctx context.Context, driverID string, now time.Time) (*domain.CycleState, error) {
	state, err := s.cycleRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if state == nil {
		today := dayOf(now)
		state = &domain.CycleState{
			DriverID:           driverID,
			CycleStartDate:     today.AddDate(0, 0, -(s.limits.CycleDays - 1)),
			CurrentDate:        today,
			CurrentStatus:      domain.DutyStatusOffDuty,
			CurrentStatusSince: now,
			UpdatedAt:          now,
		}
		if err := s.cycleRepo.Save(ctx, state); err != nil {
			return nil, err
		}
		return state, nil
	}

	if err := s.rollForward(ctx, state, dayOf(now)); err != nil {
		return nil, err
	}
	return state, nil
}

// rollForward archives each completed day and zeroes the today counters until
// the tracked date catches up, then recomputes the rolling cycle total over
// the cycle window.
func (s *CycleService) rollForward(ctx context.Context, state *domain.CycleState, today time.Time) error {
	if !state.CurrentDate.Before(today) {
		return nil
	}

	rolled := false
	for state.CurrentDate.Before(today) {
		onDuty := state.TodayOnDutyHours
		offDuty := 24 - onDuty
		if offDuty < 0 {
			offDuty = 0
		}
		record := &domain.DailyRecord{
			ID:           uuid.New().String(),
			DriverID:     state.DriverID,
			Date:         state.CurrentDate,
			DrivingHours: state.TodayDrivingHours,
			OnDutyHours:  onDuty,
			OffDutyHours: offDuty,
		}
		if err := s.cycleRepo.CreateDailyRecord(ctx, record); err != nil {
			return err
		}

		state.TodayDrivingHours = 0
		state.TodayOnDutyHours = 0
		state.CurrentDate = state.CurrentDate.AddDate(0, 0, 1)
		rolled = true
	}

	if !rolled {
		return nil
	}

	windowStart := today.AddDate(0, 0, -(s.limits.CycleDays - 1))
	state.CycleStartDate = windowStart

	records, err := s.cycleRepo.GetDailyRecords(ctx, state.DriverID, windowStart)
	if err != nil {
		return err
	}
	var cycleTotal float64
	for _, r := range records {
		cycleTotal += r.OnDutyHours
	}
	state.CycleOnDutyHours = cycleTotal

	return nil
}

// closeOutStatus accrues the time spent in the current status up to now.
func (s *CycleService) closeOutStatus(state *domain.CycleState, now time.Time) {
	elapsed := now.Sub(state.CurrentStatusSince)
	if elapsed <= 0 {
		return
	}
	hours := elapsed.Hours()

	switch state.CurrentStatus {
	case domain.DutyStatusDriving:
		state.TodayDrivingHours += hours
		state.TodayOnDutyHours += hours
		state.CycleOnDutyHours += hours
	case domain.DutyStatusOnDuty:
		state.TodayOnDutyHours += hours
		state.CycleOnDutyHours += hours
	case domain.DutyStatusOffDuty, domain.DutyStatusSleeperBerth:
		if elapsed >= s.limits.MinBreakDuration() {
			t := now
			state.LastBreakEnd = &t
			state.ContinuousDrivingSince = nil
		}
	}
}

func (s *CycleService) lock(ctx context.Context, driverID string) (func(), error) {
	if s.lockStore == nil {
		return func() {}, nil
	}
	ok, err := s.lockStore.AcquireDriverLock(ctx, driverID, driverLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDriverStateBusy
	}
	return func() {
		_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
	}, nil
}

func (s *CycleService) save(ctx context.Context, state *domain.CycleState) error {
	if err := s.cycleRepo.Save(ctx, state); err != nil {
		return err
	}
	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateCycleState(ctx, state.DriverID)
	}
	return nil
}

func cachedFromState(state *domain.CycleState) *redis.CachedCycleState {
	return &redis.CachedCycleState{
		DriverID:               state.DriverID,
		CycleOnDutyHours:       state.CycleOnDutyHours,
		TodayDrivingHours:      state.TodayDrivingHours,
		TodayOnDutyHours:       state.TodayOnDutyHours,
		CurrentStatus:          string(state.CurrentStatus),
		CurrentStatusSince:     state.CurrentStatusSince,
		ContinuousDrivingSince: state.ContinuousDrivingSince,
		LastBreakEnd:           state.LastBreakEnd,
	}
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
