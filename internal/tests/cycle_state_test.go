package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"trucklog/internal/domain"
	"trucklog/internal/hos"
	"trucklog/internal/service"
)

// ──────────────────────────────────────────────
// CYCLE STATE TRACKING
// ──────────────────────────────────────────────

var day1 = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func newCycleService(repo *MockCycleRepository, locks *MockLockStore) *service.CycleService {
	return service.NewCycleService(repo, locks, nil, hos.DefaultLimits())
}

func seedState(repo *MockCycleRepository, status domain.DutyStatus, since time.Time) {
	repo.AddState(&domain.CycleState{
		DriverID:           "driver-1",
		CycleStartDate:     day1.AddDate(0, 0, -7),
		CurrentDate:        day1,
		CurrentStatus:      status,
		CurrentStatusSince: since,
		UpdatedAt:          since,
	})
}

func TestCycleState_LazyCreationOnFirstReference(t *testing.T) {
	t.Parallel()

	repo := NewMockCycleRepository()
	svc := newCycleService(repo, NewMockLockStore())

	state, err := svc.GetState(context.Background(), "driver-1")
	if err != nil {
		t.Fatal(err)
	}
	if state.TodayDrivingHours != 0 || state.CycleOnDutyHours != 0 {
		t.Error("a fresh driver starts with zero accumulated hours")
	}
	if state.CurrentStatus != domain.DutyStatusOffDuty {
		t.Errorf("a fresh driver starts off duty, got %s", state.CurrentStatus)
	}
	if repo.SaveCallCount != 1 {
		t.Errorf("expected the fresh state to be persisted once, got %d saves", repo.SaveCallCount)
	}
}

func TestCycleState_EmptyDriverID(t *testing.T) {
	t.Parallel()

	svc := newCycleService(NewMockCycleRepository(), NewMockLockStore())
	if _, err := svc.GetState(context.Background(), ""); !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
}

func TestChangeStatus_AccruesOutgoingStatusHours(t *testing.T) {
	t.Parallel()

	repo := NewMockCycleRepository()
	seedState(repo, domain.DutyStatusDriving, day1.Add(8*time.Hour))
	svc := newCycleService(repo, NewMockLockStore())

	state, err := svc.ChangeStatus(context.Background(), service.ChangeStatusRequest{
		DriverID: "driver-1",
		Status:   domain.DutyStatusOffDuty,
		At:       day1.Add(12 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	if state.TodayDrivingHours != 4 {
		t.Errorf("expected 4 driving hours accrued, got %.2f", state.TodayDrivingHours)
	}
	if state.TodayOnDutyHours != 4 || state.CycleOnDutyHours != 4 {
		t.Errorf("driving hours count toward on-duty and cycle totals, got %.2f / %.2f",
			state.TodayOnDutyHours, state.CycleOnDutyHours)
	}
	if state.CurrentStatus != domain.DutyStatusOffDuty {
		t.Errorf("expected off-duty, got %s", state.CurrentStatus)
	}
}

func TestChangeStatus_QualifyingOffDutyClearsDrivingClock(t *testing.T) {
	t.Parallel()

	repo := NewMockCycleRepository()
	drivingSince := day1.Add(8 * time.Hour)
	repo.AddState(&domain.CycleState{
		DriverID:               "driver-1",
		CycleStartDate:         day1.AddDate(0, 0, -7),
		CurrentDate:            day1,
		CurrentStatus:          domain.DutyStatusOffDuty,
		CurrentStatusSince:     day1.Add(12 * time.Hour),
		ContinuousDrivingSince: &drivingSince,
	})
	svc := newCycleService(repo, NewMockLockStore())

	// 45 minutes off duty qualifies as a break.
	state, err := svc.ChangeStatus(context.Background(), service.ChangeStatusRequest{
		DriverID: "driver-1",
		Status:   domain.DutyStatusDriving,
		At:       day1.Add(12*time.Hour + 45*time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}

	if state.LastBreakEnd == nil || !state.LastBreakEnd.Equal(day1.Add(12*time.Hour+45*time.Minute)) {
		t.Error("expected the qualifying break to be recorded")
	}
	if state.ContinuousDrivingSince == nil || !state.ContinuousDrivingSince.Equal(day1.Add(12*time.Hour+45*time.Minute)) {
		t.Error("entering driving restarts the continuous driving clock")
	}
}

func TestChangeStatus_ShortOffDutyDoesNotClearClock(t *testing.T) {
	t.Parallel()

	repo := NewMockCycleRepository()
	drivingSince := day1.Add(8 * time.Hour)
	repo.AddState(&domain.CycleState{
		DriverID:               "driver-1",
		CycleStartDate:         day1.AddDate(0, 0, -7),
		CurrentDate:            day1,
		CurrentStatus:          domain.DutyStatusOffDuty,
		CurrentStatusSince:     day1.Add(12 * time.Hour),
		ContinuousDrivingSince: &drivingSince,
	})
	svc := newCycleService(repo, NewMockLockStore())

	// 15 minutes off duty does not qualify.
	state, err := svc.ChangeStatus(context.Background(), service.ChangeStatusRequest{
		DriverID: "driver-1",
		Status:   domain.DutyStatusDriving,
		At:       day1.Add(12*time.Hour + 15*time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}

	if state.LastBreakEnd != nil {
		t.Error("a 15-minute rest must not count as a break")
	}
	if state.ContinuousDrivingSince == nil || !state.ContinuousDrivingSince.Equal(drivingSince) {
		t.Error("the continuous driving clock must keep its original start")
	}
}

func TestChangeStatus_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc := newCycleService(NewMockCycleRepository(), NewMockLockStore())
	_, err := svc.ChangeStatus(context.Background(), service.ChangeStatusRequest{
		DriverID: "driver-1",
		Status:   "NAPPING",
		At:       day1,
	})
	if !errors.Is(err, service.ErrInvalidDutyStatus) {
		t.Errorf("expected ErrInvalidDutyStatus, got %v", err)
	}
}

func TestChangeStatus_ContendedDriverIsRejected(t *testing.T) {
	t.Parallel()

	locks := NewMockLockStore()
	locks.HoldLocks = true
	svc := newCycleService(NewMockCycleRepository(), locks)

	_, err := svc.ChangeStatus(context.Background(), service.ChangeStatusRequest{
		DriverID: "driver-1",
		Status:   domain.DutyStatusDriving,
		At:       day1,
	})
	if !errors.Is(err, service.ErrDriverStateBusy) {
		t.Errorf("expected ErrDriverStateBusy, got %v", err)
	}
}

func TestAbsorbTrip_SingleDayTotals(t *testing.T) {
	t.Parallel()

	repo := NewMockCycleRepository()
	seedState(repo, domain.DutyStatusOffDuty, day1.Add(6*time.Hour))
	svc := newCycleService(repo, NewMockLockStore())

	start := day1.Add(8 * time.Hour)
	drive1 := domain.DutyPeriod{Status: domain.DutyStatusDriving, Start: start, End: start.Add(4 * time.Hour)}
	rest := domain.DutyPeriod{Status: domain.DutyStatusOffDuty, Start: drive1.End, End: drive1.End.Add(30 * time.Minute)}
	drive2 := domain.DutyPeriod{Status: domain.DutyStatusDriving, Start: rest.End, End: rest.End.Add(3 * time.Hour)}

	state, err := svc.AbsorbTrip(context.Background(), "driver-1", []domain.DutyPeriod{drive1, rest, drive2})
	if err != nil {
		t.Fatal(err)
	}

	if state.TodayDrivingHours != 7 {
		t.Errorf("expected 7 driving hours, got %.2f", state.TodayDrivingHours)
	}
	if state.CycleOnDutyHours != 7 {
		t.Errorf("expected 7 cycle hours, got %.2f", state.CycleOnDutyHours)
	}
	if state.LastBreakEnd == nil || !state.LastBreakEnd.Equal(rest.End) {
		t.Error("expected the trip's break to be recorded")
	}
	if state.CurrentStatus != domain.DutyStatusDriving {
		t.Errorf("final status follows the last period, got %s", state.CurrentStatus)
	}
	if !state.CurrentStatusSince.Equal(drive2.End) {
		t.Errorf("status-since follows the last period end, got %v", state.CurrentStatusSince)
	}
}

func TestAbsorbTrip_MultiDayRolloverArchivesDays(t *testing.T) {
	t.Parallel()

	repo := NewMockCycleRepository()
	seedState(repo, domain.DutyStatusOffDuty, day1.Add(6*time.Hour))
	svc := newCycleService(repo, NewMockLockStore())

	day2 := day1.AddDate(0, 0, 1)
	drive1 := domain.DutyPeriod{Status: domain.DutyStatusDriving, Start: day1.Add(8 * time.Hour), End: day1.Add(14 * time.Hour)}
	reset := domain.DutyPeriod{Status: domain.DutyStatusSleeperBerth, Start: drive1.End, End: day2}
	drive2 := domain.DutyPeriod{Status: domain.DutyStatusDriving, Start: day2, End: day2.Add(4 * time.Hour)}

	state, err := svc.AbsorbTrip(context.Background(), "driver-1", []domain.DutyPeriod{drive1, reset, drive2})
	if err != nil {
		t.Fatal(err)
	}

	if repo.DailyRecordCount("driver-1") != 1 {
		t.Errorf("expected day one to be archived, got %d records", repo.DailyRecordCount("driver-1"))
	}
	if state.TodayDrivingHours != 4 {
		t.Errorf("today's counters must restart at the day boundary, got %.2f", state.TodayDrivingHours)
	}
	if state.CycleOnDutyHours != 10 {
		t.Errorf("cycle total spans both days (6 + 4), got %.2f", state.CycleOnDutyHours)
	}
	if !state.CurrentDate.Equal(day2) {
		t.Errorf("tracked date must advance to day two, got %v", state.CurrentDate)
	}
}

func TestAbsorbTrip_ReleasesLock(t *testing.T) {
	t.Parallel()

	repo := NewMockCycleRepository()
	seedState(repo, domain.DutyStatusOffDuty, day1.Add(6*time.Hour))
	locks := NewMockLockStore()
	svc := newCycleService(repo, locks)

	start := day1.Add(8 * time.Hour)
	periods := []domain.DutyPeriod{
		{Status: domain.DutyStatusDriving, Start: start, End: start.Add(2 * time.Hour)},
	}
	if _, err := svc.AbsorbTrip(context.Background(), "driver-1", periods); err != nil {
		t.Fatal(err)
	}

	if locks.AcquireCallCount != 1 || locks.ReleaseCallCount != 1 {
		t.Errorf("expected one acquire and one release, got %d / %d",
			locks.AcquireCallCount, locks.ReleaseCallCount)
	}
}
