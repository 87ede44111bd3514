package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"trucklog/internal/domain"
	"trucklog/internal/hos"
	"trucklog/internal/planner"
	"trucklog/internal/route"
	"trucklog/internal/service"
)

// ──────────────────────────────────────────────
// TRIP PLANNING AND LIFECYCLE
// ──────────────────────────────────────────────

var testDeparture = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

type tripFixture struct {
	driverRepo *MockDriverRepository
	tripRepo   *MockTripRepository
	stopRepo   *MockStopRepository
	periodRepo *MockPeriodRepository
	cycleRepo  *MockCycleRepository
	provider   *MockRouteProvider
	cycleSvc   *service.CycleService
	tripSvc    *service.TripService
}

func newTripFixture(provider *MockRouteProvider) *tripFixture {
	f := &tripFixture{
		driverRepo: NewMockDriverRepository(),
		tripRepo:   NewMockTripRepository(),
		stopRepo:   NewMockStopRepository(),
		periodRepo: NewMockPeriodRepository(),
		cycleRepo:  NewMockCycleRepository(),
		provider:   provider,
	}

	limits := hos.DefaultLimits()
	engine := hos.NewEngine(limits)
	plannerCfg := planner.DefaultConfig()

	f.cycleSvc = service.NewCycleService(f.cycleRepo, NewMockLockStore(), nil, limits)
	f.tripSvc = service.NewTripService(
		nil, f.tripRepo, f.stopRepo, f.periodRepo, f.driverRepo,
		f.cycleSvc, provider, planner.New(engine, plannerCfg), engine, plannerCfg,
		nil, service.NewNotificationService(),
	)

	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Avery Hale"})
	return f
}

func shortHaulProvider() *MockRouteProvider {
	return NewMockRouteProvider(
		&route.Result{DistanceMiles: 60, DurationHours: 1.1, Success: true},
		&route.Result{DistanceMiles: 300, DurationHours: 5.5, Success: true},
	)
}

func planRequest() service.PlanTripRequest {
	return service.PlanTripRequest{
		DriverID:         "driver-1",
		CurrentLocation:  domain.Location{Lat: 36.16, Lng: -86.78, Address: "Nashville, TN"},
		PickupLocation:   domain.Location{Lat: 36.8, Lng: -87.5, Address: "Hopkinsville, KY"},
		DeliveryLocation: domain.Location{Lat: 38.25, Lng: -85.76, Address: "Louisville, KY"},
		DepartureTime:    testDeparture,
	}
}

func TestPlanTrip_ValidatesInput(t *testing.T) {
	t.Parallel()
	f := newTripFixture(shortHaulProvider())
	ctx := context.Background()

	req := planRequest()
	req.DriverID = ""
	if _, err := f.tripSvc.PlanTrip(ctx, req); !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}

	req = planRequest()
	req.PickupLocation.Lat = 123
	if _, err := f.tripSvc.PlanTrip(ctx, req); !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}

	req = planRequest()
	req.DepartureTime = time.Time{}
	if _, err := f.tripSvc.PlanTrip(ctx, req); !errors.Is(err, service.ErrInvalidDepartureTime) {
		t.Errorf("expected ErrInvalidDepartureTime, got %v", err)
	}
}

func TestPlanTrip_UnknownDriver(t *testing.T) {
	t.Parallel()
	f := newTripFixture(shortHaulProvider())

	req := planRequest()
	req.DriverID = "ghost"
	if _, err := f.tripSvc.PlanTrip(context.Background(), req); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}

func TestPlanTrip_DriverWithActiveTrip(t *testing.T) {
	t.Parallel()
	f := newTripFixture(shortHaulProvider())

	f.tripRepo.AddTrip(&domain.Trip{
		ID:       "existing",
		DriverID: "driver-1",
		Status:   domain.TripStatusInProgress,
	})

	_, err := f.tripSvc.PlanTrip(context.Background(), planRequest())
	if !errors.Is(err, service.ErrDriverHasActiveTrip) {
		t.Errorf("expected ErrDriverHasActiveTrip, got %v", err)
	}
}

func TestPlanTrip_RouteProviderFailurePropagates(t *testing.T) {
	t.Parallel()
	provider := shortHaulProvider()
	provider.Err = route.ErrRouteUnavailable
	f := newTripFixture(provider)

	_, err := f.tripSvc.PlanTrip(context.Background(), planRequest())
	if !errors.Is(err, route.ErrRouteUnavailable) {
		t.Errorf("expected the route failure to propagate, got %v", err)
	}
}

func TestPlanTrip_InfeasibleTripIsReportedNotCreated(t *testing.T) {
	t.Parallel()
	f := newTripFixture(shortHaulProvider())

	// Exhausted 70-hour cycle. The tracked date is pinned to now so the
	// daily rollover stays inert during the test.
	f.cycleRepo.AddState(&domain.CycleState{
		DriverID:           "driver-1",
		CycleStartDate:     time.Now().AddDate(0, 0, -7),
		CycleOnDutyHours:   70,
		TodayOnDutyHours:   70,
		CurrentDate:        time.Now(),
		CurrentStatus:      domain.DutyStatusOffDuty,
		CurrentStatusSince: testDeparture.Add(-10 * time.Hour),
	})

	result, err := f.tripSvc.PlanTrip(context.Background(), planRequest())
	if err != nil {
		t.Fatal(err)
	}

	if result.Trip != nil {
		t.Error("infeasible trips must not be created")
	}
	if result.Feasibility.Feasible {
		t.Error("expected an infeasible report")
	}
	if len(result.Feasibility.Violations) == 0 {
		t.Error("expected violations explaining the infeasibility")
	}

	trips, _ := f.tripRepo.GetAll(context.Background())
	if len(trips) != 0 {
		t.Error("nothing may be persisted for an infeasible trip")
	}
}

func TestCheckFeasibility_FreshDriver(t *testing.T) {
	t.Parallel()
	f := newTripFixture(shortHaulProvider())

	report, err := f.tripSvc.CheckFeasibility(context.Background(), service.FeasibilityRequest(planRequest()))
	if err != nil {
		t.Fatal(err)
	}
	if !report.Feasible {
		t.Fatalf("a 6.6-hour trip for a fresh driver must be feasible, violations: %v", report.Violations)
	}
	if f.provider.Calls() != 2 {
		t.Errorf("expected both legs to be resolved, got %d calls", f.provider.Calls())
	}
}

func TestCompleteTrip_AbsorbsPeriodsIntoCycle(t *testing.T) {
	t.Parallel()
	f := newTripFixture(shortHaulProvider())

	trip := &domain.Trip{
		ID:            "trip-1",
		DriverID:      "driver-1",
		Status:        domain.TripStatusPlanned,
		DepartureTime: testDeparture,
	}
	f.tripRepo.AddTrip(trip)

	// Pin the tracked date so the rollover does not archive the absorbed
	// hours mid-test.
	f.cycleRepo.AddState(&domain.CycleState{
		DriverID:           "driver-1",
		CycleStartDate:     time.Now().AddDate(0, 0, -7),
		CurrentDate:        time.Now(),
		CurrentStatus:      domain.DutyStatusOffDuty,
		CurrentStatusSince: testDeparture,
	})

	drive := domain.DutyPeriod{
		TripID: "trip-1",
		Status: domain.DutyStatusDriving,
		Start:  testDeparture,
		End:    testDeparture.Add(5 * time.Hour),
	}
	if err := f.periodRepo.CreateBatch(context.Background(), []domain.DutyPeriod{drive}); err != nil {
		t.Fatal(err)
	}

	completed, err := f.tripSvc.CompleteTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatal(err)
	}
	if completed.Status != domain.TripStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", completed.Status)
	}
	if completed.CompletedAt.IsZero() {
		t.Error("completion must be timestamped")
	}

	state, err := f.cycleSvc.GetState(context.Background(), "driver-1")
	if err != nil {
		t.Fatal(err)
	}
	if state.CycleOnDutyHours < 5 {
		t.Errorf("expected the trip's 5 driving hours in the cycle, got %.2f", state.CycleOnDutyHours)
	}
}

func TestCompleteTrip_AlreadyCompleted(t *testing.T) {
	t.Parallel()
	f := newTripFixture(shortHaulProvider())

	f.tripRepo.AddTrip(&domain.Trip{
		ID:       "trip-1",
		DriverID: "driver-1",
		Status:   domain.TripStatusCompleted,
	})

	_, err := f.tripSvc.CompleteTrip(context.Background(), "trip-1")
	if !errors.Is(err, service.ErrTripAlreadyCompleted) {
		t.Errorf("expected ErrTripAlreadyCompleted, got %v", err)
	}
}

func TestCompleteTrip_CancelledTripNotActive(t *testing.T) {
	t.Parallel()
	f := newTripFixture(shortHaulProvider())

	f.tripRepo.AddTrip(&domain.Trip{
		ID:       "trip-1",
		DriverID: "driver-1",
		Status:   domain.TripStatusCancelled,
	})

	_, err := f.tripSvc.CompleteTrip(context.Background(), "trip-1")
	if !errors.Is(err, service.ErrTripNotActive) {
		t.Errorf("expected ErrTripNotActive, got %v", err)
	}
}

func TestOptimizeTrip_NoImprovementLeavesScheduleAlone(t *testing.T) {
	t.Parallel()
	f := newTripFixture(shortHaulProvider())

	trip := &domain.Trip{
		ID:            "trip-1",
		DriverID:      "driver-1",
		Status:        domain.TripStatusPlanned,
		DepartureTime: testDeparture,
	}
	f.tripRepo.AddTrip(trip)

	// A minimal schedule with nothing to merge.
	delivery := domain.Stop{
		ID:                      "stop-1",
		TripID:                  "trip-1",
		Type:                    domain.StopTypeDelivery,
		Sequence:                1,
		DistanceFromOriginMiles: 300,
		ArrivalTime:             testDeparture.Add(5 * time.Hour),
		DepartureTime:           testDeparture.Add(6 * time.Hour),
		Duration:                time.Hour,
	}
	pickup := domain.Stop{
		ID:                      "stop-0",
		TripID:                  "trip-1",
		Type:                    domain.StopTypePickup,
		Sequence:                0,
		DistanceFromOriginMiles: 0,
		ArrivalTime:             testDeparture,
		DepartureTime:           testDeparture.Add(time.Hour),
		Duration:                time.Hour,
	}
	if err := f.stopRepo.CreateBatch(context.Background(), []domain.Stop{pickup, delivery}); err != nil {
		t.Fatal(err)
	}

	result, err := f.tripSvc.OptimizeTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatal(err)
	}
	if result.Improved {
		t.Error("expected no improvement for a schedule with nothing to merge")
	}
	if result.Message != "no improvement" {
		t.Errorf("expected an honest message, got %q", result.Message)
	}
}
