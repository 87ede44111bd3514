package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"trucklog/internal/domain"
	"trucklog/internal/hos"
	"trucklog/internal/planner"
	"trucklog/internal/redis"
	"trucklog/internal/repository"
	"trucklog/internal/repository/postgres"
	"trucklog/internal/route"
)

// TripService orchestrates trip planning: route resolution, feasibility,
// schedule generation and persistence.
type TripService struct {
	db            *sql.DB
	tripRepo      repository.TripRepository
	stopRepo      repository.StopRepository
	periodRepo    repository.PeriodRepository
	driverRepo    repository.DriverRepository
	cycleService  *CycleService
	routeProvider route.Provider
	planner       *planner.Planner
	engine        *hos.Engine
	plannerCfg    planner.Config
	cacheStore    *redis.CacheStore
	notification  *NotificationService
}

// NewTripService creates a new TripService.
func NewTripService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	stopRepo repository.StopRepository,
	periodRepo repository.PeriodRepository,
	driverRepo repository.DriverRepository,
	cycleService *CycleService,
	routeProvider route.Provider,
	pl *planner.Planner,
	engine *hos.Engine,
	plannerCfg planner.Config,
	cacheStore *redis.CacheStore,
	notification *NotificationService,
) *TripService {
	return &TripService{
		db:            db,
		tripRepo:      tripRepo,
		stopRepo:      stopRepo,
		periodRepo:    periodRepo,
		driverRepo:    driverRepo,
		cycleService:  cycleService,
		routeProvider: routeProvider,
		planner:       pl,
		engine:        engine,
		plannerCfg:    plannerCfg,
		cacheStore:    cacheStore,
		notification:  notification,
	}
}

// PlanTripRequest contains the parameters for planning a trip.
type PlanTripRequest struct {
	DriverID         string
	CurrentLocation  domain.Location
	PickupLocation   domain.Location
	DeliveryLocation domain.Location
	DepartureTime    time.Time
}

// PlanTripResult is the outcome of a planning request. An infeasible trip
// carries the report but no persisted trip.
type PlanTripResult struct {
	Trip        *domain.Trip
	Stops       []domain.Stop
	Periods     []domain.DutyPeriod
	Feasibility domain.FeasibilityReport
}

func validLocation(loc domain.Location) bool {
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lng >= -180 && loc.Lng <= 180
}

// PlanTrip resolves the route, checks feasibility against the driver's current
// HOS state and, when feasible, persists the full schedule atomically.
func (s *TripService) PlanTrip(ctx context.Context, req PlanTripRequest) (*PlanTripResult, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !validLocation(req.CurrentLocation) || !validLocation(req.PickupLocation) || !validLocation(req.DeliveryLocation) {
		return nil, ErrInvalidLocation
	}
	if req.DepartureTime.IsZero() {
		return nil, ErrInvalidDepartureTime
	}

	if _, err := s.driverRepo.GetByID(ctx, req.DriverID); err != nil {
		return nil, err
	}

	active, err := s.tripRepo.GetActiveByDriverID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrDriverHasActiveTrip
	}

	legs, err := s.resolveLegs(ctx, req)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.cycleService.Snapshot(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	tripID := uuid.New().String()
	sched, err := s.planner.PlanTrip(planner.PlanRequest{
		TripID:    tripID,
		Departure: req.DepartureTime,
		Legs:      legs,
		Snapshot:  snapshot,
	})
	if err != nil {
		return nil, err
	}

	if !sched.Feasibility.Feasible {
		s.notification.NotifyTripInfeasible(req.DriverID, sched.Feasibility)
		return &PlanTripResult{Feasibility: sched.Feasibility}, nil
	}

	trip := &domain.Trip{
		ID:                 tripID,
		DriverID:           req.DriverID,
		Status:             domain.TripStatusPlanned,
		CurrentLocation:    req.CurrentLocation,
		PickupLocation:     req.PickupLocation,
		DeliveryLocation:   req.DeliveryLocation,
		DepartureTime:      req.DepartureTime,
		EstimatedArrival:   sched.EstimatedArrival,
		TotalDistanceMiles: sched.TotalDistanceMiles,
		TotalDurationHours: sched.TotalDurationHours,
		CreatedAt:          time.Now(),
	}

	if err := s.persistSchedule(ctx, trip, sched.Stops, sched.Periods); err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		key := s.feasibilityKey(tripID, legs, req.DepartureTime)
		_ = s.cacheStore.SetFeasibility(ctx, key, &sched.Feasibility)
	}

	s.notification.NotifyTripPlanned(trip, sched.Feasibility)

	return &PlanTripResult{
		Trip:        trip,
		Stops:       sched.Stops,
		Periods:     sched.Periods,
		Feasibility: sched.Feasibility,
	}, nil
}

// FeasibilityRequest contains the parameters for a standalone feasibility check.
type FeasibilityRequest struct {
	DriverID         string
	CurrentLocation  domain.Location
	PickupLocation   domain.Location
	DeliveryLocation domain.Location
	DepartureTime    time.Time
}

// CheckFeasibility runs the compliance engine against a prospective trip
// without planning or persisting anything. Results are cached briefly.
func (s *TripService) CheckFeasibility(ctx context.Context, req FeasibilityRequest) (*domain.FeasibilityReport, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !validLocation(req.CurrentLocation) || !validLocation(req.PickupLocation) || !validLocation(req.DeliveryLocation) {
		return nil, ErrInvalidLocation
	}
	if req.DepartureTime.IsZero() {
		return nil, ErrInvalidDepartureTime
	}

	legs, err := s.resolveLegs(ctx, PlanTripRequest(req))
	if err != nil {
		return nil, err
	}

	key := s.feasibilityKey(req.DriverID, legs, req.DepartureTime)
	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetFeasibility(ctx, key)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	snapshot, err := s.cycleService.Snapshot(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	var totalDriving, extraOnDuty float64
	for _, leg := range legs {
		totalDriving += leg.DurationHours
		if leg.Kind == domain.LegKindDeadhead {
			extraOnDuty += s.plannerCfg.PickupDwellHours
		} else {
			extraOnDuty += s.plannerCfg.DeliveryDwellHours
		}
	}

	report := s.engine.Feasibility(hos.FeasibilityRequest{
		Departure:             req.DepartureTime,
		EstimatedDrivingHours: totalDriving,
		OnDutyExtraHours:      extraOnDuty,
	}, snapshot)

	if s.cacheStore != nil {
		_ = s.cacheStore.SetFeasibility(ctx, key, &report)
	}

	return &report, nil
}

// CompleteTrip marks a trip completed and folds its duty periods into the
// driver's cycle state.
func (s *TripService) CompleteTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	switch trip.Status {
	case domain.TripStatusCompleted:
		return nil, ErrTripAlreadyCompleted
	case domain.TripStatusPlanned, domain.TripStatusInProgress:
	default:
		return nil, ErrTripNotActive
	}

	periods, err := s.periodRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if _, err := s.cycleService.AbsorbTrip(ctx, trip.DriverID, periods); err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusCompleted
	trip.CompletedAt = time.Now()
	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	s.notification.NotifyTripCompleted(trip)

	return trip, nil
}

// OptimizeTripResult is the outcome of an optimization pass over a stored trip.
type OptimizeTripResult struct {
	Improved     bool
	Message      string
	StopsRemoved int
	Trip         *domain.Trip
	Stops        []domain.Stop
	Periods      []domain.DutyPeriod
}

// OptimizeTrip re-runs the stop-merging pass over a stored schedule and
// persists the result when it is a genuine improvement.
func (s *TripService) OptimizeTrip(ctx context.Context, tripID string) (*OptimizeTripResult, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status == domain.TripStatusCompleted || trip.Status == domain.TripStatusCancelled {
		return nil, ErrTripNotActive
	}

	stops, err := s.stopRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	periods, err := s.periodRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	sched := &planner.Schedule{
		Departure:          trip.DepartureTime,
		Origin:             trip.CurrentLocation,
		Stops:              stops,
		Periods:            periods,
		TotalDistanceMiles: trip.TotalDistanceMiles,
		TotalDurationHours: trip.TotalDurationHours,
		EstimatedArrival:   trip.EstimatedArrival,
	}

	result := s.planner.Optimize(sched)
	if !result.Improved {
		return &OptimizeTripResult{
			Improved: false,
			Message:  result.Message,
			Trip:     trip,
			Stops:    stops,
			Periods:  periods,
		}, nil
	}

	trip.EstimatedArrival = result.Schedule.EstimatedArrival
	trip.TotalDurationHours = result.Schedule.TotalDurationHours

	if err := s.replaceSchedule(ctx, trip, result.Schedule.Stops, result.Schedule.Periods); err != nil {
		return nil, err
	}

	log.Info().
		Str("trip_id", tripID).
		Int("stops_removed", result.StopsRemoved).
		Msg("trip schedule optimized")

	return &OptimizeTripResult{
		Improved:     true,
		Message:      result.Message,
		StopsRemoved: result.StopsRemoved,
		Trip:         trip,
		Stops:        result.Schedule.Stops,
		Periods:      result.Schedule.Periods,
	}, nil
}

// TripDetail bundles a trip with its schedule.
type TripDetail struct {
	Trip    *domain.Trip
	Stops   []domain.Stop
	Periods []domain.DutyPeriod
}

// GetTrip retrieves a trip with its stops and duty periods.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*TripDetail, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	stops, err := s.stopRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	periods, err := s.periodRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return &TripDetail{Trip: trip, Stops: stops, Periods: periods}, nil
}

// GetAllTrips retrieves all trips.
func (s *TripService) GetAllTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// resolveLegs resolves the deadhead and loaded legs through the route provider.
func (s *TripService) resolveLegs(ctx context.Context, req PlanTripRequest) ([]domain.RouteLeg, error) {
	deadhead, err := s.routeProvider.GetRoute(ctx, req.CurrentLocation, req.PickupLocation)
	if err != nil {
		return nil, fmt.Errorf("resolving deadhead leg: %w", err)
	}
	loaded, err := s.routeProvider.GetRoute(ctx, req.PickupLocation, req.DeliveryLocation)
	if err != nil {
		return nil, fmt.Errorf("resolving loaded leg: %w", err)
	}

	return []domain.RouteLeg{
		{
			Kind:          domain.LegKindDeadhead,
			Origin:        req.CurrentLocation,
			Destination:   req.PickupLocation,
			DistanceMiles: deadhead.DistanceMiles,
			DurationHours: deadhead.DurationHours,
			Waypoints:     deadhead.Waypoints,
		},
		{
			Kind:          domain.LegKindLoaded,
			Origin:        req.PickupLocation,
			Destination:   req.DeliveryLocation,
			DistanceMiles: loaded.DistanceMiles,
			DurationHours: loaded.DurationHours,
			Waypoints:     loaded.Waypoints,
		},
	}, nil
}

func (s *TripService) feasibilityKey(id string, legs []domain.RouteLeg, departure time.Time) string {
	var totalDriving float64
	durations := make([]float64, 0, len(legs))
	for _, leg := range legs {
		totalDriving += leg.DurationHours
		durations = append(durations, leg.DurationHours)
	}
	return redis.FeasibilityKey(id, totalDriving, durations, departure, s.plannerCfg.MaxFuelDistanceMiles)
}

// persistSchedule stores the trip, its stops and its periods in one transaction.
func (s *TripService) persistSchedule(ctx context.Context, trip *domain.Trip, stops []domain.Stop, periods []domain.DutyPeriod) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	tripRepo := postgres.NewTripRepositoryWithTx(tx)
	stopRepo := postgres.NewStopRepositoryWithTx(tx)
	periodRepo := postgres.NewPeriodRepositoryWithTx(tx)

	if err = tripRepo.Create(ctx, trip); err != nil {
		return err
	}
	if err = stopRepo.CreateBatch(ctx, stops); err != nil {
		return err
	}
	if err = periodRepo.CreateBatch(ctx, periods); err != nil {
		return err
	}

	return tx.Commit()
}

// replaceSchedule swaps a trip's stops and periods atomically.
func (s *TripService) replaceSchedule(ctx context.Context, trip *domain.Trip, stops []domain.Stop, periods []domain.DutyPeriod) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	tripRepo := postgres.NewTripRepositoryWithTx(tx)
	stopRepo := postgres.NewStopRepositoryWithTx(tx)
	periodRepo := postgres.NewPeriodRepositoryWithTx(tx)

	if err = periodRepo.DeleteByTripID(ctx, trip.ID); err != nil {
		return err
	}
	if err = stopRepo.DeleteByTripID(ctx, trip.ID); err != nil {
		return err
	}
	if err = stopRepo.CreateBatch(ctx, stops); err != nil {
		return err
	}
	if err = periodRepo.CreateBatch(ctx, periods); err != nil {
		return err
	}
	if err = tripRepo.Update(ctx, trip); err != nil {
		return err
	}

	return tx.Commit()
}
