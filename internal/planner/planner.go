package planner

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"trucklog/internal/domain"
	"trucklog/internal/hos"
)

var (
	// ErrNoRouteLegs is returned when a plan request carries no legs.
	ErrNoRouteLegs = errors.New("no route legs to plan")

	// ErrInvalidLeg is returned when a leg has a non-positive distance or duration.
	ErrInvalidLeg = errors.New("invalid route leg")
)

// Planner projects resolved route legs onto a schedule of stops and duty
// periods, consulting the compliance engine for where breaks and resets land.
// Planning is a pure, synchronous computation over already-resolved routes.
type Planner struct {
	engine *hos.Engine
	cfg    Config
}

// New creates a planner using the given engine and configuration.
func New(engine *hos.Engine, cfg Config) *Planner {
	return &Planner{engine: engine, cfg: cfg}
}

// PlanRequest describes the trip to schedule. Legs chain head-to-tail.
type PlanRequest struct {
	TripID    string
	Departure time.Time
	Legs      []domain.RouteLeg
	Snapshot  *hos.CycleSnapshot
}

// Schedule is a fully planned trip: ordered stops, contiguous duty periods and
// the feasibility report that shaped them.
type Schedule struct {
	Departure          time.Time
	Origin             domain.Location
	Stops              []domain.Stop
	Periods            []domain.DutyPeriod
	Feasibility        domain.FeasibilityReport
	TotalDistanceMiles float64
	TotalDurationHours float64
	EstimatedArrival   time.Time
}

// stopDraft is a stop candidate before timestamps are assigned.
type stopDraft struct {
	Type               domain.StopType
	DriveOffsetHours   float64 // cumulative driving hours from trip departure
	Duration           time.Duration
	DistanceFromOrigin float64
	Location           domain.Location
	Required           bool
	Remark             string
}

// PlanTrip produces the full schedule for a trip. An infeasible trip is not an
// error: the returned schedule carries the feasibility report and no stops.
func (p *Planner) PlanTrip(req PlanRequest) (*Schedule, error) {
	if len(req.Legs) == 0 {
		return nil, ErrNoRouteLegs
	}

	var totalDriving float64
	for i, leg := range req.Legs {
		if leg.DistanceMiles <= 0 || leg.DurationHours <= 0 {
			return nil, fmt.Errorf("%w: leg %d", ErrInvalidLeg, i)
		}
		totalDriving += leg.DurationHours
	}

	report := p.engine.Feasibility(hos.FeasibilityRequest{
		Departure:             req.Departure,
		EstimatedDrivingHours: totalDriving,
		OnDutyExtraHours:      p.terminalDwellHours(req.Legs),
	}, req.Snapshot)

	sched := &Schedule{
		Departure:   req.Departure,
		Origin:      req.Legs[0].Origin,
		Feasibility: report,
	}
	if !report.Feasible {
		return sched, nil
	}

	limits := p.engine.Limits()

	// State carried across legs.
	var globalDriveOffset float64 // driving hours consumed so far
	var distanceFromOrigin float64
	nextFuelAt := p.cfg.MaxFuelDistanceMiles

	continuousDriving := 0.0
	dailyDriving := 0.0
	dailyOnDuty := 0.0
	if req.Snapshot != nil {
		dailyDriving = req.Snapshot.TodayDrivingHours
		dailyOnDuty = req.Snapshot.TodayOnDutyHours
		if req.Snapshot.ContinuousDrivingSince != nil {
			continuousDriving = req.Departure.Sub(*req.Snapshot.ContinuousDrivingSince).Hours()
			if continuousDriving < 0 {
				continuousDriving = 0
			}
		}
	}

	var drafts []stopDraft

	// Immediate pre-trip break, only ever on the first leg.
	if continuousDriving > limits.MaxContinuousDrivingHours {
		drafts = append(drafts, stopDraft{
			Type:               domain.StopTypeMandatoryBreak,
			DriveOffsetHours:   0,
			Duration:           limits.MinBreakDuration(),
			DistanceFromOrigin: 0,
			Location:           req.Legs[0].Origin,
			Required:           true,
			Remark:             "required break before departure",
		})
		continuousDriving = 0
	}

	for _, leg := range req.Legs {
		legStartDist := distanceFromOrigin

		// Fuel stops at every max-fuel-distance threshold.
		for nextFuelAt < legStartDist+leg.DistanceMiles {
			proportion := (nextFuelAt - legStartDist) / leg.DistanceMiles
			drafts = append(drafts, stopDraft{
				Type:               domain.StopTypeFuel,
				DriveOffsetHours:   globalDriveOffset + proportion*leg.DurationHours,
				Duration:           time.Duration(p.cfg.FuelStopMinutes * float64(time.Minute)),
				DistanceFromOrigin: nextFuelAt,
				Location:           locationAt(leg, proportion),
				Remark:             "fuel stop",
			})
			nextFuelAt += p.cfg.MaxFuelDistanceMiles
		}

		// Mandatory breaks where continuous driving hits the threshold,
		// positioned by linear interpolation against the leg duration.
		hoursUntil := limits.MaxContinuousDrivingHours - continuousDriving
		if hoursUntil < 0 {
			hoursUntil = 0
		}
		lastBreakAt := -1.0
		for t := hoursUntil; t < leg.DurationHours; t += limits.MaxContinuousDrivingHours {
			proportion := t / leg.DurationHours
			drafts = append(drafts, stopDraft{
				Type:               domain.StopTypeMandatoryBreak,
				DriveOffsetHours:   globalDriveOffset + t,
				Duration:           limits.MinBreakDuration(),
				DistanceFromOrigin: legStartDist + proportion*leg.DistanceMiles,
				Location:           locationAt(leg, proportion),
				Required:           true,
				Remark:             fmt.Sprintf("%.0f-minute break after %.0f hours driving", limits.MinBreakMinutes, limits.MaxContinuousDrivingHours),
			})
			lastBreakAt = t
		}
		if lastBreakAt >= 0 {
			continuousDriving = leg.DurationHours - lastBreakAt
		} else {
			continuousDriving += leg.DurationHours
		}

		// Daily reset when either the driving budget or the on-duty window
		// runs out inside the leg. The reset lands late in the leg, but never
		// past the point where the driving budget exhausts.
		dwell := p.legDwellHours(leg)
		needReset := dailyDriving+leg.DurationHours > limits.MaxDailyDrivingHours ||
			dailyOnDuty+leg.DurationHours+dwell > limits.MaxDailyOnDutyHours
		if needReset {
			resetAt := p.cfg.ResetLegProportion * leg.DurationHours
			if remaining := limits.MaxDailyDrivingHours - dailyDriving; remaining < resetAt {
				resetAt = remaining
			}
			if resetAt < 0 {
				resetAt = 0
			}
			proportion := resetAt / leg.DurationHours
			drafts = append(drafts, stopDraft{
				Type:               domain.StopTypeDailyReset,
				DriveOffsetHours:   globalDriveOffset + resetAt,
				Duration:           time.Duration(limits.MinOffDutyHours * float64(time.Hour)),
				DistanceFromOrigin: legStartDist + proportion*leg.DistanceMiles,
				Location:           locationAt(leg, proportion),
				Required:           true,
				Remark:             fmt.Sprintf("%.0f-hour daily reset", limits.MinOffDutyHours),
			})
			dailyDriving = leg.DurationHours - resetAt
			dailyOnDuty = (leg.DurationHours - resetAt) + dwell
			// A full reset is itself a qualifying break, so the continuous
			// driving clock restarts there when no later break exists.
			if resetAt > lastBreakAt {
				continuousDriving = leg.DurationHours - resetAt
			}
		} else {
			dailyDriving += leg.DurationHours
			dailyOnDuty += leg.DurationHours + dwell
		}

		// Terminal stop closing the leg.
		globalDriveOffset += leg.DurationHours
		distanceFromOrigin += leg.DistanceMiles
		terminal := domain.StopTypeDelivery
		remark := "delivery"
		if leg.Kind == domain.LegKindDeadhead {
			terminal = domain.StopTypePickup
			remark = "pickup"
		}
		drafts = append(drafts, stopDraft{
			Type:               terminal,
			DriveOffsetHours:   globalDriveOffset,
			Duration:           time.Duration(dwell * float64(time.Hour)),
			DistanceFromOrigin: distanceFromOrigin,
			Location:           leg.Destination,
			Required:           true,
			Remark:             remark,
		})
	}

	sort.SliceStable(drafts, func(i, j int) bool {
		return drafts[i].DistanceFromOrigin < drafts[j].DistanceFromOrigin
	})
	drafts = mergeDrafts(drafts, p.cfg.MergeBufferMiles)

	stops, periods, end := p.synthesize(req.TripID, req.Departure, req.Legs[0].Origin, drafts)
	sched.Stops = stops
	sched.Periods = periods
	sched.TotalDistanceMiles = distanceFromOrigin
	sched.TotalDurationHours = end.Sub(req.Departure).Hours()
	sched.EstimatedArrival = end

	// The no-gap/no-overlap invariant holds by construction; a breach here is
	// an internal bug surfaced as a structured diagnostic, not corrected.
	if v := contiguityViolation(periods); v != nil {
		sched.Feasibility.Violations = append(sched.Feasibility.Violations, *v)
	}

	return sched, nil
}

// mergeDrafts combines a fuel stop and a mandatory break closer together than
// the buffer into a single stop, keeping the break's position (the compliance
// deadline), the longer duration and both purposes in the remark.
func mergeDrafts(drafts []stopDraft, bufferMiles float64) []stopDraft {
	merged := make([]stopDraft, 0, len(drafts))
	for i := 0; i < len(drafts); i++ {
		d := drafts[i]
		if i+1 < len(drafts) && mergeable(d, drafts[i+1], bufferMiles) {
			next := drafts[i+1]
			combined := d
			if next.Type == domain.StopTypeMandatoryBreak {
				combined = next
			}
			combined.Type = domain.StopTypeFuelAndBreak
			if d.Duration > next.Duration {
				combined.Duration = d.Duration
			} else {
				combined.Duration = next.Duration
			}
			combined.Required = true
			combined.Remark = "fuel + mandatory break"
			merged = append(merged, combined)
			i++
			continue
		}
		merged = append(merged, d)
	}
	return merged
}

func mergeable(a, b stopDraft, bufferMiles float64) bool {
	if b.DistanceFromOrigin-a.DistanceFromOrigin >= bufferMiles {
		return false
	}
	return (a.Type == domain.StopTypeFuel && b.Type == domain.StopTypeMandatoryBreak) ||
		(a.Type == domain.StopTypeMandatoryBreak && b.Type == domain.StopTypeFuel)
}

// synthesize walks the draft list in order and emits a driving period up to
// each stop, then a period for the stop itself, guaranteeing a contiguous
// schedule. Sequence indices are assigned contiguously here, after merging.
func (p *Planner) synthesize(tripID string, departure time.Time, origin domain.Location, drafts []stopDraft) ([]domain.Stop, []domain.DutyPeriod, time.Time) {
	stops := make([]domain.Stop, 0, len(drafts))
	var periods []domain.DutyPeriod

	currentTime := departure
	prevOffset := 0.0
	prevDist := 0.0
	prevLoc := origin

	for _, d := range drafts {
		driveHours := d.DriveOffsetHours - prevOffset
		if driveHours > 0 {
			arrival := currentTime.Add(time.Duration(driveHours * float64(time.Hour)))
			periods = append(periods, domain.DutyPeriod{
				ID:            uuid.New().String(),
				TripID:        tripID,
				Status:        domain.DutyStatusDriving,
				Start:         currentTime,
				End:           arrival,
				StartLocation: prevLoc,
				EndLocation:   d.Location,
				DistanceMiles: d.DistanceFromOrigin - prevDist,
			})
			currentTime = arrival
		}

		stop := domain.Stop{
			ID:                      uuid.New().String(),
			TripID:                  tripID,
			Type:                    d.Type,
			Sequence:                len(stops) + 1,
			Location:                d.Location,
			DistanceFromOriginMiles: d.DistanceFromOrigin,
			ArrivalTime:             currentTime,
			DepartureTime:           currentTime.Add(d.Duration),
			Duration:                d.Duration,
			RequiredForCompliance:   d.Required,
			Remark:                  d.Remark,
		}
		stops = append(stops, stop)

		if d.Duration > 0 {
			periods = append(periods, domain.DutyPeriod{
				ID:            uuid.New().String(),
				TripID:        tripID,
				Status:        d.Type.DutyStatus(),
				Start:         stop.ArrivalTime,
				End:           stop.DepartureTime,
				StartLocation: d.Location,
				EndLocation:   d.Location,
				Remark:        d.Remark,
				RelatedStopID: stop.ID,
			})
		}

		currentTime = stop.DepartureTime
		prevOffset = d.DriveOffsetHours
		prevDist = d.DistanceFromOrigin
		prevLoc = d.Location
	}

	return stops, periods, currentTime
}

// contiguityViolation checks the no-gap/no-overlap invariant over a period
// list sorted by construction. A sub-second drift is tolerated.
func contiguityViolation(periods []domain.DutyPeriod) *domain.Violation {
	for i := 0; i < len(periods)-1; i++ {
		gap := periods[i+1].Start.Sub(periods[i].End)
		if gap > time.Second || gap < -time.Second {
			ws := periods[i].End
			we := periods[i+1].Start
			return &domain.Violation{
				Type:        domain.ViolationDailyTimeAccounting,
				Severity:    domain.SeverityMinor,
				Message:     fmt.Sprintf("schedule is not contiguous: %.2f minute gap between periods %d and %d", gap.Minutes(), i, i+1),
				WindowStart: &ws,
				WindowEnd:   &we,
			}
		}
	}
	return nil
}

func (p *Planner) legDwellHours(leg domain.RouteLeg) float64 {
	if leg.Kind == domain.LegKindDeadhead {
		return p.cfg.PickupDwellHours
	}
	return p.cfg.DeliveryDwellHours
}

func (p *Planner) terminalDwellHours(legs []domain.RouteLeg) float64 {
	var total float64
	for _, leg := range legs {
		total += p.legDwellHours(leg)
	}
	return total
}
