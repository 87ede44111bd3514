package planner

import (
	"fmt"

	"trucklog/internal/domain"
	"trucklog/internal/route"
)

// locationAt places a stop along a leg at the given proportion of its
// duration. When the leg carries enough waypoints the position follows the
// actual road geometry; otherwise it falls back to straight-line interpolation
// between the leg endpoints.
func locationAt(leg domain.RouteLeg, proportion float64) domain.Location {
	if proportion <= 0 {
		return leg.Origin
	}
	if proportion >= 1 {
		return leg.Destination
	}
	if len(leg.Waypoints) >= 3 {
		return alongWaypoints(leg.Waypoints, proportion)
	}
	return lerpLocation(leg.Origin, leg.Destination, proportion)
}

func lerpLocation(a, b domain.Location, t float64) domain.Location {
	lat := a.Lat + (b.Lat-a.Lat)*t
	lng := a.Lng + (b.Lng-a.Lng)*t
	return domain.Location{
		Lat:     lat,
		Lng:     lng,
		Address: fmt.Sprintf("%.4f, %.4f", lat, lng),
	}
}

// alongWaypoints walks the waypoint polyline by cumulative distance and
// interpolates between the two waypoints bracketing the target proportion.
func alongWaypoints(waypoints []domain.Location, proportion float64) domain.Location {
	segments := make([]float64, len(waypoints)-1)
	var total float64
	for i := 0; i < len(waypoints)-1; i++ {
		segments[i] = route.HaversineMiles(waypoints[i], waypoints[i+1])
		total += segments[i]
	}
	if total == 0 {
		return waypoints[0]
	}

	target := proportion * total
	var travelled float64
	for i, seg := range segments {
		if travelled+seg >= target {
			if seg == 0 {
				return waypoints[i]
			}
			return lerpLocation(waypoints[i], waypoints[i+1], (target-travelled)/seg)
		}
		travelled += seg
	}
	return waypoints[len(waypoints)-1]
}
