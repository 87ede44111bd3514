package route

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"trucklog/internal/domain"
)

const (
	metersPerMile  = 1609.344
	defaultTimeout = 10 * time.Second
)

// OSRMProvider resolves routes against an OSRM-compatible HTTP endpoint.
type OSRMProvider struct {
	baseURL string
	client  *http.Client
}

// NewOSRMProvider creates a provider against the given OSRM base URL.
func NewOSRMProvider(baseURL string) *OSRMProvider {
	return &OSRMProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		DistanceMeters  float64 `json:"distance"`
		DurationSeconds float64 `json:"duration"`
		Geometry        struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
	} `json:"routes"`
}

// GetRoute fetches a driving route. Provider failure is returned wrapped in
// ErrRouteUnavailable so callers can distinguish it from infeasibility.
func (p *OSRMProvider) GetRoute(ctx context.Context, origin, destination domain.Location) (*Result, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		p.baseURL, origin.Lng, origin.Lat, destination.Lng, destination.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouteUnavailable, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRouteUnavailable, resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRouteUnavailable, err)
	}

	if body.Code != "Ok" || len(body.Routes) == 0 {
		return &Result{Success: false, Error: body.Code}, fmt.Errorf("%w: %s", ErrRouteUnavailable, body.Code)
	}

	r := body.Routes[0]
	waypoints := make([]domain.Location, 0, len(r.Geometry.Coordinates))
	for _, c := range r.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		waypoints = append(waypoints, domain.Location{Lat: c[1], Lng: c[0]})
	}

	return &Result{
		DistanceMiles: r.DistanceMeters / metersPerMile,
		DurationHours: r.DurationSeconds / 3600,
		Waypoints:     waypoints,
		Success:       true,
	}, nil
}

// Ensure OSRMProvider implements Provider.
var _ Provider = (*OSRMProvider)(nil)
