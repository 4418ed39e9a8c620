package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/platform/metrics"
	"tripmate-route-service/internal/ports"

	"github.com/golang/geo/s2"
	"go.uber.org/zap"
)

const earthRadiusMeters = 6371008.8

// Walking and cycling speeds used regardless of the configured driving speed.
const (
	walkingSpeedKmh   = 5.0
	bicyclingSpeedKmh = 15.0
)

// OfflineProvider estimates routes from great-circle distances and a fixed
// travel speed. It needs no network access and has no place data, so place
// search and details always fail with an unsupported error.
//
// Waypoint optimization uses a greedy nearest-neighbor ordering starting at
// the origin. It does not attempt global optimization.
type OfflineProvider struct {
	speedKmh float64
	log      *zap.Logger
	rec      *metrics.Recorder
}

func NewOfflineProvider(speedKmh float64, log *zap.Logger, rec *metrics.Recorder) (*OfflineProvider, error) {
	if speedKmh <= 0 {
		return nil, fmt.Errorf("offline speed must be positive, got %v", speedKmh)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OfflineProvider{
		speedKmh: speedKmh,
		log:      log.With(zap.String("component", "offline_maps")),
		rec:      rec,
	}, nil
}

func (o *OfflineProvider) SearchPlaces(ctx context.Context, _ ports.PlaceSearchRequest) ([]ports.PlaceSummary, error) {
	err := domain.NewProviderError("search_places", domain.ProviderUnsupported, errors.New("offline provider has no place data"))
	o.rec.ObserveProviderCall("search_places", err, 0)
	return nil, err
}

func (o *OfflineProvider) GetPlaceDetails(ctx context.Context, _ string) (*ports.PlaceDetail, error) {
	err := domain.NewProviderError("place_details", domain.ProviderUnsupported, errors.New("offline provider has no place data"))
	o.rec.ObserveProviderCall("place_details", err, 0)
	return nil, err
}

func (o *OfflineProvider) GetDistanceMatrix(
	ctx context.Context,
	origins, destinations []domain.Coordinates,
	mode ports.TravelMode,
) (_ *ports.DistanceMatrix, err error) {
	const op = "distance_matrix"
	start := time.Now()
	defer func() { o.rec.ObserveProviderCall(op, err, time.Since(start)) }()

	if err := ctx.Err(); err != nil {
		return nil, domain.NewProviderError(op, domain.ProviderTimeout, err)
	}
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, domain.NewProviderError(op, domain.ProviderInvalid, errors.New("origins and destinations are required"))
	}

	m := &ports.DistanceMatrix{Cells: make([][]ports.MatrixCell, len(origins))}
	for i, a := range origins {
		m.Cells[i] = make([]ports.MatrixCell, len(destinations))
		for j, b := range destinations {
			m.Cells[i][j] = ports.MatrixCell{Leg: o.leg(a, b, mode), Status: ports.CellStatusOK}
		}
	}

	return m, nil
}

func (o *OfflineProvider) GetDirections(ctx context.Context, req ports.DirectionsRequest) (_ *ports.Route, err error) {
	const op = "directions"
	start := time.Now()
	defer func() { o.rec.ObserveProviderCall(op, err, time.Since(start)) }()

	if err := ctx.Err(); err != nil {
		return nil, domain.NewProviderError(op, domain.ProviderTimeout, err)
	}
	if len(req.Waypoints) > maxWaypoints {
		return nil, domain.NewProviderError(op, domain.ProviderInvalid,
			fmt.Errorf("%d waypoints exceeds limit of %d", len(req.Waypoints), maxWaypoints))
	}

	order := make([]int, len(req.Waypoints))
	for i := range order {
		order[i] = i
	}
	if req.OptimizeWaypoints {
		order = nearestNeighborOrder(req.Origin, req.Waypoints)
	}

	stops := make([]domain.Coordinates, 0, len(req.Waypoints)+2)
	stops = append(stops, req.Origin)
	for _, i := range order {
		stops = append(stops, req.Waypoints[i])
	}
	stops = append(stops, req.Destination)

	route := &ports.Route{Legs: make([]ports.Leg, 0, len(stops)-1)}
	for i := 0; i+1 < len(stops); i++ {
		route.Legs = append(route.Legs, o.leg(stops[i], stops[i+1], req.Mode))
	}
	if req.OptimizeWaypoints {
		route.WaypointOrder = order
	}

	raw, err := json.Marshal(offlineRoute(route))
	if err != nil {
		return nil, domain.NewProviderError(op, domain.ProviderMalformed, fmt.Errorf("encode route: %w", err))
	}
	route.Raw = raw

	o.log.Debug("offline route computed",
		zap.Int("legs", len(route.Legs)),
		zap.Int("distance_m", route.Totals().DistanceMeters),
	)

	return route, nil
}

func (o *OfflineProvider) leg(a, b domain.Coordinates, mode ports.TravelMode) ports.Leg {
	meters := greatCircleMeters(a, b)

	speed := o.speedKmh
	switch mode {
	case ports.ModeWalking:
		speed = walkingSpeedKmh
	case ports.ModeBicycling:
		speed = bicyclingSpeedKmh
	}

	seconds := meters / (speed * 1000 / 3600)

	return ports.Leg{
		DistanceMeters:  int(math.Round(meters)),
		DurationSeconds: int(math.Round(seconds)),
	}
}

func greatCircleMeters(a, b domain.Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}

// nearestNeighborOrder visits the closest unvisited waypoint at each step.
// Ties resolve to the lower index so the result is deterministic.
func nearestNeighborOrder(origin domain.Coordinates, waypoints []domain.Coordinates) []int {
	visited := make([]bool, len(waypoints))
	order := make([]int, 0, len(waypoints))
	current := origin

	for len(order) < len(waypoints) {
		best := -1
		bestDist := math.MaxFloat64
		for i, wp := range waypoints {
			if visited[i] {
				continue
			}
			if d := greatCircleMeters(current, wp); d < bestDist {
				best, bestDist = i, d
			}
		}

		visited[best] = true
		order = append(order, best)
		current = waypoints[best]
	}

	return order
}

type offlineValue struct {
	Value int `json:"value"`
}

type offlineLeg struct {
	Distance offlineValue `json:"distance"`
	Duration offlineValue `json:"duration"`
}

type offlineRouteJSON struct {
	Summary       string       `json:"summary"`
	Legs          []offlineLeg `json:"legs"`
	WaypointOrder []int        `json:"waypoint_order"`
}

// offlineRoute mirrors the subset of the directions route shape that
// clients read from a stored route.
func offlineRoute(r *ports.Route) offlineRouteJSON {
	out := offlineRouteJSON{
		Summary:       "offline estimate",
		Legs:          make([]offlineLeg, 0, len(r.Legs)),
		WaypointOrder: r.WaypointOrder,
	}
	if out.WaypointOrder == nil {
		out.WaypointOrder = []int{}
	}
	for _, l := range r.Legs {
		out.Legs = append(out.Legs, offlineLeg{
			Distance: offlineValue{Value: l.DistanceMeters},
			Duration: offlineValue{Value: l.DurationSeconds},
		})
	}
	return out
}
