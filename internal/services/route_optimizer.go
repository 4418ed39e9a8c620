package services

import (
	"context"
	"errors"
	"fmt"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/platform/metrics"
	"tripmate-route-service/internal/platform/obs"
	"tripmate-route-service/internal/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Caller-safe failure messages. Provider details are logged, never returned.
const (
	msgProviderUnavailable = "route optimization failed: mapping provider unavailable"
	msgNoRoute             = "route optimization failed: no route found between destinations"
)

// RouteOptimizer orders a trip's destinations through the mapping
// provider's waypoint optimization and aggregates the returned legs.
//
// It holds no mutable state; callers serialize writes per trip.
type RouteOptimizer struct {
	maps ports.MapsProvider
	mode ports.TravelMode
	log  *zap.Logger
	rec  *metrics.Recorder
}

func NewRouteOptimizer(maps ports.MapsProvider, mode ports.TravelMode, log *zap.Logger, rec *metrics.Recorder) *RouteOptimizer {
	if mode == "" {
		mode = ports.ModeDriving
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RouteOptimizer{
		maps: maps,
		mode: mode,
		log:  log.With(zap.String("component", "route_optimizer")),
		rec:  rec,
	}
}

// OptimizeTripRoute computes a visiting order for destinations, which must be
// in their current order_index order. The first and last destinations stay
// fixed; intermediates are reordered by the provider.
//
// Failures are reported in the result, never as a Go error.
func (o *RouteOptimizer) OptimizeTripRoute(ctx context.Context, destinations []domain.Destination) domain.OptimizationResult {
	if len(destinations) < 2 {
		o.rec.ObserveOptimization(metrics.OutcomeInsufficient)
		return domain.Failed(domain.ErrInsufficientDestinations.Error())
	}

	var err error
	defer obs.Time(ctx, o.log, "optimizer.OptimizeTripRoute")(&err)

	first := destinations[0]
	last := destinations[len(destinations)-1]
	intermediates := destinations[1 : len(destinations)-1]

	req := ports.DirectionsRequest{
		Origin:            first.Coordinates,
		Destination:       last.Coordinates,
		Mode:              o.mode,
		OptimizeWaypoints: len(intermediates) > 0,
	}
	for _, d := range intermediates {
		req.Waypoints = append(req.Waypoints, d.Coordinates)
	}

	route, err := o.maps.GetDirections(ctx, req)
	if err != nil {
		return o.fail(metrics.OutcomeProviderError, msgProviderUnavailable, err)
	}

	if len(route.Legs) == 0 {
		err = domain.ErrRouteUnavailable
		return o.fail(metrics.OutcomeRouteUnavailable, msgNoRoute, err)
	}

	order, err := destinationOrder(first, intermediates, last, route.WaypointOrder)
	if err != nil {
		return o.fail(metrics.OutcomeProviderError, msgProviderUnavailable, err)
	}

	if !domain.IsPermutation(order, domain.DestinationIDs(destinations)) {
		err = domain.NewProviderError("directions", domain.ProviderMalformed,
			errors.New("optimized order is not a permutation of the destinations"))
		return o.fail(metrics.OutcomeProviderError, msgProviderUnavailable, err)
	}

	totals := route.Totals()
	o.rec.ObserveOptimization(metrics.OutcomeSuccess)

	return domain.OptimizationResult{
		Success:              true,
		RouteData:            route.Raw,
		TotalDistanceKm:      totals.DistanceKm(),
		TotalDurationMinutes: totals.DurationMinutes(),
		DestinationOrder:     order,
	}
}

func (o *RouteOptimizer) fail(outcome metrics.OptimizationOutcome, msg string, cause error) domain.OptimizationResult {
	o.rec.ObserveOptimization(outcome)
	o.log.Warn("route optimization failed",
		zap.String("outcome", string(outcome)),
		zap.Error(cause),
	)
	return domain.Failed(msg)
}

// destinationOrder maps the provider's waypoint permutation back onto
// destination ids. An empty waypointOrder keeps the input order.
func destinationOrder(
	first domain.Destination,
	intermediates []domain.Destination,
	last domain.Destination,
	waypointOrder []int,
) ([]uuid.UUID, error) {
	order := make([]uuid.UUID, 0, len(intermediates)+2)
	order = append(order, first.ID)

	if len(waypointOrder) == 0 {
		for _, d := range intermediates {
			order = append(order, d.ID)
		}
		return append(order, last.ID), nil
	}

	if len(waypointOrder) != len(intermediates) {
		return nil, domain.NewProviderError("directions", domain.ProviderMalformed,
			fmt.Errorf("waypoint order has %d entries, want %d", len(waypointOrder), len(intermediates)))
	}

	seen := make([]bool, len(intermediates))
	for _, idx := range waypointOrder {
		if idx < 0 || idx >= len(intermediates) || seen[idx] {
			return nil, domain.NewProviderError("directions", domain.ProviderMalformed,
				fmt.Errorf("invalid waypoint order %v", waypointOrder))
		}
		seen[idx] = true
		order = append(order, intermediates[idx].ID)
	}

	return append(order, last.ID), nil
}
