package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/ports"
)

type directionsResponse struct {
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message"`
	Routes       []json.RawMessage `json:"routes"`
}

type directionsRoute struct {
	Legs []struct {
		Distance valueField `json:"distance"`
		Duration valueField `json:"duration"`
	} `json:"legs"`
	WaypointOrder []int `json:"waypoint_order"`
}

// GetDirections returns the first route for the request. ZERO_RESULTS and
// NOT_FOUND produce a Route without legs rather than an error, leaving the
// decision to the caller.
func (g *GoogleMapsProvider) GetDirections(
	ctx context.Context,
	req ports.DirectionsRequest,
) (_ *ports.Route, err error) {
	const op = "directions"
	defer g.track(ctx, op)(&err)

	if len(req.Waypoints) > maxWaypoints {
		return nil, domain.NewProviderError(op, domain.ProviderInvalid,
			fmt.Errorf("%d waypoints exceeds limit of %d", len(req.Waypoints), maxWaypoints))
	}

	mode := req.Mode
	if mode == "" {
		mode = ports.ModeDriving
	}

	params := url.Values{}
	params.Set("origin", req.Origin.String())
	params.Set("destination", req.Destination.String())
	params.Set("mode", string(mode))
	params.Set("units", "metric")
	params.Set("avoid", "tolls")
	if len(req.Waypoints) > 0 {
		wp := formatLocations(req.Waypoints)
		if req.OptimizeWaypoints {
			wp = "optimize:true|" + wp
		}
		params.Set("waypoints", wp)
	}

	var decoded directionsResponse
	if err := g.getJSON(ctx, op, "/directions/json", params, &decoded); err != nil {
		return nil, err
	}

	switch decoded.Status {
	case "NOT_FOUND", "ZERO_RESULTS":
		return &ports.Route{}, nil
	}
	if err := statusError(op, decoded.Status, decoded.ErrorMessage); err != nil {
		return nil, err
	}
	if len(decoded.Routes) == 0 {
		return &ports.Route{}, nil
	}

	raw := decoded.Routes[0]
	var first directionsRoute
	if err := json.Unmarshal(raw, &first); err != nil {
		return nil, domain.NewProviderError(op, domain.ProviderMalformed, fmt.Errorf("decode route: %w", err))
	}

	route := &ports.Route{
		Legs: make([]ports.Leg, 0, len(first.Legs)),
		Raw:  raw,
	}
	for _, l := range first.Legs {
		route.Legs = append(route.Legs, ports.Leg{
			DistanceMeters:  l.Distance.Value,
			DurationSeconds: l.Duration.Value,
		})
	}
	// An empty order means the provider declined to optimize. Anything else
	// must be a permutation of the waypoints or the legs can't be trusted.
	if req.OptimizeWaypoints && len(first.WaypointOrder) > 0 {
		if !validOrder(first.WaypointOrder, len(req.Waypoints)) {
			return nil, domain.NewProviderError(op, domain.ProviderMalformed,
				fmt.Errorf("waypoint_order %v is not a permutation of %d waypoints", first.WaypointOrder, len(req.Waypoints)))
		}
		route.WaypointOrder = first.WaypointOrder
	}

	return route, nil
}

// validOrder reports whether order is a permutation of 0..n-1.
func validOrder(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}
