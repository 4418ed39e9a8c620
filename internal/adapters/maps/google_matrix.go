package maps

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/ports"
)

type valueField struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string     `json:"status"`
			Distance valueField `json:"distance"`
			Duration valueField `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// GetDistanceMatrix requests origin x destination distances in metric units,
// avoiding tolls. The returned matrix always has len(origins) rows of
// len(destinations) cells; cells the provider omitted carry an empty status.
func (g *GoogleMapsProvider) GetDistanceMatrix(
	ctx context.Context,
	origins, destinations []domain.Coordinates,
	mode ports.TravelMode,
) (_ *ports.DistanceMatrix, err error) {
	const op = "distance_matrix"
	defer g.track(ctx, op)(&err)

	if len(origins) == 0 || len(destinations) == 0 {
		return nil, domain.NewProviderError(op, domain.ProviderInvalid, errors.New("origins and destinations are required"))
	}
	if len(origins) > maxMatrixSide || len(destinations) > maxMatrixSide || len(origins)*len(destinations) > maxMatrixElements {
		return nil, domain.NewProviderError(op, domain.ProviderInvalid,
			fmt.Errorf("matrix %dx%d exceeds provider limits", len(origins), len(destinations)))
	}
	if mode == "" {
		mode = ports.ModeDriving
	}

	params := url.Values{}
	params.Set("origins", formatLocations(origins))
	params.Set("destinations", formatLocations(destinations))
	params.Set("mode", string(mode))
	params.Set("units", "metric")
	params.Set("avoid", "tolls")

	var decoded matrixResponse
	if err := g.getJSON(ctx, op, "/distancematrix/json", params, &decoded); err != nil {
		return nil, err
	}
	if err := statusError(op, decoded.Status, decoded.ErrorMessage); err != nil {
		return nil, err
	}

	m := &ports.DistanceMatrix{Cells: make([][]ports.MatrixCell, len(origins))}
	for i := range origins {
		m.Cells[i] = make([]ports.MatrixCell, len(destinations))
		if i >= len(decoded.Rows) {
			continue
		}
		for j, el := range decoded.Rows[i].Elements {
			if j >= len(destinations) {
				break
			}
			m.Cells[i][j] = ports.MatrixCell{
				Leg: ports.Leg{
					DistanceMeters:  el.Distance.Value,
					DurationSeconds: el.Duration.Value,
				},
				Status: el.Status,
			}
		}
	}

	return m, nil
}
