package ports

import (
	"context"
	"encoding/json"
	"tripmate-route-service/internal/domain"
)

// MaxSearchRadiusMeters is the largest radius accepted by place search.
const MaxSearchRadiusMeters = 50000

// TravelMode selects the provider's routing profile.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
	ModeTransit   TravelMode = "transit"
)

// ParseTravelMode returns the mode for s, defaulting to driving.
func ParseTravelMode(s string) (TravelMode, bool) {
	switch TravelMode(s) {
	case ModeDriving, ModeWalking, ModeBicycling, ModeTransit:
		return TravelMode(s), true
	case "":
		return ModeDriving, true
	}
	return ModeDriving, false
}

// Distance and travel duration of one segment, as reported by the provider.
type Leg struct {
	DistanceMeters  int
	DurationSeconds int
}

func (l Leg) DistanceKm() float64      { return float64(l.DistanceMeters) / 1000 }
func (l Leg) DurationMinutes() float64 { return float64(l.DurationSeconds) / 60 }

// Route returned by a directions call.
//
// WaypointOrder is a permutation of indices into the request's Waypoints
// (origin and destination excluded). It is empty when no optimization was
// requested or the provider declined to optimize.
type Route struct {
	Legs          []Leg
	WaypointOrder []int
	Raw           json.RawMessage
}

// Sum all legs, converting to kilometers and minutes at the end.
func (r *Route) Totals() Leg {
	var total Leg
	for _, l := range r.Legs {
		total.DistanceMeters += l.DistanceMeters
		total.DurationSeconds += l.DurationSeconds
	}
	return total
}

type DirectionsRequest struct {
	Origin            domain.Coordinates
	Destination       domain.Coordinates
	Waypoints         []domain.Coordinates
	OptimizeWaypoints bool
	Mode              TravelMode
}

// CellStatusOK marks a matrix cell with a usable route.
const CellStatusOK = "OK"

// One origin->destination entry of a distance matrix. A non-OK Status means
// the provider found no route; the zero distance must not be used.
type MatrixCell struct {
	Leg
	Status string
}

func (c MatrixCell) OK() bool { return c.Status == CellStatusOK }

// DistanceMatrix is indexed Cells[origin][destination].
type DistanceMatrix struct {
	Cells [][]MatrixCell
}

// Cell returns the entry for (i, j) and whether it exists.
func (m *DistanceMatrix) Cell(i, j int) (MatrixCell, bool) {
	if m == nil || i < 0 || i >= len(m.Cells) || j < 0 || j >= len(m.Cells[i]) {
		return MatrixCell{}, false
	}
	return m.Cells[i][j], true
}

type PlaceSearchRequest struct {
	Query        string
	Center       *domain.Coordinates
	RadiusMeters int
	Type         string
}

// ClampedRadius bounds the radius to (0, MaxSearchRadiusMeters].
func (r PlaceSearchRequest) ClampedRadius() int {
	if r.RadiusMeters <= 0 || r.RadiusMeters > MaxSearchRadiusMeters {
		return MaxSearchRadiusMeters
	}
	return r.RadiusMeters
}

type Photo struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Review struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Time       int64  `json:"time"`
}

type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text"`
}

type PlaceSummary struct {
	PlaceID          string             `json:"place_id"`
	Name             string             `json:"name"`
	Address          string             `json:"address"`
	Location         domain.Coordinates `json:"location"`
	Rating           *float64           `json:"rating,omitempty"`
	UserRatingsTotal *int               `json:"user_ratings_total,omitempty"`
	Types            []string           `json:"types"`
	PriceLevel       *int               `json:"price_level,omitempty"`
	Photos           []Photo            `json:"photos"`
}

type PlaceDetail struct {
	PlaceSummary
	PhoneNumber  string       `json:"phone_number,omitempty"`
	Website      string       `json:"website,omitempty"`
	OpeningHours OpeningHours `json:"opening_hours"`
	Reviews      []Review     `json:"reviews"`
}

// Contract for the external mapping service.
// Implementations report every failure as *domain.ProviderError.
type MapsProvider interface {
	SearchPlaces(ctx context.Context, req PlaceSearchRequest) ([]PlaceSummary, error)
	GetPlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, error)
	GetDistanceMatrix(ctx context.Context, origins, destinations []domain.Coordinates, mode TravelMode) (*DistanceMatrix, error)
	GetDirections(ctx context.Context, req DirectionsRequest) (*Route, error)
}
