package maps

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/ports"
)

type placePhoto struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Vicinity         string   `json:"vicinity"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`
	Types            []string `json:"types"`
	PriceLevel       *int     `json:"price_level"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Photos []placePhoto `json:"photos"`

	// details only
	FormattedPhoneNumber string `json:"formatted_phone_number"`
	Website              string `json:"website"`
	OpeningHours         *struct {
		OpenNow     *bool    `json:"open_now"`
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Reviews []struct {
		AuthorName string `json:"author_name"`
		Rating     int    `json:"rating"`
		Text       string `json:"text"`
		Time       int64  `json:"time"`
	} `json:"reviews"`
}

type textSearchResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []placeResult `json:"results"`
}

type detailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
	Result       *placeResult `json:"result"`
}

const detailFields = "place_id,name,formatted_address,geometry,rating,user_ratings_total," +
	"types,price_level,photos,formatted_phone_number,website,opening_hours,reviews"

// SearchPlaces runs a Places text search, optionally biased to a circle.
func (g *GoogleMapsProvider) SearchPlaces(
	ctx context.Context,
	req ports.PlaceSearchRequest,
) (_ []ports.PlaceSummary, err error) {
	const op = "search_places"
	defer g.track(ctx, op)(&err)

	if strings.TrimSpace(req.Query) == "" {
		return nil, domain.NewProviderError(op, domain.ProviderInvalid, errors.New("query is empty"))
	}

	params := url.Values{}
	params.Set("query", req.Query)
	if req.Center != nil {
		params.Set("location", req.Center.String())
		params.Set("radius", strconv.Itoa(req.ClampedRadius()))
	}
	if req.Type != "" {
		params.Set("type", req.Type)
	}

	var decoded textSearchResponse
	if err := g.getJSON(ctx, op, "/place/textsearch/json", params, &decoded); err != nil {
		return nil, err
	}
	if err := statusError(op, decoded.Status, decoded.ErrorMessage); err != nil {
		return nil, err
	}

	out := make([]ports.PlaceSummary, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		out = append(out, g.summary(r, maxSearchPhotos, 400))
	}

	return out, nil
}

// GetPlaceDetails fetches the full record of a single place.
func (g *GoogleMapsProvider) GetPlaceDetails(ctx context.Context, placeID string) (_ *ports.PlaceDetail, err error) {
	const op = "place_details"
	defer g.track(ctx, op)(&err)

	if strings.TrimSpace(placeID) == "" {
		return nil, domain.NewProviderError(op, domain.ProviderInvalid, errors.New("place id is empty"))
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)

	var decoded detailsResponse
	if err := g.getJSON(ctx, op, "/place/details/json", params, &decoded); err != nil {
		return nil, err
	}
	if err := statusError(op, decoded.Status, decoded.ErrorMessage); err != nil {
		return nil, err
	}
	if decoded.Result == nil {
		return nil, domain.NewProviderError(op, domain.ProviderNotFound, errors.New("empty result"))
	}

	r := decoded.Result
	detail := &ports.PlaceDetail{
		PlaceSummary: g.summary(*r, maxDetailPhotos, 800),
		PhoneNumber:  r.FormattedPhoneNumber,
		Website:      r.Website,
		Reviews:      []ports.Review{},
	}
	if r.OpeningHours != nil {
		detail.OpeningHours = ports.OpeningHours{
			OpenNow:     r.OpeningHours.OpenNow,
			WeekdayText: r.OpeningHours.WeekdayText,
		}
	}
	if detail.OpeningHours.WeekdayText == nil {
		detail.OpeningHours.WeekdayText = []string{}
	}
	for i, rv := range r.Reviews {
		if i == maxReviews {
			break
		}
		detail.Reviews = append(detail.Reviews, ports.Review{
			AuthorName: rv.AuthorName,
			Rating:     rv.Rating,
			Text:       rv.Text,
			Time:       rv.Time,
		})
	}

	return detail, nil
}

func (g *GoogleMapsProvider) summary(r placeResult, photoLimit, maxWidth int) ports.PlaceSummary {
	address := r.FormattedAddress
	if address == "" {
		address = r.Vicinity
	}

	s := ports.PlaceSummary{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		Address:          address,
		Location:         domain.Coordinates{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		Types:            r.Types,
		PriceLevel:       r.PriceLevel,
		Photos:           []ports.Photo{},
	}
	if s.Types == nil {
		s.Types = []string{}
	}

	for i, p := range r.Photos {
		if i == photoLimit {
			break
		}
		s.Photos = append(s.Photos, ports.Photo{
			URL:    g.photoURL(p.PhotoReference, maxWidth),
			Width:  p.Width,
			Height: p.Height,
		})
	}

	return s
}

func (g *GoogleMapsProvider) photoURL(ref string, maxWidth int) string {
	q := url.Values{}
	q.Set("maxwidth", strconv.Itoa(maxWidth))
	q.Set("photo_reference", ref)
	q.Set("key", g.apiKey)
	return g.baseURL + "/place/photo?" + q.Encode()
}
