package maps

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/platform/metrics"
	"tripmate-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api"

	// Google Maps request limits.
	maxWaypoints      = 25
	maxMatrixSide     = 25
	maxMatrixElements = 100

	maxSearchPhotos = 3
	maxDetailPhotos = 5
	maxReviews      = 3
)

// GoogleConfig configures GoogleMapsProvider.
type GoogleConfig struct {
	APIKey  string
	BaseURL string
	// MaxAttempts bounds retries of transient failures. 1 disables retries.
	MaxAttempts int
	// HTTPClient is shared for the life of the process. When nil a client
	// with Timeout is created.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// GoogleMapsProvider implements ports.MapsProvider using the Google Maps
// web service APIs (Places, Distance Matrix, Directions).
//
// It is safe for concurrent use.
type GoogleMapsProvider struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	maxAttempts int
	log         *zap.Logger
	rec         *metrics.Recorder
}

func NewGoogleMapsProvider(cfg GoogleConfig, log *zap.Logger, rec *metrics.Recorder) (*GoogleMapsProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("google maps api key is empty")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	session := cfg.HTTPClient
	if session == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		session = &http.Client{Timeout: timeout}
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &GoogleMapsProvider{
		session:     session,
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		maxAttempts: attempts,
		log:         log.With(zap.String("component", "google_maps")),
		rec:         rec,
	}, nil
}

// track times an operation, logs failures and records metrics.
func (g *GoogleMapsProvider) track(ctx context.Context, op string) func(errp *error) {
	start := time.Now()
	done := obs.Time(ctx, g.log, "google."+op)

	return func(errp *error) {
		done(errp)
		g.rec.ObserveProviderCall(op, *errp, time.Since(start))
	}
}

// statusError maps a Google API "status" field to a provider error.
// OK and ZERO_RESULTS are not errors and yield nil.
func statusError(op, status, message string) error {
	var kind domain.ProviderErrorKind
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "REQUEST_DENIED":
		kind = domain.ProviderAuth
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		kind = domain.ProviderRateLimited
	case "NOT_FOUND":
		kind = domain.ProviderNotFound
	case "INVALID_REQUEST", "MAX_WAYPOINTS_EXCEEDED", "MAX_ROUTE_LENGTH_EXCEEDED", "MAX_ELEMENTS_EXCEEDED", "MAX_DIMENSIONS_EXCEEDED":
		kind = domain.ProviderInvalid
	case "":
		kind = domain.ProviderMalformed
	default:
		kind = domain.ProviderTransport
	}

	msg := status
	if message != "" {
		msg = status + " - " + message
	}

	return domain.NewProviderError(op, kind, errors.New(msg))
}

func formatLocations(coords []domain.Coordinates) string {
	parts := make([]string, 0, len(coords))
	for _, c := range coords {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "|")
}
