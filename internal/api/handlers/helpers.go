package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"tripmate-route-service/internal/domain"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object from the body, rejecting
// unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// providerStatus maps a provider failure to the HTTP status returned to
// clients.
func providerStatus(err error) int {
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		return http.StatusInternalServerError
	}

	switch pe.Kind {
	case domain.ProviderNotFound:
		return http.StatusNotFound
	case domain.ProviderInvalid:
		return http.StatusBadRequest
	case domain.ProviderUnsupported:
		return http.StatusNotImplemented
	case domain.ProviderTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
