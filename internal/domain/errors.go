package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientDestinations is returned when fewer than two
	// destinations are supplied for optimization.
	ErrInsufficientDestinations = errors.New("at least 2 destinations required")

	// ErrRouteUnavailable means the provider answered but returned no usable
	// route or legs.
	ErrRouteUnavailable = errors.New("no usable route returned by provider")

	ErrTripNotFound = errors.New("trip not found")

	// ErrStaleDestinations is returned when an optimization result no longer
	// matches the trip's current destinations.
	ErrStaleDestinations = errors.New("destination order does not match trip destinations")
)

// ProviderErrorKind classifies mapping provider failures.
type ProviderErrorKind string

const (
	ProviderTransport   ProviderErrorKind = "transport"
	ProviderTimeout     ProviderErrorKind = "timeout"
	ProviderAuth        ProviderErrorKind = "auth"
	ProviderRateLimited ProviderErrorKind = "rate_limited"
	ProviderNotFound    ProviderErrorKind = "not_found"
	ProviderInvalid     ProviderErrorKind = "invalid"
	ProviderMalformed   ProviderErrorKind = "malformed"
	ProviderUnsupported ProviderErrorKind = "unsupported"
)

// ProviderError wraps every failure of an external mapping call.
type ProviderError struct {
	Op   string
	Kind ProviderErrorKind
	Err  error
}

func NewProviderError(op string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Op: op, Kind: kind, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("maps %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("maps %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err originates from the mapping provider.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
