package ports

import (
	"context"
	"tripmate-route-service/internal/domain"

	"github.com/google/uuid"
)

// Port: persistence boundary for trips and their destinations.
type TripRepository interface {
	// Retrieve a trip without its destinations. Returns domain.ErrTripNotFound.
	GetTrip(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error)

	// Retrieve a trip's destinations ordered by order_index.
	ListDestinations(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error)

	// Commit an optimization in a single transaction: the trip aggregates
	// and every destination's order_index. Returns domain.ErrStaleDestinations
	// when result.DestinationOrder is not a permutation of the trip's current
	// destinations.
	ApplyOptimization(ctx context.Context, tripID uuid.UUID, result domain.OptimizationResult) error
}
