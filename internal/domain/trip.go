package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Represents a single stop of a trip.
// OrderIndex establishes the visit order inside the owning trip and is
// rewritten only by an explicit reorder or a committed route optimization.
type Destination struct {
	ID              uuid.UUID
	TripID          uuid.UUID
	Name            string
	Address         string
	PlaceID         string
	Coordinates     Coordinates
	Categories      []string
	OrderIndex      int
	DurationMinutes *int
}

// Trip owns its destinations exclusively.
//
// OptimizedRoute, TotalDistanceKm and TotalDurationMinutes are written only
// by the optimization workflow; every other path treats them as read-only.
type Trip struct {
	ID                   uuid.UUID
	Title                string
	Description          string
	Destinations         []Destination
	OptimizedRoute       json.RawMessage
	TotalDistanceKm      *float64
	TotalDurationMinutes *int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DestinationIDs returns the ids of the given destinations, preserving order.
func DestinationIDs(dests []Destination) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(dests))
	for _, d := range dests {
		ids = append(ids, d.ID)
	}
	return ids
}

// IsPermutation reports whether order contains exactly the ids in want,
// each once.
func IsPermutation(order, want []uuid.UUID) bool {
	if len(order) != len(want) {
		return false
	}

	remaining := make(map[uuid.UUID]int, len(want))
	for _, id := range want {
		remaining[id]++
	}
	for _, id := range order {
		if remaining[id] == 0 {
			return false
		}
		remaining[id]--
	}

	return true
}
