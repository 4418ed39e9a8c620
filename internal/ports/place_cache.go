package ports

import "context"

// PlaceCache stores place details keyed by provider place id.
// A miss is reported as (nil, false, nil).
type PlaceCache interface {
	Get(ctx context.Context, placeID string) (*PlaceDetail, bool, error)
	Put(ctx context.Context, detail *PlaceDetail) error
}
