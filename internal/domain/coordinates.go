package domain

import "fmt"

// Immutable geographic coordinates in floating point degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Return coordinates as "lat,lng" for external API compatibility.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.7f,%.7f", c.Lat, c.Lng)
}

// Valid reports whether the coordinates fall inside the WGS84 ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
