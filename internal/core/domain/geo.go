package domain

// Coordinate represents a geographic coordinate (WGS 84).
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within [-90,90] x [-180,180].
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// BoundingBox is an axis-aligned latitude/longitude rectangle approximating a search radius.
// It is derived per request and never persisted.
type BoundingBox struct {
	North float64 `json:"north_lat"`
	South float64 `json:"south_lat"`
	East  float64 `json:"east_lng"`
	West  float64 `json:"west_lng"`
}

// Contains reports whether the point lies strictly inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat > b.South && lat < b.North && lng > b.West && lng < b.East
}

// Degenerate reports whether the box has zero area.
func (b BoundingBox) Degenerate() bool {
	return b.North == b.South || b.East == b.West
}
