package geospatial

import (
	"math"

	"github.com/nishat1/Instock/internal/core/domain"
)

// EarthRadiusKm is the equatorial radius used by the equirectangular approximation.
const EarthRadiusKm = 6378.0

// Below this cosine the point is treated as a pole and the box spans every longitude.
const polarCosEpsilon = 1e-12

// IsValidCoordinates reports whether |lat| <= 90 and |lng| <= 180. NaN is invalid.
func IsValidCoordinates(lat, lng float64) bool {
	return domain.Coordinate{Lat: lat, Lng: lng}.Valid()
}

// ComputeBounds returns the bounding box of radiusKm around (lat, lng) using an
// equirectangular approximation.
//
// Latitudes are clamped to [-90, 90]. Near the poles, where the longitude delta
// diverges, or when it reaches 180 degrees, the box covers all longitudes.
// A zero radius yields a degenerate box.
func ComputeBounds(lat, lng, radiusKm float64) (domain.BoundingBox, error) {
	if !IsValidCoordinates(lat, lng) {
		return domain.BoundingBox{}, domain.ErrInvalidCoordinates
	}
	if radiusKm < 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return domain.BoundingBox{}, domain.ErrInvalidRadius
	}

	latDelta := (radiusKm / EarthRadiusKm) * (180.0 / math.Pi)
	box := domain.BoundingBox{
		North: math.Min(lat+latDelta, 90),
		South: math.Max(lat-latDelta, -90),
	}

	cosLat := math.Cos(lat * math.Pi / 180.0)
	switch {
	case radiusKm == 0:
		box.East, box.West = lng, lng
	case cosLat <= polarCosEpsilon:
		box.East, box.West = 180, -180
	default:
		lngDelta := latDelta / cosLat
		if lngDelta >= 180 {
			box.East, box.West = 180, -180
		} else {
			box.East, box.West = lng+lngDelta, lng-lngDelta
		}
	}

	return box, nil
}

// BoundaryCoordinates returns [eastLng, westLng, northLat, southLat] for the
// given center and radius, or an empty slice when the input is invalid.
func BoundaryCoordinates(lat, lng, radiusKm float64) []float64 {
	box, err := ComputeBounds(lat, lng, radiusKm)
	if err != nil {
		return []float64{}
	}
	return []float64{box.East, box.West, box.North, box.South}
}
