// Package astro holds the star catalog: records on the unit celestial sphere,
// the flat and grouped catalog shapes, and the loaders that build them.
package astro

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// unitTolerance bounds how far a precomputed direction may stray from unit
// length before the loader rejects it instead of renormalizing.
const unitTolerance = 1e-3

// StarRecord is a cataloged star. Records are immutable once a catalog is
// built.
type StarRecord struct {
	Name       string  // Display name (e.g., "Sirius", "HIP 1234")
	Magnitude  float64 // Apparent visual magnitude (lower = brighter)
	Direction  r3.Vec  // Unit vector on the celestial sphere
	ColorIndex float64 // B-V color index, valid when HasColor is set
	HasColor   bool
}

// EquatorialToDirection converts right ascension (hours, 0-24) and
// declination (degrees, -90..90) to a unit direction.
//
// The frame matches the viewer's camera convention: RA 0h / Dec 0° looks
// down -Z and the north celestial pole is +Y.
func EquatorialToDirection(raHours, decDeg float64) r3.Vec {
	rasc := raHours * math.Pi / 12
	decl := decDeg * math.Pi / 180
	return r3.Vec{
		X: math.Cos(decl) * -math.Sin(rasc),
		Y: math.Sin(decl),
		Z: math.Cos(decl) * -math.Cos(rasc),
	}
}

// SizeBucket returns the flat-catalog render bucket for a magnitude:
// clamp(round(mag*2 - 2), 0, 5).
func SizeBucket(mag float64) int {
	b := int(math.Round(mag*2 - 2))
	if b < 0 {
		return 0
	}
	if b > NumSizeBuckets-1 {
		return NumSizeBuckets - 1
	}
	return b
}

// NumSizeBuckets is the number of point-size groups in a flat catalog.
const NumSizeBuckets = 6

// BucketPointSize is the point size used for a flat-catalog bucket.
func BucketPointSize(bucket int) float64 {
	return float64(8 - bucket)
}

// normalizeDirection renormalizes a precomputed direction. ok is false for
// vectors too far from unit length to be a catalog direction.
func normalizeDirection(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if math.IsNaN(n) || math.Abs(n-1) > unitTolerance {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}
