// Package pick maps screen clicks to catalog stars.
package pick

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-starfield/internal/astro"
	"github.com/litescript/ls-starfield/internal/camera"
)

// DefaultTolerance is the largest Manhattan distance between the click ray
// and a star direction that still counts as a hit.
const DefaultTolerance = 0.02

// initialDistance seeds the scan; no pair of unit vectors is this far apart.
const initialDistance = 3.0

// Manhattan returns |Δx|+|Δy|+|Δz|.
func Manhattan(a, b r3.Vec) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y) + math.Abs(a.Z-b.Z)
}

// Nearest scans every star for the one closest to ray. The first star at the
// minimum distance wins. ok is false for an empty catalog.
func Nearest(cat *astro.Catalog, ray r3.Vec) (star astro.StarRecord, dist float64, ok bool) {
	dist = initialDistance
	for s := range cat.All() {
		if d := Manhattan(ray, s.Direction); d < dist {
			star, dist, ok = s, d, true
		}
	}
	return star, dist, ok
}

// Picker resolves clicks against a catalog.
type Picker struct {
	Tolerance float64
}

// New returns a picker with the given tolerance, or DefaultTolerance when
// tolerance is not positive.
func New(tolerance float64) Picker {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return Picker{Tolerance: tolerance}
}

// Pick unprojects the click through cam and returns the nearest star if it
// is within tolerance.
func (p Picker) Pick(cat *astro.Catalog, cam camera.State, aspect float64, click camera.NDC) (astro.StarRecord, bool) {
	return p.PickRay(cat, cam.Unproject(click, aspect))
}

// PickRay is Pick for an already unprojected, unit ray.
func (p Picker) PickRay(cat *astro.Catalog, ray r3.Vec) (astro.StarRecord, bool) {
	star, dist, ok := Nearest(cat, ray)
	if !ok || dist > p.Tolerance {
		return astro.StarRecord{}, false
	}
	return star, true
}
