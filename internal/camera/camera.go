// Package camera holds the viewer's camera state and the lens math shared by
// navigation, picking and rendering.
//
// The camera sits at the origin of the celestial sphere. It looks along Look
// with Up as the screen's vertical hint, and its field of view comes from the
// focal length of a lens over a 24 mm film frame.
package camera

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// FilmHeight is the vertical film size in millimetres used to turn a focal
// length into a field of view.
const FilmHeight = 24.0

// DefaultFocalLength is the focal length a new viewer starts with.
const DefaultFocalLength = 35.0

// State is the camera's orientation and zoom.
type State struct {
	Look        r3.Vec  `json:"look"`
	Up          r3.Vec  `json:"up"`
	FocalLength float64 `json:"focal_length"`
}

// NDC is a point in normalized device coordinates, each axis in [-1, 1]
// with +Y up.
type NDC struct {
	X, Y float64
}

// Initial returns a camera looking down -Z with +Y up.
func Initial(focal float64) State {
	return State{
		Look:        r3.Vec{Z: -1},
		Up:          r3.Vec{Y: 1},
		FocalLength: focal,
	}
}

// Rotated returns s with Look and Up rotated by r.
func (s State) Rotated(r r3.Rotation) State {
	s.Look = r.Rotate(s.Look)
	s.Up = r.Rotate(s.Up)
	return s
}

// FOV returns the vertical field of view in radians.
func (s State) FOV() float64 {
	return FOVFor(s.FocalLength)
}

// FOVFor returns the vertical field of view in radians for a focal length.
func FOVFor(focal float64) float64 {
	return 2 * math.Atan(FilmHeight/2/focal)
}

// Basis returns the orthonormal camera frame: right, true up and forward.
// When Up is parallel to Look a fallback vertical is used.
func (s State) Basis() (right, up, forward r3.Vec) {
	forward = r3.Unit(s.Look)
	right = r3.Cross(forward, s.Up)
	if r3.Norm(right) < 1e-12 {
		right = r3.Cross(forward, r3.Vec{Z: 1})
		if r3.Norm(right) < 1e-12 {
			right = r3.Cross(forward, r3.Vec{X: 1})
		}
	}
	right = r3.Unit(right)
	up = r3.Cross(right, forward)
	return right, up, forward
}

// Unproject turns a point on the screen into a unit world-space direction.
// aspect is viewport width over height.
func (s State) Unproject(p NDC, aspect float64) r3.Vec {
	right, up, forward := s.Basis()
	tanY := math.Tan(s.FOV() / 2)
	tanX := tanY * aspect
	dir := r3.Add(forward, r3.Add(
		r3.Scale(p.X*tanX, right),
		r3.Scale(p.Y*tanY, up),
	))
	return r3.Unit(dir)
}

// Project maps a world direction onto the screen. ok is false for
// directions behind the camera.
func (s State) Project(dir r3.Vec, aspect float64) (p NDC, ok bool) {
	right, up, forward := s.Basis()
	depth := r3.Dot(dir, forward)
	if depth <= 0 {
		return NDC{}, false
	}
	tanY := math.Tan(s.FOV() / 2)
	tanX := tanY * aspect
	return NDC{
		X: r3.Dot(dir, right) / (depth * tanX),
		Y: r3.Dot(dir, up) / (depth * tanY),
	}, true
}

// InView reports whether p lies on the visible part of the screen.
func (p NDC) InView() bool {
	return p.X >= -1 && p.X <= 1 && p.Y >= -1 && p.Y <= 1
}

// ZoomMapping selects how a star's magnitude becomes a target focal length.
type ZoomMapping int

const (
	// ZoomModern maps to clamp(24·1.3^(mag−1), 24, 105).
	ZoomModern ZoomMapping = iota
	// ZoomClassic maps to clamp(35·1.2^(mag−1), 35, 70).
	ZoomClassic
)

func (z ZoomMapping) String() string {
	switch z {
	case ZoomModern:
		return "modern"
	case ZoomClassic:
		return "classic"
	default:
		return fmt.Sprintf("ZoomMapping(%d)", int(z))
	}
}

// ParseZoomMapping parses "modern" or "classic".
func ParseZoomMapping(s string) (ZoomMapping, error) {
	switch strings.ToLower(s) {
	case "", "modern":
		return ZoomModern, nil
	case "classic":
		return ZoomClassic, nil
	default:
		return ZoomModern, fmt.Errorf("unknown zoom mapping %q", s)
	}
}

// FocalLengthFor returns the focal length to zoom to when navigating to a
// star of the given magnitude. Fainter stars zoom in further.
func FocalLengthFor(mag float64, z ZoomMapping) float64 {
	switch z {
	case ZoomClassic:
		return clamp(35*math.Pow(1.2, mag-1), 35, 70)
	default:
		return clamp(24*math.Pow(1.3, mag-1), 24, 105)
	}
}

// RandomOrientation draws a uniformly distributed rotation (Shoemake's
// method) from rng.
func RandomOrientation(rng *rand.Rand) r3.Rotation {
	u1, u2, u3 := rng.Float64(), rng.Float64(), rng.Float64()
	a := math.Sqrt(1 - u1)
	b := math.Sqrt(u1)
	c := 2 * math.Pi * u2
	d := 2 * math.Pi * u3
	q := quat.Number{
		Real: a * math.Sin(c),
		Imag: a * math.Cos(c),
		Jmag: b * math.Sin(d),
		Kmag: b * math.Cos(d),
	}
	return r3.Rotation(quat.Scale(1/quat.Abs(q), q))
}

// RandomStart returns the initial camera rotated by a random orientation
// drawn from seed.
func RandomStart(seed uint64, focal float64) State {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return Initial(focal).Rotated(RandomOrientation(rng))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
