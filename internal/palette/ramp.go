// Package palette maps B-V color indices to star colors.
package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RampSize is the number of discrete ramp entries.
const RampSize = 19

// Neutral is the color used when there are no stops and for stars without a
// color index.
var Neutral = colorful.Color{R: 1, G: 1, B: 1}

// Stop pins a color at a B-V color index.
type Stop struct {
	BV    float64
	Color colorful.Color
}

// Ramp is a discrete table of colors indexed by IndexFromBV.
type Ramp [RampSize]colorful.Color

// IndexFromBV maps a color index to a ramp slot: round(bv*10+3) clamped to
// [0, RampSize-1].
func IndexFromBV(bv float64) int {
	if math.IsNaN(bv) {
		return 3
	}
	idx := math.Round(bv*10 + 3)
	if idx < 0 {
		return 0
	}
	if idx > RampSize-1 {
		return RampSize - 1
	}
	return int(idx)
}

// DefaultStops returns the blue-white to orange stops used by the viewer.
func DefaultStops() []Stop {
	return []Stop{
		{BV: -0.3, Color: colorful.Color{R: 0.61, G: 0.70, B: 1.00}},
		{BV: 0.0, Color: colorful.Color{R: 0.83, G: 0.87, B: 1.00}},
		{BV: 0.4, Color: colorful.Color{R: 1.00, G: 0.96, B: 0.92}},
		{BV: 0.8, Color: colorful.Color{R: 1.00, G: 0.89, B: 0.77}},
		{BV: 1.2, Color: colorful.Color{R: 1.00, G: 0.82, B: 0.63}},
		{BV: 1.5, Color: colorful.Color{R: 1.00, G: 0.76, B: 0.52}},
	}
}

// Build interpolates each adjacent pair of stops across its inclusive index
// range. Later pairs overwrite shared endpoints. Slots below the first stop
// or above the last take the nearest stop's color.
func Build(stops []Stop) Ramp {
	var r Ramp
	if len(stops) == 0 {
		for i := range r {
			r[i] = Neutral
		}
		return r
	}

	lo, hi := RampSize, -1
	for i := 0; i+1 < len(stops); i++ {
		c1, c2 := stops[i], stops[i+1]
		i1, i2 := IndexFromBV(c1.BV), IndexFromBV(c2.BV)
		if i2 < i1 {
			i1, i2 = i2, i1
			c1, c2 = c2, c1
		}
		for idx := i1; idx <= i2; idx++ {
			t := 0.0
			if i2 > i1 {
				t = float64(idx-i1) / float64(i2-i1)
			}
			r[idx] = c1.Color.BlendRgb(c2.Color, t)
		}
		lo = min(lo, i1)
		hi = max(hi, i2)
	}

	if hi < 0 {
		// Single stop: paint everything with it.
		for i := range r {
			r[i] = stops[0].Color
		}
		return r
	}

	for i := 0; i < lo; i++ {
		r[i] = r[lo]
	}
	for i := hi + 1; i < RampSize; i++ {
		r[i] = r[hi]
	}
	return r
}

// DefaultRamp builds the ramp from DefaultStops.
func DefaultRamp() Ramp {
	return Build(DefaultStops())
}

// ColorFor returns the ramp color for a color index.
func (r *Ramp) ColorFor(bv float64) colorful.Color {
	return r[IndexFromBV(bv)]
}

// StarColor returns the ramp color for bv, or Neutral when the star has no
// color index.
func (r *Ramp) StarColor(bv float64, hasColor bool) colorful.Color {
	if !hasColor {
		return Neutral
	}
	return r.ColorFor(bv)
}
