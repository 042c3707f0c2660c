package palette

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func assertColor(t *testing.T, want, got colorful.Color) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 1e-9, "R")
	assert.InDelta(t, want.G, got.G, 1e-9, "G")
	assert.InDelta(t, want.B, got.B, 1e-9, "B")
}

func TestIndexFromBV(t *testing.T) {
	tests := []struct {
		bv   float64
		want int
	}{
		{-10, 0},
		{-0.3, 0},
		{-0.1, 2},
		{0, 3},
		{0.64, 9},
		{1.5, 18},
		{2.0, 18},
		{10, 18},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IndexFromBV(tt.bv), "IndexFromBV(%v)", tt.bv)
	}
}

func TestIndexFromBV_Clamped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bv := rapid.Float64Range(-1e6, 1e6).Draw(t, "bv")
		idx := IndexFromBV(bv)
		if idx < 0 || idx > RampSize-1 {
			t.Fatalf("IndexFromBV(%v) = %d out of range", bv, idx)
		}
	})
}

func TestBuild_TwoStops(t *testing.T) {
	lo := colorful.Color{R: 0.6, G: 0.8, B: 1.0}
	hi := colorful.Color{R: 0.8, G: 1.0, B: 1.0}
	ramp := Build([]Stop{{BV: -0.3, Color: lo}, {BV: -0.1, Color: hi}})

	assertColor(t, lo, ramp.ColorFor(-0.3))
	assertColor(t, hi, ramp.ColorFor(-0.1))

	mid := ramp.ColorFor(-0.2)
	assertColor(t, colorful.Color{R: 0.7, G: 0.9, B: 1.0}, mid)

	// Beyond the last stop the ramp holds the end color.
	assertColor(t, hi, ramp.ColorFor(1.0))
	assertColor(t, lo, ramp.ColorFor(-5))
}

func TestBuild_MonotonicChannels(t *testing.T) {
	ramp := Build([]Stop{
		{BV: -0.3, Color: colorful.Color{R: 0.6, G: 0.8, B: 1.0}},
		{BV: -0.1, Color: colorful.Color{R: 0.8, G: 1.0, B: 1.0}},
	})
	for i := 1; i < 3; i++ {
		assert.GreaterOrEqual(t, ramp[i].R, ramp[i-1].R)
		assert.GreaterOrEqual(t, ramp[i].G, ramp[i-1].G)
		assert.GreaterOrEqual(t, ramp[i].B, ramp[i-1].B)
	}
}

func TestBuild_LaterPairsOverwrite(t *testing.T) {
	a := colorful.Color{R: 1}
	b := colorful.Color{G: 1}
	c := colorful.Color{B: 1}
	ramp := Build([]Stop{{BV: 0, Color: a}, {BV: 0.5, Color: b}, {BV: 1.0, Color: c}})

	// Index 8 is shared by both pairs; the second pair starts with b.
	assertColor(t, b, ramp[IndexFromBV(0.5)])
	assertColor(t, a, ramp[IndexFromBV(0)])
	assertColor(t, c, ramp[IndexFromBV(1.0)])
}

func TestBuild_Degenerate(t *testing.T) {
	empty := Build(nil)
	for i := range empty {
		assertColor(t, Neutral, empty[i])
	}

	only := colorful.Color{R: 0.2, G: 0.4, B: 0.6}
	single := Build([]Stop{{BV: 0.5, Color: only}})
	for i := range single {
		assertColor(t, only, single[i])
	}
}

func TestDefaultRamp(t *testing.T) {
	ramp := DefaultRamp()
	stops := DefaultStops()
	for _, s := range stops {
		assertColor(t, s.Color, ramp.ColorFor(s.BV))
	}
	// Hot stars are bluer than cool ones.
	assert.Greater(t, ramp.ColorFor(-0.3).B-ramp.ColorFor(-0.3).R, ramp.ColorFor(1.5).B-ramp.ColorFor(1.5).R)
	assertColor(t, Neutral, ramp.StarColor(0.3, false))
}
