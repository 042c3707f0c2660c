package astro

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"
)

func TestLoad_Equatorial(t *testing.T) {
	raw := []byte(`{"catalog": [
		["Sirius", -1.46, 6.75247, -16.716, 0.0],
		["Rigel", 0.13, 5.24227, -8.202],
		["Nova", 4.2, 0, 0, null]
	]}`)

	cat, err := Load(raw)
	require.NoError(t, err)
	assert.Equal(t, ShapeFlat, cat.Shape())
	require.Equal(t, 3, cat.Len())

	sirius, ok := cat.Find("Sirius")
	require.True(t, ok)
	assert.True(t, sirius.HasColor)
	assert.InDelta(t, -1.46, sirius.Magnitude, 1e-12)

	rigel, _ := cat.Find("Rigel")
	assert.False(t, rigel.HasColor, "4-field tuple has no color index")

	nova, _ := cat.Find("Nova")
	assert.False(t, nova.HasColor, "null color index")
	assert.InDelta(t, 0, r3.Norm(r3.Sub(nova.Direction, r3.Vec{Z: -1})), 1e-12)
}

func TestLoad_PrecomputedMapping(t *testing.T) {
	raw := []byte(`{
		"plane2": [["c", 3.0, 0, 1, 0, 12.5, 1.1]],
		"plane1": [["a", 1.0, 0, 0, -1, 2.6, -0.1], ["b", 2.0, 1, 0, 0, 8.0, null]]
	}`)

	cat, err := Load(raw)
	require.NoError(t, err)
	assert.Equal(t, ShapeGrouped, cat.Shape())

	var keys []string
	for g := range cat.Groups() {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"plane1", "plane2"}, keys, "mapping keys are loaded in sorted order")

	var names []string
	for s := range cat.All() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	a, _ := cat.Find("a")
	assert.True(t, a.HasColor)
	assert.InDelta(t, -0.1, a.ColorIndex, 1e-12, "trailing field is the color index, not the distance")

	c, _ := cat.Find("c")
	assert.InDelta(t, 1.1, c.ColorIndex, 1e-12)
}

func TestLoad_PrecomputedArray(t *testing.T) {
	raw := []byte(`[
		[["a", 1.0, 0, 0, -1, 2.6, 0.3]],
		[["b", 2.0, 0, 1, 0, 3.0, 0.4], ["c", 5.0, 0, -1, 0]]
	]`)

	cat, err := Load(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.NumGroups())
	assert.Equal(t, 3, cat.Len())

	var mags []float64
	for g := range cat.Groups() {
		mags = append(mags, g.Magnitude)
	}
	assert.Equal(t, []float64{1.0, 2.0}, mags, "group magnitude defaults to the brightest member")
}

func TestLoad_ShardDocument(t *testing.T) {
	cat, err := Load([]byte(`{"stars": [["a", 1.0, 0, 0, -1, 2.6, 0.3]]}`))
	require.NoError(t, err)
	assert.Equal(t, ShapeGrouped, cat.Shape())
	assert.Equal(t, 1, cat.Len())
}

func TestLoad_RenormalizesNearUnitDirections(t *testing.T) {
	cat, err := Load([]byte(`{"g": [["a", 1.0, 0, 0, -1.0004, 1, 0]]}`))
	require.NoError(t, err)
	a, _ := cat.Find("a")
	assert.InDelta(t, 1, r3.Norm(a.Direction), 1e-12)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty", "   ", ErrEmptyDocument},
		{"empty object", "{}", ErrEmptyDocument},
		{"empty array", "[]", ErrEmptyDocument},
		{"scalar", "42", ErrUnknownFormat},
		{"bad arity", `{"catalog": [["a", 1.0, 2.0]]}`, nil},
		{"name not string", `{"catalog": [[1, 1.0, 2.0, 3.0]]}`, nil},
		{"number is string", `{"catalog": [["a", "1.0", 2.0, 3.0]]}`, nil},
		{"zero direction", `{"g": [["a", 1.0, 0, 0, 0, 1, 0]]}`, nil},
		{"truncated json", `{"catalog": [["a", 1.0`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Load([]byte(tt.raw))
			require.Error(t, err)
			assert.Nil(t, cat)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoad_DirectionsAreUnit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float64Range(-1, 1).Draw(t, "x")
		y := rapid.Float64Range(-1, 1).Draw(t, "y")
		z := rapid.Float64Range(-1, 1).Draw(t, "z")
		v := r3.Vec{X: x, Y: y, Z: z}
		n := r3.Norm(v)
		if n < 0.1 {
			t.Skip("too close to zero")
		}
		v = r3.Scale(1/n, v)

		doc := []byte(`{"g": [["s", 1.0, ` +
			formatFloat(v.X) + `, ` + formatFloat(v.Y) + `, ` + formatFloat(v.Z) + `]]}`)
		cat, err := Load(doc)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		s, _ := cat.Find("s")
		if d := math.Abs(r3.Norm(s.Direction) - 1); d > 1e-12 {
			t.Fatalf("|direction| - 1 = %v", d)
		}
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
