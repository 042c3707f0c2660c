package camera

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"
)

func vecNear(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestFocalLengthFor(t *testing.T) {
	tests := []struct {
		name string
		mag  float64
		zoom ZoomMapping
		want float64
	}{
		{"modern mag 1", 1, ZoomModern, 24},
		{"modern bright clamps low", -1.46, ZoomModern, 24},
		{"modern mag 2", 2, ZoomModern, 31.2},
		{"modern mag 20 clamps high", 20, ZoomModern, 105},
		{"classic mag 1", 1, ZoomClassic, 35},
		{"classic mag 2", 2, ZoomClassic, 42},
		{"classic mag 9 clamps", 9, ZoomClassic, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FocalLengthFor(tt.mag, tt.zoom)
			if !scalar.EqualWithinAbs(got, tt.want, 1e-9) {
				t.Errorf("FocalLengthFor(%v, %v) = %v, want %v", tt.mag, tt.zoom, got, tt.want)
			}
		})
	}
}

func TestFocalLengthFor_Bounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mag := rapid.Float64Range(-30, 30).Draw(t, "mag")
		if f := FocalLengthFor(mag, ZoomModern); f < 24 || f > 105 {
			t.Fatalf("modern focal %v out of bounds", f)
		}
		if f := FocalLengthFor(mag, ZoomClassic); f < 35 || f > 70 {
			t.Fatalf("classic focal %v out of bounds", f)
		}
	})
}

func TestParseZoomMapping(t *testing.T) {
	for in, want := range map[string]ZoomMapping{"": ZoomModern, "modern": ZoomModern, "Classic": ZoomClassic} {
		got, err := ParseZoomMapping(in)
		if err != nil || got != want {
			t.Errorf("ParseZoomMapping(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseZoomMapping("fisheye"); err == nil {
		t.Error("expected error for unknown mapping")
	}
}

func TestFOV(t *testing.T) {
	// A 12 mm lens over a 24 mm frame sees 90° vertically.
	if got := FOVFor(12); !scalar.EqualWithinAbs(got, math.Pi/2, 1e-12) {
		t.Errorf("FOVFor(12) = %v, want pi/2", got)
	}
	if Initial(24).FOV() <= Initial(105).FOV() {
		t.Error("longer focal length should narrow the field of view")
	}
}

func TestUnproject_Center(t *testing.T) {
	cam := Initial(DefaultFocalLength)
	got := cam.Unproject(NDC{}, 1.5)
	if !vecNear(got, r3.Vec{Z: -1}, 1e-12) {
		t.Errorf("center ray = %v, want (0,0,-1)", got)
	}
}

func TestUnproject_Edges(t *testing.T) {
	cam := Initial(12) // 90° vertical FOV
	top := cam.Unproject(NDC{Y: 1}, 1)
	want := r3.Unit(r3.Vec{Y: 1, Z: -1})
	if !vecNear(top, want, 1e-12) {
		t.Errorf("top edge ray = %v, want %v", top, want)
	}
	right := cam.Unproject(NDC{X: 1}, 1)
	if right.X <= 0 {
		t.Errorf("right edge ray = %v, want +X component", right)
	}
}

func TestProjectUnprojectRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		focal := rapid.Float64Range(20, 110).Draw(t, "focal")
		aspect := rapid.Float64Range(0.5, 3).Draw(t, "aspect")
		p := NDC{
			X: rapid.Float64Range(-1, 1).Draw(t, "x"),
			Y: rapid.Float64Range(-1, 1).Draw(t, "y"),
		}
		cam := RandomStart(seed, focal)

		dir := cam.Unproject(p, aspect)
		if math.Abs(r3.Norm(dir)-1) > 1e-9 {
			t.Fatalf("|ray| = %v", r3.Norm(dir))
		}
		back, ok := cam.Project(dir, aspect)
		if !ok {
			t.Fatal("unprojected ray projects behind camera")
		}
		if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
			t.Fatalf("round trip %v -> %v", p, back)
		}
	})
}

func TestProject_Behind(t *testing.T) {
	if _, ok := Initial(35).Project(r3.Vec{Z: 1}, 1); ok {
		t.Error("direction behind the camera should not project")
	}
}

func TestBasis_DegenerateUp(t *testing.T) {
	cam := State{Look: r3.Vec{Y: 1}, Up: r3.Vec{Y: 1}, FocalLength: 35}
	right, up, forward := cam.Basis()
	for _, v := range []r3.Vec{right, up, forward} {
		if math.Abs(r3.Norm(v)-1) > 1e-12 {
			t.Fatalf("basis vector %v not unit", v)
		}
	}
	if math.Abs(r3.Dot(right, up)) > 1e-12 || math.Abs(r3.Dot(up, forward)) > 1e-12 {
		t.Error("basis not orthogonal")
	}
}

func TestRandomOrientation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 100 {
		cam := Initial(35).Rotated(RandomOrientation(rng))
		if math.Abs(r3.Norm(cam.Look)-1) > 1e-9 || math.Abs(r3.Norm(cam.Up)-1) > 1e-9 {
			t.Fatalf("rotated camera not unit: %+v", cam)
		}
		if math.Abs(r3.Dot(cam.Look, cam.Up)) > 1e-9 {
			t.Fatalf("look and up not orthogonal: %+v", cam)
		}
	}
}

func TestRandomStart_Deterministic(t *testing.T) {
	a := RandomStart(42, 35)
	b := RandomStart(42, 35)
	if a != b {
		t.Errorf("same seed gave %+v and %+v", a, b)
	}
	if c := RandomStart(43, 35); c == a {
		t.Error("different seeds gave the same start")
	}
}
