package state

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-starfield/internal/astro"
	"github.com/litescript/ls-starfield/internal/camera"
	"github.com/litescript/ls-starfield/internal/config"
	"github.com/litescript/ls-starfield/internal/nav"
	"github.com/litescript/ls-starfield/internal/render"
)

var testStart = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func testCatalog() *astro.Catalog {
	return astro.NewFlatCatalog([]astro.StarRecord{
		{Name: "Vega", Magnitude: 0.03, Direction: r3.Unit(r3.Vec{X: 0.2, Y: 0.1, Z: -1}), ColorIndex: 0, HasColor: true},
		{Name: "Deneb", Magnitude: 1.25, Direction: r3.Unit(r3.Vec{X: -0.3, Y: 0.2, Z: -1}), ColorIndex: 0.09, HasColor: true},
		{Name: "Faint", Magnitude: 6.0, Direction: r3.Unit(r3.Vec{X: 0.1, Y: -0.3, Z: -1})},
	})
}

func newTestViewer(t *testing.T, mutate func(*Config)) (*Viewer, *ManualClock) {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	clock := NewManualClock(testStart)
	return NewViewer(testCatalog(), cfg, clock, nil), clock
}

func clickOn(t *testing.T, v *Viewer, name string) (astro.StarRecord, bool) {
	t.Helper()
	star, ok := v.Catalog().Find(name)
	if !ok {
		t.Fatalf("%s not in catalog", name)
	}
	const aspect = 16.0 / 9
	p, ok := v.Camera().Project(star.Direction, aspect)
	if !ok {
		t.Fatalf("%s is behind the camera", name)
	}
	return v.Click(p, aspect)
}

func eventTypes(events []Event) []EventType {
	var out []EventType
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestNewViewer(t *testing.T) {
	v, _ := newTestViewer(t, nil)

	if v.Label() != "" {
		t.Errorf("Label = %q, want empty", v.Label())
	}
	if v.Busy() {
		t.Error("new viewer should be idle")
	}

	// At 35 mm the threshold is about 5.2: the mag 6 bucket stays hidden.
	visible := map[string]bool{}
	for _, g := range v.Groups() {
		visible[g.Key] = g.Visible
	}
	if !visible["size0"] || !visible["size1"] || visible["size5"] {
		t.Errorf("initial visibility = %v", visible)
	}
}

func TestNewViewer_NilCatalog(t *testing.T) {
	v := NewViewer(nil, DefaultConfig(), NewManualClock(testStart), nil)
	if _, ok := v.Click(camera.NDC{}, 1); ok {
		t.Error("click on empty catalog should miss")
	}
	if !v.Tick() {
		t.Error("first tick should draw")
	}
	if v.Catalog().Len() != 0 {
		t.Error("nil catalog should behave as empty")
	}
}

func TestTick_RedrawGate(t *testing.T) {
	v, clock := newTestViewer(t, nil)

	if !v.Tick() {
		t.Error("first tick should draw")
	}
	if v.Tick() {
		t.Error("idle tick right after a draw should not draw")
	}

	clock.Advance(999 * time.Millisecond)
	if v.Tick() {
		t.Error("idle tick before the interval should not draw")
	}

	clock.Advance(2 * time.Millisecond)
	if !v.Tick() {
		t.Error("heartbeat should draw after the idle interval")
	}
}

func TestTick_DrawsEveryFrameWhileAnimating(t *testing.T) {
	v, clock := newTestViewer(t, nil)
	v.Tick()

	if _, ok := clickOn(t, v, "Vega"); !ok {
		t.Fatal("click on Vega missed")
	}
	for i := 0; i < 10; i++ {
		clock.Advance(30 * time.Millisecond)
		if !v.Tick() {
			t.Fatalf("tick %d during transition did not draw", i)
		}
	}
}

func TestClick_NavigatesToStar(t *testing.T) {
	v, clock := newTestViewer(t, nil)

	star, ok := clickOn(t, v, "Deneb")
	if !ok || star.Name != "Deneb" {
		t.Fatalf("Click = %q, %v; want Deneb", star.Name, ok)
	}
	if v.Label() != "Deneb" {
		t.Errorf("Label = %q, want Deneb", v.Label())
	}
	if !v.Busy() {
		t.Fatal("click should start a transition")
	}

	for i := 0; i < 70; i++ {
		clock.Advance(30 * time.Millisecond)
		v.Tick()
	}

	if v.Busy() {
		t.Fatal("transition should be done after 2100ms")
	}
	cam := v.Camera()
	if d := r3.Norm(r3.Sub(cam.Look, star.Direction)); d > 1e-9 {
		t.Errorf("look misses Deneb by %v", d)
	}
	want := camera.FocalLengthFor(star.Magnitude, camera.ZoomModern)
	if d := cam.FocalLength - want; d > 1e-9 || d < -1e-9 {
		t.Errorf("FocalLength = %v, want %v", cam.FocalLength, want)
	}
	if n := len(v.Trail()); n != 1 {
		t.Errorf("trail length = %d, want 1", n)
	}

	got := eventTypes(v.RecentEvents(0))
	if len(got) != 2 || got[0] != EventSelect || got[1] != EventArrive {
		t.Errorf("events = %v, want [SELECT ARRIVE]", got)
	}

	// Ticks after completion leave the camera alone.
	clock.Advance(time.Second)
	v.Tick()
	if v.Camera() != cam {
		t.Error("camera moved after the transition completed")
	}
}

func TestClick_Miss(t *testing.T) {
	v, _ := newTestViewer(t, nil)
	if _, ok := v.Click(camera.NDC{X: -0.95, Y: 0.95}, 16.0/9); ok {
		t.Fatal("click on empty sky should miss")
	}
	if v.Label() != "" || v.Busy() {
		t.Error("a miss must not change the label or start a transition")
	}
	if len(v.RecentEvents(0)) != 0 {
		t.Error("a miss records no events")
	}
}

func TestLOD_ReconciledDuringTransition(t *testing.T) {
	v, clock := newTestViewer(t, nil)

	if _, err := v.GoTo("Faint"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(nav.DefaultDuration)
	v.Tick()

	for _, g := range v.Groups() {
		if g.Key == "size5" && !g.Visible {
			t.Error("zooming toward a mag 6 star should reveal its bucket")
		}
	}
}

func TestGoTo_Interrupt(t *testing.T) {
	v, clock := newTestViewer(t, nil)

	if _, err := v.GoTo("Vega"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(500 * time.Millisecond)
	v.Tick()

	if _, err := v.GoTo("Deneb"); err != nil {
		t.Fatalf("GoTo while busy under interrupt policy: %v", err)
	}
	if v.Label() != "Deneb" {
		t.Errorf("Label = %q, want Deneb", v.Label())
	}

	clock.Advance(nav.DefaultDuration)
	v.Tick()

	if n := len(v.Trail()); n != 1 {
		t.Errorf("trail length = %d, want 1 (interrupted segment is never committed)", n)
	}
	if st := v.Scene().Stats(); st.Paths != 1 {
		t.Errorf("scene has %d paths, want 1", st.Paths)
	}
	got := eventTypes(v.RecentEvents(0))
	want := []EventType{EventSelect, EventInterrupt, EventSelect, EventArrive}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events = %v, want %v", got, want)
			break
		}
	}
}

func TestGoTo_IgnoreWhileActive(t *testing.T) {
	v, clock := newTestViewer(t, func(c *Config) { c.BusyPolicy = nav.IgnoreWhileActive })

	if _, err := v.GoTo("Vega"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(500 * time.Millisecond)
	v.Tick()

	_, err := v.GoTo("Deneb")
	if !errors.Is(err, nav.ErrBusy) {
		t.Fatalf("GoTo while busy = %v, want ErrBusy", err)
	}
	if v.Label() != "Vega" {
		t.Errorf("Label = %q, want Vega", v.Label())
	}

	clock.Advance(nav.DefaultDuration)
	v.Tick()
	if _, err := v.GoTo("Deneb"); err != nil {
		t.Errorf("GoTo after completion: %v", err)
	}
}

func TestGoTo_Unknown(t *testing.T) {
	v, _ := newTestViewer(t, nil)
	if _, err := v.GoTo("Nibiru"); !errors.Is(err, ErrUnknownStar) {
		t.Errorf("GoTo unknown = %v, want ErrUnknownStar", err)
	}
}

func TestRecentEvents_RingBuffer(t *testing.T) {
	v, clock := newTestViewer(t, func(c *Config) { c.MaxEvents = 3 })

	for _, name := range []string{"Vega", "Deneb", "Vega"} {
		if _, err := v.GoTo(name); err != nil {
			t.Fatal(err)
		}
		clock.Advance(nav.DefaultDuration)
		v.Tick()
	}

	events := v.RecentEvents(0)
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}
	last := events[2]
	if last.Type != EventArrive || last.Star != "Vega" {
		t.Errorf("newest event = %+v, want ARRIVE Vega", last)
	}
	if got := v.RecentEvents(1); len(got) != 1 || got[0] != last {
		t.Errorf("RecentEvents(1) = %+v", got)
	}
}

func TestFrame(t *testing.T) {
	v, _ := newTestViewer(t, nil)
	f := v.Frame(render.Viewport{Width: 320, Height: 180})
	if len(f.Dots) != 2 {
		t.Errorf("drew %d stars, want 2 (Faint hidden by LOD)", len(f.Dots))
	}
}

func TestSnapshot_JSON(t *testing.T) {
	v, clock := newTestViewer(t, nil)
	if _, err := v.GoTo("Vega"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)
	v.Tick()

	snap := v.Snapshot()
	if !snap.Active || snap.Target != "Vega" {
		t.Errorf("snapshot = %+v, want active toward Vega", snap)
	}
	if snap.Progress <= 0.4 || snap.Progress >= 0.6 {
		t.Errorf("Progress at half time = %v, want ~0.5", snap.Progress)
	}

	var buf bytes.Buffer
	if err := snap.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("snapshot JSON: %v", err)
	}
	if decoded["label"] != "Vega" {
		t.Errorf("label = %v, want Vega", decoded["label"])
	}
	if _, ok := decoded["camera"].(map[string]any)["focal_length"]; !ok {
		t.Error("camera.focal_length missing")
	}
}

func TestWriteCatalogTable(t *testing.T) {
	var buf bytes.Buffer
	WriteCatalogTable(&buf, testCatalog(), "", 35)
	out := buf.String()

	for _, want := range []string{"embedded", "3 stars", "size0", "Vega", "Visible at f=35mm: 2 of 3 groups"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	WriteCatalogTable(&buf, astro.EmptyCatalog(), "x.json", 35)
	if !strings.Contains(buf.String(), "No stars") {
		t.Errorf("empty table = %q", buf.String())
	}
}

func TestConfigFrom(t *testing.T) {
	fc := config.DefaultConfig()
	fc.Navigation.Angle = "acos"
	fc.Navigation.OnBusy = "ignore"
	fc.Trail.Max = 5
	fc.Render.RandomStart = false

	cfg := ConfigFrom(fc, 7)
	if cfg.Nav.Angle != nav.AngleAcos || cfg.BusyPolicy != nav.IgnoreWhileActive || cfg.TrailMax != 5 {
		t.Errorf("ConfigFrom = %+v", cfg)
	}
	if cfg.Camera != camera.Initial(camera.DefaultFocalLength) {
		t.Errorf("camera = %+v, want the fixed start", cfg.Camera)
	}

	fc.Render.RandomStart = true
	if a, b := ConfigFrom(fc, 7).Camera, ConfigFrom(fc, 7).Camera; a != b {
		t.Error("random start should be deterministic per seed")
	}
}
