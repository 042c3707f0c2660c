// Package state owns the viewer: the catalog, camera, navigation engine,
// level of detail, trail and redraw gate. A single frame loop drives it, so
// it holds no locks.
package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-starfield/internal/astro"
	"github.com/litescript/ls-starfield/internal/camera"
	"github.com/litescript/ls-starfield/internal/config"
	"github.com/litescript/ls-starfield/internal/lod"
	"github.com/litescript/ls-starfield/internal/logging"
	"github.com/litescript/ls-starfield/internal/nav"
	"github.com/litescript/ls-starfield/internal/palette"
	"github.com/litescript/ls-starfield/internal/pick"
	"github.com/litescript/ls-starfield/internal/render"
	"github.com/litescript/ls-starfield/internal/trail"
)

// ErrUnknownStar is returned when navigating to a name not in the catalog.
var ErrUnknownStar = errors.New("star not in catalog")

// EventType represents the type of viewer event.
type EventType string

const (
	EventSelect    EventType = "SELECT"    // a pick started a transition
	EventInterrupt EventType = "INTERRUPT" // a running transition was replaced
	EventIgnored   EventType = "IGNORED"   // a pick arrived while busy
	EventArrive    EventType = "ARRIVE"    // a transition completed
	EventEvict     EventType = "TRAIL_EVICT"
)

// Event is something that happened in the viewer.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Star      string    `json:"star,omitempty"`
	Previous  string    `json:"previous,omitempty"`
}

// Clock supplies the wall-clock time transitions run against.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a clock that only moves when told to. It drives headless
// tours and tests.
type ManualClock struct {
	t time.Time
}

// NewManualClock returns a clock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

// Now returns the clock's time.
func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// Config holds configuration for the viewer.
type Config struct {
	Nav          nav.Options
	BusyPolicy   nav.BusyPolicy
	Zoom         camera.ZoomMapping
	Tolerance    float64
	TrailMax     int
	TrailStep    int
	IdleInterval time.Duration
	MaxEvents    int
	Stops        []palette.Stop // nil selects palette.DefaultStops
	Camera       camera.State   // starting camera
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Nav:          nav.DefaultOptions(),
		BusyPolicy:   nav.Interrupt,
		Zoom:         camera.ZoomModern,
		Tolerance:    pick.DefaultTolerance,
		TrailMax:     trail.DefaultMax,
		TrailStep:    trail.DefaultStep,
		IdleInterval: time.Second,
		MaxEvents:    50,
		Camera:       camera.Initial(camera.DefaultFocalLength),
	}
}

// ConfigFrom builds viewer configuration from the file configuration. The
// starting camera is randomized from seed when random_start is set.
func ConfigFrom(c config.Config, seed uint64) Config {
	opts, policy, zoom := c.NavOptions()
	cfg := DefaultConfig()
	cfg.Nav = opts
	cfg.BusyPolicy = policy
	cfg.Zoom = zoom
	cfg.Tolerance = c.Pick.Tolerance
	cfg.TrailMax = c.Trail.Max
	cfg.TrailStep = c.Trail.Step
	cfg.IdleInterval = c.Render.IdleInterval
	cfg.Camera = camera.Initial(c.Navigation.InitialFocalLength)
	if c.Render.RandomStart {
		cfg.Camera = camera.RandomStart(seed, c.Navigation.InitialFocalLength)
	}
	return cfg
}

// Viewer is the whole interactive star map.
type Viewer struct {
	cfg   Config
	clock Clock
	log   *logging.Logger

	catalog *astro.Catalog
	ramp    palette.Ramp
	scene   *render.Scene

	camera camera.State
	engine *nav.Engine
	picker pick.Picker
	lod    *lod.Controller
	trail  *trail.Manager

	label      string
	lastRender time.Time
	redrawDue  bool
	arrivals   int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// NewViewer builds a viewer over cat. A nil catalog behaves as empty.
func NewViewer(cat *astro.Catalog, cfg Config, clock Clock, log *logging.Logger) *Viewer {
	if cat == nil {
		cat = astro.EmptyCatalog()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = logging.Discard()
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = time.Second
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 50
	}
	if cfg.Camera.FocalLength <= 0 {
		cfg.Camera = camera.Initial(camera.DefaultFocalLength)
	}
	stops := cfg.Stops
	if stops == nil {
		stops = palette.DefaultStops()
	}

	v := &Viewer{
		cfg:       cfg,
		clock:     clock,
		log:       log,
		catalog:   cat,
		ramp:      palette.Build(stops),
		scene:     render.NewScene(),
		camera:    cfg.Camera,
		engine:    nav.NewEngine(cfg.Nav, cfg.BusyPolicy),
		picker:    pick.New(cfg.Tolerance),
		redrawDue: true,
		maxEvents: cfg.MaxEvents,
		events:    make([]Event, 0, cfg.MaxEvents),
	}
	v.trail = trail.New(v.scene, cfg.TrailMax, cfg.TrailStep)

	var groups []lod.Group
	for g := range cat.Groups() {
		h := v.scene.CreatePointCloud(v.pointCloud(g))
		groups = append(groups, lod.Group{Key: g.Key, Magnitude: g.Magnitude, Handle: h})
	}
	v.lod = lod.New(v.scene, groups)
	shown := v.lod.Reconcile(v.camera.FocalLength)

	log.Info("viewer ready: %d stars in %d groups (%s), %d visible at f=%.0fmm",
		cat.Len(), cat.NumGroups(), cat.Shape(), shown, v.camera.FocalLength)
	return v
}

func (v *Viewer) pointCloud(g astro.Group) render.PointCloud {
	pc := render.PointCloud{
		Key:    g.Key,
		Points: make([]r3.Vec, 0, len(g.Stars)),
		Colors: make([]colorful.Color, 0, len(g.Stars)),
		Names:  make([]string, 0, len(g.Stars)),
		Size:   g.PointSize,
	}
	if pc.Size <= 0 {
		pc.Size = max(1, lod.SizeForMagnitude(g.Magnitude, camera.DefaultFocalLength))
	}
	for _, s := range g.Stars {
		pc.Points = append(pc.Points, s.Direction)
		pc.Colors = append(pc.Colors, v.ramp.StarColor(s.ColorIndex, s.HasColor))
		pc.Names = append(pc.Names, s.Name)
	}
	return pc
}

// Tick advances the active transition to the clock's time, reconciles level
// of detail and the trail, and reports whether a frame should be drawn now.
// When it returns true the caller must draw; the redraw gate is reset.
func (v *Viewer) Tick() bool {
	now := v.clock.Now()

	frame := v.engine.Step(now)
	if frame.Active {
		v.camera = frame.Camera
		v.lod.Reconcile(v.camera.FocalLength)
		v.trail.Update(v.camera.Look)
		if frame.Completed {
			evicted := v.trail.Commit()
			v.arrivals++
			v.addEvent(Event{Type: EventArrive, Timestamp: now, Star: v.label})
			if evicted > 0 {
				v.addEvent(Event{Type: EventEvict, Timestamp: now})
			}
			v.log.Debug("arrived at %s (f=%.1fmm, trail %d)", v.label, v.camera.FocalLength, v.trail.Len())
		}
		// Mid-animation: draw every tick.
		v.redrawDue = true
	}

	if v.redrawDue || now.Sub(v.lastRender) > v.cfg.IdleInterval {
		v.redrawDue = false
		v.lastRender = now
		return true
	}
	return false
}

// Click handles a click at normalized device coordinates on a viewport of
// the given aspect (width over height). A star within tolerance becomes the
// navigation target and the label; anything else is ignored.
func (v *Viewer) Click(p camera.NDC, aspect float64) (astro.StarRecord, bool) {
	star, ok := v.picker.Pick(v.catalog, v.camera, aspect, p)
	if !ok {
		return astro.StarRecord{}, false
	}
	if err := v.navigate(star); err != nil {
		return astro.StarRecord{}, false
	}
	return star, true
}

// GoTo navigates to the named star as if it had been clicked.
func (v *Viewer) GoTo(name string) (astro.StarRecord, error) {
	star, ok := v.catalog.Find(name)
	if !ok {
		return astro.StarRecord{}, fmt.Errorf("%w: %q", ErrUnknownStar, name)
	}
	if err := v.navigate(star); err != nil {
		return astro.StarRecord{}, err
	}
	return star, nil
}

func (v *Viewer) navigate(star astro.StarRecord) error {
	now := v.clock.Now()
	focal := camera.FocalLengthFor(star.Magnitude, v.cfg.Zoom)

	prev := v.label
	_, interrupted, err := v.engine.Begin(v.camera, star.Direction, focal, star.Name, now)
	if err != nil {
		v.addEvent(Event{Type: EventIgnored, Timestamp: now, Star: star.Name, Previous: prev})
		v.log.Debug("ignored %s: %v", star.Name, err)
		return err
	}
	if interrupted {
		v.addEvent(Event{Type: EventInterrupt, Timestamp: now, Star: star.Name, Previous: prev})
	}

	v.trail.Begin(v.camera.Look)
	v.label = star.Name
	v.redrawDue = true
	v.addEvent(Event{Type: EventSelect, Timestamp: now, Star: star.Name, Previous: prev})
	v.log.Debug("navigating to %s (mag %.2f, f=%.1fmm)", star.Name, star.Magnitude, focal)
	return nil
}

// Frame rasterizes the current scene for a viewport.
func (v *Viewer) Frame(vp render.Viewport) render.Frame {
	return render.Rasterize(v.scene, v.camera, vp)
}

// Camera returns the current camera.
func (v *Viewer) Camera() camera.State { return v.camera }

// Label returns the name of the last selected star.
func (v *Viewer) Label() string { return v.label }

// Busy reports whether a transition is running.
func (v *Viewer) Busy() bool { return v.engine.Busy() }

// Catalog returns the catalog being viewed.
func (v *Viewer) Catalog() *astro.Catalog { return v.catalog }

// Scene returns the render scene.
func (v *Viewer) Scene() *render.Scene { return v.scene }

// Trail returns committed trail segments, newest first.
func (v *Viewer) Trail() []trail.Segment { return v.trail.History() }

// Groups returns the level-of-detail state of each group.
func (v *Viewer) Groups() []lod.Group { return v.lod.Groups() }

// addEvent adds an event to the ring buffer.
func (v *Viewer) addEvent(e Event) {
	if len(v.events) < v.maxEvents {
		v.events = append(v.events, e)
	} else {
		v.events[v.eventWriteAt] = e
		v.eventWriteAt = (v.eventWriteAt + 1) % v.maxEvents
	}
}

// getEventsOrdered returns events in chronological order.
func (v *Viewer) getEventsOrdered() []Event {
	if len(v.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(v.events) < v.maxEvents {
		result := make([]Event, len(v.events))
		copy(result, v.events)
		return result
	}

	// Buffer is full, reorder from eventWriteAt
	result := make([]Event, v.maxEvents)
	for i := 0; i < v.maxEvents; i++ {
		result[i] = v.events[(v.eventWriteAt+i)%v.maxEvents]
	}
	return result
}

// RecentEvents returns the n most recent events, newest last.
func (v *Viewer) RecentEvents(n int) []Event {
	events := v.getEventsOrdered()
	if n <= 0 || n >= len(events) {
		return events
	}
	return events[len(events)-n:]
}
