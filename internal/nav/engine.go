package nav

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-starfield/internal/camera"
)

// ErrBusy is returned by Engine.Begin under IgnoreWhileActive when a
// transition is already running.
var ErrBusy = errors.New("transition in progress")

// BusyPolicy decides what a new navigation request does while another
// transition is running.
type BusyPolicy int

const (
	// Interrupt replaces the running transition from wherever the camera
	// currently is. The replaced transition never completes.
	Interrupt BusyPolicy = iota
	// IgnoreWhileActive refuses new requests until the running transition
	// completes.
	IgnoreWhileActive
)

func (p BusyPolicy) String() string {
	switch p {
	case Interrupt:
		return "interrupt"
	case IgnoreWhileActive:
		return "ignore"
	default:
		return fmt.Sprintf("BusyPolicy(%d)", int(p))
	}
}

// ParseBusyPolicy parses "interrupt" or "ignore".
func ParseBusyPolicy(s string) (BusyPolicy, error) {
	switch strings.ToLower(s) {
	case "", "interrupt":
		return Interrupt, nil
	case "ignore":
		return IgnoreWhileActive, nil
	default:
		return Interrupt, fmt.Errorf("unknown busy policy %q", s)
	}
}

// Frame is the outcome of one Engine.Step.
type Frame struct {
	Camera    camera.State
	Active    bool // a transition was advanced this step
	Completed bool // and it finished
}

// Engine holds at most one active transition.
type Engine struct {
	opts   Options
	policy BusyPolicy
	active *Transition
}

// NewEngine creates an idle engine.
func NewEngine(opts Options, policy BusyPolicy) *Engine {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	return &Engine{opts: opts, policy: policy}
}

// Options returns the options new transitions are created with.
func (e *Engine) Options() Options { return e.opts }

// Policy returns the busy policy.
func (e *Engine) Policy() BusyPolicy { return e.policy }

// Begin starts a transition from cam toward target. interrupted reports
// whether a running transition was discarded.
func (e *Engine) Begin(cam camera.State, target r3.Vec, targetFocal float64, label string, now time.Time) (t Transition, interrupted bool, err error) {
	if e.active != nil {
		if e.policy == IgnoreWhileActive {
			return Transition{}, false, ErrBusy
		}
		interrupted = true
	}
	t = Begin(cam, target, targetFocal, now, e.opts)
	t.Label = label
	e.active = &t
	return t, interrupted, nil
}

// Active returns the running transition, if any.
func (e *Engine) Active() (Transition, bool) {
	if e.active == nil {
		return Transition{}, false
	}
	return *e.active, true
}

// Busy reports whether a transition is running.
func (e *Engine) Busy() bool { return e.active != nil }

// Step advances the running transition to now and clears it once done. With
// nothing running it returns a zero Frame.
func (e *Engine) Step(now time.Time) Frame {
	if e.active == nil {
		return Frame{}
	}
	state, done := Advance(*e.active, now)
	if done {
		e.active = nil
	}
	return Frame{Camera: state, Active: true, Completed: done}
}
