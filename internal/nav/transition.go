// Package nav drives camera transitions: a great-circle rotation of the look
// direction toward a target star, eased over a fixed duration while the focal
// length eases in log space.
package nav

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-starfield/internal/camera"
)

// DefaultDuration is how long every transition takes, regardless of angle.
const DefaultDuration = 2000 * time.Millisecond

// AngleMode selects how the rotation angle between look and target is
// computed.
type AngleMode int

const (
	// AngleAsin uses asin(|L×T|/(|L||T|)). It is only correct for
	// separations up to 90°; beyond that the rotation falls short of the
	// target by mirroring around 90°.
	AngleAsin AngleMode = iota
	// AngleAcos uses acos(L̂·T̂), which is correct for any separation.
	AngleAcos
)

func (m AngleMode) String() string {
	switch m {
	case AngleAsin:
		return "asin"
	case AngleAcos:
		return "acos"
	default:
		return fmt.Sprintf("AngleMode(%d)", int(m))
	}
}

// ParseAngleMode parses "asin" or "acos".
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToLower(s) {
	case "", "asin":
		return AngleAsin, nil
	case "acos":
		return AngleAcos, nil
	default:
		return AngleAsin, fmt.Errorf("unknown angle mode %q", s)
	}
}

// Options configures new transitions.
type Options struct {
	Duration time.Duration
	Angle    AngleMode
}

// DefaultOptions returns a 2000 ms asin transition.
func DefaultOptions() Options {
	return Options{Duration: DefaultDuration, Angle: AngleAsin}
}

// Transition is one eased camera move. It is a value; advancing it does not
// mutate it.
type Transition struct {
	Axis     r3.Vec
	Angle    float64
	Start    time.Time
	Duration time.Duration

	StartLook           r3.Vec
	StartUp             r3.Vec
	StartFocalLength    float64
	LogFocalLengthRatio float64

	Target r3.Vec
	Label  string
}

// Begin computes the transition from cam toward target, finishing at
// targetFocal.
func Begin(cam camera.State, target r3.Vec, targetFocal float64, now time.Time, opts Options) Transition {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	axis, angle := rotationTo(cam.Look, target, cam.Up, opts.Angle)

	ratio := 0.0
	if cam.FocalLength > 0 && targetFocal > 0 {
		ratio = math.Log(targetFocal / cam.FocalLength)
	}

	return Transition{
		Axis:                axis,
		Angle:               angle,
		Start:               now,
		Duration:            opts.Duration,
		StartLook:           cam.Look,
		StartUp:             cam.Up,
		StartFocalLength:    cam.FocalLength,
		LogFocalLengthRatio: ratio,
		Target:              target,
	}
}

// rotationTo returns the unit axis and angle carrying look onto target. A
// zero cross product yields a zero rotation, except that acos mode turns a
// fully opposite target through 180° about up.
func rotationTo(look, target, up r3.Vec, mode AngleMode) (r3.Vec, float64) {
	cross := r3.Cross(look, target)
	lens := r3.Norm(look) * r3.Norm(target)
	if lens == 0 {
		return r3.Vec{}, 0
	}
	n := r3.Norm(cross)

	var angle float64
	switch mode {
	case AngleAcos:
		angle = math.Acos(clamp(r3.Dot(look, target)/lens, -1, 1))
	default:
		angle = math.Asin(clamp(n/lens, 0, 1))
	}

	if n < 1e-15 {
		if mode == AngleAcos && angle > math.Pi/2 {
			return oppositeAxis(look, up), angle
		}
		return r3.Vec{}, 0
	}
	return r3.Scale(1/n, cross), angle
}

func oppositeAxis(look, up r3.Vec) r3.Vec {
	l := r3.Unit(look)
	a := r3.Sub(up, r3.Scale(r3.Dot(up, l), l))
	if r3.Norm(a) < 1e-12 {
		a = r3.Cross(l, r3.Vec{X: 1})
		if r3.Norm(a) < 1e-12 {
			a = r3.Cross(l, r3.Vec{Y: 1})
		}
	}
	return r3.Unit(a)
}

// Ease maps linear elapsed time in [0,1] onto cosine ease-in-ease-out
// progress.
func Ease(elapsed float64) float64 {
	return (1 - math.Cos(elapsed*math.Pi)) / 2
}

// Elapsed returns the clamped fraction of the duration that has passed.
func (t Transition) Elapsed(now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	return clamp(float64(now.Sub(t.Start))/float64(t.Duration), 0, 1)
}

// Advance returns the camera state at now and whether the transition has
// finished.
func Advance(t Transition, now time.Time) (camera.State, bool) {
	elapsed := t.Elapsed(now)
	progress := Ease(elapsed)

	state := camera.State{
		Look:        t.StartLook,
		Up:          t.StartUp,
		FocalLength: t.StartFocalLength * math.Exp(progress*t.LogFocalLengthRatio),
	}
	if t.Angle != 0 && r3.Norm(t.Axis) > 0 {
		rot := r3.NewRotation(progress*t.Angle, t.Axis)
		state.Look = rot.Rotate(t.StartLook)
		state.Up = rot.Rotate(t.StartUp)
	}
	return state, elapsed == 1
}

// TargetFocalLength is the focal length the transition ends at.
func (t Transition) TargetFocalLength() float64 {
	return t.StartFocalLength * math.Exp(t.LogFocalLengthRatio)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
