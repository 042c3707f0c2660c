// Package lod shows and hides point-cloud groups as the zoom changes, so
// faint groups only appear once the camera is zoomed in far enough.
package lod

import (
	"math"

	"github.com/litescript/ls-starfield/internal/render"
)

// SizeAttenuation is how fast point size falls with magnitude at focal
// length f.
func SizeAttenuation(f float64) float64 {
	return 4.1 - math.Log(f)/1.5
}

// MagFromSize returns the magnitude drawn at point size s.
func MagFromSize(s, f float64) float64 {
	return (10 - s) / SizeAttenuation(f)
}

// SizeForMagnitude is the inverse of MagFromSize.
func SizeForMagnitude(mag, f float64) float64 {
	return 10 - mag*SizeAttenuation(f)
}

// Threshold is the faintest magnitude visible at focal length f: the
// magnitude drawn one pixel wide. It is +Inf once attenuation stops being
// positive.
func Threshold(f float64) float64 {
	if SizeAttenuation(f) <= 0 {
		return math.Inf(1)
	}
	return MagFromSize(1, f)
}

// Scene is the part of the render scene the controller drives.
type Scene interface {
	Add(h render.Handle)
	Remove(h render.Handle)
}

// Group is the visibility state of one point cloud.
type Group struct {
	Key       string
	Magnitude float64
	Handle    render.Handle
	Visible   bool
}

// Controller reconciles group visibility against the zoom level.
type Controller struct {
	scene  Scene
	groups []Group
}

// New returns a controller for groups, all initially hidden.
func New(scene Scene, groups []Group) *Controller {
	c := &Controller{scene: scene, groups: make([]Group, len(groups))}
	for i, g := range groups {
		g.Visible = false
		c.groups[i] = g
	}
	return c
}

// Reconcile shows groups brighter than the threshold at focal length f and
// hides groups fainter than it. A group exactly at the threshold keeps its
// state. It returns how many groups changed.
func (c *Controller) Reconcile(f float64) int {
	threshold := Threshold(f)
	toggled := 0
	for i := range c.groups {
		g := &c.groups[i]
		switch {
		case g.Magnitude < threshold && !g.Visible:
			c.scene.Add(g.Handle)
			g.Visible = true
			toggled++
		case g.Magnitude > threshold && g.Visible:
			c.scene.Remove(g.Handle)
			g.Visible = false
			toggled++
		}
	}
	return toggled
}

// Groups returns a copy of the current visibility state.
func (c *Controller) Groups() []Group {
	out := make([]Group, len(c.groups))
	copy(out, c.groups)
	return out
}

// VisibleCount returns how many groups are shown.
func (c *Controller) VisibleCount() int {
	n := 0
	for _, g := range c.groups {
		if g.Visible {
			n++
		}
	}
	return n
}
