// Package trail records the great-circle paths the camera has travelled,
// keeping a bounded history whose gray levels fade with age.
package trail

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-starfield/internal/render"
)

const (
	// DefaultMax is the number of committed segments kept.
	DefaultMax = 60
	// DefaultStep is the gray increment per free history slot.
	DefaultStep = 4
	// InProgressGray is the gray of a segment still being drawn.
	InProgressGray = 0x40

	baseGray = 0x41
)

// Scene is the part of the render scene trails are drawn into.
type Scene interface {
	CreatePath(from, to r3.Vec) render.Handle
	UpdatePath(h render.Handle, from, to r3.Vec)
	SetPathGray(h render.Handle, g uint8)
	Remove(h render.Handle)
}

// Segment is one recorded path.
type Segment struct {
	From, To r3.Vec
	Gray     uint8
	Handle   render.Handle
}

// Manager owns the in-progress segment and the committed history.
type Manager struct {
	scene   Scene
	max     int
	step    int
	current *Segment
	history []Segment // newest first
}

// New returns a manager keeping at most max segments. Non-positive values
// select the defaults.
func New(scene Scene, max, step int) *Manager {
	if max <= 0 {
		max = DefaultMax
	}
	if step <= 0 {
		step = DefaultStep
	}
	return &Manager{scene: scene, max: max, step: step}
}

// Begin starts a segment with both ends at from. An uncommitted segment is
// discarded first.
func (m *Manager) Begin(from r3.Vec) {
	m.Abandon()
	h := m.scene.CreatePath(from, from)
	m.scene.SetPathGray(h, InProgressGray)
	m.current = &Segment{From: from, To: from, Gray: InProgressGray, Handle: h}
}

// Update moves the in-progress segment's end.
func (m *Manager) Update(to r3.Vec) {
	if m.current == nil {
		return
	}
	m.current.To = to
	m.scene.UpdatePath(m.current.Handle, m.current.From, to)
}

// Commit pushes the in-progress segment onto the history, evicts the oldest
// segments beyond the bound and recolors. It returns the number evicted.
func (m *Manager) Commit() int {
	if m.current == nil {
		return 0
	}
	m.history = append([]Segment{*m.current}, m.history...)
	m.current = nil

	evicted := 0
	for len(m.history) > m.max {
		last := m.history[len(m.history)-1]
		m.scene.Remove(last.Handle)
		m.history = m.history[:len(m.history)-1]
		evicted++
	}

	m.recolor()
	return evicted
}

// recolor gives the newest segment a gray derived from the history length
// and shifts every other segment to the gray its newer neighbour had: a
// one-step-delayed cascade.
func (m *Manager) recolor() {
	prev := m.history[0].Gray
	m.history[0].Gray = clampGray((baseGray - len(m.history)) * m.step)
	m.scene.SetPathGray(m.history[0].Handle, m.history[0].Gray)
	for i := 1; i < len(m.history); i++ {
		prev, m.history[i].Gray = m.history[i].Gray, prev
		m.scene.SetPathGray(m.history[i].Handle, m.history[i].Gray)
	}
}

// Abandon drops the in-progress segment without committing it.
func (m *Manager) Abandon() {
	if m.current == nil {
		return
	}
	m.scene.Remove(m.current.Handle)
	m.current = nil
}

// InProgress returns the segment being drawn, if any.
func (m *Manager) InProgress() (Segment, bool) {
	if m.current == nil {
		return Segment{}, false
	}
	return *m.current, true
}

// History returns committed segments, newest first.
func (m *Manager) History() []Segment {
	out := make([]Segment, len(m.history))
	copy(out, m.history)
	return out
}

// Len returns the number of committed segments.
func (m *Manager) Len() int { return len(m.history) }

// Max returns the history bound.
func (m *Manager) Max() int { return m.max }

func clampGray(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
