// Package render is the boundary between the navigation core and whatever
// draws the sky. Scene is a retained set of point clouds and trail paths that
// the core mutates; back ends read it to draw a frame from a camera.
package render

import (
	"iter"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// Handle identifies a point cloud or path in a Scene. The zero Handle is
// never issued.
type Handle int

// PointCloud is a batch of stars drawn together.
type PointCloud struct {
	Key    string
	Points []r3.Vec
	Colors []colorful.Color // parallel to Points; nil means white
	Names  []string         // parallel to Points; optional
	Size   float64          // point size in pixels at a 1:1 scale
}

// Path is a trail segment between two directions on the sphere.
type Path struct {
	From, To r3.Vec
	Gray     uint8
}

type cloudEntry struct {
	cloud   PointCloud
	visible bool
}

// Scene is a retained scene graph. It is not safe for concurrent use.
type Scene struct {
	next   Handle
	clouds map[Handle]*cloudEntry
	paths  map[Handle]*Path
	order  []Handle // creation order, for stable drawing

	adds, removes int
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{
		clouds: make(map[Handle]*cloudEntry),
		paths:  make(map[Handle]*Path),
	}
}

func (s *Scene) issue() Handle {
	s.next++
	s.order = append(s.order, s.next)
	return s.next
}

// CreatePointCloud registers a point cloud. It is not drawn until Add.
func (s *Scene) CreatePointCloud(pc PointCloud) Handle {
	h := s.issue()
	s.clouds[h] = &cloudEntry{cloud: pc}
	return h
}

// Add makes a point cloud visible. Unknown handles are ignored.
func (s *Scene) Add(h Handle) {
	if e, ok := s.clouds[h]; ok && !e.visible {
		e.visible = true
		s.adds++
	}
}

// Remove hides a point cloud, or deletes a path. Unknown handles are
// ignored.
func (s *Scene) Remove(h Handle) {
	if e, ok := s.clouds[h]; ok {
		if e.visible {
			e.visible = false
			s.removes++
		}
		return
	}
	if _, ok := s.paths[h]; ok {
		delete(s.paths, h)
		s.order = slices.DeleteFunc(s.order, func(o Handle) bool { return o == h })
	}
}

// CreatePath adds a trail path to the scene. New paths start at full
// brightness.
func (s *Scene) CreatePath(from, to r3.Vec) Handle {
	h := s.issue()
	s.paths[h] = &Path{From: from, To: to, Gray: 0xff}
	return h
}

// UpdatePath moves both ends of a path.
func (s *Scene) UpdatePath(h Handle, from, to r3.Vec) {
	if p, ok := s.paths[h]; ok {
		p.From, p.To = from, to
	}
}

// SetPathGray sets a path's gray level.
func (s *Scene) SetPathGray(h Handle, g uint8) {
	if p, ok := s.paths[h]; ok {
		p.Gray = g
	}
}

// Visible reports whether a point cloud is currently shown.
func (s *Scene) Visible(h Handle) bool {
	e, ok := s.clouds[h]
	return ok && e.visible
}

// VisibleClouds yields shown point clouds in creation order.
func (s *Scene) VisibleClouds() iter.Seq[PointCloud] {
	return func(yield func(PointCloud) bool) {
		for _, h := range s.order {
			if e, ok := s.clouds[h]; ok && e.visible {
				if !yield(e.cloud) {
					return
				}
			}
		}
	}
}

// Paths yields trail paths in creation order, oldest first.
func (s *Scene) Paths() iter.Seq2[Handle, Path] {
	return func(yield func(Handle, Path) bool) {
		for _, h := range s.order {
			if p, ok := s.paths[h]; ok {
				if !yield(h, *p) {
					return
				}
			}
		}
	}
}

// Path returns a path by handle.
func (s *Scene) Path(h Handle) (Path, bool) {
	p, ok := s.paths[h]
	if !ok {
		return Path{}, false
	}
	return *p, true
}

// Stats summarizes the scene.
type Stats struct {
	Clouds        int `json:"clouds"`
	VisibleClouds int `json:"visible_clouds"`
	VisiblePoints int `json:"visible_points"`
	Paths         int `json:"paths"`
	Adds          int `json:"adds"`
	Removes       int `json:"removes"`
}

// Stats returns counts of scene contents and visibility toggles so far.
func (s *Scene) Stats() Stats {
	st := Stats{
		Clouds:  len(s.clouds),
		Paths:   len(s.paths),
		Adds:    s.adds,
		Removes: s.removes,
	}
	for _, e := range s.clouds {
		if e.visible {
			st.VisibleClouds++
			st.VisiblePoints += len(e.cloud.Points)
		}
	}
	return st
}
