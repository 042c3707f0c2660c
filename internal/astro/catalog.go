package astro

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

// Shape tags how a catalog is partitioned.
type Shape int

const (
	// ShapeFlat is an ordered star list partitioned into size buckets.
	ShapeFlat Shape = iota
	// ShapeGrouped is an ordered list of keyed groups (planes or shards).
	ShapeGrouped
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeGrouped:
		return "grouped"
	default:
		return "unknown"
	}
}

// Group is one render/LOD batch of stars.
type Group struct {
	Key       string
	Magnitude float64 // LOD magnitude: explicit, or the brightest member
	PointSize float64 // 0 when the renderer should size by magnitude
	Stars     []StarRecord
}

// Catalog is the immutable star collection for a session.
type Catalog struct {
	shape  Shape
	stars  []StarRecord // scan order
	groups []Group
}

// NewFlatCatalog builds a flat catalog. Stars keep their order; groups are
// the six magnitude size buckets, empty buckets omitted.
func NewFlatCatalog(stars []StarRecord) *Catalog {
	c := &Catalog{
		shape: ShapeFlat,
		stars: slices.Clone(stars),
	}

	var buckets [NumSizeBuckets][]StarRecord
	for _, s := range c.stars {
		b := SizeBucket(s.Magnitude)
		buckets[b] = append(buckets[b], s)
	}
	for b, members := range buckets {
		if len(members) == 0 {
			continue
		}
		c.groups = append(c.groups, Group{
			Key:       fmt.Sprintf("size%d", b),
			Magnitude: brightest(members),
			PointSize: BucketPointSize(b),
			Stars:     members,
		})
	}
	return c
}

// NewGroupedCatalog builds a grouped catalog. Group order is preserved and
// defines scan order. A group with a NaN magnitude gets its brightest
// member's magnitude.
func NewGroupedCatalog(groups []Group) *Catalog {
	c := &Catalog{shape: ShapeGrouped}
	for _, g := range groups {
		g.Stars = slices.Clone(g.Stars)
		if math.IsNaN(g.Magnitude) {
			g.Magnitude = brightest(g.Stars)
		}
		c.groups = append(c.groups, g)
		c.stars = append(c.stars, g.Stars...)
	}
	return c
}

// EmptyCatalog returns a catalog with no stars. Every query on it is a no-op.
func EmptyCatalog() *Catalog {
	return &Catalog{shape: ShapeFlat}
}

// Shape reports the catalog partition kind.
func (c *Catalog) Shape() Shape {
	if c == nil {
		return ShapeFlat
	}
	return c.shape
}

// Len returns the number of stars.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.stars)
}

// All yields every star in stable scan order regardless of shape.
func (c *Catalog) All() iter.Seq[StarRecord] {
	return func(yield func(StarRecord) bool) {
		if c == nil {
			return
		}
		for _, s := range c.stars {
			if !yield(s) {
				return
			}
		}
	}
}

// Groups yields the render/LOD partition.
func (c *Catalog) Groups() iter.Seq[Group] {
	return func(yield func(Group) bool) {
		if c == nil {
			return
		}
		for _, g := range c.groups {
			if !yield(g) {
				return
			}
		}
	}
}

// NumGroups returns the number of groups.
func (c *Catalog) NumGroups() int {
	if c == nil {
		return 0
	}
	return len(c.groups)
}

// Find returns the first star with the given name.
func (c *Catalog) Find(name string) (StarRecord, bool) {
	for s := range c.All() {
		if s.Name == name {
			return s, true
		}
	}
	return StarRecord{}, false
}

// Brightest returns up to n stars ordered by magnitude, brightest first.
// Ties keep scan order.
func (c *Catalog) Brightest(n int) []StarRecord {
	if c == nil || n <= 0 {
		return nil
	}
	sorted := slices.Clone(c.stars)
	slices.SortStableFunc(sorted, func(a, b StarRecord) int {
		switch {
		case a.Magnitude < b.Magnitude:
			return -1
		case a.Magnitude > b.Magnitude:
			return 1
		default:
			return 0
		}
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func brightest(stars []StarRecord) float64 {
	if len(stars) == 0 {
		return math.Inf(1)
	}
	m := stars[0].Magnitude
	for _, s := range stars[1:] {
		m = math.Min(m, s.Magnitude)
	}
	return m
}
