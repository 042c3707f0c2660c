package astro

// maxQuadDepth stops subdivision for items with coincident coordinates.
const maxQuadDepth = 16

// QuadTree is a capacity-bounded quadtree over the unit square (or any
// square) that keeps each node's items in insertion order. Items are
// expected to arrive sorted (brightest first), so every node holds the
// brightest items of its region and pushes fainter ones down.
type QuadTree[T any] struct {
	minX, minY float64
	halfSize   float64
	capacity   int
	depth      int

	coords func(T) (float64, float64)
	bisect func([]T) int

	items    []T
	children []*QuadTree[T]
}

// NewQuadTree creates a root node covering [0,size)². When a node overflows,
// bisect picks the first item index to push down to the children; nil keeps
// exactly capacity items, as does a bisect result of zero.
func NewQuadTree[T any](capacity int, size float64, coords func(T) (float64, float64), bisect func([]T) int) *QuadTree[T] {
	return &QuadTree[T]{
		halfSize: size / 2,
		capacity: capacity,
		coords:   coords,
		bisect:   bisect,
	}
}

// Add inserts an item.
func (q *QuadTree[T]) Add(item T) {
	if len(q.children) > 0 {
		q.childFor(item).Add(item)
		return
	}

	q.items = append(q.items, item)
	if len(q.items) <= q.capacity || q.depth >= maxQuadDepth {
		return
	}

	q.subdivide()
	pos := q.capacity
	if q.bisect != nil {
		pos = q.bisect(q.items)
	}
	// A node never pushes all of its items down.
	if pos <= 0 {
		pos = q.capacity
	}
	pos = min(pos, len(q.items))

	overflow := q.items[pos:]
	q.items = q.items[:pos:pos]
	for _, e := range overflow {
		q.childFor(e).Add(e)
	}
}

func (q *QuadTree[T]) childFor(item T) *QuadTree[T] {
	x, y := q.coords(item)
	ix, iy := 0, 0
	if x-q.minX >= q.halfSize {
		ix = 1
	}
	if y-q.minY >= q.halfSize {
		iy = 1
	}
	return q.children[ix+2*iy]
}

func (q *QuadTree[T]) subdivide() {
	q.children = make([]*QuadTree[T], 4)
	for i := range q.children {
		q.children[i] = &QuadTree[T]{
			minX:     q.minX + float64(i%2)*q.halfSize,
			minY:     q.minY + float64(i/2)*q.halfSize,
			halfSize: q.halfSize / 2,
			capacity: q.capacity,
			depth:    q.depth + 1,
			coords:   q.coords,
			bisect:   q.bisect,
		}
	}
}

// Items returns the node's own items.
func (q *QuadTree[T]) Items() []T { return q.items }

// Children returns the four children, or nil for a leaf.
func (q *QuadTree[T]) Children() []*QuadTree[T] { return q.children }

// Bounds returns the node's lower corner and edge length.
func (q *QuadTree[T]) Bounds() (minX, minY, size float64) {
	return q.minX, q.minY, q.halfSize * 2
}

// Walk visits the node and then its children, depth first.
func (q *QuadTree[T]) Walk(fn func(*QuadTree[T])) {
	fn(q)
	for _, c := range q.children {
		c.Walk(fn)
	}
}

// HalfMagnitudeBisect returns the first index whose magnitude reaches the
// faintest item's magnitude truncated to a half magnitude, so a node's
// pushed-down items start on a half-magnitude boundary. It returns 0 when
// every item shares one half magnitude. items must be sorted by magnitude.
func HalfMagnitudeBisect(items []HYGStar) int {
	if len(items) == 0 {
		return 0
	}
	floor := float64(int(items[len(items)-1].Magnitude*2)) / 2
	for i, s := range items {
		if s.Magnitude >= floor {
			return i
		}
	}
	return len(items)
}
