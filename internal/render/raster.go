package render

import (
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-starfield/internal/camera"
	"github.com/litescript/ls-starfield/internal/palette"
)

// pathSamples is how many pieces a trail arc is cut into before projection.
const pathSamples = 24

// Viewport is the drawing surface. CellAspect is the height of one pixel
// over its width: 1 for images, about 2 for terminal cells.
type Viewport struct {
	Width, Height int
	CellAspect    float64
}

// Aspect returns the physical width over height of the surface.
func (v Viewport) Aspect() float64 {
	ca := v.CellAspect
	if ca <= 0 {
		ca = 1
	}
	if v.Height == 0 {
		return 1
	}
	return float64(v.Width) / (float64(v.Height) * ca)
}

// ToPixel maps normalized device coordinates to surface coordinates with
// the origin top-left.
func (v Viewport) ToPixel(p camera.NDC) Point {
	return Point{
		X: (p.X + 1) / 2 * float64(v.Width),
		Y: (1 - p.Y) / 2 * float64(v.Height),
	}
}

// NDCFromPixel maps a pixel position on a w×h surface to normalized device
// coordinates.
func NDCFromPixel(px, py, w, h float64) camera.NDC {
	return camera.NDC{
		X: px/w*2 - 1,
		Y: -py/h*2 + 1,
	}
}

// Point is a position on the surface.
type Point struct {
	X, Y float64
}

// Dot is one projected star.
type Dot struct {
	Point
	Color colorful.Color
	Size  float64
	Name  string
}

// Polyline is one projected trail path.
type Polyline struct {
	Points []Point
	Gray   uint8
}

// Frame is everything visible from a camera, in surface coordinates.
type Frame struct {
	Viewport Viewport
	Dots     []Dot
	Lines    []Polyline
}

// Rasterize projects the scene's visible clouds and paths through cam.
func Rasterize(s *Scene, cam camera.State, vp Viewport) Frame {
	f := Frame{Viewport: vp}
	if vp.Width <= 0 || vp.Height <= 0 {
		return f
	}
	aspect := vp.Aspect()

	for _, h := range s.order {
		if p, ok := s.paths[h]; ok {
			f.Lines = append(f.Lines, projectPath(*p, cam, vp, aspect)...)
		}
	}

	for pc := range s.VisibleClouds() {
		for i, dir := range pc.Points {
			ndc, ok := cam.Project(dir, aspect)
			if !ok || !ndc.InView() {
				continue
			}
			d := Dot{Point: vp.ToPixel(ndc), Color: palette.Neutral, Size: pc.Size}
			if i < len(pc.Colors) {
				d.Color = pc.Colors[i]
			}
			if i < len(pc.Names) {
				d.Name = pc.Names[i]
			}
			f.Dots = append(f.Dots, d)
		}
	}
	return f
}

// projectPath samples the arc from p.From to p.To and splits it wherever it
// passes behind the camera.
func projectPath(p Path, cam camera.State, vp Viewport, aspect float64) []Polyline {
	var out []Polyline
	cur := Polyline{Gray: p.Gray}
	flush := func() {
		if len(cur.Points) >= 2 {
			out = append(out, cur)
		}
		cur = Polyline{Gray: p.Gray}
	}

	for i := 0; i <= pathSamples; i++ {
		t := float64(i) / pathSamples
		dir := r3.Add(r3.Scale(1-t, p.From), r3.Scale(t, p.To))
		if r3.Norm(dir) < 1e-12 {
			flush()
			continue
		}
		ndc, ok := cam.Project(r3.Unit(dir), aspect)
		if !ok {
			flush()
			continue
		}
		cur.Points = append(cur.Points, vp.ToPixel(ndc))
	}
	flush()
	return out
}
