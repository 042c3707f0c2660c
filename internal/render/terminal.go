package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// TerminalCellAspect is the usual height-to-width ratio of a terminal cell.
const TerminalCellAspect = 2.0

const (
	// Star glyphs by point size
	glyphStarBright = '✶' // size >= 7
	glyphStarMedium = '✸' // size >= 5.5
	glyphStarDim    = '•' // size >= 4
	glyphStarFaint  = '·'

	glyphTrail     = '∙'
	glyphCrosshair = '+'

	colorBackground = "236" // very dark background
	colorCrosshair  = "60"  // muted purple
	colorLabel      = "229" // bright gold
)

// Terminal draws frames as lipgloss-styled text, one rune per cell.
type Terminal struct {
	Crosshair bool
	Highlight string // star to label on the canvas
}

// Viewport returns the viewport for a cols×rows canvas.
func (Terminal) Viewport(cols, rows int) Viewport {
	return Viewport{Width: cols, Height: rows, CellAspect: TerminalCellAspect}
}

type cell struct {
	r     rune
	color lipgloss.Color
	size  float64 // size of the star occupying the cell; trails use -1
}

// Render draws f as a block of text exactly Width cells by Height lines.
func (t Terminal) Render(f Frame) string {
	width, height := f.Viewport.Width, f.Viewport.Height
	if width <= 0 || height <= 0 {
		return ""
	}

	canvas := make([][]cell, height)
	for y := range canvas {
		canvas[y] = make([]cell, width)
		for x := range canvas[y] {
			canvas[y][x] = cell{r: ' ', color: colorBackground, size: math.Inf(-1)}
		}
	}
	set := func(x, y int, c cell) {
		if x < 0 || x >= width || y < 0 || y >= height {
			return
		}
		canvas[y][x] = c
	}

	// Trails under stars
	for _, line := range f.Lines {
		c := cell{r: glyphTrail, color: grayColor(line.Gray), size: -1}
		for i := 1; i < len(line.Points); i++ {
			a, b := line.Points[i-1], line.Points[i]
			if !nearCanvas(a, width, height) || !nearCanvas(b, width, height) {
				continue
			}
			drawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), func(x, y int) { set(x, y, c) })
		}
	}

	if t.Crosshair {
		set(width/2, height/2, cell{r: glyphCrosshair, color: colorCrosshair, size: -1})
	}

	// The biggest star in a cell wins it.
	var labelAt *Dot
	for i := range f.Dots {
		d := &f.Dots[i]
		x, y := int(d.X), int(d.Y)
		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}
		if canvas[y][x].size >= d.Size {
			continue
		}
		canvas[y][x] = cell{r: starGlyph(d.Size), color: hexColor(d.Color), size: d.Size}
		if t.Highlight != "" && d.Name == t.Highlight {
			labelAt = d
		}
	}

	if labelAt != nil {
		// Label starts 2 chars after glyph (1 space gap)
		x, y := int(labelAt.X)+2, int(labelAt.Y)
		for i, r := range []rune("◄ " + labelAt.Name) {
			set(x+i, y, cell{r: r, color: colorLabel, size: math.Inf(1)})
		}
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(canvas[y][x].color)
			b.WriteString(style.Render(string(canvas[y][x].r)))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// starGlyph returns the glyph for a star of the given point size. Bigger
// (brighter) stars get more prominent symbols.
func starGlyph(size float64) rune {
	switch {
	case size >= 7:
		return glyphStarBright
	case size >= 5.5:
		return glyphStarMedium
	case size >= 4:
		return glyphStarDim
	default:
		return glyphStarFaint
	}
}

func hexColor(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}

func grayColor(g uint8) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", g, g, g))
}

// drawLine plots the cells between two points (Bresenham).
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// nearCanvas bounds line drawing for points projected far off screen.
func nearCanvas(p Point, width, height int) bool {
	w, h := float64(width), float64(height)
	return p.X >= -w && p.X <= 2*w && p.Y >= -h && p.Y <= 2*h
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
