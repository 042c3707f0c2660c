package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"
)

var (
	colorBackdrop = color.RGBA{R: 8, G: 10, B: 24, A: 255}
	colorTitle    = color.RGBA{R: 230, G: 220, B: 170, A: 255}
	colorSubtle   = color.RGBA{R: 140, G: 130, B: 190, A: 255}
)

// SnapshotOptions controls image export.
type SnapshotOptions struct {
	Path     string // Output path; format inferred from extension when Format empty
	Format   string // "svg" or "png" (case-insensitive)
	Title    string // Optional caption, usually the selected star
	Subtitle string // Optional second caption line
}

// ResolveFormat returns the normalized format and output path.
func (o SnapshotOptions) ResolveFormat() (format, path string, err error) {
	format = strings.ToLower(strings.TrimPrefix(o.Format, "."))
	path = o.Path
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "png"
			if path != "" && filepath.Ext(path) == "" {
				path += ".png"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// SaveSnapshot writes f to a PNG or SVG file.
func SaveSnapshot(f Frame, opts SnapshotOptions) error {
	format, path, err := opts.ResolveFormat()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeSnapshot(file, format, f, opts)
}

// writeSnapshot encodes f to w and closes it. A failed close is reported,
// since it can mean the image was truncated.
func writeSnapshot(w io.WriteCloser, format string, f Frame, opts SnapshotOptions) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close snapshot: %w", cerr))
		}
	}()

	if format == "svg" {
		return WriteSVG(w, f, opts)
	}
	return EncodePNG(w, f, opts)
}

// EncodePNG draws f with gg and writes it as PNG.
func EncodePNG(w io.Writer, f Frame, opts SnapshotOptions) error {
	width, height := f.Viewport.Width, f.Viewport.Height
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid snapshot size %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetLineWidth(1.5)
	for _, line := range f.Lines {
		dc.SetColor(color.Gray{Y: line.Gray})
		for i := 1; i < len(line.Points); i++ {
			a, b := line.Points[i-1], line.Points[i]
			dc.DrawLine(a.X, a.Y, b.X, b.Y)
		}
		dc.Stroke()
	}

	for _, d := range f.Dots {
		dc.SetColor(d.Color.Clamped())
		dc.DrawCircle(d.X, d.Y, dotRadius(d.Size))
		dc.Fill()
	}

	dc.SetFontFace(basicfont.Face7x13)
	if opts.Title != "" {
		dc.SetColor(colorTitle)
		dc.DrawStringAnchored(opts.Title, 16, 20, 0, 0.5)
	}
	if opts.Subtitle != "" {
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(opts.Subtitle, 16, 38, 0, 0.5)
	}

	return dc.EncodePNG(w)
}

// WriteSVG writes f as an SVG document.
func WriteSVG(w io.Writer, f Frame, opts SnapshotOptions) error {
	width, height := f.Viewport.Width, f.Viewport.Height
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid snapshot size %dx%d", width, height)
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	for _, line := range f.Lines {
		xs := make([]int, len(line.Points))
		ys := make([]int, len(line.Points))
		for i, p := range line.Points {
			xs[i], ys[i] = int(p.X), int(p.Y)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5", css(color.Gray{Y: line.Gray})))
	}

	for _, d := range f.Dots {
		r := max(1, int(dotRadius(d.Size)+0.5))
		canvas.Circle(int(d.X), int(d.Y), r, fmt.Sprintf("fill:%s", hex(d.Color)))
	}

	if opts.Title != "" {
		canvas.Text(16, 24, opts.Title, fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(colorTitle)))
	}
	if opts.Subtitle != "" {
		canvas.Text(16, 42, opts.Subtitle, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

func dotRadius(size float64) float64 {
	return max(0.5, size/2)
}

func hex(c colorful.Color) string {
	return c.Clamped().Hex()
}

func css(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
