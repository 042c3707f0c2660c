package state

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/litescript/ls-starfield/internal/astro"
	"github.com/litescript/ls-starfield/internal/camera"
	"github.com/litescript/ls-starfield/internal/lod"
	"github.com/litescript/ls-starfield/internal/nav"
	"github.com/litescript/ls-starfield/internal/render"
)

// Snapshot is the JSON-serializable state of the viewer at one instant.
type Snapshot struct {
	Time     time.Time    `json:"time"`
	Camera   camera.State `json:"camera"`
	FOVDeg   float64      `json:"fov_deg"`
	Label    string       `json:"label,omitempty"`
	Active   bool         `json:"active"`
	Target   string       `json:"target,omitempty"`
	Progress float64      `json:"progress"`
	Arrivals int          `json:"arrivals"`
	Trail    int          `json:"trail"`
	Stars    int          `json:"stars"`
	Groups   int          `json:"groups"`
	Visible  int          `json:"visible_groups"`
	Scene    render.Stats `json:"scene"`
	Events   []Event      `json:"events,omitempty"`
}

// Snapshot returns a copy of the viewer's current state.
func (v *Viewer) Snapshot() Snapshot {
	now := v.clock.Now()
	s := Snapshot{
		Time:     now,
		Camera:   v.camera,
		FOVDeg:   v.camera.FOV() * 180 / math.Pi,
		Label:    v.label,
		Arrivals: v.arrivals,
		Trail:    v.trail.Len(),
		Stars:    v.catalog.Len(),
		Groups:   v.catalog.NumGroups(),
		Visible:  v.lod.VisibleCount(),
		Scene:    v.scene.Stats(),
		Events:   v.getEventsOrdered(),
	}
	if t, ok := v.engine.Active(); ok {
		s.Active = true
		s.Target = t.Label
		s.Progress = nav.Ease(t.Elapsed(now))
	}
	return s
}

// WriteJSON writes the snapshot as indented JSON.
func (s Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// GroupRow is one row of the catalog summary table.
type GroupRow struct {
	Key       string
	Stars     int
	Magnitude float64
	Brightest string
	Visible   bool
}

// GenerateGroupRows summarizes each catalog group, with visibility at focal
// length f.
func GenerateGroupRows(cat *astro.Catalog, f float64) []GroupRow {
	threshold := lod.Threshold(f)
	var rows []GroupRow
	for g := range cat.Groups() {
		row := GroupRow{
			Key:       g.Key,
			Stars:     len(g.Stars),
			Magnitude: g.Magnitude,
			Visible:   g.Magnitude < threshold,
		}
		best := math.Inf(1)
		for _, s := range g.Stars {
			if s.Magnitude < best {
				best, row.Brightest = s.Magnitude, s.Name
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCatalogTable writes a text table of catalog groups.
func WriteCatalogTable(w io.Writer, cat *astro.Catalog, source string, f float64) {
	rows := GenerateGroupRows(cat, f)

	if source == "" {
		source = "embedded"
	}
	fmt.Fprintf(w, "Catalog %s: %d stars, %d groups (%s)\n", source, cat.Len(), cat.NumGroups(), cat.Shape())
	fmt.Fprintln(w, strings.Repeat("─", 72))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No stars")
		return
	}

	// Header
	fmt.Fprintf(w, "%-30s %6s %6s %-20s %-4s\n", "Group", "Stars", "Mag", "Brightest", "Vis")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	visible := 0
	for _, r := range rows {
		vis := "-"
		if r.Visible {
			vis = "yes"
			visible++
		}
		fmt.Fprintf(w, "%-30s %6d %6.2f %-20s %-4s\n",
			truncateStr(r.Key, 30),
			r.Stars,
			r.Magnitude,
			truncateStr(r.Brightest, 20),
			vis,
		)
	}

	fmt.Fprintf(w, "\nVisible at f=%.0fmm: %d of %d groups\n", f, visible, len(rows))
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
