package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-starfield/internal/render"
	"github.com/litescript/ls-starfield/internal/state"
)

var (
	snapOut    string
	snapFormat string
	snapGoTo   string
	snapWidth  int
	snapHeight int
	snapState  string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render the star map to a PNG or SVG image",
	Long: `Render the star map to an image without a terminal. With --goto the
camera first flies to the named star, on a simulated clock, and the image
shows the view on arrival.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVarP(&snapOut, "out", "o", "starfield.png", "Output path")
	f.StringVar(&snapFormat, "format", "", "Image format: png or svg (default from extension)")
	f.StringVar(&snapGoTo, "goto", "", "Fly to this star before rendering")
	f.IntVar(&snapWidth, "width", 1280, "Image width in pixels")
	f.IntVar(&snapHeight, "height", 720, "Image height in pixels")
	f.StringVar(&snapState, "state", "", "Also write the viewer state as JSON to this path (- for stdout)")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if snapWidth <= 0 || snapHeight <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", snapWidth, snapHeight)
	}
	opts := render.SnapshotOptions{Path: snapOut, Format: snapFormat}
	if _, _, err := opts.ResolveFormat(); err != nil {
		return err
	}

	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	clock := state.NewManualClock(time.Now())
	viewer := state.NewViewer(e.catalog, state.ConfigFrom(e.cfg, e.startSeed()), clock, e.log.With("viewer"))

	if snapGoTo != "" {
		if _, err := viewer.GoTo(snapGoTo); err != nil {
			return err
		}
		if err := fly(viewer, clock, 50*time.Millisecond, e.cfg.Navigation.Duration, nil); err != nil {
			return err
		}
	}

	cam := viewer.Camera()
	opts.Title = viewer.Label()
	opts.Subtitle = fmt.Sprintf("f=%.1fmm  fov %.1f°  %d stars", cam.FocalLength, cam.FOV()*180/math.Pi, e.catalog.Len())

	frame := viewer.Frame(render.Viewport{Width: snapWidth, Height: snapHeight, CellAspect: 1})
	if err := render.SaveSnapshot(frame, opts); err != nil {
		return err
	}
	_, path, _ := opts.ResolveFormat()
	e.log.Info("wrote %s (%d stars drawn)", path, len(frame.Dots))

	if snapState != "" {
		return writeState(cmd, viewer.Snapshot(), snapState)
	}
	return nil
}
