package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-starfield/internal/nav"
	"github.com/litescript/ls-starfield/internal/state"
)

var (
	tourStep time.Duration
	tourJSON bool
)

var tourCmd = &cobra.Command{
	Use:   "tour NAME...",
	Short: "Fly through named stars headlessly, printing the camera each step",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTour,
}

func init() {
	tourCmd.Flags().DurationVar(&tourStep, "step", 100*time.Millisecond, "Simulated time between frames")
	tourCmd.Flags().BoolVar(&tourJSON, "json", false, "Print JSON lines instead of text")
	rootCmd.AddCommand(tourCmd)
}

// tourFrame is one simulated frame of a tour.
type tourFrame struct {
	T           float64 `json:"t"` // seconds since the tour started
	Target      string  `json:"target"`
	Look        r3.Vec  `json:"look"`
	Up          r3.Vec  `json:"up"`
	FocalLength float64 `json:"focal_length"`
	FOVDeg      float64 `json:"fov_deg"`
	Visible     int     `json:"visible_groups"`
	Trail       int     `json:"trail"`
	Arrived     bool    `json:"arrived,omitempty"`
}

func runTour(cmd *cobra.Command, args []string) error {
	if tourStep <= 0 {
		return fmt.Errorf("--step must be positive, got %v", tourStep)
	}

	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	start := time.Now()
	clock := state.NewManualClock(start)
	viewer := state.NewViewer(e.catalog, state.ConfigFrom(e.cfg, e.startSeed()), clock, e.log.With("viewer"))

	out := cmd.OutOrStdout()
	emit := textFrameWriter(out)
	if tourJSON {
		emit = jsonFrameWriter(out)
	}

	for _, name := range args {
		if _, err := viewer.GoTo(name); err != nil {
			return err
		}
		err := fly(viewer, clock, tourStep, e.cfg.Navigation.Duration, func(arrived bool) error {
			return emit(frameOf(viewer, clock.Now().Sub(start), arrived))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// fly advances the clock in steps until the running transition completes,
// calling onStep after every frame.
func fly(viewer *state.Viewer, clock *state.ManualClock, step, duration time.Duration, onStep func(arrived bool) error) error {
	if duration <= 0 {
		duration = nav.DefaultDuration
	}
	// One extra step covers rounding at the end of the transition.
	limit := int(duration/step) + 2

	for i := 0; viewer.Busy(); i++ {
		if i > limit {
			return fmt.Errorf("transition to %s did not complete", viewer.Label())
		}
		clock.Advance(step)
		viewer.Tick()
		if onStep != nil {
			if err := onStep(!viewer.Busy()); err != nil {
				return err
			}
		}
	}
	return nil
}

func frameOf(viewer *state.Viewer, t time.Duration, arrived bool) tourFrame {
	cam := viewer.Camera()
	visible := 0
	for _, g := range viewer.Groups() {
		if g.Visible {
			visible++
		}
	}
	return tourFrame{
		T:           t.Seconds(),
		Target:      viewer.Label(),
		Look:        cam.Look,
		Up:          cam.Up,
		FocalLength: cam.FocalLength,
		FOVDeg:      cam.FOV() * 180 / math.Pi,
		Visible:     visible,
		Trail:       len(viewer.Trail()),
		Arrived:     arrived,
	}
}

func textFrameWriter(w io.Writer) func(tourFrame) error {
	return func(f tourFrame) error {
		mark := ""
		if f.Arrived {
			mark = "  ✓ arrived"
		}
		_, err := fmt.Fprintf(w, "t=%6.2fs  %-16s look=(%+.4f %+.4f %+.4f)  f=%5.1fmm  fov=%4.1f°  groups=%d%s\n",
			f.T, f.Target, f.Look.X, f.Look.Y, f.Look.Z, f.FocalLength, f.FOVDeg, f.Visible, mark)
		return err
	}
}

func jsonFrameWriter(w io.Writer) func(tourFrame) error {
	enc := json.NewEncoder(w)
	return func(f tourFrame) error {
		return enc.Encode(f)
	}
}
