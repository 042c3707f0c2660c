// Package config handles loading ls-starfield configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/ls-starfield/config.yaml
//
// A missing file yields DefaultConfig. Command-line flags override file
// values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-starfield/internal/camera"
	"github.com/litescript/ls-starfield/internal/logging"
	"github.com/litescript/ls-starfield/internal/nav"
	"github.com/litescript/ls-starfield/internal/pick"
	"github.com/litescript/ls-starfield/internal/trail"
)

const appName = "ls-starfield"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// CatalogConfig selects the star catalog.
type CatalogConfig struct {
	Path    string        `yaml:"path,omitempty"`    // file, shard directory or URL; empty = embedded
	Timeout time.Duration `yaml:"timeout,omitempty"` // HTTP timeout
}

// NavigationConfig controls camera transitions.
type NavigationConfig struct {
	Duration           time.Duration `yaml:"duration,omitempty"`
	OnBusy             string        `yaml:"on_busy,omitempty"` // interrupt, ignore
	Angle              string        `yaml:"angle,omitempty"`   // asin, acos
	Zoom               string        `yaml:"zoom,omitempty"`    // modern, classic
	InitialFocalLength float64       `yaml:"initial_focal_length,omitempty"`
}

// PickConfig controls click hit testing.
type PickConfig struct {
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// TrailConfig controls the trail history.
type TrailConfig struct {
	Max  int `yaml:"max,omitempty"`
	Step int `yaml:"step,omitempty"`
}

// RenderConfig controls the frame loop.
type RenderConfig struct {
	IdleInterval  time.Duration `yaml:"idle_interval,omitempty"`  // heartbeat redraw when idle
	FrameInterval time.Duration `yaml:"frame_interval,omitempty"` // tick period
	RandomStart   bool          `yaml:"random_start"`
	Seed          uint64        `yaml:"seed,omitempty"` // 0 = time-based
	Crosshair     bool          `yaml:"crosshair"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog,omitempty"`
	Navigation NavigationConfig `yaml:"navigation,omitempty"`
	Pick       PickConfig       `yaml:"pick,omitempty"`
	Trail      TrailConfig      `yaml:"trail,omitempty"`
	Render     RenderConfig     `yaml:"render,omitempty"`
	Log        LogConfig        `yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			Timeout: 30 * time.Second,
		},
		Navigation: NavigationConfig{
			Duration:           nav.DefaultDuration,
			OnBusy:             "interrupt",
			Angle:              "asin",
			Zoom:               "modern",
			InitialFocalLength: camera.DefaultFocalLength,
		},
		Pick: PickConfig{
			Tolerance: pick.DefaultTolerance,
		},
		Trail: TrailConfig{
			Max:  trail.DefaultMax,
			Step: trail.DefaultStep,
		},
		Render: RenderConfig{
			IdleInterval:  time.Second,
			FrameInterval: 30 * time.Millisecond,
			RandomStart:   true,
			Crosshair:     true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG config directory for ls-starfield.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path and validates it.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Catalog.Path = expandHome(cfg.Catalog.Path)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Catalog.Timeout < 0 {
		bad("catalog.timeout must not be negative")
	}
	if c.Navigation.Duration <= 0 {
		bad("navigation.duration must be positive, got %v", c.Navigation.Duration)
	}
	if _, err := nav.ParseBusyPolicy(c.Navigation.OnBusy); err != nil {
		bad("navigation.on_busy: %v", err)
	}
	if _, err := nav.ParseAngleMode(c.Navigation.Angle); err != nil {
		bad("navigation.angle: %v", err)
	}
	if _, err := camera.ParseZoomMapping(c.Navigation.Zoom); err != nil {
		bad("navigation.zoom: %v", err)
	}
	if c.Navigation.InitialFocalLength <= 0 {
		bad("navigation.initial_focal_length must be positive")
	}
	if c.Pick.Tolerance <= 0 || c.Pick.Tolerance > 6 {
		bad("pick.tolerance must be in (0, 6], got %v", c.Pick.Tolerance)
	}
	if c.Trail.Max <= 0 {
		bad("trail.max must be positive, got %d", c.Trail.Max)
	}
	if c.Trail.Step <= 0 {
		bad("trail.step must be positive, got %d", c.Trail.Step)
	}
	if c.Render.IdleInterval <= 0 {
		bad("render.idle_interval must be positive")
	}
	if c.Render.FrameInterval <= 0 {
		bad("render.frame_interval must be positive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		bad("log.level: %v", err)
	}

	return errors.Join(errs...)
}

// NavOptions returns the parsed navigation settings. Call Validate first.
func (c Config) NavOptions() (nav.Options, nav.BusyPolicy, camera.ZoomMapping) {
	angle, _ := nav.ParseAngleMode(c.Navigation.Angle)
	policy, _ := nav.ParseBusyPolicy(c.Navigation.OnBusy)
	zoom, _ := camera.ParseZoomMapping(c.Navigation.Zoom)
	return nav.Options{Duration: c.Navigation.Duration, Angle: angle}, policy, zoom
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
