// Command ls-starfield is an interactive terminal star map: click a star and
// the camera flies to it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/litescript/ls-starfield/internal/astro"
	"github.com/litescript/ls-starfield/internal/config"
	"github.com/litescript/ls-starfield/internal/logging"
	"github.com/litescript/ls-starfield/internal/state"
	"github.com/litescript/ls-starfield/internal/ui"
	"github.com/litescript/ls-starfield/internal/version"
)

// Global flags
var (
	configPath  string
	catalogPath string
	logLevel    string
	logFile     string
	seed        uint64
)

var rootCmd = &cobra.Command{
	Use:   "ls-starfield",
	Short: "Interactive terminal star map",
	Long: `ls-starfield draws the night sky in the terminal. Click a star (or
press n/p, or / to search) and the camera flies to it, zooming in far
enough to show fainter stars around it.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runView,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ls-starfield v%s\n", version.Version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/ls-starfield/config.yaml)")
	pf.StringVar(&catalogPath, "catalog", "", "Catalog file, shard directory or URL (default embedded)")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "Write logs to file")
	pf.Uint64Var(&seed, "seed", 0, "Seed for the random starting orientation (0 = config or time)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command shares: configuration, a logger and the
// loaded catalog.
type env struct {
	cfg     config.Config
	log     *logging.Logger
	catalog *astro.Catalog
	source  string
	closer  io.Closer
}

func (e *env) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// setup loads configuration, applies flag overrides and loads the catalog.
// Logs go to stderr unless quiet is set, in which case they go to the log
// file or nowhere.
func setup(cmd *cobra.Command, quiet bool) (*env, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog.Path = catalogPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("seed") {
		cfg.Render.Seed = seed
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: logging.New(level)}

	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		e.log.SetOutput(f)
		e.closer = f
	case quiet:
		e.log.SetOutput(io.Discard)
	}

	e.loadCatalog(cmd.Context())
	return e, nil
}

// loadCatalog fetches the configured catalog. A failed fetch is logged and
// leaves an empty catalog: the map still runs, just without stars.
func (e *env) loadCatalog(ctx context.Context) {
	log := e.log.With("catalog")
	fetcher := astro.NewFetcher(astro.WithTimeout(e.cfg.Catalog.Timeout))

	result := fetcher.Fetch(ctx, e.cfg.Catalog.Path)
	e.source = result.Source
	if result.Error != nil {
		log.Error("Fetch failed: %v", result.Error)
		e.catalog = astro.EmptyCatalog()
		return
	}
	log.Debug("Fetch complete: %d stars in %d groups in %v",
		result.Catalog.Len(), result.Catalog.NumGroups(), result.Duration)
	e.catalog = result.Catalog
}

// startSeed returns the starting-orientation seed.
func (e *env) startSeed() uint64 {
	if e.cfg.Render.Seed != 0 {
		return e.cfg.Render.Seed
	}
	return uint64(time.Now().UnixNano())
}

func runView(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal; use the snapshot or tour commands for headless output")
	}

	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	viewer := state.NewViewer(e.catalog, state.ConfigFrom(e.cfg, e.startSeed()), state.SystemClock{}, e.log.With("viewer"))
	model := ui.New(viewer, ui.Options{
		FrameInterval: e.cfg.Render.FrameInterval,
		Crosshair:     e.cfg.Render.Crosshair,
		Log:           e.log.With("ui"),
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
