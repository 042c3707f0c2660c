// Package ui provides the terminal star map using Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starfield/internal/astro"
	"github.com/litescript/ls-starfield/internal/logging"
	"github.com/litescript/ls-starfield/internal/render"
	"github.com/litescript/ls-starfield/internal/state"
	"github.com/litescript/ls-starfield/internal/version"
)

const (
	headerLines = 2

	// How many of the brightest stars n/p cycle through.
	tourSize = 20

	defaultFrameInterval = 30 * time.Millisecond
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
)

// FrameTickMsg drives the frame loop.
type FrameTickMsg time.Time

// Options configures the model.
type Options struct {
	FrameInterval time.Duration
	Crosshair     bool
	Log           *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	viewer   *state.Viewer
	log      *logging.Logger
	interval time.Duration

	// UI state
	width   int
	height  int
	ready   bool
	term    render.Terminal
	canvas  string // last drawn frame
	frames  int
	status  string
	failed  bool
	tour    []astro.StarRecord
	tourIdx int

	keys    KeyMap
	help    help.Model
	find    textinput.Model
	finding bool
}

// New creates the root UI model over a viewer.
func New(viewer *state.Viewer, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaultFrameInterval
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}

	find := textinput.New()
	find.Prompt = "find: "
	find.Placeholder = "star name"
	find.CharLimit = 64

	return Model{
		viewer:   viewer,
		log:      opts.Log,
		interval: opts.FrameInterval,
		term:     render.Terminal{Crosshair: opts.Crosshair},
		tour:     viewer.Catalog().Brightest(tourSize),
		tourIdx:  -1,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		find:     find,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return frameTickCmd(m.interval)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.finding {
			cmds = append(cmds, m.updateFind(msg))
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.stepTour(1)
		case key.Matches(msg, m.keys.Prev):
			m.stepTour(-1)
		case key.Matches(msg, m.keys.Find):
			m.finding = true
			m.find.Reset()
			cmds = append(cmds, m.find.Focus())
		case key.Matches(msg, m.keys.Crosshair):
			m.term.Crosshair = !m.term.Crosshair
			m.redraw()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.redraw()
		}

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress {
			m.click(msg.X, msg.Y)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.redraw()

	case FrameTickMsg:
		cmds = append(cmds, frameTickCmd(m.interval))
		if m.viewer.Tick() {
			m.redraw()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFind(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.finding = false
		m.find.Blur()
		return nil
	case key.Matches(msg, m.keys.Submit):
		m.finding = false
		m.find.Blur()
		m.goTo(strings.TrimSpace(m.find.Value()))
		return nil
	}
	var cmd tea.Cmd
	m.find, cmd = m.find.Update(msg)
	return cmd
}

// canvasSize returns the star canvas dimensions in cells.
func (m Model) canvasSize() (cols, rows int) {
	return m.width, max(1, m.height-headerLines-m.footerLines())
}

// footerLines is the status line plus the help block.
func (m Model) footerLines() int {
	if m.help.ShowAll {
		return 1 + len(m.keys.FullHelp()[0])
	}
	return 2
}

// redraw rasterizes the viewer into the cached canvas.
func (m *Model) redraw() {
	if !m.ready {
		return
	}
	cols, rows := m.canvasSize()
	m.term.Highlight = m.viewer.Label()
	m.canvas = m.term.Render(m.viewer.Frame(m.term.Viewport(cols, rows)))
	m.frames++
}

// click picks at a terminal cell. The pick ray goes through the cell center.
func (m *Model) click(x, y int) {
	cols, rows := m.canvasSize()
	row := y - headerLines
	if x < 0 || x >= cols || row < 0 || row >= rows {
		return
	}
	vp := m.term.Viewport(cols, rows)
	p := render.NDCFromPixel(float64(x)+0.5, float64(row)+0.5, float64(cols), float64(rows))
	star, ok := m.viewer.Click(p, vp.Aspect())
	if !ok {
		if m.viewer.Busy() {
			m.setStatus("busy", false)
		}
		return
	}
	m.setStatus(fmt.Sprintf("→ %s (mag %.2f)", star.Name, star.Magnitude), false)
}

func (m *Model) stepTour(dir int) {
	if len(m.tour) == 0 {
		return
	}
	m.tourIdx = (m.tourIdx + dir + len(m.tour)) % len(m.tour)
	m.goTo(m.tour[m.tourIdx].Name)
}

func (m *Model) goTo(name string) {
	if name == "" {
		return
	}
	star, err := m.viewer.GoTo(name)
	if err != nil {
		m.log.Debug("goto %q: %v", name, err)
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("→ %s (mag %.2f)", star.Name, star.Magnitude), false)
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.renderHeader() + "\n" + m.canvas + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("✦ ls-starfield") + mutedStyle.Render(" v"+version.Version)

	cam := m.viewer.Camera()
	label := m.viewer.Label()
	if label == "" {
		label = "—"
	}
	visible := 0
	groups := m.viewer.Groups()
	for _, g := range groups {
		if g.Visible {
			visible++
		}
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(label))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  f=%.1fmm  fov %.1f°  groups %d/%d  trail %d",
		cam.FocalLength, cam.FOV()*180/math.Pi, visible, len(groups), len(m.viewer.Trail()))))
	if m.viewer.Busy() {
		b.WriteString("  " + accentStyle.Render("▸ flying"))
	}

	return "  " + title + "\n  " + b.String()
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.finding:
		status = m.find.View()
	case m.failed:
		status = errorStyle.Render(m.status)
	default:
		status = mutedStyle.Render(m.status)
	}
	return "  " + status + "\n  " + m.help.View(m.keys)
}

func frameTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameTickMsg(t)
	})
}
