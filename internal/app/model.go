package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/cli-pdf/internal/config"
	"github.com/treykane/cli-pdf/internal/engine"
	"github.com/treykane/cli-pdf/internal/viewer"
)

// overlayMode selects what is drawn on top of, or instead of, the pages.
type overlayMode int

const (
	overlayNone overlayMode = iota
	overlayHelp
	overlayGoTo
)

// Options describe the document to open and the collaborators to use.
type Options struct {
	// Source is the normalized document path.
	Source string
	// Scale overrides both the remembered and the configured zoom when > 0.
	Scale float64

	Engine    engine.Engine
	Measurer  viewer.Measurer
	StatePath string
}

// Model is the host application: it owns the zoom level, the keymap and the
// chrome around the viewer.
type Model struct {
	cfg    config.Config
	source string
	viewer *viewer.Model
	scale  float64

	width   int
	height  int
	status  string
	overlay overlayMode
	goTo    textinput.Model

	keyForAction map[string][]string
	keyToAction  map[string]string
	bindings     map[string]key.Binding

	helpWidth    int
	helpRendered string

	engine   engine.Engine
	measurer viewer.Measurer

	statePath string
	state     persistedState

	fileWatchInterval time.Duration
	fileStamp         fileStamp

	now            func() time.Time
	tick           func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
	writeClipboard func(string) error
}

// New prepares the host model. Nothing is loaded until Init.
func New(cfg config.Config, opts Options) *Model {
	state, err := loadAppState(opts.StatePath)
	if err != nil {
		appLog.Warn("load app state", "path", opts.StatePath, "error", err)
	}

	m := &Model{
		cfg:               cfg,
		source:            opts.Source,
		status:            "Opening document",
		engine:            opts.Engine,
		measurer:          opts.Measurer,
		statePath:         opts.StatePath,
		state:             state,
		fileWatchInterval: cfg.WatchInterval(),
		now:               time.Now,
		tick:              tea.Tick,
		writeClipboard:    clipboard.WriteAll,
	}
	m.scale = m.initialScale(opts.Scale)
	m.loadKeybindings(cfg)

	input := textinput.New()
	input.Prompt = "Go to page: "
	input.CharLimit = GoToCharLimit
	m.goTo = input

	m.viewer = m.newViewer()
	return m
}

func (m *Model) newViewer() *viewer.Model {
	return viewer.New(viewer.Options{
		Source:          m.source,
		Engine:          m.engine,
		Measurer:        m.measurer,
		Scale:           m.scale,
		Overscan:        m.cfg.Overscan,
		PageSpacing:     m.cfg.PageSpacing,
		ResizeDebounce:  m.cfg.ResizeDebounce(),
		CellWidth:       m.cfg.CellWidth,
		CellHeight:      m.cfg.CellHeight,
		RasterCacheSize: m.cfg.RasterCacheSize,
	})
}

func (m *Model) initialScale(override float64) float64 {
	if override > 0 {
		return clampFloat(override, MinScale, MaxScale)
	}
	if pos, ok := m.savedPosition(); ok && pos.Scale > 0 {
		return clampFloat(pos.Scale, MinScale, MaxScale)
	}
	return clampFloat(m.cfg.Scale, MinScale, MaxScale)
}

// Init mounts the viewer and starts watching the document.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.viewer.Init(), m.scheduleFileWatchTick())
}

// Update is the Bubble Tea update loop. Anything the host does not handle
// goes to the viewer.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.viewer.Update(msg)
	case viewer.ReadyMsg:
		return m, m.handleReady(msg)
	case viewer.LoadFailedMsg:
		m.setStatusError("Could not open document", msg.Err, "source", m.source)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case fileWatchTickMsg:
		return m, m.handleFileWatchTick(msg)
	}
	cmd := m.viewer.Update(msg)
	if m.overlay == overlayGoTo {
		var inputCmd tea.Cmd
		m.goTo, inputCmd = m.goTo.Update(msg)
		cmd = tea.Batch(cmd, inputCmd)
	}
	return m, cmd
}

// handleReady resumes at the remembered page, if any.
func (m *Model) handleReady(msg viewer.ReadyMsg) tea.Cmd {
	m.status = fmt.Sprintf("Loaded %d pages", msg.NumPages)
	pos, ok := m.savedPosition()
	if !ok || pos.Page <= 1 {
		return nil
	}
	cmd, err := m.viewer.GoToPage(pos.Page)
	if err != nil {
		appLog.Debug("remembered page no longer valid", "page", pos.Page, "error", err)
		return nil
	}
	m.status = fmt.Sprintf("Resumed at page %d", pos.Page)
	return cmd
}

// Close remembers the reading position and releases the document. Call it
// once the program has exited.
func (m *Model) Close() error {
	m.rememberPosition()
	var errs []error
	if err := saveAppState(m.statePath, m.state); err != nil {
		errs = append(errs, err)
	}
	if err := m.viewer.Unmount(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Viewer exposes the embedded viewer.
func (m *Model) Viewer() *viewer.Model { return m.viewer }
