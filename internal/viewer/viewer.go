// Package viewer is the document viewer component.
//
// A Model measures its viewport, loads a document through an engine, caches
// every page's dimensions and then shows the pages through a windowed list
// that only lays out what is near the visible area. Zoom is owned by the
// host: SetScale invalidates every row height and keeps the reading position.
//
// The lifecycle is an explicit phase machine (see transition). Asynchronous
// results carry a token and are dropped unless that token is both current and
// live; Unmount cancels every token at once.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/cli-pdf/internal/engine"
	"github.com/treykane/cli-pdf/internal/logging"
	"github.com/treykane/cli-pdf/internal/pagecache"
	"github.com/treykane/cli-pdf/internal/window"
)

var viewerLog = logging.New("viewer")

// ErrNotReady is returned by navigation that needs the page list.
var ErrNotReady = errors.New("document is not ready")

// Options configures a Model. Zero values of the numeric fields are replaced
// by the defaults used by the config package.
type Options struct {
	Source   string
	Engine   engine.Engine
	Measurer Measurer

	Scale           float64
	Overscan        int
	PageSpacing     float64
	ResizeDebounce  time.Duration
	CellWidth       float64
	CellHeight      float64
	RasterCacheSize int
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 || math.IsInf(o.Scale, 0) || math.IsNaN(o.Scale) {
		o.Scale = 1
	}
	if o.Overscan < 0 {
		o.Overscan = 0
	}
	if o.CellWidth <= 0 {
		o.CellWidth = 8
	}
	if o.CellHeight <= 0 {
		o.CellHeight = 16
	}
	if o.RasterCacheSize <= 0 {
		o.RasterCacheSize = 32
	}
	return o
}

// ReadyMsg is emitted once the page list is live.
type ReadyMsg struct {
	NumPages int
}

// LoadFailedMsg is emitted when the document or its dimensions could not be
// loaded. The viewer stays in the failed phase for good.
type LoadFailedMsg struct {
	Err error
}

type documentLoadedMsg struct {
	token token
	doc   engine.Document
}

type documentLoadFailedMsg struct {
	token token
	err   error
}

type dimensionsCachedMsg struct {
	token token
	dims  pagecache.Dimensions
}

type dimensionsFailedMsg struct {
	token token
	err   error
}

// Model is the viewer. Use pointer receivers throughout; the list callback
// closes over the model.
type Model struct {
	opts  Options
	phase phase
	scale float64

	lifeCtx    context.Context
	cancelLife context.CancelFunc
	unmounted  bool

	tokenSeq    uint64
	loadToken   token
	pageToken   token
	cancelPages context.CancelFunc

	doc  engine.Document
	list *window.List

	currentPage int
	resizeSeq   int
	tick        func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	rasters  *rasterCache
	inflight map[rasterKey]bool

	spinner spinner.Model
}

// New builds a viewer. Nothing happens until Init.
func New(opts Options) *Model {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = mutedStyle
	return &Model{
		opts:       opts,
		phase:      phaseUnmeasured{},
		scale:      opts.Scale,
		lifeCtx:    ctx,
		cancelLife: cancel,
		tick:       tea.Tick,
		rasters:    newRasterCache(opts.RasterCacheSize),
		inflight:   make(map[rasterKey]bool),
		spinner:    s,
	}
}

// Init mounts the viewer: it measures the viewport right away and starts
// loading the document. When the terminal cannot be measured yet, loading
// waits for the first window size event.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.mount())
}

func (m *Model) mount() tea.Cmd {
	if _, ok := m.phase.(phaseUnmeasured); !ok || m.unmounted {
		return nil
	}
	if !m.measure() {
		return nil
	}
	m.loadToken = m.newToken(m.lifeCtx)
	return loadDocumentCmd(m.loadToken, m.opts.Engine, m.opts.Source)
}

func (m *Model) newToken(ctx context.Context) token {
	m.tokenSeq++
	return token{id: m.tokenSeq, ctx: ctx}
}

func loadDocumentCmd(tok token, eng engine.Engine, source string) tea.Cmd {
	return func() tea.Msg {
		doc, err := eng.Load(tok.ctx, source)
		if err != nil {
			return documentLoadFailedMsg{token: tok, err: err}
		}
		return documentLoadedMsg{token: tok, doc: doc}
	}
}

func populateCmd(tok token, doc engine.Document, spacing float64) tea.Cmd {
	n := doc.NumPages()
	return func() tea.Msg {
		dims, err := pagecache.Populate(tok.ctx, n, spacing, doc.PageMetadata)
		if err != nil {
			return dimensionsFailedMsg{token: tok, err: err}
		}
		return dimensionsCachedMsg{token: tok, dims: dims}
	}
}

// Update handles viewer messages. Unknown messages are ignored.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case resizeTickMsg:
		return m.handleResizeTick(msg)
	case documentLoadedMsg:
		return m.handleDocumentLoaded(msg)
	case documentLoadFailedMsg:
		if !m.current(msg.token, m.loadToken) {
			return nil
		}
		return m.fail(fmt.Errorf("load document: %w", msg.err))
	case dimensionsCachedMsg:
		return m.handleDimensionsCached(msg)
	case dimensionsFailedMsg:
		if !m.current(msg.token, m.pageToken) {
			return nil
		}
		return m.fail(fmt.Errorf("cache page dimensions: %w", msg.err))
	case rasterMsg:
		return m.handleRaster(msg)
	case window.InvalidateMsg:
		if m.list != nil {
			m.list.Update(msg)
			return m.syncLayout()
		}
	case tea.MouseMsg:
		if m.list != nil && !m.unmounted {
			m.list.Update(msg)
			return m.syncLayout()
		}
	case spinner.TickMsg:
		if m.loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return cmd
		}
	}
	return nil
}

// current reports whether an async result still belongs to this viewer.
func (m *Model) current(got, want token) bool {
	if m.unmounted || got.id != want.id || !got.live() {
		viewerLog.Debug("dropping stale result", "token", got.id, "current", want.id)
		return false
	}
	return true
}

func (m *Model) handleDocumentLoaded(msg documentLoadedMsg) tea.Cmd {
	if !m.current(msg.token, m.loadToken) {
		if err := msg.doc.Close(); err != nil {
			viewerLog.Debug("close stale document", "error", err)
		}
		return nil
	}
	m.doc = msg.doc

	ctx, cancel := context.WithCancel(m.lifeCtx)
	if m.cancelPages != nil {
		m.cancelPages()
	}
	m.cancelPages = cancel
	m.pageToken = m.newToken(ctx)
	m.inflight = make(map[rasterKey]bool)

	numPages := msg.doc.NumPages()
	m.phase = transition(m.phase, documentLoadedEvent{numPages: numPages, token: m.pageToken})
	m.measure()
	viewerLog.Debug("document loaded", "source", m.opts.Source, "pages", numPages)
	return populateCmd(m.pageToken, msg.doc, m.opts.PageSpacing)
}

func (m *Model) handleDimensionsCached(msg dimensionsCachedMsg) tea.Cmd {
	if !m.current(msg.token, m.pageToken) {
		return nil
	}
	m.phase = transition(m.phase, dimensionsCachedEvent{token: msg.token, dims: msg.dims})
	ready, ok := m.phase.(phaseReady)
	if !ok {
		return nil
	}

	dims := ready.dims
	m.list = window.New(
		ready.numPages,
		m.pageSize(dims),
		ready.bounds.Height,
		m.opts.Overscan,
		window.WithLineHeight(m.opts.CellHeight),
		window.WithEstimatedItemSize(m.estimatedItemSize(dims)),
		window.WithOnItemsRendered(m.onItemsRendered),
	)
	viewerLog.Info("document ready", "source", m.opts.Source, "pages", ready.numPages)
	numPages := ready.numPages
	return tea.Batch(m.syncLayout(), func() tea.Msg { return ReadyMsg{NumPages: numPages} })
}

func (m *Model) fail(err error) tea.Cmd {
	m.phase = transition(m.phase, failedEvent{err: err})
	if _, ok := m.phase.(phaseFailed); !ok {
		return nil
	}
	viewerLog.Error("document failed", "source", m.opts.Source, "error", err)
	return func() tea.Msg { return LoadFailedMsg{Err: err} }
}

// pageSize reads the live scale on every call, so a scale change only needs
// an invalidation to take effect.
func (m *Model) pageSize(dims pagecache.Dimensions) window.SizeFunc {
	return func(index int) float64 {
		return dims.MustPage(index+1).Height * m.scale
	}
}

func (m *Model) estimatedItemSize(dims pagecache.Dimensions) float64 {
	if mean := dims.MeanHeight(); mean > 0 {
		return mean * m.scale
	}
	return window.DefaultEstimatedItemSize
}

func (m *Model) onItemsRendered(r window.ItemsRendered) {
	m.currentPage = r.VisibleStopIndex + 1
}

// syncLayout refreshes the current page from the list and requests rasters
// for the overscanned range. Call it after anything that moves the layout.
func (m *Model) syncLayout() tea.Cmd {
	if m.list == nil {
		return nil
	}
	r, ok := m.list.Range()
	if !ok {
		m.currentPage = 0
		return nil
	}
	m.onItemsRendered(r)
	return m.requestRasters(r.OverscanStartIndex, r.OverscanStopIndex)
}

// SetScale changes the zoom level. Every memoized row height is invalidated
// and the scroll offset is scaled so the same content stays in view.
func (m *Model) SetScale(scale float64) tea.Cmd {
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		viewerLog.Warn("ignoring invalid scale", "scale", scale)
		return nil
	}
	if scale == m.scale {
		return nil
	}
	old := m.scale
	m.scale = scale
	if m.list == nil {
		return nil
	}

	offset := m.list.ScrollOffset()
	m.list.Update(window.InvalidateMsg{From: 0})
	if ready, ok := m.phase.(phaseReady); ok {
		m.list.SetEstimatedItemSize(m.estimatedItemSize(ready.dims))
	}
	m.list.ScrollTo(offset * scale / old)
	return m.syncLayout()
}

// FitWidthScale returns the scale at which the widest page fills the
// viewport width.
func (m *Model) FitWidthScale() (float64, bool) {
	ready, ok := m.phase.(phaseReady)
	if !ok || ready.dims.MaxWidth() <= 0 || ready.bounds.Width <= 0 {
		return 0, false
	}
	return ready.bounds.Width / ready.dims.MaxWidth(), true
}

// Unmount tears the viewer down. In-flight work is not interrupted, but its
// results are discarded.
func (m *Model) Unmount() error {
	if m.unmounted {
		return nil
	}
	m.unmounted = true
	m.cancelLife()
	if m.doc == nil {
		return nil
	}
	if err := m.doc.Close(); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	return nil
}

// View renders the viewport.
func (m *Model) View() string {
	switch p := m.phase.(type) {
	case phaseUnmeasured:
		return ""
	case phaseMeasured:
		return m.placeholderView("Loading document...")
	case phaseCaching:
		return m.placeholderView(fmt.Sprintf("Measuring %d pages...", p.numPages))
	case phaseReady:
		if m.list == nil {
			return ""
		}
		dims := p.dims
		return m.list.Render(func(style window.ItemStyle) string {
			return m.renderPage(dims, style)
		})
	case phaseFailed:
		return m.errorView(p.err)
	}
	return ""
}

func (m *Model) loading() bool {
	switch m.phase.(type) {
	case phaseUnmeasured, phaseMeasured, phaseCaching:
		return !m.unmounted
	}
	return false
}

func (m *Model) Phase() PhaseKind { return m.phase.kind() }
func (m *Model) Scale() float64   { return m.scale }
func (m *Model) Source() string   { return m.opts.Source }

// CurrentPage is the 1-based number of the last page intersecting the
// viewport, or 0 before the list exists.
func (m *Model) CurrentPage() int { return m.currentPage }

// NumPages returns the page count once the document has loaded.
func (m *Model) NumPages() int {
	switch p := m.phase.(type) {
	case phaseCaching:
		return p.numPages
	case phaseReady:
		return p.numPages
	}
	return 0
}

// Err returns the failure that ended the lifecycle, if any.
func (m *Model) Err() error {
	if p, ok := m.phase.(phaseFailed); ok {
		return p.err
	}
	return nil
}

// Bounds returns the measured viewport bounds.
func (m *Model) Bounds() (Bounds, bool) { return boundsOf(m.phase) }

func (m *Model) viewportCols() int {
	b, _ := boundsOf(m.phase)
	return int(b.Width / m.opts.CellWidth)
}

func (m *Model) viewportRows() int {
	b, _ := boundsOf(m.phase)
	return int(b.Height / m.opts.CellHeight)
}
