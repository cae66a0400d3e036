package app

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/cli-pdf/internal/config"
	"github.com/treykane/cli-pdf/internal/engine"
	"github.com/treykane/cli-pdf/internal/pagecache"
	"github.com/treykane/cli-pdf/internal/viewer"
)

const testSource = "/docs/paper.pdf"

type fakeDoc struct {
	pages  int
	closed atomic.Bool
}

func (d *fakeDoc) NumPages() int { return d.pages }

func (d *fakeDoc) PageMetadata(_ context.Context, _ int) (pagecache.PageMetadata, error) {
	return pagecache.PageMetadata{Width: 612, Height: 792}, nil
}

func (d *fakeDoc) RenderPage(_ context.Context, _ int, _ float64) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}

func (d *fakeDoc) Close() error {
	d.closed.Store(true)
	return nil
}

type fakeEngine struct {
	doc   *fakeDoc
	err   error
	loads atomic.Int32
}

func (e *fakeEngine) Load(_ context.Context, _ string) (engine.Document, error) {
	e.loads.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return e.doc, nil
}

type fakeMeasurer struct {
	bounds viewer.Bounds
}

func (f *fakeMeasurer) Measure() (viewer.Bounds, error) { return f.bounds, nil }

type tickRecorder struct {
	durations []time.Duration
}

func (r *tickRecorder) tick(d time.Duration, _ func(time.Time) tea.Msg) tea.Cmd {
	r.durations = append(r.durations, d)
	return nil
}

// testConfig disables watching so no test waits on a poll timer.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.WatchIntervalMS = -1
	return cfg
}

// newTestModel builds a host model on an 80x24 terminal whose page area is
// the 22 rows between header and footer.
func newTestModel(t *testing.T, cfg config.Config, eng *fakeEngine, opts Options) *Model {
	t.Helper()
	if opts.Source == "" {
		opts.Source = testSource
	}
	opts.Engine = eng
	opts.Measurer = &fakeMeasurer{bounds: viewer.CellsToBounds(80, 24-ChromeRows, cfg.CellWidth, cfg.CellHeight)}
	m := New(cfg, opts)
	m.width = 80
	m.height = 24
	m.writeClipboard = func(string) error { return nil }
	return m
}

func readyModel(t *testing.T, pages int) (*Model, *fakeEngine) {
	t.Helper()
	eng := &fakeEngine{doc: &fakeDoc{pages: pages}}
	m := newTestModel(t, testConfig(), eng, Options{})
	drive(t, m, m.Init())
	if m.viewer.Phase() != viewer.PhaseReady {
		t.Fatalf("expected ready viewer, got %v", m.viewer.Phase())
	}
	return m, eng
}

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// drive feeds cmd's messages through Update until nothing is left. Spinner
// ticks are dropped so nothing loops.
func drive(t *testing.T, m *Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	queue := runCmd(cmd)
	var seen []tea.Msg
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		seen = append(seen, msg)
		switch msg.(type) {
		case spinner.TickMsg, tea.QuitMsg:
			continue
		}
		_, next := m.Update(msg)
		queue = append(queue, runCmd(next)...)
	}
	return seen
}

// press sends keys in order and returns the command of the last one. The
// commands are not run; navigation state changes synchronously.
func press(t *testing.T, m *Model, keys ...string) tea.Cmd {
	t.Helper()
	var last tea.Cmd
	for _, k := range keys {
		_, last = m.Update(keyMsg(k))
	}
	return last
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
