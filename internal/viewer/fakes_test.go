package viewer

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/cli-pdf/internal/engine"
	"github.com/treykane/cli-pdf/internal/pagecache"
)

var errCorruptPage = errors.New("corrupt page")

type fakeDoc struct {
	width    float64
	heights  []float64
	failPage int
	block    chan struct{}

	metadataCalls atomic.Int32
	renders       atomic.Int32
	closed        atomic.Bool
}

func (d *fakeDoc) NumPages() int { return len(d.heights) }

func (d *fakeDoc) PageMetadata(_ context.Context, pageNumber int) (pagecache.PageMetadata, error) {
	d.metadataCalls.Add(1)
	if d.block != nil {
		<-d.block
	}
	if pageNumber == d.failPage {
		return pagecache.PageMetadata{}, errCorruptPage
	}
	return pagecache.PageMetadata{Width: d.width, Height: d.heights[pageNumber-1]}, nil
}

func (d *fakeDoc) RenderPage(_ context.Context, _ int, _ float64) (image.Image, error) {
	d.renders.Add(1)
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (d *fakeDoc) Close() error {
	d.closed.Store(true)
	return nil
}

type fakeEngine struct {
	doc *fakeDoc
	err error
}

func (e *fakeEngine) Load(_ context.Context, _ string) (engine.Document, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.doc, nil
}

type fakeMeasurer struct {
	bounds Bounds
	err    error
	calls  int
}

func (f *fakeMeasurer) Measure() (Bounds, error) {
	f.calls++
	return f.bounds, f.err
}

type scheduledTick struct {
	d  time.Duration
	fn func(time.Time) tea.Msg
}

// tickRecorder replaces tea.Tick so tests control when quiet periods end.
type tickRecorder struct {
	ticks []scheduledTick
}

func (r *tickRecorder) tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	r.ticks = append(r.ticks, scheduledTick{d: d, fn: fn})
	return nil
}

func newTestViewer(doc *fakeDoc, cols, rows int, scale float64) (*Model, *fakeMeasurer, *tickRecorder) {
	measurer := &fakeMeasurer{bounds: CellsToBounds(cols, rows, 8, 16)}
	m := New(Options{
		Source:         "test.pdf",
		Engine:         &fakeEngine{doc: doc},
		Measurer:       measurer,
		Scale:          scale,
		Overscan:       2,
		PageSpacing:    10,
		ResizeDebounce: 300 * time.Millisecond,
		CellWidth:      8,
		CellHeight:     16,
	})
	ticks := &tickRecorder{}
	m.tick = ticks.tick
	return m, measurer, ticks
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

// drive feeds cmd's messages through Update until nothing is left and returns
// every message seen. Spinner ticks are dropped so nothing sleeps.
func drive(t *testing.T, m *Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	queue := runCmd(cmd)
	var seen []tea.Msg
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		seen = append(seen, msg)
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		queue = append(queue, runCmd(m.Update(msg))...)
	}
	return seen
}

func readyViewer(t *testing.T, doc *fakeDoc, cols, rows int, scale float64) (*Model, *fakeMeasurer, *tickRecorder) {
	t.Helper()
	m, measurer, ticks := newTestViewer(doc, cols, rows, scale)
	drive(t, m, m.Init())
	if m.Phase() != PhaseReady {
		t.Fatalf("expected ready phase, got %v", m.Phase())
	}
	return m, measurer, ticks
}
