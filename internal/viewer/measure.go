package viewer

import (
	"errors"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrNoTerminalSize is returned when neither the terminal nor a previous
// window size event can tell how large the viewport is.
var ErrNoTerminalSize = errors.New("terminal size unknown")

// Bounds is the viewport size in layout units.
type Bounds struct {
	Width  float64
	Height float64
}

// Measurer reports the current viewport bounds.
type Measurer interface {
	Measure() (Bounds, error)
}

// sizeObserver is implemented by measurers that can fall back to the last
// window size event when the terminal cannot be queried directly.
type sizeObserver interface {
	Observe(msg tea.WindowSizeMsg)
}

var termGetSize = term.GetSize

// TerminalMeasurer measures the terminal attached to Fd, minus the rows the
// host reserves for its own chrome.
type TerminalMeasurer struct {
	Fd         int
	ChromeRows int
	CellWidth  float64
	CellHeight float64

	observed tea.WindowSizeMsg
}

// NewTerminalMeasurer measures stdout.
func NewTerminalMeasurer(chromeRows int, cellWidth, cellHeight float64) *TerminalMeasurer {
	return &TerminalMeasurer{
		Fd:         int(os.Stdout.Fd()),
		ChromeRows: chromeRows,
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
	}
}

// Observe records the latest window size event.
func (t *TerminalMeasurer) Observe(msg tea.WindowSizeMsg) {
	t.observed = msg
}

// Measure reads the live terminal size, falling back to the last observed
// window size event.
func (t *TerminalMeasurer) Measure() (Bounds, error) {
	cols, rows, err := termGetSize(t.Fd)
	if err != nil || cols <= 0 || rows <= 0 {
		if t.observed.Width <= 0 || t.observed.Height <= 0 {
			if err == nil {
				err = ErrNoTerminalSize
			}
			return Bounds{}, err
		}
		cols, rows = t.observed.Width, t.observed.Height
	}
	return CellsToBounds(cols, max(0, rows-t.ChromeRows), t.CellWidth, t.CellHeight), nil
}

// CellsToBounds converts a cell grid into layout units.
func CellsToBounds(cols, rows int, cellWidth, cellHeight float64) Bounds {
	return Bounds{
		Width:  float64(max(0, cols)) * cellWidth,
		Height: float64(max(0, rows)) * cellHeight,
	}
}

// resizeTickMsg fires when a resize quiet period ends. Only the tick carrying
// the latest sequence number re-measures.
type resizeTickMsg struct {
	seq int
}

// requestRemeasure schedules a trailing-edge re-measurement. Every call
// supersedes the previous one.
func (m *Model) requestRemeasure() tea.Cmd {
	m.resizeSeq++
	seq := m.resizeSeq
	return m.tick(m.opts.ResizeDebounce, func(time.Time) tea.Msg {
		return resizeTickMsg{seq: seq}
	})
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) tea.Cmd {
	if m.unmounted {
		return nil
	}
	if o, ok := m.opts.Measurer.(sizeObserver); ok {
		o.Observe(msg)
	}
	if _, ok := m.phase.(phaseUnmeasured); ok {
		return m.mount()
	}
	return m.requestRemeasure()
}

func (m *Model) handleResizeTick(msg resizeTickMsg) tea.Cmd {
	if m.unmounted || msg.seq != m.resizeSeq {
		return nil
	}
	if !m.measure() {
		return nil
	}
	return m.syncLayout()
}

// measure runs the measurement routine and feeds the result into the phase
// machine. It reports whether bounds are now known.
func (m *Model) measure() bool {
	bounds, err := m.opts.Measurer.Measure()
	if err != nil {
		viewerLog.Debug("measure viewport", "error", err)
		return false
	}
	m.phase = transition(m.phase, measuredEvent{bounds: bounds})
	if m.list != nil {
		m.list.SetViewportHeight(bounds.Height)
	}
	return true
}
