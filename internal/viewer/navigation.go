package viewer

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/cli-pdf/internal/engine"
	"github.com/treykane/cli-pdf/internal/window"
)

// ScrollLines scrolls by n terminal rows; negative values scroll up.
func (m *Model) ScrollLines(n int) tea.Cmd {
	if m.list == nil {
		return nil
	}
	m.list.ScrollBy(float64(n) * m.opts.CellHeight)
	return m.syncLayout()
}

// ScrollViewports scrolls by a fraction of the viewport height.
func (m *Model) ScrollViewports(fraction float64) tea.Cmd {
	if m.list == nil {
		return nil
	}
	rows := math.Trunc(float64(m.viewportRows()) * fraction)
	if rows == 0 {
		rows = math.Copysign(1, fraction)
	}
	m.list.ScrollBy(rows * m.opts.CellHeight)
	return m.syncLayout()
}

// NextPage aligns the page after the one at the top of the viewport with the
// top edge.
func (m *Model) NextPage() tea.Cmd {
	top, ok := m.topIndex()
	if !ok {
		return nil
	}
	m.list.ScrollToItem(top+1, window.AlignStart)
	return m.syncLayout()
}

// PrevPage aligns the top page with the top edge, or the page before it when
// the top page is already aligned.
func (m *Model) PrevPage() tea.Cmd {
	top, ok := m.topIndex()
	if !ok {
		return nil
	}
	if m.list.ScrollOffset() <= m.list.ItemOffset(top) {
		top--
	}
	m.list.ScrollToItem(top, window.AlignStart)
	return m.syncLayout()
}

// FirstPage scrolls to the top of the document.
func (m *Model) FirstPage() tea.Cmd {
	if m.list == nil {
		return nil
	}
	m.list.ScrollTo(0)
	return m.syncLayout()
}

// LastPage scrolls to the bottom of the document.
func (m *Model) LastPage() tea.Cmd {
	if m.list == nil {
		return nil
	}
	m.list.ScrollToEnd()
	return m.syncLayout()
}

// GoToPage aligns a 1-based page with the top edge.
func (m *Model) GoToPage(pageNumber int) (tea.Cmd, error) {
	if m.list == nil {
		return nil, ErrNotReady
	}
	if n := m.list.ItemCount(); pageNumber < 1 || pageNumber > n {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", engine.ErrPageOutOfRange, pageNumber, n)
	}
	m.list.ScrollToItem(pageNumber-1, window.AlignStart)
	return m.syncLayout(), nil
}

func (m *Model) topIndex() (int, bool) {
	if m.list == nil {
		return 0, false
	}
	r, ok := m.list.Range()
	if !ok {
		return 0, false
	}
	return r.VisibleStartIndex, true
}
