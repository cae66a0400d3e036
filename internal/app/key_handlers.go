package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/cli-pdf/internal/viewer"
)

// handleKey routes a key press to the active overlay or to an action.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayGoTo:
		return m.handleGoToKey(msg)
	case overlayHelp:
		switch m.actionForKey(msg.String()) {
		case actionQuit:
			return m, tea.Quit
		case actionHelp:
			m.closeOverlay()
		default:
			if msg.String() == "esc" {
				m.closeOverlay()
			}
		}
		return m, nil
	}

	switch m.actionForKey(msg.String()) {
	case actionQuit:
		return m, tea.Quit
	case actionHelp:
		m.openOverlay(overlayHelp)
	case actionScrollDown:
		return m, m.viewer.ScrollLines(1)
	case actionScrollUp:
		return m, m.viewer.ScrollLines(-1)
	case actionHalfPageDown:
		return m, m.viewer.ScrollViewports(0.5)
	case actionHalfPageUp:
		return m, m.viewer.ScrollViewports(-0.5)
	case actionScreenDown:
		return m, m.viewer.ScrollViewports(1)
	case actionScreenUp:
		return m, m.viewer.ScrollViewports(-1)
	case actionNextPage:
		return m, m.viewer.NextPage()
	case actionPrevPage:
		return m, m.viewer.PrevPage()
	case actionFirstPage:
		return m, m.viewer.FirstPage()
	case actionLastPage:
		return m, m.viewer.LastPage()
	case actionGoToPage:
		return m, m.openGoTo()
	case actionZoomIn:
		return m, m.setScale(m.scale + m.cfg.ScaleStep)
	case actionZoomOut:
		return m, m.setScale(m.scale - m.cfg.ScaleStep)
	case actionZoomReset:
		return m, m.setScale(m.cfg.Scale)
	case actionFitWidth:
		return m, m.fitWidth()
	case actionCopyPageRef:
		m.copyPageReference()
	case actionCopyPath:
		m.copyDocumentPath()
	}
	return m, nil
}

// setScale clamps and applies a new zoom level. The viewer invalidates its
// row heights and keeps the reading position.
func (m *Model) setScale(scale float64) tea.Cmd {
	scale = clampFloat(scale, MinScale, MaxScale)
	if scale == m.scale {
		m.status = fmt.Sprintf("Zoom %s (limit)", zoomLabel(scale))
		return nil
	}
	m.scale = scale
	m.status = "Zoom " + zoomLabel(scale)
	return m.viewer.SetScale(scale)
}

func (m *Model) fitWidth() tea.Cmd {
	scale, ok := m.viewer.FitWidthScale()
	if !ok {
		m.status = "Document not ready"
		return nil
	}
	return m.setScale(scale)
}

func zoomLabel(scale float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(scale*100)))
}

func (m *Model) openGoTo() tea.Cmd {
	if m.viewer.Phase() != viewer.PhaseReady {
		m.status = "Document not ready"
		return nil
	}
	m.openOverlay(overlayGoTo)
	m.goTo.SetValue("")
	m.goTo.Placeholder = fmt.Sprintf("1-%d", m.viewer.NumPages())
	m.goTo.Focus()
	return textinput.Blink
}

func (m *Model) handleGoToKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, promptKeys.Cancel):
		m.closeOverlay()
		return m, nil
	case key.Matches(msg, promptKeys.Submit):
		value := strings.TrimSpace(m.goTo.Value())
		m.closeOverlay()
		page, err := strconv.Atoi(value)
		if err != nil {
			m.status = fmt.Sprintf("Not a page number: %q", value)
			return m, nil
		}
		cmd, err := m.viewer.GoToPage(page)
		if err != nil {
			m.status = fmt.Sprintf("Page %d is out of range (1-%d)", page, m.viewer.NumPages())
			return m, nil
		}
		m.status = fmt.Sprintf("Page %d", page)
		return m, cmd
	}
	var cmd tea.Cmd
	m.goTo, cmd = m.goTo.Update(msg)
	return m, cmd
}
