package app

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders header, pages and footer. Overlays replace the page area.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	layout := m.calculateLayout()

	var body string
	switch m.overlay {
	case overlayHelp:
		body = m.renderHelpOverlay(layout)
	default:
		body = m.viewer.View()
	}

	parts := []string{
		m.renderHeader(layout.Width),
		padBlock(body, layout.Width, layout.BodyHeight),
	}
	if m.overlay == overlayGoTo {
		parts = append(parts, m.renderGoToPrompt(layout.Width))
	} else {
		parts = append(parts, m.renderStatus(layout.Width, FooterRows))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderHeader(width int) string {
	name := filepath.Base(m.source)
	if m.source == "" {
		name = "cli-pdf"
	}
	title := " " + name
	if dir := filepath.Dir(m.source); m.source != "" && dir != "." {
		title += "  " + dir
	}
	return headerStyle.Width(width).Render(truncateWithEllipsis(title, width))
}

func (m *Model) renderHelpOverlay(layout LayoutDimensions) string {
	content := m.renderHelp(layout.HelpWidth)
	lines := strings.Split(content, "\n")
	if layout.HelpHeight > 0 && len(lines) > layout.HelpHeight {
		lines = lines[:layout.HelpHeight]
	}
	popup := popupStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(layout.Width, layout.BodyHeight, lipgloss.Center, lipgloss.Center, popup)
}

func (m *Model) renderGoToPrompt(width int) string {
	line := " " + m.goTo.View()
	return truncate(line, width)
}
