package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/treykane/cli-pdf/internal/viewer"
)

func (m *Model) renderStatus(width, rows int) string {
	statusRows, _ := m.buildStatusRows(width, rows)
	for len(statusRows) < rows {
		statusRows = append(statusRows, "")
	}

	rendered := make([]string, 0, len(statusRows))
	for _, line := range statusRows {
		line = " " + truncate(line, max(0, width-1))
		rendered = append(rendered, statusStyle.Width(width).Render(line))
	}
	return strings.Join(rendered, "\n")
}

// buildStatusRows packs the footer segments into at most rowLimit rows,
// position first, then the status message, then key hints. The bool reports
// whether everything fit.
func (m *Model) buildStatusRows(width, rowLimit int) ([]string, bool) {
	if width <= 0 || rowLimit <= 0 {
		return nil, true
	}

	segments := m.statusContextSegments()
	if status := m.statusMessageSegment(); status != "" {
		segments = append(segments, status)
	}
	segments = append(segments, m.statusHelpSegments()...)

	rows := make([]string, 1, rowLimit)
	rowIndex := 0
	fit := true
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		segment := seg
		if lipgloss.Width(segment) > width {
			segment = truncateWithEllipsis(segment, width)
		}

		candidate := segment
		if rows[rowIndex] != "" {
			candidate = rows[rowIndex] + " | " + segment
		}
		if lipgloss.Width(candidate) <= width {
			rows[rowIndex] = candidate
			continue
		}
		if rowIndex+1 < rowLimit {
			rowIndex++
			rows = append(rows, segment)
			continue
		}

		fit = false
		if rows[rowIndex] == "" {
			rows[rowIndex] = truncateWithEllipsis(segment, width)
		} else {
			rows[rowIndex] = truncateWithEllipsis(rows[rowIndex]+" | "+segment, width)
		}
		break
	}
	return rows, fit
}

func (m *Model) statusContextSegments() []string {
	zoom := "Zoom " + zoomLabel(m.scale)
	switch m.viewer.Phase() {
	case viewer.PhaseReady:
		return []string{fmt.Sprintf("Page %d / %d", m.viewer.CurrentPage(), m.viewer.NumPages()), zoom}
	case viewer.PhaseFailed:
		return []string{"Error", zoom}
	default:
		return []string{"Loading", zoom}
	}
}

func (m *Model) statusHelpSegments() []string {
	switch m.overlay {
	case overlayGoTo:
		return []string{"Enter go", "Esc cancel"}
	case overlayHelp:
		return []string{m.primaryActionKey(actionHelp, "?") + " close", "Esc close"}
	}
	return []string{
		m.primaryActionKey(actionNextPage, "n") + "/" + m.primaryActionKey(actionPrevPage, "p") + " page",
		m.primaryActionKey(actionGoToPage, ":") + " go to",
		m.primaryActionKey(actionZoomIn, "+") + "/" + m.primaryActionKey(actionZoomOut, "-") + " zoom",
		m.primaryActionKey(actionHelp, "?") + " help",
		m.primaryActionKey(actionQuit, "q") + " quit",
	}
}

func (m *Model) statusMessageSegment() string {
	return strings.TrimSpace(m.status)
}
