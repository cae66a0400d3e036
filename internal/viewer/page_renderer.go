package viewer

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/treykane/cli-pdf/internal/pagecache"
	"github.com/treykane/cli-pdf/internal/window"
)

// placeholderPages is how many empty frames the loading view stacks.
const placeholderPages = 3

// Placeholder frames use US Letter proportions.
const (
	placeholderPageWidth  = 612.0
	placeholderPageHeight = 792.0
)

// rasterKeyFor sizes the image area of a page in cells. The spacing folded
// into the cached height stays blank below the image.
func (m *Model) rasterKeyFor(dims pagecache.Dimensions, pageNumber int) rasterKey {
	dim := dims.MustPage(pageNumber)
	return rasterKey{
		page:  pageNumber,
		scale: m.scale,
		cols:  int(math.Round(dim.Width * m.scale / m.opts.CellWidth)),
		rows:  int(math.Round((dim.Height - dims.Spacing()) * m.scale / m.opts.CellHeight)),
	}
}

// renderPage lays out one list item: the page raster, or a frame while it is
// pending, centred horizontally in the viewport.
func (m *Model) renderPage(dims pagecache.Dimensions, style window.ItemStyle) string {
	pageNumber := style.Index + 1
	key := m.rasterKeyFor(dims, pageNumber)
	viewCols := m.viewportCols()

	var body []string
	entry, ok := m.rasters.peek(key)
	switch {
	case ok && entry.err == nil:
		body = entry.lines
	case ok:
		body = pageFrame(frameErrorStyle, fmt.Sprintf("Page %d\nrender failed", pageNumber), key.cols, key.rows)
	default:
		body = pageFrame(frameStyle, fmt.Sprintf("Page %d", pageNumber), key.cols, key.rows)
	}

	return centerLines(body, key.cols, viewCols, style.Rows)
}

// centerLines offsets every line by half the unused width and pads the block
// to rows lines. Lines wider than the viewport are clipped on the right.
func centerLines(body []string, cols, viewCols, rows int) string {
	left := max(0, (viewCols-cols)/2)
	pad := strings.Repeat(" ", left)
	out := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		if i >= len(body) {
			out = append(out, "")
			continue
		}
		out = append(out, pad+truncate(body[i], viewCols-left))
	}
	return strings.Join(out, "\n")
}

// pageFrame draws a bordered box exactly cols x rows cells with label in the
// middle. Boxes too small for a border degrade to the bare label.
func pageFrame(style lipgloss.Style, label string, cols, rows int) []string {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if cols < 3 || rows < 3 {
		lines := make([]string, rows)
		lines[0] = truncate(strings.ReplaceAll(label, "\n", " "), cols)
		return lines
	}
	inner := cols - 2
	labelLines := strings.Split(label, "\n")
	for i, l := range labelLines {
		labelLines[i] = truncate(l, inner)
	}
	if len(labelLines) > rows-2 {
		labelLines = labelLines[:rows-2]
	}
	box := style.Width(inner).Height(rows - 2).Render(strings.Join(labelLines, "\n"))
	return strings.Split(box, "\n")
}

// placeholderView is shown until the dimension cache is ready: a spinner line
// followed by a column of empty page frames.
func (m *Model) placeholderView(status string) string {
	cols, rows := m.viewportCols(), m.viewportRows()
	if rows <= 0 {
		return ""
	}
	lines := []string{truncate(m.spinner.View()+" "+status, cols)}

	frameCols := min(max(0, cols-4), int(math.Round(placeholderPageWidth*m.scale/m.opts.CellWidth)))
	frameRows := int(math.Round(placeholderPageHeight * m.scale / m.opts.CellHeight))
	for i := 0; i < placeholderPages && len(lines) < rows; i++ {
		frame := pageFrame(placeholderFrameStyle, "", frameCols, frameRows)
		lines = append(lines, strings.Split(centerLines(frame, frameCols, cols, frameRows+1), "\n")...)
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}
	return padRows(lines, rows)
}

// errorView replaces the page list once loading has failed.
func (m *Model) errorView(err error) string {
	cols, rows := m.viewportCols(), m.viewportRows()
	if rows <= 0 {
		return ""
	}
	body := errorTitleStyle.Render("Could not open document") + "\n" +
		mutedStyle.Render(m.opts.Source) + "\n\n" +
		err.Error()
	panel := errorPanelStyle.Width(max(10, min(cols-4, 72))).Render(body)
	lines := strings.Split(panel, "\n")
	for i, l := range lines {
		lines[i] = truncate(l, cols)
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}
	return padRows(lines, rows)
}

func padRows(lines []string, rows int) string {
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "")
}
