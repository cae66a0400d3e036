// Package raster turns page images into terminal text.
//
// Each terminal cell shows two vertically stacked pixels using the upper half
// block glyph: the foreground colour paints the top pixel and the background
// colour paints the bottom one. Colours are downgraded by lipgloss to whatever
// the terminal supports.
package raster

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

const upperHalfBlock = "▀"

// Raster is an encoded page, ready to be placed into the viewport.
type Raster struct {
	Page  int
	Scale float64
	Cols  int
	Rows  int
	Lines []string
}

// Encode scales img to exactly cols x rows cells and returns one string per
// row. Transparent areas are flattened onto white, like paper.
func Encode(img image.Image, cols, rows int) []string {
	if img == nil || cols <= 0 || rows <= 0 {
		return nil
	}
	pixels := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.Draw(pixels, pixels.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(pixels, pixels.Bounds(), img, img.Bounds(), draw.Over, nil)

	lines := make([]string, rows)
	for y := 0; y < rows; y++ {
		var b strings.Builder
		for _, r := range rowRuns(pixels, y, cols) {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(r.fg)).
				Background(lipgloss.Color(r.bg))
			b.WriteString(style.Render(strings.Repeat(upperHalfBlock, r.n)))
		}
		lines[y] = b.String()
	}
	return lines
}

// run is a horizontal stretch of identical cells.
type run struct {
	fg, bg string
	n      int
}

// rowRuns groups the cells of text row y so each colour change costs one
// escape sequence instead of one per cell.
func rowRuns(pixels *image.RGBA, y, cols int) []run {
	var runs []run
	for x := 0; x < cols; x++ {
		fg := hexAt(pixels, x, 2*y)
		bg := hexAt(pixels, x, 2*y+1)
		if n := len(runs); n > 0 && runs[n-1].fg == fg && runs[n-1].bg == bg {
			runs[n-1].n++
			continue
		}
		runs = append(runs, run{fg: fg, bg: bg, n: 1})
	}
	return runs
}

func hexAt(pixels *image.RGBA, x, y int) string {
	c, ok := colorful.MakeColor(pixels.RGBAAt(x, y))
	if !ok {
		return "#ffffff"
	}
	return c.Hex()
}
