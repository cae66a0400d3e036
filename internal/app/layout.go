// layout.go centralizes the terminal layout for the viewer screen.
//
// The screen is a one-row header, the page viewport and a one-row footer.
// The viewer measures its own viewport from the terminal size minus
// ChromeRows, so the arithmetic here must agree with that constant.
package app

// LayoutDimensions holds the calculated layout for one frame.
type LayoutDimensions struct {
	Width      int // full terminal width
	BodyHeight int // rows left for the viewer between header and footer
	HelpWidth  int // width of the help overlay, capped by HelpMaxWidth
	HelpHeight int // rows available to the help overlay
}

// calculateLayout derives the frame layout from the terminal size.
func (m *Model) calculateLayout() LayoutDimensions {
	body := max(0, m.height-ChromeRows)
	helpWidth := min(HelpMaxWidth, max(0, m.width-popupStyle.GetHorizontalFrameSize()-2))
	return LayoutDimensions{
		Width:      max(0, m.width),
		BodyHeight: body,
		HelpWidth:  helpWidth,
		HelpHeight: max(0, body-popupStyle.GetVerticalFrameSize()),
	}
}
