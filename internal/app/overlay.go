package app

// openOverlay activates one overlay and cleans up the previous one.
func (m *Model) openOverlay(mode overlayMode) {
	if m.overlay == mode {
		return
	}
	m.closeOverlay()
	m.overlay = mode
}

// closeOverlay dismisses the active overlay and resets its state.
func (m *Model) closeOverlay() {
	if m.overlay == overlayGoTo {
		m.goTo.Blur()
		m.goTo.SetValue("")
	}
	m.overlay = overlayNone
}

func (m *Model) isOverlay(mode overlayMode) bool {
	return m.overlay == mode
}
