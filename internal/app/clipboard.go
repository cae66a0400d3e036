package app

import "fmt"

// copyPageReference copies "<path>#page=N" for the current page, the form
// most PDF readers accept to open a document at a page.
func (m *Model) copyPageReference() {
	page := m.viewer.CurrentPage()
	if page < 1 {
		m.status = "No page to copy"
		return
	}
	ref := fmt.Sprintf("%s#page=%d", m.source, page)
	if err := m.writeClipboard(ref); err != nil {
		m.setStatusError("Clipboard copy failed", err)
		return
	}
	m.status = "Copied " + ref
}

// copyDocumentPath copies the absolute path of the open document.
func (m *Model) copyDocumentPath() {
	if m.source == "" {
		m.status = "No document open"
		return
	}
	if err := m.writeClipboard(m.source); err != nil {
		m.setStatusError("Clipboard copy failed", err)
		return
	}
	m.status = "Copied document path"
}
