// watcher.go reloads the open document when it changes on disk.
//
// The document is polled rather than watched with OS events: a PDF being
// regenerated by LaTeX or a build tool is usually replaced through a rename,
// which drops inotify-style watches, and the file may sit on a network mount.
// Every poll compares the file's modification time and size with the last
// observation; any difference rebuilds the viewer at the current page.
package app

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// fileWatchTickMsg is emitted by the poll timer.
type fileWatchTickMsg struct{}

// fileStamp is what a poll observes about the document.
type fileStamp struct {
	ModNano int64
	Size    int64
}

func statDocument(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{ModNano: info.ModTime().UnixNano(), Size: info.Size()}, nil
}

// scheduleFileWatchTick queues the next poll, or nothing when watching is
// disabled.
func (m *Model) scheduleFileWatchTick() tea.Cmd {
	if m.fileWatchInterval <= 0 || m.source == "" {
		return nil
	}
	return m.tick(m.fileWatchInterval, func(time.Time) tea.Msg {
		return fileWatchTickMsg{}
	})
}

// handleFileWatchTick compares the document with the last observation. The
// first successful poll only records a baseline. A file that is missing for
// a moment, as during an atomic replace, is skipped until it reappears.
func (m *Model) handleFileWatchTick(_ fileWatchTickMsg) tea.Cmd {
	stamp, err := statDocument(m.source)
	if err != nil {
		appLog.Debug("stat document", "source", m.source, "error", err)
		return m.scheduleFileWatchTick()
	}
	if m.fileStamp == (fileStamp{}) {
		m.fileStamp = stamp
		return m.scheduleFileWatchTick()
	}
	if stamp == m.fileStamp {
		return m.scheduleFileWatchTick()
	}
	m.fileStamp = stamp
	return tea.Batch(m.reloadDocument(), m.scheduleFileWatchTick())
}

// reloadDocument replaces the viewer with a fresh one for the same source.
// The reading position is remembered first so the new viewer resumes at it
// once it reports ready.
func (m *Model) reloadDocument() tea.Cmd {
	m.rememberPosition()
	if err := m.viewer.Unmount(); err != nil {
		appLog.Warn("close document before reload", "source", m.source, "error", err)
	}
	m.viewer = m.newViewer()
	m.status = "Reloading (document changed on disk)"
	appLog.Info("reload document", "source", m.source)
	return m.viewer.Init()
}
