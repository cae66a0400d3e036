// state.go remembers where the user stopped reading each document.
//
// Positions are stored as JSON at ~/.cli-pdf/state.json keyed by absolute
// document path. Only the page and the zoom level are kept; the scroll offset
// inside a page depends on the terminal size and is not worth restoring.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// MaxRememberedDocuments bounds the state file; the least recently read
// documents are dropped first.
const MaxRememberedDocuments = 50

type documentPosition struct {
	Page   int       `json:"page"`
	Scale  float64   `json:"scale,omitempty"`
	ReadAt time.Time `json:"read_at"`
}

type persistedState struct {
	Documents map[string]documentPosition `json:"documents,omitempty"`
}

func loadAppState(path string) (persistedState, error) {
	state := persistedState{Documents: map[string]documentPosition{}}
	if path == "" {
		return state, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return state, fmt.Errorf("read app state %q: %w", path, err)
	}
	var persisted persistedState
	if err := json.Unmarshal(data, &persisted); err != nil {
		return state, fmt.Errorf("parse app state %q: %w", path, err)
	}
	for doc, pos := range persisted.Documents {
		if !filepath.IsAbs(doc) || pos.Page < 1 {
			continue
		}
		if pos.Scale < 0 || math.IsNaN(pos.Scale) || math.IsInf(pos.Scale, 0) {
			pos.Scale = 0
		}
		state.Documents[doc] = pos
	}
	return state, nil
}

func saveAppState(path string, state persistedState) error {
	if path == "" {
		return nil
	}
	trimDocuments(state.Documents, MaxRememberedDocuments)
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermission); err != nil {
		return fmt.Errorf("write app state %q: %w", path, err)
	}
	return nil
}

func trimDocuments(docs map[string]documentPosition, limit int) {
	if len(docs) <= limit {
		return
	}
	paths := make([]string, 0, len(docs))
	for p := range docs {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return docs[paths[i]].ReadAt.After(docs[paths[j]].ReadAt)
	})
	for _, p := range paths[limit:] {
		delete(docs, p)
	}
}

// rememberPosition records the current page and zoom for the open document.
func (m *Model) rememberPosition() {
	page := m.viewer.CurrentPage()
	if page < 1 || m.source == "" {
		return
	}
	m.state.Documents[m.source] = documentPosition{
		Page:   page,
		Scale:  m.scale,
		ReadAt: m.now(),
	}
}

// savedPosition returns the remembered position for the open document.
func (m *Model) savedPosition() (documentPosition, bool) {
	pos, ok := m.state.Documents[m.source]
	return pos, ok
}
