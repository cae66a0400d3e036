package app

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestPageNavigationKeys(t *testing.T) {
	m, _ := readyModel(t, 5)

	steps := []struct {
		key  string
		want int
	}{
		{key: "n", want: 2},
		{key: "n", want: 3},
		{key: "p", want: 2},
		{key: "G", want: 5},
		{key: "g", want: 1},
	}
	for _, step := range steps {
		press(t, m, step.key)
		if got := m.viewer.CurrentPage(); got != step.want {
			t.Fatalf("after %q: expected page %d, got %d", step.key, step.want, got)
		}
	}
}

func TestScrollKeysMoveByRows(t *testing.T) {
	m, _ := readyModel(t, 5)

	press(t, m, "j", "j")
	// 612x792 pages at scale 1 are 802 units tall including spacing, so
	// two rows of 16 units stay on page 1.
	if got := m.viewer.CurrentPage(); got != 1 {
		t.Fatalf("expected page 1 after two rows, got %d", got)
	}
	press(t, m, "pgdown", "pgdown", "pgdown")
	if got := m.viewer.CurrentPage(); got != 2 {
		t.Fatalf("expected page 2 after three screens, got %d", got)
	}
}

func TestZoomKeysClampAndReset(t *testing.T) {
	m, _ := readyModel(t, 3)

	press(t, m, "+")
	if m.scale != 1.25 || m.viewer.Scale() != 1.25 {
		t.Fatalf("expected scale 1.25 in host and viewer, got %v and %v", m.scale, m.viewer.Scale())
	}
	if m.status != "Zoom 125%" {
		t.Fatalf("expected zoom status, got %q", m.status)
	}

	press(t, m, "0")
	if m.scale != 1 {
		t.Fatalf("expected reset to configured scale 1, got %v", m.scale)
	}

	m.scale = MaxScale
	press(t, m, "+")
	if m.scale != MaxScale {
		t.Fatalf("expected scale to stay at %v, got %v", MaxScale, m.scale)
	}
	if !strings.Contains(m.status, "limit") {
		t.Fatalf("expected limit status, got %q", m.status)
	}
}

func TestZoomKeepsReadingPosition(t *testing.T) {
	m, _ := readyModel(t, 6)

	press(t, m, "n", "n", "n")
	if got := m.viewer.CurrentPage(); got != 4 {
		t.Fatalf("expected page 4, got %d", got)
	}
	press(t, m, "+", "+")
	if got := m.viewer.CurrentPage(); got != 4 {
		t.Fatalf("expected page 4 after zoom, got %d", got)
	}
}

func TestFitWidthUsesViewportWidth(t *testing.T) {
	m, _ := readyModel(t, 2)

	press(t, m, "w")
	want := 640.0 / 612.0
	if math.Abs(m.scale-want) > 1e-9 {
		t.Fatalf("expected fit width scale %v, got %v", want, m.scale)
	}
}

func TestGoToPrompt(t *testing.T) {
	m, _ := readyModel(t, 5)

	press(t, m, ":")
	if !m.isOverlay(overlayGoTo) {
		t.Fatal("expected go-to prompt to open")
	}
	press(t, m, "3", "enter")
	if m.isOverlay(overlayGoTo) {
		t.Fatal("expected go-to prompt to close after submit")
	}
	if got := m.viewer.CurrentPage(); got != 3 {
		t.Fatalf("expected page 3, got %d", got)
	}
}

func TestGoToPromptRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		status string
	}{
		{name: "out of range", input: "9", status: "Page 9 is out of range (1-5)"},
		{name: "zero", input: "0", status: "Page 0 is out of range (1-5)"},
		{name: "not a number", input: "x", status: `Not a page number: "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := readyModel(t, 5)
			press(t, m, "n", ":", tt.input, "enter")
			if m.status != tt.status {
				t.Fatalf("expected status %q, got %q", tt.status, m.status)
			}
			if got := m.viewer.CurrentPage(); got != 2 {
				t.Fatalf("expected page to stay at 2, got %d", got)
			}
		})
	}
}

func TestGoToPromptCapturesActionKeys(t *testing.T) {
	m, _ := readyModel(t, 5)

	press(t, m, ":", "q")
	if !m.isOverlay(overlayGoTo) || m.goTo.Value() != "q" {
		t.Fatalf("expected q to be typed into the prompt, got %q", m.goTo.Value())
	}
	press(t, m, "esc")
	if m.isOverlay(overlayGoTo) {
		t.Fatal("expected esc to close the prompt")
	}
	if got := m.viewer.CurrentPage(); got != 1 {
		t.Fatalf("expected cancel to keep page 1, got %d", got)
	}
}

func TestGoToPromptNeedsReadyDocument(t *testing.T) {
	eng := &fakeEngine{err: errors.New("not a pdf")}
	m := newTestModel(t, testConfig(), eng, Options{})
	drive(t, m, m.Init())

	press(t, m, ":")
	if m.isOverlay(overlayGoTo) {
		t.Fatal("expected prompt to stay closed without a document")
	}
	if m.status != "Document not ready" {
		t.Fatalf("expected not ready status, got %q", m.status)
	}
}

func TestHelpOverlayToggles(t *testing.T) {
	m, _ := readyModel(t, 2)

	press(t, m, "?")
	if !m.isOverlay(overlayHelp) {
		t.Fatal("expected help to open")
	}
	press(t, m, "n")
	if got := m.viewer.CurrentPage(); got != 1 {
		t.Fatalf("expected navigation to be ignored under help, got page %d", got)
	}
	press(t, m, "?")
	if m.isOverlay(overlayHelp) {
		t.Fatal("expected help to close")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		m, _ := readyModel(t, 1)
		cmd := press(t, m, k)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestCopyPageReference(t *testing.T) {
	m, _ := readyModel(t, 5)
	var copied string
	m.writeClipboard = func(s string) error {
		copied = s
		return nil
	}

	press(t, m, "n", "n", "y")
	if copied != testSource+"#page=3" {
		t.Fatalf("expected page reference, got %q", copied)
	}
	press(t, m, "Y")
	if copied != testSource {
		t.Fatalf("expected document path, got %q", copied)
	}
}

func TestCopyFailureSetsStatus(t *testing.T) {
	m, _ := readyModel(t, 1)
	m.writeClipboard = func(string) error { return errors.New("no clipboard utility") }

	press(t, m, "y")
	if m.status != "Clipboard copy failed" {
		t.Fatalf("expected failure status, got %q", m.status)
	}
}

func TestLoadFailureSetsStatus(t *testing.T) {
	eng := &fakeEngine{err: errors.New("not a pdf")}
	m := newTestModel(t, testConfig(), eng, Options{})
	drive(t, m, m.Init())

	if m.status != "Could not open document" {
		t.Fatalf("expected load failure status, got %q", m.status)
	}
}
