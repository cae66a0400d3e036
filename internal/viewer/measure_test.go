package viewer

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func stubTermSize(t *testing.T, cols, rows int, err error) {
	t.Helper()
	old := termGetSize
	termGetSize = func(int) (int, int, error) { return cols, rows, err }
	t.Cleanup(func() { termGetSize = old })
}

func TestTerminalMeasurerSubtractsChrome(t *testing.T) {
	stubTermSize(t, 100, 30, nil)
	m := NewTerminalMeasurer(2, 8, 16)

	b, err := m.Measure()
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if b != (Bounds{Width: 800, Height: 28 * 16}) {
		t.Fatalf("unexpected bounds %+v", b)
	}
}

func TestTerminalMeasurerFallsBackToObservedSize(t *testing.T) {
	stubTermSize(t, 0, 0, errors.New("not a terminal"))
	m := NewTerminalMeasurer(1, 8, 16)

	if _, err := m.Measure(); err == nil {
		t.Fatal("expected error before any size is known")
	}

	m.Observe(tea.WindowSizeMsg{Width: 40, Height: 11})
	b, err := m.Measure()
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if b != (Bounds{Width: 320, Height: 160}) {
		t.Fatalf("unexpected bounds %+v", b)
	}
}

func TestTerminalMeasurerNeverGoesNegative(t *testing.T) {
	stubTermSize(t, 10, 1, nil)
	b, err := NewTerminalMeasurer(3, 8, 16).Measure()
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if b.Height != 0 {
		t.Fatalf("expected zero height, got %v", b.Height)
	}
}
