package app

import (
	"testing"

	"github.com/treykane/cli-pdf/internal/config"
)

func TestActionForKeySupportsDefaultAliases(t *testing.T) {
	m := &Model{}
	m.loadKeybindings(config.Config{})

	cases := map[string]string{
		"j":      actionScrollDown,
		"down":   actionScrollDown,
		"k":      actionScrollUp,
		"ctrl+d": actionHalfPageDown,
		"pgdown": actionScreenDown,
		"n":      actionNextPage,
		"right":  actionNextPage,
		"p":      actionPrevPage,
		"g":      actionFirstPage,
		"G":      actionLastPage,
		"end":    actionLastPage,
		":":      actionGoToPage,
		"+":      actionZoomIn,
		"=":      actionZoomIn,
		"-":      actionZoomOut,
		"w":      actionFitWidth,
		"y":      actionCopyPageRef,
		"Y":      actionCopyPath,
		"?":      actionHelp,
		"ctrl+c": actionQuit,
	}
	for key, want := range cases {
		if got := m.actionForKey(key); got != want {
			t.Fatalf("actionForKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestKeybindingOverrideReplacesDefaults(t *testing.T) {
	m := &Model{}
	m.loadKeybindings(config.Config{Keybindings: map[string]string{
		actionNextPage: "ctrl+n",
	}})

	if got := m.actionForKey("ctrl+n"); got != actionNextPage {
		t.Fatalf("expected ctrl+n to map to %q, got %q", actionNextPage, got)
	}
	if got := m.actionForKey("n"); got != "" {
		t.Fatalf("expected n to be unbound after override, got %q", got)
	}
	if got := m.bindings[actionNextPage].Help().Key; got != "Ctrl+N" {
		t.Fatalf("expected help key Ctrl+N, got %q", got)
	}
}

func TestKeybindingOverrideIgnoresUnknownActionsAndBlankKeys(t *testing.T) {
	m := &Model{}
	m.loadKeybindings(config.Config{Keybindings: map[string]string{
		"page.sideways": "x",
		actionQuit:      "   ",
	}})

	if got := m.actionForKey("x"); got != "" {
		t.Fatalf("expected unknown action to be ignored, got %q", got)
	}
	if got := m.actionForKey("q"); got != actionQuit {
		t.Fatalf("expected blank override to keep defaults, got %q", got)
	}
}

func TestKeybindingConflictKeepsFirstAction(t *testing.T) {
	m := &Model{}
	m.loadKeybindings(config.Config{Keybindings: map[string]string{
		actionZoomReset: "j",
	}})

	if got := m.actionForKey("j"); got != actionScrollDown {
		t.Fatalf("expected j to stay on %q, got %q", actionScrollDown, got)
	}
	if keys := m.bindings[actionZoomReset].Keys(); len(keys) != 0 {
		t.Fatalf("expected zoom reset to lose its conflicting key, got %v", keys)
	}
	if h := m.bindings[actionZoomReset].Help(); h.Key != "" {
		t.Fatalf("expected no help key for an unbound action, got %q", h.Key)
	}
}

func TestNormalizeKeyString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Ctrl+D", want: "ctrl+d"},
		{in: " G ", want: "shift+g"},
		{in: "g", want: "g"},
		{in: "+", want: "+"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := normalizeKeyString(tt.in); got != tt.want {
			t.Fatalf("normalizeKeyString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHumanizeKeyLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ctrl+d", want: "Ctrl+D"},
		{in: "shift+g", want: "Shift+G"},
		{in: "pgdown", want: "PgDn"},
		{in: "right", want: "→"},
		{in: "y", want: "y"},
		{in: "+", want: "+"},
		{in: ":", want: ":"},
	}
	for _, tt := range tests {
		if got := humanizeKeyLabel(tt.in); got != tt.want {
			t.Fatalf("humanizeKeyLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHelpListsEveryActionInOrder(t *testing.T) {
	m := &Model{}
	m.loadKeybindings(config.Config{})

	for _, action := range actionOrder {
		h := m.bindings[action].Help()
		if h.Key == "" || h.Desc == "" {
			t.Fatalf("action %q has incomplete help %+v", action, h)
		}
	}
	if got := m.primaryActionKey(actionLastPage, "?"); got != "Shift+G" {
		t.Fatalf("expected primary key Shift+G, got %q", got)
	}
}
