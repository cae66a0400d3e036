package app

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/treykane/cli-pdf/internal/config"
)

// Actions are the layer between key presses and behaviour: a key is looked
// up in keyToAction and the resulting action is dispatched in handleKey.
// Users can rebind any action through the "keybindings" object in
// ~/.cli-pdf/config.json.
const (
	actionScrollDown   = "scroll.down"
	actionScrollUp     = "scroll.up"
	actionHalfPageDown = "scroll.half_down"
	actionHalfPageUp   = "scroll.half_up"
	actionScreenDown   = "scroll.screen_down"
	actionScreenUp     = "scroll.screen_up"
	actionNextPage     = "page.next"
	actionPrevPage     = "page.prev"
	actionFirstPage    = "page.first"
	actionLastPage     = "page.last"
	actionGoToPage     = "page.goto"
	actionZoomIn       = "zoom.in"
	actionZoomOut      = "zoom.out"
	actionZoomReset    = "zoom.reset"
	actionFitWidth     = "zoom.fit_width"
	actionCopyPageRef  = "copy.page_ref"
	actionCopyPath     = "copy.path"
	actionHelp         = "help.toggle"
	actionQuit         = "app.quit"
)

// defaultActionKeys maps each action to its factory-default keys, in Bubble
// Tea notation.
var defaultActionKeys = map[string][]string{
	actionScrollDown:   {"down", "j"},
	actionScrollUp:     {"up", "k"},
	actionHalfPageDown: {"ctrl+d"},
	actionHalfPageUp:   {"ctrl+u"},
	actionScreenDown:   {"pgdown", "ctrl+f"},
	actionScreenUp:     {"pgup", "ctrl+b"},
	actionNextPage:     {"n", "right", "l"},
	actionPrevPage:     {"p", "left", "h"},
	actionFirstPage:    {"g", "home"},
	actionLastPage:     {"shift+g", "end"},
	actionGoToPage:     {":"},
	actionZoomIn:       {"+", "="},
	actionZoomOut:      {"-"},
	actionZoomReset:    {"0"},
	actionFitWidth:     {"w"},
	actionCopyPageRef:  {"y"},
	actionCopyPath:     {"shift+y"},
	actionHelp:         {"?"},
	actionQuit:         {"q", "ctrl+c"},
}

// actionOrder is the order actions appear in the help overlay.
var actionOrder = []string{
	actionScrollDown, actionScrollUp,
	actionHalfPageDown, actionHalfPageUp,
	actionScreenDown, actionScreenUp,
	actionNextPage, actionPrevPage,
	actionFirstPage, actionLastPage,
	actionGoToPage,
	actionZoomIn, actionZoomOut, actionZoomReset, actionFitWidth,
	actionCopyPageRef, actionCopyPath,
	actionHelp, actionQuit,
}

var actionDescriptions = map[string]string{
	actionScrollDown:   "scroll down one line",
	actionScrollUp:     "scroll up one line",
	actionHalfPageDown: "scroll down half a screen",
	actionHalfPageUp:   "scroll up half a screen",
	actionScreenDown:   "scroll down one screen",
	actionScreenUp:     "scroll up one screen",
	actionNextPage:     "next page",
	actionPrevPage:     "previous page",
	actionFirstPage:    "first page",
	actionLastPage:     "last page",
	actionGoToPage:     "go to page",
	actionZoomIn:       "zoom in",
	actionZoomOut:      "zoom out",
	actionZoomReset:    "reset zoom",
	actionFitWidth:     "fit page width",
	actionCopyPageRef:  "copy file#page=N",
	actionCopyPath:     "copy document path",
	actionHelp:         "toggle help",
	actionQuit:         "quit",
}

// promptKeys are the fixed bindings of the go-to-page prompt.
var promptKeys = struct {
	Submit key.Binding
	Cancel key.Binding
}{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "go")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("Esc", "cancel")),
}

// loadKeybindings builds the key/action maps from the defaults and the
// overrides in cfg. An override replaces an action's whole default key set.
func (m *Model) loadKeybindings(cfg config.Config) {
	m.keyForAction = map[string][]string{}
	for action, keys := range defaultActionKeys {
		m.keyForAction[action] = append([]string(nil), keys...)
	}
	for action, k := range cfg.Keybindings {
		m.applyKeybindingOverride(action, k)
	}
	m.rebuildActionKeyIndex()
}

func (m *Model) applyKeybindingOverride(action, k string) {
	action = strings.TrimSpace(action)
	k = normalizeKeyString(k)
	if action == "" || k == "" {
		return
	}
	if _, ok := defaultActionKeys[action]; !ok {
		appLog.Warn("ignore unknown keybinding action", "action", action)
		return
	}
	m.keyForAction[action] = []string{k}
}

// rebuildActionKeyIndex builds keyToAction and the help bindings. When two
// actions claim a key the first one in actionOrder keeps it.
func (m *Model) rebuildActionKeyIndex() {
	m.keyToAction = map[string]string{}
	m.bindings = map[string]key.Binding{}
	for _, action := range actionOrder {
		var bound []string
		for _, k := range m.keyForAction[action] {
			if existing, ok := m.keyToAction[k]; ok && existing != action {
				appLog.Warn("keybinding conflict ignored", "key", k, "action", action, "existing_action", existing)
				continue
			}
			m.keyToAction[k] = action
			bound = append(bound, k)
		}
		m.keyForAction[action] = bound
		m.bindings[action] = key.NewBinding(
			key.WithKeys(bound...),
			key.WithHelp(strings.Join(m.actionKeyLabels(action), ", "), actionDescriptions[action]),
		)
	}
}

// normalizeKeyString lowercases a key and turns a lone uppercase letter into
// its shift+ form, since Bubble Tea may report shifted letters either way.
//
//	normalizeKeyString("Ctrl+D") → "ctrl+d"
//	normalizeKeyString(" G ")    → "shift+g"
func normalizeKeyString(k string) string {
	k = strings.TrimSpace(k)
	if k == "" {
		return ""
	}
	if len([]rune(k)) == 1 && strings.ToUpper(k) == k && strings.ToLower(k) != k {
		return "shift+" + strings.ToLower(k)
	}
	return strings.ToLower(k)
}

func (m *Model) actionForKey(k string) string {
	if m.keyToAction == nil {
		return ""
	}
	return m.keyToAction[normalizeKeyString(k)]
}

func (m *Model) actionKeyLabels(action string) []string {
	keys := m.keyForAction[action]
	labels := make([]string, 0, len(keys))
	for _, k := range keys {
		label := humanizeKeyLabel(k)
		if label == "" || slices.Contains(labels, label) {
			continue
		}
		labels = append(labels, label)
	}
	return labels
}

func (m *Model) primaryActionKey(action, fallback string) string {
	labels := m.actionKeyLabels(action)
	if len(labels) == 0 {
		return fallback
	}
	return labels[0]
}

func humanizeKeyLabel(k string) string {
	normalized := normalizeKeyString(k)
	if normalized == "" {
		return ""
	}
	if len([]rune(normalized)) == 1 {
		return normalized
	}
	special := map[string]string{
		"up":     "↑",
		"down":   "↓",
		"left":   "←",
		"right":  "→",
		"enter":  "Enter",
		"esc":    "Esc",
		"home":   "Home",
		"end":    "End",
		"pgup":   "PgUp",
		"pgdown": "PgDn",
	}
	parts := strings.Split(normalized, "+")
	for i, part := range parts {
		switch part {
		case "ctrl":
			parts[i] = "Ctrl"
		case "alt":
			parts[i] = "Alt"
		case "shift":
			parts[i] = "Shift"
		case "":
		default:
			if label, ok := special[part]; ok {
				parts[i] = label
				continue
			}
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "+")
}
