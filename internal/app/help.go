// help.go renders the keyboard reference overlay.
//
// The reference is generated as markdown from the live keybindings and
// rendered through Glamour. Glamour TermRenderer instances are cached per
// width in a small LRU because creating one parses style JSON; the rendered
// text is cached on the model until the width changes.
//
// The style comes from CLI_PDF_GLAMOUR_STYLE, then GLAMOUR_STYLE, then "dark".
// "dark" avoids the terminal background query "auto" performs, whose reply
// can leak into the input stream.
package app

import (
	"container/list"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	maxRendererCacheEntries = 4

	rendererCacheMu    sync.Mutex
	rendererCache      = map[int]*glamour.TermRenderer{}
	rendererCacheOrder = list.New() // front = least recent
	rendererCacheNodes = map[int]*list.Element{}
)

// helpMarkdown lists every action with its current keys.
func (m *Model) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Keys\n\n| Key | Action |\n| --- | --- |\n")
	for _, action := range actionOrder {
		h := m.bindings[action].Help()
		if h.Key == "" {
			continue
		}
		fmt.Fprintf(&b, "| `%s` | %s |\n", strings.ReplaceAll(h.Key, "|", "\\|"), h.Desc)
	}
	b.WriteString("\nMouse wheel scrolls. Zoom keeps the current page in view.\n")
	return b.String()
}

// renderHelp returns the help text for width, rendering it on first use.
func (m *Model) renderHelp(width int) string {
	if m.helpWidth == width && m.helpRendered != "" {
		return m.helpRendered
	}
	source := m.helpMarkdown()
	out := source
	renderer, err := getRenderer(width)
	if err != nil {
		appLog.Error("create help renderer", "width", width, "error", err)
	} else if rendered, err := renderer.Render(source); err != nil {
		appLog.Error("render help", "width", width, "error", err)
	} else {
		out = strings.Trim(rendered, "\n")
	}
	m.helpWidth = width
	m.helpRendered = out
	return out
}

func getRenderer(width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = 80
	}
	rendererCacheMu.Lock()
	defer rendererCacheMu.Unlock()
	if renderer, ok := rendererCache[width]; ok {
		if node, ok := rendererCacheNodes[width]; ok {
			rendererCacheOrder.MoveToBack(node)
		}
		return renderer, nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamourStyleOption(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	rendererCache[width] = renderer
	rendererCacheNodes[width] = rendererCacheOrder.PushBack(width)
	evictOldestRendererIfNeeded()
	return renderer, nil
}

func evictOldestRendererIfNeeded() {
	for len(rendererCache) > maxRendererCacheEntries && rendererCacheOrder.Len() > 0 {
		oldest := rendererCacheOrder.Front()
		width, _ := oldest.Value.(int)
		rendererCacheOrder.Remove(oldest)
		delete(rendererCache, width)
		delete(rendererCacheNodes, width)
	}
}

func resetRendererCacheForTests() {
	rendererCacheMu.Lock()
	defer rendererCacheMu.Unlock()
	rendererCache = map[int]*glamour.TermRenderer{}
	rendererCacheOrder = list.New()
	rendererCacheNodes = map[int]*list.Element{}
}

func glamourStyleOption() glamour.TermRendererOption {
	style := strings.ToLower(strings.TrimSpace(os.Getenv("CLI_PDF_GLAMOUR_STYLE")))
	if style == "" {
		style = strings.ToLower(strings.TrimSpace(os.Getenv("GLAMOUR_STYLE")))
	}
	switch style {
	case "auto":
		return glamour.WithAutoStyle()
	case "dark", "light", "notty":
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStandardStyle("dark")
	}
}
