package viewer

import (
	"container/list"
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/cli-pdf/internal/engine"
	"github.com/treykane/cli-pdf/internal/raster"
)

// rasterKey identifies one encoded page. Row and column counts derive from
// the page size and scale only, never from the scroll position, so scrolling
// does not churn the cache.
type rasterKey struct {
	page  int
	scale float64
	cols  int
	rows  int
}

type rasterEntry struct {
	lines []string
	err   error
}

// rasterMsg carries an encoded page back to Update.
type rasterMsg struct {
	token token
	key   rasterKey
	lines []string
	err   error
}

// rasterCache is a fixed-capacity LRU of encoded pages. Front is least
// recently used.
type rasterCache struct {
	capacity int
	entries  map[rasterKey]*list.Element
	order    *list.List
}

type rasterCacheItem struct {
	key   rasterKey
	entry rasterEntry
}

func newRasterCache(capacity int) *rasterCache {
	return &rasterCache{
		capacity: max(1, capacity),
		entries:  make(map[rasterKey]*list.Element),
		order:    list.New(),
	}
}

// peek reads an entry without touching its recency.
func (c *rasterCache) peek(key rasterKey) (rasterEntry, bool) {
	node, ok := c.entries[key]
	if !ok {
		return rasterEntry{}, false
	}
	return node.Value.(*rasterCacheItem).entry, true
}

// touch marks an entry as recently used and reports whether it exists.
func (c *rasterCache) touch(key rasterKey) bool {
	node, ok := c.entries[key]
	if ok {
		c.order.MoveToBack(node)
	}
	return ok
}

func (c *rasterCache) put(key rasterKey, entry rasterEntry) {
	if node, ok := c.entries[key]; ok {
		node.Value.(*rasterCacheItem).entry = entry
		c.order.MoveToBack(node)
		return
	}
	c.entries[key] = c.order.PushBack(&rasterCacheItem{key: key, entry: entry})
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*rasterCacheItem).key)
	}
}

func (c *rasterCache) len() int { return c.order.Len() }

// renderRasterCmd rasterizes and encodes one page off the event loop.
func renderRasterCmd(tok token, doc engine.Document, key rasterKey) tea.Cmd {
	return func() tea.Msg {
		lines, err := encodePage(tok.ctx, doc, key)
		return rasterMsg{token: tok, key: key, lines: lines, err: err}
	}
}

func encodePage(ctx context.Context, doc engine.Document, key rasterKey) ([]string, error) {
	img, err := doc.RenderPage(ctx, key.page, key.scale)
	if err != nil {
		return nil, err
	}
	lines := raster.Encode(img, key.cols, key.rows)
	if lines == nil {
		return nil, fmt.Errorf("encode page %d: empty %dx%d grid", key.page, key.cols, key.rows)
	}
	return lines, nil
}

// requestRasters issues one render per page in the overscanned range that is
// neither cached nor already in flight.
func (m *Model) requestRasters(from, to int) tea.Cmd {
	ready, ok := m.phase.(phaseReady)
	if !ok || m.doc == nil {
		return nil
	}
	var cmds []tea.Cmd
	for index := from; index <= to; index++ {
		key := m.rasterKeyFor(ready.dims, index+1)
		if key.cols <= 0 || key.rows <= 0 {
			continue
		}
		if m.rasters.touch(key) || m.inflight[key] {
			continue
		}
		m.inflight[key] = true
		cmds = append(cmds, renderRasterCmd(m.pageToken, m.doc, key))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleRaster(msg rasterMsg) tea.Cmd {
	if msg.token.id != m.pageToken.id || !msg.token.live() {
		viewerLog.Debug("dropping stale raster", "page", msg.key.page)
		return nil
	}
	delete(m.inflight, msg.key)
	if msg.err != nil {
		viewerLog.Warn("render page", "page", msg.key.page, "scale", msg.key.scale, "error", msg.err)
	}
	m.rasters.put(msg.key, rasterEntry{lines: msg.lines, err: msg.err})
	return nil
}
