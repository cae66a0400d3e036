package viewer

import (
	"context"
	"errors"
	"testing"
)

func TestRasterCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newRasterCache(2)
	a, b, d := rasterKey{page: 1}, rasterKey{page: 2}, rasterKey{page: 3}
	c.put(a, rasterEntry{lines: []string{"a"}})
	c.put(b, rasterEntry{lines: []string{"b"}})
	c.touch(a)
	c.put(d, rasterEntry{lines: []string{"d"}})

	if _, ok := c.peek(b); ok {
		t.Fatal("expected least recently used entry to be evicted")
	}
	if _, ok := c.peek(a); !ok {
		t.Fatal("expected touched entry to survive")
	}
	if c.len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.len())
	}
}

func TestRasterCacheKeysIncludeScale(t *testing.T) {
	c := newRasterCache(4)
	c.put(rasterKey{page: 1, scale: 1}, rasterEntry{lines: []string{"x"}})
	if _, ok := c.peek(rasterKey{page: 1, scale: 2}); ok {
		t.Fatal("expected miss for a different scale")
	}
}

func TestRasterFailureIsCachedPerPage(t *testing.T) {
	m, _, _ := readyViewer(t, uniformDoc(3, 150), 80, 25, 1)
	key := rasterKey{page: 1, scale: 1, cols: 75, rows: 9}
	m.rasters = newRasterCache(4)
	m.inflight[key] = true

	m.Update(rasterMsg{token: m.pageToken, key: key, err: errors.New("bad stream")})

	entry, ok := m.rasters.peek(key)
	if !ok || entry.err == nil {
		t.Fatalf("expected cached failure, got %+v", entry)
	}
	if m.inflight[key] {
		t.Fatal("expected in-flight marker cleared")
	}
}

func TestStaleRasterIsDropped(t *testing.T) {
	m, _, _ := readyViewer(t, uniformDoc(3, 150), 80, 25, 1)
	m.rasters = newRasterCache(4)
	stale := token{id: m.pageToken.id + 100, ctx: context.Background()}

	m.Update(rasterMsg{token: stale, key: rasterKey{page: 1}, lines: []string{"x"}})
	if m.rasters.len() != 0 {
		t.Fatal("expected stale raster to be dropped")
	}
}
