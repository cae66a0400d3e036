// Package window implements a virtualized, variable-height list for terminal
// views.
//
// A List knows how many items exist and how to size any one of them, but it
// only ever renders the items that intersect the viewport plus an overscan
// margin. Item offsets are prefix sums of item sizes; they are computed lazily
// up to the furthest index anyone has asked about and memoized, so scrolling
// through a long list costs O(log n) per frame rather than O(n).
//
// Sizes are expressed in arbitrary layout units. LineHeight tells the list
// how many units one terminal row covers so it can place rendered blocks on
// the right rows.
//
// When the output of the size function changes, the memoized offsets are
// stale. Callers must say so with ResetAfterIndex or by sending an
// InvalidateMsg through Update; nothing is recomputed behind their back.
package window

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultEstimatedItemSize is used for the unmeasured tail when estimating
// the total scroll height.
const DefaultEstimatedItemSize = 50

// rowEpsilon absorbs floating point drift when mapping offsets to rows.
const rowEpsilon = 1e-6

// SizeFunc returns the size of the item at index. It must return a finite,
// non-negative value for every index in [0, itemCount).
type SizeFunc func(index int) float64

// Renderer produces the content of one item. The returned block is clipped
// or padded to style.Rows lines.
type Renderer func(style ItemStyle) string

// ItemStyle positions one rendered item.
type ItemStyle struct {
	Index  int
	Top    float64 // absolute offset from the start of the list
	Height float64
	Row    int // first viewport row; negative when scrolled partly out of view
	Rows   int
}

// ItemsRendered describes the outcome of a render pass. Visible indices
// exclude the overscan margin.
type ItemsRendered struct {
	OverscanStartIndex int
	OverscanStopIndex  int
	VisibleStartIndex  int
	VisibleStopIndex   int
}

// InvalidateMsg asks the list to drop every memoized offset from From
// onward. Senders do not need to say why sizes changed.
type InvalidateMsg struct {
	From int
}

// Align controls where ScrollToItem places the target item.
type Align int

const (
	// AlignAuto scrolls as little as possible to bring the item into view.
	AlignAuto Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

type itemMetadata struct {
	offset float64
	size   float64
}

// List is a windowed list. The zero value is not usable; construct with New.
type List struct {
	itemCount int
	sizeFn    SizeFunc
	height    float64
	overscan  int

	lineHeight        float64
	estimatedItemSize float64
	wheelDelta        int

	scrollOffset float64

	// metadata holds exactly lastMeasuredIndex+1 entries.
	metadata          []itemMetadata
	lastMeasuredIndex int

	onItemsRendered func(ItemsRendered)
}

// Option configures a List.
type Option func(*List)

// WithLineHeight sets how many layout units one terminal row covers.
func WithLineHeight(h float64) Option {
	return func(l *List) {
		if h > 0 {
			l.lineHeight = h
		}
	}
}

// WithEstimatedItemSize sets the size assumed for items that have not been
// measured yet.
func WithEstimatedItemSize(size float64) Option {
	return func(l *List) {
		if size > 0 {
			l.estimatedItemSize = size
		}
	}
}

// WithOnItemsRendered registers a callback fired after every render pass.
func WithOnItemsRendered(fn func(ItemsRendered)) Option {
	return func(l *List) { l.onItemsRendered = fn }
}

// WithScrollOffset sets the initial scroll offset.
func WithScrollOffset(offset float64) Option {
	return func(l *List) { l.scrollOffset = offset }
}

// WithWheelDelta sets how many rows one mouse wheel notch scrolls.
func WithWheelDelta(rows int) Option {
	return func(l *List) {
		if rows > 0 {
			l.wheelDelta = rows
		}
	}
}

// New builds a list of itemCount items sized by sizeFn, showing
// viewportHeight units at a time and rendering overscanCount extra items on
// each side of the visible range.
//
// sizeFn must be able to answer for every index in [0, itemCount) before New
// is called; constructing a list ahead of its size data is a caller bug.
func New(itemCount int, sizeFn SizeFunc, viewportHeight float64, overscanCount int, opts ...Option) *List {
	if sizeFn == nil {
		panic("window: nil size function")
	}
	if itemCount < 0 {
		panic(fmt.Sprintf("window: negative item count %d", itemCount))
	}
	l := &List{
		itemCount:         itemCount,
		sizeFn:            sizeFn,
		height:            math.Max(0, viewportHeight),
		overscan:          max(0, overscanCount),
		lineHeight:        1,
		estimatedItemSize: DefaultEstimatedItemSize,
		wheelDelta:        3,
		lastMeasuredIndex: -1,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.clampScroll()
	return l
}

// Update handles invalidation and mouse wheel messages.
func (l *List) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case InvalidateMsg:
		l.ResetAfterIndex(msg.From)
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			l.ScrollBy(-float64(l.wheelDelta) * l.lineHeight)
		case tea.MouseButtonWheelDown:
			l.ScrollBy(float64(l.wheelDelta) * l.lineHeight)
		}
	}
	return nil
}

// ResetAfterIndex discards memoized offsets for index and everything after
// it. The next query recomputes them from the size function.
func (l *List) ResetAfterIndex(index int) {
	index = max(0, index)
	l.lastMeasuredIndex = min(l.lastMeasuredIndex, index-1)
	l.metadata = l.metadata[:l.lastMeasuredIndex+1]
	l.clampScroll()
}

// SetItemCount changes the number of items. Memoized offsets past the new
// end are dropped; nothing beyond the new count is ever queried.
func (l *List) SetItemCount(n int) {
	if n < 0 {
		panic(fmt.Sprintf("window: negative item count %d", n))
	}
	l.itemCount = n
	if l.lastMeasuredIndex >= n {
		l.lastMeasuredIndex = n - 1
		l.metadata = l.metadata[:n]
	}
	l.clampScroll()
}

// SetViewportHeight changes the visible height.
func (l *List) SetViewportHeight(h float64) {
	l.height = math.Max(0, h)
	l.clampScroll()
}

// SetEstimatedItemSize changes the size assumed for unmeasured items.
func (l *List) SetEstimatedItemSize(size float64) {
	if size > 0 {
		l.estimatedItemSize = size
	}
}

func (l *List) ItemCount() int               { return l.itemCount }
func (l *List) ViewportHeight() float64      { return l.height }
func (l *List) LineHeight() float64          { return l.lineHeight }
func (l *List) ScrollOffset() float64        { return l.scrollOffset }
func (l *List) EstimatedItemSize() float64   { return l.estimatedItemSize }
func (l *List) ItemOffset(index int) float64 { return l.itemMetadata(index).offset }
func (l *List) ItemSize(index int) float64   { return l.itemMetadata(index).size }

// TotalSize returns the measured size of the list plus an estimate for the
// items that have not been measured yet.
func (l *List) TotalSize() float64 {
	last := min(l.lastMeasuredIndex, l.itemCount-1)
	total := 0.0
	if last >= 0 {
		m := l.metadata[last]
		total = m.offset + m.size
	}
	return total + float64(l.itemCount-last-1)*l.estimatedItemSize
}

// MaxScrollOffset returns the largest offset ScrollTo accepts.
func (l *List) MaxScrollOffset() float64 {
	return math.Max(0, l.TotalSize()-l.height)
}

// ScrollTo moves the viewport so that offset is at its top edge.
func (l *List) ScrollTo(offset float64) {
	l.scrollOffset = offset
	l.clampScroll()
}

// ScrollBy moves the viewport by delta units.
func (l *List) ScrollBy(delta float64) {
	l.ScrollTo(l.scrollOffset + delta)
}

// ScrollToEnd measures every item and scrolls to the very bottom.
func (l *List) ScrollToEnd() {
	if l.itemCount == 0 {
		l.scrollOffset = 0
		return
	}
	l.itemMetadata(l.itemCount - 1)
	l.ScrollTo(math.Inf(1))
}

// ScrollToItem scrolls so that the item at index is positioned per align.
func (l *List) ScrollToItem(index int, align Align) {
	index = max(0, min(index, l.itemCount-1))
	if l.itemCount == 0 {
		return
	}
	meta := l.itemMetadata(index)
	maxOffset := math.Max(0, math.Min(l.TotalSize()-l.height, meta.offset))
	minOffset := math.Max(0, meta.offset-l.height+meta.size)

	switch align {
	case AlignStart:
		l.ScrollTo(maxOffset)
	case AlignEnd:
		l.ScrollTo(minOffset)
	case AlignCenter:
		l.ScrollTo(math.Round(minOffset + (maxOffset-minOffset)/2))
	default:
		switch {
		case l.scrollOffset >= minOffset && l.scrollOffset <= maxOffset:
		case l.scrollOffset < minOffset:
			l.ScrollTo(minOffset)
		default:
			l.ScrollTo(maxOffset)
		}
	}
}

// Range computes the items a render pass would draw without drawing them
// and without firing the callback. ok is false for an empty list.
func (l *List) Range() (ItemsRendered, bool) {
	if l.itemCount == 0 {
		return ItemsRendered{}, false
	}
	start := l.findNearestItem(l.scrollOffset)
	stop := l.stopIndexForStart(start)
	return ItemsRendered{
		OverscanStartIndex: max(0, start-l.overscan),
		OverscanStopIndex:  max(0, min(l.itemCount-1, stop+l.overscan)),
		VisibleStartIndex:  start,
		VisibleStopIndex:   stop,
	}, true
}

// Render draws the overscanned range into a block exactly as tall as the
// viewport and then reports the range to the OnItemsRendered callback.
func (l *List) Render(render Renderer) string {
	rows := l.viewportRows()
	canvas := make([]string, rows)

	r, ok := l.Range()
	if !ok {
		return strings.Join(canvas, "\n")
	}

	for i := r.OverscanStartIndex; i <= r.OverscanStopIndex; i++ {
		meta := l.itemMetadata(i)
		row := l.rowFor(meta.offset)
		style := ItemStyle{
			Index:  i,
			Top:    meta.offset,
			Height: meta.size,
			Row:    row,
			Rows:   l.rowFor(meta.offset+meta.size) - row,
		}
		block := render(style)
		lines := strings.Split(block, "\n")
		for k := 0; k < style.Rows; k++ {
			target := row + k
			if target < 0 || target >= rows {
				continue
			}
			if k < len(lines) {
				canvas[target] = lines[k]
			} else {
				canvas[target] = ""
			}
		}
	}

	if l.onItemsRendered != nil {
		l.onItemsRendered(r)
	}
	return strings.Join(canvas, "\n")
}

func (l *List) viewportRows() int {
	return max(0, int(math.Ceil(l.height/l.lineHeight-rowEpsilon)))
}

// rowFor maps an absolute offset to a viewport row.
func (l *List) rowFor(offset float64) int {
	return int(math.Floor((offset-l.scrollOffset)/l.lineHeight + rowEpsilon))
}

func (l *List) clampScroll() {
	if math.IsNaN(l.scrollOffset) || l.scrollOffset < 0 {
		l.scrollOffset = 0
	}
	if maxOffset := l.MaxScrollOffset(); l.scrollOffset > maxOffset {
		l.scrollOffset = maxOffset
	}
}

func (l *List) checkIndex(index int) {
	if index < 0 || index >= l.itemCount {
		panic(fmt.Sprintf("window: index %d out of range [0, %d)", index, l.itemCount))
	}
}

// itemMetadata returns the offset and size of index, measuring every item
// between the last measured one and index on the way.
func (l *List) itemMetadata(index int) itemMetadata {
	l.checkIndex(index)
	if index > l.lastMeasuredIndex {
		offset := 0.0
		if l.lastMeasuredIndex >= 0 {
			m := l.metadata[l.lastMeasuredIndex]
			offset = m.offset + m.size
		}
		for i := l.lastMeasuredIndex + 1; i <= index; i++ {
			size := l.measure(i)
			l.metadata = append(l.metadata, itemMetadata{offset: offset, size: size})
			offset += size
		}
		l.lastMeasuredIndex = index
	}
	return l.metadata[index]
}

func (l *List) measure(index int) float64 {
	size := l.sizeFn(index)
	if math.IsNaN(size) || math.IsInf(size, 0) || size < 0 {
		panic(fmt.Sprintf("window: size of item %d is %v", index, size))
	}
	return size
}

// findNearestItem returns the index of the item containing offset. Measured
// items are binary searched; beyond them the search gallops forward so that
// only a logarithmic number of new items gets measured.
func (l *List) findNearestItem(offset float64) int {
	lastOffset := 0.0
	if l.lastMeasuredIndex >= 0 {
		lastOffset = l.metadata[l.lastMeasuredIndex].offset
	}
	if lastOffset >= offset {
		return l.binarySearch(0, l.lastMeasuredIndex, offset)
	}
	return l.exponentialSearch(max(0, l.lastMeasuredIndex), offset)
}

func (l *List) binarySearch(low, high int, offset float64) int {
	for low <= high {
		middle := low + (high-low)/2
		current := l.itemMetadata(middle).offset
		switch {
		case current == offset:
			return middle
		case current < offset:
			low = middle + 1
		default:
			high = middle - 1
		}
	}
	if low > 0 {
		return low - 1
	}
	return 0
}

func (l *List) exponentialSearch(index int, offset float64) int {
	interval := 1
	for index < l.itemCount && l.itemMetadata(index).offset < offset {
		index += interval
		interval *= 2
	}
	return l.binarySearch(index/2, min(index, l.itemCount-1), offset)
}

func (l *List) stopIndexForStart(start int) int {
	meta := l.itemMetadata(start)
	maxOffset := l.scrollOffset + l.height
	offset := meta.offset + meta.size
	stop := start
	for stop < l.itemCount-1 && offset < maxOffset {
		stop++
		offset += l.itemMetadata(stop).size
	}
	return stop
}
