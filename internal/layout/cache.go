package layout

import "github.com/kk-code-lab/mdview/internal/doc"

// DefaultCacheWidths is how many widths the cache keeps. Resizes during a
// window drag are mostly monotonic, so two widths cover going back and forth.
const DefaultCacheWidths = 2

type cacheEntry struct {
	width int
	lines []Line
}

// LineCache memoizes block lines by (block, width). Only the most recently
// used widths are kept; requesting a new width drops the least recently used
// one. The cache is never a source of truth: any entry can be recomputed.
type LineCache struct {
	maxWidths int
	widths    []int // most recently used first
	byWidth   map[int]map[doc.BlockID]cacheEntry

	// onInconsistency is called when a stored entry does not match its key.
	onInconsistency func(id doc.BlockID, width int)
}

// NewLineCache returns a cache keeping at most maxWidths widths.
func NewLineCache(maxWidths int) *LineCache {
	if maxWidths < 1 {
		maxWidths = DefaultCacheWidths
	}
	return &LineCache{
		maxWidths: maxWidths,
		byWidth:   make(map[int]map[doc.BlockID]cacheEntry),
	}
}

// GetOrCompute returns the lines cached for (id, width), computing and
// storing them with compute on a miss. The returned slice is shared with the
// cache and must not be modified.
func (c *LineCache) GetOrCompute(id doc.BlockID, width int, compute func() []Line) []Line {
	entries := c.touch(width)
	if e, ok := entries[id]; ok {
		if e.width == width {
			return e.lines
		}
		delete(entries, id)
		if c.onInconsistency != nil {
			c.onInconsistency(id, width)
		}
	}
	lines := compute()
	entries[id] = cacheEntry{width: width, lines: lines}
	return lines
}

// Lookup returns the cached lines for (id, width) without computing them.
func (c *LineCache) Lookup(id doc.BlockID, width int) ([]Line, bool) {
	e, ok := c.byWidth[width][id]
	if !ok || e.width != width {
		return nil, false
	}
	return e.lines, true
}

// touch marks width as most recently used and returns its entry map,
// evicting the least recently used width when over capacity.
func (c *LineCache) touch(width int) map[doc.BlockID]cacheEntry {
	for i, w := range c.widths {
		if w == width {
			copy(c.widths[1:i+1], c.widths[:i])
			c.widths[0] = width
			return c.byWidth[width]
		}
	}
	c.widths = append([]int{width}, c.widths...)
	for len(c.widths) > c.maxWidths {
		last := c.widths[len(c.widths)-1]
		delete(c.byWidth, last)
		c.widths = c.widths[:len(c.widths)-1]
	}
	entries := make(map[doc.BlockID]cacheEntry)
	c.byWidth[width] = entries
	return entries
}

// Clear drops every entry.
func (c *LineCache) Clear() {
	c.widths = nil
	c.byWidth = make(map[int]map[doc.BlockID]cacheEntry)
}

// Len is the number of cached (block, width) entries.
func (c *LineCache) Len() int {
	n := 0
	for _, entries := range c.byWidth {
		n += len(entries)
	}
	return n
}

// Widths lists the cached widths, most recently used first.
func (c *LineCache) Widths() []int {
	out := make([]int, len(c.widths))
	copy(out, c.widths)
	return out
}
