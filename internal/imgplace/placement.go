package imgplace

import (
	"sort"

	"github.com/kk-code-lab/mdview/internal/doc"
)

// Placement reserves a rectangle of viewport cells for an image. Col and Row
// address the top-left visible cell; Cols and Rows are the visible extent.
// ClipTop counts image rows hidden above the viewport and Span is the full
// allocated size, so a protocol layer can crop the source accordingly.
type Placement struct {
	Handle  doc.ImageHandle
	Col     int
	Row     int
	Cols    int
	Rows    int
	ClipTop int
	Span    Span
}

// Clipped reports whether part of the image is outside the viewport.
func (p Placement) Clipped() bool {
	return p.ClipTop > 0 || p.Rows < p.Span.Rows || p.Cols < p.Span.Cols
}

// Overlaps reports whether p and q share at least one cell.
func (p Placement) Overlaps(q Placement) bool {
	return p.Col < q.Col+q.Cols && q.Col < p.Col+p.Cols &&
		p.Row < q.Row+q.Rows && q.Row < p.Row+p.Rows
}

// SortPlacements orders placements top-to-bottom, then left-to-right.
func SortPlacements(ps []Placement) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Row != ps[j].Row {
			return ps[i].Row < ps[j].Row
		}
		return ps[i].Col < ps[j].Col
	})
}

// AnyOverlap reports whether any two placements share a cell.
func AnyOverlap(ps []Placement) bool {
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			if ps[i].Overlaps(ps[j]) {
				return true
			}
		}
	}
	return false
}

// Tracker remembers which images were placed by the previous paint.
type Tracker struct {
	onScreen map[doc.ImageHandle]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{onScreen: make(map[doc.ImageHandle]struct{})}
}

// Update records the placements of a new paint and returns, sorted, the
// handles that were on screen before but are no longer placed.
func (t *Tracker) Update(ps []Placement) []doc.ImageHandle {
	next := make(map[doc.ImageHandle]struct{}, len(ps))
	for _, p := range ps {
		next[p.Handle] = struct{}{}
	}
	var evicted []doc.ImageHandle
	for h := range t.onScreen {
		if _, ok := next[h]; !ok {
			evicted = append(evicted, h)
		}
	}
	sortHandles(evicted)
	t.onScreen = next
	return evicted
}

// Reset forgets every image and returns the handles that were on screen.
func (t *Tracker) Reset() []doc.ImageHandle {
	return t.Update(nil)
}

// OnScreen lists the handles placed by the last paint, sorted.
func (t *Tracker) OnScreen() []doc.ImageHandle {
	out := make([]doc.ImageHandle, 0, len(t.onScreen))
	for h := range t.onScreen {
		out = append(out, h)
	}
	sortHandles(out)
	return out
}

func sortHandles(hs []doc.ImageHandle) {
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
}
