package paint

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/layout"
	"github.com/kk-code-lab/mdview/internal/style"
	"github.com/kk-code-lab/mdview/internal/textutil"
	"github.com/kk-code-lab/mdview/internal/viewport"
)

const (
	// PlaceholderGlyph stands in for images that could not be sized.
	PlaceholderGlyph = "▣"
	clipMarker       = "…"
)

// Frame is the result of one paint: the text cells, the image placements in
// top-to-bottom, left-to-right order, and the images that were placed by the
// previous paint but are no longer visible.
type Frame struct {
	Buffer     *CellBuffer
	Placements []imgplace.Placement
	Evicted    []doc.ImageHandle
}

// Compositor paints visible lines. It remembers the placements of the
// previous paint to report evictions.
type Compositor struct {
	theme   style.Theme
	tracker *imgplace.Tracker
	log     *log.Logger
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithLogger routes dropped placements to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Compositor) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCompositor returns a compositor painting with theme.
func NewCompositor(theme style.Theme, opts ...Option) *Compositor {
	c := &Compositor{
		theme:   theme,
		tracker: imgplace.NewTracker(),
		log:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset forgets the images placed so far and returns them, for use when the
// document is reloaded.
func (c *Compositor) Reset() []doc.ImageHandle {
	return c.tracker.Reset()
}

type imageKey struct {
	line int
	col  int
}

// Paint renders lines[vp.Offset : vp.Offset+vp.Height] into a buffer of
// vp.Width x vp.Height cells. Text is drawn first, then image rectangles are
// reserved on top of it. An image is placed when any of its rows is visible;
// rows scrolled off the top are reported through Placement.ClipTop.
func (c *Compositor) Paint(vp viewport.Viewport, lines []layout.Line) Frame {
	buf := NewCellBuffer(vp.Width, vp.Height)
	var placements []imgplace.Placement
	seen := make(map[imageKey]bool)

	for row := 0; row < vp.Height; row++ {
		idx := vp.Offset + row
		if idx < 0 || idx >= len(lines) {
			continue
		}
		line := lines[idx]
		shift := 0
		if line.Scrollable {
			shift = vp.HOffset
		}
		for _, f := range line.Fragments {
			if f.Image != nil {
				continue
			}
			drawText(buf, row, f, shift)
		}
		if line.Scrollable {
			c.drawClipMarkers(buf, row, line, shift)
		}

		for _, f := range line.Fragments {
			if f.Image == nil {
				continue
			}
			img := f.Image
			if img.Placeholder {
				if img.RowOffset == 0 {
					buf.put(f.Col, row, PlaceholderGlyph, 1, c.theme.Placeholder.OnTopOf(f.Style))
				}
				continue
			}
			key := imageKey{line: idx - img.RowOffset, col: f.Col}
			if seen[key] {
				continue
			}
			seen[key] = true
			p, ok := placementFor(f, row, vp)
			if !ok {
				continue
			}
			if c.overlapsAny(p, placements) {
				continue
			}
			placements = append(placements, p)
		}
	}

	imgplace.SortPlacements(placements)
	for _, p := range placements {
		buf.reserve(p.Col, p.Row, p.Cols, p.Rows)
	}
	return Frame{
		Buffer:     buf,
		Placements: placements,
		Evicted:    c.tracker.Update(placements),
	}
}

func placementFor(f layout.Fragment, row int, vp viewport.Viewport) (imgplace.Placement, bool) {
	img := f.Image
	if f.Col >= vp.Width {
		return imgplace.Placement{}, false
	}
	cols := img.Span.Cols
	if f.Col+cols > vp.Width {
		cols = vp.Width - f.Col
	}
	rows := img.Span.Rows - img.RowOffset
	if row+rows > vp.Height {
		rows = vp.Height - row
	}
	if cols < 1 || rows < 1 {
		return imgplace.Placement{}, false
	}
	return imgplace.Placement{
		Handle:  img.Ref.Handle,
		Col:     f.Col,
		Row:     row,
		Cols:    cols,
		Rows:    rows,
		ClipTop: img.RowOffset,
		Span:    img.Span,
	}, true
}

func (c *Compositor) overlapsAny(p imgplace.Placement, placed []imgplace.Placement) bool {
	for _, q := range placed {
		if p.Overlaps(q) {
			c.log.Debug("dropping overlapping image placement", "handle", p.Handle, "other", q.Handle)
			return true
		}
	}
	return false
}

func drawText(buf *CellBuffer, row int, f layout.Fragment, shift int) {
	col := f.Col - shift
	if col >= buf.Width {
		return
	}
	text := f.Text
	if col < 0 {
		text = textutil.SkipWidth(text, -col)
		col = 0
	}
	textutil.EachCluster(text, func(cluster string, w int) bool {
		if col >= buf.Width {
			return false
		}
		buf.put(col, row, cluster, w, f.Style)
		col += w
		return true
	})
}

// drawClipMarkers flags the sides of a horizontally scrolled line that are
// cut off.
func (c *Compositor) drawClipMarkers(buf *CellBuffer, row int, line layout.Line, shift int) {
	st := c.theme.Truncation
	if shift > 0 {
		buf.put(0, row, clipMarker, 1, st)
	}
	if line.Width()-shift > buf.Width {
		buf.put(buf.Width-1, row, clipMarker, 1, st)
	}
}
