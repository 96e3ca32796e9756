// Package viewport tracks which slice of the logical lines is on screen.
package viewport

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/kk-code-lab/mdview/internal/layout"
)

// LineSource produces the logical lines of a document at a width.
// *layout.Engine satisfies it.
type LineSource interface {
	Layout(width int) []layout.Line
}

// Viewport is the visible window. Offset is the first visible line, HOffset
// the horizontal shift applied to scrollable lines.
type Viewport struct {
	Offset  int
	Width   int
	Height  int
	HOffset int
}

// Controller owns the viewport and keeps it within bounds:
// 0 <= Offset <= max(0, total-Height) after every call.
type Controller struct {
	src       LineSource
	lines     []layout.Line
	vp        Viewport
	scrollMax int
	log       *log.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger routes recovered conditions to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// New lays out src at width and returns a controller scrolled to the top.
func New(src LineSource, width, height int, opts ...Option) *Controller {
	c := &Controller{src: src, log: log.New(io.Discard)}
	for _, opt := range opts {
		opt(c)
	}
	c.vp.Width = c.checkWidth(width)
	c.vp.Height = checkHeight(height)
	c.relayout()
	return c
}

// ScrollBy moves the offset by delta lines.
func (c *Controller) ScrollBy(delta int) {
	c.ScrollTo(c.vp.Offset + delta)
}

// ScrollTo moves the offset to line, clamped.
func (c *Controller) ScrollTo(line int) {
	c.vp.Offset = line
	c.clamp()
}

// ScrollToFraction positions the viewport at f of the scrollable range,
// f in [0,1]. Values outside the range are clamped.
func (c *Controller) ScrollToFraction(f float64) {
	if math.IsNaN(f) || f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	c.ScrollTo(int(math.Round(f * float64(c.MaxOffset()))))
}

// Resize changes the viewport size. A width change re-lays the document out;
// the offset is then re-clamped, so a shorter document scrolls up instead of
// leaving blank space at the bottom.
func (c *Controller) Resize(width, height int) {
	width = c.checkWidth(width)
	height = checkHeight(height)
	changed := width != c.vp.Width
	c.vp.Width = width
	c.vp.Height = height
	if changed {
		c.relayout()
		return
	}
	c.clamp()
}

// Reload re-lays the document out at the current width, for use after the
// source document changed.
func (c *Controller) Reload() {
	c.relayout()
}

// ScrollHorizontal shifts scrollable lines by delta columns, clamped to the
// widest scrollable line.
func (c *Controller) ScrollHorizontal(delta int) {
	c.vp.HOffset += delta
	c.clamp()
}

// Visible returns the visible line range [start, end).
func (c *Controller) Visible() (start, end int) {
	start = c.vp.Offset
	end = start + c.vp.Height
	if end > len(c.lines) {
		end = len(c.lines)
	}
	if start > end {
		start = end
	}
	return start, end
}

// Viewport returns the current viewport.
func (c *Controller) Viewport() Viewport {
	return c.vp
}

// Lines returns every logical line at the current width.
func (c *Controller) Lines() []layout.Line {
	return c.lines
}

// Total is the number of logical lines.
func (c *Controller) Total() int {
	return len(c.lines)
}

// MaxOffset is the largest valid offset.
func (c *Controller) MaxOffset() int {
	if m := len(c.lines) - c.vp.Height; m > 0 {
		return m
	}
	return 0
}

// MaxHOffset is the largest valid horizontal shift.
func (c *Controller) MaxHOffset() int {
	return c.scrollMax
}

// Fraction is the offset as a fraction of the scrollable range; zero when
// the whole document fits.
func (c *Controller) Fraction() float64 {
	m := c.MaxOffset()
	if m == 0 {
		return 0
	}
	return float64(c.vp.Offset) / float64(m)
}

func (c *Controller) relayout() {
	c.lines = c.src.Layout(c.vp.Width)
	widest := 0
	for _, l := range c.lines {
		if !l.Scrollable {
			continue
		}
		if w := l.Width(); w > widest {
			widest = w
		}
	}
	c.scrollMax = 0
	if widest > c.vp.Width {
		c.scrollMax = widest - c.vp.Width
	}
	c.clamp()
}

func (c *Controller) clamp() {
	c.vp.Offset = clampInt(c.vp.Offset, 0, c.MaxOffset())
	c.vp.HOffset = clampInt(c.vp.HOffset, 0, c.scrollMax)
}

func (c *Controller) checkWidth(width int) int {
	if width < 1 {
		c.log.Debug("viewport recovered", "err", fmt.Errorf("%w: %d", layout.ErrZeroWidth, width))
		return 1
	}
	return width
}

func checkHeight(height int) int {
	if height < 1 {
		return 1
	}
	return height
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
