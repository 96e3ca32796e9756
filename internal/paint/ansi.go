package paint

import (
	"bufio"
	"image/color"
	"io"

	"github.com/charmbracelet/x/ansi"
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/mdview/internal/layout"
	"github.com/kk-code-lab/mdview/internal/style"
	"github.com/kk-code-lab/mdview/internal/textutil"
)

// WriteANSI writes every line as styled text, one terminal row per line,
// clipped to width. Images are not transmitted: the first row of each image
// shows its alt text instead.
func WriteANSI(w io.Writer, lines []layout.Line, width int) error {
	if width < 1 {
		width = 1
	}
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		buf := NewCellBuffer(width, 1)
		for _, f := range line.Fragments {
			if f.Image == nil {
				drawText(buf, 0, f, 0)
				continue
			}
			if f.Image.RowOffset == 0 {
				drawText(buf, 0, altFragment(f), 0)
			}
		}
		writeRowANSI(bw, buf, 0)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func altFragment(f layout.Fragment) layout.Fragment {
	alt := textutil.Sanitize(f.Image.Ref.Alt)
	if alt == "" {
		alt = PlaceholderGlyph
	}
	text, _ := textutil.TruncateToWidth(alt, f.Width, clipMarker)
	return layout.Fragment{Col: f.Col, Text: text, Width: textutil.DisplayWidth(text), Style: f.Style}
}

// writeRowANSI emits row y, switching SGR attributes and OSC 8 hyperlinks
// only where the style changes. Trailing unstyled blanks are dropped.
func writeRowANSI(w *bufio.Writer, b *CellBuffer, y int) {
	end := b.Width
	for end > 0 {
		c := b.At(end-1, y)
		if c.Text != " " || !c.Style.IsZero() {
			break
		}
		end--
	}

	var cur style.Set
	for x := 0; x < end; x++ {
		c := b.At(x, y)
		if c.continuation() {
			continue
		}
		st := c.Style
		if c.Image {
			st = style.Set{}
		}
		if st != cur {
			if cur.Link != st.Link {
				if cur.Link != "" {
					w.WriteString(ansi.ResetHyperlink())
				}
				if st.Link != "" {
					w.WriteString(ansi.SetHyperlink(st.Link))
				}
			}
			if !cur.IsZero() {
				w.WriteString(ansi.ResetStyle)
			}
			w.WriteString(sgr(st))
			cur = st
		}
		if c.Image {
			w.WriteByte(' ')
			continue
		}
		w.WriteString(c.Text)
	}
	if cur.Link != "" {
		w.WriteString(ansi.ResetHyperlink())
	}
	if !cur.IsZero() {
		w.WriteString(ansi.ResetStyle)
	}
}

func sgr(s style.Set) string {
	var te ansi.Style
	if c, ok := ansiColor(s.Fg); ok {
		te = te.ForegroundColor(c)
	}
	if c, ok := ansiColor(s.Bg); ok {
		te = te.BackgroundColor(c)
	}
	if s.Bold {
		te = te.Bold()
	}
	if s.Italic {
		te = te.Italic(true)
	}
	if s.Underline {
		te = te.Underline(true)
	}
	if s.Strike {
		te = te.Strikethrough(true)
	}
	if s.Dim {
		te = te.Faint()
	}
	return te.String()
}

// ansiColor maps palette colours to indexed SGR colours and RGB colours to
// true colour.
func ansiColor(c tcell.Color) (color.Color, bool) {
	if c == tcell.ColorDefault || !c.Valid() {
		return nil, false
	}
	if c.IsRGB() {
		r, g, b := c.RGB()
		return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, true
	}
	idx := c - tcell.ColorValid
	if idx > 255 {
		return nil, false
	}
	return ansi.IndexedColor(uint8(idx)), true
}
