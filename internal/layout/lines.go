// Package layout turns a document tree into logical lines: rows of positioned
// fragments ready to be painted. Lines are computed per top-level block and
// width and memoized in a LineCache.
package layout

import (
	"strings"

	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/style"
	"github.com/kk-code-lab/mdview/internal/textutil"
)

// SeparatorRow is the Row of blank lines inserted between blocks.
const SeparatorRow = -1

// ImageSlice is the part of an image that falls on one logical line.
// RowOffset is the image row drawn on that line; the image is placed once,
// from the line with RowOffset zero.
type ImageSlice struct {
	Ref         doc.ImageRef
	Span        imgplace.Span
	RowOffset   int
	Placeholder bool
}

// Fragment is a styled text slice or an image slice starting at Col.
type Fragment struct {
	Col   int
	Text  string
	Width int
	Style style.Set
	Image *ImageSlice
}

// End is the column just past the fragment.
func (f Fragment) End() int {
	return f.Col + f.Width
}

// Line is one terminal row of laid-out content. Block identifies the
// top-level block it belongs to and Row its index within that block; blank
// separators carry SeparatorRow and the id of the block that follows them.
// Seq is the line's index in the assembled document.
type Line struct {
	Block      doc.BlockID
	Row        int
	Seq        int
	Fragments  []Fragment
	Scrollable bool
}

// Width is the column just past the last fragment.
func (l Line) Width() int {
	w := 0
	for _, f := range l.Fragments {
		if e := f.End(); e > w {
			w = e
		}
	}
	return w
}

// Blank reports whether the line has no fragments.
func (l Line) Blank() bool {
	return len(l.Fragments) == 0
}

// IsSeparator reports whether the line is a blank line between blocks.
func (l Line) IsSeparator() bool {
	return l.Row == SeparatorRow
}

// Text renders the line as plain text. Gaps and image cells become spaces.
func (l Line) Text() string {
	var b strings.Builder
	col := 0
	for _, f := range l.Fragments {
		if f.Col > col {
			b.WriteString(strings.Repeat(" ", f.Col-col))
			col = f.Col
		}
		if f.Image != nil {
			b.WriteString(strings.Repeat(" ", f.Width))
		} else {
			b.WriteString(f.Text)
		}
		col = f.End()
	}
	return b.String()
}

// Images returns the image fragments of the line.
func (l Line) Images() []Fragment {
	var out []Fragment
	for _, f := range l.Fragments {
		if f.Image != nil {
			out = append(out, f)
		}
	}
	return out
}

// shift moves every fragment right by n columns, returning a new line.
func (l Line) shift(n int) Line {
	if n == 0 || len(l.Fragments) == 0 {
		return l
	}
	frags := make([]Fragment, len(l.Fragments))
	for i, f := range l.Fragments {
		f.Col += n
		frags[i] = f
	}
	l.Fragments = frags
	return l
}

// withPrefix returns a copy of l with prefix fragments inserted before its
// own fragments.
func (l Line) withPrefix(prefix ...Fragment) Line {
	frags := make([]Fragment, 0, len(prefix)+len(l.Fragments))
	frags = append(frags, prefix...)
	frags = append(frags, l.Fragments...)
	l.Fragments = frags
	return l
}

// clipTo cuts l so it ends at column limit. Fragments past the cut are
// dropped, a text fragment crossing it is shortened, and the last cell shows
// an ellipsis in mark style.
func (l Line) clipTo(limit int, mark style.Set) Line {
	if limit < 1 || l.Width() <= limit {
		return l
	}
	edge := limit - 1
	frags := make([]Fragment, 0, len(l.Fragments)+1)
	for _, f := range l.Fragments {
		switch {
		case f.End() <= edge:
			frags = append(frags, f)
		case f.Image == nil && f.Col < edge:
			head, _ := textutil.TruncateToWidth(f.Text, edge-f.Col, "")
			if head == "" {
				continue
			}
			f.Text = head
			f.Width = textutil.DisplayWidth(head)
			frags = append(frags, f)
		}
	}
	l.Fragments = append(frags, textFragment(edge, ellipsis, 1, mark))
	return l
}

func textFragment(col int, text string, width int, st style.Set) Fragment {
	return Fragment{Col: col, Text: text, Width: width, Style: st}
}
