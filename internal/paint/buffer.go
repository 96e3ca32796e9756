// Package paint renders the visible logical lines into a cell buffer and
// collects the image placements for the graphics layer.
package paint

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/mdview/internal/style"
)

// Cell is one terminal cell. A wide cluster occupies its lead cell with
// Width 2 and a continuation cell with an empty Text. Image cells are
// reserved for the graphics layer and hold no text.
type Cell struct {
	Text  string
	Width int
	Style style.Set
	Image bool
}

func (c Cell) continuation() bool {
	return c.Width == 0 && !c.Image
}

var blankCell = Cell{Text: " ", Width: 1}

// CellBuffer is a rows x columns grid of cells.
type CellBuffer struct {
	Width  int
	Height int
	cells  []Cell
}

// NewCellBuffer returns a buffer filled with blank cells.
func NewCellBuffer(width, height int) *CellBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	b := &CellBuffer{Width: width, Height: height, cells: make([]Cell, width*height)}
	for i := range b.cells {
		b.cells[i] = blankCell
	}
	return b
}

func (b *CellBuffer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// At returns the cell at (x, y); outside the buffer it returns a blank cell.
func (b *CellBuffer) At(x, y int) Cell {
	if !b.inside(x, y) {
		return blankCell
	}
	return b.cells[y*b.Width+x]
}

// put writes a cluster at (x, y). Clusters that would cross the right edge
// are replaced by blanks. Wide clusters partly overwritten by later writes
// are blanked so no half of a glyph stays behind.
func (b *CellBuffer) put(x, y int, text string, width int, st style.Set) {
	if !b.inside(x, y) {
		return
	}
	if x+width > b.Width {
		for ; x < b.Width; x++ {
			b.set(x, y, Cell{Text: " ", Width: 1, Style: st})
		}
		return
	}
	b.set(x, y, Cell{Text: text, Width: width, Style: st})
	for i := 1; i < width; i++ {
		b.set(x+i, y, Cell{Style: st})
	}
}

func (b *CellBuffer) set(x, y int, c Cell) {
	idx := y*b.Width + x
	old := b.cells[idx]
	switch {
	case old.continuation() && x > 0 && b.cells[idx-1].Width > 1:
		b.cells[idx-1] = Cell{Text: " ", Width: 1, Style: b.cells[idx-1].Style}
	case old.Width > 1:
		for i := 1; i < old.Width && x+i < b.Width; i++ {
			if b.cells[idx+i].continuation() {
				b.cells[idx+i] = Cell{Text: " ", Width: 1, Style: old.Style}
			}
		}
	}
	b.cells[idx] = c
}

// reserve marks a rectangle as image cells.
func (b *CellBuffer) reserve(x, y, cols, rows int) {
	for r := y; r < y+rows; r++ {
		for c := x; c < x+cols; c++ {
			if b.inside(c, r) {
				b.set(c, r, Cell{Image: true})
			}
		}
	}
}

// Row renders row y as plain text. Image cells read as spaces.
func (b *CellBuffer) Row(y int) string {
	if y < 0 || y >= b.Height {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < b.Width; x++ {
		c := b.cells[y*b.Width+x]
		switch {
		case c.Image:
			sb.WriteByte(' ')
		case c.continuation():
		default:
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// Blit copies the buffer onto screen with its top-left corner at (x, y).
// Image cells are cleared; the graphics layer draws over them.
func (b *CellBuffer) Blit(screen tcell.Screen, x, y int) {
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			c := b.cells[row*b.Width+col]
			switch {
			case c.Image:
				screen.SetContent(x+col, y+row, ' ', nil, tcell.StyleDefault)
			case c.continuation():
			default:
				runes := []rune(c.Text)
				if len(runes) == 0 {
					runes = []rune{' '}
				}
				screen.SetContent(x+col, y+row, runes[0], runes[1:], c.Style.Tcell())
			}
		}
	}
}
