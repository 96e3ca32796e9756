package layout

import (
	"strings"

	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/style"
)

// minColWidth is the narrowest a column is shrunk to before the table is
// allowed to shrink further to single-cell columns.
const minColWidth = 3

type tableBorders struct {
	topLeft, topSep, topRight          string
	midLeft, midSep, midRight          string
	bottomLeft, bottomSep, bottomRight string
	vertical                           string
}

func defaultTableBorders() tableBorders {
	return tableBorders{
		topLeft:     "┌",
		topSep:      "┬",
		topRight:    "┐",
		midLeft:     "├",
		midSep:      "┼",
		midRight:    "┤",
		bottomLeft:  "└",
		bottomSep:   "┴",
		bottomRight: "┘",
		vertical:    "│",
	}
}

// tableCell is a cell wrapped to its column width.
type tableCell struct {
	lines []Line
}

// table lays out a table with box borders. Column widths start at the widest
// cell of each column (at least one cell) and, while the table is too wide,
// the widest column is narrowed one cell at a time. A table that still does
// not fit with single-cell columns is cut at the right edge with an ellipsis.
// The result depends only on the table and the available width.
func (l *blockLayouter) table(t *doc.Table, ctx blockCtx) []Line {
	cols := t.Columns()
	avail := ctx.avail()
	body := l.opts.Theme.Text.OnTopOf(ctx.base)
	headerCfg := l.flowConfig(l.opts.Theme.Strong.OnTopOf(body))
	bodyCfg := l.flowConfig(body)
	rows := tableRows(t, cols)

	widths := computeColumnWidths(t.Header, rows, avail, headerCfg, bodyCfg)
	widths = clampColumnWidths(widths, avail, minColWidth)
	widths = clampColumnWidths(widths, avail, 1)
	trunc := l.opts.Theme.Truncation.OnTopOf(ctx.base)
	limit := ctx.indent + avail

	borders := defaultTableBorders()
	borderStyle := l.opts.Theme.TableBorder.OnTopOf(ctx.base)
	tl := tableLines{indent: ctx.indent, widths: widths, align: t.Align, border: borderStyle, borders: borders}

	var out []Line
	out = append(out, tl.borderLine(borders.topLeft, borders.topSep, borders.topRight))
	out = append(out, tl.rowLines(wrapCells(t.Header, widths, headerCfg))...)
	out = append(out, tl.borderLine(borders.midLeft, borders.midSep, borders.midRight))
	for _, row := range rows {
		out = append(out, tl.rowLines(wrapCells(row, widths, bodyCfg))...)
	}
	out = append(out, tl.borderLine(borders.bottomLeft, borders.bottomSep, borders.bottomRight))
	for i, line := range out {
		out[i] = line.clipTo(limit, trunc)
	}
	return out
}

// tableRows pads or trims body rows to the header's column count.
func tableRows(t *doc.Table, cols int) [][][]doc.Run {
	rows := make([][][]doc.Run, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([][]doc.Run, cols)
		copy(rows[i], row)
	}
	return rows
}

func computeColumnWidths(header [][]doc.Run, rows [][][]doc.Run, avail int, headerCfg, bodyCfg FlowConfig) []int {
	widths := make([]int, len(header))
	update := func(cell []doc.Run, idx int, cfg FlowConfig) {
		for _, line := range Wrap(cell, avail, 0, cfg) {
			if w := line.Width(); w > widths[idx] {
				widths[idx] = w
			}
		}
	}
	for i, cell := range header {
		update(cell, i, headerCfg)
	}
	for _, row := range rows {
		for i := range widths {
			update(row[i], i, bodyCfg)
		}
	}
	for i, w := range widths {
		if w < 1 {
			widths[i] = 1
		}
	}
	return widths
}

func clampColumnWidths(widths []int, maxWidth, minWidth int) []int {
	if maxWidth <= 0 || len(widths) == 0 {
		return widths
	}
	total := tableWidth(widths)
	for total > maxWidth {
		idx := widestColumn(widths, minWidth)
		if idx == -1 {
			break
		}
		widths[idx]--
		total--
	}
	return widths
}

func widestColumn(widths []int, minWidth int) int {
	maxIdx := -1
	maxVal := minWidth
	for i, w := range widths {
		if w > maxVal {
			maxVal = w
			maxIdx = i
		}
	}
	return maxIdx
}

func tableWidth(widths []int) int {
	if len(widths) == 0 {
		return 0
	}
	total := 0
	for _, w := range widths {
		total += w
	}
	// Each column gets 2 spaces + 1 border, plus one extra border at the end.
	return total + len(widths)*3 + 1
}

func wrapCells(cells [][]doc.Run, widths []int, cfg FlowConfig) []tableCell {
	out := make([]tableCell, len(widths))
	for i, w := range widths {
		var runs []doc.Run
		if i < len(cells) {
			runs = cells[i]
		}
		out[i] = tableCell{lines: Wrap(runs, w, 0, cfg)}
	}
	return out
}

type tableLines struct {
	indent  int
	widths  []int
	align   []doc.Alignment
	border  style.Set
	borders tableBorders
}

func (t tableLines) borderLine(left, sep, right string) Line {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat(ruleGlyph, w+2)
	}
	text := left + strings.Join(parts, sep) + right
	return Line{Fragments: []Fragment{textFragment(t.indent, text, tableWidth(t.widths), t.border)}}
}

func (t tableLines) rowLines(cells []tableCell) []Line {
	height := 1
	for _, c := range cells {
		if len(c.lines) > height {
			height = len(c.lines)
		}
	}
	out := make([]Line, height)
	for i := range out {
		out[i] = t.rowLine(cells, i)
	}
	return out
}

func (t tableLines) rowLine(cells []tableCell, idx int) Line {
	var frags []Fragment
	col := t.indent
	vertical := func(text string) {
		frags = append(frags, textFragment(col, text, len([]rune(text)), t.border))
		col += len([]rune(text))
	}

	vertical(t.borders.vertical + " ")
	for i, cell := range cells {
		var line Line
		if idx < len(cell.lines) {
			line = cell.lines[idx]
		}
		left := alignOffset(t.widths[i]-line.Width(), alignAt(i, t.align))
		frags = append(frags, line.shift(col+left).Fragments...)
		col += t.widths[i]
		if i == len(cells)-1 {
			vertical(" " + t.borders.vertical)
		} else {
			vertical(" " + t.borders.vertical + " ")
		}
	}
	return Line{Fragments: frags}
}

func alignOffset(space int, alignment doc.Alignment) int {
	if space < 0 {
		return 0
	}
	switch alignment {
	case doc.AlignCenter:
		return space / 2
	case doc.AlignRight:
		return space
	default:
		return 0
	}
}

func alignAt(idx int, align []doc.Alignment) doc.Alignment {
	if idx < len(align) {
		return align[idx]
	}
	return doc.AlignDefault
}
