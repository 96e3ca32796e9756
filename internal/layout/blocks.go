package layout

import (
	"strconv"
	"strings"

	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/style"
	"github.com/kk-code-lab/mdview/internal/textutil"
)

const (
	quoteMarker = "│ "
	ellipsis    = "…"
	ruleGlyph   = "─"
)

var bulletGlyphs = []string{"•", "◦", "▪"}

// blockCtx carries what a block inherits from its ancestors: the absolute
// column its content starts at, the list depth for bullet choice and the
// style stack.
type blockCtx struct {
	width     int
	indent    int
	listDepth int
	base      style.Set
}

// avail is the content width left after indentation, at least one cell.
func (c blockCtx) avail() int {
	if w := c.width - c.indent; w > 1 {
		return w
	}
	return 1
}

// nested returns the context for children indented by n more cells. The
// indent stops growing once a single column is left.
func (c blockCtx) nested(n int) blockCtx {
	c.indent += n
	if c.indent > c.width-1 {
		c.indent = c.width - 1
	}
	if c.indent < 0 {
		c.indent = 0
	}
	return c
}

// fits reports whether n more cells of indentation leave room for content.
func (c blockCtx) fits(n int) bool {
	return c.indent+n <= c.width-1
}

type blockLayouter struct {
	opts   Options
	report func(error)
}

func (l *blockLayouter) flowConfig(base style.Set) FlowConfig {
	return FlowConfig{
		Theme:           l.opts.Theme,
		Base:            base,
		CellSize:        l.opts.CellSize,
		MaxImageCols:    l.opts.MaxImageCols,
		MaxImageRows:    l.opts.MaxImageRows,
		ShowLinkTargets: l.opts.ShowLinkTargets,
		OnImageError: func(_ doc.ImageRef, err error) {
			if l.report != nil {
				l.report(err)
			}
		},
	}
}

// layout returns the lines of b in ctx. Empty blocks yield one blank line.
func (l *blockLayouter) layout(b *doc.Block, ctx blockCtx) []Line {
	if b.Empty() {
		return []Line{{}}
	}
	switch b.Kind {
	case doc.KindHeading:
		return l.heading(b, ctx)
	case doc.KindListItem:
		return l.listItem(b, ctx)
	case doc.KindBlockQuote:
		return l.blockQuote(b, ctx)
	case doc.KindCodeBlock:
		return l.codeBlock(b, ctx)
	case doc.KindTable:
		return l.table(b.Table, ctx)
	case doc.KindThematicBreak:
		return l.rule(ctx)
	default:
		base := l.opts.Theme.Text.OnTopOf(ctx.base)
		return Wrap(b.Runs, ctx.avail(), ctx.indent, l.flowConfig(base))
	}
}

func (l *blockLayouter) heading(b *doc.Block, ctx blockCtx) []Line {
	base := l.opts.Theme.Heading(b.Level).OnTopOf(ctx.base)
	runs := make([]doc.Run, 0, len(b.Runs)+1)
	runs = append(runs, doc.Text(strings.Repeat("#", b.Level)+" "))
	runs = append(runs, b.Runs...)
	return Wrap(runs, ctx.avail(), ctx.indent, l.flowConfig(base))
}

// children lays out nested blocks, separated the same way as top-level ones.
func (l *blockLayouter) children(blocks []*doc.Block, ctx blockCtx) []Line {
	var out []Line
	var prev *doc.Block
	for _, child := range blocks {
		if child == nil {
			continue
		}
		if prev != nil && separated(prev, child, true) {
			out = append(out, Line{Row: SeparatorRow})
		}
		out = append(out, l.layout(child, ctx)...)
		prev = child
	}
	return out
}

// separated reports whether a blank line goes between two sibling blocks.
// List items are packed together; inside a list item a nested list follows
// its paragraph directly.
func separated(prev, next *doc.Block, inItem bool) bool {
	if next.Kind == doc.KindListItem {
		return !inItem && prev.Kind != doc.KindListItem
	}
	return true
}

func (l *blockLayouter) listMarker(b *doc.Block, depth int) string {
	if b.Marker.Ordered {
		return strconv.Itoa(b.Marker.Ordinal) + "."
	}
	return bulletGlyphs[depth%len(bulletGlyphs)]
}

// listItem hangs the children under the item body: continuation lines align
// with the first character after the marker.
func (l *blockLayouter) listItem(b *doc.Block, ctx blockCtx) []Line {
	marker := l.listMarker(b, ctx.listDepth)
	markerWidth := textutil.DisplayWidth(marker)
	prefix := l.opts.ListIndent
	if prefix < markerWidth+1 {
		prefix = markerWidth + 1
	}
	if !ctx.fits(prefix) {
		// No room for a marker column: the item body takes the line.
		childCtx := ctx
		childCtx.listDepth++
		return l.itemBody(b, childCtx)
	}

	childCtx := ctx.nested(prefix)
	childCtx.listDepth++
	lines := l.itemBody(b, childCtx)

	markerStyle := l.opts.Theme.ListMarker.OnTopOf(ctx.base)
	first := lines[0].withPrefix(textFragment(ctx.indent, marker, markerWidth, markerStyle))
	out := make([]Line, len(lines))
	out[0] = first
	copy(out[1:], lines[1:])
	return out
}

func (l *blockLayouter) itemBody(b *doc.Block, ctx blockCtx) []Line {
	lines := l.children(b.Children, ctx)
	if len(lines) == 0 {
		lines = []Line{{}}
	}
	return lines
}

// blockQuote prefixes each line with a marker per nesting level. Levels that
// no longer fit in the width get no marker of their own.
func (l *blockLayouter) blockQuote(b *doc.Block, ctx blockCtx) []Line {
	width := textutil.DisplayWidth(quoteMarker)
	if !ctx.fits(width) {
		return l.children(b.Children, ctx)
	}
	lines := l.children(b.Children, ctx.nested(width))
	markerStyle := l.opts.Theme.QuoteMarker.OnTopOf(ctx.base)
	out := make([]Line, len(lines))
	for i, line := range lines {
		out[i] = line.withPrefix(textFragment(ctx.indent, quoteMarker, width, markerStyle))
	}
	return out
}

func (l *blockLayouter) rule(ctx blockCtx) []Line {
	n := ctx.avail()
	st := l.opts.Theme.Rule.OnTopOf(ctx.base)
	return []Line{{Fragments: []Fragment{textFragment(ctx.indent, strings.Repeat(ruleGlyph, n), n, st)}}}
}

// codeBlock keeps source line breaks. Lines wider than the available width
// are either clipped with an ellipsis or marked scrollable.
func (l *blockLayouter) codeBlock(b *doc.Block, ctx blockCtx) []Line {
	avail := ctx.avail()
	border := l.opts.Theme.CodeBorder.OnTopOf(ctx.base)
	text := l.opts.Theme.CodeBlock.OnTopOf(ctx.base)
	trunc := l.opts.Theme.Truncation.OnTopOf(ctx.base)

	out := make([]Line, 0, len(b.Lines)+2)
	out = append(out, Line{Fragments: []Fragment{codeRule(ctx.indent, avail, b.Language, border)}})
	for _, src := range b.Lines {
		expanded := textutil.ExpandTabs(textutil.SanitizeCode(src), l.opts.TabWidth)
		width := textutil.DisplayWidth(expanded)
		var line Line
		switch {
		case width == 0:
		case width <= avail:
			line.Fragments = []Fragment{textFragment(ctx.indent, expanded, width, text)}
		case l.opts.CodeOverflow == OverflowScroll:
			line.Fragments = []Fragment{textFragment(ctx.indent, expanded, width, text)}
			line.Scrollable = true
		default:
			head, _ := textutil.TruncateToWidth(expanded, avail-1, "")
			headWidth := textutil.DisplayWidth(head)
			if headWidth < avail-1 {
				// A wide cluster straddled the cut.
				head += strings.Repeat(" ", avail-1-headWidth)
				headWidth = avail - 1
			}
			if head != "" {
				line.Fragments = append(line.Fragments, textFragment(ctx.indent, head, headWidth, text))
			}
			line.Fragments = append(line.Fragments, textFragment(ctx.indent+headWidth, ellipsis, 1, trunc))
		}
		out = append(out, line)
	}
	out = append(out, Line{Fragments: []Fragment{codeRule(ctx.indent, avail, "", border)}})
	return out
}

// codeRule draws "── lang ─────" across width cells.
func codeRule(col, width int, language string, st style.Set) Fragment {
	text := strings.Repeat(ruleGlyph, width)
	if lang := textutil.Sanitize(strings.TrimSpace(language)); lang != "" && width > 4 {
		label := strings.Repeat(ruleGlyph, 2) + " " + lang + " "
		label, _ = textutil.TruncateToWidth(label, width, ellipsis)
		rest := width - textutil.DisplayWidth(label)
		text = label + strings.Repeat(ruleGlyph, rest)
	}
	return textFragment(col, text, width, st)
}
