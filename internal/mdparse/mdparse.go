// Package mdparse converts CommonMark/GFM source into a doc tree.
package mdparse

import (
	"bytes"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// ImageLoader resolves an image destination to a decoded image reference.
type ImageLoader func(dest, alt string) (doc.ImageRef, error)

type Parser struct {
	md     goldmark.Markdown
	images ImageLoader
	log    *log.Logger
}

type Option func(*Parser)

// WithImageLoader enables inline images. Without a loader every image falls
// back to its alt text.
func WithImageLoader(l ImageLoader) Option {
	return func(p *Parser) { p.images = l }
}

func WithLogger(l *log.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{
		md:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse is shorthand for New(opts...).Parse(src).
func Parse(src []byte, opts ...Option) *doc.Document {
	return New(opts...).Parse(src)
}

// Parse never fails: invalid UTF-8 is replaced and unknown nodes are
// rendered as plain text.
func (p *Parser) Parse(src []byte) *doc.Document {
	src = bytes.ToValidUTF8(src, []byte("�"))
	root := p.md.Parser().Parse(text.NewReader(src))
	c := converter{p: p, src: src}
	return doc.New(c.blocks(root)...)
}

type converter struct {
	p   *Parser
	src []byte
}

func (c *converter) blocks(parent ast.Node) []*doc.Block {
	var out []*doc.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.block(n)...)
	}
	return out
}

func (c *converter) block(n ast.Node) []*doc.Block {
	switch nd := n.(type) {
	case *ast.Heading:
		return []*doc.Block{doc.Heading(nd.Level, c.inlines(nd, nil)...)}
	case *ast.Paragraph, *ast.TextBlock:
		runs := c.inlines(nd, nil)
		if len(runs) == 1 && runs[0].IsImage() && len(runs[0].Spans) == 0 {
			return []*doc.Block{doc.ImageBlock(*runs[0].Image)}
		}
		return []*doc.Block{doc.Paragraph(runs...)}
	case *ast.List:
		return c.list(nd)
	case *ast.ListItem:
		return []*doc.Block{doc.Bullet(c.blocks(nd)...)}
	case *ast.Blockquote:
		return []*doc.Block{doc.BlockQuote(c.blocks(nd)...)}
	case *ast.FencedCodeBlock:
		return []*doc.Block{doc.CodeBlock(string(nd.Language(c.src)), c.lines(nd))}
	case *ast.CodeBlock:
		return []*doc.Block{doc.CodeBlock("", c.lines(nd))}
	case *ast.ThematicBreak:
		return []*doc.Block{doc.ThematicBreak()}
	case *ast.HTMLBlock:
		lines := c.lines(nd)
		if nd.HasClosure() {
			lines = append(lines, strings.TrimRight(string(nd.ClosureLine.Value(c.src)), "\r\n"))
		}
		return []*doc.Block{c.verbatim(lines)}
	case *extast.Table:
		return []*doc.Block{doc.TableBlock(c.table(nd))}
	default:
		c.p.log.Debug("unsupported markdown node", "kind", n.Kind().String())
		if n.Type() == ast.TypeBlock && n.HasChildren() {
			return c.blocks(n)
		}
		return nil
	}
}

// list flattens a list into consecutive list items with their ordinals.
func (c *converter) list(l *ast.List) []*doc.Block {
	var out []*doc.Block
	ordinal := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := doc.ListMarker{Ordered: l.IsOrdered()}
		if marker.Ordered {
			marker.Ordinal = ordinal
			ordinal++
		}
		out = append(out, doc.ListItem(marker, c.blocks(item)...))
	}
	return out
}

func (c *converter) lines(n ast.Node) []string {
	segs := n.Lines()
	out := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(c.src)), "\r\n"))
	}
	return out
}

// verbatim renders raw lines as code-styled text separated by hard breaks.
func (c *converter) verbatim(lines []string) *doc.Block {
	var runs []doc.Run
	for i, line := range lines {
		if i > 0 {
			runs = append(runs, doc.LineBreak())
		}
		if line != "" {
			runs = append(runs, doc.Text(line, doc.Code))
		}
	}
	return doc.Paragraph(runs...)
}

func (c *converter) table(t *extast.Table) *doc.Table {
	tbl := &doc.Table{}
	for _, a := range t.Alignments {
		tbl.Align = append(tbl.Align, alignment(a))
	}
	for n := t.FirstChild(); n != nil; n = n.NextSibling() {
		switch row := n.(type) {
		case *extast.TableHeader:
			tbl.Header = c.cells(row)
			if len(tbl.Header) == 0 {
				// Older trees wrap header cells in a row.
				if tr, ok := row.FirstChild().(*extast.TableRow); ok {
					tbl.Header = c.cells(tr)
				}
			}
		case *extast.TableRow:
			tbl.Rows = append(tbl.Rows, c.cells(row))
		}
	}
	for len(tbl.Align) < len(tbl.Header) {
		tbl.Align = append(tbl.Align, doc.AlignDefault)
	}
	return tbl
}

func (c *converter) cells(row ast.Node) [][]doc.Run {
	var out [][]doc.Run
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if tc, ok := cell.(*extast.TableCell); ok {
			out = append(out, c.inlines(tc, nil))
		}
	}
	return out
}

func alignment(a extast.Alignment) doc.Alignment {
	switch a {
	case extast.AlignLeft:
		return doc.AlignLeft
	case extast.AlignCenter:
		return doc.AlignCenter
	case extast.AlignRight:
		return doc.AlignRight
	default:
		return doc.AlignDefault
	}
}

func (c *converter) inlines(parent ast.Node, spans []doc.Span) []doc.Run {
	var out []doc.Run
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.inline(n, spans)...)
	}
	return out
}

func (c *converter) inline(n ast.Node, spans []doc.Span) []doc.Run {
	switch nd := n.(type) {
	case *ast.Text:
		var out []doc.Run
		if s := string(nd.Segment.Value(c.src)); s != "" {
			out = append(out, c.text(s, spans))
		}
		switch {
		case nd.HardLineBreak():
			out = append(out, doc.LineBreak())
		case nd.SoftLineBreak():
			out = append(out, c.text(" ", spans))
		}
		return out
	case *ast.String:
		return []doc.Run{c.text(string(nd.Value), spans)}
	case *ast.CodeSpan:
		return []doc.Run{c.text(c.plain(nd), with(spans, doc.Code))}
	case *ast.Emphasis:
		span := doc.Emphasis
		if nd.Level >= 2 {
			span = doc.Strong
		}
		return c.inlines(nd, with(spans, span))
	case *extast.Strikethrough:
		return c.inlines(nd, with(spans, doc.Strike))
	case *ast.Link:
		return c.inlines(nd, with(spans, doc.Link(string(nd.Destination))))
	case *ast.AutoLink:
		url := string(nd.URL(c.src))
		label := string(nd.Label(c.src))
		if label == "" {
			label = url
		}
		return []doc.Run{c.text(label, with(spans, doc.Link(url)))}
	case *ast.Image:
		return []doc.Run{c.image(nd, spans)}
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < nd.Segments.Len(); i++ {
			seg := nd.Segments.At(i)
			b.Write(seg.Value(c.src))
		}
		return []doc.Run{c.text(b.String(), spans)}
	case *extast.TaskCheckBox:
		box := "[ ] "
		if nd.IsChecked {
			box = "[x] "
		}
		return []doc.Run{c.text(box, spans)}
	default:
		return c.inlines(n, spans)
	}
}

func (c *converter) image(n *ast.Image, spans []doc.Span) doc.Run {
	dest := strings.TrimSpace(string(n.Destination))
	alt := strings.TrimSpace(c.plain(n))
	if alt == "" {
		alt = strings.TrimSpace(string(n.Title))
	}
	if c.p.images != nil {
		ref, err := c.p.images(dest, alt)
		if err == nil {
			return doc.Image(ref, spans...)
		}
		c.p.log.Debug("image fallback to alt text", "dest", dest, "err", err)
	}
	label := alt
	if label == "" {
		label = dest
	}
	if label == "" {
		label = "image"
	}
	return c.text(label, with(spans, doc.Span{Kind: doc.SpanImageLink, Target: dest}))
}

// plain concatenates the literal text below n.
func (c *converter) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(c.src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func (c *converter) text(s string, spans []doc.Span) doc.Run {
	return doc.Text(norm.NFC.String(s), spans...)
}

// with appends span without aliasing the caller's slice.
func with(spans []doc.Span, span doc.Span) []doc.Span {
	out := make([]doc.Span, 0, len(spans)+1)
	out = append(out, spans...)
	return append(out, span)
}
