// Package doc holds the parsed markdown tree consumed by the layout engine.
//
// Trees are built once per loaded document and treated as immutable afterwards.
// Every block receives an identity from a process-wide counter when it is
// constructed; identities are never reused, so they are safe cache keys even
// across document reloads.
package doc

import "sync/atomic"

// BlockID identifies a block for the lifetime of the process.
type BlockID uint64

var lastID atomic.Uint64

// NewID returns a fresh block identity. Zero is never returned.
func NewID() BlockID {
	return BlockID(lastID.Add(1))
}

// BlockKind enumerates structural markdown elements.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindListItem
	KindBlockQuote
	KindCodeBlock
	KindTable
	KindImage
	KindThematicBreak
)

func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list-item"
	case KindBlockQuote:
		return "blockquote"
	case KindCodeBlock:
		return "code"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	case KindThematicBreak:
		return "rule"
	default:
		return "unknown"
	}
}

// ListMarker describes the prefix of a list item.
type ListMarker struct {
	Ordered bool
	Ordinal int
}

// Alignment is a table column alignment.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Table holds header and body cells; each cell is an inline run sequence.
type Table struct {
	Align  []Alignment
	Header [][]Run
	Rows   [][][]Run
}

// Columns reports the column count, taken from the header.
func (t *Table) Columns() int {
	if t == nil {
		return 0
	}
	return len(t.Header)
}

// Block is one structural element. Which fields are meaningful depends on Kind:
// Runs for paragraphs, headings and image blocks, Children for list items and
// block quotes, Lines and Language for code blocks, Table for tables.
type Block struct {
	ID       BlockID
	Kind     BlockKind
	Level    int
	Marker   ListMarker
	Language string
	Lines    []string
	Runs     []Run
	Children []*Block
	Table    *Table
}

// Empty reports whether the block carries no content of its own.
func (b *Block) Empty() bool {
	if b == nil {
		return true
	}
	switch b.Kind {
	case KindCodeBlock:
		return len(b.Lines) == 0
	case KindTable:
		return b.Table.Columns() == 0
	case KindListItem, KindBlockQuote:
		return len(b.Children) == 0
	case KindThematicBreak:
		return false
	default:
		return len(b.Runs) == 0
	}
}

// Document is the root of a parsed tree.
type Document struct {
	Blocks []*Block
}

// New wraps top-level blocks into a document, dropping nil entries.
func New(blocks ...*Block) *Document {
	d := &Document{Blocks: make([]*Block, 0, len(blocks))}
	for _, b := range blocks {
		if b != nil {
			d.Blocks = append(d.Blocks, b)
		}
	}
	return d
}

// Walk visits every block depth-first in document order. Returning false from
// fn skips the children of that block.
func (d *Document) Walk(fn func(b *Block, depth int) bool) {
	if d == nil {
		return
	}
	for _, b := range d.Blocks {
		walk(b, 0, fn)
	}
}

func walk(b *Block, depth int, fn func(*Block, int) bool) {
	if b == nil || !fn(b, depth) {
		return
	}
	for _, child := range b.Children {
		walk(child, depth+1, fn)
	}
}

// ImageHandles lists every image handle referenced by the document, in
// document order and without duplicates.
func (d *Document) ImageHandles() []ImageHandle {
	var out []ImageHandle
	seen := make(map[ImageHandle]struct{})
	add := func(runs []Run) {
		for _, r := range runs {
			if r.Image == nil {
				continue
			}
			if _, ok := seen[r.Image.Handle]; ok {
				continue
			}
			seen[r.Image.Handle] = struct{}{}
			out = append(out, r.Image.Handle)
		}
	}
	d.Walk(func(b *Block, _ int) bool {
		add(b.Runs)
		if b.Table != nil {
			for _, cell := range b.Table.Header {
				add(cell)
			}
			for _, row := range b.Table.Rows {
				for _, cell := range row {
					add(cell)
				}
			}
		}
		return true
	})
	return out
}
