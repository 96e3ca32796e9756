package doc

// Paragraph builds a paragraph block.
func Paragraph(runs ...Run) *Block {
	return &Block{ID: NewID(), Kind: KindParagraph, Runs: runs}
}

// Heading builds a heading; level is clamped to 1..6.
func Heading(level int, runs ...Run) *Block {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return &Block{ID: NewID(), Kind: KindHeading, Level: level, Runs: runs}
}

// Bullet builds an unordered list item.
func Bullet(children ...*Block) *Block {
	return ListItem(ListMarker{}, children...)
}

// Numbered builds an ordered list item with the given ordinal.
func Numbered(ordinal int, children ...*Block) *Block {
	return ListItem(ListMarker{Ordered: true, Ordinal: ordinal}, children...)
}

// ListItem builds a list item with an explicit marker.
func ListItem(marker ListMarker, children ...*Block) *Block {
	return &Block{ID: NewID(), Kind: KindListItem, Marker: marker, Children: compact(children)}
}

// BlockQuote builds a block quote around children.
func BlockQuote(children ...*Block) *Block {
	return &Block{ID: NewID(), Kind: KindBlockQuote, Children: compact(children)}
}

// CodeBlock builds a code block from source lines.
func CodeBlock(language string, lines []string) *Block {
	return &Block{ID: NewID(), Kind: KindCodeBlock, Language: language, Lines: lines}
}

// TableBlock builds a table block.
func TableBlock(t *Table) *Block {
	return &Block{ID: NewID(), Kind: KindTable, Table: t}
}

// ImageBlock builds a block holding a single image.
func ImageBlock(ref ImageRef) *Block {
	return &Block{ID: NewID(), Kind: KindImage, Runs: []Run{Image(ref)}}
}

// ThematicBreak builds a horizontal rule.
func ThematicBreak() *Block {
	return &Block{ID: NewID(), Kind: KindThematicBreak}
}

func compact(blocks []*Block) []*Block {
	out := blocks[:0:0]
	for _, b := range blocks {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}
