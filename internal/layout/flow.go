package layout

import (
	"strings"

	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/style"
	"github.com/kk-code-lab/mdview/internal/textutil"
	"golang.org/x/text/unicode/norm"
)

// FlowConfig controls inline wrapping. Base is the block style the run spans
// are resolved on top of.
type FlowConfig struct {
	Theme           style.Theme
	Base            style.Set
	CellSize        imgplace.Size
	MaxImageCols    int
	MaxImageRows    int
	ShowLinkTargets bool
	// OnImageError is called for images that could not be sized; they get a
	// one-cell placeholder.
	OnImageError func(ref doc.ImageRef, err error)
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokSpace
	tokBreak
	tokImage
)

type piece struct {
	text  string
	width int
	style style.Set
}

// token is an atomic wrapping unit. A word may span several styled pieces,
// e.g. "**bold**ness" is one word of two pieces.
type token struct {
	kind   tokenKind
	pieces []piece
	width  int
	image  *doc.ImageRef
	style  style.Set
}

// Wrap flows runs greedily into lines at most width cells wide. Fragments are
// positioned starting at column indent. Words are kept whole unless a single
// word is wider than width, in which case it is split between grapheme
// clusters. Images are atomic and sized to fit width. Whitespace at a wrap
// point and at the start of a line is dropped. At least one line is returned.
func Wrap(runs []doc.Run, width, indent int, cfg FlowConfig) []Line {
	if width < 1 {
		width = 1
	}
	f := &flow{width: width, indent: indent, cfg: cfg}
	for _, tok := range tokenize(runs, cfg) {
		f.add(tok)
	}
	if f.x > 0 || len(f.lines) == 0 {
		f.finish()
	}
	for i := range f.lines {
		f.lines[i].Row = i
	}
	return f.lines
}

func tokenize(runs []doc.Run, cfg FlowConfig) []token {
	if cfg.ShowLinkTargets {
		runs = withLinkTargets(runs)
	}
	var tokens []token
	for _, r := range runs {
		st := style.Resolve(cfg.Theme.Chain(cfg.Base, r.Spans)...)
		switch {
		case r.Break:
			tokens = append(tokens, token{kind: tokBreak})
		case r.Image != nil:
			ref := *r.Image
			tokens = append(tokens, token{
				kind:  tokImage,
				image: &ref,
				style: cfg.Theme.ImageLink.OnTopOf(st),
			})
		default:
			tokens = appendText(tokens, normalizeText(r.Text), st)
		}
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].kind == tokBreak {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func appendText(tokens []token, text string, st style.Set) []token {
	for text != "" {
		if text[0] == ' ' {
			n := len(text) - len(strings.TrimLeft(text, " "))
			tokens = append(tokens, token{
				kind:   tokSpace,
				pieces: []piece{{text: text[:n], width: n, style: st}},
				width:  n,
			})
			text = text[n:]
			continue
		}
		n := strings.IndexByte(text, ' ')
		if n < 0 {
			n = len(text)
		}
		p := piece{text: text[:n], width: textutil.DisplayWidth(text[:n]), style: st}
		if last := len(tokens) - 1; last >= 0 && tokens[last].kind == tokWord {
			tokens[last].pieces = append(tokens[last].pieces, p)
			tokens[last].width += p.width
		} else {
			tokens = append(tokens, token{kind: tokWord, pieces: []piece{p}, width: p.width})
		}
		text = text[n:]
	}
	return tokens
}

func normalizeText(s string) string {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return textutil.Sanitize(s)
}

// withLinkTargets appends " (target)" after each link whose text differs
// from its target.
func withLinkTargets(runs []doc.Run) []doc.Run {
	out := make([]doc.Run, 0, len(runs))
	var label strings.Builder
	for i, r := range runs {
		out = append(out, r)
		target := r.LinkTarget()
		if target == "" {
			continue
		}
		label.WriteString(r.Text)
		if i+1 < len(runs) && runs[i+1].LinkTarget() == target {
			continue
		}
		if label.String() != target {
			out = append(out, doc.Text(" ("+target+")", r.Spans...))
		}
		label.Reset()
	}
	return out
}

type flow struct {
	width   int
	indent  int
	cfg     FlowConfig
	lines   []Line
	frags   []Fragment
	tall    []Fragment
	x       int
	pending []piece
}

func (f *flow) add(tok token) {
	switch tok.kind {
	case tokBreak:
		f.finish()
	case tokSpace:
		if f.x > 0 {
			f.pending = append(f.pending, tok.pieces...)
		}
	case tokWord:
		f.place(tok.width)
		if f.x+tok.width <= f.width {
			for _, p := range tok.pieces {
				f.emit(p)
			}
			return
		}
		f.hardSplit(tok)
	case tokImage:
		span, placeholder := f.allocate(*tok.image)
		f.place(span.Cols)
		frag := Fragment{
			Col:   f.indent + f.x,
			Width: span.Cols,
			Style: tok.style,
			Image: &ImageSlice{Ref: *tok.image, Span: span, Placeholder: placeholder},
		}
		f.frags = append(f.frags, frag)
		f.x += span.Cols
		if span.Rows > 1 {
			f.tall = append(f.tall, frag)
		}
	}
}

// place breaks the line if a unit of width w does not fit after the pending
// spaces, otherwise it commits the spaces.
func (f *flow) place(w int) {
	spaces := 0
	for _, p := range f.pending {
		spaces += p.width
	}
	if f.x > 0 && f.x+spaces+w > f.width {
		f.finish()
		return
	}
	for _, p := range f.pending {
		f.emit(p)
	}
	f.pending = nil
}

func (f *flow) hardSplit(tok token) {
	for _, p := range tok.pieces {
		textutil.EachCluster(p.text, func(cluster string, w int) bool {
			if f.x > 0 && f.x+w > f.width {
				f.finish()
			}
			if w > f.width {
				cluster, w = "…", 1
			}
			f.emit(piece{text: cluster, width: w, style: p.style})
			return true
		})
	}
}

func (f *flow) emit(p piece) {
	if p.text == "" {
		return
	}
	col := f.indent + f.x
	if n := len(f.frags); n > 0 {
		last := &f.frags[n-1]
		if last.Image == nil && last.Style == p.style && last.End() == col {
			last.Text += p.text
			last.Width += p.width
			f.x += p.width
			return
		}
	}
	f.frags = append(f.frags, textFragment(col, p.text, p.width, p.style))
	f.x += p.width
}

// finish closes the current line. Images taller than one row reserve the
// rows below them on continuation lines.
func (f *flow) finish() {
	f.lines = append(f.lines, Line{Fragments: f.frags})
	rows := 1
	for _, img := range f.tall {
		if img.Image.Span.Rows > rows {
			rows = img.Image.Span.Rows
		}
	}
	for k := 1; k < rows; k++ {
		var frags []Fragment
		for _, img := range f.tall {
			if img.Image.Span.Rows <= k {
				continue
			}
			slice := *img.Image
			slice.RowOffset = k
			img.Image = &slice
			frags = append(frags, img)
		}
		f.lines = append(f.lines, Line{Fragments: frags})
	}
	f.frags = nil
	f.tall = nil
	f.pending = nil
	f.x = 0
}

func (f *flow) allocate(ref doc.ImageRef) (imgplace.Span, bool) {
	maxCols := f.cfg.MaxImageCols
	if maxCols <= 0 || maxCols > f.width {
		maxCols = f.width
	}
	span, err := imgplace.Allocate(imgplace.Size{W: ref.Width, H: ref.Height}, f.cfg.CellSize, maxCols, f.cfg.MaxImageRows)
	if err != nil {
		if f.cfg.OnImageError != nil {
			f.cfg.OnImageError(ref, err)
		}
		return imgplace.Placeholder, true
	}
	return span, false
}
