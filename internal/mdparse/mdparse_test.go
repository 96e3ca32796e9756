package mdparse

import (
	"errors"
	"testing"

	"github.com/kk-code-lab/mdview/internal/doc"
)

func kinds(blocks []*doc.Block) []doc.BlockKind {
	out := make([]doc.BlockKind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind
	}
	return out
}

func runText(runs []doc.Run) string {
	var s string
	for _, r := range runs {
		if r.Break {
			s += "\n"
		}
		s += r.Text
	}
	return s
}

func TestParseBlockKinds(t *testing.T) {
	src := "# Title\n\nSome *text*.\n\n- one\n- two\n\n> quoted\n\n```go\nfunc main() {}\n```\n\n---\n"
	d := Parse([]byte(src))
	want := []doc.BlockKind{
		doc.KindHeading, doc.KindParagraph, doc.KindListItem, doc.KindListItem,
		doc.KindBlockQuote, doc.KindCodeBlock, doc.KindThematicBreak,
	}
	got := kinds(d.Blocks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
	if d.Blocks[0].Level != 1 || runText(d.Blocks[0].Runs) != "Title" {
		t.Fatalf("heading = %+v", d.Blocks[0])
	}
	code := d.Blocks[5]
	if code.Language != "go" || len(code.Lines) != 1 || code.Lines[0] != "func main() {}" {
		t.Fatalf("code block = %+v", code)
	}
}

func TestParseOrderedListOrdinals(t *testing.T) {
	d := Parse([]byte("3. a\n4. b\n5. c\n"))
	if len(d.Blocks) != 3 {
		t.Fatalf("got %d blocks", len(d.Blocks))
	}
	for i, b := range d.Blocks {
		if !b.Marker.Ordered || b.Marker.Ordinal != 3+i {
			t.Fatalf("item %d marker = %+v", i, b.Marker)
		}
	}
}

func TestParseNestedList(t *testing.T) {
	d := Parse([]byte("- outer\n  - inner\n"))
	if len(d.Blocks) != 1 {
		t.Fatalf("got %d blocks", len(d.Blocks))
	}
	children := d.Blocks[0].Children
	if len(children) != 2 || children[0].Kind != doc.KindParagraph || children[1].Kind != doc.KindListItem {
		t.Fatalf("children = %v", kinds(children))
	}
}

func TestParseInlineSpans(t *testing.T) {
	d := Parse([]byte("a *em* **strong** ~~gone~~ `code` [link](http://x.test)\n"))
	runs := d.Blocks[0].Runs
	find := func(text string) doc.Run {
		for _, r := range runs {
			if r.Text == text {
				return r
			}
		}
		t.Fatalf("no run %q in %+v", text, runs)
		return doc.Run{}
	}
	tests := []struct {
		text string
		kind doc.SpanKind
	}{
		{"em", doc.SpanEmphasis},
		{"strong", doc.SpanStrong},
		{"gone", doc.SpanStrike},
		{"code", doc.SpanCode},
		{"link", doc.SpanLink},
	}
	for _, tt := range tests {
		r := find(tt.text)
		if len(r.Spans) != 1 || r.Spans[0].Kind != tt.kind {
			t.Fatalf("run %q spans = %+v, want %v", tt.text, r.Spans, tt.kind)
		}
	}
	if got := find("link").LinkTarget(); got != "http://x.test" {
		t.Fatalf("link target = %q", got)
	}
}

func TestParseBreaks(t *testing.T) {
	d := Parse([]byte("one\ntwo  \nthree\n"))
	if got := runText(d.Blocks[0].Runs); got != "one two\nthree" {
		t.Fatalf("text = %q", got)
	}
}

func TestParseTable(t *testing.T) {
	d := Parse([]byte("| a | b | c |\n|:--|:-:|--:|\n| 1 | 2 | 3 |\n| 4 | 5 | 6 |\n"))
	if len(d.Blocks) != 1 || d.Blocks[0].Kind != doc.KindTable {
		t.Fatalf("blocks = %v", kinds(d.Blocks))
	}
	tbl := d.Blocks[0].Table
	if tbl.Columns() != 3 || len(tbl.Rows) != 2 {
		t.Fatalf("table = %+v", tbl)
	}
	want := []doc.Alignment{doc.AlignLeft, doc.AlignCenter, doc.AlignRight}
	for i, a := range want {
		if tbl.Align[i] != a {
			t.Fatalf("align = %v, want %v", tbl.Align, want)
		}
	}
	if runText(tbl.Header[1]) != "b" || runText(tbl.Rows[1][2]) != "6" {
		t.Fatalf("cells = %+v", tbl)
	}
}

func TestParseImages(t *testing.T) {
	loader := func(dest, alt string) (doc.ImageRef, error) {
		if dest == "ok.png" {
			return doc.ImageRef{Handle: "ok", Width: 10, Height: 10, Alt: alt}, nil
		}
		return doc.ImageRef{}, errors.New("missing")
	}
	d := Parse([]byte("![pic](ok.png)\n\nsee ![broken](nope.png) here\n"), WithImageLoader(loader))
	if d.Blocks[0].Kind != doc.KindImage || d.Blocks[0].Runs[0].Image.Handle != "ok" {
		t.Fatalf("image block = %+v", d.Blocks[0])
	}
	if d.Blocks[0].Runs[0].Image.Alt != "pic" {
		t.Fatalf("alt = %q", d.Blocks[0].Runs[0].Image.Alt)
	}
	var fallback *doc.Run
	for i, r := range d.Blocks[1].Runs {
		if r.Text == "broken" {
			fallback = &d.Blocks[1].Runs[i]
		}
	}
	if fallback == nil || fallback.Spans[len(fallback.Spans)-1].Kind != doc.SpanImageLink {
		t.Fatalf("fallback runs = %+v", d.Blocks[1].Runs)
	}
	if handles := d.ImageHandles(); len(handles) != 1 || handles[0] != "ok" {
		t.Fatalf("handles = %v", handles)
	}
}

func TestParseWithoutLoaderUsesAlt(t *testing.T) {
	d := Parse([]byte("![alt text](x.png)\n"))
	if d.Blocks[0].Kind != doc.KindParagraph || runText(d.Blocks[0].Runs) != "alt text" {
		t.Fatalf("block = %+v", d.Blocks[0])
	}
}

func TestParseInvalidUTF8AndNFC(t *testing.T) {
	d := Parse([]byte("caf\x65\xcc\x81 \xff\n"))
	got := runText(d.Blocks[0].Runs)
	if got != "café �" {
		t.Fatalf("text = %q", got)
	}
}

func TestParseTaskList(t *testing.T) {
	d := Parse([]byte("- [x] done\n- [ ] todo\n"))
	if got := runText(d.Blocks[0].Children[0].Runs); got != "[x] done" {
		t.Fatalf("task = %q", got)
	}
}

func TestParseEmptyInput(t *testing.T) {
	if d := Parse(nil); len(d.Blocks) != 0 {
		t.Fatalf("blocks = %v", kinds(d.Blocks))
	}
}
