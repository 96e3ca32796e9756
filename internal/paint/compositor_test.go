package paint

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/layout"
	"github.com/kk-code-lab/mdview/internal/style"
	"github.com/kk-code-lab/mdview/internal/viewport"
)

func imageDoc() *doc.Document {
	blocks := []*doc.Block{
		doc.ImageBlock(doc.ImageRef{Handle: "top", Width: 40, Height: 80, Alt: "logo"}),
	}
	for i := 0; i < 20; i++ {
		blocks = append(blocks, doc.Paragraph(doc.Text(fmt.Sprintf("paragraph %d", i))))
	}
	return doc.New(blocks...)
}

func TestPaintPlacesVisibleImage(t *testing.T) {
	lines := layout.NewEngine(imageDoc()).Layout(30)
	c := NewCompositor(style.DefaultTheme())
	frame := c.Paint(viewport.Viewport{Width: 30, Height: 6}, lines)
	if len(frame.Placements) != 1 {
		t.Fatalf("expected one placement, got %+v", frame.Placements)
	}
	p := frame.Placements[0]
	if p.Handle != "top" || p.Col != 0 || p.Row != 0 || p.Cols != 4 || p.Rows != 4 || p.ClipTop != 0 {
		t.Fatalf("unexpected placement %+v", p)
	}
	if !frame.Buffer.At(3, 3).Image || frame.Buffer.At(4, 0).Image {
		t.Fatalf("image cells not reserved exactly")
	}
	if len(frame.Evicted) != 0 {
		t.Fatalf("nothing should be evicted on first paint")
	}
}

func TestPaintClipsImageScrolledOffTop(t *testing.T) {
	lines := layout.NewEngine(imageDoc()).Layout(30)
	c := NewCompositor(style.DefaultTheme())
	frame := c.Paint(viewport.Viewport{Offset: 2, Width: 30, Height: 6}, lines)
	if len(frame.Placements) != 1 {
		t.Fatalf("expected one placement, got %+v", frame.Placements)
	}
	p := frame.Placements[0]
	if p.Row != 0 || p.ClipTop != 2 || p.Rows != 2 || !p.Clipped() {
		t.Fatalf("unexpected clipped placement %+v", p)
	}
}

func TestPaintReportsEvictions(t *testing.T) {
	lines := layout.NewEngine(imageDoc()).Layout(30)
	c := NewCompositor(style.DefaultTheme())
	c.Paint(viewport.Viewport{Width: 30, Height: 6}, lines)
	frame := c.Paint(viewport.Viewport{Offset: 20, Width: 30, Height: 6}, lines)
	if len(frame.Placements) != 0 {
		t.Fatalf("image should be off screen: %+v", frame.Placements)
	}
	if len(frame.Evicted) != 1 || frame.Evicted[0] != "top" {
		t.Fatalf("evicted = %v, want [top]", frame.Evicted)
	}
	frame = c.Paint(viewport.Viewport{Offset: 21, Width: 30, Height: 6}, lines)
	if len(frame.Evicted) != 0 {
		t.Fatalf("image evicted twice: %v", frame.Evicted)
	}
}

func TestPaintClipsCodeLine(t *testing.T) {
	d := doc.New(doc.CodeBlock("", []string{strings.Repeat("x", 200)}))
	lines := layout.NewEngine(d).Layout(80)
	frame := NewCompositor(style.DefaultTheme()).Paint(viewport.Viewport{Width: 80, Height: 3}, lines)
	row := frame.Buffer.Row(1)
	if row != strings.Repeat("x", 79)+"…" {
		t.Fatalf("row = %q", row)
	}
	if frame.Buffer.At(79, 1).Style != style.DefaultTheme().Truncation {
		t.Fatalf("indicator not in truncation style")
	}
}

func TestPaintHorizontalScroll(t *testing.T) {
	d := doc.New(doc.CodeBlock("", []string{"0123456789abcdefghij"}))
	src := layout.NewEngine(d, layout.WithCodeOverflow(layout.OverflowScroll))
	c := viewport.New(src, 10, 3)
	c.ScrollHorizontal(5)
	frame := NewCompositor(style.DefaultTheme()).Paint(c.Viewport(), c.Lines())
	if got := frame.Buffer.Row(1); got != "…6789abcd…" {
		t.Fatalf("scrolled row = %q", got)
	}
}

func TestPaintWideClusterAtEdge(t *testing.T) {
	line := layout.Line{Fragments: []layout.Fragment{{Col: 0, Text: "ab漢", Width: 4}}}
	frame := NewCompositor(style.DefaultTheme()).Paint(viewport.Viewport{Width: 3, Height: 1}, []layout.Line{line})
	if got := frame.Buffer.Row(0); got != "ab " {
		t.Fatalf("row = %q, want %q", got, "ab ")
	}
}

func TestPaintPlaceholderForDegenerateImage(t *testing.T) {
	d := doc.New(doc.ImageBlock(doc.ImageRef{Handle: "bad"}))
	lines := layout.NewEngine(d).Layout(10)
	frame := NewCompositor(style.DefaultTheme()).Paint(viewport.Viewport{Width: 10, Height: 2}, lines)
	if len(frame.Placements) != 0 {
		t.Fatalf("placeholder must not be placed: %+v", frame.Placements)
	}
	if got := frame.Buffer.At(0, 0).Text; got != PlaceholderGlyph {
		t.Fatalf("cell = %q, want placeholder glyph", got)
	}
}

func TestPaintPlacementsNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for iter := 0; iter < 200; iter++ {
		var runs []doc.Run
		for i := rng.Intn(6); i >= 0; i-- {
			runs = append(runs,
				doc.Text(strings.Repeat("w ", rng.Intn(5))),
				doc.Image(doc.ImageRef{
					Handle: doc.ImageHandle(fmt.Sprintf("img%d", i)),
					Width:  1 + rng.Intn(300),
					Height: 1 + rng.Intn(300),
				}))
		}
		d := doc.New(doc.Paragraph(runs...), doc.Bullet(doc.Paragraph(runs...)))
		width := 1 + rng.Intn(50)
		lines := layout.NewEngine(d, layout.WithMaxImageCells(rng.Intn(20), rng.Intn(6))).Layout(width)
		vp := viewport.Viewport{Offset: rng.Intn(len(lines)), Width: width, Height: 1 + rng.Intn(12)}
		frame := NewCompositor(style.DefaultTheme()).Paint(vp, lines)

		if imgplace.AnyOverlap(frame.Placements) {
			t.Fatalf("overlapping placements: %+v", frame.Placements)
		}
		for i, p := range frame.Placements {
			if p.Col < 0 || p.Row < 0 || p.Col+p.Cols > vp.Width || p.Row+p.Rows > vp.Height {
				t.Fatalf("placement outside viewport: %+v in %+v", p, vp)
			}
			if i > 0 {
				q := frame.Placements[i-1]
				if q.Row > p.Row || (q.Row == p.Row && q.Col > p.Col) {
					t.Fatalf("placements out of order: %+v before %+v", q, p)
				}
			}
		}
	}
}
