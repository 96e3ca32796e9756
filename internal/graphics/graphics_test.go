package graphics

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/termcap"
)

type mapSource map[doc.ImageHandle]image.Image

func (m mapSource) Get(h doc.ImageHandle) (image.Image, bool) {
	img, ok := m[h]
	return img, ok
}

func testSource() mapSource {
	img := image.NewRGBA(image.Rect(0, 0, 40, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	big := image.NewRGBA(image.Rect(0, 0, 400, 800))
	return mapSource{"pic": img, "big": big}
}

var cell = imgplace.Size{W: 10, H: 20}

func placement(handle doc.ImageHandle, col, row int) imgplace.Placement {
	span := imgplace.Span{Cols: 4, Rows: 4}
	return imgplace.Placement{Handle: handle, Col: col, Row: row, Cols: 4, Rows: 4, Span: span}
}

func TestKittyDrawTransmitsOnce(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, termcap.ProtocolKitty, testSource(), cell)

	ps := []imgplace.Placement{placement("pic", 5, 2)}
	if err := w.Draw(ps, nil, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"\x1b_Ga=d,d=a,q=2\x1b\\",
		"\x1b[3;6H",
		"\x1b_Ga=t,f=32,s=40,v=80,i=1,q=2",
		"\x1b_Ga=p,i=1,x=0,y=0,w=40,h=80,C=1,q=2\x1b\\",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%q", want, got)
		}
	}
	if !strings.HasPrefix(got[strings.Index(got, "\x1b[3;6H")-2:], "\x1b7") {
		t.Fatalf("cursor not saved before positioning: %q", got)
	}

	out.Reset()
	if err := w.Draw(ps, nil, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unchanged frame should emit nothing, got %q", out.String())
	}

	out.Reset()
	moved := []imgplace.Placement{placement("pic", 5, 1)}
	if err := w.Draw(moved, nil, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if strings.Contains(out.String(), "a=t,") {
		t.Fatalf("image data re-transmitted on scroll: %q", out.String())
	}
	if !strings.Contains(out.String(), "\x1b[2;6H") {
		t.Fatalf("moved placement not positioned: %q", out.String())
	}
}

func TestKittyClippedPlacementCropsSource(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, termcap.ProtocolKitty, testSource(), cell)
	p := placement("pic", 0, 0)
	p.ClipTop = 1
	p.Rows = 3
	if err := w.Draw([]imgplace.Placement{p}, nil, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if !strings.Contains(out.String(), "x=0,y=20,w=40,h=60") {
		t.Fatalf("clip not applied: %q", out.String())
	}
}

func TestKittyEvictionFreesData(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, termcap.ProtocolKitty, testSource(), cell)
	if err := w.Draw([]imgplace.Placement{placement("pic", 0, 0)}, nil, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	out.Reset()
	if err := w.Draw(nil, []doc.ImageHandle{"pic"}, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if !strings.Contains(out.String(), "\x1b_Ga=d,d=I,i=1,q=2\x1b\\") {
		t.Fatalf("eviction not emitted: %q", out.String())
	}
	out.Reset()
	if err := w.Draw([]imgplace.Placement{placement("pic", 0, 0)}, nil, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if !strings.Contains(out.String(), "a=t,f=32,s=40,v=80,i=2") {
		t.Fatalf("evicted image should be re-uploaded under a new id: %q", out.String())
	}
}

func TestDownscaleKeepsAspect(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, termcap.ProtocolKitty, testSource(), cell)
	if err := w.Draw([]imgplace.Placement{placement("big", 0, 0)}, nil, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if !strings.Contains(out.String(), "s=40,v=80,") {
		t.Fatalf("400x800 should shrink into a 40x80 box: %q", out.String())
	}
}

func TestITerm2Draw(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, termcap.ProtocolITerm2, testSource(), cell)
	if err := w.Draw([]imgplace.Placement{placement("pic", 1, 1)}, nil, 2, 3); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "\x1b[5;4H") {
		t.Fatalf("origin offset not applied: %q", got)
	}
	if !strings.Contains(got, "\x1b]1337;File=inline=1;") || !strings.Contains(got, "width=40px;height=80px") {
		t.Fatalf("iTerm2 escape missing: %q", got)
	}
	if !strings.HasSuffix(got, "\x1b8") {
		t.Fatalf("cursor not restored: %q", got)
	}
}

func TestNoProtocolIsSilent(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, termcap.ProtocolNone, testSource(), cell)
	if err := w.Draw([]imgplace.Placement{placement("pic", 0, 0)}, []doc.ImageHandle{"pic"}, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := w.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestMissingImageIsSkipped(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, termcap.ProtocolKitty, testSource(), cell)
	if err := w.Draw([]imgplace.Placement{placement("gone", 0, 0)}, nil, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if strings.Contains(out.String(), "a=p") {
		t.Fatalf("missing image should not be placed: %q", out.String())
	}
}
