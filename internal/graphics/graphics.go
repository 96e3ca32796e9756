// Package graphics draws image placements with terminal graphics protocols.
package graphics

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/termcap"
	"github.com/nfnt/resize"
)

const kittyChunk = 4096

// Source returns decoded images by handle.
type Source interface {
	Get(h doc.ImageHandle) (image.Image, bool)
}

// Writer emits protocol escapes for the placements of each painted frame.
// It is not safe for concurrent use.
type Writer struct {
	out   io.Writer
	proto termcap.Protocol
	src   Source
	cell  imgplace.Size
	log   *log.Logger

	nextID  uint32
	uploads map[upload]uint32
	scaled  map[upload]*image.RGBA
	last    []imgplace.Placement
	drawn   bool
}

type upload struct {
	handle doc.ImageHandle
	size   imgplace.Size
}

type Option func(*Writer)

func WithLogger(l *log.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}

// New returns a writer for proto. With ProtocolNone every call is a no-op.
func New(out io.Writer, proto termcap.Protocol, src Source, cell imgplace.Size, opts ...Option) *Writer {
	if !cell.Valid() {
		cell = imgplace.DefaultCellSize
	}
	w := &Writer{
		out:     out,
		proto:   proto,
		src:     src,
		cell:    cell,
		log:     log.New(io.Discard),
		uploads: make(map[upload]uint32),
		scaled:  make(map[upload]*image.RGBA),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enabled reports whether images are drawn at all.
func (w *Writer) Enabled() bool {
	return w.proto != termcap.ProtocolNone
}

// SetCellSize changes the pixel size of a cell; cached scaled images are
// dropped.
func (w *Writer) SetCellSize(cell imgplace.Size) {
	if !cell.Valid() || cell == w.cell {
		return
	}
	w.cell = cell
	clear(w.scaled)
	w.last = nil
	w.drawn = false
}

// Draw places images at their viewport cells, offset by the screen origin.
// Evicted handles release protocol resources. An unchanged placement list
// is not redrawn.
func (w *Writer) Draw(placements []imgplace.Placement, evicted []doc.ImageHandle, originX, originY int) error {
	if !w.Enabled() {
		return nil
	}
	bw := bufio.NewWriter(w.out)
	for _, h := range evicted {
		w.release(bw, h)
	}
	if w.drawn && len(evicted) == 0 && slices.Equal(placements, w.last) {
		return bw.Flush()
	}
	if w.proto == termcap.ProtocolKitty {
		// Remove visible placements but keep transmitted data.
		bw.WriteString("\x1b_Ga=d,d=a,q=2\x1b\\")
	}
	for _, p := range placements {
		if err := w.place(bw, p, originX, originY); err != nil {
			w.log.Debug("image placement failed", "handle", p.Handle, "err", err)
		}
	}
	w.last = slices.Clone(placements)
	w.drawn = true
	return bw.Flush()
}

// Invalidate forces the next Draw to re-emit every placement, for example
// after the screen was cleared.
func (w *Writer) Invalidate() {
	w.drawn = false
}

// Clear removes every image from the terminal and forgets uploads.
func (w *Writer) Clear() error {
	if w.proto == termcap.ProtocolKitty {
		if _, err := io.WriteString(w.out, "\x1b_Ga=d,d=A,q=2\x1b\\"); err != nil {
			return err
		}
	}
	clear(w.uploads)
	clear(w.scaled)
	w.last = nil
	w.drawn = false
	return nil
}

func (w *Writer) release(bw *bufio.Writer, h doc.ImageHandle) {
	for key, id := range w.uploads {
		if key.handle != h {
			continue
		}
		if w.proto == termcap.ProtocolKitty {
			fmt.Fprintf(bw, "\x1b_Ga=d,d=I,i=%d,q=2\x1b\\", id)
		}
		delete(w.uploads, key)
	}
	for key := range w.scaled {
		if key.handle == h {
			delete(w.scaled, key)
		}
	}
}

func (w *Writer) place(bw *bufio.Writer, p imgplace.Placement, originX, originY int) error {
	key := upload{handle: p.Handle, size: p.Span.PixelSize(w.cell)}
	img, err := w.scaledImage(key)
	if err != nil {
		return err
	}
	crop := w.visibleRect(img.Bounds(), p)
	if crop.Empty() {
		return nil
	}

	bw.WriteString(ansi.SaveCursor)
	bw.WriteString(ansi.CursorPosition(originX+p.Col+1, originY+p.Row+1))
	switch w.proto {
	case termcap.ProtocolKitty:
		id, ok := w.uploads[key]
		if !ok {
			w.nextID++
			id = w.nextID
			writeKittyTransmit(bw, id, img)
			w.uploads[key] = id
		}
		fmt.Fprintf(bw, "\x1b_Ga=p,i=%d,x=%d,y=%d,w=%d,h=%d,C=1,q=2\x1b\\",
			id, crop.Min.X, crop.Min.Y, crop.Dx(), crop.Dy())
	case termcap.ProtocolITerm2:
		if err := writeITerm2(bw, img.SubImage(crop)); err != nil {
			bw.WriteString(ansi.RestoreCursor)
			return err
		}
	}
	bw.WriteString(ansi.RestoreCursor)
	return nil
}

// visibleRect is the pixel rectangle of img inside the visible cells of p.
func (w *Writer) visibleRect(b image.Rectangle, p imgplace.Placement) image.Rectangle {
	r := image.Rect(0, p.ClipTop*w.cell.H, p.Cols*w.cell.W, (p.ClipTop+p.Rows)*w.cell.H)
	return r.Add(b.Min).Intersect(b)
}

// scaledImage fits the source into the allocated pixel box, keeping the
// aspect ratio and never upscaling.
func (w *Writer) scaledImage(key upload) (*image.RGBA, error) {
	if img, ok := w.scaled[key]; ok {
		return img, nil
	}
	src, ok := w.src.Get(key.handle)
	if !ok {
		return nil, fmt.Errorf("image %q not loaded", key.handle)
	}
	scaled := resize.Thumbnail(uint(key.size.W), uint(key.size.H), src, resize.Bilinear)
	rgba := toRGBA(scaled)
	w.scaled[key] = rgba
	return rgba, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func writeKittyTransmit(bw *bufio.Writer, id uint32, img *image.RGBA) {
	b := img.Bounds()
	payload := base64.StdEncoding.EncodeToString(img.Pix)
	for i := 0; i < len(payload); i += kittyChunk {
		end := min(i+kittyChunk, len(payload))
		more := 1
		if end >= len(payload) {
			more = 0
		}
		if i == 0 {
			fmt.Fprintf(bw, "\x1b_Ga=t,f=32,s=%d,v=%d,i=%d,q=2,m=%d;%s\x1b\\", b.Dx(), b.Dy(), id, more, payload[i:end])
		} else {
			fmt.Fprintf(bw, "\x1b_Gm=%d;%s\x1b\\", more, payload[i:end])
		}
	}
}

func writeITerm2(bw *bufio.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	b := img.Bounds()
	fmt.Fprintf(bw, "\x1b]1337;File=inline=1;size=%d;width=%dpx;height=%dpx;preserveAspectRatio=0:%s\a",
		buf.Len(), b.Dx(), b.Dy(), base64.StdEncoding.EncodeToString(buf.Bytes()))
	return nil
}
