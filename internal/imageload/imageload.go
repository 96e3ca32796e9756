// Package imageload decodes images referenced from markdown documents and
// keeps them addressable by handle.
package imageload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/kk-code-lab/mdview/internal/doc"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image size limits to prevent memory exhaustion.
const (
	MaxImageWidth  = 8192
	MaxImageHeight = 8192
	MaxImageBytes  = 64 * 1024 * 1024 // decoded RGBA
)

var (
	ErrTooLarge = errors.New("image too large")
	ErrRemote   = errors.New("remote images are not loaded")
)

// Decode reads one image, checking the header against the size limits
// before decoding pixels. SVG documents are rasterised at their own size.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) && isSVG(data) {
			return decodeSVG(data)
		}
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}
	if err := checkSize(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if err := checkSize(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	return img, nil
}

func checkSize(w, h int) error {
	if w > MaxImageWidth || h > MaxImageHeight {
		return fmt.Errorf("%w: %dx%d (max %dx%d)", ErrTooLarge, w, h, MaxImageWidth, MaxImageHeight)
	}
	if int64(w)*int64(h)*4 > MaxImageBytes {
		return fmt.Errorf("%w: %d decoded bytes (max %d)", ErrTooLarge, int64(w)*int64(h)*4, MaxImageBytes)
	}
	return nil
}

// Store holds decoded images keyed by handle. It is safe for concurrent use.
type Store struct {
	base string
	log  *log.Logger

	mu     sync.Mutex
	images map[doc.ImageHandle]image.Image
	failed map[string]error
}

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore resolves relative image paths against base.
func NewStore(base string, opts ...Option) *Store {
	s := &Store{
		base:   base,
		log:    log.New(io.Discard),
		images: make(map[doc.ImageHandle]image.Image),
		failed: make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve maps a markdown image destination to a handle. Remote URLs are
// rejected.
func (s *Store) Resolve(dest string) (doc.ImageHandle, error) {
	dest = strings.TrimSpace(dest)
	lower := strings.ToLower(dest)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return "", fmt.Errorf("%w: %s", ErrRemote, dest)
	}
	path := strings.TrimPrefix(dest, "file://")
	if path == "" {
		return "", fmt.Errorf("empty image path")
	}
	if !filepath.IsAbs(path) && s.base != "" {
		path = filepath.Join(s.base, path)
	}
	cleaned := filepath.Clean(path)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	return doc.ImageHandle(cleaned), nil
}

// Load decodes the image at dest, or returns the cached result. Failures are
// cached too so a broken reference is not re-read on every reload.
func (s *Store) Load(dest, alt string) (doc.ImageRef, error) {
	handle, err := s.Resolve(dest)
	if err != nil {
		return doc.ImageRef{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failed[string(handle)]; ok {
		return doc.ImageRef{}, err
	}
	img, ok := s.images[handle]
	if !ok {
		img, err = loadFile(string(handle))
		if err != nil {
			s.failed[string(handle)] = err
			s.log.Debug("image load failed", "handle", handle, "err", err)
			return doc.ImageRef{}, err
		}
		s.images[handle] = img
	}
	b := img.Bounds()
	return doc.ImageRef{Handle: handle, Width: b.Dx(), Height: b.Dy(), Alt: alt}, nil
}

func loadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Get returns a decoded image.
func (s *Store) Get(h doc.ImageHandle) (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[h]
	return img, ok
}

// Handles lists the decoded images in sorted order.
func (s *Store) Handles() []doc.ImageHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]doc.ImageHandle, 0, len(s.images))
	for h := range s.images {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Forget drops everything, so files edited on disk are decoded again.
func (s *Store) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.images)
	clear(s.failed)
}
