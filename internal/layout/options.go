package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/style"
	"github.com/kk-code-lab/mdview/internal/textutil"
)

// Overflow selects how code lines wider than the viewport are shown.
type Overflow int

const (
	// OverflowClip cuts long code lines and marks the cut with an ellipsis.
	OverflowClip Overflow = iota
	// OverflowScroll keeps long code lines whole; the viewport scrolls them
	// horizontally.
	OverflowScroll
)

func (o Overflow) String() string {
	if o == OverflowScroll {
		return "scroll"
	}
	return "clip"
}

// ParseOverflow parses "clip" or "scroll".
func ParseOverflow(s string) (Overflow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clip":
		return OverflowClip, nil
	case "scroll":
		return OverflowScroll, nil
	default:
		return OverflowClip, fmt.Errorf("unknown code overflow policy %q", s)
	}
}

const (
	// DefaultListIndent is the minimum prefix width of list items.
	DefaultListIndent = 2
	// DefaultMaxImageRows bounds image height when nothing else is configured.
	DefaultMaxImageRows = 24
)

// Options configure an Engine.
type Options struct {
	Theme style.Theme
	// MaxImageCols and MaxImageRows bound image spans in cells. Zero means
	// bounded only by the available width (columns) or unbounded (rows).
	MaxImageCols int
	MaxImageRows int
	CellSize     imgplace.Size
	CodeOverflow Overflow
	TabWidth     int
	ListIndent   int
	// ShowLinkTargets appends " (target)" after link text, for terminals
	// without hyperlink support.
	ShowLinkTargets bool
	Logger          *log.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Theme:        style.DefaultTheme(),
		MaxImageRows: DefaultMaxImageRows,
		CellSize:     imgplace.DefaultCellSize,
		CodeOverflow: OverflowClip,
		TabWidth:     textutil.DefaultTabWidth,
		ListIndent:   DefaultListIndent,
		Logger:       log.New(io.Discard),
	}
}

// Option mutates Options.
type Option func(*Options)

func WithTheme(t style.Theme) Option {
	return func(o *Options) { o.Theme = t }
}

// WithMaxImageCells sets the image downscale bounds.
func WithMaxImageCells(cols, rows int) Option {
	return func(o *Options) {
		o.MaxImageCols = cols
		o.MaxImageRows = rows
	}
}

func WithCellSize(size imgplace.Size) Option {
	return func(o *Options) { o.CellSize = size }
}

func WithCodeOverflow(p Overflow) Option {
	return func(o *Options) { o.CodeOverflow = p }
}

func WithTabWidth(n int) Option {
	return func(o *Options) { o.TabWidth = n }
}

func WithListIndent(n int) Option {
	return func(o *Options) { o.ListIndent = n }
}

func WithShowLinkTargets(show bool) Option {
	return func(o *Options) { o.ShowLinkTargets = show }
}

// WithLogger routes recovered conditions to l.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func (o *Options) normalize() {
	if o.TabWidth <= 0 {
		o.TabWidth = textutil.DefaultTabWidth
	}
	if o.ListIndent <= 0 {
		o.ListIndent = DefaultListIndent
	}
	if !o.CellSize.Valid() {
		o.CellSize = imgplace.DefaultCellSize
	}
	if o.MaxImageCols < 0 {
		o.MaxImageCols = 0
	}
	if o.MaxImageRows < 0 {
		o.MaxImageRows = 0
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}
