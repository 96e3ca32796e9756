package layout

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/imgplace"
)

// Engine lays out one loaded document. It owns the document for as long as
// it is loaded and memoizes per-block lines in its LineCache. An Engine is
// not safe for concurrent use.
type Engine struct {
	opts   Options
	doc    *doc.Document
	cache  *LineCache
	blocks blockLayouter
	diag   Diagnostics
	log    *log.Logger
}

// NewEngine returns an engine for d.
func NewEngine(d *doc.Document, opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.normalize()

	e := &Engine{
		opts:  o,
		cache: NewLineCache(DefaultCacheWidths),
		log:   o.Logger,
	}
	e.blocks = blockLayouter{opts: o, report: e.report}
	e.cache.onInconsistency = func(id doc.BlockID, width int) {
		e.report(fmt.Errorf("%w: block %d at width %d", ErrCacheInconsistency, id, width))
	}
	e.Load(d)
	return e
}

// Load replaces the document and clears the cache.
func (e *Engine) Load(d *doc.Document) {
	if d == nil {
		d = doc.New()
	}
	e.doc = d
	e.cache.Clear()
}

// Document returns the loaded document.
func (e *Engine) Document() *doc.Document {
	return e.doc
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Cache exposes the line cache.
func (e *Engine) Cache() *LineCache {
	return e.cache
}

// Diagnostics returns counters of recovered conditions.
func (e *Engine) Diagnostics() Diagnostics {
	return e.diag
}

// Layout returns the logical lines of the whole document at width. Widths
// below one are laid out at one. A blank line separates top-level blocks,
// except between consecutive list items. Seq numbers the returned lines from
// zero.
func (e *Engine) Layout(width int) []Line {
	if width < 1 {
		e.report(fmt.Errorf("%w: %d", ErrZeroWidth, width))
		width = 1
	}

	var out []Line
	var prev *doc.Block
	for _, b := range e.doc.Blocks {
		if prev != nil && separated(prev, b, false) {
			out = append(out, Line{Block: b.ID, Row: SeparatorRow})
		}
		out = append(out, e.blockLines(b, width)...)
		prev = b
	}
	for i := range out {
		out[i].Seq = i
	}
	return out
}

// SetCellSize changes the pixel size of a terminal cell used to size images.
// A different valid size clears the cache and reports true.
func (e *Engine) SetCellSize(cell imgplace.Size) bool {
	if !cell.Valid() || cell == e.opts.CellSize {
		return false
	}
	e.opts.CellSize = cell
	e.blocks.opts.CellSize = cell
	e.cache.Clear()
	return true
}

func (e *Engine) blockLines(b *doc.Block, width int) []Line {
	cached := e.cache.GetOrCompute(b.ID, width, func() []Line {
		e.diag.BlocksLaidOut++
		lines := e.blocks.layout(b, blockCtx{width: width})
		for i := range lines {
			lines[i].Block = b.ID
			lines[i].Row = i
		}
		return lines
	})
	out := make([]Line, len(cached))
	copy(out, cached)
	return out
}

func (e *Engine) report(err error) {
	switch {
	case errors.Is(err, ErrZeroWidth):
		e.diag.ZeroWidth++
	case errors.Is(err, imgplace.ErrDegenerateSize):
		e.diag.DegenerateImages++
	case errors.Is(err, ErrCacheInconsistency):
		e.diag.CacheInconsistencies++
	}
	e.log.Debug("layout recovered", "err", err)
}
