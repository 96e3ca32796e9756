// Package imgplace sizes images in terminal cells and tracks which images are
// on screen between paints.
package imgplace

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateSize is reported for images with a zero pixel dimension. The
// image is then given a 1x1 placeholder cell.
var ErrDegenerateSize = errors.New("imgplace: degenerate intrinsic size")

// Size is a pixel size.
type Size struct {
	W int
	H int
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0
}

// DefaultCellSize is assumed when the terminal does not report its cell size.
var DefaultCellSize = Size{W: 10, H: 20}

// Span is a size in terminal cells.
type Span struct {
	Cols int
	Rows int
}

// Placeholder is the span reserved for images that cannot be sized.
var Placeholder = Span{Cols: 1, Rows: 1}

// Allocate computes the cell span an image reserves. The image is scaled down,
// preserving its aspect ratio, until it fits maxCols x maxRows; it is never
// scaled up. A bound of zero or less means unbounded. The result is at least
// one cell in each direction.
func Allocate(intrinsic, cell Size, maxCols, maxRows int) (Span, error) {
	if !intrinsic.Valid() {
		return Placeholder, fmt.Errorf("%w: %dx%d", ErrDegenerateSize, intrinsic.W, intrinsic.H)
	}
	if !cell.Valid() {
		cell = DefaultCellSize
	}

	scale := 1.0
	if maxCols > 0 {
		scale = math.Min(scale, float64(maxCols*cell.W)/float64(intrinsic.W))
	}
	if maxRows > 0 {
		scale = math.Min(scale, float64(maxRows*cell.H)/float64(intrinsic.H))
	}

	span := Span{
		Cols: cellsFor(float64(intrinsic.W)*scale, cell.W),
		Rows: cellsFor(float64(intrinsic.H)*scale, cell.H),
	}
	if maxCols > 0 && span.Cols > maxCols {
		span.Cols = maxCols
	}
	if maxRows > 0 && span.Rows > maxRows {
		span.Rows = maxRows
	}
	return span, nil
}

// PixelSize is the pixel box a span covers for the given cell size.
func (s Span) PixelSize(cell Size) Size {
	if !cell.Valid() {
		cell = DefaultCellSize
	}
	return Size{W: s.Cols * cell.W, H: s.Rows * cell.H}
}

func cellsFor(pixels float64, cell int) int {
	n := int(math.Ceil(pixels/float64(cell) - 1e-9))
	if n < 1 {
		n = 1
	}
	return n
}
