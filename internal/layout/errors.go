package layout

import "errors"

var (
	// ErrZeroWidth is recorded when layout is requested for a width below one
	// cell. Layout proceeds at width one.
	ErrZeroWidth = errors.New("layout: width below one cell")
	// ErrCacheInconsistency is recorded when a cached entry does not match the
	// width it is stored under. The entry is dropped and recomputed.
	ErrCacheInconsistency = errors.New("layout: cache entry width mismatch")
)

// Diagnostics counts conditions the engine recovered from.
type Diagnostics struct {
	ZeroWidth            int
	DegenerateImages     int
	CacheInconsistencies int
	// BlocksLaidOut counts cache misses, i.e. blocks actually laid out.
	BlocksLaidOut int
}
