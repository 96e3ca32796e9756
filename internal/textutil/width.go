package textutil

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// ClusterWidth reports how many cells a grapheme cluster occupies. Every
// non-empty cluster takes at least one cell.
func ClusterWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	var w int
	if r, size := utf8.DecodeRuneInString(cluster); size == len(cluster) {
		w = runewidth.RuneWidth(r)
	} else {
		w = uniseg.StringWidth(cluster)
	}
	if w < 1 {
		w = 1
	}
	return w
}

// EachCluster calls fn for every grapheme cluster in text with its cell width.
// Iteration stops when fn returns false.
func EachCluster(text string, fn func(cluster string, width int) bool) {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cluster := g.Str()
		if !fn(cluster, ClusterWidth(cluster)) {
			return
		}
	}
}

// DisplayWidth reports the printable width of text accounting for wide runes
// and multi-rune grapheme clusters.
func DisplayWidth(text string) int {
	width := 0
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			EachCluster(text, func(_ string, w int) bool {
				width += w
				return true
			})
			return width
		}
	}
	return len(text)
}

// SplitAtWidth cuts text after as many whole clusters as fit in width cells.
// At least one cluster is taken when text is non-empty so callers always make
// progress, even if that cluster is wider than width.
func SplitAtWidth(text string, width int) (head, rest string, headWidth int) {
	if text == "" {
		return "", "", 0
	}
	cut := 0
	EachCluster(text, func(cluster string, w int) bool {
		if cut > 0 && headWidth+w > width {
			return false
		}
		cut += len(cluster)
		headWidth += w
		return headWidth < width
	})
	return text[:cut], text[cut:], headWidth
}

// TruncateToWidth clips text to width cells, ending with tail when clipping
// happened. The result never exceeds width cells.
func TruncateToWidth(text string, width int, tail string) (string, bool) {
	if width <= 0 {
		return "", text != ""
	}
	if DisplayWidth(text) <= width {
		return text, false
	}
	tailWidth := DisplayWidth(tail)
	if tailWidth >= width {
		head, _, _ := SplitAtWidth(tail, width)
		return head, true
	}
	var b strings.Builder
	used := 0
	EachCluster(text, func(cluster string, w int) bool {
		if used+w > width-tailWidth {
			return false
		}
		b.WriteString(cluster)
		used += w
		return true
	})
	b.WriteString(tail)
	return b.String(), true
}

// SkipWidth drops the leading cells of text. A wide cluster straddling the
// cut is replaced by spaces so column positions are preserved.
func SkipWidth(text string, cells int) string {
	if cells <= 0 {
		return text
	}
	skipped := 0
	offset := 0
	pad := 0
	EachCluster(text, func(cluster string, w int) bool {
		if skipped >= cells {
			return false
		}
		offset += len(cluster)
		skipped += w
		if skipped > cells {
			pad = skipped - cells
		}
		return true
	})
	return strings.Repeat(" ", pad) + text[offset:]
}
