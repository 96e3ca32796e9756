package textutil

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

var formattingRuneLabels = map[rune]string{
	0x061C: "⟪ALM⟫",
	0x200B: "⟪ZWSP⟫",
	0x200E: "⟪LRM⟫",
	0x200F: "⟪RLM⟫",
	0x202A: "⟪LRE⟫",
	0x202B: "⟪RLE⟫",
	0x202C: "⟪PDF⟫",
	0x202D: "⟪LRO⟫",
	0x202E: "⟪RLO⟫",
	0x2066: "⟪LRI⟫",
	0x2067: "⟪RLI⟫",
	0x2068: "⟪FSI⟫",
	0x2069: "⟪PDI⟫",
	0xFEFF: "⟪BOM⟫",
}

// Sanitize makes document text safe to place into terminal cells: escape
// sequences are removed, other control characters become '?', newlines and
// tabs become spaces, and bidi overrides are shown as visible labels.
// Zero-width joiners are kept because emoji sequences depend on them.
func Sanitize(text string) string {
	clean := true
	for _, r := range text {
		if needsSanitizing(r) {
			clean = false
			break
		}
	}
	if clean {
		return text
	}
	if strings.ContainsRune(text, 0x1b) {
		text = ansi.Strip(text)
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if label, ok := formattingRuneLabels[r]; ok {
			b.WriteString(label)
			continue
		}
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeCode is Sanitize for code lines: tabs survive so they can be
// expanded against the code block's tab stops.
func SanitizeCode(line string) string {
	if !strings.ContainsRune(line, '\t') {
		return Sanitize(line)
	}
	parts := strings.Split(line, "\t")
	for i, p := range parts {
		parts[i] = Sanitize(p)
	}
	return strings.Join(parts, "\t")
}

func needsSanitizing(r rune) bool {
	if _, ok := formattingRuneLabels[r]; ok {
		return true
	}
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0)
}
