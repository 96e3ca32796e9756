package style

import (
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/mdview/internal/doc"
)

// Theme defines the styles used for each markdown element.
type Theme struct {
	Text        Set
	Headings    [6]Set
	Emphasis    Set
	Strong      Set
	Strike      Set
	Code        Set
	Link        Set
	ImageLink   Set
	CodeBlock   Set
	CodeBorder  Set
	Rule        Set
	QuoteMarker Set
	ListMarker  Set
	TableBorder Set
	Truncation  Set
	Placeholder Set
}

// DefaultTheme returns the built-in colour scheme: yellow code, blue links and
// headings, magenta image links, green rules and code frames.
func DefaultTheme() Theme {
	heading := Set{Bold: true, Fg: tcell.ColorNavy}
	return Theme{
		Headings: [6]Set{
			{Bold: true, Underline: true, Fg: tcell.ColorNavy},
			heading,
			heading,
			heading,
			heading,
			heading,
		},
		Emphasis:    Set{Italic: true},
		Strong:      Set{Bold: true},
		Strike:      Set{Strike: true},
		Code:        Set{Fg: tcell.ColorOlive},
		Link:        Set{Fg: tcell.ColorNavy, Underline: true},
		ImageLink:   Set{Fg: tcell.ColorPurple},
		CodeBlock:   Set{Fg: tcell.ColorOlive},
		CodeBorder:  Set{Fg: tcell.ColorGreen},
		Rule:        Set{Fg: tcell.ColorGreen},
		QuoteMarker: Set{Fg: tcell.ColorGreen},
		ListMarker:  Set{Bold: true},
		TableBorder: Set{Dim: true},
		Truncation:  Set{Fg: tcell.ColorGreen, Bold: true},
		Placeholder: Set{Fg: tcell.ColorPurple},
	}
}

// Heading returns the style for a heading level; out-of-range levels clamp.
func (t Theme) Heading(level int) Set {
	if level < 1 {
		level = 1
	}
	if level > len(t.Headings) {
		level = len(t.Headings)
	}
	return t.Headings[level-1]
}

// Span maps a semantic span to its attribute set. Unknown spans map to the
// zero Set. Link spans carry their target.
func (t Theme) Span(sp doc.Span) Set {
	switch sp.Kind {
	case doc.SpanEmphasis:
		return t.Emphasis
	case doc.SpanStrong:
		return t.Strong
	case doc.SpanStrike:
		return t.Strike
	case doc.SpanCode:
		return t.Code
	case doc.SpanLink:
		s := t.Link
		s.Link = sp.Target
		return s
	case doc.SpanImageLink:
		s := t.ImageLink
		s.Link = sp.Target
		return s
	default:
		return Set{}
	}
}

// Chain maps spans to sets, preserving order, with base prepended.
func (t Theme) Chain(base Set, spans []doc.Span) []Set {
	out := make([]Set, 0, len(spans)+1)
	out = append(out, base)
	for _, sp := range spans {
		out = append(out, t.Span(sp))
	}
	return out
}

// Roles lists the colour roles accepted by SetColor.
var Roles = []string{
	"text", "heading", "emphasis", "strong", "code", "link", "image_link",
	"code_block", "code_border", "rule", "quote", "list_marker", "table_border",
}

// SetColor overrides the foreground colour of a role. It reports false for
// unknown roles. "heading" applies to every level.
func (t *Theme) SetColor(role string, c tcell.Color) bool {
	switch role {
	case "text":
		t.Text.Fg = c
	case "heading":
		for i := range t.Headings {
			t.Headings[i].Fg = c
		}
	case "emphasis":
		t.Emphasis.Fg = c
	case "strong":
		t.Strong.Fg = c
	case "code":
		t.Code.Fg = c
	case "link":
		t.Link.Fg = c
	case "image_link":
		t.ImageLink.Fg = c
		t.Placeholder.Fg = c
	case "code_block":
		t.CodeBlock.Fg = c
	case "code_border":
		t.CodeBorder.Fg = c
		t.Truncation.Fg = c
	case "rule":
		t.Rule.Fg = c
	case "quote":
		t.QuoteMarker.Fg = c
	case "list_marker":
		t.ListMarker.Fg = c
	case "table_border":
		t.TableBorder.Fg = c
	default:
		return false
	}
	return true
}
