// Package style maps markdown semantics to terminal attribute sets.
package style

import "github.com/gdamore/tcell/v2"

// Set is a combination of terminal attributes. The zero value means "no
// attributes": default colours, no effects, no hyperlink.
type Set struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Dim       bool
	Fg        tcell.Color
	Bg        tcell.Color
	Link      string
}

// IsZero reports whether s carries no attributes.
func (s Set) IsZero() bool {
	return s == Set{}
}

// OnTopOf puts s on top of other: colours and link fall back to other when s
// leaves them unset, effects accumulate.
func (s Set) OnTopOf(other Set) Set {
	out := other
	if s.Fg != tcell.ColorDefault {
		out.Fg = s.Fg
	}
	if s.Bg != tcell.ColorDefault {
		out.Bg = s.Bg
	}
	if s.Link != "" {
		out.Link = s.Link
	}
	out.Bold = out.Bold || s.Bold
	out.Italic = out.Italic || s.Italic
	out.Underline = out.Underline || s.Underline
	out.Strike = out.Strike || s.Strike
	out.Dim = out.Dim || s.Dim
	return out
}

// Resolve folds an ancestor chain, outermost first, into the effective style.
// The innermost non-default colour or link wins; boolean effects are OR-ed.
func Resolve(chain ...Set) Set {
	var out Set
	for _, s := range chain {
		out = s.OnTopOf(out)
	}
	return out
}

// Tcell converts the set into a tcell style.
func (s Set) Tcell() tcell.Style {
	st := tcell.StyleDefault.
		Foreground(s.Fg).
		Background(s.Bg).
		Bold(s.Bold).
		Italic(s.Italic).
		Underline(s.Underline).
		StrikeThrough(s.Strike).
		Dim(s.Dim)
	if s.Link != "" {
		st = st.Url(s.Link)
	}
	return st
}
