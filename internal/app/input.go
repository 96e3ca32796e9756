package app

import "github.com/gdamore/tcell/v2"

const wheelLines = 3

// keyAction converts a key press into an action; nil means the key is unbound.
func keyAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return QuitAction{}
	case tcell.KeyDown, tcell.KeyEnter, tcell.KeyCtrlN, tcell.KeyCtrlE:
		return ScrollLinesAction{Lines: 1}
	case tcell.KeyUp, tcell.KeyCtrlP, tcell.KeyCtrlY:
		return ScrollLinesAction{Lines: -1}
	case tcell.KeyPgDn, tcell.KeyCtrlF:
		return ScrollPagesAction{Pages: 1}
	case tcell.KeyPgUp, tcell.KeyCtrlB:
		return ScrollPagesAction{Pages: -1}
	case tcell.KeyCtrlD:
		return ScrollHalfAction{Direction: 1}
	case tcell.KeyCtrlU:
		return ScrollHalfAction{Direction: -1}
	case tcell.KeyHome:
		return TopAction{}
	case tcell.KeyEnd:
		return BottomAction{}
	case tcell.KeyLeft:
		return ScrollColumnsAction{Columns: -columnStep}
	case tcell.KeyRight:
		return ScrollColumnsAction{Columns: columnStep}
	case tcell.KeyCtrlL:
		return RedrawAction{}
	case tcell.KeyCtrlZ:
		return SuspendAction{}
	case tcell.KeyRune:
		return runeAction(ev.Rune())
	}
	return nil
}

func runeAction(r rune) Action {
	switch r {
	case 'q', 'Q':
		return QuitAction{}
	case 'j':
		return ScrollLinesAction{Lines: 1}
	case 'k':
		return ScrollLinesAction{Lines: -1}
	case ' ', 'f':
		return ScrollPagesAction{Pages: 1}
	case 'b':
		return ScrollPagesAction{Pages: -1}
	case 'd':
		return ScrollHalfAction{Direction: 1}
	case 'u':
		return ScrollHalfAction{Direction: -1}
	case 'g':
		return TopAction{}
	case 'G':
		return BottomAction{}
	case 'h':
		return ScrollColumnsAction{Columns: -columnStep}
	case 'l':
		return ScrollColumnsAction{Columns: columnStep}
	case 'r':
		return ReloadAction{}
	case 'e':
		return OpenEditorAction{}
	}
	if r >= '0' && r <= '9' {
		return ScrollFractionAction{Fraction: float64(r-'0') / 10}
	}
	return nil
}

// mouseAction maps the wheel to scrolling; clicks are ignored.
func mouseAction(ev *tcell.EventMouse) Action {
	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		if ev.Modifiers()&tcell.ModShift != 0 {
			return ScrollColumnsAction{Columns: -columnStep}
		}
		return ScrollLinesAction{Lines: -wheelLines}
	case buttons&tcell.WheelDown != 0:
		if ev.Modifiers()&tcell.ModShift != 0 {
			return ScrollColumnsAction{Columns: columnStep}
		}
		return ScrollLinesAction{Lines: wheelLines}
	case buttons&tcell.WheelLeft != 0:
		return ScrollColumnsAction{Columns: -columnStep}
	case buttons&tcell.WheelRight != 0:
		return ScrollColumnsAction{Columns: columnStep}
	}
	return nil
}
