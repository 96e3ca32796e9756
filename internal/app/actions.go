package app

import "fmt"

// Action is a user or system request handled by the event loop.
type Action interface{}

type (
	ScrollLinesAction    struct{ Lines int }
	ScrollPagesAction    struct{ Pages int }
	ScrollHalfAction     struct{ Direction int }
	ScrollColumnsAction  struct{ Columns int }
	ScrollFractionAction struct{ Fraction float64 }
	TopAction            struct{}
	BottomAction         struct{}
	ResizeAction         struct{ Width, Height int }
	ReloadAction         struct{}
	RedrawAction         struct{}
	OpenEditorAction     struct{}
	SuspendAction        struct{}
	QuitAction           struct{}
)

// columnStep is how far one horizontal scroll moves code lines.
const columnStep = 4

// handleAction applies action and reports whether a repaint is needed.
func (app *Application) handleAction(action Action) bool {
	vp := app.view.Viewport()
	switch a := action.(type) {
	case nil:
		return false
	case QuitAction:
		app.shouldQuit = true
		return false
	case ScrollLinesAction:
		app.view.ScrollBy(a.Lines)
	case ScrollPagesAction:
		app.view.ScrollBy(a.Pages * max(1, vp.Height-1))
	case ScrollHalfAction:
		app.view.ScrollBy(a.Direction * max(1, vp.Height/2))
	case ScrollColumnsAction:
		app.view.ScrollHorizontal(a.Columns)
	case ScrollFractionAction:
		app.view.ScrollToFraction(a.Fraction)
	case TopAction:
		app.view.ScrollTo(0)
	case BottomAction:
		app.view.ScrollTo(app.view.Total())
	case ResizeAction:
		resized := app.refreshCellSize()
		app.view.Resize(a.Width, contentHeight(a.Height))
		if resized {
			app.view.Reload()
		}
		app.screen.Sync()
		if app.gfx != nil {
			app.gfx.Invalidate()
		}
	case ReloadAction:
		app.reload()
	case RedrawAction:
		app.screen.Sync()
		if app.gfx != nil {
			app.gfx.Invalidate()
		}
	case OpenEditorAction:
		err := app.openInEditor()
		app.reload()
		if err != nil {
			app.lastErr = err
		}
	case SuspendAction:
		app.suspendToShell()
		app.resumeAfterStop()
	default:
		app.log.Debug("unhandled action", "action", fmt.Sprintf("%T", action))
		return false
	}
	return true
}

// reload re-reads the document, keeping the scroll position where possible.
func (app *Application) reload() {
	d, err := app.opts.Load()
	if err != nil {
		app.lastErr = err
		app.log.Warn("reload failed", "path", app.opts.Path, "err", err)
		return
	}
	app.lastErr = nil
	app.engine.Load(d)
	app.view.Reload()
	app.comp.Reset()
	if app.gfx != nil {
		if err := app.gfx.Clear(); err != nil {
			app.log.Debug("clearing images failed", "err", err)
		}
	}
	app.log.Debug("document reloaded", "path", app.opts.Path, "lines", app.view.Total())
}

func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

// refreshCellSize re-reads the cell pixel size and reports whether it
// changed. Images are then re-sized by the next layout.
func (app *Application) refreshCellSize() bool {
	if app.opts.CellSize == nil {
		return false
	}
	cell, ok := app.opts.CellSize()
	if !ok || !app.engine.SetCellSize(cell) {
		return false
	}
	if app.gfx != nil {
		app.gfx.SetCellSize(cell)
	}
	app.log.Debug("cell size changed", "width", cell.W, "height", cell.H)
	return true
}
