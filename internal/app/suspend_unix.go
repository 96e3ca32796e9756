//go:build !windows

package app

import (
	"syscall"

	"github.com/gdamore/tcell/v2"
)

func (app *Application) suspendToShell() {
	if app.gfx != nil {
		_ = app.gfx.Clear()
	}
	_ = app.screen.Suspend()
	// Stop only this process, not the whole group.
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
}

func (app *Application) resumeAfterStop() bool {
	if err := app.screen.Resume(); err != nil {
		return false
	}
	app.screen.EnableMouse()
	app.screen.Sync()
	_ = app.screen.PostEvent(tcell.NewEventInterrupt("resume"))
	if w, h := app.screen.Size(); w > 0 && h > 0 {
		app.view.Resize(w, contentHeight(h))
	}
	if app.gfx != nil {
		app.gfx.Invalidate()
	}
	return true
}
