package app

import (
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
)

// Run draws the first frame and processes input, watcher and signal events
// until a quit action arrives. Consecutive events are coalesced into one
// repaint.
func (app *Application) Run() {
	app.render()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go app.pollEvents(events, done)

	resumed := app.notifyResume()
	if resumed != nil {
		defer signal.Stop(resumed)
	}

	for !app.shouldQuit {
		var dirty bool
		select {
		case ev := <-events:
			dirty = app.handleEvent(ev)
		case action := <-app.actionCh:
			dirty = app.handleAction(action)
		case <-resumed:
			dirty = app.resumeAfterStop()
		}
		if app.processActions() {
			dirty = true
		}
		if dirty && !app.shouldQuit {
			app.render()
		}
	}
}

// pollEvents forwards screen events until the screen is finalised or done
// is closed.
func (app *Application) pollEvents(out chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := app.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

// notifyResume subscribes to the job-control continue signal. The returned
// channel is nil where the platform has none, which blocks forever in select.
func (app *Application) notifyResume() chan os.Signal {
	sigs := contSignals()
	if len(sigs) == 0 {
		return nil
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	return ch
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return app.handleAction(keyAction(ev))
	case *tcell.EventMouse:
		return app.handleAction(mouseAction(ev))
	case *tcell.EventResize:
		w, h := ev.Size()
		return app.handleAction(ResizeAction{Width: w, Height: h})
	case *tcell.EventInterrupt:
		return true
	}
	return false
}
