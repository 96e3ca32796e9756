// Package app runs the interactive markdown viewer.
package app

import (
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/graphics"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/layout"
	"github.com/kk-code-lab/mdview/internal/paint"
	"github.com/kk-code-lab/mdview/internal/style"
	"github.com/kk-code-lab/mdview/internal/viewport"
)

// Loader produces the document, for the first paint and for every reload.
type Loader func() (*doc.Document, error)

// Options configures the viewer.
type Options struct {
	// Screen defaults to tcell.NewScreen.
	Screen tcell.Screen
	// Path is the file being viewed. It is watched for changes and opened
	// by the editor action; empty disables both.
	Path   string
	Title  string
	Load   Loader
	Layout []layout.Option
	Theme  style.Theme
	// Graphics draws image placements; nil shows placeholders only.
	Graphics *graphics.Writer
	Logger   *log.Logger
	Watch    bool
	// CellSize reports the current cell pixel size. It is consulted on every
	// resize so a font change re-sizes images; nil keeps the initial size.
	CellSize func() (imgplace.Size, bool)
}

// Application represents the running viewer.
type Application struct {
	screen     tcell.Screen
	opts       Options
	engine     *layout.Engine
	view       *viewport.Controller
	comp       *paint.Compositor
	gfx        *graphics.Writer
	log        *log.Logger
	actionCh   chan Action
	watcher    *watcher
	editorCmd  []string
	lastErr    error
	shouldQuit bool
	done       chan struct{}
	closeOnce  sync.Once
	closeErr   error
}

// NewApplication initialises the screen and loads the document.
func NewApplication(opts Options) (*Application, error) {
	if opts.Load == nil {
		return nil, errors.New("app: no document loader")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	d, err := opts.Load()
	if err != nil {
		return nil, err
	}

	screen := opts.Screen
	if screen == nil {
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, err
		}
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	layoutOpts := append([]layout.Option{layout.WithLogger(logger)}, opts.Layout...)
	engine := layout.NewEngine(d, layoutOpts...)
	w, h := screen.Size()
	app := &Application{
		screen:   screen,
		opts:     opts,
		engine:   engine,
		view:     viewport.New(engine, w, contentHeight(h), viewport.WithLogger(logger)),
		comp:     paint.NewCompositor(opts.Theme, paint.WithLogger(logger)),
		gfx:      opts.Graphics,
		log:      logger,
		actionCh: make(chan Action, 10),
		done:     make(chan struct{}),
	}
	if opts.Path != "" {
		app.editorCmd, _ = detectEditorCommand()
	}
	if opts.Watch && opts.Path != "" {
		app.watcher, err = newWatcher(opts.Path, app.dispatch, logger)
		if err != nil {
			logger.Warn("file watching disabled", "path", opts.Path, "err", err)
		}
	}
	return app, nil
}

// Close cleans up resources. Calls after the first return its result.
func (app *Application) Close() error {
	app.closeOnce.Do(func() {
		close(app.done)
		var errs []error
		if app.watcher != nil {
			errs = append(errs, app.watcher.Close())
		}
		if app.gfx != nil {
			errs = append(errs, app.gfx.Clear())
		}
		app.screen.Fini()
		app.closeErr = errors.Join(errs...)
	})
	return app.closeErr
}

// dispatch queues an action without blocking the caller.
func (app *Application) dispatch(action Action) {
	select {
	case app.actionCh <- action:
	default:
		go app.send(action)
	}
}

// send blocks until the loop takes action or the application is closed.
func (app *Application) send(action Action) {
	select {
	case app.actionCh <- action:
	case <-app.done:
	}
}

// contentHeight leaves the bottom row for the status line.
func contentHeight(screenHeight int) int {
	if screenHeight < 2 {
		return screenHeight
	}
	return screenHeight - 1
}
