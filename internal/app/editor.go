package app

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

// commandBuilder is replaced in tests.
var commandBuilder = exec.Command

var (
	errNoPath   = errors.New("editor: document was read from stdin")
	errNoEditor = errors.New("editor: none found, set $VISUAL or $EDITOR")
)

// openInEditor hands the terminal to the user's editor on the viewed file
// and takes it back afterwards. The caller reloads the document.
func (app *Application) openInEditor() error {
	if app.opts.Path == "" {
		return errNoPath
	}
	if len(app.editorCmd) == 0 {
		return errNoEditor
	}
	argv := append(append([]string(nil), app.editorCmd...), app.opts.Path)
	cmd := commandBuilder(argv[0], argv[1:]...)

	stdio, release := controllingTerminal()
	defer release()
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdio, stdio, stdio
	if stdio == nil {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	}

	var runErr error
	err := app.whileSuspended(func() {
		if runErr = cmd.Run(); runErr != nil {
			runErr = fmt.Errorf("%s: %w", filepath.Base(argv[0]), runErr)
		}
		_ = flushConsoleInput()
	})
	if err != nil {
		return err
	}
	return runErr
}

// whileSuspended runs fn with the screen released to the terminal.
func (app *Application) whileSuspended(fn func()) error {
	if err := app.screen.Suspend(); err != nil {
		return fmt.Errorf("suspend screen: %w", err)
	}
	fn()
	if err := app.screen.Resume(); err != nil {
		return fmt.Errorf("resume screen: %w", err)
	}
	app.screen.Sync()
	if app.gfx != nil {
		app.gfx.Invalidate()
	}
	return nil
}

// controllingTerminal opens /dev/tty so the editor gets the terminal even
// when stdin carried something else. It returns nil on Windows or failure.
func controllingTerminal() (*os.File, func()) {
	if runtime.GOOS == "windows" {
		return nil, func() {}
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, func() {}
	}
	return tty, func() { _ = tty.Close() }
}

func detectEditorCommand() ([]string, bool) {
	return detectEditorCommandInternal(runtime.GOOS, os.Getenv, exec.LookPath)
}

var fallbackEditors = map[bool][][]string{
	false: {{"vim"}, {"nano"}, {"vi"}},
	true:  {{"code", "--wait"}, {"notepad.exe"}},
}

func detectEditorCommandInternal(goos string, getenv func(string) string, lookPath func(string) (string, error)) ([]string, bool) {
	candidates := make([][]string, 0, 5)
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if argv := parseEditorCommand(getenv(name)); len(argv) > 0 {
			candidates = append(candidates, argv)
		}
	}
	candidates = append(candidates, fallbackEditors[strings.EqualFold(goos, "windows")]...)

	for _, argv := range candidates {
		resolved, err := lookPath(argv[0])
		if err != nil {
			continue
		}
		return append([]string{resolved}, argv[1:]...), true
	}
	return nil, false
}

// parseEditorCommand splits cmd into words. Single and double quotes group
// words; a leading ~ in the program name is expanded.
func parseEditorCommand(cmd string) []string {
	var (
		words []string
		word  strings.Builder
		quote rune
		open  bool
	)
	flush := func() {
		if open {
			words = append(words, word.String())
			word.Reset()
			open = false
		}
	}
	for _, r := range strings.TrimSpace(cmd) {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
		case quote == 0 && unicode.IsSpace(r):
			flush()
		default:
			word.WriteRune(r)
			open = true
		}
	}
	flush()
	if len(words) > 0 {
		words[0] = expandUserPath(words[0])
	}
	return words
}

func expandUserPath(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
