// Package termcap guesses what the host terminal can display.
package termcap

import (
	"os"
	"strings"

	"github.com/kk-code-lab/mdview/internal/imgplace"
)

// Protocol is an inline image protocol.
type Protocol int

const (
	ProtocolNone Protocol = iota
	ProtocolKitty
	ProtocolITerm2
)

func (p Protocol) String() string {
	switch p {
	case ProtocolKitty:
		return "kitty"
	case ProtocolITerm2:
		return "iterm2"
	default:
		return "none"
	}
}

// OverrideEnv forces images on (1, or a protocol name) or off (0, none).
const OverrideEnv = "MDVIEW_IMAGES"

// Capabilities describes the terminal.
type Capabilities struct {
	Program    string
	Images     Protocol
	Hyperlinks bool
	Truecolor  bool
	CellSize   imgplace.Size
}

// Env looks up an environment variable.
type Env func(string) string

// Detect inspects the process environment.
func Detect() Capabilities {
	return DetectEnv(os.Getenv)
}

// DetectEnv inspects env. An override of "auto" or "" falls through to
// heuristics.
func DetectEnv(env Env) Capabilities {
	term := env("TERM")
	program := env("TERM_PROGRAM")
	caps := Capabilities{
		Program:  program,
		CellSize: imgplace.DefaultCellSize,
	}
	switch {
	case env("TERMINOLOGY") == "1":
		caps.Program = "Terminology"
	case program != "":
	case term == "" || term == "dumb":
		caps.Program = "dumb"
	default:
		caps.Program = "ansi"
	}

	switch {
	case term == "xterm-kitty" || env("KITTY_WINDOW_ID") != "" || env("KITTY_PID") != "":
		caps.Program = "kitty"
		caps.Images = ProtocolKitty
	case program == "ghostty" || env("GHOSTTY_RESOURCES_DIR") != "":
		caps.Images = ProtocolKitty
	case program == "WezTerm" || term == "wezterm" || env("WEZTERM_PANE") != "":
		if caps.Program == "ansi" || caps.Program == "dumb" {
			caps.Program = "WezTerm"
		}
		caps.Images = ProtocolKitty
	case program == "iTerm.app":
		caps.Images = ProtocolITerm2
	case program == "mintty":
		caps.Images = ProtocolITerm2
	}

	switch {
	case caps.Images != ProtocolNone:
		caps.Hyperlinks = true
	case caps.Program == "Terminology" || program == "vscode" || program == "Hyper" || env("VTE_VERSION") != "":
		caps.Hyperlinks = true
	case strings.HasPrefix(term, "foot") || strings.HasPrefix(term, "alacritty"):
		caps.Hyperlinks = true
	}

	colorterm := strings.ToLower(env("COLORTERM"))
	caps.Truecolor = colorterm == "truecolor" || colorterm == "24bit" || caps.Images != ProtocolNone

	detected := caps.Images
	// tmux and screen swallow graphics escapes.
	if env("TMUX") != "" || strings.HasPrefix(term, "screen") {
		caps.Images = ProtocolNone
	}

	override := strings.ToLower(strings.TrimSpace(env(OverrideEnv)))
	switch override {
	case "1", "on", "true":
		if detected == ProtocolNone {
			detected = ProtocolKitty
		}
		caps.Images = detected
	default:
		if p, ok := ParseProtocol(override); ok {
			caps.Images = p
		}
	}
	return caps
}

// ParseProtocol parses an override value. ok is false for "auto" and
// unrecognised values.
func ParseProtocol(s string) (Protocol, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kitty":
		return ProtocolKitty, true
	case "iterm2", "iterm":
		return ProtocolITerm2, true
	case "none", "off", "0", "false":
		return ProtocolNone, true
	default:
		return ProtocolNone, false
	}
}
