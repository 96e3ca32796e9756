package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/layout"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[images]
max_width_cells = 40

[code]
overflow = "scroll"

[theme]
link = "#ff0000"
heading = "teal"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Images.MaxWidthCells != 40 || cfg.Images.MaxHeightCells != 24 || !cfg.Images.Enabled {
		t.Fatalf("images = %+v", cfg.Images)
	}
	if cfg.Code.Overflow != "scroll" || cfg.Code.TabWidth != 4 {
		t.Fatalf("code = %+v", cfg.Code)
	}
	theme, err := cfg.ParseTheme()
	if err != nil {
		t.Fatalf("ParseTheme: %v", err)
	}
	if theme.Link.Fg != tcell.NewRGBColor(255, 0, 0) {
		t.Fatalf("link colour = %v", theme.Link.Fg)
	}
	if theme.Heading(3).Fg != tcell.ColorTeal {
		t.Fatalf("heading colour = %v", theme.Heading(3).Fg)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"unknown key", "[images]\nbogus = 1\n", "unknown keys"},
		{"negative size", "[images]\nmax_height_cells = -1\n", "max_height_cells"},
		{"bad overflow", "[code]\noverflow = \"wrap\"\n", "code.overflow"},
		{"bad links", "[links]\nshow_targets = \"sometimes\"\n", "show_targets"},
		{"bad colour", "[theme]\nlink = \"#zzzzzz\"\n", "theme.link"},
		{"unknown role", "[theme]\nsidebar = \"#000000\"\n", "unknown role"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatalf("expected error for missing explicit file")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[lists]\nindent_width = 4\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lists.IndentWidth != 4 {
		t.Fatalf("indent = %d", cfg.Lists.IndentWidth)
	}
}

func TestWriteRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := DefaultConfig().Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	cfg, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse of written config: %v", err)
	}
	if cfg.Code != DefaultConfig().Code || cfg.Images != DefaultConfig().Images {
		t.Fatalf("round trip changed config: %+v", cfg)
	}
}

func TestShowLinkTargets(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ShowLinkTargets(true) || !cfg.ShowLinkTargets(false) {
		t.Fatalf("auto mode should follow hyperlink support")
	}
	cfg.Links.ShowTargets = LinksAlways
	if !cfg.ShowLinkTargets(true) {
		t.Fatalf("always mode ignored")
	}
}

func TestLayoutOptionsApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Code.Overflow = "scroll"
	cfg.Lists.IndentWidth = 5
	opts := cfg.LayoutOptions(imgplace.Size{W: 8, H: 16}, true, log.New(io.Discard))
	e := layout.NewEngine(doc.New(), opts...)
	got := e.Options()
	if got.CodeOverflow != layout.OverflowScroll || got.ListIndent != 5 || got.CellSize.W != 8 || got.ShowLinkTargets {
		t.Fatalf("options not applied: %+v", got)
	}
}
