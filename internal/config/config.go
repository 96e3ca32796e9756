// Package config loads mdview settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/layout"
	"github.com/kk-code-lab/mdview/internal/style"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
)

// Link target display modes.
const (
	LinksAuto   = "auto"
	LinksAlways = "always"
	LinksNever  = "never"
)

type Config struct {
	Images ImagesConfig      `toml:"images"`
	Code   CodeConfig        `toml:"code"`
	Lists  ListsConfig       `toml:"lists"`
	Links  LinksConfig       `toml:"links"`
	Theme  map[string]string `toml:"theme,omitempty"`
	Log    LogConfig         `toml:"log"`
}

type ImagesConfig struct {
	Enabled        bool `toml:"enabled"`
	MaxWidthCells  int  `toml:"max_width_cells"`
	MaxHeightCells int  `toml:"max_height_cells"`
}

type CodeConfig struct {
	Overflow string `toml:"overflow"`
	TabWidth int    `toml:"tab_width"`
}

type ListsConfig struct {
	IndentWidth int `toml:"indent_width"`
}

type LinksConfig struct {
	// ShowTargets is auto, always or never. Auto shows targets only when the
	// terminal has no hyperlink support.
	ShowTargets string `toml:"show_targets"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Images: ImagesConfig{
			Enabled:        true,
			MaxHeightCells: layout.DefaultMaxImageRows,
		},
		Code: CodeConfig{
			Overflow: layout.OverflowClip.String(),
			TabWidth: 4,
		},
		Lists: ListsConfig{IndentWidth: layout.DefaultListIndent},
		Links: LinksConfig{ShowTargets: LinksAuto},
		Log:   LogConfig{Level: "warn"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/mdview/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "mdview", "config.toml")
}

// Load reads the file at path on top of the defaults. A missing file at the
// default path is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Images.MaxWidthCells < 0 {
		errs = append(errs, fmt.Errorf("images.max_width_cells must not be negative, got %d", c.Images.MaxWidthCells))
	}
	if c.Images.MaxHeightCells < 0 {
		errs = append(errs, fmt.Errorf("images.max_height_cells must not be negative, got %d", c.Images.MaxHeightCells))
	}
	if _, err := layout.ParseOverflow(c.Code.Overflow); err != nil {
		errs = append(errs, fmt.Errorf("code.overflow: %w", err))
	}
	if c.Code.TabWidth < 1 {
		errs = append(errs, fmt.Errorf("code.tab_width must be positive, got %d", c.Code.TabWidth))
	}
	if c.Lists.IndentWidth < 1 {
		errs = append(errs, fmt.Errorf("lists.indent_width must be positive, got %d", c.Lists.IndentWidth))
	}
	switch c.Links.ShowTargets {
	case LinksAuto, LinksAlways, LinksNever:
	default:
		errs = append(errs, fmt.Errorf("links.show_targets must be auto, always or never, got %q", c.Links.ShowTargets))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := c.ParseTheme(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseTheme applies the theme colour overrides to the default theme.
func (c Config) ParseTheme() (style.Theme, error) {
	theme := style.DefaultTheme()
	roles := make([]string, 0, len(c.Theme))
	for role := range c.Theme {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		col, err := parseColor(c.Theme[role])
		if err != nil {
			return style.Theme{}, fmt.Errorf("theme.%s: %w", role, err)
		}
		if !theme.SetColor(role, col) {
			return style.Theme{}, fmt.Errorf("theme.%s: unknown role (known: %s)", role, strings.Join(style.Roles, ", "))
		}
	}
	return theme, nil
}

func parseColor(s string) (tcell.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		if c := tcell.GetColor(strings.ToLower(s)); c != tcell.ColorDefault {
			return c, nil
		}
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid colour %q", s)
	}
	r, g, b := col.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}

// LogLevel returns the parsed log level, falling back to warn.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// ShowLinkTargets resolves the link target mode for a terminal with or
// without hyperlink support.
func (c Config) ShowLinkTargets(hyperlinks bool) bool {
	switch c.Links.ShowTargets {
	case LinksAlways:
		return true
	case LinksNever:
		return false
	default:
		return !hyperlinks
	}
}

// LayoutOptions converts the settings to layout options. The configuration
// must have been validated.
func (c Config) LayoutOptions(cell imgplace.Size, hyperlinks bool, logger *log.Logger) []layout.Option {
	theme, _ := c.ParseTheme()
	overflow, _ := layout.ParseOverflow(c.Code.Overflow)
	return []layout.Option{
		layout.WithTheme(theme),
		layout.WithMaxImageCells(c.Images.MaxWidthCells, c.Images.MaxHeightCells),
		layout.WithCellSize(cell),
		layout.WithCodeOverflow(overflow),
		layout.WithTabWidth(c.Code.TabWidth),
		layout.WithListIndent(c.Lists.IndentWidth),
		layout.WithShowLinkTargets(c.ShowLinkTargets(hyperlinks)),
		layout.WithLogger(logger),
	}
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
