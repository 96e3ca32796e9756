package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/mdview/internal/app"
	"github.com/kk-code-lab/mdview/internal/config"
	"github.com/kk-code-lab/mdview/internal/doc"
	"github.com/kk-code-lab/mdview/internal/graphics"
	"github.com/kk-code-lab/mdview/internal/imageload"
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"github.com/kk-code-lab/mdview/internal/layout"
	"github.com/kk-code-lab/mdview/internal/mdparse"
	"github.com/kk-code-lab/mdview/internal/paint"
	"github.com/kk-code-lab/mdview/internal/source"
	"github.com/kk-code-lab/mdview/internal/termcap"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const defaultWidth = 80

type cliFlags struct {
	dump         bool
	width        int
	configPath   string
	logFile      string
	logLevel     string
	images       string
	codeOverflow string
	printConfig  bool
	noWatch      bool
}

func main() {
	// UTF-8 fallback so non-ASCII text survives odd locales.
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f cliFlags
	flags := pflag.NewFlagSet("mdview", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVarP(&f.dump, "dump", "d", false, "Write the rendered document to stdout and exit")
	flags.IntVarP(&f.width, "width", "w", 0, "Layout width for --dump (0 uses the terminal width)")
	flags.StringVarP(&f.configPath, "config", "c", "", "Config file (default "+config.DefaultPath()+")")
	flags.StringVar(&f.logFile, "log-file", "", "Write logs to this file")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	flags.StringVar(&f.images, "images", "auto", "Image protocol: auto|kitty|iterm2|none")
	flags.StringVar(&f.codeOverflow, "code-overflow", "", "Long code lines: clip|scroll")
	flags.BoolVar(&f.printConfig, "print-config", false, "Print the effective configuration as TOML and exit")
	flags.BoolVar(&f.noWatch, "no-watch", false, "Do not reload when the file changes")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "mdview - terminal markdown viewer\n\n")
		fmt.Fprintf(stderr, "Usage: mdview [flags] [FILE]\n")
		fmt.Fprintln(stderr, "\nWith no FILE, or FILE of -, markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return 2
	}

	cfg, err := loadConfig(f, flags)
	if err != nil {
		fmt.Fprintf(stderr, "mdview: %v\n", err)
		return 2
	}
	if f.printConfig {
		if err := cfg.Write(stdout); err != nil {
			fmt.Fprintf(stderr, "mdview: %v\n", err)
			return 1
		}
		return 0
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "mdview: %v\n", err)
		return 1
	}
	defer closeLog()

	path := flags.Arg(0)
	if path == "-" {
		path = ""
	}
	var stdinData []byte
	if path == "" {
		if stdinData, err = source.Read(stdin); err != nil {
			fmt.Fprintf(stderr, "mdview: read stdin: %v\n", err)
			return 1
		}
	}

	caps := termcap.Detect()
	if p, ok := termcap.ParseProtocol(f.images); ok {
		caps.Images = p
	}
	if !cfg.Images.Enabled || f.dump {
		caps.Images = termcap.ProtocolNone
	}
	if size, ok := termcap.CellSize(int(os.Stdout.Fd())); ok {
		caps.CellSize = size
	}
	logger.Debug("terminal", "program", caps.Program, "images", caps.Images, "cell", caps.CellSize)

	base := "."
	if path != "" {
		base = filepath.Dir(path)
	}
	store := imageload.NewStore(base, imageload.WithLogger(logger))
	load := documentLoader(path, stdinData, store, caps.Images != termcap.ProtocolNone, logger)

	if f.dump {
		if err := dump(stdout, load, cfg, caps, resolveWidth(f.width), logger); err != nil {
			fmt.Fprintf(stderr, "mdview: %v\n", err)
			return 1
		}
		return 0
	}

	// Validate has already rejected bad colours.
	theme, _ := cfg.ParseTheme()
	var gfx *graphics.Writer
	if caps.Images != termcap.ProtocolNone {
		gfx = graphics.New(os.Stdout, caps.Images, store, caps.CellSize, graphics.WithLogger(logger))
	}
	title := filepath.Base(path)
	if path == "" {
		title = "stdin"
	}
	viewer, err := app.NewApplication(app.Options{
		Path:     path,
		Title:    title,
		Load:     load,
		Layout:   cfg.LayoutOptions(caps.CellSize, caps.Hyperlinks, logger),
		Theme:    theme,
		Graphics: gfx,
		Logger:   logger,
		Watch:    !f.noWatch && path != "",
		CellSize: func() (imgplace.Size, bool) { return termcap.CellSize(int(os.Stdout.Fd())) },
	})
	if err != nil {
		fmt.Fprintf(stderr, "mdview: %v\n", err)
		return 1
	}
	defer func() {
		if err := viewer.Close(); err != nil {
			logger.Debug("close", "err", err)
		}
	}()
	viewer.Run()
	return 0
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(f cliFlags, flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.Changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if flags.Changed("code-overflow") {
		cfg.Code.Overflow = f.codeOverflow
	}
	if flags.Changed("images") {
		switch strings.ToLower(f.images) {
		case "auto", "kitty", "iterm2", "iterm":
		case "none", "off", "0", "false":
			cfg.Images.Enabled = false
		default:
			return config.Config{}, fmt.Errorf("invalid --images %q", f.images)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*log.Logger, func(), error) {
	if cfg.Log.File == "" {
		return log.New(io.Discard), func() {}, nil
	}
	file, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(file, log.Options{
		Level:           cfg.LogLevel(),
		Prefix:          "mdview",
		ReportTimestamp: true,
	})
	return logger, func() { _ = file.Close() }, nil
}

func documentLoader(path string, stdinData []byte, store *imageload.Store, images bool, logger *log.Logger) app.Loader {
	return func() (*doc.Document, error) {
		data := stdinData
		if path != "" {
			var err error
			if data, err = source.ReadFile(path); err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
		}
		opts := []mdparse.Option{mdparse.WithLogger(logger)}
		if images {
			store.Forget()
			opts = append(opts, mdparse.WithImageLoader(store.Load))
		}
		return mdparse.Parse(data, opts...), nil
	}
}

// dump lays out the whole document and writes it as ANSI text.
func dump(w io.Writer, load app.Loader, cfg config.Config, caps termcap.Capabilities, width int, logger *log.Logger) error {
	d, err := load()
	if err != nil {
		return err
	}
	opts := cfg.LayoutOptions(caps.CellSize, caps.Hyperlinks && isTerminal(w), logger)
	engine := layout.NewEngine(d, opts...)
	lines := engine.Layout(width)
	if diag := engine.Diagnostics(); diag.DegenerateImages > 0 {
		logger.Debug("layout diagnostics", "degenerate_images", diag.DegenerateImages)
	}
	return paint.WriteANSI(w, lines, width)
}

func resolveWidth(width int) int {
	if width > 0 {
		return width
	}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
