package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/jvx/internal/render"
	"github.com/oakwood-commons/jvx/internal/theme"
	"github.com/oakwood-commons/jvx/internal/ui"
	"github.com/oakwood-commons/jvx/pkg/core"
	"github.com/oakwood-commons/jvx/pkg/loader"
	"github.com/oakwood-commons/jvx/pkg/logger"
	"github.com/oakwood-commons/jvx/pkg/settings"
	"github.com/oakwood-commons/jvx/pkg/value"
)

// errShowHelp is returned by loadInput when no input is provided and help should be shown.
var errShowHelp = errors.New("no input provided")

var (
	expandDepth int
	expandPaths []string
	hidePaths   []string
	highlight   string
	current     string
	focusPath   string
	expression  string
	themeName   string
	noColor     bool
	colorMode   string
	indentWidth int
	printIndex  string
	interactive bool
	viewHeight  int
	configFile  string
	debug       bool
	decode      bool
	limit       int
	offset      int
	tail        int

	rootCtx = context.Background()
)

// Seams for tests.
var (
	stdinIsPiped = func() bool {
		stat, err := os.Stdin.Stat()
		return err == nil && (stat.Mode()&os.ModeCharDevice) == 0
	}
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	openTerminalIOFn = openTerminalIO
	termGetSize      = term.GetSize
	newResizeTicker  = func(d time.Duration) resizeTicker { return realResizeTicker{Ticker: time.NewTicker(d)} }
	sendWindowSize   = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
	runViewer        = ui.Run
)

var rootCmd = &cobra.Command{
	Use:   "jvx [file]",
	Short: "Render JSON, YAML and TOML as a foldable, highlighted JSON view",
	Long: `jvx renders structured data as indented JSON text. Containers can be
folded, subtrees hidden and matches of a regular expression highlighted.
Rows near the focus and around matches are ranked so that a limited
window (--height) shows the most relevant part of the document.

Input is read from the file argument, or from stdin when it is piped.
JSON, NDJSON, YAML (including multi-document streams), TOML and JWT
tokens are detected automatically.`,
	Example: `  jvx data.json
  cat data.yaml | jvx --expand-depth 1
  jvx data.json --highlight error --current '.items[3].message'
  jvx data.json --hide .metadata --height 20 --focus .items[7]
  jvx data.json -e '_.items.filter(i, i.enabled)'
  jvx logs.ndjson --tail 20
  jvx data.json --print-index json
  jvx data.json -i`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := int8(0)
		if debug {
			level = -1
		}
		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		run := settings.NewCliParams()
		run.MinLogLevel = level
		run.ConfigPath = configFile
		run.Theme = themeName
		run.NoColor = noColor
		run.Interactive = interactive
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), run)
	},
	RunE: runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	run, ok := settings.FromContext(rootCtx)
	if !ok {
		run = settings.NewCliParams()
	}
	if len(args) == 1 {
		run.InputPath = args[0]
	}
	lgr := logger.FromContext(rootCtx)

	if err := validateFlags(); err != nil {
		return err
	}
	cfg, err := loadMergedConfig(resolveConfigPath(run.ConfigPath))
	if err != nil {
		return err
	}
	th, err := selectTheme(cfg, run.Theme, cmd.Flags().Changed("theme"))
	if err != nil {
		return err
	}
	display := resolveDisplay(cmd.Flags(), cfg)
	if display.indent < 1 {
		return fmt.Errorf("indent must be at least 1, got %d", display.indent)
	}

	root, err := loadInput(cmd.InOrStdin(), run, expression != "")
	if errors.Is(err, errShowHelp) {
		return cmd.Help()
	}
	if err != nil {
		return err
	}
	if decode {
		root = loader.RecursiveDecode(root)
	}
	lgr.V(1).Info("loaded input", "path", run.InputPath, "kind", root.Kind().String())

	unit := strings.Repeat(" ", display.indent)
	color := colorEnabled(run.NoColor, run.Interactive)
	var styles core.Styles = render.PlainStyles{Space: unit}
	if color {
		styles = theme.NewStyles(th, unit)
	}
	engine, err := core.New(core.WithStyles(styles), core.WithLogger(*lgr))
	if err != nil {
		return err
	}

	if run.Interactive {
		return runInteractive(cmd.OutOrStdout(), engine, root, th, unit, display, !color, *lgr)
	}

	res, err := engine.RenderView(root, core.View{
		Expression:  expression,
		ExpandDepth: display.expandDepth,
		Expand:      expandPaths,
		Hide:        hidePaths,
		Highlight:   highlight,
		Current:     current,
		FocusPath:   focusPath,
		Limit:       limit,
		Offset:      offset,
		Tail:        tail,
	})
	if err != nil {
		return err
	}
	lgr.V(1).Info("rendered", "lines", res.LineCount(), "matches", len(res.Matches))

	out := cmd.OutOrStdout()
	if printIndex != "" {
		return writeIndex(out, res, printIndex)
	}
	text := res.Text
	if display.height > 0 {
		width := 0
		if stdoutIsTerminal() {
			width, _ = detectTerminalSize()
		}
		text = windowText(res, display.height, width, windowFocus(res, focusPath, current))
	}
	if text != "" {
		fmt.Fprintln(out, text)
	}
	return nil
}

func runInteractive(out io.Writer, engine *core.Engine, root value.Value, th theme.Theme, unit string, display displaySettings, plain bool, lgr logr.Logger) error {
	v := root
	if expression != "" {
		var err error
		if v, err = engine.Evaluate(expression, root); err != nil {
			return err
		}
	}
	records := core.View{Limit: limit, Offset: offset, Tail: tail}.Records()
	if err := records.Validate(); err != nil {
		return err
	}
	v = records.Apply(v)

	var re *regexp.Regexp
	if highlight != "" {
		var err error
		if re, err = regexp.Compile(highlight); err != nil {
			return fmt.Errorf("invalid highlight pattern: %w", err)
		}
	}

	opts, cleanup := getProgramOptions()
	defer cleanup()
	width, height := detectTerminalSize()
	if display.height > 0 {
		height = display.height
	}

	final, err := runViewer(v, ui.Config{
		Theme:       th,
		Indent:      unit,
		ExpandDepth: display.expandDepth,
		Hidden:      hidePaths,
		Highlight:   re,
		Focus:       focusPath,
		NoColor:     plain,
		Width:       width,
		Height:      height,
		Logger:      lgr,
	}, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, displayPath(final))
	return nil
}

// loadInput reads the root value from the input file, or from stdin when the
// input path is "-". With nothing to read, an empty object stands in when
// allowEmpty is set and errShowHelp is returned otherwise.
func loadInput(stdin io.Reader, run *settings.Run, allowEmpty bool) (value.Value, error) {
	if !run.ReadsStdin() {
		v, err := core.LoadFile(run.InputPath)
		if err != nil {
			return value.Value{}, fmt.Errorf("load %s: %w", run.InputPath, err)
		}
		return v, nil
	}
	if !stdinIsPiped() {
		if allowEmpty {
			return value.Object(), nil
		}
		return value.Value{}, errShowHelp
	}
	v, err := core.LoadReader(stdin)
	if errors.Is(err, loader.ErrEmptyInput) && allowEmpty {
		return value.Object(), nil
	}
	if err != nil {
		return value.Value{}, fmt.Errorf("load stdin: %w", err)
	}
	return v, nil
}

func validateFlags() error {
	switch colorMode {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid --color %q (use auto, always or never)", colorMode)
	}
	switch printIndex {
	case "", indexFormatYAML, indexFormatJSON:
	default:
		return fmt.Errorf("unsupported index format %q (use yaml or json)", printIndex)
	}
	if printIndex != "" && interactive {
		return errors.New("--print-index cannot be combined with --interactive")
	}
	return nil
}

// colorEnabled reports whether output is styled. Auto mode colors terminals
// only and honors NO_COLOR; the viewer always owns a terminal.
func colorEnabled(disabled, viewer bool) bool {
	if disabled {
		return false
	}
	switch colorMode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return viewer || stdoutIsTerminal()
}

// Execute runs the root command and reports its error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printThemeSelectionError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() { //nolint:gochecknoinits
	flags := rootCmd.Flags()
	flags.IntVar(&expandDepth, "expand-depth", -1, "open containers shallower than this depth; negative opens everything (default from config)")
	flags.StringSliceVar(&expandPaths, "expand", nil, "additional container paths to open, e.g. .items[0]")
	flags.StringSliceVar(&hidePaths, "hide", nil, "paths whose subtrees are omitted")
	flags.StringVar(&highlight, "highlight", "", "regular expression to highlight in keys and values")
	flags.StringVar(&current, "current", "", "path of the match shown as the current one")
	flags.StringVar(&focusPath, "focus", "", "path to focus; rows around it rank higher in --height windows")
	flags.StringVarP(&expression, "expression", "e", "", "CEL expression selecting the value to render (root is _)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVar(&colorMode, "color", "auto", "color mode: auto, always or never")
	flags.IntVar(&indentWidth, "indent", 2, "spaces per nesting level (default from config)")
	flags.StringVar(&printIndex, "print-index", "", "print text, row and path indexes and priorities as yaml or json")
	flags.BoolVarP(&interactive, "interactive", "i", false, "open the interactive viewer")
	flags.IntVar(&viewHeight, "height", 0, "print only the best window of this many rows; 0 prints everything (default from config)")
	flags.BoolVar(&decode, "decode", false, "decode string values holding JSON, YAML, TOML or JWT data")
	flags.IntVar(&limit, "limit", 0, "show only the first N records of a top-level array or object")
	flags.IntVar(&offset, "offset", 0, "skip the first N records")
	flags.IntVar(&tail, "tail", 0, "show only the last N records (excludes --limit)")

	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "config file (default $XDG_CONFIG_HOME/jvx/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "color theme (default from config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs to stderr")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(versionCmd, themesCmd, configCmd, functionsCmd)
}
