package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ftahirops/xtimeline/classify"
	"github.com/ftahirops/xtimeline/config"
	"github.com/ftahirops/xtimeline/engine"
	"github.com/ftahirops/xtimeline/ingest"
	"github.com/ftahirops/xtimeline/logging"
	"github.com/ftahirops/xtimeline/ui"
	"github.com/ftahirops/xtimeline/util"
)

// Version is set at build time via ldflags.
var Version = "0.3.0"

// Options holds CLI configuration. Zero values fall back to the config file.
type Options struct {
	DumpMode  bool
	JSONMode  bool
	Classes   bool
	Filter    string
	Zoom      string
	Collapse  bool
	RulesFile string
	LogFile   string
	LogLevel  string
	Timeout   int
	Parallel  int
	Sources   []string
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `xtimeline v%s — interval timeline viewer for cluster test runs

Usage:
  xtimeline [OPTIONS] [SOURCE...]

Sources:
  FILE              Interval document ({"items": [...]}) or audit log (JSONL)
  URL               http(s) URL of either format
  -                 Read standard input

Modes:
  (default)         Interactive TUI (bubbletea, fullscreen)
  -dump             Print a Markdown summary of the timelines, then exit
  -json             Print the grouped timelines as JSON, then exit
  -classes          List the classification table (with -rules), then exit
  -version          Print version and exit

Options:
  -filter EXPR      Filter expression (default: config default_filter)
  -zoom FROM,TO     Zoom window for -dump/-json (RFC 3339 times)
  -collapse         Hide timelines with nothing inside the zoom window
  -rules FILE       YAML file of extra classification rules
  -log FILE         Log file for the TUI (default: ~/.xtimeline/xtimeline.log)
  -log-level LEVEL  debug, info, warn or error (default: info)
  -timeout N        URL fetch timeout in seconds (default: 60)
  -parallel N       Sources loaded concurrently (default: 4)

Examples:
  xtimeline e2e-intervals.json
  xtimeline https://example.com/artifacts/e2e-timelines.json
  xtimeline -dump -filter 'category == Pod & key.namespace contains "kube"' intervals.json
  xtimeline -json -zoom 2024-03-01T10:00:00Z,2024-03-01T10:05:00Z -collapse intervals.json | jq .
  zcat audit.log.gz | xtimeline -dump -
`, Version)
}

// Run parses flags and starts the application.
func Run() error {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts Options
	var showVersion bool

	fs := flag.NewFlagSet("xtimeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.DumpMode, "dump", false, "Print a Markdown summary and exit")
	fs.BoolVar(&opts.JSONMode, "json", false, "Print grouped timelines as JSON and exit")
	fs.BoolVar(&opts.Classes, "classes", false, "List the classification table and exit")
	fs.StringVar(&opts.Filter, "filter", "", "Filter expression")
	fs.StringVar(&opts.Zoom, "zoom", "", "Zoom window FROM,TO for -dump/-json")
	fs.BoolVar(&opts.Collapse, "collapse", false, "Hide timelines outside the zoom window")
	fs.StringVar(&opts.RulesFile, "rules", "", "YAML file of extra classification rules")
	fs.StringVar(&opts.LogFile, "log", "", "Log file for the TUI")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level")
	fs.IntVar(&opts.Timeout, "timeout", 0, "URL fetch timeout in seconds")
	fs.IntVar(&opts.Parallel, "parallel", 0, "Sources loaded concurrently")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	opts.Sources = fs.Args()

	if showVersion {
		fmt.Fprintf(stdout, "xtimeline v%s\n", Version)
		return nil
	}

	cfg := opts.apply(config.Load())
	headless := opts.DumpMode || opts.JSONMode || opts.Classes

	// The TUI owns the terminal, so it logs to a file.
	var log *slog.Logger
	level := logging.ParseLevel(cfg.LogLevel)
	if headless {
		log = logging.Init(stderr, "text", level)
	} else {
		w, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer w.Close()
		log = logging.Init(w, "json", level)
	}

	classifier, err := newClassifier(cfg.RulesFile)
	if err != nil {
		return err
	}
	log.Debug("classifier ready", "rules", len(classifier.Rules()), "rules_file", cfg.RulesFile)
	if opts.Classes {
		return writeClasses(stdout, classifier)
	}
	coord := engine.NewCoordinator(engine.Options{
		Classifier:    classifier,
		MinIntervalPx: cfg.MinIntervalPx,
		Logger:        log,
	})
	if err := coord.SetFilter(cfg.DefaultFilter); err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	fetcher := ingest.NewFetcher(
		ingest.WithTimeout(time.Duration(cfg.FetchTimeoutSec)*time.Second),
		ingest.WithLogger(log),
	)
	loader := ingest.NewLoader(fetcher, cfg.MaxParallelLoads, log)

	if headless {
		return runHeadless(ctx, coord, loader, opts, stdout)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loader.Start(ctx, opts.Sources...)

	// Mirrors the terminal width until the first resize arrives.
	coord.SetVisiblePixelWidth(80)
	p := tea.NewProgram(ui.NewModel(ctx, coord, loader, cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

// apply overlays flags on the config file values.
func (o Options) apply(cfg config.Config) config.Config {
	if o.Filter != "" {
		cfg.DefaultFilter = o.Filter
	}
	if o.RulesFile != "" {
		cfg.RulesFile = o.RulesFile
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Timeout > 0 {
		cfg.FetchTimeoutSec = o.Timeout
	}
	if o.Parallel > 0 {
		cfg.MaxParallelLoads = o.Parallel
	}
	return cfg
}

func newClassifier(rulesFile string) (*classify.Engine, error) {
	if rulesFile == "" {
		return classify.Default(), nil
	}
	rules, err := classify.LoadRulesFile(rulesFile)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return classify.Default(rules...), nil
}

// parseZoom parses "FROM,TO".
func parseZoom(s string) (from, to time.Time, err error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return from, to, fmt.Errorf("zoom %q: want FROM,TO", s)
	}
	if from, err = util.ParseTime(strings.TrimSpace(a)); err != nil {
		return from, to, fmt.Errorf("zoom from: %w", err)
	}
	if to, err = util.ParseTime(strings.TrimSpace(b)); err != nil {
		return from, to, fmt.Errorf("zoom to: %w", err)
	}
	return from, to, nil
}

// runHeadless loads every source, applies zoom and prints the result.
func runHeadless(ctx context.Context, coord *engine.Coordinator, loader *ingest.Loader, opts Options, stdout io.Writer) error {
	if len(opts.Sources) == 0 {
		return errors.New("no sources given")
	}
	var zoomFrom, zoomTo time.Time
	if opts.Zoom != "" {
		var err error
		if zoomFrom, zoomTo, err = parseZoom(opts.Zoom); err != nil {
			return err
		}
	}

	loadErr := loader.Run(ctx, opts.Sources...)
	batches, _ := loader.Take()
	if len(batches) == 0 && loadErr != nil {
		return loadErr
	}
	res := coord.Load(batches...)
	if res.Err != nil {
		return res.Err
	}

	switch {
	case opts.Zoom != "":
		coord.Zoom(zoomFrom, zoomTo, opts.Collapse)
	case opts.Collapse:
		coord.SetCollapse(true)
	}

	if opts.JSONMode {
		return writeJSON(stdout, coord)
	}
	return writeSummary(stdout, coord)
}
