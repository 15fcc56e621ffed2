package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/aggregator"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/config"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/feed"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/logging"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/metrics"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/report"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/scan"
)

const defaultConfigFile = "config.yaml"

var version = "0.1.0"

var errNoLogFiles = errors.New("no log files found")

// options holds the command line
type options struct {
	configFile     string
	configExplicit bool

	ip      string
	code    string
	list    bool
	debug   bool
	dir     string
	pattern string
	workers int
	format  string
	version bool

	files []string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("accesslog", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configFile, "config", defaultConfigFile, "Path to configuration file")
	fs.StringVar(&opts.ip, "ip", "", "Filter by specific IP address")
	fs.StringVar(&opts.code, "code", "", "Filter by HTTP status code (e.g. 404)")
	fs.BoolVar(&opts.list, "list", false, "List every matching request instead of the summary")
	fs.BoolVar(&opts.debug, "debug", false, "Log lines that fail to parse")
	fs.StringVar(&opts.dir, "dir", "", "Log directory (overrides scan.log_dir)")
	fs.StringVar(&opts.pattern, "pattern", "", "Log file glob (overrides scan.pattern)")
	fs.IntVar(&opts.workers, "workers", 0, "Files parsed in parallel (overrides scan.workers)")
	fs.StringVar(&opts.format, "format", "", "Report format: text or json (overrides output.format)")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			opts.configExplicit = true
		}
	})
	opts.files = fs.Args()

	return opts, nil
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies flag overrides
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configExplicit {
		cfg, err = config.Load(opts.configFile)
	} else {
		cfg, err = config.LoadOrDefault(opts.configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.dir != "" {
		cfg.Scan.LogDir = opts.dir
	}
	if opts.pattern != "" {
		cfg.Scan.Pattern = opts.pattern
	}
	if opts.workers != 0 {
		cfg.Scan.Workers = opts.workers
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.debug {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	if opts.version {
		fmt.Fprintf(stdout, "accesslog %s\n", version)
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// Initialize logger
	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: stderr,
	})
	logging.SetGlobal(logger)

	files, err := logFiles(cfg, opts.files)
	if err != nil {
		return err
	}

	logger.Info().Msgf("Scanning %d log files...", len(files))
	if opts.code != "" {
		logger.Info().Msgf("Filtering for Status Code: %s", opts.code)
	}

	diag := logging.NewDiagnostics(logger, logging.DiagnosticsConfig{
		Enabled:       opts.debug,
		RateLimit:     cfg.Diagnostics.RateLimit,
		Burst:         cfg.Diagnostics.Burst,
		PreviewLength: cfg.Diagnostics.PreviewLength,
	})

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
	}

	query := aggregator.Query{
		Address: opts.ip,
		Status:  opts.code,
		Detail:  opts.list,
	}

	scanner := scan.New(scan.Config{
		Workers:     cfg.Scan.Workers,
		Query:       query,
		Diagnostics: diag,
		Metrics:     collector,
		Logger:      logger,
	})

	result, err := scanner.Scan(ctx, files)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if err := render(stdout, cfg.Output.Format, query, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	event := logger.Info().
		Int64("files", result.Stats.FilesScanned).
		Int64("failed", result.Stats.FilesFailed).
		Int64("lines", result.Stats.LinesRead).
		Int64("matched", result.Stats.Matched).
		Int64("unmatched", result.Stats.Unmatched).
		Int64("bad_timestamp", result.Stats.BadTimestamp).
		Int64("undecodable", result.Stats.Undecodable)
	if pm, ok := scanner.PoolMetrics(); ok {
		event = event.
			Int("workers", pm.NumWorkers).
			Uint64("worker_jobs_failed", pm.JobsFailed).
			Float64("worker_success_rate", pm.SuccessRate())
	}
	event.Msg("Scan complete")

	if suppressed := diag.Suppressed(); suppressed > 0 {
		logger.Debug().Uint64("suppressed", suppressed).Msg("Diagnostics rate limited")
	}

	if collector != nil {
		logMetrics(logger, collector)
	}

	return nil
}

// logFiles lists the files to scan: explicit paths when given, the
// configured directory and pattern otherwise.
func logFiles(cfg *config.Config, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		files, err := feed.Expand(explicit)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w matching %v", errNoLogFiles, explicit)
		}
		return files, nil
	}

	files, err := feed.Discover(cfg.Scan.LogDir, cfg.Scan.Pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w matching %s", errNoLogFiles, filepath.Join(cfg.Scan.LogDir, cfg.Scan.Pattern))
	}
	return files, nil
}

func render(w io.Writer, format string, query aggregator.Query, result *aggregator.Result) error {
	if query.DetailMode() {
		title := report.DefaultDetailTitle
		if query.Address != "" {
			title = report.AddressTitle(query.Address)
		}

		records := result.Detail.Sorted()
		if format == "json" {
			return report.DetailAsJSON(w, records, title)
		}
		return report.Detail(w, records, title)
	}

	rows := result.Summary.Ranked()
	total := result.Summary.TotalMatched()
	if format == "json" {
		return report.SummaryAsJSON(w, rows, total)
	}
	return report.Summary(w, rows, total)
}

func logMetrics(logger *logging.Logger, collector *metrics.Collector) {
	collector.CollectSystemMetrics()

	snapshot, err := collector.Snapshot()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to collect metrics")
		return
	}

	fields := make(map[string]interface{}, len(snapshot))
	for name, value := range snapshot {
		fields[name] = value
	}
	logger.Info().Fields(fields).Msg("Scan metrics")
}
