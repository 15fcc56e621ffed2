package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/aggregator"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/feed"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/logging"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/metrics"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/parser"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/worker"
	"github.com/therealutkarshpriyadarshi/accesslog/pkg/types"
)

// Config holds scanner configuration
type Config struct {
	Workers     int
	Query       aggregator.Query
	Diagnostics aggregator.Diagnostics // may be nil
	Metrics     *metrics.Collector     // may be nil
	Logger      *logging.Logger        // may be nil
}

// Scanner reads a list of log files into one aggregate
type Scanner struct {
	config Config
	parser *parser.CombinedParser
	logger *logging.Logger

	// set by parallel scans
	pool *worker.PoolMetrics
}

// fileResult is the partial aggregate of one file
type fileResult struct {
	consumer aggregator.Consumer
	lines    types.ScanStats
	err      error
}

// New creates a new scanner
func New(cfg Config) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Scanner{
		config: cfg,
		parser: parser.NewCombinedParser(),
	}
	s.logger = logger.WithComponent("scan").WithField("mode", s.Mode())
	return s
}

// Mode returns the metrics label of the configured query
func (s *Scanner) Mode() string {
	if s.config.Query.DetailMode() {
		return "detail"
	}
	return "summary"
}

// PoolMetrics returns the worker pool statistics of the last parallel scan
func (s *Scanner) PoolMetrics() (worker.PoolMetrics, bool) {
	if s.pool == nil {
		return worker.PoolMetrics{}, false
	}
	return *s.pool, true
}

// Scan processes paths in order. Files that cannot be opened or read are
// logged, counted and skipped. With more than one worker, files are parsed
// in parallel and merged in path order, which gives the same result as a
// sequential scan. A cancelled ctx aborts the scan with no partial result.
func (s *Scanner) Scan(ctx context.Context, paths []string) (*aggregator.Result, error) {
	start := time.Now()
	results := make([]fileResult, len(paths))

	if s.config.Workers == 1 || len(paths) <= 1 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("scan interrupted: %w", err)
			}
			results[i] = s.scanFile(path)
		}
	} else if err := s.scanParallel(ctx, paths, results); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	result := aggregator.NewResult(s.config.Query)
	for i, fr := range results {
		if fr.consumer != nil {
			result.Absorb(fr.consumer)
		}
		result.Stats.Add(fr.lines)

		if fr.err != nil {
			result.Stats.FilesFailed++
			s.logger.Warn().
				Err(fr.err).
				Str("path", paths[i]).
				Msg("Failed to read log file")
			continue
		}
		result.Stats.FilesScanned++
	}

	elapsed := time.Since(start)
	if m := s.config.Metrics; m != nil {
		m.ObserveLines(result.Stats, s.Mode())
		m.ScanDuration.Set(elapsed.Seconds())
	}

	s.logger.Debug().
		Str("parser", s.parser.Name()).
		Int64("files", result.Stats.FilesScanned).
		Int64("failed", result.Stats.FilesFailed).
		Int64("lines", result.Stats.LinesRead).
		Int64("matched", result.Stats.Matched).
		Dur("elapsed", elapsed).
		Msg("Scan completed")

	return result, nil
}

func (s *Scanner) scanParallel(ctx context.Context, paths []string, results []fileResult) error {
	workers := s.config.Workers
	if workers > len(paths) {
		workers = len(paths)
	}

	// Each job writes only its own slot
	pool, err := worker.NewWorkerPool(worker.PoolConfig{NumWorkers: workers}, func(ctx context.Context, job worker.Job) error {
		results[job.Index] = s.scanFile(job.Path)
		return results[job.Index].err
	})
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}

	if m := s.config.Metrics; m != nil {
		m.WorkerPoolSize.Set(float64(workers))
	}

	pool.Start()
	defer pool.Stop()

	jobs := make([]worker.Job, len(paths))
	for i, path := range paths {
		jobs[i] = worker.Job{Index: i, Path: path}
	}

	for i, err := range pool.Run(ctx, jobs) {
		// Jobs that never ran leave an empty slot
		if err != nil && results[i].err == nil {
			results[i].err = err
		}
	}

	pm := pool.Metrics()
	s.pool = &pm

	if m := s.config.Metrics; m != nil {
		m.ObservePool(pm.JobsProcessed, pm.JobsFailed, pm.SuccessRate())
	}

	for _, wm := range pm.WorkerMetrics {
		s.logger.Debug().
			Int("worker", wm.ID).
			Uint64("jobs", wm.JobsProcessed).
			Uint64("failed", wm.JobsFailed).
			Time("last_active", wm.LastActive).
			Msg("Worker finished")
	}

	return nil
}

// scanFile aggregates one file with a fresh consumer. Lines delivered
// before a read error stay in the partial result.
func (s *Scanner) scanFile(path string) fileResult {
	start := time.Now()
	compression := feed.DetectCompression(path)

	fr := s.readFile(path)

	if m := s.config.Metrics; m != nil {
		m.ObserveFile(string(compression), time.Since(start), fr.err)
	}
	return fr
}

func (s *Scanner) readFile(path string) fileResult {
	src, err := feed.Open(path)
	if err != nil {
		return fileResult{err: err}
	}
	defer src.Close()

	consumer := aggregator.New(s.config.Query, s.parser, s.config.Diagnostics)
	lines, err := feed.ReadLines(src, consumer.Consume)

	return fileResult{
		consumer: consumer,
		lines:    lines,
		err:      err,
	}
}
