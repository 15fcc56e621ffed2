package metrics

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/parser"
	"github.com/therealutkarshpriyadarshi/accesslog/pkg/types"
)

// Namespace for all metrics
const namespace = "accesslog"

// File outcomes
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Collector provides a central place for all scan metrics
type Collector struct {
	// Feed metrics
	FilesScanned *prometheus.CounterVec
	FileDuration *prometheus.HistogramVec
	LinesRead    prometheus.Counter

	// Parser metrics
	LinesSkipped   *prometheus.CounterVec
	RecordsMatched *prometheus.CounterVec

	// Worker pool metrics
	WorkerPoolSize        prometheus.Gauge
	WorkerPoolJobs        *prometheus.CounterVec
	WorkerPoolSuccessRate prometheus.Gauge

	// Scan metrics
	ScanDuration prometheus.Gauge

	// System metrics
	SystemGoroutines prometheus.Gauge
	SystemMemAlloc   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

// NewCollector creates a new metrics collector on a private registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
	}

	c.initFeedMetrics()
	c.initParserMetrics()
	c.initWorkerPoolMetrics()
	c.initSystemMetrics()

	return c
}

func (c *Collector) initFeedMetrics() {
	c.FilesScanned = promauto.With(c.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "files_total",
			Help:      "Total number of log files scanned by compression and outcome",
		},
		[]string{"compression", "outcome"},
	)

	c.FileDuration = promauto.With(c.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "file_duration_seconds",
			Help:      "Time taken to read and aggregate one log file",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"compression"},
	)

	c.LinesRead = promauto.With(c.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "lines_read_total",
			Help:      "Total number of raw lines read",
		},
	)
}

func (c *Collector) initParserMetrics() {
	c.LinesSkipped = promauto.With(c.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "lines_skipped_total",
			Help:      "Total number of lines that produced no record",
		},
		[]string{"reason"},
	)

	c.RecordsMatched = promauto.With(c.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "records_matched_total",
			Help:      "Total number of lines aggregated",
		},
		[]string{"mode"},
	)
}

func (c *Collector) initWorkerPoolMetrics() {
	c.WorkerPoolSize = promauto.With(c.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker_pool",
			Name:      "size",
			Help:      "Number of file workers",
		},
	)

	c.WorkerPoolJobs = promauto.With(c.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker_pool",
			Name:      "jobs_total",
			Help:      "Total number of file jobs by status",
		},
		[]string{"status"},
	)

	c.WorkerPoolSuccessRate = promauto.With(c.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker_pool",
			Name:      "success_rate_percent",
			Help:      "Share of file jobs of the last scan that succeeded",
		},
	)

	c.ScanDuration = promauto.With(c.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Wall time of the last scan",
		},
	)
}

func (c *Collector) initSystemMetrics() {
	c.SystemGoroutines = promauto.With(c.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "system",
			Name:      "goroutines",
			Help:      "Number of goroutines",
		},
	)

	c.SystemMemAlloc = promauto.With(c.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "system",
			Name:      "memory_alloc_bytes",
			Help:      "Bytes of allocated heap objects",
		},
	)
}

// ObserveFile records one scanned file
func (c *Collector) ObserveFile(compression string, elapsed time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	c.FilesScanned.WithLabelValues(compression, outcome).Inc()
	c.FileDuration.WithLabelValues(compression).Observe(elapsed.Seconds())
}

// ObserveLines records the line outcomes of a file or scan
func (c *Collector) ObserveLines(stats types.ScanStats, mode string) {
	c.LinesRead.Add(float64(stats.LinesRead))
	c.LinesSkipped.WithLabelValues(string(parser.ReasonUndecodable)).Add(float64(stats.Undecodable))
	c.LinesSkipped.WithLabelValues(string(parser.ReasonUnmatched)).Add(float64(stats.Unmatched))
	c.LinesSkipped.WithLabelValues(string(parser.ReasonBadTimestamp)).Add(float64(stats.BadTimestamp))
	c.LinesSkipped.WithLabelValues(string(parser.ReasonFiltered)).Add(float64(stats.Filtered))
	c.RecordsMatched.WithLabelValues(mode).Add(float64(stats.Matched))
}

// CollectSystemMetrics gathers runtime metrics
func (c *Collector) CollectSystemMetrics() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.SystemGoroutines.Set(float64(runtime.NumGoroutine()))
	c.SystemMemAlloc.Set(float64(m.Alloc))
}

// ObservePool records the outcome of a parallel scan's worker pool
func (c *Collector) ObservePool(jobs, failed uint64, successRate float64) {
	c.WorkerPoolJobs.WithLabelValues(OutcomeOK).Add(float64(jobs - failed))
	c.WorkerPoolJobs.WithLabelValues(OutcomeFailed).Add(float64(failed))
	c.WorkerPoolSuccessRate.Set(successRate)
}

// Snapshot gathers the registry into a flat map keyed by metric name and
// sorted label pairs, e.g. `accesslog_feed_files_total{compression="gzip",outcome="ok"}`.
// Histograms report their sample count.
func (c *Collector) Snapshot() (map[string]float64, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	out := make(map[string]float64)
	for _, family := range families {
		for _, m := range family.GetMetric() {
			out[seriesName(family.GetName(), m.GetLabel())] = metricValue(family.GetType(), m)
		}
	}
	return out, nil
}

func seriesName(name string, labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return name
	}

	pairs := make([]string, 0, len(labels))
	for _, l := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(pairs)
	return name + "{" + strings.Join(pairs, ",") + "}"
}

func metricValue(metricType dto.MetricType, m *dto.Metric) float64 {
	switch metricType {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return m.GetUntyped().GetValue()
	}
}
