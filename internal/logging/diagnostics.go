package logging

import (
	"errors"
	"strings"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/parser"
)

// DefaultPreviewLength is how much of a skipped line is shown
const DefaultPreviewLength = 50

// DiagnosticsConfig holds the settings of the skipped-line channel
type DiagnosticsConfig struct {
	Enabled       bool
	RateLimit     int // Diagnostics per second, 0 for unlimited
	Burst         int
	PreviewLength int
}

// Diagnostics reports lines dropped during a scan at debug level. It is
// safe for concurrent use by several file workers.
type Diagnostics struct {
	logger     *Logger
	enabled    bool
	limiter    *rate.Limiter
	previewLen int

	emitted    uint64
	suppressed uint64
}

// NewDiagnostics creates the diagnostics channel on top of logger
func NewDiagnostics(logger *Logger, cfg DiagnosticsConfig) *Diagnostics {
	d := &Diagnostics{
		logger:     logger.WithComponent("diagnostics"),
		enabled:    cfg.Enabled,
		previewLen: cfg.PreviewLength,
	}

	if d.previewLen <= 0 {
		d.previewLen = DefaultPreviewLength
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.RateLimit
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return d
}

// Skipped implements aggregator.Diagnostics
func (d *Diagnostics) Skipped(err error) {
	if !d.enabled {
		return
	}

	var skipErr *parser.SkipError
	if !errors.As(err, &skipErr) {
		d.logger.Debug().Err(err).Msg("Line skipped")
		return
	}

	input := strings.TrimSpace(skipErr.Input)
	if input == "" {
		return
	}

	if d.limiter != nil && !d.limiter.Allow() {
		atomic.AddUint64(&d.suppressed, 1)
		return
	}
	atomic.AddUint64(&d.emitted, 1)

	switch skipErr.Reason {
	case parser.ReasonBadTimestamp:
		d.logger.Debug().Str("reason", string(skipErr.Reason)).Str("date", input).Msg("Failed date parse")
	default:
		d.logger.Debug().Str("reason", string(skipErr.Reason)).Str("preview", Preview(input, d.previewLen)).Msg("Failed regex")
	}
}

// Emitted returns how many diagnostics were written
func (d *Diagnostics) Emitted() uint64 {
	return atomic.LoadUint64(&d.emitted)
}

// Suppressed returns how many diagnostics were dropped by the rate limit
func (d *Diagnostics) Suppressed() uint64 {
	return atomic.LoadUint64(&d.suppressed)
}

// Preview shortens s to at most n runes followed by "..."
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
