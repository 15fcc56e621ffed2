package aggregator

import (
	"github.com/therealutkarshpriyadarshi/accesslog/internal/parser"
	"github.com/therealutkarshpriyadarshi/accesslog/pkg/types"
)

// Query holds the filter parameters of a scan
type Query struct {
	Address string // Exact source address, empty for all
	Status  string // Exact 3-digit status, empty for all
	Detail  bool   // Collect individual records even when Address is empty
}

// DetailMode reports whether the query collects individual records
// rather than per-source statistics.
func (q Query) DetailMode() bool {
	return q.Address != "" || q.Detail
}

// Consumer turns raw lines into an aggregate. Implementations are not safe
// for concurrent use; parallel scans give every file its own Consumer and
// merge them afterwards with Result.Absorb.
type Consumer interface {
	// Consume processes one raw line. Lines that do not yield a record
	// are counted and dropped.
	Consume(line string)

	// Stats returns the line outcome counters
	Stats() types.ScanStats
}

// Diagnostics receives the lines a Consumer drops because they do not
// parse or carry an unparseable date.
type Diagnostics interface {
	Skipped(err error)
}

type nopDiagnostics struct{}

func (nopDiagnostics) Skipped(error) {}

// New returns the strategy selected by q, sharing parser p
func New(q Query, p *parser.CombinedParser, diag Diagnostics) Consumer {
	if q.DetailMode() {
		return NewDetailConsumer(p, q.Address, q.Status, diag)
	}
	return NewSummaryConsumer(p, q.Status, diag)
}

// Result is the merged output of a scan. Exactly one of Summary and Detail
// is set, depending on the query mode.
type Result struct {
	Summary *Summary
	Detail  *Detail
	Stats   types.ScanStats
}

// NewResult returns an empty result for q
func NewResult(q Query) *Result {
	if q.DetailMode() {
		return &Result{Detail: NewDetail()}
	}
	return &Result{Summary: NewSummary()}
}

// Absorb merges the aggregate held by c into r. Callers must absorb
// consumers in file order to keep tie-breaking deterministic.
func (r *Result) Absorb(c Consumer) {
	switch c := c.(type) {
	case *SummaryConsumer:
		if r.Summary == nil {
			r.Summary = NewSummary()
		}
		r.Summary.Merge(c.Summary())
	case *DetailConsumer:
		if r.Detail == nil {
			r.Detail = NewDetail()
		}
		r.Detail.Append(c.Detail())
	}
	r.Stats.Add(c.Stats())
}
