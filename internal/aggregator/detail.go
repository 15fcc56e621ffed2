package aggregator

import (
	"sort"
	"strings"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/parser"
	"github.com/therealutkarshpriyadarshi/accesslog/pkg/types"
)

// Detail is the list of matched records in discovery order
type Detail struct {
	records []types.LogRecord
}

// NewDetail creates an empty detail collection
func NewDetail() *Detail {
	return &Detail{}
}

// Add appends a record
func (d *Detail) Add(record types.LogRecord) {
	d.records = append(d.records, record)
}

// Append concatenates other after the records already held
func (d *Detail) Append(other *Detail) {
	if other == nil {
		return
	}
	d.records = append(d.records, other.records...)
}

// Len returns the number of records
func (d *Detail) Len() int {
	return len(d.records)
}

// Records returns a copy of the records in discovery order
func (d *Detail) Records() []types.LogRecord {
	out := make([]types.LogRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Sorted returns a copy of the records ordered by timestamp. Records with
// equal timestamps keep discovery order.
func (d *Detail) Sorted() []types.LogRecord {
	out := d.Records()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// DetailConsumer collects individual records matching an address and
// status filter.
type DetailConsumer struct {
	parser  *parser.CombinedParser
	address string
	status  string
	diag    Diagnostics
	detail  *Detail
	stats   types.ScanStats
}

// NewDetailConsumer creates a detail strategy. Empty address or status
// accept everything. diag may be nil.
func NewDetailConsumer(p *parser.CombinedParser, address, status string, diag Diagnostics) *DetailConsumer {
	if diag == nil {
		diag = nopDiagnostics{}
	}
	return &DetailConsumer{
		parser:  p,
		address: address,
		status:  status,
		diag:    diag,
		detail:  NewDetail(),
	}
}

// Consume implements Consumer
func (c *DetailConsumer) Consume(line string) {
	// A matching line always contains the address verbatim, so the
	// substring test only rejects lines that could never match.
	if c.address != "" && !strings.Contains(line, c.address) {
		c.stats.Filtered++
		return
	}

	m, err := c.parser.Parse(line)
	if err != nil {
		c.stats.Unmatched++
		c.diag.Skipped(err)
		return
	}

	if c.address != "" && m.Address != c.address {
		c.stats.Filtered++
		return
	}
	if c.status != "" && m.Status != c.status {
		c.stats.Filtered++
		return
	}

	ts, err := parser.ParseTimestamp(m.Date)
	if err != nil {
		c.stats.BadTimestamp++
		c.diag.Skipped(err)
		return
	}

	method, path, query := parser.DecomposeRequest(m.Request)
	c.detail.Add(types.LogRecord{
		SourceAddress: m.Address,
		Timestamp:     ts,
		RawDate:       m.Date,
		Method:        method,
		Path:          path,
		Query:         query,
		Status:        m.Status,
		UserAgent:     m.Agent,
	})
	c.stats.Matched++
}

// Stats implements Consumer
func (c *DetailConsumer) Stats() types.ScanStats {
	return c.stats
}

// Detail returns the records collected so far
func (c *DetailConsumer) Detail() *Detail {
	return c.detail
}
