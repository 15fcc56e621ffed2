package aggregator

import (
	"sort"
	"time"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/parser"
	"github.com/therealutkarshpriyadarshi/accesslog/pkg/types"
)

// SourceStats is the activity of one source address. Requests always
// equals the sum of Methods, and FirstSeen <= LastSeen once set.
type SourceStats struct {
	Requests  int64
	Methods   map[string]int64
	FirstSeen *time.Time
	LastSeen  *time.Time
}

func newSourceStats() *SourceStats {
	return &SourceStats{Methods: make(map[string]int64)}
}

func (s *SourceStats) observe(method string, ts time.Time) {
	s.Requests++
	s.Methods[method]++
	s.widen(ts, ts)
}

func (s *SourceStats) widen(first, last time.Time) {
	if s.FirstSeen == nil || first.Before(*s.FirstSeen) {
		f := first
		s.FirstSeen = &f
	}
	if s.LastSeen == nil || last.After(*s.LastSeen) {
		l := last
		s.LastSeen = &l
	}
}

func (s *SourceStats) merge(other *SourceStats) {
	s.Requests += other.Requests
	for method, n := range other.Methods {
		s.Methods[method] += n
	}
	if other.FirstSeen != nil && other.LastSeen != nil {
		s.widen(*other.FirstSeen, *other.LastSeen)
	}
}

// Summary maps source addresses to their statistics
type Summary struct {
	sources map[string]*SourceStats
	order   []string // first-insertion order, the ranking tie-break
	total   int64
}

// NewSummary creates an empty summary
func NewSummary() *Summary {
	return &Summary{sources: make(map[string]*SourceStats)}
}

// getOrInsert returns the stats for address, inserting zeroed stats on
// first sight.
func (s *Summary) getOrInsert(address string) *SourceStats {
	stats, ok := s.sources[address]
	if !ok {
		stats = newSourceStats()
		s.sources[address] = stats
		s.order = append(s.order, address)
	}
	return stats
}

// Add records one matched request
func (s *Summary) Add(address, method string, ts time.Time) {
	s.getOrInsert(address).observe(method, ts)
	s.total++
}

// Merge folds other into s. Addresses new to s are appended in other's
// insertion order.
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}
	for _, address := range other.order {
		s.getOrInsert(address).merge(other.sources[address])
	}
	s.total += other.total
}

// Source returns the stats for address
func (s *Summary) Source(address string) (*SourceStats, bool) {
	stats, ok := s.sources[address]
	return stats, ok
}

// Len returns the number of distinct source addresses
func (s *Summary) Len() int {
	return len(s.sources)
}

// TotalMatched returns the number of requests counted across all sources
func (s *Summary) TotalMatched() int64 {
	return s.total
}

// SourceRow is one ranked entry of a summary
type SourceRow struct {
	Address string
	Stats   *SourceStats
}

// Ranked returns the sources ordered by request count, highest first.
// Equal counts keep first-insertion order.
func (s *Summary) Ranked() []SourceRow {
	rows := make([]SourceRow, 0, len(s.order))
	for _, address := range s.order {
		rows = append(rows, SourceRow{Address: address, Stats: s.sources[address]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Stats.Requests > rows[j].Stats.Requests
	})
	return rows
}

// SummaryConsumer builds a Summary from raw lines
type SummaryConsumer struct {
	parser  *parser.CombinedParser
	status  string
	diag    Diagnostics
	summary *Summary
	stats   types.ScanStats
}

// NewSummaryConsumer creates a summary strategy. An empty status accepts
// every status code. diag may be nil.
func NewSummaryConsumer(p *parser.CombinedParser, status string, diag Diagnostics) *SummaryConsumer {
	if diag == nil {
		diag = nopDiagnostics{}
	}
	return &SummaryConsumer{
		parser:  p,
		status:  status,
		diag:    diag,
		summary: NewSummary(),
	}
}

// Consume implements Consumer
func (c *SummaryConsumer) Consume(line string) {
	m, err := c.parser.Parse(line)
	if err != nil {
		c.stats.Unmatched++
		c.diag.Skipped(err)
		return
	}

	if c.status != "" && m.Status != c.status {
		c.stats.Filtered++
		return
	}

	method := parser.RequestMethod(m.Request)

	ts, err := parser.ParseTimestamp(m.Date)
	if err != nil {
		c.stats.BadTimestamp++
		c.diag.Skipped(err)
		return
	}

	c.summary.Add(m.Address, method, ts)
	c.stats.Matched++
}

// Stats implements Consumer
func (c *SummaryConsumer) Stats() types.ScanStats {
	return c.stats
}

// Summary returns the aggregate built so far
func (c *SummaryConsumer) Summary() *Summary {
	return c.summary
}
