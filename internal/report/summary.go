package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/aggregator"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/pool"
)

const (
	// TimeFormat renders first/last seen in the summary table
	TimeFormat = "2006-01-02 15:04"

	// MaxMethodsWidth is the longest method mix shown before truncation
	MaxMethodsWidth = 29

	summaryRule = 100
	noTime      = "-"
)

// summaryFormat lays out one table line: address, count, methods, first, last
const summaryFormat = "%-18s | %-8v | %-30s | %-16s | %-16s\n"

// SummaryRow is one rendered line of the summary table
type SummaryRow struct {
	Address   string
	Requests  int64
	Methods   string
	FirstSeen string
	LastSeen  string
}

// SummaryRows assembles display rows from ranked sources
func SummaryRows(rows []aggregator.SourceRow) []SummaryRow {
	out := make([]SummaryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, SummaryRow{
			Address:   r.Address,
			Requests:  r.Stats.Requests,
			Methods:   Truncate(MethodMix(r.Stats.Methods), MaxMethodsWidth),
			FirstSeen: FormatTime(r.Stats.FirstSeen),
			LastSeen:  FormatTime(r.Stats.LastSeen),
		})
	}
	return out
}

type methodCount struct {
	method string
	count  int64
}

func sortedMethods(methods map[string]int64) []methodCount {
	counts := make([]methodCount, 0, len(methods))
	for m, c := range methods {
		counts = append(counts, methodCount{m, c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].method < counts[j].method
	})
	return counts
}

// MethodMix renders method counts as "GET(3), POST(1)", busiest first.
// Equal counts are ordered by method name.
func MethodMix(methods map[string]int64) string {
	parts := make([]string, 0, len(methods))
	for _, mc := range sortedMethods(methods) {
		parts = append(parts, fmt.Sprintf("%s(%d)", mc.method, mc.count))
	}
	return strings.Join(parts, ", ")
}

// Truncate shortens s to max-3 runes plus "..." when it is longer than max
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// FormatTime renders t with TimeFormat, or "-" when unset
func FormatTime(t *time.Time) string {
	if t == nil {
		return noTime
	}
	return t.Format(TimeFormat)
}

// Summary renders the ranked per-source table
func Summary(w io.Writer, rows []aggregator.SourceRow, total int64) error {
	buf := pool.GetByteBuffer()
	defer pool.PutByteBuffer(buf)

	if total == 0 {
		buf.WriteString("No requests found matching criteria.\n")
		_, err := w.Write(buf.Bytes())
		return err
	}

	rule := strings.Repeat("-", summaryRule) + "\n"

	buf.WriteString(rule)
	fmt.Fprintf(buf, summaryFormat, "IP ADDRESS", "COUNT", "METHODS", "FIRST SEEN", "LAST SEEN")
	buf.WriteString(rule)

	for _, r := range SummaryRows(rows) {
		fmt.Fprintf(buf, summaryFormat, r.Address, r.Requests, r.Methods, r.FirstSeen, r.LastSeen)
	}

	buf.WriteString(rule)
	fmt.Fprintf(buf, "TOTAL REQUESTS FOUND: %d\n", total)

	_, err := w.Write(buf.Bytes())
	return err
}
