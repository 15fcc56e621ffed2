package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/aggregator"
	"github.com/therealutkarshpriyadarshi/accesslog/pkg/types"
)

// SourceJSON is one source address in the JSON summary
type SourceJSON struct {
	Address   string           `json:"address"`
	Requests  int64            `json:"requests"`
	Methods   map[string]int64 `json:"methods"`
	FirstSeen *time.Time       `json:"first_seen,omitempty"`
	LastSeen  *time.Time       `json:"last_seen,omitempty"`
}

// SummaryJSON is the JSON form of the summary report
type SummaryJSON struct {
	Total   int64        `json:"total"`
	Sources []SourceJSON `json:"sources"`
}

// DetailJSON is the JSON form of the detail report
type DetailJSON struct {
	Title    string            `json:"title"`
	Total    int               `json:"total"`
	Requests []types.LogRecord `json:"requests"`
}

// SummaryAsJSON renders the ranked sources as an indented JSON document
func SummaryAsJSON(w io.Writer, rows []aggregator.SourceRow, total int64) error {
	doc := SummaryJSON{
		Total:   total,
		Sources: make([]SourceJSON, 0, len(rows)),
	}
	for _, r := range rows {
		doc.Sources = append(doc.Sources, SourceJSON{
			Address:   r.Address,
			Requests:  r.Stats.Requests,
			Methods:   r.Stats.Methods,
			FirstSeen: r.Stats.FirstSeen,
			LastSeen:  r.Stats.LastSeen,
		})
	}
	return encode(w, doc)
}

// DetailAsJSON renders records as an indented JSON document
func DetailAsJSON(w io.Writer, records []types.LogRecord, title string) error {
	if title == "" {
		title = DefaultDetailTitle
	}
	if records == nil {
		records = []types.LogRecord{}
	}
	return encode(w, DetailJSON{
		Title:    title,
		Total:    len(records),
		Requests: records,
	})
}

func encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
