package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/parser"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/pool"
	"github.com/therealutkarshpriyadarshi/accesslog/pkg/types"
)

// Titles of the detail report
const (
	DefaultDetailTitle = "Activity Report"
	addressTitle       = "Report for IP: "

	detailRule = 80
)

// AddressTitle returns the title of a single-address detail report
func AddressTitle(address string) string {
	return addressTitle + address
}

// Detail renders records, already in chronological order, one block per
// request.
func Detail(w io.Writer, records []types.LogRecord, title string) error {
	buf := pool.GetByteBuffer()
	defer pool.PutByteBuffer(buf)

	if len(records) == 0 {
		buf.WriteString("No records found.\n")
		_, err := w.Write(buf.Bytes())
		return err
	}

	if title == "" {
		title = DefaultDetailTitle
	}

	fmt.Fprintf(buf, "\n%s\n", title)
	fmt.Fprintf(buf, "Total Requests found: %d\n", len(records))

	rule := strings.Repeat("=", detailRule) + "\n"
	for i, r := range records {
		buf.WriteString(rule)
		fmt.Fprintf(buf, "Request #%d at %s\n", i+1, r.RawDate)
		fmt.Fprintf(buf, "  IP:         %s\n", r.SourceAddress)
		fmt.Fprintf(buf, "  Method:     %s (Status: %s)\n", r.Method, r.Status)
		fmt.Fprintf(buf, "  Path:       %s\n", r.Path)
		if r.Query != parser.NoValue {
			fmt.Fprintf(buf, "  Params:     %s\n", r.Query)
		}
		fmt.Fprintf(buf, "  User Agent: %s\n", r.UserAgent)
	}

	_, err := w.Write(buf.Bytes())
	return err
}
