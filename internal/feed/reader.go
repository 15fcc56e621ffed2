package feed

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/pool"
	"github.com/therealutkarshpriyadarshi/accesslog/pkg/types"
)

// LineFunc receives one decoded line without its line terminator
type LineFunc func(line string)

// ReadLines reads r line by line and hands every valid UTF-8 line to fn.
// Lines that are not valid UTF-8 are counted as undecodable and dropped.
// A read error stops the file; lines delivered before it stay delivered.
func ReadLines(r io.Reader, fn LineFunc) (types.ScanStats, error) {
	var stats types.ScanStats

	br := pool.GetReader(r)
	defer pool.PutReader(br)

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			stats.LinesRead++
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")

			if utf8.ValidString(line) {
				fn(line)
			} else {
				stats.Undecodable++
			}
		}

		if err != nil {
			if err == io.EOF {
				return stats, nil
			}
			return stats, fmt.Errorf("error reading file: %w", err)
		}
	}
}
