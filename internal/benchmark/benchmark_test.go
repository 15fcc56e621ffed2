package benchmark

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/therealutkarshpriyadarshi/accesslog/internal/aggregator"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/parser"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/pool"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/report"
	"github.com/therealutkarshpriyadarshi/accesslog/internal/scan"
)

var logLines = []string{
	`1.2.3.4 - - [10/Oct/2023:13:55:36 +0000] "GET /a?x=1 HTTP/1.1" 200 512 "-" "Mozilla/5.0 (X11; Linux x86_64)"`,
	`10.0.0.1 - - [10/Oct/2023:13:55:37 +0000] "POST /api/login HTTP/1.1" 302 0 "https://example.com/" "curl/8.0"`,
	`192.168.1.7 - alice [10/Oct/2023:13:55:38 +0000] "GET /static/app.js HTTP/2.0" 304 0 "-" "Mozilla/5.0"`,
	`2001:db8::1 - - [10/Oct/2023:13:55:39 +0000] "DELETE /api/items/42 HTTP/1.1" 404 153 "-" "python-requests/2.31"`,
}

// BenchmarkParserCombined benchmarks the combined line grammar
func BenchmarkParserCombined(b *testing.B) {
	p := parser.NewCombinedParser()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(logLines[i%len(logLines)]); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "lines/sec")
}

// BenchmarkParserNoMatch benchmarks rejection of malformed lines
func BenchmarkParserNoMatch(b *testing.B) {
	p := parser.NewCombinedParser()
	line := strings.Repeat("garbage ", 32)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(line)
	}
}

// BenchmarkDecomposeRequest benchmarks request-line splitting
func BenchmarkDecomposeRequest(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, _ = parser.DecomposeRequest("GET /a/b/c?x=1&y=2 HTTP/1.1")
	}
}

// BenchmarkParseTimestamp benchmarks date normalization
func BenchmarkParseTimestamp(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := parser.ParseTimestamp("10/Oct/2023:13:55:36 +0000"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkConsumers benchmarks both aggregation strategies
func BenchmarkConsumers(b *testing.B) {
	p := parser.NewCombinedParser()

	queries := map[string]aggregator.Query{
		"Summary":       {},
		"SummaryStatus": {Status: "404"},
		"DetailAddress": {Address: "1.2.3.4"},
		"DetailAll":     {Detail: true},
	}

	for name, q := range queries {
		b.Run(name, func(b *testing.B) {
			c := aggregator.New(q, p, nil)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				c.Consume(logLines[i%len(logLines)])
			}
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "lines/sec")
		})
	}
}

// BenchmarkByteBufferPooling benchmarks byte buffer pooling
func BenchmarkByteBufferPooling(b *testing.B) {
	data := []byte("1.2.3.4            | 3        | GET(2), POST(1)                |")

	b.Run("WithoutPool", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var buf []byte
			buf = append(buf, data...)
			_ = buf
		}
	})

	b.Run("WithPool", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			buf := pool.GetByteBuffer()
			buf.Write(data)
			pool.PutByteBuffer(buf)
		}
	})
}

// BenchmarkParallelParsing benchmarks the shared parser under contention
func BenchmarkParallelParsing(b *testing.B) {
	p := parser.NewCombinedParser()

	for _, workers := range []int{1, 2, 4, 8, 16} {
		b.Run(fmt.Sprintf("Workers-%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			b.SetParallelism(workers)
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					_, _ = p.Parse(logLines[i%len(logLines)])
					i++
				}
			})
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "lines/sec")
		})
	}
}

func writeLogFiles(b *testing.B, files, linesPerFile int) []string {
	b.Helper()
	dir := b.TempDir()

	var content strings.Builder
	for i := 0; i < linesPerFile; i++ {
		content.WriteString(logLines[i%len(logLines)])
		content.WriteByte('\n')
	}

	paths := make([]string, files)
	for i := range paths {
		data := []byte(content.String())
		name := fmt.Sprintf("access.log.%d", i)
		if i%2 == 1 {
			var buf bytes.Buffer
			w := gzip.NewWriter(&buf)
			w.Write(data)
			w.Close()
			data = buf.Bytes()
			name += ".gz"
		}
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], data, 0644); err != nil {
			b.Fatal(err)
		}
	}
	return paths
}

// BenchmarkEndToEnd benchmarks scanning and rendering a rotated log set
func BenchmarkEndToEnd(b *testing.B) {
	paths := writeLogFiles(b, 8, 5000)

	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("Workers-%d", workers), func(b *testing.B) {
			s := scan.New(scan.Config{Workers: workers})
			var out bytes.Buffer

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				result, err := s.Scan(context.Background(), paths)
				if err != nil {
					b.Fatal(err)
				}

				out.Reset()
				if err := report.Summary(&out, result.Summary.Ranked(), result.Summary.TotalMatched()); err != nil {
					b.Fatal(err)
				}
			}

			b.ReportMetric(float64(b.N*len(paths)*5000)/b.Elapsed().Seconds(), "lines/sec")
		})
	}
}
