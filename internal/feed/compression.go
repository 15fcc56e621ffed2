package feed

import (
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

// CompressionType represents the compression of a log file
type CompressionType string

const (
	CompressionNone   CompressionType = "none"
	CompressionGzip   CompressionType = "gzip"
	CompressionSnappy CompressionType = "snappy"
)

// DetectCompression picks the compression of a file from its extension.
// Rotated logs are named like access.log.2.gz, so only the final extension
// counts.
func DetectCompression(path string) CompressionType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".sz", ".snappy":
		return CompressionSnappy
	default:
		return CompressionNone
	}
}

// NewDecompressor wraps r so that reads return decompressed data.
// Snappy files are expected in the framed stream format.
func NewDecompressor(compressionType CompressionType, r io.Reader) (io.ReadCloser, error) {
	switch compressionType {
	case CompressionNone, "":
		return io.NopCloser(r), nil
	case CompressionGzip:
		reader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader creation failed: %w", err)
		}
		return reader, nil
	case CompressionSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}
