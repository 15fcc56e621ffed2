package feed

import (
	"fmt"
	"io"
	"os"
)

// Source is an opened log file yielding decompressed bytes
type Source struct {
	Path        string
	Compression CompressionType

	file   *os.File
	reader io.ReadCloser
}

// Open opens path and wraps it in the decompressor matching its extension
func Open(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	compression := DetectCompression(path)
	reader, err := NewDecompressor(compression, file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Source{
		Path:        path,
		Compression: compression,
		file:        file,
		reader:      reader,
	}, nil
}

// Read implements io.Reader
func (s *Source) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

// Close closes the decompressor and the underlying file
func (s *Source) Close() error {
	rerr := s.reader.Close()
	ferr := s.file.Close()
	if rerr != nil {
		return rerr
	}
	return ferr
}
