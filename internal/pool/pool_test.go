package pool

import (
	"strings"
	"testing"
)

func TestReaderPool(t *testing.T) {
	br := GetReader(strings.NewReader("first\nsecond\n"))
	if br == nil {
		t.Fatal("Expected non-nil reader")
	}

	line, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	if line != "first\n" {
		t.Errorf("Expected 'first\\n', got %q", line)
	}

	PutReader(br)

	// A recycled reader must not leak buffered data from its previous source
	br2 := GetReader(strings.NewReader("other\n"))
	line, err = br2.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	if line != "other\n" {
		t.Errorf("Expected 'other\\n', got %q", line)
	}
	PutReader(br2)

	if br2.Size() != ReaderSize {
		t.Errorf("Expected reader size %d, got %d", ReaderSize, br2.Size())
	}
}

func TestPutReaderNil(t *testing.T) {
	// Should not panic
	PutReader(nil)
}

func TestByteBufferPool(t *testing.T) {
	buf := GetByteBuffer()
	if buf == nil {
		t.Fatal("Expected non-nil buffer")
	}

	if buf.Len() != 0 {
		t.Errorf("Expected empty buffer, got %d bytes", buf.Len())
	}

	data := []byte("test data")
	buf.Write(data)

	if buf.Len() != len(data) {
		t.Errorf("Expected %d bytes, got %d", len(data), buf.Len())
	}

	PutByteBuffer(buf)

	buf2 := GetByteBuffer()
	if buf2.Len() != 0 {
		t.Errorf("Expected empty buffer, got %d bytes", buf2.Len())
	}
}

func TestPutByteBufferLarge(t *testing.T) {
	buf := GetByteBuffer()
	buf.Grow(128 * 1024)

	// Oversized buffers are dropped instead of pooled; must not panic
	PutByteBuffer(buf)
	PutByteBuffer(nil)
}
