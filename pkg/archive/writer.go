package archive

import (
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

// Writer compresses a document into a bundle written to an io.WriteSeeker.
type Writer struct {
	dst     io.WriteSeeker
	zWriter *zstd.Writer
	header  *Header
	level   int
	written uint64
}

// Option configures compression.
type Option func(*Writer)

// WithCompressionLevel sets the zstd compression level.
func WithCompressionLevel(level int) Option {
	return func(w *Writer) {
		w.level = level
	}
}

// NewWriter creates a new bundle writer that writes to dst.
// The uncompressedSize is the exact size of the document to be written.
func NewWriter(dst io.WriteSeeker, uncompressedSize uint64, opts ...Option) (*Writer, error) {
	w := newWriter(opts)
	w.dst = dst
	w.header = NewHeader(uncompressedSize, 0)

	// Write placeholder header
	headerBytes, err := w.header.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}
	if _, err := dst.Write(headerBytes); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	w.zWriter = zstd.NewWriterLevel(dst, w.level)
	return w, nil
}

func newWriter(opts []Option) *Writer {
	w := &Writer{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write writes compressed data.
func (w *Writer) Write(p []byte) (n int, err error) {
	n, err = w.zWriter.Write(p)
	w.written += uint64(n)
	return n, err
}

// Close finalizes the bundle by updating the header with the compressed size.
func (w *Writer) Close() error {
	if err := w.zWriter.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}
	if w.written != w.header.Length {
		return fmt.Errorf("wrote %d bytes, header declares %d", w.written, w.header.Length)
	}

	pos, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("get position: %w", err)
	}

	w.header.CompressedLength = uint64(pos) - uint64(w.header.Size())

	if _, err := w.dst.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek to start: %w", err)
	}

	headerBytes, err := w.header.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}

	if _, err := w.dst.Write(headerBytes); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := w.dst.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}

	return nil
}

// Encode compresses data and writes it as a bundle to dst.
func Encode(dst io.WriteSeeker, data []byte, opts ...Option) error {
	w, err := NewWriter(dst, uint64(len(data)), opts...)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	return w.Close()
}
