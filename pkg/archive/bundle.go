package archive

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/zstd"

	"github.com/goopsie/vfxFileTools/pkg/chunk"
)

// ErrNotDocument is returned when a payload is not chunk data.
var ErrNotDocument = errors.New("archive: payload is not chunk data")

func checkDocument(data []byte) error {
	chunks, err := chunk.Split(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotDocument, err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: empty", ErrNotDocument)
	}
	return nil
}

// Pack compresses a serialized document or definition into a bundle.
func Pack(data []byte, opts ...Option) ([]byte, error) {
	if err := checkDocument(data); err != nil {
		return nil, err
	}
	w := newWriter(opts)

	compressed, err := zstd.CompressLevel(nil, data, w.level)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	out := make([]byte, HeaderSize, HeaderSize+len(compressed))
	NewHeader(uint64(len(data)), uint64(len(compressed))).EncodeTo(out)
	return append(out, compressed...), nil
}

// Unpack returns the document stored in a bundle.
func Unpack(data []byte) ([]byte, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	payload := data[HeaderSize:]
	if uint64(len(payload)) != h.CompressedLength {
		return nil, fmt.Errorf("compressed size mismatch: header %d, got %d", h.CompressedLength, len(payload))
	}

	out, err := zstd.Decompress(make([]byte, h.Length), payload)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if uint64(len(out)) != h.Length {
		return nil, fmt.Errorf("size mismatch: header %d, got %d", h.Length, len(out))
	}
	return out, nil
}

// ReadFile reads a document from path. Bundles are decompressed; anything
// else is returned as stored.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var magic [4]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}

	if !IsBundle(magic[:n]) {
		return io.ReadAll(f)
	}
	data, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to path as a bundle.
func WriteFile(path string, data []byte, opts ...Option) error {
	if err := checkDocument(data); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, data, opts...); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
