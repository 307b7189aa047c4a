package archive

import (
	"bytes"
	"testing"

	"github.com/DataDog/zstd"
)

// BenchmarkCompression benchmarks compression with different configurations.
func BenchmarkCompression(b *testing.B) {
	data := testDocument(b, 16*1024)

	b.Run("Compress_BestSpeed", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := zstd.CompressLevel(nil, data, zstd.BestSpeed); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Compress_Default", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := zstd.CompressLevel(nil, data, zstd.DefaultCompression); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkDecompression benchmarks decompression with context reuse.
func BenchmarkDecompression(b *testing.B) {
	original := testDocument(b, 4*1024)
	compressed, _ := zstd.Compress(nil, original)

	b.Run("WithoutContext", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := zstd.Decompress(nil, compressed); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("WithContext", func(b *testing.B) {
		ctx := zstd.NewCtx()
		dst := make([]byte, len(original))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := ctx.Decompress(dst, compressed); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkHeader benchmarks header operations.
func BenchmarkHeader(b *testing.B) {
	header := NewHeader(1024*1024, 512*1024)

	b.Run("EncodeTo", func(b *testing.B) {
		buf := make([]byte, HeaderSize)
		for i := 0; i < b.N; i++ {
			header.EncodeTo(buf)
		}
	})

	data, _ := header.MarshalBinary()

	b.Run("Unmarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			h := &Header{}
			if err := h.UnmarshalBinary(data); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkBundle compares in-memory and streamed bundles.
func BenchmarkBundle(b *testing.B) {
	data := testDocument(b, 64*1024)

	b.Run("Pack", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := Pack(data); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Encode", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			if err := Encode(&seekableBuffer{Buffer: &buf}, data); err != nil {
				b.Fatal(err)
			}
		}
	})

	packed, err := Pack(data)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("Unpack", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := Unpack(packed); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("ReadAll", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := ReadAll(bytes.NewReader(packed)); err != nil {
				b.Fatal(err)
			}
		}
	})
}
