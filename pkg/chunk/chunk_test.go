package chunk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag(t *testing.T) {
	tests := []struct {
		name string
		disk [4]byte
	}{
		{"AVFX", [4]byte{'X', 'F', 'V', 'A'}},
		{"Ptcl", [4]byte{'l', 'c', 't', 'P'}},
		{"Tex", [4]byte{'x', 'e', 'T', 0}},
		{"TP", [4]byte{'P', 'T', 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := ParseTag(tt.name)
			require.NoError(t, err)
			assert.Equal(t, Tag(tt.disk), tag)
			assert.Equal(t, tt.name, tag.String())
		})
	}

	t.Run("TooLong", func(t *testing.T) {
		_, err := ParseTag("Toolong")
		assert.Error(t, err)
	})
}

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := &Header{Tag: MustTag("Keys"), Length: 32}

		data, err := original.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, HeaderSize)

		decoded := &Header{}
		require.NoError(t, decoded.UnmarshalBinary(data))
		assert.Equal(t, *original, *decoded)
	})

	t.Run("EmptyTag", func(t *testing.T) {
		h := &Header{Length: 4}
		assert.Error(t, h.Validate())
	})

	t.Run("PaddedLength", func(t *testing.T) {
		for length, want := range map[uint32]int{0: 0, 1: 4, 4: 4, 5: 8, 7: 8} {
			h := Header{Tag: MustTag("bEna"), Length: length}
			assert.Equal(t, want, h.PaddedLength(), "length %d", length)
		}
	})
}

func TestWriterSplit(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Leaf(MustTag("bEna"), []byte{1}))
	require.NoError(t, w.Nested(MustTag("TC1"), func(cw *Writer) error {
		return cw.Leaf(MustTag("TxNo"), []byte{3, 0, 0, 0})
	}))

	// 8+1+3 for the bool, 8 + (8+4) for the nested chunk
	require.Equal(t, 12+20, w.Len())

	chunks, err := Split(w.Bytes())
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "bEna", chunks[0].Name())
	assert.Equal(t, []byte{1}, chunks[0].Data)
	assert.Equal(t, 0, chunks[0].Offset)

	assert.Equal(t, "TC1", chunks[1].Name())
	assert.Equal(t, 12, chunks[1].Offset)

	inner, err := Split(chunks[1].Data)
	require.NoError(t, err)
	require.Len(t, inner, 1)
	assert.Equal(t, "TxNo", inner[0].Name())
}

func TestPadding(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Leaf(MustTag("bEna"), []byte{1}))
	require.NoError(t, w.Leaf(MustTag("bDis"), []byte{0}))
	data := append([]byte(nil), w.Bytes()...)
	data[10] = 0xcd

	chunks, err := Split(data)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.True(t, chunks[0].Dirty())
	assert.Equal(t, []byte{0, 0xcd, 0}, chunks[0].Pad)
	assert.False(t, chunks[1].Dirty())
	assert.Nil(t, chunks[1].Pad)

	out := NewWriter()
	for _, c := range chunks {
		require.NoError(t, out.Chunk(c))
	}
	assert.Equal(t, data, out.Bytes())

	t.Run("WrongLengthZeroed", func(t *testing.T) {
		w := NewWriter()
		require.NoError(t, w.LeafPad(MustTag("bEna"), []byte{1}, []byte{9}))
		assert.Equal(t, []byte{0, 0, 0}, w.Bytes()[9:])
	})
}

func TestSplitErrors(t *testing.T) {
	valid := NewWriter()
	require.NoError(t, valid.Leaf(MustTag("Ver"), []byte{1, 2, 3, 4}))
	data := valid.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"TruncatedHeader", data[:5]},
		{"Overrun", data[:10]},
		{"BadTag", append([]byte{0x01, 0x02, 0x03, 0x04}, data[4:]...)},
		{"TruncatedPadding", func() []byte {
			w := NewWriter()
			_ = w.Leaf(MustTag("bEna"), []byte{1})
			return w.Bytes()[:9]
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat), "want ErrFormat, got %v", err)

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, 0, fe.Offset)
		})
	}
}

func TestWithPath(t *testing.T) {
	err := error(Formatf(8, "Keys", "bad keys"))
	err = WithPath(err, "Life")
	err = WithPath(err, "Ptcl[0]")

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"Ptcl[0]", "Life"}, fe.Path)
	assert.Contains(t, err.Error(), "Ptcl[0]/Life")
}
