package chunk

import (
	"bytes"
	"math"
)

var zeroPad [Alignment]byte

// Writer accumulates encoded chunks.
//
// Nested chunks are encoded into a child Writer first, so a header is only
// written once the length of everything that follows it is known.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Leaf writes a chunk with the given payload followed by zero padding.
func (w *Writer) Leaf(tag Tag, payload []byte) error {
	return w.LeafPad(tag, payload, nil)
}

// LeafPad writes a chunk followed by pad. A pad whose length does not match
// the payload alignment is replaced with zeros.
func (w *Writer) LeafPad(tag Tag, payload, pad []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return Encodingf("payload of %s is %d bytes, exceeds uint32", tag, len(payload))
	}

	h := Header{Tag: tag, Length: uint32(len(payload))}
	var hdr [HeaderSize]byte
	h.EncodeTo(hdr[:])

	w.buf.Write(hdr[:])
	w.buf.Write(payload)
	n := Padding(len(payload))
	if len(pad) != n {
		pad = zeroPad[:n]
	}
	w.buf.Write(pad)
	return nil
}

// Nested writes a composite chunk whose payload is produced by fn.
func (w *Writer) Nested(tag Tag, fn func(*Writer) error) error {
	child := &Writer{}
	if err := fn(child); err != nil {
		return err
	}
	return w.Leaf(tag, child.Bytes())
}

// Write appends raw payload bytes to the chunk being built.
func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// Chunk re-emits a previously read chunk verbatim, padding included.
func (w *Writer) Chunk(c Chunk) error {
	return w.LeafPad(c.Header.Tag, c.Data, c.Pad)
}

// Bytes returns the encoded data. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}
