// Package chunk provides framing for AVFX-style tag-length-value chunks.
//
// Every chunk is an 8-byte header (4-byte tag, little-endian uint32 length)
// followed by Length bytes of payload and zero padding up to the next
// 4-byte boundary. The payload of a composite chunk is itself a sequence of
// chunks.
package chunk

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed binary size of a chunk header.
const HeaderSize = 8 // 4 + 4 bytes

// Alignment is the boundary every chunk is padded to.
const Alignment = 4

// Tag is the on-disk form of a chunk name.
//
// Names are stored reversed and NUL padded, so "Ptcl" is written as "lctP"
// and "Tex" as "xeT\x00".
type Tag [4]byte

// ParseTag converts a chunk name of at most four characters to its on-disk tag.
func ParseTag(name string) (Tag, error) {
	var t Tag
	if len(name) == 0 || len(name) > 4 {
		return t, fmt.Errorf("invalid tag name %q: want 1-4 bytes", name)
	}
	for i := 0; i < len(name); i++ {
		t[i] = name[len(name)-1-i]
	}
	return t, nil
}

// MustTag is like ParseTag but panics on an invalid name. It is meant for
// compile-time constant names.
func MustTag(name string) Tag {
	t, err := ParseTag(name)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the chunk name.
func (t Tag) String() string {
	n := 4
	for n > 0 && t[n-1] == 0 {
		n--
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = t[n-1-i]
	}
	return string(buf)
}

// Header is the fixed prefix of every chunk.
type Header struct {
	Tag    Tag
	Length uint32 // Payload size, padding excluded
}

// Size returns the binary size of the header.
func (h *Header) Size() int {
	return HeaderSize
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Tag == (Tag{}) {
		return fmt.Errorf("empty tag")
	}
	for _, c := range h.Tag {
		if c != 0 && (c < 0x20 || c > 0x7e) {
			return fmt.Errorf("non-printable tag %x", h.Tag)
		}
	}
	return nil
}

// PaddedLength returns the payload length rounded up to Alignment.
func (h *Header) PaddedLength() int {
	return int(h.Length) + Padding(int(h.Length))
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to the given buffer.
// The buffer must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Tag[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Length)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("header data too short: need %d, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from the given buffer.
// Does not validate - use UnmarshalBinary for validation.
func (h *Header) DecodeFrom(data []byte) {
	copy(h.Tag[:], data[0:4])
	h.Length = binary.LittleEndian.Uint32(data[4:8])
}

// Padding returns the number of zero bytes that follow a payload of size n.
func Padding(n int) int {
	if r := n % Alignment; r != 0 {
		return Alignment - r
	}
	return 0
}
