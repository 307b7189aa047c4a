package avfx

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/goopsie/vfxFileTools/pkg/chunk"
)

type leaf struct {
	tag      string
	assigned bool
}

func (l *leaf) Tag() string                { return l.tag }
func (l *leaf) IsAssigned() bool           { return l.assigned }
func (l *leaf) SetAssigned(assigned bool) { l.assigned = assigned }

func checkWidth(data []byte, tag string, want int) error {
	if len(data) != want {
		return chunk.Formatf(0, tag, "payload is %d bytes, want %d", len(data), want)
	}
	return nil
}

// Bool is a one-byte flag. Values other than 0 and 1 are kept as read.
type Bool struct {
	leaf
	value byte
	def   bool
}

func NewBool(tag string, def bool) *Bool {
	b := &Bool{leaf: leaf{tag: tag}, def: def}
	b.reset()
	return b
}

func (b *Bool) Value() bool { return b.value != 0 }

func (b *Bool) SetValue(v bool) {
	b.assigned = true
	b.value = boolByte(v)
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func (b *Bool) ToDefault() { b.value = boolByte(b.def); b.assigned = true }
func (b *Bool) reset()     { b.value = boolByte(b.def); b.assigned = false }

func (b *Bool) readContents(_ *decoder, data []byte) error {
	if err := checkWidth(data, b.tag, 1); err != nil {
		return err
	}
	b.value = data[0]
	return nil
}

func (b *Bool) writeContents(_ *encoder, w *chunk.Writer) error {
	_, err := w.Write([]byte{b.value})
	return err
}

func (b *Bool) Bits() []byte { return []byte{b.value} }

func (b *Bool) String() string {
	if b.value > 1 {
		return fmt.Sprintf("true(%#x)", b.value)
	}
	return strconv.FormatBool(b.value == 1)
}

// Int is a signed little-endian integer of width 1, 2 or 4 bytes.
type Int struct {
	leaf
	width int
	value int64
	def   int64
}

// NewInt creates a 4-byte integer.
func NewInt(tag string, def int) *Int {
	return NewIntN(tag, 4, def)
}

// NewIntN creates an integer of the given width.
func NewIntN(tag string, width int, def int) *Int {
	switch width {
	case 1, 2, 4:
	default:
		panic(fmt.Sprintf("avfx: invalid int width %d", width))
	}
	i := &Int{leaf: leaf{tag: tag}, width: width, def: int64(def)}
	i.reset()
	return i
}

func (i *Int) Width() int { return i.width }
func (i *Int) Value() int { return int(i.value) }

func (i *Int) SetValue(v int) {
	i.assigned = true
	i.value = int64(v)
}

func (i *Int) ToDefault() { i.value = i.def; i.assigned = true }
func (i *Int) reset()     { i.value = i.def; i.assigned = false }

func (i *Int) readContents(_ *decoder, data []byte) error {
	if err := checkWidth(data, i.tag, i.width); err != nil {
		return err
	}
	switch i.width {
	case 1:
		i.value = int64(int8(data[0]))
	case 2:
		i.value = int64(int16(binary.LittleEndian.Uint16(data)))
	default:
		i.value = int64(int32(binary.LittleEndian.Uint32(data)))
	}
	return nil
}

func (i *Int) writeContents(_ *encoder, w *chunk.Writer) error {
	buf := make([]byte, i.width)
	switch i.width {
	case 1:
		if i.value < math.MinInt8 || i.value > math.MaxInt8 {
			return chunk.Encodingf("%s value %d does not fit in 1 byte", i.tag, i.value)
		}
		buf[0] = byte(i.value)
	case 2:
		if i.value < math.MinInt16 || i.value > math.MaxInt16 {
			return chunk.Encodingf("%s value %d does not fit in 2 bytes", i.tag, i.value)
		}
		binary.LittleEndian.PutUint16(buf, uint16(i.value))
	default:
		if i.value < math.MinInt32 || i.value > math.MaxInt32 {
			return chunk.Encodingf("%s value %d does not fit in 4 bytes", i.tag, i.value)
		}
		binary.LittleEndian.PutUint32(buf, uint32(i.value))
	}
	_, err := w.Write(buf)
	return err
}

func (i *Int) Bits() []byte {
	return binary.LittleEndian.AppendUint64(nil, uint64(i.value))
}

func (i *Int) String() string { return strconv.FormatInt(i.value, 10) }

// Float is a 32-bit IEEE 754 value. The bit pattern is kept as read, so NaN
// payloads survive a round trip.
type Float struct {
	leaf
	bits uint32
	def  float32
}

func NewFloat(tag string, def float32) *Float {
	f := &Float{leaf: leaf{tag: tag}, def: def}
	f.reset()
	return f
}

func (f *Float) Value() float32 { return math.Float32frombits(f.bits) }

func (f *Float) SetValue(v float32) {
	f.assigned = true
	f.bits = math.Float32bits(v)
}

func (f *Float) ToDefault() { f.bits = math.Float32bits(f.def); f.assigned = true }
func (f *Float) reset()     { f.bits = math.Float32bits(f.def); f.assigned = false }

func (f *Float) readContents(_ *decoder, data []byte) error {
	if err := checkWidth(data, f.tag, 4); err != nil {
		return err
	}
	f.bits = binary.LittleEndian.Uint32(data)
	return nil
}

func (f *Float) writeContents(_ *encoder, w *chunk.Writer) error {
	_, err := w.Write(binary.LittleEndian.AppendUint32(nil, f.bits))
	return err
}

func (f *Float) Bits() []byte { return binary.LittleEndian.AppendUint32(nil, f.bits) }

func (f *Float) String() string {
	return strconv.FormatFloat(float64(f.Value()), 'g', -1, 32)
}

// Enum is a 4-byte enumeration. Values without a name are preserved.
type Enum[T ~int32] struct {
	leaf
	value int32
	def   T
}

func NewEnum[T ~int32](tag string, def T) *Enum[T] {
	e := &Enum[T]{leaf: leaf{tag: tag}, def: def}
	e.reset()
	return e
}

func (e *Enum[T]) Value() T { return T(e.value) }

func (e *Enum[T]) SetValue(v T) {
	e.assigned = true
	e.value = int32(v)
}

func (e *Enum[T]) ToDefault() { e.value = int32(e.def); e.assigned = true }
func (e *Enum[T]) reset()     { e.value = int32(e.def); e.assigned = false }

func (e *Enum[T]) readContents(_ *decoder, data []byte) error {
	if err := checkWidth(data, e.tag, 4); err != nil {
		return err
	}
	e.value = int32(binary.LittleEndian.Uint32(data))
	return nil
}

func (e *Enum[T]) writeContents(_ *encoder, w *chunk.Writer) error {
	_, err := w.Write(e.Bits())
	return err
}

func (e *Enum[T]) Bits() []byte { return binary.LittleEndian.AppendUint32(nil, uint32(e.value)) }

func (e *Enum[T]) String() string { return fmt.Sprint(T(e.value)) }

// Text is a NUL-terminated string. The payload is kept verbatim, including
// anything after the first NUL.
type Text struct {
	leaf
	raw []byte
	def string
}

func NewText(tag string, def string) *Text {
	t := &Text{leaf: leaf{tag: tag}, def: def}
	t.reset()
	return t
}

func (t *Text) Value() string {
	for i, c := range t.raw {
		if c == 0 {
			return string(t.raw[:i])
		}
	}
	return string(t.raw)
}

func (t *Text) SetValue(s string) {
	t.assigned = true
	t.raw = append([]byte(s), 0)
}

func (t *Text) ToDefault() { t.raw = append([]byte(t.def), 0); t.assigned = true }
func (t *Text) reset()     { t.raw = append([]byte(t.def), 0); t.assigned = false }

func (t *Text) readContents(_ *decoder, data []byte) error {
	t.raw = append([]byte(nil), data...)
	return nil
}

func (t *Text) writeContents(_ *encoder, w *chunk.Writer) error {
	_, err := w.Write(t.raw)
	return err
}

func (t *Text) Bits() []byte   { return t.raw }
func (t *Text) String() string { return strconv.Quote(t.Value()) }

// Bytes is an opaque byte payload.
type Bytes struct {
	leaf
	data []byte
}

func NewBytes(tag string) *Bytes {
	return &Bytes{leaf: leaf{tag: tag}}
}

func (b *Bytes) Value() []byte { return b.data }

func (b *Bytes) SetValue(data []byte) {
	b.assigned = true
	b.data = data
}

func (b *Bytes) ToDefault() { b.data = nil; b.assigned = true }
func (b *Bytes) reset()     { b.data = nil; b.assigned = false }

func (b *Bytes) readContents(_ *decoder, data []byte) error {
	b.data = append([]byte(nil), data...)
	return nil
}

func (b *Bytes) writeContents(_ *encoder, w *chunk.Writer) error {
	_, err := w.Write(b.data)
	return err
}

func (b *Bytes) Bits() []byte   { return b.data }
func (b *Bytes) String() string { return fmt.Sprintf("%d bytes", len(b.data)) }

// Count is a derived 4-byte count of another item's elements. It is always
// written from the live element count; the value read is only checked.
type Count struct {
	leaf
	of   func() int
	read int32
}

func newCount(tag string, of func() int) *Count {
	return &Count{leaf: leaf{tag: tag}, of: of}
}

// Value returns the current element count.
func (c *Count) Value() int { return c.of() }

// Read returns the count found in the input, if any.
func (c *Count) Read() int { return int(c.read) }

func (c *Count) ToDefault() { c.read = 0; c.assigned = true }
func (c *Count) reset()     { c.read = 0; c.assigned = false }

func (c *Count) readContents(_ *decoder, data []byte) error {
	if err := checkWidth(data, c.tag, 4); err != nil {
		return err
	}
	c.read = int32(binary.LittleEndian.Uint32(data))
	return nil
}

func (c *Count) check(d *decoder) {
	if c.assigned && int(c.read) != c.of() {
		d.warnf("%s is %d but %d elements are present", c.tag, c.read, c.of())
	}
}

func (c *Count) writeContents(_ *encoder, w *chunk.Writer) error {
	n := c.of()
	if n > math.MaxInt32 {
		return chunk.Encodingf("%s count %d exceeds int32", c.tag, n)
	}
	_, err := w.Write(binary.LittleEndian.AppendUint32(nil, uint32(n)))
	return err
}

func (c *Count) Bits() []byte {
	return binary.LittleEndian.AppendUint64(nil, uint64(c.of()))
}

func (c *Count) String() string { return strconv.Itoa(c.of()) }

// Raw is a chunk kept verbatim, either because its tag is unknown to the
// enclosing block or because its structure is not modelled.
type Raw struct {
	tag      chunk.Tag
	assigned bool
	data     []byte
	pad      []byte
}

func newRaw(c chunk.Chunk) *Raw {
	r := &Raw{tag: c.Header.Tag, assigned: true, data: append([]byte(nil), c.Data...)}
	if c.Dirty() {
		r.pad = append([]byte(nil), c.Pad...)
	}
	return r
}

// NewRaw creates an unassigned raw item with a known tag.
func NewRaw(tag string) *Raw {
	return &Raw{tag: chunk.MustTag(tag)}
}

func (r *Raw) Tag() string                { return r.tag.String() }
func (r *Raw) RawTag() chunk.Tag          { return r.tag }
func (r *Raw) IsAssigned() bool           { return r.assigned }
func (r *Raw) SetAssigned(assigned bool) { r.assigned = assigned }
func (r *Raw) Data() []byte               { return r.data }

func (r *Raw) SetData(data []byte) {
	r.assigned = true
	r.data = data
	r.pad = nil
}

func (r *Raw) ToDefault() { r.data, r.pad = nil, nil; r.assigned = false }
func (r *Raw) reset()     { r.data, r.pad = nil, nil; r.assigned = false }

func (r *Raw) readContents(_ *decoder, data []byte) error {
	r.data = append([]byte(nil), data...)
	return nil
}

func (r *Raw) chunk() chunk.Chunk {
	return chunk.Chunk{Header: chunk.Header{Tag: r.tag, Length: uint32(len(r.data))}, Data: r.data, Pad: r.pad}
}

func (r *Raw) writeContents(_ *encoder, w *chunk.Writer) error {
	_, err := w.Write(r.data)
	return err
}

func (r *Raw) Bits() []byte   { return r.data }
func (r *Raw) String() string { return fmt.Sprintf("%d raw bytes", len(r.data)) }
