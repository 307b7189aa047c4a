package chunk

// Chunk is a single framed record. Data aliases the buffer it was read from.
type Chunk struct {
	Offset int // Offset of the header within the parent payload
	Header Header
	Data   []byte
	Pad    []byte // Padding bytes as read, nil when they are all zero
}

// Name returns the chunk name.
func (c *Chunk) Name() string {
	return c.Header.Tag.String()
}

// Size returns the number of bytes the chunk occupies, header and padding included.
func (c *Chunk) Size() int {
	return HeaderSize + c.Header.PaddedLength()
}

// Dirty reports whether the padding read after the payload holds non-zero bytes.
func (c *Chunk) Dirty() bool {
	return c.Pad != nil
}

// Read decodes the chunk that starts at data[0].
// It returns the chunk and the number of bytes consumed, padding included.
func Read(data []byte) (Chunk, int, error) {
	return readAt(data, 0)
}

func readAt(data []byte, off int) (Chunk, int, error) {
	rest := data[off:]
	if len(rest) < HeaderSize {
		return Chunk{}, 0, Formatf(off, "", "truncated header: %d bytes left", len(rest))
	}

	var h Header
	if err := h.UnmarshalBinary(rest); err != nil {
		return Chunk{}, 0, Formatf(off, "", "bad header: %v", err)
	}

	name := h.Tag.String()
	avail := len(rest) - HeaderSize
	if uint64(h.Length) > uint64(avail) {
		return Chunk{}, 0, Formatf(off, name, "length %d overruns buffer (%d bytes left)", h.Length, avail)
	}
	end := HeaderSize + int(h.Length)
	pad := Padding(int(h.Length))
	if end+pad > len(rest) {
		return Chunk{}, 0, Formatf(off, name, "truncated padding: need %d, got %d", pad, len(rest)-end)
	}

	c := Chunk{
		Offset: off,
		Header: h,
		Data:   rest[HeaderSize:end:end],
	}
	for _, b := range rest[end : end+pad] {
		if b != 0 {
			c.Pad = rest[end : end+pad : end+pad]
			break
		}
	}
	return c, end + pad, nil
}

// Split splits a payload into its consecutive chunks.
// An empty payload yields no chunks.
func Split(data []byte) ([]Chunk, error) {
	var chunks []Chunk
	off := 0
	for off < len(data) {
		c, n, err := readAt(data, off)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
		off += n
	}
	return chunks, nil
}
