package chunk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFormat   = errors.New("chunk: malformed data")
	ErrEncoding = errors.New("chunk: value not encodable")
)

// FormatError reports malformed input: a bad header, a length that overruns
// the buffer, or a payload that does not match its declared type.
type FormatError struct {
	Offset int    // Byte offset of the offending chunk within its parent payload
	Tag    string // Chunk name, if known
	Path   []string
	Msg    string
}

// Formatf builds a FormatError.
func Formatf(offset int, tag string, format string, args ...any) *FormatError {
	return &FormatError{Offset: offset, Tag: tag, Msg: fmt.Sprintf(format, args...)}
}

func (e *FormatError) Error() string {
	var buf strings.Builder
	buf.WriteString("format error")
	if len(e.Path) > 0 {
		buf.WriteString(" at ")
		buf.WriteString(strings.Join(e.Path, "/"))
	}
	if e.Tag != "" {
		fmt.Fprintf(&buf, " [%s]", e.Tag)
	}
	fmt.Fprintf(&buf, " (offset %d): %s", e.Offset, e.Msg)
	return buf.String()
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// EncodingError reports a value that cannot be written in its declared width.
type EncodingError struct {
	Path []string
	Msg  string
}

// Encodingf builds an EncodingError.
func Encodingf(format string, args ...any) *EncodingError {
	return &EncodingError{Msg: fmt.Sprintf(format, args...)}
}

func (e *EncodingError) Error() string {
	if len(e.Path) == 0 {
		return "encoding error: " + e.Msg
	}
	return "encoding error at " + strings.Join(e.Path, "/") + ": " + e.Msg
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}

// WithPath prefixes the path of a FormatError or EncodingError. Other errors
// are returned unchanged.
func WithPath(err error, elem string) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Path = append([]string{elem}, fe.Path...)
		return err
	}
	var ee *EncodingError
	if errors.As(err, &ee) {
		ee.Path = append([]string{elem}, ee.Path...)
		return err
	}
	return err
}
