// Package avfx implements the in-memory model of AVFX visual effect files.
//
// A file is a tree of tagged chunks. Composite chunks are modelled as blocks
// that own typed leaves, nested blocks and repeated lists; unknown chunks are
// kept as opaque Raw items so that parsing and re-serializing an unmodified
// file reproduces it byte for byte.
//
// Top-level effect nodes (schedulers, timelines, emitters, particles,
// effectors, binders, textures and models) reference each other by position
// within their own kind. In memory those references are pointers; positions
// are recomputed every time a tree or sub-graph is written.
package avfx

import (
	"fmt"
	"strings"

	"github.com/goopsie/vfxFileTools/pkg/chunk"
)

// Item is a member of a node's attribute list: a typed leaf, a nested block,
// a repeated list or an opaque passthrough chunk.
//
// The set of implementations is closed; new kinds of item are added in this
// package.
type Item interface {
	Tag() string
	IsAssigned() bool
	SetAssigned(assigned bool)

	// ToDefault puts the item in the state of a freshly created node:
	// valid to write if assigned.
	ToDefault()

	// reset puts the item in its pre-parse state: default value, unassigned.
	reset()
	readContents(d *decoder, data []byte) error
	writeContents(e *encoder, w *chunk.Writer) error
}

// Parent is implemented by items that own other items.
type Parent interface {
	Item
	Children() []Item
}

// Sequence is implemented by repeated lists. A list has no chunk of its own;
// each element is written as a separate chunk carrying the list tag.
type Sequence interface {
	Item
	Elements() []Item
}

// Leaf is implemented by typed values.
type Leaf interface {
	Item
	fmt.Stringer

	// Bits returns an exact representation of the value for comparison.
	Bits() []byte
}

// Warning is a non-fatal consistency problem found while reading or writing.
type Warning struct {
	Path string
	Msg  string
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Msg
	}
	return w.Path + ": " + w.Msg
}

type checker interface {
	check(d *decoder)
}

type sequence interface {
	Sequence
	appendNew() Item
}

type decoder struct {
	path     []string
	warnings []Warning
}

func (d *decoder) push(elem string) { d.path = append(d.path, elem) }
func (d *decoder) pop()             { d.path = d.path[:len(d.path)-1] }

func (d *decoder) warnf(format string, args ...any) {
	d.warnings = append(d.warnings, Warning{
		Path: strings.Join(d.path, "/"),
		Msg:  fmt.Sprintf(format, args...),
	})
}

type encoder struct {
	resolve func(Node) (int, bool)
	export  bool // positions belong to an exported sub-graph, not a live document
	commit  bool // store resolved positions back into references
	strict  bool // references leaving the written set are errors

	path     []string
	warnings []Warning
}

func (e *encoder) push(elem string) { e.path = append(e.path, elem) }
func (e *encoder) pop()             { e.path = e.path[:len(e.path)-1] }

func (e *encoder) warnf(format string, args ...any) {
	e.warnings = append(e.warnings, Warning{
		Path: strings.Join(e.path, "/"),
		Msg:  fmt.Sprintf(format, args...),
	})
}

// refIndex returns the position to write for a reference.
func (e *encoder) refIndex(tag string, kind Kind, index int32, target Node) (int32, bool, error) {
	if target == nil {
		if index >= 0 && e.export {
			return index, false, e.detached(tag, kind, index)
		}
		return index, false, nil
	}
	if e.resolve != nil {
		if i, ok := e.resolve(target); ok {
			return int32(i), true, nil
		}
	}
	return index, false, e.detached(tag, kind, index)
}

func (e *encoder) detached(tag string, kind Kind, index int32) error {
	msg := fmt.Sprintf("%s points at a %s outside the written set, keeping stale index %d", tag, kind, index)
	if e.strict {
		return fmt.Errorf("%s: %w: %s", strings.Join(e.path, "/"), ErrDetachedReference, msg)
	}
	e.warnf("%s", msg)
	return nil
}

func elemName(tag string, i int) string {
	return fmt.Sprintf("%s[%d]", tag, i)
}

func tagOf(it Item) chunk.Tag {
	if r, ok := it.(*Raw); ok {
		return r.tag
	}
	return chunk.MustTag(it.Tag())
}

// readItem decodes one chunk into it and marks it assigned.
func readItem(d *decoder, it Item, c chunk.Chunk, name string) error {
	d.push(name)
	defer d.pop()

	it.SetAssigned(true)
	if err := it.readContents(d, c.Data); err != nil {
		return chunk.WithPath(err, name)
	}
	if c.Dirty() {
		if r, ok := it.(*Raw); ok {
			r.pad = append([]byte(nil), c.Pad...)
		} else {
			d.warnf("non-zero padding % x is not kept", c.Pad)
		}
	}
	return nil
}

// writeItem encodes it as one chunk, or one chunk per element for lists.
// Unassigned items produce nothing.
func writeItem(e *encoder, w *chunk.Writer, it Item) error {
	s, ok := it.(Sequence)
	if !ok {
		return chunk.WithPath(writeChunk(e, w, it), it.Tag())
	}
	if !it.IsAssigned() {
		return nil
	}
	for i, elem := range s.Elements() {
		name := elemName(it.Tag(), i)
		e.push(name)
		err := writeChunk(e, w, elem)
		e.pop()
		if err != nil {
			return chunk.WithPath(err, name)
		}
	}
	return nil
}

func writeChunk(e *encoder, w *chunk.Writer, it Item) error {
	if !it.IsAssigned() {
		return nil
	}
	if r, ok := it.(*Raw); ok && r.pad != nil {
		return w.Chunk(r.chunk())
	}
	return w.Nested(tagOf(it), func(cw *chunk.Writer) error {
		return it.writeContents(e, cw)
	})
}
