package avfx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goopsie/vfxFileTools/pkg/chunk"
)

// ErrDetachedReference is returned in strict mode when a reference points at
// a node that is not part of what is being written.
var ErrDetachedReference = errors.New("reference leaves the written set")

// reference is implemented by items holding links to other nodes.
type reference interface {
	Item
	refKind() Kind
	link(lookup func(Kind, int) Node) []int32
	targets() []Node
	detach(n Node) bool
}

// Ref is a 4-byte positional reference to a node of a given kind.
//
// In memory the reference holds the target itself. The index is the
// position last read or written; it is only meaningful when Target is nil,
// in which case it is written back unchanged.
type Ref struct {
	leaf
	kind   Kind
	index  int32
	target Node
}

func NewRef(tag string, kind Kind) *Ref {
	r := &Ref{leaf: leaf{tag: tag}, kind: kind}
	r.reset()
	return r
}

func (r *Ref) Kind() Kind     { return r.kind }
func (r *Ref) Target() Node   { return r.target }
func (r *Ref) Index() int     { return int(r.index) }
func (r *Ref) refKind() Kind  { return r.kind }
func (r *Ref) targets() []Node {
	if r.target == nil {
		return nil
	}
	return []Node{r.target}
}

// Set points the reference at n. A nil n clears it.
func (r *Ref) Set(n Node) error {
	if n != nil && n.Kind() != r.kind {
		return fmt.Errorf("%s: cannot reference a %s, want %s", r.tag, n.Kind(), r.kind)
	}
	r.assigned = true
	r.target = n
	if n == nil {
		r.index = -1
	}
	return nil
}

// SetIndex stores a raw position. It is resolved by the next link pass.
// Positions below -1 or beyond int32 are rejected.
func (r *Ref) SetIndex(i int) error {
	if i < -1 || int64(i) > math.MaxInt32 {
		return chunk.Encodingf("%s index %d does not fit in 4 bytes", r.tag, i)
	}
	r.assigned = true
	r.target = nil
	r.index = int32(i)
	return nil
}

func (r *Ref) ToDefault() { r.index = -1; r.target = nil; r.assigned = true }
func (r *Ref) reset()     { r.index = -1; r.target = nil; r.assigned = false }

func (r *Ref) link(lookup func(Kind, int) Node) []int32 {
	if r.target != nil || r.index < 0 {
		return nil
	}
	if n := lookup(r.kind, int(r.index)); n != nil {
		r.target = n
		return nil
	}
	return []int32{r.index}
}

func (r *Ref) detach(n Node) bool {
	if r.target != n || n == nil {
		return false
	}
	r.target = nil
	r.index = -1
	return true
}

func (r *Ref) readContents(_ *decoder, data []byte) error {
	if err := checkWidth(data, r.tag, 4); err != nil {
		return err
	}
	r.index = int32(binary.LittleEndian.Uint32(data))
	r.target = nil
	return nil
}

func (r *Ref) writeContents(e *encoder, w *chunk.Writer) error {
	i, resolved, err := e.refIndex(r.tag, r.kind, r.index, r.target)
	if err != nil {
		return err
	}
	if resolved && e.commit {
		r.index = i
	}
	_, err = w.Write(binary.LittleEndian.AppendUint32(nil, uint32(i)))
	return err
}

func (r *Ref) Bits() []byte { return binary.LittleEndian.AppendUint32(nil, uint32(r.index)) }

func (r *Ref) String() string {
	if r.target == nil && r.index >= 0 {
		return fmt.Sprintf("%s[%d] (unresolved)", r.kind, r.index)
	}
	if r.index < 0 && r.target == nil {
		return "none"
	}
	return fmt.Sprintf("%s[%d]", r.kind, r.index)
}

// RefList is a list of one-byte positional references, such as the mask
// textures of a particle.
type RefList struct {
	leaf
	kind    Kind
	indices []int32
	nodes   []Node
}

func NewRefList(tag string, kind Kind) *RefList {
	return &RefList{leaf: leaf{tag: tag}, kind: kind}
}

func (l *RefList) Kind() Kind    { return l.kind }
func (l *RefList) refKind() Kind { return l.kind }
func (l *RefList) Len() int      { return len(l.indices) }

// Target returns the node at entry i, or nil if the entry is unresolved.
func (l *RefList) Target(i int) Node { return l.nodes[i] }

// Index returns the raw position of entry i.
func (l *RefList) Index(i int) int { return int(l.indices[i]) }

// Add appends a reference to n.
func (l *RefList) Add(n Node) error {
	if n == nil || n.Kind() != l.kind {
		return fmt.Errorf("%s: cannot reference %v, want a %s", l.tag, n, l.kind)
	}
	l.assigned = true
	l.indices = append(l.indices, -1)
	l.nodes = append(l.nodes, n)
	return nil
}

// RemoveAt deletes entry i.
func (l *RefList) RemoveAt(i int) error {
	if i < 0 || i >= len(l.indices) {
		return fmt.Errorf("%s: index %d out of range [0,%d)", l.tag, i, len(l.indices))
	}
	l.indices = append(l.indices[:i], l.indices[i+1:]...)
	l.nodes = append(l.nodes[:i], l.nodes[i+1:]...)
	return nil
}

func (l *RefList) ToDefault() { l.indices, l.nodes = nil, nil; l.assigned = true }
func (l *RefList) reset()     { l.indices, l.nodes = nil, nil; l.assigned = false }

func (l *RefList) targets() []Node {
	var out []Node
	for _, n := range l.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (l *RefList) link(lookup func(Kind, int) Node) []int32 {
	var missing []int32
	for i, idx := range l.indices {
		if l.nodes[i] != nil {
			continue
		}
		if n := lookup(l.kind, int(idx)); n != nil {
			l.nodes[i] = n
		} else {
			missing = append(missing, idx)
		}
	}
	return missing
}

// detach removes every entry pointing at n.
func (l *RefList) detach(n Node) bool {
	found := false
	for i := len(l.nodes) - 1; i >= 0; i-- {
		if l.nodes[i] == n && n != nil {
			_ = l.RemoveAt(i)
			found = true
		}
	}
	return found
}

func (l *RefList) readContents(_ *decoder, data []byte) error {
	l.indices = make([]int32, len(data))
	l.nodes = make([]Node, len(data))
	for i, b := range data {
		l.indices[i] = int32(b)
	}
	return nil
}

func (l *RefList) writeContents(e *encoder, w *chunk.Writer) error {
	buf := make([]byte, len(l.indices))
	for i := range l.indices {
		idx, resolved, err := e.refIndex(l.tag, l.kind, l.indices[i], l.nodes[i])
		if err != nil {
			return err
		}
		if idx < 0 || idx > 0xFF {
			return chunk.Encodingf("%s entry %d: index %d does not fit in 1 byte", l.tag, i, idx)
		}
		if resolved && e.commit {
			l.indices[i] = idx
		}
		buf[i] = byte(idx)
	}
	_, err := w.Write(buf)
	return err
}

func (l *RefList) Bits() []byte {
	out := make([]byte, len(l.indices))
	for i, idx := range l.indices {
		out[i] = byte(idx)
	}
	return out
}

func (l *RefList) String() string {
	parts := make([]string, len(l.indices))
	for i, idx := range l.indices {
		parts[i] = strconv.Itoa(int(idx))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
