package avfx

import (
	"github.com/goopsie/vfxFileTools/pkg/chunk"
)

// Block is a composite chunk: a fixed set of declared items plus the order
// in which they (and any unknown chunks) appear on the wire.
type Block struct {
	tag      string
	assigned bool

	items    []Item
	optional map[string]bool
	dynamic  map[string]func() Item
	layout   []Item
}

func newBlock(tag string) Block {
	return Block{tag: tag}
}

// add declares items in their canonical order.
func (b *Block) add(items ...Item) {
	b.items = append(b.items, items...)
	b.layout = append(b.layout, items...)
}

// addOptional declares items that a freshly created node leaves unassigned.
func (b *Block) addOptional(items ...Item) {
	if b.optional == nil {
		b.optional = make(map[string]bool)
	}
	for _, it := range items {
		b.optional[it.Tag()] = true
	}
	b.add(items...)
}

// addDynamic declares an item whose concrete type is picked by fn at the
// moment its chunk is read.
func (b *Block) addDynamic(initial Item, fn func() Item) {
	if b.dynamic == nil {
		b.dynamic = make(map[string]func() Item)
	}
	b.dynamic[initial.Tag()] = fn
	b.addOptional(initial)
}

// item returns the declared item with the given tag.
func (b *Block) item(tag string) Item {
	for _, it := range b.items {
		if it.Tag() == tag {
			return it
		}
	}
	return nil
}

// swap replaces the declared item with the same tag as it.
func (b *Block) swap(it Item) {
	old := b.item(it.Tag())
	for i, x := range b.items {
		if x == old {
			b.items[i] = it
		}
	}
	for i, x := range b.layout {
		if x == old {
			b.layout[i] = it
		}
	}
}

func (b *Block) Tag() string      { return b.tag }
func (b *Block) IsAssigned() bool { return b.assigned }

// SetAssigned marks the block present or absent. Unassigning also unassigns
// every descendant.
func (b *Block) SetAssigned(assigned bool) {
	b.assigned = assigned
	if assigned {
		return
	}
	for _, it := range b.items {
		it.SetAssigned(false)
	}
}

// Children returns the items in wire order.
func (b *Block) Children() []Item {
	out := make([]Item, len(b.layout))
	copy(out, b.layout)
	return out
}

func (b *Block) ToDefault() {
	b.assigned = true
	for _, it := range b.items {
		it.ToDefault()
		if b.optional[it.Tag()] {
			hide(it)
		}
	}
	b.layout = append(b.layout[:0:0], b.items...)
}

func (b *Block) reset() {
	b.assigned = false
	for _, it := range b.items {
		it.reset()
	}
	b.layout = append(b.layout[:0:0], b.items...)
}

func (b *Block) readContents(d *decoder, data []byte) error {
	chunks, err := chunk.Split(data)
	if err != nil {
		return err
	}

	for _, it := range b.items {
		it.reset()
	}

	var layout []Item
	seen := make(map[Item]bool)
	for _, c := range chunks {
		name := c.Name()
		if fn := b.dynamic[name]; fn != nil && !seen[b.item(name)] {
			b.swap(fn())
		}

		it := b.item(name)
		switch {
		case it == nil:
			layout = append(layout, newRaw(c))

		case seen[it] && !isSequence(it):
			d.warnf("duplicate %s kept as raw", name)
			layout = append(layout, newRaw(c))

		default:
			if s, ok := it.(sequence); ok {
				elem := s.appendNew()
				if err := readItem(d, elem, c, elemName(name, len(s.Elements())-1)); err != nil {
					return err
				}
			} else if err := readItem(d, it, c, name); err != nil {
				return err
			}
			if !seen[it] {
				layout = append(layout, it)
				seen[it] = true
			}
		}
	}
	b.layout = mergeLayout(layout, b.items, seen)

	for _, it := range b.items {
		if c, ok := it.(checker); ok {
			c.check(d)
		}
	}
	return nil
}

func (b *Block) writeContents(e *encoder, w *chunk.Writer) error {
	for _, it := range b.layout {
		seq := isSequence(it)
		if !seq {
			e.push(it.Tag())
		}
		err := writeItem(e, w, it)
		if !seq {
			e.pop()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// hide unassigns it without touching its descendants, so assigning it later
// yields the default contents.
func hide(it Item) {
	if b, ok := it.(interface{ hideSelf() }); ok {
		b.hideSelf()
		return
	}
	it.SetAssigned(false)
}

func (b *Block) hideSelf() { b.assigned = false }

func isSequence(it Item) bool {
	_, ok := it.(Sequence)
	return ok
}

// mergeLayout inserts declared items that were absent from the input at
// their declared position relative to the items that were read: each missing
// item goes right after the last declared predecessor that was present.
func mergeLayout(read []Item, declared []Item, seen map[Item]bool) []Item {
	out := make([]Item, 0, len(read)+len(declared))
	out = append(out, read...)

	insert := 0
	for _, it := range declared {
		if seen[it] {
			for i, x := range out {
				if x == it {
					insert = i + 1
					break
				}
			}
			continue
		}
		out = append(out, nil)
		copy(out[insert+1:], out[insert:])
		out[insert] = it
		insert++
	}
	return out
}
