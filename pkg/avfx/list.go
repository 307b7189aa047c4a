package avfx

import (
	"fmt"

	"github.com/goopsie/vfxFileTools/pkg/chunk"
)

// List is a repeated item. Its elements are written as consecutive chunks
// that all carry the list tag.
type List[T Item] struct {
	tag     string
	newItem func() T
	items   []T
}

func newList[T Item](tag string, newItem func() T) *List[T] {
	return &List[T]{tag: tag, newItem: newItem}
}

func (l *List[T]) Tag() string { return l.tag }

// IsAssigned reports whether the list has elements.
func (l *List[T]) IsAssigned() bool { return len(l.items) > 0 }

// SetAssigned(false) unassigns every element; elements are kept.
func (l *List[T]) SetAssigned(assigned bool) {
	if assigned {
		return
	}
	for _, it := range l.items {
		it.SetAssigned(false)
	}
}

func (l *List[T]) ToDefault() { l.items = nil }
func (l *List[T]) reset()     { l.items = nil }

func (l *List[T]) readContents(*decoder, []byte) error {
	return fmt.Errorf("avfx: list %s has no payload of its own", l.tag)
}

func (l *List[T]) writeContents(*encoder, *chunk.Writer) error {
	return fmt.Errorf("avfx: list %s has no payload of its own", l.tag)
}

func (l *List[T]) appendNew() Item {
	it := l.newItem()
	l.items = append(l.items, it)
	return it
}

func (l *List[T]) Elements() []Item {
	out := make([]Item, len(l.items))
	for i, it := range l.items {
		out[i] = it
	}
	return out
}

func (l *List[T]) Len() int   { return len(l.items) }
func (l *List[T]) At(i int) T { return l.items[i] }

// All returns the elements. The slice is a copy.
func (l *List[T]) All() []T {
	return append([]T(nil), l.items...)
}

// New appends a default-constructed element and returns it.
func (l *List[T]) New() T {
	it := l.newItem()
	it.ToDefault()
	l.items = append(l.items, it)
	return it
}

func (l *List[T]) Append(items ...T) {
	l.items = append(l.items, items...)
}

// Insert places it at position i.
func (l *List[T]) Insert(i int, it T) error {
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("%s: insert position %d out of range [0,%d]", l.tag, i, len(l.items))
	}
	var zero T
	l.items = append(l.items, zero)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = it
	return nil
}

// Remove deletes and returns the element at position i.
func (l *List[T]) Remove(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, fmt.Errorf("%s: index %d out of range [0,%d)", l.tag, i, len(l.items))
	}
	it := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	return it, nil
}

// Move relocates the element at from so that it ends up at position to.
func (l *List[T]) Move(from, to int) error {
	n := len(l.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%s: move %d -> %d out of range [0,%d)", l.tag, from, to, n)
	}
	it := l.items[from]
	if from < to {
		copy(l.items[from:to], l.items[from+1:to+1])
	} else {
		copy(l.items[to+1:from+1], l.items[to:from])
	}
	l.items[to] = it
	return nil
}

// Index returns the position of it, or -1.
func (l *List[T]) Index(it Item) int {
	for i, x := range l.items {
		if Item(x) == it {
			return i
		}
	}
	return -1
}

func (l *List[T]) removeAt(i int) error {
	_, err := l.Remove(i)
	return err
}

func (l *List[T]) appendItem(it Item) error {
	t, ok := it.(T)
	if !ok {
		return fmt.Errorf("%s: cannot hold %T", l.tag, it)
	}
	l.items = append(l.items, t)
	return nil
}
