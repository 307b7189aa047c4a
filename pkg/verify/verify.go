// Package verify compares AVFX documents structurally and byte for byte.
//
// Comparisons never stop at the first difference: every mismatch found is
// reported as a path-qualified message.
package verify

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/goopsie/vfxFileTools/pkg/avfx"
)

// Digest returns the xxhash64 digest of data.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Trees compares two item trees. Leaves are equal when their bit patterns
// are identical, so NaN payloads and signed zeros are told apart.
func Trees(a, b avfx.Item) (bool, []string) {
	var c comparer
	c.item(a.Tag(), a, b)
	return len(c.diffs) == 0, c.diffs
}

type comparer struct {
	diffs []string
}

func (c *comparer) addf(path, format string, args ...any) {
	c.diffs = append(c.diffs, path+": "+fmt.Sprintf(format, args...))
}

func (c *comparer) item(path string, a, b avfx.Item) {
	if a.Tag() != b.Tag() {
		c.addf(path, "tag %q != %q", a.Tag(), b.Tag())
		return
	}
	if a.IsAssigned() != b.IsAssigned() {
		c.addf(path, "assigned %t != %t", a.IsAssigned(), b.IsAssigned())
		return
	}
	if !a.IsAssigned() {
		return
	}

	switch va := a.(type) {
	case avfx.Leaf:
		vb, ok := b.(avfx.Leaf)
		if !ok {
			c.addf(path, "value %T != %T", a, b)
			return
		}
		if !bytes.Equal(va.Bits(), vb.Bits()) {
			sa, sb := va.String(), vb.String()
			if sa == sb {
				sa, sb = fmt.Sprintf("%x", va.Bits()), fmt.Sprintf("%x", vb.Bits())
			}
			c.addf(path, "%s != %s", sa, sb)
		}

	case avfx.Sequence:
		vb, ok := b.(avfx.Sequence)
		if !ok {
			c.addf(path, "list %T != %T", a, b)
			return
		}
		c.elements(path, a.Tag(), va.Elements(), vb.Elements())

	case avfx.Parent:
		vb, ok := b.(avfx.Parent)
		if !ok {
			c.addf(path, "block %T != %T", a, b)
			return
		}
		c.children(path, va.Children(), vb.Children())

	default:
		c.addf(path, "cannot compare %T", a)
	}
}

func (c *comparer) elements(path, tag string, a, b []avfx.Item) {
	if len(a) != len(b) {
		c.addf(path, "%s count %d != %d", tag, len(a), len(b))
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		c.item(fmt.Sprintf("%s/%s[%d]", path, tag, i), a[i], b[i])
	}
}

func (c *comparer) children(path string, a, b []avfx.Item) {
	if len(a) != len(b) {
		c.addf(path, "child count %d != %d", len(a), len(b))
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if sa, ok := a[i].(avfx.Sequence); ok {
			if sb, ok := b[i].(avfx.Sequence); ok && sa.Tag() == sb.Tag() {
				c.elements(path, sa.Tag(), sa.Elements(), sb.Elements())
				continue
			}
		}
		c.item(path+"/"+a[i].Tag(), a[i], b[i])
	}
}

// Bytes compares two buffers. Every differing run of bytes is reported.
func Bytes(a, b []byte) (bool, []string) {
	if len(a) == len(b) && Digest(a) == Digest(b) && bytes.Equal(a, b) {
		return true, nil
	}

	var diffs []string
	if len(a) != len(b) {
		diffs = append(diffs, fmt.Sprintf("length %d != %d", len(a), len(b)))
	}

	n := min(len(a), len(b))
	for i := 0; i < n; {
		if a[i] == b[i] {
			i++
			continue
		}
		start := i
		for i < n && a[i] != b[i] {
			i++
		}
		if i-start == 1 {
			diffs = append(diffs, fmt.Sprintf("offset %#x: %02x != %02x", start, a[start], b[start]))
		} else {
			diffs = append(diffs, fmt.Sprintf("offsets %#x-%#x: %d bytes differ", start, i-1, i-start))
		}
	}

	diffs = append(diffs, fmt.Sprintf("digest %016x != %016x", Digest(a), Digest(b)))
	return false, diffs
}

// RoundTrip parses data, serializes the result and checks that both the
// bytes and the re-parsed tree match.
func RoundTrip(data []byte) (bool, []string, error) {
	root, _, err := avfx.Parse(data)
	if err != nil {
		return false, nil, fmt.Errorf("parse: %w", err)
	}
	out, _, err := avfx.Serialize(root)
	if err != nil {
		return false, nil, fmt.Errorf("serialize: %w", err)
	}

	_, diffs := Bytes(data, out)

	again, _, err := avfx.Parse(out)
	if err != nil {
		return false, diffs, fmt.Errorf("re-parse: %w", err)
	}
	_, treeDiffs := Trees(root, again)
	diffs = append(diffs, treeDiffs...)
	return len(diffs) == 0, diffs, nil
}
