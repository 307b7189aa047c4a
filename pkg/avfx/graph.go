package avfx

import (
	"fmt"
	"strings"
)

// walk calls fn for it and every item below it, depth first, with the path
// of each item relative to it. Items below it are skipped when fn returns
// false. Lists nested in a parent are not reported themselves; their
// elements are, and skipping an unassigned list is left to skipList.
func walk(it Item, path []string, skipList bool, fn func(Item, []string) bool) {
	if !fn(it, path) {
		return
	}
	switch v := it.(type) {
	case Sequence:
		walkElements(v, path, skipList, fn)
	case Parent:
		for _, c := range v.Children() {
			if s, ok := c.(Sequence); ok {
				if !skipList || s.IsAssigned() {
					walkElements(s, path, skipList, fn)
				}
				continue
			}
			walk(c, appendPath(path, c.Tag()), skipList, fn)
		}
	}
}

func walkElements(s Sequence, path []string, skipList bool, fn func(Item, []string) bool) {
	for i, e := range s.Elements() {
		walk(e, appendPath(path, elemName(s.Tag(), i)), skipList, fn)
	}
}

// Walk calls fn for it and every item below it, depth first. Paths start
// with the tag of it and use the same form as warning paths; a list appears
// only through its elements, as "Tag[i]".
func Walk(it Item, fn func(path string, it Item)) {
	walk(it, nil, false, func(c Item, path []string) bool {
		fn(joinPath(it.Tag(), path), c)
		return true
	})
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

func joinPath(prefix string, path []string) string {
	if len(path) == 0 {
		return prefix
	}
	return prefix + "/" + strings.Join(path, "/")
}

// references returns the assigned reference items held by n that would be
// written, in declaration order. Items below an unassigned parent are skipped.
func references(n Item) []reference {
	var out []reference
	walk(n, nil, true, func(it Item, _ []string) bool {
		if !it.IsAssigned() {
			return false
		}
		if r, ok := it.(reference); ok {
			out = append(out, r)
		}
		return true
	})
	return out
}

// allReferences returns every reference item held by n, assigned or not.
func allReferences(n Item) []reference {
	var out []reference
	walk(n, nil, false, func(it Item, _ []string) bool {
		if r, ok := it.(reference); ok {
			out = append(out, r)
		}
		return true
	})
	return out
}

// Dependencies returns the nodes n references directly, without duplicates,
// in the order the references are declared.
func Dependencies(n Node) []Node {
	var out []Node
	seen := make(map[Node]bool)
	for _, r := range references(n) {
		for _, t := range r.targets() {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Referrers returns the nodes among candidates that reference n.
func Referrers(n Node, candidates []Node) []Node {
	var out []Node
	for _, c := range candidates {
		for _, d := range Dependencies(c) {
			if d == n {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Collect returns the roots and every node reachable from them through
// references. Dependencies come before the nodes that reference them; each
// node appears once even when the graph has cycles.
func Collect(roots []Node) []Node {
	var out []Node
	visited := make(map[Node]bool)

	var visit func(n Node)
	visit = func(n Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, d := range Dependencies(n) {
			visit(d)
		}
		out = append(out, n)
	}
	for _, n := range roots {
		if n != nil {
			visit(n)
		}
	}
	return out
}

// linkNodes resolves raw indices held by nodes and records a warning for
// each index that has no target.
func linkNodes(d *decoder, base string, nodes []Node, lookup func(Kind, int) Node, indexOf func(Node) int) {
	for _, n := range nodes {
		prefix := elemName(n.Kind().Tag(), indexOf(n))
		if base != "" {
			prefix = base + "/" + prefix
		}
		walk(n, nil, false, func(it Item, path []string) bool {
			r, ok := it.(reference)
			if !ok {
				return true
			}
			for _, idx := range r.link(lookup) {
				d.warnings = append(d.warnings, Warning{
					Path: joinPath(prefix, path),
					Msg:  fmt.Sprintf("%s index %d has no target", r.refKind(), idx),
				})
			}
			return true
		})
	}
}
