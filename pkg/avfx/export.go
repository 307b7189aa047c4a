package avfx

import (
	"github.com/goopsie/vfxFileTools/pkg/chunk"
)

type exportConfig struct {
	dependencies bool
	strict       bool
	document     bool
}

// ExportOption configures ExportSubgraph.
type ExportOption func(*exportConfig)

// WithDependencies controls whether nodes reachable from the roots are
// exported too. It is on by default.
func WithDependencies(enabled bool) ExportOption {
	return func(c *exportConfig) { c.dependencies = enabled }
}

// WithStrictReferences makes a reference to a node outside the exported set
// an error instead of a warning.
func WithStrictReferences() ExportOption {
	return func(c *exportConfig) { c.strict = true }
}

// WithDocument wraps the exported nodes in a default AVFX root so the output
// is a complete file rather than a definition.
func WithDocument() ExportOption {
	return func(c *exportConfig) { c.document = true }
}

// ExportSubgraph writes roots and, by default, everything they reference.
//
// Nodes are written dependencies first and numbered per kind in that order;
// references are written with the new numbers. The nodes themselves are not
// modified. A reference to a node outside the exported set keeps its stale
// index and produces a warning.
func ExportSubgraph(roots []Node, opts ...ExportOption) ([]byte, []Warning, error) {
	cfg := exportConfig{dependencies: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	var nodes []Node
	if cfg.dependencies {
		nodes = Collect(roots)
	} else {
		seen := make(map[Node]bool)
		for _, n := range roots {
			if n != nil && !seen[n] {
				seen[n] = true
				nodes = append(nodes, n)
			}
		}
	}

	positions := make(map[Node]int, len(nodes))
	var next [len(kindInfo)]int
	for _, n := range nodes {
		positions[n] = next[n.Kind()]
		next[n.Kind()]++
	}

	e := &encoder{
		resolve: func(n Node) (int, bool) {
			i, ok := positions[n]
			return i, ok
		},
		export: true,
		strict: cfg.strict,
	}
	w := chunk.NewWriter()

	if cfg.document {
		doc := New()
		for _, n := range nodes {
			if err := doc.list(n.Kind()).appendItem(n); err != nil {
				return nil, nil, err
			}
		}
		e.push("AVFX")
		if err := writeItem(e, w, doc); err != nil {
			return nil, nil, err
		}
		return w.Bytes(), e.warnings, nil
	}

	for _, n := range nodes {
		name := elemName(n.Kind().Tag(), positions[n])
		e.push(name)
		err := writeChunk(e, w, n)
		e.pop()
		if err != nil {
			return nil, nil, chunk.WithPath(err, name)
		}
	}
	return w.Bytes(), e.warnings, nil
}
