package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goopsie/vfxFileTools/pkg/avfx"
	"github.com/goopsie/vfxFileTools/pkg/curveplot"
)

var selectorPattern = regexp.MustCompile(`^([A-Za-z]+)\[(\d+)\]$`)

// parseSelector splits "Ptcl[0]" or "Particle[0]" into a kind and index.
func parseSelector(s string) (avfx.Kind, int, error) {
	m := selectorPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid node selector %q, want Kind[index]", s)
	}
	i, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid node index in %q: %w", s, err)
	}
	if k, ok := avfx.KindOf(m[1]); ok {
		return k, i, nil
	}
	for _, k := range avfx.Kinds() {
		if strings.EqualFold(k.String(), m[1]) {
			return k, i, nil
		}
	}
	return 0, 0, fmt.Errorf("unknown node kind %q", m[1])
}

func selectNode(root *avfx.Root, s string) (avfx.Node, error) {
	k, i, err := parseSelector(s)
	if err != nil {
		return nil, err
	}
	n := root.Lookup(k, i)
	if n == nil {
		return nil, fmt.Errorf("%s: document has %d %s nodes", s, len(root.Nodes(k)), k)
	}
	return n, nil
}

// curvesOf returns every assigned curve held by n, named by path.
func curvesOf(n avfx.Node) []curveplot.Series {
	var out []curveplot.Series
	avfx.Walk(n, func(path string, it avfx.Item) {
		if c, ok := it.(*avfx.Curve); ok && c.IsAssigned() && len(c.Keys.Keys) > 0 {
			out = append(out, curveplot.Series{Name: path, Curve: c})
		}
	})
	return out
}

// cssName turns an item path such as "AVFX/Ptcl[0]/Col" into "ptcl0-col".
func cssName(path string) string {
	path = strings.TrimPrefix(path, "AVFX/")
	r := strings.NewReplacer("/", "-", "[", "", "]", "")
	return strings.ToLower(r.Replace(path))
}

// exportedNodes counts the nodes held by an export, either a document or a
// flat definition.
func exportedNodes(out []byte, document bool) (int, error) {
	if document {
		root, _, err := avfx.Parse(out)
		if err != nil {
			return 0, err
		}
		return len(root.AllNodes()), nil
	}
	def, _, err := avfx.ReadDefinition(out)
	if err != nil {
		return 0, err
	}
	return len(def.Nodes()), nil
}
