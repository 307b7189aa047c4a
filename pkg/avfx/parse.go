package avfx

import (
	"github.com/goopsie/vfxFileTools/pkg/chunk"
)

var registry = map[string]func() Node{
	"Schd": func() Node { return NewScheduler() },
	"TmLn": func() Node { return NewTimeline() },
	"Emit": func() Node { return NewEmitter() },
	"Ptcl": func() Node { return NewParticle() },
	"Efct": func() Node { return NewEffector() },
	"Bind": func() Node { return NewBinder() },
	"Tex":  func() Node { return NewTexture() },
	"Modl": func() Node { return NewModel() },
}

// Parse decodes a complete AVFX file. Chunks following the AVFX chunk are
// kept in Root.Trailing. Warnings describe recoverable inconsistencies.
func Parse(data []byte) (*Root, []Warning, error) {
	chunks, err := chunk.Split(data)
	if err != nil {
		return nil, nil, err
	}
	if len(chunks) == 0 {
		return nil, nil, chunk.Formatf(0, "", "empty buffer")
	}
	if name := chunks[0].Name(); name != "AVFX" {
		return nil, nil, chunk.Formatf(0, name, "unexpected tag %q, want AVFX", name)
	}

	root := NewRoot()
	d := &decoder{}
	if err := readItem(d, root, chunks[0], "AVFX"); err != nil {
		return nil, nil, err
	}
	for _, c := range chunks[1:] {
		root.Trailing = append(root.Trailing, newRaw(c))
	}

	linkNodes(d, "AVFX", root.AllNodes(), root.Lookup, root.IndexOf)
	return root, d.warnings, nil
}

// Serialize encodes a document. References are renumbered from the current
// node positions and the new positions are stored back into them.
func Serialize(root *Root) ([]byte, []Warning, error) {
	e := &encoder{resolve: root.resolve, commit: true}
	e.push("AVFX")
	w := chunk.NewWriter()
	if err := writeItem(e, w, root); err != nil {
		return nil, nil, err
	}
	for _, r := range root.Trailing {
		if err := writeItem(e, w, r); err != nil {
			return nil, nil, err
		}
	}
	return w.Bytes(), e.warnings, nil
}

// Marshal encodes a single item as one chunk. References are written with
// the index they currently hold.
func Marshal(it Item) ([]byte, error) {
	e := &encoder{}
	w := chunk.NewWriter()
	if err := writeItem(e, w, it); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Unmarshal decodes a single chunk into it. The chunk tag must match.
func Unmarshal(data []byte, it Item) ([]Warning, error) {
	c, n, err := chunk.Read(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, chunk.Formatf(n, "", "%d trailing bytes", len(data)-n)
	}
	if c.Name() != it.Tag() {
		return nil, chunk.Formatf(0, c.Name(), "unexpected tag %q, want %q", c.Name(), it.Tag())
	}
	d := &decoder{}
	it.reset()
	if err := readItem(d, it, c, it.Tag()); err != nil {
		return nil, err
	}
	return d.warnings, nil
}

// ReadNode decodes the first chunk of data as a node. Unknown tags yield a
// *Raw. References keep their raw indices.
func ReadNode(data []byte) (Item, []Warning, error) {
	c, _, err := chunk.Read(data)
	if err != nil {
		return nil, nil, err
	}
	d := &decoder{}
	it, err := readChunk(d, c, c.Name())
	if err != nil {
		return nil, nil, err
	}
	return it, d.warnings, nil
}

func readChunk(d *decoder, c chunk.Chunk, name string) (Item, error) {
	ctor, ok := registry[c.Name()]
	if !ok {
		return newRaw(c), nil
	}
	n := ctor()
	if err := readItem(d, n, c, name); err != nil {
		return nil, err
	}
	return n, nil
}

// Definition is a flat sequence of nodes, as written by ExportSubgraph.
// References between its nodes use positions within the definition.
type Definition struct {
	Items []Item
}

// Nodes returns the nodes of the definition in order, skipping raw chunks.
func (def *Definition) Nodes() []Node {
	var out []Node
	for _, it := range def.Items {
		if n, ok := it.(Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// NodesOf returns the nodes of one kind in order.
func (def *Definition) NodesOf(k Kind) []Node {
	var out []Node
	for _, n := range def.Nodes() {
		if n.Kind() == k {
			out = append(out, n)
		}
	}
	return out
}

func (def *Definition) lookup(k Kind, i int) Node {
	nodes := def.NodesOf(k)
	if i < 0 || i >= len(nodes) {
		return nil
	}
	return nodes[i]
}

func (def *Definition) indexOf(n Node) int {
	for i, x := range def.NodesOf(n.Kind()) {
		if x == n {
			return i
		}
	}
	return -1
}

// ReadDefinition decodes a sequence of node chunks and links their
// references among themselves.
func ReadDefinition(data []byte) (*Definition, []Warning, error) {
	chunks, err := chunk.Split(data)
	if err != nil {
		return nil, nil, err
	}

	def := &Definition{}
	d := &decoder{}
	counts := make(map[string]int)
	for _, c := range chunks {
		name := elemName(c.Name(), counts[c.Name()])
		counts[c.Name()]++
		it, err := readChunk(d, c, name)
		if err != nil {
			return nil, nil, err
		}
		def.Items = append(def.Items, it)
	}

	linkNodes(d, "", def.Nodes(), def.lookup, def.indexOf)
	return def, d.warnings, nil
}

// ImportDefinition reads a definition and appends its nodes to root.
func ImportDefinition(root *Root, data []byte) (*Definition, []Warning, error) {
	def, warnings, err := ReadDefinition(data)
	if err != nil {
		return nil, nil, err
	}
	if err := root.Import(def); err != nil {
		return nil, nil, err
	}
	return def, warnings, nil
}
