package avfx

import (
	"fmt"
)

// Version is the format version written by default.
const Version = 0x20110913

type nodeList interface {
	Sequence
	Len() int
	Index(it Item) int
	Move(from, to int) error
	appendItem(it Item) error
	removeAt(i int) error
}

// Root is the top-level AVFX block: global settings followed by one list of
// nodes per kind.
type Root struct {
	Block
	Version           *Int
	DelayFastParticle *Bool
	FitGround         *Bool
	TransformSkip     *Bool
	AllStopOnHide     *Bool
	CanBeClippedOut   *Bool
	ClipBoxEnabled    *Bool
	CameraSpace       *Bool
	FullEnvLight      *Bool
	ClipOwnSetting    *Bool
	NearClipBegin     *Float
	NearClipEnd       *Float
	FarClipBegin      *Float
	FarClipEnd        *Float
	DrawLayer         *Enum[DrawLayer]
	DrawOrder         *Enum[DrawOrder]

	Schedulers *List[*Scheduler]
	Timelines  *List[*Timeline]
	Emitters   *List[*Emitter]
	Particles  *List[*Particle]
	Effectors  *List[*Effector]
	Binders    *List[*Binder]
	Textures   *List[*Texture]
	Models     *List[*Model]

	// Trailing holds top-level chunks found after the AVFX chunk.
	Trailing []*Raw

	lists [len(kindInfo)]nodeList
}

func NewRoot() *Root {
	r := &Root{
		Block:             newBlock("AVFX"),
		Version:           NewInt("Ver", Version),
		DelayFastParticle: NewBool("bDFP", false),
		FitGround:         NewBool("bFG", false),
		TransformSkip:     NewBool("bTS", false),
		AllStopOnHide:     NewBool("bASH", false),
		CanBeClippedOut:   NewBool("bCBC", false),
		ClipBoxEnabled:    NewBool("bCul", false),
		CameraSpace:       NewBool("bCmS", false),
		FullEnvLight:      NewBool("bFEL", false),
		ClipOwnSetting:    NewBool("bOSt", false),
		NearClipBegin:     NewFloat("NCB", 0),
		NearClipEnd:       NewFloat("NCE", 0),
		FarClipBegin:      NewFloat("FCB", 0),
		FarClipEnd:        NewFloat("FCE", 0),
		DrawLayer:         NewEnum("DwLy", DrawLayerScreen),
		DrawOrder:         NewEnum("DwOT", DrawOrderDefault),

		Schedulers: newList("Schd", NewScheduler),
		Timelines:  newList("TmLn", NewTimeline),
		Emitters:   newList("Emit", NewEmitter),
		Particles:  newList("Ptcl", NewParticle),
		Effectors:  newList("Efct", NewEffector),
		Binders:    newList("Bind", NewBinder),
		Textures:   newList("Tex", NewTexture),
		Models:     newList("Modl", NewModel),
	}
	r.lists = [...]nodeList{
		KindScheduler: r.Schedulers,
		KindTimeline:  r.Timelines,
		KindEmitter:   r.Emitters,
		KindParticle:  r.Particles,
		KindEffector:  r.Effectors,
		KindBinder:    r.Binders,
		KindTexture:   r.Textures,
		KindModel:     r.Models,
	}

	r.add(r.Version, r.DelayFastParticle, r.FitGround, r.TransformSkip, r.AllStopOnHide,
		r.CanBeClippedOut, r.ClipBoxEnabled, r.CameraSpace, r.FullEnvLight, r.ClipOwnSetting,
		r.NearClipBegin, r.NearClipEnd, r.FarClipBegin, r.FarClipEnd, r.DrawLayer, r.DrawOrder)
	for _, k := range Kinds() {
		l := r.lists[k]
		r.add(newCount(kindInfo[k].count, l.Len))
	}
	for _, k := range Kinds() {
		r.add(r.lists[k])
	}
	return r
}

// New creates a valid, empty effect.
func New() *Root {
	r := NewRoot()
	r.ToDefault()
	return r
}

func (r *Root) list(k Kind) nodeList {
	if !k.valid() {
		return nil
	}
	return r.lists[k]
}

// Nodes returns the nodes of one kind in file order.
func (r *Root) Nodes(k Kind) []Node {
	l := r.list(k)
	if l == nil {
		return nil
	}
	elems := l.Elements()
	out := make([]Node, len(elems))
	for i, e := range elems {
		out[i] = e.(Node)
	}
	return out
}

// AllNodes returns every node, kinds in file order.
func (r *Root) AllNodes() []Node {
	var out []Node
	for _, k := range Kinds() {
		out = append(out, r.Nodes(k)...)
	}
	return out
}

// Lookup returns the node of kind k at position i, or nil.
func (r *Root) Lookup(k Kind, i int) Node {
	l := r.list(k)
	if l == nil || i < 0 || i >= l.Len() {
		return nil
	}
	return l.Elements()[i].(Node)
}

// IndexOf returns the position of n within its kind, or -1.
func (r *Root) IndexOf(n Node) int {
	l := r.list(n.Kind())
	if l == nil {
		return -1
	}
	return l.Index(n)
}

func (r *Root) resolve(n Node) (int, bool) {
	i := r.IndexOf(n)
	return i, i >= 0
}

// Add appends n to the list of its kind. References held by n are kept as
// they are; use Import to add nodes that reference each other.
func (r *Root) Add(n Node) error {
	if r.IndexOf(n) >= 0 {
		return fmt.Errorf("%s is already part of the document", n.Kind())
	}
	r.assigned = true
	return r.list(n.Kind()).appendItem(n)
}

// Remove deletes n from the document and clears every reference to it. It
// returns the nodes whose references were cleared.
func (r *Root) Remove(n Node) ([]Node, error) {
	l := r.list(n.Kind())
	i := l.Index(n)
	if i < 0 {
		return nil, fmt.Errorf("%s is not part of the document", n.Kind())
	}
	if err := l.removeAt(i); err != nil {
		return nil, err
	}

	var referrers []Node
	for _, other := range r.AllNodes() {
		cleared := false
		for _, ref := range allReferences(other) {
			if ref.detach(n) {
				cleared = true
			}
		}
		if cleared {
			referrers = append(referrers, other)
		}
	}
	return referrers, nil
}

// Move changes the position of a node within its kind. References follow
// the node; positions are renumbered on the next write.
func (r *Root) Move(k Kind, from, to int) error {
	l := r.list(k)
	if l == nil {
		return fmt.Errorf("unknown kind %v", k)
	}
	return l.Move(from, to)
}

// Import appends the nodes of a definition. References between the imported
// nodes were linked when the definition was read and follow them here.
func (r *Root) Import(def *Definition) error {
	for _, n := range def.Nodes() {
		if err := r.Add(n); err != nil {
			return err
		}
	}
	return nil
}

// Link resolves raw reference indices against the current node lists and
// returns a warning for every index with no target.
func (r *Root) Link() []Warning {
	d := &decoder{}
	linkNodes(d, "AVFX", r.AllNodes(), r.Lookup, r.IndexOf)
	return d.warnings
}

// Validate reports consistency problems without changing the document:
// curves with out-of-order keys, unresolved reference indices and references
// to nodes that are no longer part of the document.
func (r *Root) Validate() []Warning {
	var out []Warning
	for _, n := range r.AllNodes() {
		prefix := "AVFX/" + elemName(n.Kind().Tag(), r.IndexOf(n))
		walk(n, nil, false, func(it Item, path []string) bool {
			switch v := it.(type) {
			case *Curve:
				if !v.IsAssigned() {
					return true
				}
				for _, w := range v.Validate() {
					out = append(out, Warning{Path: joinPath(prefix, path), Msg: w.Msg})
				}
			case reference:
				if !v.IsAssigned() {
					return true
				}
				for _, t := range v.targets() {
					if r.IndexOf(t) < 0 {
						out = append(out, Warning{
							Path: joinPath(prefix, path),
							Msg:  fmt.Sprintf("references a %s that is not part of the document", t.Kind()),
						})
					}
				}
				if ref, ok := v.(*Ref); ok && ref.target == nil && ref.index >= 0 {
					out = append(out, Warning{
						Path: joinPath(prefix, path),
						Msg:  fmt.Sprintf("%s index %d has no target", ref.kind, ref.index),
					})
				}
			}
			return true
		})
	}
	return out
}
