package avfx

import "fmt"

// Kind identifies a top-level node type. References are positions within
// the list of one kind.
type Kind int

const (
	KindScheduler Kind = iota
	KindTimeline
	KindEmitter
	KindParticle
	KindEffector
	KindBinder
	KindTexture
	KindModel
)

var kindInfo = [...]struct {
	tag, name, count string
}{
	KindScheduler: {"Schd", "Scheduler", "ScCn"},
	KindTimeline:  {"TmLn", "Timeline", "TlCn"},
	KindEmitter:   {"Emit", "Emitter", "EmCn"},
	KindParticle:  {"Ptcl", "Particle", "PrCn"},
	KindEffector:  {"Efct", "Effector", "EfCn"},
	KindBinder:    {"Bind", "Binder", "BdCn"},
	KindTexture:   {"Tex", "Texture", "TxCn"},
	KindModel:     {"Modl", "Model", "MdCn"},
}

// Kinds returns every kind in file order.
func Kinds() []Kind {
	return []Kind{
		KindScheduler, KindTimeline, KindEmitter, KindParticle,
		KindEffector, KindBinder, KindTexture, KindModel,
	}
}

func (k Kind) valid() bool { return k >= 0 && int(k) < len(kindInfo) }

// Tag returns the chunk name of nodes of this kind.
func (k Kind) Tag() string {
	if !k.valid() {
		return ""
	}
	return kindInfo[k].tag
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindInfo[k].name
}

// KindOf returns the kind whose nodes use the given chunk name.
func KindOf(tag string) (Kind, bool) {
	for k, info := range kindInfo {
		if info.tag == tag {
			return Kind(k), true
		}
	}
	return 0, false
}

// Node is a top-level effect node.
type Node interface {
	Item
	Kind() Kind
}

// NewNode creates an empty node of the given kind.
func NewNode(k Kind) Node {
	switch k {
	case KindScheduler:
		return NewScheduler()
	case KindTimeline:
		return NewTimeline()
	case KindEmitter:
		return NewEmitter()
	case KindParticle:
		return NewParticle()
	case KindEffector:
		return NewEffector()
	case KindBinder:
		return NewBinder()
	case KindTexture:
		return NewTexture()
	case KindModel:
		return NewModel()
	}
	panic(fmt.Sprintf("avfx: unknown node kind %d", int(k)))
}
