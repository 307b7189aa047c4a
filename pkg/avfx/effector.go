package avfx

// Effector applies a screen or scene effect such as a light or camera shake.
// Its type-specific Data block is kept opaque.
type Effector struct {
	Block
	Type          *Enum[EffectorType]
	RotationOrder *Enum[RotationOrder]
	CoordOrder    *Enum[RotationOrder]
	AffectOther   *Bool
	AffectGame    *Bool
	LoopStart     *Int
	LoopEnd       *Int
	Data          *Raw
}

func NewEffector() *Effector {
	e := &Effector{
		Block:         newBlock("Efct"),
		Type:          NewEnum("EfVT", EffectorPointLight),
		RotationOrder: NewEnum("RoOT", RotationZYX),
		CoordOrder:    NewEnum("CCOT", RotationXYZ),
		AffectOther:   NewBool("bAOV", false),
		AffectGame:    NewBool("bAGm", false),
		LoopStart:     NewInt("LpSt", 0),
		LoopEnd:       NewInt("LpEd", 0),
		Data:          NewRaw("Data"),
	}
	e.add(e.Type, e.RotationOrder, e.CoordOrder, e.AffectOther, e.AffectGame, e.LoopStart, e.LoopEnd)
	e.addOptional(e.Data)
	return e
}

func (e *Effector) Kind() Kind { return KindEffector }
