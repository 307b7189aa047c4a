package avfx

// Emitter spawns particles and child emitters.
type Emitter struct {
	Block
	Type          *Enum[EmitterType]
	SoundName     *Text
	SoundIndex    *Int
	LoopStart     *Int
	LoopEnd       *Int
	ChildLimit    *Int
	Effector      *Ref
	AnyDirection  *Bool
	ParticleCount *Count
	EmitterCount  *Count

	CreateInterval       *Curve
	CreateIntervalRandom *Curve
	Gravity              *Curve
	GravityRandom        *Curve
	AirResistance        *Curve
	Color                *Curve

	Particles *List[*EmitterItem]
	Emitters  *List[*EmitterItem]
}

func NewEmitter() *Emitter {
	e := &Emitter{
		Block:        newBlock("Emit"),
		Type:         NewEnum("EVT", EmitterPoint),
		SoundName:    NewText("SdNm", ""),
		SoundIndex:   NewInt("SdNo", -1),
		LoopStart:    NewInt("LpSt", 0),
		LoopEnd:      NewInt("LpEd", 0),
		ChildLimit:   NewInt("ClCn", 0),
		Effector:     NewRef("EfNo", KindEffector),
		AnyDirection: NewBool("bAGS", false),

		CreateInterval:       NewCurve("CrI"),
		CreateIntervalRandom: NewCurve("CrIR"),
		Gravity:              NewCurve("Gra"),
		GravityRandom:        NewCurve("GraR"),
		AirResistance:        NewCurve("ARs"),
		Color:                NewColorCurve("Col"),
	}
	e.Particles = newList("ItPr", func() *EmitterItem { return newEmitterItem("ItPr", "PrNo", KindParticle) })
	e.Emitters = newList("ItEm", func() *EmitterItem { return newEmitterItem("ItEm", "EmNo", KindEmitter) })
	e.ParticleCount = newCount("PrCn", e.Particles.Len)
	e.EmitterCount = newCount("EmCn", e.Emitters.Len)

	e.add(e.Type, e.SoundName, e.SoundIndex, e.LoopStart, e.LoopEnd, e.ChildLimit,
		e.Effector, e.AnyDirection, e.ParticleCount, e.EmitterCount)
	e.addOptional(e.CreateInterval, e.CreateIntervalRandom, e.Gravity, e.GravityRandom,
		e.AirResistance, e.Color)
	e.add(e.Particles, e.Emitters)
	return e
}

func (e *Emitter) Kind() Kind { return KindEmitter }

// EmitterItem spawns one particle or child emitter.
type EmitterItem struct {
	Block
	Enabled     *Bool
	Target      *Ref
	ParentIndex *Int
	CreateTime  *Int
	CreateCount *Int
}

func newEmitterItem(tag, refTag string, kind Kind) *EmitterItem {
	it := &EmitterItem{
		Block:       newBlock(tag),
		Enabled:     NewBool("bEna", true),
		Target:      NewRef(refTag, kind),
		ParentIndex: NewInt("TgtB", -1),
		CreateTime:  NewInt("CrTm", 1),
		CreateCount: NewInt("CrCn", 1),
	}
	it.add(it.Enabled, it.Target, it.ParentIndex, it.CreateTime, it.CreateCount)
	return it
}
