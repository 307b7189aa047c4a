package avfx

// Binder attaches timelines to a point on the owning actor.
type Binder struct {
	Block
	Type               *Enum[BinderType]
	RotationType       *Int
	StartToGlobalDir   *Bool
	VfxScaleEnabled    *Bool
	VfxScaleBias       *Float
	VfxScaleDepth      *Float
	TransformScale     *Bool
	TransformScaleBias *Float
	Life               *Int
}

func NewBinder() *Binder {
	b := &Binder{
		Block:              newBlock("Bind"),
		Type:               NewEnum("BnVr", BinderPoint),
		RotationType:       NewInt("BnRT", 0),
		StartToGlobalDir:   NewBool("bStG", false),
		VfxScaleEnabled:    NewBool("bVSc", false),
		VfxScaleBias:       NewFloat("Vsb", 0),
		VfxScaleDepth:      NewFloat("Vsdo", 0),
		TransformScale:     NewBool("bTSc", false),
		TransformScaleBias: NewFloat("TSdo", 0),
		Life:               NewInt("Life", -1),
	}
	b.add(b.Type, b.RotationType, b.StartToGlobalDir, b.VfxScaleEnabled, b.VfxScaleBias,
		b.VfxScaleDepth, b.TransformScale, b.TransformScaleBias, b.Life)
	return b
}

func (b *Binder) Kind() Kind { return KindBinder }
