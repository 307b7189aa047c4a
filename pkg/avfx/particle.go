package avfx

// Particle describes a particle variant. The layout of its Data block
// depends on Type.
type Particle struct {
	Block
	Type         *Enum[ParticleType]
	LoopStart    *Int
	LoopEnd      *Int
	IsDepthTest  *Bool
	IsDepthWrite *Bool

	Life          *Curve
	Gravity       *Curve
	GravityRandom *Curve
	Color         *Curve

	TextureColor1  *TextureColor1
	TexturePalette *TexturePalette
}

func NewParticle() *Particle {
	p := &Particle{
		Block:        newBlock("Ptcl"),
		Type:         NewEnum("PrVT", ParticleParameter),
		LoopStart:    NewInt("LpSt", 0),
		LoopEnd:      NewInt("LpEd", 0),
		IsDepthTest:  NewBool("bDsT", true),
		IsDepthWrite: NewBool("bDsW", false),

		Life:          NewCurve("Life"),
		Gravity:       NewCurve("Gra"),
		GravityRandom: NewCurve("GraR"),
		Color:         NewColorCurve("Col"),

		TextureColor1:  newTextureColor1(),
		TexturePalette: newTexturePalette(),
	}
	p.add(p.Type, p.LoopStart, p.LoopEnd, p.IsDepthTest, p.IsDepthWrite)
	p.addOptional(p.Life, p.Gravity, p.GravityRandom, p.Color, p.TextureColor1, p.TexturePalette)
	p.addDynamic(NewRaw("Data"), func() Item { return newParticleData(p.Type.Value()) })
	return p
}

func (p *Particle) Kind() Kind { return KindParticle }

// Data returns the type-specific data block: a *ParticleDataLine,
// *ParticleDataDisc, *ParticleDataModel, or a *Raw for other types.
func (p *Particle) Data() Item { return p.item("Data") }

// SetType changes the particle type and replaces Data with a default block
// for the new type.
func (p *Particle) SetType(t ParticleType) {
	p.Type.SetValue(t)
	data := newParticleData(t)
	data.ToDefault()
	p.swap(data)
}

func (p *Particle) ToDefault() {
	p.Block.ToDefault()
	data := newParticleData(p.Type.Value())
	data.ToDefault()
	p.swap(data)
}

func newParticleData(t ParticleType) Item {
	switch t {
	case ParticleLine:
		return newParticleDataLine()
	case ParticleDisc:
		return newParticleDataDisc()
	case ParticleModel:
		return newParticleDataModel()
	}
	return NewRaw("Data")
}

type ParticleDataLine struct {
	Block
	LineCount    *Int
	Length       *Curve
	LengthRandom *Curve
	ColorBegin   *Curve
	ColorEnd     *Curve
}

func newParticleDataLine() *ParticleDataLine {
	d := &ParticleDataLine{
		Block:        newBlock("Data"),
		LineCount:    NewInt("LnCT", 1),
		Length:       NewCurve("Len"),
		LengthRandom: NewCurve("LenR"),
		ColorBegin:   NewColorCurve("ColB"),
		ColorEnd:     NewColorCurve("ColE"),
	}
	d.add(d.LineCount)
	d.addOptional(d.Length, d.LengthRandom, d.ColorBegin, d.ColorEnd)
	return d
}

type ParticleDataDisc struct {
	Block
	PartsCount     *Int
	PartsCountU    *Int
	PartsCountV    *Int
	PointInterval  *Float
	Angle          *Curve
	WidthBegin     *Curve
	WidthEnd       *Curve
	RadiusBegin    *Curve
	RadiusEnd      *Curve
	ColorEdgeInner *Curve
	ColorEdgeOuter *Curve
}

func newParticleDataDisc() *ParticleDataDisc {
	d := &ParticleDataDisc{
		Block:          newBlock("Data"),
		PartsCount:     NewInt("PrtC", 1),
		PartsCountU:    NewInt("PCnU", 1),
		PartsCountV:    NewInt("PCnV", 1),
		PointInterval:  NewFloat("PIFU", 1),
		Angle:          NewCurve("Ang"),
		WidthBegin:     NewCurve("WB"),
		WidthEnd:       NewCurve("WE"),
		RadiusBegin:    NewCurve("RB"),
		RadiusEnd:      NewCurve("RE"),
		ColorEdgeInner: NewColorCurve("CEI"),
		ColorEdgeOuter: NewColorCurve("CEO"),
	}
	d.add(d.PartsCount, d.PartsCountU, d.PartsCountV, d.PointInterval)
	d.addOptional(d.Angle, d.WidthBegin, d.WidthEnd, d.RadiusBegin, d.RadiusEnd,
		d.ColorEdgeInner, d.ColorEdgeOuter)
	return d
}

type ParticleDataModel struct {
	Block
	Model       *Ref
	RandomValue *Int
	FPS         *Int
	Morph       *Curve
}

func newParticleDataModel() *ParticleDataModel {
	d := &ParticleDataModel{
		Block:       newBlock("Data"),
		Model:       NewRef("MdNo", KindModel),
		RandomValue: NewInt("NoRV", 0),
		FPS:         NewInt("FPS", 30),
		Morph:       NewCurve("Moph"),
	}
	d.add(d.Model, d.RandomValue, d.FPS)
	d.addOptional(d.Morph)
	return d
}

// TextureColor1 is the primary texture stage of a particle.
type TextureColor1 struct {
	Block
	Enabled           *Bool
	ColorToAlpha      *Bool
	UseScreenCopy     *Bool
	PreviousFrameCopy *Bool
	UVSet             *Int
	Filter            *Enum[TextureFilter]
	BorderU           *Enum[TextureBorder]
	BorderV           *Enum[TextureBorder]
	CalculateColor    *Enum[TextureCalculate]
	CalculateAlpha    *Enum[TextureCalculate]
	Texture           *Ref
	MaskTextures      *RefList
	TexN              *Curve
	TexNRandom        *Curve
}

func newTextureColor1() *TextureColor1 {
	tc := &TextureColor1{
		Block:             newBlock("TC1"),
		Enabled:           NewBool("bEna", true),
		ColorToAlpha:      NewBool("bC2A", false),
		UseScreenCopy:     NewBool("bUSC", false),
		PreviousFrameCopy: NewBool("bPFC", false),
		UVSet:             NewInt("UvSN", 0),
		Filter:            NewEnum("TFT", FilterLinear),
		BorderU:           NewEnum("TBUT", BorderWrap),
		BorderV:           NewEnum("TBVT", BorderWrap),
		CalculateColor:    NewEnum("TCCT", CalculateMultiply),
		CalculateAlpha:    NewEnum("TCAT", CalculateMultiply),
		Texture:           NewRef("TxNo", KindTexture),
		MaskTextures:      NewRefList("TLst", KindTexture),
		TexN:              NewCurve("TxN"),
		TexNRandom:        NewCurve("TxNR"),
	}
	tc.add(tc.Enabled, tc.ColorToAlpha, tc.UseScreenCopy, tc.PreviousFrameCopy, tc.UVSet,
		tc.Filter, tc.BorderU, tc.BorderV, tc.CalculateColor, tc.CalculateAlpha, tc.Texture)
	tc.addOptional(tc.MaskTextures, tc.TexN, tc.TexNRandom)
	return tc
}

// TexturePalette maps particle colour through a palette texture.
type TexturePalette struct {
	Block
	Enabled *Bool
	Filter  *Enum[TextureFilter]
	Border  *Enum[TextureBorder]
	Texture *Ref
}

func newTexturePalette() *TexturePalette {
	tp := &TexturePalette{
		Block:   newBlock("TP"),
		Enabled: NewBool("bEna", false),
		Filter:  NewEnum("TFT", FilterLinear),
		Border:  NewEnum("TBT", BorderClamp),
		Texture: NewRef("TxNo", KindTexture),
	}
	tp.add(tp.Enabled, tp.Filter, tp.Border, tp.Texture)
	return tp
}
