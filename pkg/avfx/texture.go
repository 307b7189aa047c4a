package avfx

// Texture is a texture path. The node's own payload is the string.
type Texture struct {
	Text
}

func NewTexture() *Texture {
	t := &Texture{Text: Text{leaf: leaf{tag: "Tex"}}}
	t.reset()
	return t
}

func (t *Texture) Kind() Kind { return KindTexture }

func (t *Texture) Path() string        { return t.Value() }
func (t *Texture) SetPath(path string) { t.SetValue(path) }

// Model holds raw mesh buffers for model particles and emitters.
type Model struct {
	Block
	Vertices          *Bytes
	Indices           *Bytes
	EmitVertices      *Bytes
	EmitVertexNumbers *Bytes
}

func NewModel() *Model {
	m := &Model{
		Block:             newBlock("Modl"),
		Vertices:          NewBytes("VDrw"),
		Indices:           NewBytes("VIdx"),
		EmitVertices:      NewBytes("VEmt"),
		EmitVertexNumbers: NewBytes("VNum"),
	}
	m.addOptional(m.Vertices, m.Indices, m.EmitVertices, m.EmitVertexNumbers)
	return m
}

func (m *Model) Kind() Kind { return KindModel }
