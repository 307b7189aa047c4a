package avfx

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopsie/vfxFileTools/pkg/chunk"
)

func mustSet(t testing.TB, r *Ref, n Node) {
	t.Helper()
	require.NoError(t, r.Set(n))
}

// sampleDocument builds an effect touching every node kind:
// Schd -> TmLn -> Emit -> Ptcl -> Tex, with the timeline bound to a binder,
// the emitter using an effector and a model particle using a model.
func sampleDocument(t testing.TB) *Root {
	t.Helper()
	root := New()

	tex := NewTexture()
	tex.ToDefault()
	tex.SetPath("vfx/common/texture/glow1.atex")

	mask := NewTexture()
	mask.ToDefault()
	mask.SetPath("vfx/common/texture/mask0.atex")

	mdl := NewModel()
	mdl.ToDefault()
	mdl.Vertices.SetValue([]byte{1, 2, 3, 4, 5})
	mdl.Indices.SetValue([]byte{0, 0, 1, 0, 2, 0})

	bind := NewBinder()
	bind.ToDefault()
	bind.Life.SetValue(120)

	efct := NewEffector()
	efct.ToDefault()
	efct.Type.SetValue(EffectorCameraQuake)

	disc := NewParticle()
	disc.ToDefault()
	disc.SetType(ParticleDisc)
	disc.Life.AddKey(Key{Time: 0, Type: KeyLinear, Z: 30})
	disc.Color.AddKey(Key{Time: 0, Type: KeyLinear, X: 1, Y: 0.5, Z: 0.25})
	disc.Color.AddKey(Key{Time: 30, Type: KeyLinear, X: 0, Y: 0, Z: 1})
	disc.TextureColor1.SetAssigned(true)
	mustSet(t, disc.TextureColor1.Texture, tex)
	require.NoError(t, disc.TextureColor1.MaskTextures.Add(mask))
	d := disc.Data().(*ParticleDataDisc)
	d.PartsCount.SetValue(16)
	d.Angle.AddKey(Key{Time: 0, Type: KeySpline, X: 1, Y: 1, Z: 0})
	d.Angle.AddKey(Key{Time: 60, Type: KeyLinear, X: 1, Y: 1, Z: 360})

	model := NewParticle()
	model.ToDefault()
	model.SetType(ParticleModel)
	mustSet(t, model.Data().(*ParticleDataModel).Model, mdl)

	emit := NewEmitter()
	emit.ToDefault()
	mustSet(t, emit.Effector, efct)
	mustSet(t, emit.Particles.New().Target, disc)
	mustSet(t, emit.Particles.New().Target, model)
	emit.CreateInterval.AddKey(Key{Time: 0, Type: KeyStep, Z: 2})

	tl := NewTimeline()
	tl.ToDefault()
	mustSet(t, tl.Binder, bind)
	item := tl.Items.New()
	mustSet(t, item.Emitter, emit)
	item.EndTime.SetValue(90)
	tl.Clips.New().SetValue(make([]byte, 16))

	sch := NewScheduler()
	sch.ToDefault()
	mustSet(t, sch.Items.New().Timeline, tl)
	mustSet(t, sch.Triggers.New().Timeline, tl)

	for _, n := range []Node{sch, tl, emit, disc, model, efct, bind, tex, mask, mdl} {
		require.NoError(t, root.Add(n))
	}
	return root
}

func leafChunk(w *chunk.Writer, tag string, payload ...byte) {
	_ = w.Leaf(chunk.MustTag(tag), payload)
}

func nestedChunk(w *chunk.Writer, tag string, fn func(*chunk.Writer)) {
	_ = w.Nested(chunk.MustTag(tag), func(cw *chunk.Writer) error {
		fn(cw)
		return nil
	})
}

func i32(v int32) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

func TestRoundTrip(t *testing.T) {
	root := sampleDocument(t)

	data, warnings, err := Serialize(root)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	parsed, warnings, err := Parse(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	again, _, err := Serialize(parsed)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	t.Run("ReferencesLinked", func(t *testing.T) {
		sch := parsed.Schedulers.At(0)
		tl := parsed.Timelines.At(0)
		assert.Same(t, tl, sch.Items.At(0).Timeline.Target())
		assert.Same(t, parsed.Binders.At(0), tl.Binder.Target())
		assert.Same(t, parsed.Emitters.At(0), tl.Items.At(0).Emitter.Target())

		disc := parsed.Particles.At(0)
		assert.Equal(t, ParticleDisc, disc.Type.Value())
		require.IsType(t, &ParticleDataDisc{}, disc.Data())
		assert.Same(t, parsed.Textures.At(0), disc.TextureColor1.Texture.Target())
		assert.Same(t, parsed.Textures.At(1), disc.TextureColor1.MaskTextures.Target(0))

		model := parsed.Particles.At(1).Data().(*ParticleDataModel)
		assert.Same(t, parsed.Models.At(0), model.Model.Target())
	})

	t.Run("Values", func(t *testing.T) {
		assert.Equal(t, "vfx/common/texture/glow1.atex", parsed.Textures.At(0).Path())
		assert.Equal(t, 120, parsed.Binders.At(0).Life.Value())
		assert.Equal(t, []byte{1, 2, 3, 4, 5}, parsed.Models.At(0).Vertices.Value())
		assert.Len(t, parsed.Particles.At(0).Color.Keys.Keys, 2)
	})
}

func TestDefaultNodes(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			n := NewNode(k)
			n.ToDefault()
			assert.Equal(t, k.Tag(), n.Tag())

			root := New()
			require.NoError(t, root.Add(n))

			data, warnings, err := Serialize(root)
			require.NoError(t, err)
			assert.Empty(t, warnings)

			parsed, warnings, err := Parse(data)
			require.NoError(t, err)
			assert.Empty(t, warnings)
			require.Len(t, parsed.Nodes(k), 1)

			again, _, err := Serialize(parsed)
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}

	t.Run("ParticleTypes", func(t *testing.T) {
		for _, pt := range []ParticleType{ParticleLine, ParticleDisc, ParticleModel, ParticleQuad} {
			p := NewParticle()
			p.ToDefault()
			p.SetType(pt)

			data, err := Marshal(p)
			require.NoError(t, err)

			back := NewParticle()
			_, err = Unmarshal(data, back)
			require.NoError(t, err, pt.String())
			assert.Equal(t, pt, back.Type.Value())

			again, err := Marshal(back)
			require.NoError(t, err)
			assert.Equal(t, data, again, pt.String())
		}
	})
}

func TestAssignment(t *testing.T) {
	t.Run("UnassignRestoresBytes", func(t *testing.T) {
		p := NewParticle()
		p.ToDefault()
		before, err := Marshal(p)
		require.NoError(t, err)

		p.TextureColor1.SetAssigned(true)
		assigned, err := Marshal(p)
		require.NoError(t, err)
		assert.NotEqual(t, before, assigned)
		assert.True(t, p.TextureColor1.Enabled.IsAssigned())

		p.TextureColor1.SetAssigned(false)
		after, err := Marshal(p)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("UnassignRecurses", func(t *testing.T) {
		p := NewParticle()
		p.ToDefault()
		p.TextureColor1.SetAssigned(true)
		p.TextureColor1.SetAssigned(false)
		assert.False(t, p.TextureColor1.Enabled.IsAssigned())
		assert.False(t, p.TextureColor1.Texture.IsAssigned())

		// assigning affects the block only
		p.TextureColor1.SetAssigned(true)
		assert.False(t, p.TextureColor1.Enabled.IsAssigned())
	})

	t.Run("ReassignedDefaultsMatchNew", func(t *testing.T) {
		root := sampleDocument(t)
		for _, n := range root.AllNodes() {
			fresh := NewNode(n.Kind())
			fresh.ToDefault()
			want, err := Marshal(fresh)
			require.NoError(t, err)

			n.SetAssigned(false)
			n.SetAssigned(true)
			n.ToDefault()
			got, err := Marshal(n)
			require.NoError(t, err)
			assert.Equal(t, want, got, n.Kind().String())
		}
	})

	t.Run("ReferencedNodesUntouched", func(t *testing.T) {
		root := sampleDocument(t)
		tl := root.Timelines.At(0)
		bind := tl.Binder.Target().(*Binder)

		tl.SetAssigned(false)
		assert.False(t, tl.Items.At(0).IsAssigned())
		assert.True(t, bind.IsAssigned())
		assert.True(t, bind.Life.IsAssigned())
	})
}

func TestPassthrough(t *testing.T) {
	w := chunk.NewWriter()
	nestedChunk(w, "AVFX", func(w *chunk.Writer) {
		leafChunk(w, "Ver", i32(Version)...)
		leafChunk(w, "Zzz", 0xde, 0xad, 0xbe)
		nestedChunk(w, "Ptcl", func(w *chunk.Writer) {
			leafChunk(w, "PrVT", i32(int32(ParticleQuad))...)
			nestedChunk(w, "Data", func(w *chunk.Writer) {
				leafChunk(w, "QuSz", i32(4)...)
			})
			nestedChunk(w, "Xtra", func(w *chunk.Writer) {
				leafChunk(w, "bEna", 1)
			})
		})
	})
	leafChunk(w, "Tail", 1, 2, 3, 4, 5)
	data := append([]byte(nil), w.Bytes()...)

	root, warnings, err := Parse(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, root.Trailing, 1)
	assert.Equal(t, "Tail", root.Trailing[0].Tag())

	p := root.Particles.At(0)
	require.IsType(t, &Raw{}, p.Data())

	out, _, err := Serialize(root)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestLayout(t *testing.T) {
	w := chunk.NewWriter()
	nestedChunk(w, "AVFX", func(w *chunk.Writer) {
		nestedChunk(w, "Bind", func(w *chunk.Writer) {
			leafChunk(w, "Life", i32(7)...)
			leafChunk(w, "Qqq", 9)
			leafChunk(w, "BnVr", i32(int32(BinderCamera))...)
		})
	})
	data := append([]byte(nil), w.Bytes()...)

	root, _, err := Parse(data)
	require.NoError(t, err)

	out, _, err := Serialize(root)
	require.NoError(t, err)
	require.Equal(t, data, out)

	b := root.Binders.At(0)
	b.VfxScaleBias.SetValue(2)

	out, _, err = Serialize(root)
	require.NoError(t, err)
	root, _, err = Parse(out)
	require.NoError(t, err)

	var tags []string
	for _, it := range root.Binders.At(0).Children() {
		if it.IsAssigned() {
			tags = append(tags, it.Tag())
		}
	}
	assert.Equal(t, []string{"Life", "Qqq", "BnVr", "Vsb"}, tags)
}

func TestParseWarnings(t *testing.T) {
	t.Run("Duplicate", func(t *testing.T) {
		w := chunk.NewWriter()
		nestedChunk(w, "AVFX", func(w *chunk.Writer) {
			nestedChunk(w, "Bind", func(w *chunk.Writer) {
				leafChunk(w, "bStG", 1)
				leafChunk(w, "bStG", 0)
			})
		})
		data := append([]byte(nil), w.Bytes()...)

		root, warnings, err := Parse(data)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, "AVFX/Bind[0]", warnings[0].Path)
		assert.Contains(t, warnings[0].Msg, "duplicate bStG")
		assert.True(t, root.Binders.At(0).StartToGlobalDir.Value())

		out, _, err := Serialize(root)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	})

	t.Run("DanglingReference", func(t *testing.T) {
		w := chunk.NewWriter()
		nestedChunk(w, "AVFX", func(w *chunk.Writer) {
			nestedChunk(w, "TmLn", func(w *chunk.Writer) {
				leafChunk(w, "BnNo", i32(5)...)
			})
		})
		data := append([]byte(nil), w.Bytes()...)

		root, warnings, err := Parse(data)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, "AVFX/TmLn[0]/BnNo", warnings[0].Path)
		assert.Contains(t, warnings[0].Msg, "index 5")

		assert.Len(t, root.Validate(), 1)

		out, _, err := Serialize(root)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	})

	t.Run("CountMismatch", func(t *testing.T) {
		w := chunk.NewWriter()
		nestedChunk(w, "AVFX", func(w *chunk.Writer) {
			leafChunk(w, "PrCn", i32(3)...)
			nestedChunk(w, "Ptcl", func(w *chunk.Writer) {
				leafChunk(w, "PrVT", i32(0)...)
			})
		})

		root, warnings, err := Parse(w.Bytes())
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].Msg, "PrCn is 3 but 1")

		out, _, err := Serialize(root)
		require.NoError(t, err)
		parsed, warnings, err := Parse(out)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, 1, parsed.Particles.Len())
	})
}

func TestParseErrors(t *testing.T) {
	build := func(fn func(w *chunk.Writer)) []byte {
		w := chunk.NewWriter()
		fn(w)
		return append([]byte(nil), w.Bytes()...)
	}

	valid := build(func(w *chunk.Writer) {
		nestedChunk(w, "AVFX", func(w *chunk.Writer) {
			leafChunk(w, "Ver", i32(Version)...)
		})
	})

	tests := []struct {
		name string
		data []byte
		path []string
	}{
		{"Empty", nil, nil},
		{"WrongRoot", build(func(w *chunk.Writer) { leafChunk(w, "Ptcl") }), nil},
		{"Truncated", valid[:len(valid)-2], nil},
		{"BoolWidth", build(func(w *chunk.Writer) {
			nestedChunk(w, "AVFX", func(w *chunk.Writer) {
				leafChunk(w, "bDFP", 1, 0)
			})
		}), []string{"AVFX", "bDFP"}},
		{"KeysBeforeCount", build(func(w *chunk.Writer) {
			nestedChunk(w, "AVFX", func(w *chunk.Writer) {
				nestedChunk(w, "Ptcl", func(w *chunk.Writer) {
					nestedChunk(w, "Life", func(w *chunk.Writer) {
						leafChunk(w, "Keys", make([]byte, KeySize)...)
						leafChunk(w, "KeyC", i32(1)...)
					})
				})
			})
		}), []string{"AVFX", "Ptcl[0]", "Life"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, chunk.ErrFormat), "want ErrFormat, got %v", err)

			if tt.path != nil {
				var fe *chunk.FormatError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, tt.path, fe.Path)
			}
		})
	}
}

func TestRemoveAndMove(t *testing.T) {
	t.Run("RemoveClearsReferences", func(t *testing.T) {
		root := sampleDocument(t)
		tl := root.Timelines.At(0)
		bind := root.Binders.At(0)

		referrers, err := root.Remove(bind)
		require.NoError(t, err)
		require.Len(t, referrers, 1)
		assert.Same(t, tl, referrers[0])
		assert.Nil(t, tl.Binder.Target())

		data, warnings, err := Serialize(root)
		require.NoError(t, err)
		assert.Empty(t, warnings)

		parsed, _, err := Parse(data)
		require.NoError(t, err)
		assert.Equal(t, 0, parsed.Binders.Len())
		assert.Equal(t, -1, parsed.Timelines.At(0).Binder.Index())
	})

	t.Run("MoveRenumbers", func(t *testing.T) {
		root := sampleDocument(t)
		disc := root.Particles.At(0)
		tex := disc.TextureColor1.Texture.Target()

		require.NoError(t, root.Move(KindTexture, 0, 1))
		assert.Equal(t, 1, root.IndexOf(tex))

		data, _, err := Serialize(root)
		require.NoError(t, err)
		assert.Equal(t, 1, disc.TextureColor1.Texture.Index())

		parsed, _, err := Parse(data)
		require.NoError(t, err)
		target := parsed.Particles.At(0).TextureColor1.Texture.Target().(*Texture)
		assert.Equal(t, "vfx/common/texture/glow1.atex", target.Path())
		assert.Equal(t, 0, parsed.Particles.At(0).TextureColor1.MaskTextures.Index(0))
	})

	t.Run("AddTwice", func(t *testing.T) {
		root := sampleDocument(t)
		assert.Error(t, root.Add(root.Binders.At(0)))
	})
}

func TestValidate(t *testing.T) {
	root := sampleDocument(t)
	assert.Empty(t, root.Validate())

	disc := root.Particles.At(0)
	disc.Life.AddKey(Key{Time: -5, Z: 1})

	removed := root.Textures.At(0)
	_, err := root.Textures.Remove(0)
	require.NoError(t, err)

	warnings := root.Validate()
	require.Len(t, warnings, 2)
	assert.Equal(t, "AVFX/Ptcl[0]/Life", warnings[0].Path)
	assert.Equal(t, "AVFX/Ptcl[0]/TC1/TxNo", warnings[1].Path)

	_, warnings, err = Serialize(root)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Msg, "outside the written set")
	assert.Nil(t, Referrers(removed, root.AllNodes())[0].(*Particle).Data().(*ParticleDataDisc).Angle.Validate())
}

func BenchmarkSerialize(b *testing.B) {
	root := sampleDocument(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Serialize(root); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	data, _, err := Serialize(sampleDocument(b))
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Parse(data); err != nil {
			b.Fatal(err)
		}
	}
}

func TestWalk(t *testing.T) {
	root := sampleDocument(t)

	paths := make(map[string]Item)
	Walk(root, func(path string, it Item) {
		_, dup := paths[path]
		assert.False(t, dup, "path %s reported twice", path)
		_, isList := it.(Sequence)
		assert.False(t, isList, "list reported at %s", path)
		paths[path] = it
	})

	assert.Same(t, root, paths["AVFX"])
	assert.Same(t, root.Timelines.At(0), paths["AVFX/TmLn[0]"])
	assert.Same(t, root.Particles.At(0).TextureColor1.Texture, paths["AVFX/Ptcl[0]/TC1/TxNo"])
	assert.Same(t, root.Timelines.At(0).Binder, paths["AVFX/TmLn[0]/BnNo"])

	var refs []string
	Walk(root.Schedulers.At(0), func(path string, it Item) {
		if _, ok := it.(*Ref); ok {
			refs = append(refs, path)
		}
	})
	assert.Equal(t, []string{"Schd/Item[0]/TlNo", "Schd/Trgr[0]/TlNo"}, refs)
}

func TestIntRange(t *testing.T) {
	tests := []struct {
		width int
		value int
	}{
		{1, 128},
		{1, -129},
		{2, 40000},
		{2, -32769},
		{4, 3_000_000_000},
		{4, -3_000_000_000},
	}
	for _, tt := range tests {
		i := NewIntN("Tst", tt.width, 0)
		i.SetValue(tt.value)
		_, err := Marshal(i)
		require.Error(t, err, "%d in %d bytes", tt.value, tt.width)
		assert.True(t, errors.Is(err, chunk.ErrEncoding))
	}

	t.Run("Bounds", func(t *testing.T) {
		for _, v := range []int{math.MinInt16, -1, 0, math.MaxInt16} {
			i := NewIntN("Tst", 2, 0)
			i.SetValue(v)
			data, err := Marshal(i)
			require.NoError(t, err)

			back := NewIntN("Tst", 2, 0)
			_, err = Unmarshal(data, back)
			require.NoError(t, err)
			assert.Equal(t, v, back.Value())
		}
	})

	t.Run("RefIndex", func(t *testing.T) {
		r := NewRef("TxNo", KindTexture)
		assert.True(t, errors.Is(r.SetIndex(-2), chunk.ErrEncoding))
		assert.True(t, errors.Is(r.SetIndex(math.MaxInt32+1), chunk.ErrEncoding))
		assert.False(t, r.IsAssigned())

		require.NoError(t, r.SetIndex(3))
		assert.Equal(t, 3, r.Index())
	})
}

func TestPadding(t *testing.T) {
	build := func(tag string) []byte {
		w := chunk.NewWriter()
		nestedChunk(w, "AVFX", func(w *chunk.Writer) {
			nestedChunk(w, "Bind", func(w *chunk.Writer) {
				leafChunk(w, "Life", i32(7)...)
				leafChunk(w, tag, 1)
			})
		})
		data := append([]byte(nil), w.Bytes()...)
		// the last leaf ends the buffer; its padding is the final 3 bytes
		data[len(data)-2] = 0xcd
		return data
	}

	t.Run("TypedLeafWarns", func(t *testing.T) {
		root, warnings, err := Parse(build("bStG"))
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, "AVFX/Bind[0]/bStG", warnings[0].Path)
		assert.Contains(t, warnings[0].Msg, "padding")
		assert.True(t, root.Binders.At(0).StartToGlobalDir.Value())
	})

	t.Run("RawKept", func(t *testing.T) {
		data := build("Qqq")
		root, warnings, err := Parse(data)
		require.NoError(t, err)
		assert.Empty(t, warnings)

		out, _, err := Serialize(root)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	})
}

func TestDependenciesSkipHidden(t *testing.T) {
	tex := NewTexture()
	tex.ToDefault()

	p := NewParticle()
	p.ToDefault()
	require.False(t, p.TextureColor1.IsAssigned())
	mustSet(t, p.TextureColor1.Texture, tex)

	assert.Empty(t, Dependencies(p))
	assert.Equal(t, []Node{p}, Collect([]Node{p}))

	p.TextureColor1.SetAssigned(true)
	assert.Equal(t, []Node{tex}, Dependencies(p))
	assert.Equal(t, []Node{tex, p}, Collect([]Node{p}))
}
