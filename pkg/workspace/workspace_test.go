package workspace

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopsie/vfxFileTools/pkg/avfx"
	"github.com/goopsie/vfxFileTools/pkg/verify"
)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithNoSync(), WithTimeout(time.Second)}, opts...)
	s, err := Open(filepath.Join(t.TempDir(), "workspace.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// testDocument builds three binders and a timeline bound to the last one.
func testDocument(t *testing.T) *avfx.Root {
	t.Helper()
	root := avfx.New()
	for i := 0; i < 3; i++ {
		b := avfx.NewBinder()
		b.ToDefault()
		b.Life.SetValue(10 * (i + 1))
		require.NoError(t, root.Add(b))
	}
	tl := avfx.NewTimeline()
	tl.ToDefault()
	require.NoError(t, tl.Binder.Set(root.Binders.At(2)))
	require.NoError(t, root.Add(tl))
	return root
}

func TestSaveLoad(t *testing.T) {
	s := openStore(t, WithVerify())
	saved := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.cfg.now = func() time.Time { return saved }

	root := testDocument(t)
	meta, warnings, err := s.Save("glow", root, "vfx/glow.avfx")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "glow", meta.Name)
	assert.True(t, meta.Verified)
	assert.Equal(t, 3, meta.Counts["Binder"])
	assert.Equal(t, 1, meta.Counts["Timeline"])
	assert.Equal(t, 0, meta.Counts["Particle"])
	assert.Nil(t, meta.Renames)

	loaded, got, warnings, err := s.Load("glow")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "vfx/glow.avfx", got.Source)
	assert.Equal(t, meta.Digest, got.Digest)
	assert.Equal(t, meta.Size, got.Size)
	assert.True(t, saved.Equal(got.SavedAt))

	ok, diffs := verify.Trees(root, loaded)
	assert.True(t, ok, "%v", diffs)
	assert.Same(t, loaded.Binders.At(2), loaded.Timelines.At(0).Binder.Target())

	data, err := s.Bytes("glow")
	require.NoError(t, err)
	assert.Equal(t, meta.Size, len(data))
	assert.Equal(t, meta.Digest, verify.Digest(data))
}

func TestRenames(t *testing.T) {
	s := openStore(t)

	_, _, err := s.Save("fx", testDocument(t), "")
	require.NoError(t, err)

	root, _, _, err := s.Load("fx")
	require.NoError(t, err)
	require.NoError(t, root.Move(avfx.KindBinder, 2, 0))

	meta, _, err := s.Save("fx", root, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Binder:2": 0}, meta.Renames)
	assert.Equal(t, 0, root.Timelines.At(0).Binder.Index())

	stored, err := s.Meta("fx")
	require.NoError(t, err)
	assert.Equal(t, meta.Renames, stored.Renames)
}

func TestListDelete(t *testing.T) {
	s := openStore(t)

	for _, name := range []string{"spark", "aura", "mist"} {
		_, _, err := s.Save(name, testDocument(t), "")
		require.NoError(t, err)
	}

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "aura", list[0].Name)
	assert.Equal(t, "mist", list[1].Name)
	assert.Equal(t, "spark", list[2].Name)

	require.NoError(t, s.Delete("mist"))
	list, err = s.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	err = s.Delete("mist")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, _, _, err = s.Load("mist")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Meta("mist")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.db")

	s, err := Open(path, WithNoSync())
	require.NoError(t, err)
	_, _, err = s.Save("fx", testDocument(t), "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, WithNoSync())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())
	root, _, _, err := s.Load("fx")
	require.NoError(t, err)
	assert.Equal(t, 3, root.Binders.Len())
}

func TestErrors(t *testing.T) {
	s := openStore(t)

	_, _, err := s.Save("", testDocument(t), "")
	assert.Error(t, err)

	t.Run("Detached", func(t *testing.T) {
		root := testDocument(t)
		orphan := avfx.NewBinder()
		orphan.ToDefault()
		require.NoError(t, root.Timelines.At(0).Binder.Set(orphan))

		_, warnings, err := s.Save("orphan", root, "")
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, "AVFX/TmLn[0]/BnNo", warnings[0].Path)
	})
}
