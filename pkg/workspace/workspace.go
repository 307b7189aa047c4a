// Package workspace stores effect documents in a local bbolt database.
//
// Documents are kept as compressed bundles in the "documents" bucket; a
// msgpack-encoded Meta record under the same name lives in "meta".
package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/goopsie/vfxFileTools/pkg/archive"
	"github.com/goopsie/vfxFileTools/pkg/avfx"
	"github.com/goopsie/vfxFileTools/pkg/verify"
)

var (
	documentsBucket = []byte("documents")
	metaBucket      = []byte("meta")
)

var (
	// ErrNotFound is returned when no document is stored under a name.
	ErrNotFound = errors.New("workspace: document not found")

	// ErrCorrupt is returned when a stored document no longer matches its digest.
	ErrCorrupt = errors.New("workspace: stored document is corrupt")
)

// Meta describes a stored document.
type Meta struct {
	Name     string `msgpack:"name"`
	Source   string `msgpack:"source,omitempty"`
	Size     int    `msgpack:"size"`
	Packed   int    `msgpack:"packed"`
	Digest   uint64 `msgpack:"digest"`
	Verified bool   `msgpack:"verified"`

	// Renames maps "Kind:old" to the index a reference was renumbered to
	// when the document was saved.
	Renames map[string]int `msgpack:"renames,omitempty"`

	// Counts holds the number of nodes of each kind.
	Counts  map[string]int `msgpack:"counts"`
	SavedAt time.Time      `msgpack:"saved_at"`
}

type config struct {
	timeout time.Duration
	noSync  bool
	verify  bool
	level   int
	now     func() time.Time
}

// Option configures a Store.
type Option func(*config)

// WithTimeout sets how long Open waits for the database file lock.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithNoSync skips fsync after each commit. Meant for tests and scratch stores.
func WithNoSync() Option {
	return func(c *config) {
		c.noSync = true
	}
}

// WithVerify makes Save run a round-trip check on every document and
// record the outcome in Meta.Verified.
func WithVerify() Option {
	return func(c *config) {
		c.verify = true
	}
}

// WithCompressionLevel sets the zstd level used for stored bundles.
func WithCompressionLevel(level int) Option {
	return func(c *config) {
		c.level = level
	}
}

// Store is an open workspace database.
type Store struct {
	db  *bbolt.DB
	cfg config
}

// Open opens or creates the workspace database at path.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := config{
		timeout: 5 * time.Second,
		level:   archive.DefaultCompressionLevel,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	bopt := *bbolt.DefaultOptions
	bopt.Timeout = cfg.timeout
	bopt.NoSync = cfg.noSync

	db, err := bbolt.Open(path, 0o666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{documentsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("workspace: %w", err)
	}

	return &Store{db: db, cfg: cfg}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Save serializes root and stores it under name, replacing any previous
// document. Serializing commits renumbered reference indices into root;
// every renumbering is recorded in the returned Meta.
func (s *Store) Save(name string, root *avfx.Root, source string) (Meta, []avfx.Warning, error) {
	if name == "" {
		return Meta{}, nil, fmt.Errorf("workspace: empty document name")
	}

	before := refIndices(root)
	data, warnings, err := avfx.Serialize(root)
	if err != nil {
		return Meta{}, warnings, fmt.Errorf("serialize %s: %w", name, err)
	}
	after := refIndices(root)

	meta := Meta{
		Name:    name,
		Source:  source,
		Size:    len(data),
		Digest:  verify.Digest(data),
		Renames: renames(before, after),
		Counts:  make(map[string]int),
		SavedAt: s.cfg.now().UTC(),
	}
	for _, k := range avfx.Kinds() {
		meta.Counts[k.String()] = len(root.Nodes(k))
	}

	if s.cfg.verify {
		ok, _, err := verify.RoundTrip(data)
		if err != nil {
			return Meta{}, warnings, fmt.Errorf("verify %s: %w", name, err)
		}
		meta.Verified = ok
	}

	packed, err := archive.Pack(data, archive.WithCompressionLevel(s.cfg.level))
	if err != nil {
		return Meta{}, warnings, fmt.Errorf("pack %s: %w", name, err)
	}
	meta.Packed = len(packed)

	encoded, err := encodeMeta(&meta)
	if err != nil {
		return Meta{}, warnings, err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(documentsBucket).Put([]byte(name), packed); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put([]byte(name), encoded)
	})
	if err != nil {
		return Meta{}, warnings, fmt.Errorf("store %s: %w", name, err)
	}
	return meta, warnings, nil
}

// Load reads and parses the document stored under name.
func (s *Store) Load(name string) (*avfx.Root, Meta, []avfx.Warning, error) {
	var packed []byte
	var meta Meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(documentsBucket).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		// values are only valid for the life of the transaction
		packed = bytes.Clone(v)
		return decodeMeta(tx.Bucket(metaBucket).Get([]byte(name)), &meta)
	})
	if err != nil {
		return nil, Meta{}, nil, err
	}

	data, err := archive.Unpack(packed)
	if err != nil {
		return nil, meta, nil, fmt.Errorf("unpack %s: %w", name, err)
	}
	if d := verify.Digest(data); d != meta.Digest {
		return nil, meta, nil, fmt.Errorf("%w: %s digest %016x, recorded %016x", ErrCorrupt, name, d, meta.Digest)
	}

	root, warnings, err := avfx.Parse(data)
	if err != nil {
		return nil, meta, warnings, fmt.Errorf("parse %s: %w", name, err)
	}
	return root, meta, warnings, nil
}

// Bytes returns the serialized document stored under name.
func (s *Store) Bytes(name string) ([]byte, error) {
	var packed []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(documentsBucket).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		packed = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archive.Unpack(packed)
}

// Meta returns the metadata of the document stored under name.
func (s *Store) Meta(name string) (Meta, error) {
	var meta Meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(metaBucket).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return decodeMeta(v, &meta)
	})
	return meta, err
}

// List returns the metadata of every stored document, ordered by name.
func (s *Store) List() ([]Meta, error) {
	var out []Meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(metaBucket).ForEach(func(k, v []byte) error {
			var meta Meta
			if err := decodeMeta(v, &meta); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			out = append(out, meta)
			return nil
		})
	})
	return out, err
}

// Delete removes the document stored under name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(name)
		docs := tx.Bucket(documentsBucket)
		if docs.Get(key) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err := docs.Delete(key); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Delete(key)
	})
}

func encodeMeta(meta *Meta) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(meta)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("encode meta %s: %w", meta.Name, err)
	}
	return buf.Bytes(), nil
}

func decodeMeta(data []byte, meta *Meta) error {
	if data == nil {
		return fmt.Errorf("%w: missing meta record", ErrCorrupt)
	}
	if err := msgpack.Unmarshal(data, meta); err != nil {
		return fmt.Errorf("%w: decode meta: %w", ErrCorrupt, err)
	}
	return nil
}

type refIndex struct {
	kind    avfx.Kind
	indices []int
}

// refIndices records the stored indices of every reference in root by path.
func refIndices(root *avfx.Root) map[string]refIndex {
	out := make(map[string]refIndex)
	avfx.Walk(root, func(path string, it avfx.Item) {
		if !it.IsAssigned() {
			return
		}
		switch r := it.(type) {
		case *avfx.Ref:
			out[path] = refIndex{kind: r.Kind(), indices: []int{r.Index()}}
		case *avfx.RefList:
			idx := make([]int, r.Len())
			for i := range idx {
				idx[i] = r.Index(i)
			}
			out[path] = refIndex{kind: r.Kind(), indices: idx}
		}
	})
	return out
}

func renames(before, after map[string]refIndex) map[string]int {
	var out map[string]int
	for path, b := range before {
		a, ok := after[path]
		if !ok || len(a.indices) != len(b.indices) {
			continue
		}
		for i, old := range b.indices {
			if old < 0 || old == a.indices[i] {
				continue
			}
			if out == nil {
				out = make(map[string]int)
			}
			out[fmt.Sprintf("%s:%d", b.kind, old)] = a.indices[i]
		}
	}
	return out
}
