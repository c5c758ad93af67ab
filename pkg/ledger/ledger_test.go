package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/i5heu/ouroboros-records/internal/binaryCoder"
	"github.com/i5heu/ouroboros-records/internal/keyValStore"
	"github.com/i5heu/ouroboros-records/internal/testutil"
	"github.com/i5heu/ouroboros-records/pkg/ledger"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = types.IdentityKey("alice")
	bob   = types.IdentityKey("bob")
)

// peers is a ledger implementation plus a way to get a second writer on the
// same storage.
type peers struct {
	name string
	new  func(t *testing.T, validate ledger.ValidateFunc) (ledger.Ledger, func(types.IdentityKey) ledger.Ledger)
}

func implementations() []peers {
	return []peers{
		{
			name: "memory",
			new: func(t *testing.T, validate ledger.ValidateFunc) (ledger.Ledger, func(types.IdentityKey) ledger.Ledger) {
				m := ledger.NewMemory(alice)
				m.SetValidator(validate)
				return m, func(k types.IdentityKey) ledger.Ledger { return m.As(k) }
			},
		},
		{
			name: "badger",
			new: func(t *testing.T, validate ledger.ValidateFunc) (ledger.Ledger, func(types.IdentityKey) ledger.Ledger) {
				kv, err := keyValStore.NewKeyValStore(keyValStore.StoreConfig{
					Paths:    []string{t.TempDir()},
					InMemory: true,
					Logger:   testutil.Logger(t),
				})
				require.NoError(t, err)
				t.Cleanup(func() { _ = kv.Close() })

				b := ledger.NewBadger(kv, ledger.BadgerConfig{
					Identity:  alice,
					Validator: validate,
					Logger:    testutil.Logger(t),
				})
				return b, func(k types.IdentityKey) ledger.Ledger { return b.As(k) }
			},
		},
	}
}

func TestLedger_AppendAndGet(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			l, _ := impl.new(t, nil)

			action, content, err := l.Append(ctx, "profile", []byte(`{"name":"Ana"}`))
			require.NoError(t, err)
			assert.Equal(t, types.ContentRefOf("profile", []byte(`{"name":"Ana"}`)), content)

			v, ok, err := l.GetByActionRef(ctx, action)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "profile", v.EntryType)
			assert.Equal(t, []byte(`{"name":"Ana"}`), v.Content)
			assert.Equal(t, action, v.ActionRef)
			assert.Equal(t, content, v.ContentRef)
			assert.True(t, v.Author.Equal(alice))
			assert.NotZero(t, v.Seq)

			_, ok, err = l.GetByActionRef(ctx, types.ActionRef{1})
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestLedger_SameContentTwiceKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			l, as := impl.new(t, nil)

			first, content, err := l.Append(ctx, "profile", []byte("same"))
			require.NoError(t, err)
			second, content2, err := as(bob).Append(ctx, "profile", []byte("same"))
			require.NoError(t, err)

			assert.Equal(t, content, content2)
			assert.NotEqual(t, first, second)

			original, ok, err := l.OriginalAction(ctx, content)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, first, original)

			_, ok, err = l.OriginalAction(ctx, types.ContentRefOf("profile", []byte("never")))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestLedger_UpdatesAreNeverOriginal(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			l, as := impl.new(t, nil)

			update, content, err := l.AppendUpdate(ctx, "profile", []byte("Bob"))
			require.NoError(t, err)
			_, ok, err := l.OriginalAction(ctx, content)
			require.NoError(t, err)
			assert.False(t, ok)

			v, ok, err := l.GetByActionRef(ctx, update)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte("Bob"), v.Content)

			created, content2, err := as(bob).Append(ctx, "profile", []byte("Bob"))
			require.NoError(t, err)
			assert.Equal(t, content, content2)

			original, ok, err := l.OriginalAction(ctx, content)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, created, original)
		})
	}
}

func TestLedger_RelationsAreOrderedBySeq(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			l, as := impl.new(t, nil)

			v1, _, err := l.Append(ctx, "goal", []byte("v1"))
			require.NoError(t, err)
			v2a, _, err := l.Append(ctx, "goal", []byte("v2a"))
			require.NoError(t, err)
			v2b, _, err := as(bob).Append(ctx, "goal", []byte("v2b"))
			require.NoError(t, err)

			require.NoError(t, l.RegisterUpdateRelation(ctx, v1, v2a))
			require.NoError(t, as(bob).RegisterUpdateRelation(ctx, v1, v2b))

			relations, err := l.UpdateRelations(ctx, v1)
			require.NoError(t, err)
			require.Len(t, relations, 2)
			assert.Equal(t, v2a, relations[0].To)
			assert.Equal(t, v2b, relations[1].To)
			assert.Less(t, relations[0].Seq, relations[1].Seq)

			none, err := l.UpdateRelations(ctx, v2a)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestLedger_RelationToUnknownAction(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			l, _ := impl.new(t, nil)

			known, _, err := l.Append(ctx, "goal", []byte("v1"))
			require.NoError(t, err)

			err = l.RegisterUpdateRelation(ctx, known, types.ActionRef{9})
			assert.ErrorIs(t, err, types.ErrNotFound)
			err = l.RegisterUpdateRelation(ctx, types.ActionRef{9}, known)
			assert.ErrorIs(t, err, types.ErrNotFound)
		})
	}
}

func TestLedger_IndexEdges(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			l, as := impl.new(t, nil)
			root := types.PathRef("people")
			a := types.ContentRefOf("profile", []byte("a"))
			b := types.ContentRefOf("profile", []byte("b"))

			require.NoError(t, l.RegisterIndexEdge(ctx, root, a))
			require.NoError(t, as(bob).RegisterIndexEdge(ctx, root, b))
			require.NoError(t, l.RegisterIndexEdge(ctx, root, a))

			edges, err := l.EnumerateIndexEdges(ctx, root)
			require.NoError(t, err)
			require.Len(t, edges, 3)
			assert.Equal(t, []types.ContentRef{a, b, a}, []types.ContentRef{edges[0].Target, edges[1].Target, edges[2].Target})
			assert.True(t, edges[1].Author.Equal(bob))

			latest, ok := types.LatestEdge(edges)
			require.True(t, ok)
			assert.Equal(t, a, latest.Target)
			assert.True(t, latest.Author.Equal(alice))

			other, err := l.EnumerateIndexEdges(ctx, types.PathRef("nobody"))
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestLedger_ValidatorRejectsWrite(t *testing.T) {
	ctx := context.Background()
	rejected := errors.New("content too large")
	validate := func(entryType string, content []byte) error {
		if len(content) > 4 {
			return rejected
		}
		return nil
	}

	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			l, _ := impl.new(t, validate)

			_, _, err := l.Append(ctx, "note", []byte("ok"))
			require.NoError(t, err)

			_, _, err = l.Append(ctx, "note", []byte("far too long"))
			assert.ErrorIs(t, err, types.ErrStoreWrite)
			assert.ErrorIs(t, err, rejected)
		})
	}
}

func TestLedger_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			l, _ := impl.new(t, nil)
			_, _, err := l.Append(ctx, "note", []byte("x"))
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestBadger_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	open := func() (*keyValStore.KeyValStore, *ledger.Badger) {
		kv, err := keyValStore.NewKeyValStore(keyValStore.StoreConfig{
			Paths:  []string{dir},
			Logger: testutil.Logger(t),
		})
		require.NoError(t, err)
		return kv, ledger.NewBadger(kv, ledger.BadgerConfig{Identity: alice, Logger: testutil.Logger(t)})
	}

	kv, l := open()
	v1, _, err := l.Append(ctx, "goal", []byte("v1"))
	require.NoError(t, err)
	before, ok, err := l.GetByActionRef(ctx, v1)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, kv.Close())

	kv, l = open()
	defer kv.Close()

	v2, _, err := l.Append(ctx, "goal", []byte("v2"))
	require.NoError(t, err)
	after, ok, err := l.GetByActionRef(ctx, v2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, after.Seq, before.Seq)

	stats, err := l.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Versions)
	assert.Positive(t, stats.Chunks)
}

func TestBadger_SignsVersions(t *testing.T) {
	ctx := context.Background()
	kv, err := keyValStore.NewKeyValStore(keyValStore.StoreConfig{InMemory: true, Logger: testutil.Logger(t)})
	require.NoError(t, err)
	defer kv.Close()

	id, err := ledger.NewIdentity()
	require.NoError(t, err)
	l := ledger.NewBadger(kv, ledger.BadgerConfig{Signer: id, Logger: testutil.Logger(t)})
	assert.Equal(t, id.Key(), l.CallerIdentity())

	signed, _, err := l.Append(ctx, "note", []byte("signed"))
	require.NoError(t, err)
	v, ok, err := l.GetByActionRef(ctx, signed)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ledger.Verify(id.Key(), signed.Bytes(), v.Signature))

	unsigned, _, err := l.As(bob).Append(ctx, "note", []byte("unsigned"))
	require.NoError(t, err)
	v, ok, err = l.GetByActionRef(ctx, unsigned)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, v.Signature)

	// rewrite the stored entry with a broken signature
	key := ledger.GenerateKeyFromPrefixAndHash(ledger.VersionPrefix, types.Hash(signed))
	data, err := kv.Read(key)
	require.NoError(t, err)
	stored, chunks, err := binaryCoder.ByteToVersion(data)
	require.NoError(t, err)
	stored.Signature[0] ^= 0xff
	require.NoError(t, kv.Write(key, binaryCoder.VersionToByte(stored, chunks)))

	_, _, err = l.GetByActionRef(ctx, signed)
	assert.ErrorIs(t, err, ledger.ErrBadSignature)
}

func TestLoadOrCreateIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "identity")

	created, err := ledger.LoadOrCreateIdentity(path)
	require.NoError(t, err)
	loaded, err := ledger.LoadOrCreateIdentity(path)
	require.NoError(t, err)
	assert.Equal(t, created.Key(), loaded.Key())

	sig := loaded.Sign([]byte("hello"))
	assert.True(t, ledger.Verify(created.Key(), []byte("hello"), sig))
	assert.False(t, ledger.Verify(created.Key(), []byte("other"), sig))
	assert.False(t, ledger.Verify(types.IdentityKey("short"), []byte("hello"), sig))
}
