package linkindex_test

import (
	"context"
	"testing"

	"github.com/i5heu/ouroboros-records/internal/testutil"
	"github.com/i5heu/ouroboros-records/pkg/codec"
	"github.com/i5heu/ouroboros-records/pkg/ledger"
	"github.com/i5heu/ouroboros-records/pkg/linkindex"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/i5heu/ouroboros-records/pkg/versionchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const person = "person"

type personRecord struct {
	Name string `json:"name"`
}

var people = codec.JSON[personRecord]{}

type fixture struct {
	ledger *ledger.Memory
	chain  *versionchain.Chain
	index  *linkindex.Index
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := testutil.Logger(t)

	l := ledger.NewMemory(types.IdentityKey("alice"))
	chain := versionchain.New(l, versionchain.Config{Logger: logger})
	return fixture{ledger: l, chain: chain, index: linkindex.New(chain, logger)}
}

func (f fixture) create(t *testing.T, name string) (types.ActionRef, types.ContentRef) {
	t.Helper()
	data, err := people.Encode(personRecord{Name: name})
	require.NoError(t, err)
	action, content, err := f.chain.Create(context.Background(), person, data)
	require.NoError(t, err)
	return action, content
}

func (f fixture) update(t *testing.T, prior types.ActionRef, name string) types.ActionRef {
	t.Helper()
	data, err := people.Encode(personRecord{Name: name})
	require.NoError(t, err)
	next, err := f.chain.Update(context.Background(), person, prior, data)
	require.NoError(t, err)
	return next
}

func TestResolve_ListsLatestVersion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a1, content := f.create(t, "Ana")
	a2 := f.update(t, a1, "Ana2")

	latest, ok, err := f.chain.ResolveLatest(ctx, person, a1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a2, latest.ActionRef)

	require.NoError(t, f.index.AttachPath(ctx, "people", content))

	resolved, err := linkindex.ResolvePath(ctx, f.index, person, "people", people)
	require.NoError(t, err)
	assert.Empty(t, resolved.Failures)
	assert.Equal(t, []personRecord{{Name: "Ana2"}}, resolved.Values())
	require.Len(t, resolved.Entries, 1)
	assert.Equal(t, a1, resolved.Entries[0].Address)
	assert.Equal(t, a2, resolved.Entries[0].Latest.ActionRef)
}

func TestResolve_DuplicateAttach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, content := f.create(t, "Ana")
	require.NoError(t, f.index.AttachPath(ctx, "people", content))
	require.NoError(t, f.index.AttachPath(ctx, "people", content))

	resolved, err := linkindex.ResolvePath(ctx, f.index, person, "people", people)
	require.NoError(t, err)
	assert.Equal(t, []personRecord{{Name: "Ana"}}, resolved.Values())
}

func TestResolve_OrderFollowsAttachOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, ana := f.create(t, "Ana")
	_, bo := f.create(t, "Bo")
	_, cy := f.create(t, "Cy")
	for _, target := range []types.ContentRef{bo, ana, cy, bo} {
		require.NoError(t, f.index.AttachPath(ctx, "people", target))
	}

	resolved, err := linkindex.ResolvePath(ctx, f.index, person, "people", people)
	require.NoError(t, err)
	assert.Equal(t, []personRecord{{Name: "Bo"}, {Name: "Ana"}, {Name: "Cy"}}, resolved.Values())
}

func TestResolve_SkipsMissingAndReportsBadItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, good := f.create(t, "Ana")
	_, bad, err := f.chain.Create(ctx, person, []byte("not a record"))
	require.NoError(t, err)
	missing := types.ContentRefOf(person, []byte("never written"))

	for _, target := range []types.ContentRef{bad, missing, good} {
		require.NoError(t, f.index.AttachPath(ctx, "people", target))
	}

	resolved, err := linkindex.ResolvePath(ctx, f.index, person, "people", people)
	require.NoError(t, err)
	assert.Equal(t, []personRecord{{Name: "Ana"}}, resolved.Values())
	require.Len(t, resolved.Failures, 1)
	assert.Equal(t, bad, resolved.Failures[0].Target)
	assert.ErrorIs(t, resolved.Failures[0].Err, types.ErrDeserialization)
}

func TestResolve_ReportsCorruptChain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a1, content := f.create(t, "Ana")
	a2 := f.update(t, a1, "Ana2")
	require.NoError(t, f.ledger.RegisterUpdateRelation(ctx, a2, a1))
	_, other := f.create(t, "Bo")

	require.NoError(t, f.index.AttachPath(ctx, "people", content))
	require.NoError(t, f.index.AttachPath(ctx, "people", other))

	resolved, err := linkindex.ResolvePath(ctx, f.index, person, "people", people)
	require.NoError(t, err)
	assert.Equal(t, []personRecord{{Name: "Bo"}}, resolved.Values())
	require.Len(t, resolved.Failures, 1)
	assert.ErrorIs(t, resolved.Failures[0].Err, types.ErrCorruptChain)
}

func TestResolve_CreateMatchingAnotherRecordsUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a1, _ := f.create(t, "Ana")
	f.update(t, a1, "Bob")

	b1, bContent := f.create(t, "Bob")
	b2 := f.update(t, b1, "Bob2")
	require.NoError(t, f.index.AttachPath(ctx, "people", bContent))

	resolved, err := linkindex.ResolvePath(ctx, f.index, person, "people", people)
	require.NoError(t, err)
	assert.Empty(t, resolved.Failures)
	require.Len(t, resolved.Entries, 1)
	assert.Equal(t, personRecord{Name: "Bob2"}, resolved.Entries[0].Value)
	assert.Equal(t, b1, resolved.Entries[0].Address)
	assert.Equal(t, b2, resolved.Entries[0].Latest.ActionRef)
}

func TestResolve_EmptyRoot(t *testing.T) {
	f := newFixture(t)
	resolved, err := linkindex.ResolvePath(context.Background(), f.index, person, "nobody", people)
	require.NoError(t, err)
	assert.Empty(t, resolved.Entries)
	assert.Empty(t, resolved.Failures)
}

func TestResolveSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := types.IdentityKey("alice")

	_, ok, err := linkindex.ResolveSelf(ctx, f.index, person, types.IdentityKey("stranger"), people)
	require.NoError(t, err)
	assert.False(t, ok)

	first, firstContent := f.create(t, "Ana")
	require.NoError(t, f.index.AttachSelf(ctx, alice, firstContent))
	second, secondContent := f.create(t, "Ana again")
	require.NoError(t, f.index.AttachSelf(ctx, alice, secondContent))

	entry, ok, err := linkindex.ResolveSelf(ctx, f.index, person, alice, people)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ana again", entry.Value.Name)
	assert.Equal(t, second, entry.Address)
	assert.NotEqual(t, first, entry.Address)

	// a path root with the same bytes is a different root
	resolved, err := linkindex.ResolvePath(ctx, f.index, person, string(alice), people)
	require.NoError(t, err)
	assert.Empty(t, resolved.Entries)
}

func TestResolveSelf_UnresolvedWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := types.IdentityKey("alice")

	_, content := f.create(t, "Ana")
	require.NoError(t, f.index.AttachSelf(ctx, alice, content))
	require.NoError(t, f.index.AttachSelf(ctx, alice, types.ContentRefOf(person, []byte("gone"))))

	_, ok, err := linkindex.ResolveSelf(ctx, f.index, person, alice, people)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t)
	_, content := f.create(t, "Ana")
	require.NoError(t, f.index.AttachPath(context.Background(), "people", content))

	cancel()
	_, err := linkindex.ResolvePath(ctx, f.index, person, "people", people)
	assert.ErrorIs(t, err, context.Canceled)
}
