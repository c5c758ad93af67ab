package types_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestLatestRelation(t *testing.T) {
	_, ok := types.LatestRelation(nil)
	assert.False(t, ok)

	b := types.ActionRef(types.ContentRefOf("t", []byte("b")))
	c := types.ActionRef(types.ContentRefOf("t", []byte("c")))
	latest, ok := types.LatestRelation([]types.Relation{
		{To: c, Seq: 9},
		{To: b, Seq: 4},
	})
	assert.True(t, ok)
	assert.Equal(t, c, latest.To)
}

func TestLatestEdge(t *testing.T) {
	_, ok := types.LatestEdge(nil)
	assert.False(t, ok)

	first := types.ContentRefOf("t", []byte("1"))
	second := types.ContentRefOf("t", []byte("2"))
	latest, ok := types.LatestEdge([]types.IndexEdge{
		{Target: first, Seq: 1},
		{Target: second, Seq: 2},
		{Target: first, Seq: 0},
	})
	assert.True(t, ok)
	assert.Equal(t, second, latest.Target)
}

func TestErrors_MatchSentinels(t *testing.T) {
	cause := errors.New("disk full")
	write := fmt.Errorf("create: %w", &types.StoreWriteError{Op: "append", Err: cause})
	assert.ErrorIs(t, write, types.ErrStoreWrite)
	assert.ErrorIs(t, write, cause)
	assert.NotErrorIs(t, write, types.ErrNotFound)

	notFound := &types.NotFoundError{Kind: "action", Ref: "abc"}
	assert.ErrorIs(t, notFound, types.ErrNotFound)
	assert.Contains(t, notFound.Error(), "abc")

	corrupt := &types.CorruptChainError{Hops: 3}
	assert.ErrorIs(t, corrupt, types.ErrCorruptChain)

	decode := &types.DeserializationError{EntryType: "profile", Err: cause}
	assert.ErrorIs(t, decode, types.ErrDeserialization)
	var target *types.DeserializationError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", decode), &target))
	assert.Equal(t, "profile", target.EntryType)
}
