package projects_test

import (
	"context"
	"testing"

	"github.com/i5heu/ouroboros-records/internal/testutil"
	"github.com/i5heu/ouroboros-records/pkg/ledger"
	"github.com/i5heu/ouroboros-records/pkg/linkindex"
	"github.com/i5heu/ouroboros-records/pkg/projects"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/i5heu/ouroboros-records/pkg/versionchain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*versionchain.Chain, *linkindex.Index, logrus.FieldLogger) {
	t.Helper()
	logger := testutil.Logger(t)
	chain := versionchain.New(ledger.NewMemory(types.IdentityKey("alice")), versionchain.Config{Logger: logger})
	return chain, linkindex.New(chain, logger), logger
}

func TestGoalVotes(t *testing.T) {
	ctx := context.Background()
	chain, index, logger := setup(t)
	votes, err := projects.NewGoalVotes(chain, index, logger)
	require.NoError(t, err)

	goal, _, err := chain.Create(ctx, "goal", []byte("goal"))
	require.NoError(t, err)

	vote := projects.GoalVote{
		GoalAddress:   goal,
		Urgency:       0.5,
		Importance:    0.25,
		Impact:        1,
		Effort:        0,
		AgentAddress:  types.IdentityKey("alice"),
		UnixTimestamp: 1600000000,
	}
	created, err := votes.Create(ctx, vote)
	require.NoError(t, err)

	created.Entry.Urgency = 0.75
	_, err = votes.Update(ctx, created)
	require.NoError(t, err)

	list, err := votes.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0.75, list[0].Entry.Urgency)
	assert.Equal(t, created.Address, list[0].Address)

	vote.Impact = 2
	_, err = votes.Create(ctx, vote)
	assert.ErrorIs(t, err, types.ErrStoreWrite)
}

func TestEntryPoints(t *testing.T) {
	ctx := context.Background()
	chain, index, logger := setup(t)
	points, err := projects.NewEntryPoints(chain, index, logger)
	require.NoError(t, err)

	goal, _, err := chain.Create(ctx, "goal", []byte("goal"))
	require.NoError(t, err)

	created, err := points.Create(ctx, projects.EntryPoint{
		Color:          "#5f65ff",
		CreatorAddress: types.IdentityKey("alice"),
		CreatedAt:      1600000000,
		GoalAddress:    goal,
	})
	require.NoError(t, err)

	fetched, ok, err := points.Fetch(ctx, created.Address)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.Entry, fetched.Entry)

	_, err = points.Create(ctx, projects.EntryPoint{
		Color:          "blue-ish",
		CreatorAddress: types.IdentityKey("alice"),
		GoalAddress:    goal,
	})
	assert.ErrorIs(t, err, types.ErrStoreWrite)

	_, err = points.Create(ctx, projects.EntryPoint{CreatorAddress: types.IdentityKey("alice")})
	assert.ErrorIs(t, err, types.ErrStoreWrite)
}
