// Package projects holds the record types of a project: votes on goals and the
// entry points into its goal tree.
package projects

import (
	"github.com/i5heu/ouroboros-records/pkg/linkindex"
	"github.com/i5heu/ouroboros-records/pkg/records"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/i5heu/ouroboros-records/pkg/versionchain"
	"github.com/sirupsen/logrus"
)

// GoalVote is one agent's weighting of a goal. Weights are fractions in [0, 1].
type GoalVote struct {
	GoalAddress   types.ActionRef   `json:"goal_address" validate:"required"`
	Urgency       float64           `json:"urgency" validate:"min=0,max=1"`
	Importance    float64           `json:"importance" validate:"min=0,max=1"`
	Impact        float64           `json:"impact" validate:"min=0,max=1"`
	Effort        float64           `json:"effort" validate:"min=0,max=1"`
	AgentAddress  types.IdentityKey `json:"agent_address" validate:"required"`
	UnixTimestamp float64           `json:"unix_timestamp"`
}

// EntryPoint marks a goal as a way into the tree, not a ledger entry.
type EntryPoint struct {
	Color          string            `json:"color" validate:"omitempty,hexcolor"`
	CreatorAddress types.IdentityKey `json:"creator_address" validate:"required"`
	CreatedAt      float64           `json:"created_at"`
	GoalAddress    types.ActionRef   `json:"goal_address" validate:"required"`
}

var (
	GoalVoteDescriptor = records.Descriptor[GoalVote]{
		EntryType: "goal_vote",
		IndexPath: "goal_vote",
	}
	EntryPointDescriptor = records.Descriptor[EntryPoint]{
		EntryType: "entry_point",
		IndexPath: "entry_point",
	}
)

func NewGoalVotes(chain *versionchain.Chain, index *linkindex.Index, logger logrus.FieldLogger) (*records.Operations[GoalVote], error) {
	return records.New(chain, index, GoalVoteDescriptor, logger)
}

func NewEntryPoints(chain *versionchain.Chain, index *linkindex.Index, logger logrus.FieldLogger) (*records.Operations[EntryPoint], error) {
	return records.New(chain, index, EntryPointDescriptor, logger)
}
