// Package profiles stores one profile per agent. Every profile is listed under
// the "agents" path and under the key of the agent that created it.
package profiles

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/i5heu/ouroboros-records/pkg/ledger"
	"github.com/i5heu/ouroboros-records/pkg/linkindex"
	"github.com/i5heu/ouroboros-records/pkg/records"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/i5heu/ouroboros-records/pkg/versionchain"
	"github.com/sirupsen/logrus"
)

const (
	EntryType  = "profile"
	AgentsPath = "agents"
)

var ErrNotOwnProfile = errors.New("a profile can only be written by the agent it is about")

type Status string

const (
	Online  Status = "Online"
	Away    Status = "Away"
	Offline Status = "Offline"
)

// ParseStatus maps anything that is not Online or Away to Offline.
func ParseStatus(s string) Status {
	switch Status(s) {
	case Online, Away:
		return Status(s)
	default:
		return Offline
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(ParseStatus(string(s))))
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

type Profile struct {
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Handle    string            `json:"handle" validate:"required"`
	Status    Status            `json:"status"`
	AvatarURL string            `json:"avatar_url" validate:"omitempty,url"`
	Address   types.IdentityKey `json:"address" validate:"required"`
}

var Descriptor = records.Descriptor[Profile]{
	EntryType: EntryType,
	IndexPath: AgentsPath,
	IndexSelf: true,
}

type Service struct {
	ops      *records.Operations[Profile]
	ledger   ledger.Ledger
	identity types.IdentityKey
}

func NewService(chain *versionchain.Chain, index *linkindex.Index, logger logrus.FieldLogger) (*Service, error) {
	ops, err := records.New(chain, index, Descriptor, logger)
	if err != nil {
		return nil, err
	}
	return &Service{ops: ops, ledger: chain.Ledger(), identity: chain.Ledger().CallerIdentity()}, nil
}

func (s *Service) checkOwner(op string, p Profile) error {
	if !p.Address.Equal(s.identity) {
		return &types.StoreWriteError{Op: op + " " + EntryType, Err: ErrNotOwnProfile}
	}
	return nil
}

// CreateWhoAmI stores the caller's profile.
func (s *Service) CreateWhoAmI(ctx context.Context, p Profile) (records.WireRecord[Profile], error) {
	if err := s.checkOwner("create", p); err != nil {
		return records.WireRecord[Profile]{}, err
	}
	return s.ops.Create(ctx, p)
}

// UpdateWhoAmI stores a new version of the caller's own profile. Both the new
// content and the profile at update.Address must belong to the caller.
func (s *Service) UpdateWhoAmI(ctx context.Context, update records.WireRecord[Profile]) (records.WireRecord[Profile], error) {
	if err := s.checkOwner("update", update.Entry); err != nil {
		return records.WireRecord[Profile]{}, err
	}

	created, ok, err := s.ledger.GetByActionRef(ctx, update.Address)
	if err != nil {
		return records.WireRecord[Profile]{}, err
	}
	if ok && !created.Author.Equal(s.identity) {
		return records.WireRecord[Profile]{}, &types.StoreWriteError{Op: "update " + EntryType, Err: ErrNotOwnProfile}
	}
	return s.ops.Update(ctx, update)
}

// WhoAmI returns the caller's profile, false if they never created one.
func (s *Service) WhoAmI(ctx context.Context) (records.WireRecord[Profile], bool, error) {
	return s.ops.ReadMine(ctx)
}

// FetchAgents returns the latest profile of every agent.
func (s *Service) FetchAgents(ctx context.Context) ([]Profile, error) {
	list, err := s.ops.List(ctx)
	if err != nil {
		return nil, err
	}
	agents := make([]Profile, len(list))
	for i, r := range list {
		agents[i] = r.Entry
	}
	return agents, nil
}

func (s *Service) FetchAgentAddress() types.IdentityKey {
	return s.identity
}

func (s *Service) Operations() *records.Operations[Profile] {
	return s.ops
}
