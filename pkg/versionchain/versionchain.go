// Package versionchain turns immutable ledger entries into mutable records.
//
// A record is created once and from then on addressed by the ActionRef of that
// first write. Every update appends a new version and links it to its
// predecessor with an update relation. Resolving a record walks the relations
// from the first version to the latest one.
package versionchain

import (
	"context"
	"fmt"

	"github.com/i5heu/ouroboros-records/pkg/ledger"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/sirupsen/logrus"
)

// DefaultMaxHops bounds a single resolve walk.
const DefaultMaxHops = 10000

// TieBreak picks the relation to follow when a version has more than one
// successor. relations is never empty and is ordered by Seq.
type TieBreak func(relations []types.Relation) types.Relation

// LastWins follows the most recently registered relation.
func LastWins(relations []types.Relation) types.Relation {
	r, _ := types.LatestRelation(relations)
	return r
}

// FirstWins follows the earliest registered relation.
func FirstWins(relations []types.Relation) types.Relation {
	first := relations[0]
	for _, r := range relations[1:] {
		if r.Seq < first.Seq {
			first = r
		}
	}
	return first
}

type Config struct {
	TieBreak TieBreak
	MaxHops  int
	Logger   logrus.FieldLogger
}

type Chain struct {
	ledger   ledger.Ledger
	tieBreak TieBreak
	maxHops  int
	log      logrus.FieldLogger
}

func New(l ledger.Ledger, config Config) *Chain {
	if config.TieBreak == nil {
		config.TieBreak = LastWins
	}
	if config.MaxHops <= 0 {
		config.MaxHops = DefaultMaxHops
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &Chain{
		ledger:   l,
		tieBreak: config.TieBreak,
		maxHops:  config.MaxHops,
		log:      config.Logger.WithField("component", "versionchain"),
	}
}

func (c *Chain) Ledger() ledger.Ledger {
	return c.ledger
}

// Create appends the first version of a new record.
func (c *Chain) Create(ctx context.Context, entryType string, content []byte) (types.ActionRef, types.ContentRef, error) {
	return c.ledger.Append(ctx, entryType, content)
}

// Update appends content as the successor of prior. prior must be a version of
// entryType. The new version is written before the relation, so a reader can
// briefly see the new content without it being reachable from prior.
func (c *Chain) Update(ctx context.Context, entryType string, prior types.ActionRef, content []byte) (types.ActionRef, error) {
	v, ok, err := c.ledger.GetByActionRef(ctx, prior)
	if err != nil {
		return types.ActionRef{}, fmt.Errorf("load prior %s: %w", prior, err)
	}
	if !ok || v.EntryType != entryType {
		return types.ActionRef{}, &types.NotFoundError{Kind: "action", Ref: prior.String()}
	}

	next, _, err := c.ledger.AppendUpdate(ctx, entryType, content)
	if err != nil {
		return types.ActionRef{}, err
	}
	if err := c.ledger.RegisterUpdateRelation(ctx, prior, next); err != nil {
		return types.ActionRef{}, err
	}

	c.log.WithFields(logrus.Fields{
		"entryType": entryType,
		"prior":     prior.String(),
		"next":      next.String(),
	}).Debug("registered update")
	return next, nil
}

// FollowLatestRelation returns the successor of from chosen by the tie-break
// policy, false if from has never been updated.
func (c *Chain) FollowLatestRelation(ctx context.Context, from types.ActionRef) (types.Relation, bool, error) {
	relations, err := c.ledger.UpdateRelations(ctx, from)
	if err != nil {
		return types.Relation{}, false, err
	}
	if len(relations) == 0 {
		return types.Relation{}, false, nil
	}
	return c.tieBreak(relations), true, nil
}

// ResolveLatest returns the newest version reachable from start. It reports
// false when start is unknown or not of entryType.
func (c *Chain) ResolveLatest(ctx context.Context, entryType string, start types.ActionRef) (types.Version, bool, error) {
	path, err := c.walk(ctx, entryType, start)
	if err != nil || len(path) == 0 {
		return types.Version{}, false, err
	}
	return path[len(path)-1], true, nil
}

// History returns every version on the resolved path from start, oldest
// first. An unknown start yields an empty history.
func (c *Chain) History(ctx context.Context, entryType string, start types.ActionRef) ([]types.Version, error) {
	return c.walk(ctx, entryType, start)
}

func (c *Chain) walk(ctx context.Context, entryType string, start types.ActionRef) ([]types.Version, error) {
	current, ok, err := c.ledger.GetByActionRef(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", start, err)
	}
	if !ok || current.EntryType != entryType {
		return nil, nil
	}

	path := []types.Version{current}
	seen := map[types.ActionRef]struct{}{start: {}}
	for hops := 0; ; hops++ {
		next, ok, err := c.FollowLatestRelation(ctx, current.ActionRef)
		if err != nil {
			return nil, fmt.Errorf("relations of %s: %w", current.ActionRef, err)
		}
		if !ok {
			return path, nil
		}

		if hops >= c.maxHops {
			return nil, &types.CorruptChainError{Start: start, Hops: hops}
		}
		if _, revisited := seen[next.To]; revisited {
			return nil, &types.CorruptChainError{Start: start, Hops: hops + 1}
		}
		seen[next.To] = struct{}{}

		successor, ok, err := c.ledger.GetByActionRef(ctx, next.To)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", next.To, err)
		}
		if !ok || successor.EntryType != entryType {
			// relation registered but its target is not visible here yet
			c.log.WithFields(logrus.Fields{
				"from": current.ActionRef.String(),
				"to":   next.To.String(),
			}).Debug("update target not visible, stopping walk")
			return path, nil
		}

		current = successor
		path = append(path, current)
	}
}
