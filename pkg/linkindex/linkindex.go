// Package linkindex makes records discoverable. Records are attached under a
// root, either a symbolic path such as "agents" or the identity key of their
// owner, and resolved back to their latest versions.
//
// Edges are never removed. Attaching the same target twice is allowed and
// resolves to a single entry.
package linkindex

import (
	"context"
	"fmt"

	"github.com/i5heu/ouroboros-records/pkg/codec"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/i5heu/ouroboros-records/pkg/versionchain"
	"github.com/sirupsen/logrus"
)

type Index struct {
	chain *versionchain.Chain
	log   logrus.FieldLogger
}

func New(chain *versionchain.Chain, logger logrus.FieldLogger) *Index {
	if logger == nil {
		logger = logrus.New()
	}
	return &Index{chain: chain, log: logger.WithField("component", "linkindex")}
}

// Entry is a resolved index target.
type Entry[T any] struct {
	Value   T
	Address types.ActionRef // first write of the target, stable across updates
	Latest  types.Version
}

// Failure is an index target that exists but could not be turned into a T.
type Failure struct {
	Target types.ContentRef
	Err    error
}

// Resolved holds the outcome of a resolve. Entries are in the order their
// edges were registered.
type Resolved[T any] struct {
	Entries  []Entry[T]
	Failures []Failure
}

func (r Resolved[T]) Values() []T {
	values := make([]T, len(r.Entries))
	for i, e := range r.Entries {
		values[i] = e.Value
	}
	return values
}

func (ix *Index) Attach(ctx context.Context, root, target types.ContentRef) error {
	return ix.chain.Ledger().RegisterIndexEdge(ctx, root, target)
}

// AttachPath attaches target under the symbolic path.
func (ix *Index) AttachPath(ctx context.Context, path string, target types.ContentRef) error {
	return ix.Attach(ctx, types.PathRef(path), target)
}

// AttachSelf attaches target under the identity key.
func (ix *Index) AttachSelf(ctx context.Context, key types.IdentityKey, target types.ContentRef) error {
	return ix.Attach(ctx, types.DeterministicRef(key), target)
}

// Resolve returns the latest version of every target attached under root.
// Targets that cannot be found are skipped; targets that fail to resolve or
// decode are reported in Failures. Only a failure to list the edges fails the
// call.
func Resolve[T any](ctx context.Context, ix *Index, entryType string, root types.ContentRef, c codec.Codec[T]) (Resolved[T], error) {
	edges, err := ix.chain.Ledger().EnumerateIndexEdges(ctx, root)
	if err != nil {
		return Resolved[T]{}, fmt.Errorf("enumerate edges of %s: %w", root, err)
	}

	var out Resolved[T]
	seen := make(map[types.ContentRef]struct{}, len(edges))
	for _, edge := range edges {
		if err := ctx.Err(); err != nil {
			return Resolved[T]{}, err
		}
		if _, dup := seen[edge.Target]; dup {
			continue
		}
		seen[edge.Target] = struct{}{}

		entry, ok, err := resolveTarget(ctx, ix, entryType, edge.Target, c)
		if err != nil {
			ix.log.WithFields(logrus.Fields{
				"root":   root.String(),
				"target": edge.Target.String(),
			}).WithError(err).Warn("index target failed to resolve")
			out.Failures = append(out.Failures, Failure{Target: edge.Target, Err: err})
			continue
		}
		if !ok {
			ix.log.WithField("target", edge.Target.String()).Debug("index target not found, skipping")
			continue
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

// ResolvePath is Resolve under a symbolic path.
func ResolvePath[T any](ctx context.Context, ix *Index, entryType, path string, c codec.Codec[T]) (Resolved[T], error) {
	return Resolve(ctx, ix, entryType, types.PathRef(path), c)
}

// ResolveSelf returns the target most recently attached under key. It reports
// false when nothing was attached or the winning target cannot be found.
func ResolveSelf[T any](ctx context.Context, ix *Index, entryType string, key types.IdentityKey, c codec.Codec[T]) (Entry[T], bool, error) {
	root := types.DeterministicRef(key)
	edges, err := ix.chain.Ledger().EnumerateIndexEdges(ctx, root)
	if err != nil {
		return Entry[T]{}, false, fmt.Errorf("enumerate edges of %s: %w", key, err)
	}

	latest, ok := types.LatestEdge(edges)
	if !ok {
		return Entry[T]{}, false, nil
	}
	return resolveTarget(ctx, ix, entryType, latest.Target, c)
}

func resolveTarget[T any](ctx context.Context, ix *Index, entryType string, target types.ContentRef, c codec.Codec[T]) (Entry[T], bool, error) {
	original, ok, err := ix.chain.Ledger().OriginalAction(ctx, target)
	if err != nil || !ok {
		return Entry[T]{}, false, err
	}

	latest, ok, err := ix.chain.ResolveLatest(ctx, entryType, original)
	if err != nil || !ok {
		return Entry[T]{}, false, err
	}

	value, err := c.Decode(latest.Content)
	if err != nil {
		return Entry[T]{}, false, &types.DeserializationError{Ref: latest.ActionRef, EntryType: entryType, Err: err}
	}
	return Entry[T]{Value: value, Address: original, Latest: latest}, true, nil
}
