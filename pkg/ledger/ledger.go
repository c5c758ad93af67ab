// Package ledger defines the append-only, content addressed store the version
// chains and link indexes are built on, together with two implementations:
// Memory, an in-process arena, and Badger, a persistent store.
//
// A ledger only ever accepts new immutable entries. Every entry is stamped
// with a ledger-wide monotonic Seq at write time; "latest" and "last" in this
// module always mean highest Seq, never enumeration order.
package ledger

import (
	"context"

	"github.com/i5heu/ouroboros-records/pkg/types"
)

type Ledger interface {
	// Append stores content as the first version of a new record of
	// entryType. Fails with a StoreWriteError if the ledger rejects the entry.
	Append(ctx context.Context, entryType string, content []byte) (types.ActionRef, types.ContentRef, error)

	// AppendUpdate stores content as a later version of an existing record.
	// It is never returned by OriginalAction, so a record created with the
	// same content as another record's update keeps its own address.
	AppendUpdate(ctx context.Context, entryType string, content []byte) (types.ActionRef, types.ContentRef, error)

	// RegisterUpdateRelation links from to its successor to.
	// Fails with a NotFoundError if either side is unknown.
	RegisterUpdateRelation(ctx context.Context, from, to types.ActionRef) error

	// UpdateRelations returns every relation out of from, ordered by Seq.
	UpdateRelations(ctx context.Context, from types.ActionRef) ([]types.Relation, error)

	// GetByActionRef returns the version written by ref, false if unknown.
	GetByActionRef(ctx context.Context, ref types.ActionRef) (types.Version, bool, error)

	// OriginalAction returns the earliest Append that produced ref.
	OriginalAction(ctx context.Context, ref types.ContentRef) (types.ActionRef, bool, error)

	// RegisterIndexEdge makes target discoverable from root. Duplicates are
	// stored as separate edges.
	RegisterIndexEdge(ctx context.Context, root, target types.ContentRef) error

	// EnumerateIndexEdges returns every edge out of root, ordered by Seq.
	EnumerateIndexEdges(ctx context.Context, root types.ContentRef) ([]types.IndexEdge, error)

	// CallerIdentity is the durable key this ledger handle writes as.
	CallerIdentity() types.IdentityKey
}

// ValidateFunc lets the owner of a ledger reject entries before they are
// stored, the way validation rules of a replicated ledger would.
type ValidateFunc func(entryType string, content []byte) error
