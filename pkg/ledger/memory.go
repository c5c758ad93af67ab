package ledger

import (
	"context"
	"sync"

	"github.com/i5heu/ouroboros-records/pkg/types"
)

// memoryArena is the storage shared by every view of a Memory ledger.
// Versions are kept in an arena keyed by ActionRef, relations and edges as
// multi-edge adjacency lists in Seq order.
type memoryArena struct {
	mu        sync.RWMutex
	seq       types.Seq
	validate  ValidateFunc
	versions  map[types.ActionRef]types.Version
	originals map[types.ContentRef]types.ActionRef // first create per content
	relations map[types.ActionRef][]types.Relation
	edges     map[types.ContentRef][]types.IndexEdge
}

// Memory is an in-process ledger. Views created with As share one arena, which
// makes it possible to simulate several peers writing to the same ledger.
type Memory struct {
	arena    *memoryArena
	identity types.IdentityKey
}

var _ Ledger = (*Memory)(nil)

func NewMemory(identity types.IdentityKey) *Memory {
	return &Memory{
		arena: &memoryArena{
			versions:  map[types.ActionRef]types.Version{},
			originals: map[types.ContentRef]types.ActionRef{},
			relations: map[types.ActionRef][]types.Relation{},
			edges:     map[types.ContentRef][]types.IndexEdge{},
		},
		identity: identity,
	}
}

// As returns a view of the same arena that writes as identity.
func (m *Memory) As(identity types.IdentityKey) *Memory {
	return &Memory{arena: m.arena, identity: identity}
}

// SetValidator installs a validation rule for all views of the arena.
func (m *Memory) SetValidator(validate ValidateFunc) {
	m.arena.mu.Lock()
	defer m.arena.mu.Unlock()
	m.arena.validate = validate
}

func (m *Memory) CallerIdentity() types.IdentityKey {
	return m.identity
}

// nextSeq must be called with the arena lock held.
func (a *memoryArena) nextSeq() types.Seq {
	a.seq++
	return a.seq
}

func (m *Memory) Append(ctx context.Context, entryType string, content []byte) (types.ActionRef, types.ContentRef, error) {
	return m.append(ctx, entryType, content, true)
}

func (m *Memory) AppendUpdate(ctx context.Context, entryType string, content []byte) (types.ActionRef, types.ContentRef, error) {
	return m.append(ctx, entryType, content, false)
}

func (m *Memory) append(ctx context.Context, entryType string, content []byte, create bool) (types.ActionRef, types.ContentRef, error) {
	if err := checkContext(ctx); err != nil {
		return types.ActionRef{}, types.ContentRef{}, err
	}

	a := m.arena
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.validate != nil {
		if err := a.validate(entryType, content); err != nil {
			return types.ActionRef{}, types.ContentRef{}, &types.StoreWriteError{Op: "append " + entryType, Err: err}
		}
	}

	v := types.Version{
		EntryType:  entryType,
		Content:    append([]byte(nil), content...),
		ContentRef: types.ContentRefOf(entryType, content),
		Author:     m.identity,
		Seq:        a.nextSeq(),
	}
	v.Level.SetToNow()
	v.ActionRef = types.ActionRefOf(v.ContentRef, v.Author, v.Seq, v.Level)

	a.versions[v.ActionRef] = v
	if _, ok := a.originals[v.ContentRef]; create && !ok {
		a.originals[v.ContentRef] = v.ActionRef
	}
	return v.ActionRef, v.ContentRef, nil
}

func (m *Memory) RegisterUpdateRelation(ctx context.Context, from, to types.ActionRef) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	a := m.arena
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ref := range []types.ActionRef{from, to} {
		if _, ok := a.versions[ref]; !ok {
			return &types.NotFoundError{Kind: "action", Ref: ref.String()}
		}
	}

	a.relations[from] = append(a.relations[from], types.Relation{From: from, To: to, Seq: a.nextSeq()})
	return nil
}

func (m *Memory) UpdateRelations(ctx context.Context, from types.ActionRef) ([]types.Relation, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	m.arena.mu.RLock()
	defer m.arena.mu.RUnlock()
	return append([]types.Relation(nil), m.arena.relations[from]...), nil
}

func (m *Memory) GetByActionRef(ctx context.Context, ref types.ActionRef) (types.Version, bool, error) {
	if err := checkContext(ctx); err != nil {
		return types.Version{}, false, err
	}

	m.arena.mu.RLock()
	defer m.arena.mu.RUnlock()
	v, ok := m.arena.versions[ref]
	if ok {
		v.Content = append([]byte(nil), v.Content...)
	}
	return v, ok, nil
}

func (m *Memory) OriginalAction(ctx context.Context, ref types.ContentRef) (types.ActionRef, bool, error) {
	if err := checkContext(ctx); err != nil {
		return types.ActionRef{}, false, err
	}

	m.arena.mu.RLock()
	defer m.arena.mu.RUnlock()
	action, ok := m.arena.originals[ref]
	return action, ok, nil
}

func (m *Memory) RegisterIndexEdge(ctx context.Context, root, target types.ContentRef) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	a := m.arena
	a.mu.Lock()
	defer a.mu.Unlock()
	a.edges[root] = append(a.edges[root], types.IndexEdge{
		Root:   root,
		Target: target,
		Author: m.identity,
		Seq:    a.nextSeq(),
	})
	return nil
}

func (m *Memory) EnumerateIndexEdges(ctx context.Context, root types.ContentRef) ([]types.IndexEdge, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	m.arena.mu.RLock()
	defer m.arena.mu.RUnlock()
	return append([]types.IndexEdge(nil), m.arena.edges[root]...), nil
}
