package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/i5heu/ouroboros-records/internal/binaryCoder"
	"github.com/i5heu/ouroboros-records/internal/blobStore"
	"github.com/i5heu/ouroboros-records/internal/keyValStore"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/sirupsen/logrus"
)

const writeSequence = "ledger"

// ErrBadSignature is returned when a stored version carries a signature that
// does not verify against its author.
var ErrBadSignature = errors.New("version signature does not verify")

type BadgerConfig struct {
	Identity  types.IdentityKey
	Validator ValidateFunc
	Logger    logrus.FieldLogger

	// Signer signs every version written through this handle. Identity
	// defaults to its key.
	Signer *Identity
}

// Badger is a persistent ledger on top of the key value store. Version
// entries, relations and edges are separate keys; content is kept in the blob
// store so identical chunks are stored once.
//
// Key layout:
//
//	Version:<action>                 version entry
//	ContentAction:<content>:<seq>    every create of a content ref
//	Relation:<from>:<seq>            update relation
//	Edge:<root>:<seq>                index edge
type Badger struct {
	kv       *keyValStore.KeyValStore
	blobs    *blobStore.BlobStore
	identity types.IdentityKey
	signer   *Identity
	validate ValidateFunc
	log      logrus.FieldLogger
}

var _ Ledger = (*Badger)(nil)

func NewBadger(kv *keyValStore.KeyValStore, config BadgerConfig) *Badger {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Signer != nil && config.Identity == nil {
		config.Identity = config.Signer.Key()
	}
	return &Badger{
		kv:       kv,
		blobs:    blobStore.NewBlobStore(kv),
		identity: config.Identity,
		signer:   config.Signer,
		validate: config.Validator,
		log:      config.Logger.WithField("component", "ledger"),
	}
}

// As returns a handle on the same store that writes as identity. Its versions
// are unsigned.
func (b *Badger) As(identity types.IdentityKey) *Badger {
	clone := *b
	clone.identity = identity
	clone.signer = nil
	return &clone
}

// AsSigner returns a handle on the same store that writes and signs as id.
func (b *Badger) AsSigner(id *Identity) *Badger {
	clone := *b
	clone.identity = id.Key()
	clone.signer = id
	return &clone
}

func (b *Badger) CallerIdentity() types.IdentityKey {
	return b.identity
}

func (b *Badger) nextSeq() (types.Seq, error) {
	n, err := b.kv.NextSequence(writeSequence)
	if err != nil {
		return 0, err
	}
	// badger sequences start at 0, Seq 0 is reserved for "unset"
	return types.Seq(n + 1), nil
}

func (b *Badger) Append(ctx context.Context, entryType string, content []byte) (types.ActionRef, types.ContentRef, error) {
	return b.append(ctx, entryType, content, true)
}

func (b *Badger) AppendUpdate(ctx context.Context, entryType string, content []byte) (types.ActionRef, types.ContentRef, error) {
	return b.append(ctx, entryType, content, false)
}

func (b *Badger) append(ctx context.Context, entryType string, content []byte, create bool) (types.ActionRef, types.ContentRef, error) {
	if err := checkContext(ctx); err != nil {
		return types.ActionRef{}, types.ContentRef{}, err
	}
	op := "append " + entryType

	if b.validate != nil {
		if err := b.validate(entryType, content); err != nil {
			return types.ActionRef{}, types.ContentRef{}, &types.StoreWriteError{Op: op, Err: err}
		}
	}

	chunks, err := b.blobs.Put(content)
	if err != nil {
		return types.ActionRef{}, types.ContentRef{}, &types.StoreWriteError{Op: op, Err: err}
	}

	seq, err := b.nextSeq()
	if err != nil {
		return types.ActionRef{}, types.ContentRef{}, &types.StoreWriteError{Op: op, Err: err}
	}

	v := types.Version{
		EntryType:  entryType,
		ContentRef: types.ContentRefOf(entryType, content),
		Author:     b.identity,
		Seq:        seq,
	}
	v.Level.SetToNow()
	v.ActionRef = types.ActionRefOf(v.ContentRef, v.Author, v.Seq, v.Level)
	if b.signer != nil {
		v.Signature = b.signer.Sign(v.ActionRef.Bytes())
	}

	batch := [][2][]byte{
		{GenerateKeyFromPrefixAndHash(VersionPrefix, types.Hash(v.ActionRef)), binaryCoder.VersionToByte(v, chunks)},
	}
	if create {
		batch = append(batch, [2][]byte{sequencedKey(ContentActionPrefix, types.Hash(v.ContentRef), seq), v.ActionRef.Bytes()})
	}
	if err := b.kv.WriteBatch(batch); err != nil {
		return types.ActionRef{}, types.ContentRef{}, &types.StoreWriteError{Op: op, Err: err}
	}

	b.log.WithFields(logrus.Fields{
		"entryType": entryType,
		"action":    v.ActionRef.String(),
		"seq":       seq,
		"create":    create,
	}).Debug("appended version")
	return v.ActionRef, v.ContentRef, nil
}

func (b *Badger) actionExists(ref types.ActionRef) (bool, error) {
	return b.kv.Exists(GenerateKeyFromPrefixAndHash(VersionPrefix, types.Hash(ref)))
}

func (b *Badger) RegisterUpdateRelation(ctx context.Context, from, to types.ActionRef) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	for _, ref := range []types.ActionRef{from, to} {
		exists, err := b.actionExists(ref)
		if err != nil {
			return fmt.Errorf("check action %s: %w", ref, err)
		}
		if !exists {
			return &types.NotFoundError{Kind: "action", Ref: ref.String()}
		}
	}

	seq, err := b.nextSeq()
	if err != nil {
		return &types.StoreWriteError{Op: "register relation", Err: err}
	}
	r := types.Relation{From: from, To: to, Seq: seq}
	if err := b.kv.Write(sequencedKey(RelationPrefix, types.Hash(from), seq), binaryCoder.RelationToByte(r)); err != nil {
		return &types.StoreWriteError{Op: "register relation", Err: err}
	}
	return nil
}

func (b *Badger) UpdateRelations(ctx context.Context, from types.ActionRef) ([]types.Relation, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	items, err := b.kv.GetItemsWithPrefix(sequencedPrefix(RelationPrefix, types.Hash(from)))
	if err != nil {
		return nil, fmt.Errorf("list relations of %s: %w", from, err)
	}

	relations := make([]types.Relation, 0, len(items))
	for _, item := range items {
		r, err := binaryCoder.ByteToRelation(item[1])
		if err != nil {
			return nil, fmt.Errorf("relation %q: %w", item[0], err)
		}
		relations = append(relations, r)
	}
	return relations, nil
}

func (b *Badger) GetByActionRef(ctx context.Context, ref types.ActionRef) (types.Version, bool, error) {
	if err := checkContext(ctx); err != nil {
		return types.Version{}, false, err
	}

	data, err := b.kv.Read(GenerateKeyFromPrefixAndHash(VersionPrefix, types.Hash(ref)))
	if errors.Is(err, keyValStore.ErrKeyNotFound) {
		return types.Version{}, false, nil
	}
	if err != nil {
		return types.Version{}, false, fmt.Errorf("read version %s: %w", ref, err)
	}

	v, chunks, err := binaryCoder.ByteToVersion(data)
	if err != nil {
		return types.Version{}, false, fmt.Errorf("version %s: %w", ref, err)
	}
	if len(v.Signature) > 0 && !Verify(v.Author, v.ActionRef.Bytes(), v.Signature) {
		return types.Version{}, false, fmt.Errorf("version %s by %s: %w", ref, v.Author, ErrBadSignature)
	}

	v.Content, err = b.blobs.Get(chunks)
	if err != nil {
		return types.Version{}, false, fmt.Errorf("content of version %s: %w", ref, err)
	}
	return v, true, nil
}

func (b *Badger) OriginalAction(ctx context.Context, ref types.ContentRef) (types.ActionRef, bool, error) {
	if err := checkContext(ctx); err != nil {
		return types.ActionRef{}, false, err
	}

	items, err := b.kv.GetItemsWithPrefix(sequencedPrefix(ContentActionPrefix, types.Hash(ref)))
	if err != nil {
		return types.ActionRef{}, false, fmt.Errorf("list writes of %s: %w", ref, err)
	}
	if len(items) == 0 {
		return types.ActionRef{}, false, nil
	}

	var action types.ActionRef
	if err := action.FromBytes(items[0][1]); err != nil {
		return types.ActionRef{}, false, fmt.Errorf("write of %s: %w", ref, err)
	}
	return action, true, nil
}

func (b *Badger) RegisterIndexEdge(ctx context.Context, root, target types.ContentRef) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	seq, err := b.nextSeq()
	if err != nil {
		return &types.StoreWriteError{Op: "register edge", Err: err}
	}
	e := types.IndexEdge{Root: root, Target: target, Author: b.identity, Seq: seq}
	if err := b.kv.Write(sequencedKey(EdgePrefix, types.Hash(root), seq), binaryCoder.EdgeToByte(e)); err != nil {
		return &types.StoreWriteError{Op: "register edge", Err: err}
	}
	return nil
}

func (b *Badger) EnumerateIndexEdges(ctx context.Context, root types.ContentRef) ([]types.IndexEdge, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	items, err := b.kv.GetItemsWithPrefix(sequencedPrefix(EdgePrefix, types.Hash(root)))
	if err != nil {
		return nil, fmt.Errorf("list edges of %s: %w", root, err)
	}

	edges := make([]types.IndexEdge, 0, len(items))
	for _, item := range items {
		e, err := binaryCoder.ByteToEdge(item[1])
		if err != nil {
			return nil, fmt.Errorf("edge %q: %w", item[0], err)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// Stats counts stored versions, relations and edges.
func (b *Badger) Stats() (Stats, error) {
	var s Stats
	for prefix, dst := range map[string]*int{
		VersionPrefix:         &s.Versions,
		RelationPrefix:        &s.Relations,
		EdgePrefix:            &s.Edges,
		blobStore.ChunkPrefix: &s.Chunks,
	} {
		keys, err := b.kv.GetKeysWithPrefix([]byte(prefix))
		if err != nil {
			return Stats{}, err
		}
		*dst = len(keys)
	}
	return s, nil
}

type Stats struct {
	Versions  int
	Relations int
	Edges     int
	Chunks    int
}
