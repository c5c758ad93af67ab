// Package records provides create, read, update and list operations for any
// record type, configured by a Descriptor instead of per-type code.
package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/i5heu/ouroboros-records/pkg/codec"
	"github.com/i5heu/ouroboros-records/pkg/linkindex"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/i5heu/ouroboros-records/pkg/versionchain"
	"github.com/sirupsen/logrus"
)

var ErrNoIndexPath = errors.New("record type has no index path")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("entrytype", validateEntryType)
	return v
}

// validateEntryType rejects entry type names that could collide with the
// content hash separator.
func validateEntryType(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r == 0 {
			return false
		}
	}
	return true
}

// Descriptor configures Operations for one record type.
type Descriptor[T any] struct {
	EntryType string `validate:"required,entrytype"`
	IndexPath string // empty: records are not listed under a path
	IndexSelf bool   // also attach each created record under its creator's key
	Codec     codec.Codec[T]
}

// WireRecord is a record together with its stable address, the ActionRef of
// its first version.
type WireRecord[T any] struct {
	Entry   T               `json:"entry"`
	Address types.ActionRef `json:"address"`
}

type Operations[T any] struct {
	desc  Descriptor[T]
	chain *versionchain.Chain
	index *linkindex.Index
	log   logrus.FieldLogger
}

func New[T any](chain *versionchain.Chain, index *linkindex.Index, desc Descriptor[T], logger logrus.FieldLogger) (*Operations[T], error) {
	if err := validate.Struct(desc); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}
	if desc.Codec == nil {
		desc.Codec = codec.JSON[T]{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Operations[T]{
		desc:  desc,
		chain: chain,
		index: index,
		log:   logger.WithField("entryType", desc.EntryType),
	}, nil
}

func (o *Operations[T]) Descriptor() Descriptor[T] {
	return o.desc
}

func (o *Operations[T]) encode(op string, value T) ([]byte, error) {
	if err := validate.Struct(value); err != nil {
		var invalid *validator.InvalidValidationError
		// non struct record types carry no tags to check
		if !errors.As(err, &invalid) {
			return nil, &types.StoreWriteError{Op: op + " " + o.desc.EntryType, Err: err}
		}
	}
	data, err := o.desc.Codec.Encode(value)
	if err != nil {
		return nil, &types.StoreWriteError{Op: op + " " + o.desc.EntryType, Err: err}
	}
	return data, nil
}

// Create stores value as a new record and attaches it to the configured
// indexes. If attaching fails the record still exists and is returned along
// with the error.
func (o *Operations[T]) Create(ctx context.Context, value T) (WireRecord[T], error) {
	data, err := o.encode("create", value)
	if err != nil {
		return WireRecord[T]{}, err
	}

	action, content, err := o.chain.Create(ctx, o.desc.EntryType, data)
	if err != nil {
		return WireRecord[T]{}, err
	}
	record := WireRecord[T]{Entry: value, Address: action}

	if o.desc.IndexPath != "" {
		if err := o.index.AttachPath(ctx, o.desc.IndexPath, content); err != nil {
			return record, fmt.Errorf("attach to %q: %w", o.desc.IndexPath, err)
		}
	}
	if o.desc.IndexSelf {
		if err := o.index.AttachSelf(ctx, o.chain.Ledger().CallerIdentity(), content); err != nil {
			return record, fmt.Errorf("attach to caller: %w", err)
		}
	}

	o.log.WithField("address", action.String()).Debug("created record")
	return record, nil
}

// Update stores record.Entry as the newest version of the record at
// record.Address. The update is chained onto the current latest version, so
// History stays linear. Finding that version walks the chain and fails with a
// CorruptChainError if the chain from record.Address is cyclic or too long.
func (o *Operations[T]) Update(ctx context.Context, record WireRecord[T]) (WireRecord[T], error) {
	data, err := o.encode("update", record.Entry)
	if err != nil {
		return WireRecord[T]{}, err
	}

	latest, ok, err := o.chain.ResolveLatest(ctx, o.desc.EntryType, record.Address)
	if err != nil {
		return WireRecord[T]{}, err
	}
	if !ok {
		return WireRecord[T]{}, &types.NotFoundError{Kind: "action", Ref: record.Address.String()}
	}

	if _, err := o.chain.Update(ctx, o.desc.EntryType, latest.ActionRef, data); err != nil {
		return WireRecord[T]{}, err
	}
	return record, nil
}

// Fetch returns the latest version of the record at address.
func (o *Operations[T]) Fetch(ctx context.Context, address types.ActionRef) (WireRecord[T], bool, error) {
	latest, ok, err := o.chain.ResolveLatest(ctx, o.desc.EntryType, address)
	if err != nil || !ok {
		return WireRecord[T]{}, false, err
	}
	value, err := o.decode(latest)
	if err != nil {
		return WireRecord[T]{}, false, err
	}
	return WireRecord[T]{Entry: value, Address: address}, true, nil
}

// ReadMine returns the record most recently attached under the caller's key.
func (o *Operations[T]) ReadMine(ctx context.Context) (WireRecord[T], bool, error) {
	entry, ok, err := linkindex.ResolveSelf(ctx, o.index, o.desc.EntryType, o.chain.Ledger().CallerIdentity(), o.desc.Codec)
	if err != nil || !ok {
		return WireRecord[T]{}, false, err
	}
	return WireRecord[T]{Entry: entry.Value, Address: entry.Address}, true, nil
}

// List returns the latest version of every record under the index path.
// Records that fail to resolve are logged and left out.
func (o *Operations[T]) List(ctx context.Context) ([]WireRecord[T], error) {
	if o.desc.IndexPath == "" {
		return nil, ErrNoIndexPath
	}

	resolved, err := linkindex.ResolvePath(ctx, o.index, o.desc.EntryType, o.desc.IndexPath, o.desc.Codec)
	if err != nil {
		return nil, err
	}
	if len(resolved.Failures) > 0 {
		o.log.WithFields(logrus.Fields{
			"path":   o.desc.IndexPath,
			"failed": len(resolved.Failures),
		}).Warn("some records could not be listed")
	}

	out := make([]WireRecord[T], 0, len(resolved.Entries))
	for _, e := range resolved.Entries {
		out = append(out, WireRecord[T]{Entry: e.Value, Address: e.Address})
	}
	return out, nil
}

// History returns every version of the record at address, oldest first.
func (o *Operations[T]) History(ctx context.Context, address types.ActionRef) ([]T, error) {
	versions, err := o.chain.History(ctx, o.desc.EntryType, address)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(versions))
	for _, v := range versions {
		value, err := o.decode(v)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

func (o *Operations[T]) decode(v types.Version) (T, error) {
	value, err := o.desc.Codec.Decode(v.Content)
	if err != nil {
		return value, &types.DeserializationError{Ref: v.ActionRef, EntryType: o.desc.EntryType, Err: err}
	}
	return value, nil
}
