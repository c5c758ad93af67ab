package types

import (
	"errors"
	"fmt"
)

var (
	ErrStoreWrite      = errors.New("ledger rejected write")
	ErrNotFound        = errors.New("reference not found")
	ErrCorruptChain    = errors.New("corrupt update chain")
	ErrDeserialization = errors.New("stored bytes do not match record schema")
)

// StoreWriteError reports a rejected append or relation registration.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, ErrStoreWrite)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStoreWrite, e.Err)
}

func (e *StoreWriteError) Unwrap() error        { return e.Err }
func (e *StoreWriteError) Is(target error) bool { return target == ErrStoreWrite }

// NotFoundError reports a reference the ledger does not know.
type NotFoundError struct {
	Kind string // "action" or "content"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Ref, ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// CorruptChainError reports a walk that exceeded the hop bound or met a cycle.
type CorruptChainError struct {
	Start ActionRef
	Hops  int
}

func (e *CorruptChainError) Error() string {
	return fmt.Sprintf("resolve from %s stopped after %d hops: %v", e.Start, e.Hops, ErrCorruptChain)
}

func (e *CorruptChainError) Is(target error) bool { return target == ErrCorruptChain }

// DeserializationError reports content that could not be decoded as the
// expected record type.
type DeserializationError struct {
	Ref       ActionRef
	EntryType string
	Err       error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("decode %s %s: %v: %v", e.EntryType, e.Ref, ErrDeserialization, e.Err)
}

func (e *DeserializationError) Unwrap() error        { return e.Err }
func (e *DeserializationError) Is(target error) bool { return target == ErrDeserialization }
