package ledger

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/i5heu/ouroboros-records/pkg/types"
)

const (
	VersionPrefix       = "Version:"
	ContentActionPrefix = "ContentAction:"
	RelationPrefix      = "Relation:"
	EdgePrefix          = "Edge:"
)

func GenerateKeyFromPrefixAndHash(prefix string, hash types.Hash) []byte {
	return append([]byte(prefix), []byte(hex.EncodeToString(hash[:]))...)
}

// sequencedKey appends a fixed width Seq so prefix scans return entries in
// write order.
func sequencedKey(prefix string, hash types.Hash, seq types.Seq) []byte {
	key := GenerateKeyFromPrefixAndHash(prefix, hash)
	return append(key, []byte(fmt.Sprintf(":%016x", uint64(seq)))...)
}

func sequencedPrefix(prefix string, hash types.Hash) []byte {
	return append(GenerateKeyFromPrefixAndHash(prefix, hash), ':')
}

// checkContext stops a call from starting once ctx is done. Writes that were
// already issued are not rolled back.
func checkContext(ctx context.Context) error {
	return ctx.Err()
}
