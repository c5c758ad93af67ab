// Package blobStore keeps record content as deduplicated, compressed chunks.
package blobStore

import (
	"crypto/sha512"
	"fmt"

	"github.com/i5heu/ouroboros-records/internal/keyValStore"
	"github.com/i5heu/ouroboros-records/pkg/types"
)

const ChunkPrefix = "Chunk:"

type BlobStore struct {
	kv *keyValStore.KeyValStore
}

func NewBlobStore(kv *keyValStore.KeyValStore) *BlobStore {
	return &BlobStore{kv: kv}
}

func chunkKey(hash types.Hash) []byte {
	return append([]byte(ChunkPrefix), hash.Bytes()...)
}

// Put stores data and returns the ordered chunk hashes needed to read it back.
// Chunks that are already stored are not written again.
func (b *BlobStore) Put(data []byte) ([]types.Hash, error) {
	chunks, err := chunkBytes(data)
	if err != nil {
		return nil, fmt.Errorf("chunk data: %w", err)
	}

	hashes := make([]types.Hash, 0, len(chunks))
	batch := make([][2][]byte, 0, len(chunks))
	for _, chunk := range chunks {
		compressed, err := packChunk(chunk.Data)
		if err != nil {
			return nil, fmt.Errorf("compress chunk %s: %w", chunk.Hash, err)
		}
		hashes = append(hashes, chunk.Hash)
		batch = append(batch, [2][]byte{chunkKey(chunk.Hash), compressed})
	}

	if err := b.kv.BatchWriteNonExisting(batch); err != nil {
		return nil, fmt.Errorf("write chunks: %w", err)
	}
	return hashes, nil
}

// Get reassembles data from its chunk hashes and verifies every chunk.
func (b *BlobStore) Get(hashes []types.Hash) ([]byte, error) {
	data := []byte{}
	for _, hash := range hashes {
		compressed, err := b.kv.Read(chunkKey(hash))
		if err != nil {
			return nil, fmt.Errorf("read chunk %s: %w", hash, err)
		}

		chunk, err := unpackChunk(compressed)
		if err != nil {
			return nil, fmt.Errorf("decompress chunk %s: %w", hash, err)
		}

		if types.Hash(sha512.Sum512(chunk)) != hash {
			return nil, fmt.Errorf("chunk %s does not match its hash", hash)
		}
		data = append(data, chunk...)
	}
	return data, nil
}
