package blobStore

import (
	"bytes"
	"crypto/sha512"
	"fmt"
	"io"

	"github.com/i5heu/ouroboros-records/pkg/types"
	chunker "github.com/ipfs/boxo/chunker"
)

type chunkData struct {
	Hash types.Hash // SHA-512 of the uncompressed chunk
	Data []byte
}

// chunkBytes splits data at content defined boundaries so that versions which
// only differ in a few bytes share most of their chunks.
func chunkBytes(data []byte) ([]chunkData, error) {
	bz := chunker.NewBuzhash(bytes.NewReader(data))

	chunks := []chunkData{}
	for {
		chunk, err := bz.NextBytes()
		if err == io.EOF {
			break // End of data reached.
		}
		if err != nil {
			return nil, fmt.Errorf("error reading chunk: %w", err)
		}

		chunks = append(chunks, chunkData{
			Hash: sha512.Sum512(chunk),
			Data: chunk,
		})
	}

	return chunks, nil
}
