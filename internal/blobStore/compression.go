package blobStore

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// packChunk lzma-compresses a chunk before it is stored.
func packChunk(chunk []byte) ([]byte, error) {
	var out bytes.Buffer
	w, err := lzma.NewWriter(&out)
	if err != nil {
		return nil, fmt.Errorf("lzma writer: %w", err)
	}
	if _, err := w.Write(chunk); err != nil {
		return nil, fmt.Errorf("compress chunk: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finish chunk: %w", err)
	}
	return out.Bytes(), nil
}

func unpackChunk(stored []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, fmt.Errorf("lzma reader: %w", err)
	}
	chunk, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress chunk: %w", err)
	}
	return chunk, nil
}
