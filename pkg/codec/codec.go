// Package codec serializes record values into ledger content and back.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Codec turns a record of type T into the bytes stored in the ledger.
// Decode(Encode(v)) must equal v for every valid v.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

const JSONMimeType = "application/json"

// JSON stores records as JSON behind a media type header. Decode also reads
// bare JSON objects and arrays, and payloads with the plain (0x00) header.
type JSON[T any] struct{}

func (JSON[T]) Encode(value T) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return EncodePayload(data, JSONMimeType)
}

func (JSON[T]) Decode(payload []byte) (T, error) {
	var value T

	data := payload
	if !bareJSON(payload) {
		var mimeType string
		var err error
		data, mimeType, err = DecodePayload(payload)
		if err != nil {
			return value, err
		}
		if mimeType != "" && mimeType != JSONMimeType {
			return value, fmt.Errorf("payload is %q, not %q", mimeType, JSONMimeType)
		}
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("decode json: %w", err)
	}
	return value, nil
}

func bareJSON(payload []byte) bool {
	trimmed := bytes.TrimLeft(payload, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
