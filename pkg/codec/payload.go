package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

const (
	payloadHeaderSize           = 256
	payloadHeaderNotExisting    = 0x00
	payloadHeaderIsMime         = 0x20
	payloadHeaderContentSizeLen = payloadHeaderSize - 1
)

// EncodePayload prefixes content with a header carrying its media type, or a
// single zero byte when mimeType is blank.
func EncodePayload(content []byte, mimeType string) ([]byte, error) {
	cleanMimeType := strings.TrimSpace(mimeType)
	if cleanMimeType == "" {
		encoded := make([]byte, 1, 1+len(content))
		encoded[0] = payloadHeaderNotExisting
		return append(encoded, content...), nil
	}

	if len(cleanMimeType) > payloadHeaderContentSizeLen {
		return nil, fmt.Errorf("MIME type too long: %d bytes (max %d)", len(cleanMimeType), payloadHeaderContentSizeLen)
	}

	encoded := make([]byte, payloadHeaderSize, payloadHeaderSize+len(content))
	encoded[0] = payloadHeaderIsMime
	copy(encoded[1:], cleanMimeType)
	return append(encoded, content...), nil
}

// DecodePayload splits a payload written by EncodePayload into its content and
// media type. mimeType is empty for payloads without a header.
func DecodePayload(payload []byte) (content []byte, mimeType string, err error) {
	if len(payload) < 1 {
		return nil, "", errors.New("payload is empty, it must be at least 1 byte")
	}

	switch payload[0] {
	case payloadHeaderNotExisting:
		return payload[1:], "", nil
	case payloadHeaderIsMime:
	default:
		return nil, "", fmt.Errorf("invalid payload header flag 0x%02x", payload[0])
	}

	if len(payload) < payloadHeaderSize {
		return nil, "", errors.New("payload header indicated but payload too short")
	}
	header := bytes.TrimRight(payload[1:payloadHeaderSize], "\x00")
	return payload[payloadHeaderSize:], string(header), nil
}
