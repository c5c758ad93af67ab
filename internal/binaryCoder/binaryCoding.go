package binaryCoder

import (
	"fmt"

	"github.com/i5heu/ouroboros-records/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// field is one decoded protobuf field. Only varint and length-delimited
// fields are used by the ledger entries.
type field struct {
	num    protowire.Number
	varint uint64
	bytes  []byte
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// parseFields walks a message and returns its fields in wire order. Unknown
// wire types are skipped so newer writers stay readable.
func parseFields(b []byte) ([]field, error) {
	var fields []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("consume tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			fields = append(fields, field{num: num, varint: v})
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			fields = append(fields, field{num: num, bytes: append([]byte(nil), v...)})
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return fields, nil
}

func bytesToHash(data []byte) (types.Hash, error) {
	var hash types.Hash
	if err := hash.HashFromBytes(data); err != nil {
		return hash, err
	}
	return hash, nil
}
