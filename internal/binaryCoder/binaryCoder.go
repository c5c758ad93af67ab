package binaryCoder

import (
	"fmt"

	"github.com/i5heu/ouroboros-records/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the stored version entry. The record content itself is not
// part of the entry, it lives in the blob store and is referenced by Chunks.
const (
	versionEntryType  protowire.Number = 1
	versionContentRef protowire.Number = 2
	versionActionRef  protowire.Number = 3
	versionAuthor     protowire.Number = 4
	versionSeq        protowire.Number = 5
	versionLevel      protowire.Number = 6
	versionChunk      protowire.Number = 7
	versionSignature  protowire.Number = 8
)

const (
	relationFrom protowire.Number = 1
	relationTo   protowire.Number = 2
	relationSeq  protowire.Number = 3
)

const (
	edgeRoot   protowire.Number = 1
	edgeTarget protowire.Number = 2
	edgeAuthor protowire.Number = 3
	edgeSeq    protowire.Number = 4
)

func VersionToByte(v types.Version, chunks []types.Hash) []byte {
	var b []byte
	b = appendBytesField(b, versionEntryType, []byte(v.EntryType))
	b = appendBytesField(b, versionContentRef, v.ContentRef.Bytes())
	b = appendBytesField(b, versionActionRef, v.ActionRef.Bytes())
	b = appendBytesField(b, versionAuthor, v.Author)
	b = appendVarintField(b, versionSeq, uint64(v.Seq))
	b = appendVarintField(b, versionLevel, uint64(v.Level))
	for _, c := range chunks {
		b = appendBytesField(b, versionChunk, c.Bytes())
	}
	if len(v.Signature) > 0 {
		b = appendBytesField(b, versionSignature, v.Signature)
	}
	return b
}

// ByteToVersion decodes a version entry. The returned Version has no Content,
// the caller loads it from the returned chunk list.
func ByteToVersion(data []byte) (types.Version, []types.Hash, error) {
	fields, err := parseFields(data)
	if err != nil {
		return types.Version{}, nil, fmt.Errorf("Error decoding Version: %w", err)
	}

	var v types.Version
	var chunks []types.Hash
	for _, f := range fields {
		switch f.num {
		case versionEntryType:
			v.EntryType = string(f.bytes)
		case versionContentRef:
			err = v.ContentRef.FromBytes(f.bytes)
		case versionActionRef:
			err = v.ActionRef.FromBytes(f.bytes)
		case versionAuthor:
			v.Author = types.IdentityKey(f.bytes)
		case versionSeq:
			v.Seq = types.Seq(f.varint)
		case versionLevel:
			v.Level = types.Level(int64(f.varint))
		case versionChunk:
			var h types.Hash
			h, err = bytesToHash(f.bytes)
			chunks = append(chunks, h)
		case versionSignature:
			v.Signature = append([]byte(nil), f.bytes...)
		}
		if err != nil {
			return types.Version{}, nil, fmt.Errorf("Error decoding Version field %d: %w", f.num, err)
		}
	}
	if v.ActionRef.IsZero() {
		return types.Version{}, nil, fmt.Errorf("Error decoding Version: missing action ref")
	}
	return v, chunks, nil
}

func RelationToByte(r types.Relation) []byte {
	var b []byte
	b = appendBytesField(b, relationFrom, r.From.Bytes())
	b = appendBytesField(b, relationTo, r.To.Bytes())
	b = appendVarintField(b, relationSeq, uint64(r.Seq))
	return b
}

func ByteToRelation(data []byte) (types.Relation, error) {
	fields, err := parseFields(data)
	if err != nil {
		return types.Relation{}, fmt.Errorf("Error decoding Relation: %w", err)
	}

	var r types.Relation
	for _, f := range fields {
		switch f.num {
		case relationFrom:
			err = r.From.FromBytes(f.bytes)
		case relationTo:
			err = r.To.FromBytes(f.bytes)
		case relationSeq:
			r.Seq = types.Seq(f.varint)
		}
		if err != nil {
			return types.Relation{}, fmt.Errorf("Error decoding Relation field %d: %w", f.num, err)
		}
	}
	return r, nil
}

func EdgeToByte(e types.IndexEdge) []byte {
	var b []byte
	b = appendBytesField(b, edgeRoot, e.Root.Bytes())
	b = appendBytesField(b, edgeTarget, e.Target.Bytes())
	b = appendBytesField(b, edgeAuthor, e.Author)
	b = appendVarintField(b, edgeSeq, uint64(e.Seq))
	return b
}

func ByteToEdge(data []byte) (types.IndexEdge, error) {
	fields, err := parseFields(data)
	if err != nil {
		return types.IndexEdge{}, fmt.Errorf("Error decoding IndexEdge: %w", err)
	}

	var e types.IndexEdge
	for _, f := range fields {
		switch f.num {
		case edgeRoot:
			err = e.Root.FromBytes(f.bytes)
		case edgeTarget:
			err = e.Target.FromBytes(f.bytes)
		case edgeAuthor:
			e.Author = types.IdentityKey(f.bytes)
		case edgeSeq:
			e.Seq = types.Seq(f.varint)
		}
		if err != nil {
			return types.IndexEdge{}, fmt.Errorf("Error decoding IndexEdge field %d: %w", f.num, err)
		}
	}
	return e, nil
}
