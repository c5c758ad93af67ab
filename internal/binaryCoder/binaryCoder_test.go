package binaryCoder

import (
	"crypto/sha512"
	"testing"

	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestVersion_KeepsChunkOrderAndDropsContent(t *testing.T) {
	content := []byte(`{"name":"Ana"}`)
	ref := types.ContentRefOf("profile", content)
	v := types.Version{
		EntryType:  "profile",
		Content:    content,
		ContentRef: ref,
		ActionRef:  types.ActionRefOf(ref, types.IdentityKey("alice"), 12, 99),
		Author:     types.IdentityKey("alice"),
		Seq:        12,
		Level:      99,
	}
	chunks := []types.Hash{sha512.Sum512([]byte("b")), sha512.Sum512([]byte("a"))}

	decoded, decodedChunks, err := ByteToVersion(VersionToByte(v, chunks))
	require.NoError(t, err)

	assert.Nil(t, decoded.Content)
	decoded.Content = content
	assert.Equal(t, v, decoded)
	assert.Equal(t, chunks, decodedChunks)

	v.Signature = []byte("signature")
	decoded, _, err = ByteToVersion(VersionToByte(v, chunks))
	require.NoError(t, err)
	assert.Equal(t, v.Signature, decoded.Signature)
}

func TestByteToVersion_RejectsGarbage(t *testing.T) {
	_, _, err := ByteToVersion([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)

	// well formed but without an action ref
	_, _, err = ByteToVersion(appendBytesField(nil, versionEntryType, []byte("profile")))
	assert.Error(t, err)

	// a hash field with the wrong length
	_, _, err = ByteToVersion(appendBytesField(nil, versionActionRef, []byte("short")))
	assert.Error(t, err)
}

func TestByteToRelation_SkipsUnknownFields(t *testing.T) {
	r := types.Relation{
		From: types.ActionRef(sha512.Sum512([]byte("from"))),
		To:   types.ActionRef(sha512.Sum512([]byte("to"))),
		Seq:  3,
	}
	data := RelationToByte(r)
	data = protowire.AppendTag(data, 42, protowire.Fixed64Type)
	data = protowire.AppendFixed64(data, 7)

	decoded, err := ByteToRelation(data)
	require.NoError(t, err)
	assert.Equal(t, r, decoded)
}

func TestEdge_ZeroSeqIsOmitted(t *testing.T) {
	e := types.IndexEdge{
		Root:   types.PathRef("agents"),
		Target: types.ContentRefOf("profile", []byte("x")),
		Author: types.IdentityKey("bob"),
	}
	decoded, err := ByteToEdge(EdgeToByte(e))
	require.NoError(t, err)
	assert.Equal(t, e, decoded)
	assert.Equal(t, types.Seq(0), decoded.Seq)
}
