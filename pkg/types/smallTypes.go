package types

import (
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// HashSize is the size of every reference in bytes (SHA-512).
const HashSize = 64

const (
	identityDomain = "identity:"
	pathDomain     = "path:"
)

// Hash is the raw digest behind ContentRef and ActionRef.
type Hash [HashSize]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h *Hash) HashFromBytes(b []byte) error {
	if len(b) != HashSize {
		return fmt.Errorf("invalid byte length for Hash: %d", len(b))
	}
	copy(h[:], b)
	return nil
}

func parseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("decode hex: %w", err)
	}
	if err := h.HashFromBytes(b); err != nil {
		return h, err
	}
	return h, nil
}

// ContentRef identifies a value by the hash of its entry type and content.
type ContentRef Hash

func (c ContentRef) String() string { return Hash(c).String() }
func (c ContentRef) Bytes() []byte  { return Hash(c).Bytes() }
func (c ContentRef) IsZero() bool   { return Hash(c).IsZero() }

func (c *ContentRef) FromBytes(b []byte) error {
	return (*Hash)(c).HashFromBytes(b)
}

// ParseContentRef decodes the hex form produced by ContentRef.String.
func ParseContentRef(s string) (ContentRef, error) {
	h, err := parseHash(s)
	return ContentRef(h), err
}

// ActionRef identifies one write. It is the stable handle of a record: the
// ActionRef returned by create survives all later updates.
type ActionRef Hash

func (a ActionRef) String() string { return Hash(a).String() }
func (a ActionRef) Bytes() []byte  { return Hash(a).Bytes() }
func (a ActionRef) IsZero() bool   { return Hash(a).IsZero() }

func (a *ActionRef) FromBytes(b []byte) error {
	return (*Hash)(a).HashFromBytes(b)
}

// ParseActionRef decodes the hex form produced by ActionRef.String.
func ParseActionRef(s string) (ActionRef, error) {
	h, err := parseHash(s)
	return ActionRef(h), err
}

// IdentityKey is the durable key of a writer, usually an ed25519 public key.
type IdentityKey []byte

func (k IdentityKey) String() string {
	return hex.EncodeToString(k)
}

func (k IdentityKey) Equal(other IdentityKey) bool {
	return string(k) == string(other)
}

// ParseIdentityKey decodes the hex form produced by IdentityKey.String.
func ParseIdentityKey(s string) (IdentityKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode identity key: %w", err)
	}
	return IdentityKey(b), nil
}

// DeterministicRef reinterprets an identity key as a ContentRef so it can be
// used as an index root next to path roots without colliding with them.
func DeterministicRef(key IdentityKey) ContentRef {
	buf := make([]byte, 0, len(identityDomain)+len(key))
	buf = append(buf, identityDomain...)
	buf = append(buf, key...)
	return ContentRef(sha512.Sum512(buf))
}

// PathRef is the index root of a symbolic path such as "agents".
func PathRef(path string) ContentRef {
	return ContentRef(sha512.Sum512([]byte(pathDomain + path)))
}

// ContentRefOf computes the content address of an entry. Identical content of
// the same entry type always yields the same ref.
func ContentRefOf(entryType string, content []byte) ContentRef {
	buf := make([]byte, 0, len(entryType)+1+len(content))
	buf = append(buf, entryType...)
	buf = append(buf, 0)
	buf = append(buf, content...)
	return ContentRef(sha512.Sum512(buf))
}

// ActionRefOf computes the address of a single write. The sequence number makes
// it unique even when the same author writes the same content twice.
func ActionRefOf(content ContentRef, author IdentityKey, seq Seq, level Level) ActionRef {
	buf := make([]byte, 0, HashSize+len(author)+16)
	buf = append(buf, content[:]...)
	buf = append(buf, author...)
	buf = append(buf, seq.Bytes()...)
	buf = append(buf, level.Bytes()...)
	return ActionRef(sha512.Sum512(buf))
}

// Seq is the ledger-wide monotonic write stamp. "Last" always means highest Seq.
type Seq uint64

func (s Seq) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(s))
	return b
}

func (s Seq) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// This is a unix timestamp in nanoseconds.
// We recognize that the time of computer systems is not reliable, that is why we call it Level, instead of creation time.
type Level int64

func (l Level) Bytes() []byte {
	levelBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(levelBytes, uint64(l))
	return levelBytes
}

func (l Level) String() string {
	return strconv.FormatInt(int64(l), 10)
}

func (l Level) Time() time.Time {
	return time.Unix(0, int64(l))
}

func (l *Level) SetToNow() {
	*l = Level(time.Now().UnixNano())
}
