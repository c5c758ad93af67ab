package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/i5heu/ouroboros-records/pkg/types"
)

// Identity is the key pair a ledger handle writes as. Only the public half is
// recorded in versions and edges.
type Identity struct {
	private ed25519.PrivateKey
}

func NewIdentity() (*Identity, error) {
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate identity: %w", err)
	}
	return &Identity{private: private}, nil
}

func (i *Identity) Key() types.IdentityKey {
	return types.IdentityKey(i.private.Public().(ed25519.PublicKey))
}

func (i *Identity) Sign(message []byte) []byte {
	return ed25519.Sign(i.private, message)
}

// Verify checks a signature produced by the identity behind key.
func Verify(key types.IdentityKey, message, signature []byte) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(key), message, signature)
}

// LoadOrCreateIdentity reads the hex encoded seed at path, or creates a new
// identity and stores its seed there with mode 0600.
func LoadOrCreateIdentity(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("decode identity file %s: %w", path, err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("identity file %s: seed has %d bytes, want %d", path, len(seed), ed25519.SeedSize)
		}
		return &Identity{private: ed25519.NewKeyFromSeed(seed)}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read identity file %s: %w", path, err)
	}

	id, err := NewIdentity()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create identity dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(id.private.Seed())), 0o600); err != nil {
		return nil, fmt.Errorf("write identity file %s: %w", path, err)
	}
	return id, nil
}
