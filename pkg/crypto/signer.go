// Package crypto implements the publisher's integrity signatures: Ed25519
// over canonical payload bytes, with hex-encoded keys and signatures.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// Signature algorithm identifier carried in signed envelopes.
const AlgorithmEd25519 = "ed25519"

// Signer produces signatures over raw payload bytes.
type Signer interface {
	Sign(data []byte) (string, error)
	KeyID() string
	PublicKey() string
	PublicKeyBytes() []byte
}

// Ed25519Signer signs with a single Ed25519 private key.
type Ed25519Signer struct {
	privKey ed25519.PrivateKey
	pubKey  ed25519.PublicKey
	keyID   string
}

// NewEd25519Signer generates a fresh keypair.
func NewEd25519Signer(keyID string) (*Ed25519Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("key generation failed: %w", err)
	}
	return &Ed25519Signer{privKey: priv, pubKey: pub, keyID: keyID}, nil
}

// NewEd25519SignerFromKey wraps an existing private key.
func NewEd25519SignerFromKey(priv ed25519.PrivateKey, keyID string) *Ed25519Signer {
	return &Ed25519Signer{
		privKey: priv,
		pubKey:  priv.Public().(ed25519.PublicKey),
		keyID:   keyID,
	}
}

// LoadSignerFromFile reads a hex-encoded 32-byte Ed25519 seed from path.
func LoadSignerFromFile(path, keyID string) (*Ed25519Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signing key %q: %w", path, err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("signing key %q: invalid hex: %w", path, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing key %q: want %d-byte seed, got %d", path, ed25519.SeedSize, len(seed))
	}
	return NewEd25519SignerFromKey(ed25519.NewKeyFromSeed(seed), keyID), nil
}

// WriteSeedFile persists the signer's seed as hex with owner-only perms.
func (s *Ed25519Signer) WriteSeedFile(path string) error {
	seed := hex.EncodeToString(s.privKey.Seed())
	if err := os.WriteFile(path, []byte(seed+"\n"), 0o600); err != nil {
		return fmt.Errorf("write signing key %q: %w", path, err)
	}
	return nil
}

func (s *Ed25519Signer) Sign(data []byte) (string, error) {
	sig := ed25519.Sign(s.privKey, data)
	return hex.EncodeToString(sig), nil
}

func (s *Ed25519Signer) KeyID() string { return s.keyID }

func (s *Ed25519Signer) PublicKey() string {
	return hex.EncodeToString(s.pubKey)
}

func (s *Ed25519Signer) PublicKeyBytes() []byte { return s.pubKey }

// Verify checks a hex signature over data against the signer's own key.
func (s *Ed25519Signer) Verify(data []byte, sigHex string) bool {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	return ed25519.Verify(s.pubKey, data, sig)
}
