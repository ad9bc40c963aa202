package crypto

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// KeyRing holds multiple signers to support key rotation: new responses
// are signed with the active (lexicographically last) key, while
// verification accepts any non-revoked key by its key_id.
type KeyRing struct {
	mu      sync.RWMutex
	signers map[string]*Ed25519Signer
}

func NewKeyRing() *KeyRing {
	return &KeyRing{signers: make(map[string]*Ed25519Signer)}
}

// LoadKeyRingFromFiles builds a ring from one or more seed files. A single
// file is registered under keyID; with several, each key takes its file's
// base name without extension as its ID, so the lexicographically last
// file signs new payloads.
func LoadKeyRingFromFiles(paths []string, keyID string) (*KeyRing, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no signing key files given")
	}
	ring := NewKeyRing()
	for _, path := range paths {
		id := keyID
		if len(paths) > 1 {
			base := filepath.Base(path)
			id = strings.TrimSuffix(base, filepath.Ext(base))
		}
		s, err := LoadSignerFromFile(path, id)
		if err != nil {
			return nil, err
		}
		ring.AddKey(s)
	}
	return ring, nil
}

// AddKey registers a signer under its key ID.
func (k *KeyRing) AddKey(s *Ed25519Signer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.signers[s.KeyID()] = s
}

// RevokeKey removes a key; payloads signed with it no longer verify
// through this ring.
func (k *KeyRing) RevokeKey(keyID string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.signers, keyID)
}

// Active returns the signer that new payloads are signed with, or nil
// when the ring is empty.
func (k *KeyRing) Active() *Ed25519Signer {
	k.mu.RLock()
	defer k.mu.RUnlock()
	ids := make([]string, 0, len(k.signers))
	for id := range k.signers {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Strings(ids)
	return k.signers[ids[len(ids)-1]]
}

// Sign signs data with the active key.
func (k *KeyRing) Sign(data []byte) (string, error) {
	active := k.Active()
	if active == nil {
		return "", fmt.Errorf("no keyring keys available")
	}
	return active.Sign(data)
}

// KeyID reports the active key's ID, or "" when the ring is empty.
func (k *KeyRing) KeyID() string {
	if active := k.Active(); active != nil {
		return active.KeyID()
	}
	return ""
}

// PublicKey reports the active key's hex public key, or "".
func (k *KeyRing) PublicKey() string {
	if active := k.Active(); active != nil {
		return active.PublicKey()
	}
	return ""
}

// PublicKeyBytes reports the active key's raw public key, or nil.
func (k *KeyRing) PublicKeyBytes() []byte {
	if active := k.Active(); active != nil {
		return active.PublicKeyBytes()
	}
	return nil
}

// VerifyKey verifies a signature attributed to a specific key ID.
func (k *KeyRing) VerifyKey(keyID string, message []byte, sigHex string) (bool, error) {
	k.mu.RLock()
	signer, exists := k.signers[keyID]
	k.mu.RUnlock()
	if !exists {
		return false, fmt.Errorf("unknown or revoked key: %s", keyID)
	}
	return signer.Verify(message, sigHex), nil
}
