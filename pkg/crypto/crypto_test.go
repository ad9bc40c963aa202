package crypto

import (
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	gprop "github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	signer, err := NewEd25519Signer("2026-01")
	require.NoError(t, err)

	body := []byte(`{"articles":[{"id":"tat-001"}],"tool":"get_latest_articles"}`)
	sig, err := signer.Sign(body)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	ok, err := Verify(signer.PublicKey(), sig, body)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_FailsOnTamper(t *testing.T) {
	signer, err := NewEd25519Signer("2026-01")
	require.NoError(t, err)

	body := []byte(`{"headline":"Moltbook hits 1.7M agents"}`)
	sig, err := signer.Sign(body)
	require.NoError(t, err)

	tampered := append([]byte(nil), body...)
	tampered[len(tampered)-2] ^= 0x01

	ok, err := Verify(signer.PublicKey(), sig, tampered)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_FailsOnWrongKey(t *testing.T) {
	signer, err := NewEd25519Signer("2026-01")
	require.NoError(t, err)
	other, err := NewEd25519Signer("2026-02")
	require.NoError(t, err)

	body := []byte("wire item")
	sig, err := signer.Sign(body)
	require.NoError(t, err)

	ok, err := Verify(other.PublicKey(), sig, body)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignVerify_Property(t *testing.T) {
	signer, err := NewEd25519Signer("prop")
	require.NoError(t, err)

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	properties := gopter.NewProperties(params)

	properties.Property("any message round-trips", prop(func(msg []byte) bool {
		sig, signErr := signer.Sign(msg)
		if signErr != nil {
			return false
		}
		ok, verifyErr := Verify(signer.PublicKey(), sig, msg)
		return verifyErr == nil && ok
	}))

	properties.Property("flipping one byte breaks verification", prop(func(msg []byte) bool {
		if len(msg) == 0 {
			return true
		}
		sig, signErr := signer.Sign(msg)
		if signErr != nil {
			return false
		}
		mutated := append([]byte(nil), msg...)
		mutated[0] ^= 0xff
		ok, verifyErr := Verify(signer.PublicKey(), sig, mutated)
		return verifyErr == nil && !ok
	}))

	properties.TestingRun(t)
}

func prop(f func([]byte) bool) gopter.Prop {
	return gprop.ForAll(f, gen.SliceOf(gen.UInt8()))
}

func TestSeedFile_RoundTrip(t *testing.T) {
	signer, err := NewEd25519Signer("2026-01")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "signing.key")
	require.NoError(t, signer.WriteSeedFile(path))

	loaded, err := LoadSignerFromFile(path, "2026-01")
	require.NoError(t, err)
	assert.Equal(t, signer.PublicKey(), loaded.PublicKey())

	sig, err := loaded.Sign([]byte("same key, same signatures"))
	require.NoError(t, err)
	ok, err := Verify(signer.PublicKey(), sig, []byte("same key, same signatures"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKeyRing_RotationAndRevocation(t *testing.T) {
	old, err := NewEd25519Signer("2025-12")
	require.NoError(t, err)
	current, err := NewEd25519Signer("2026-01")
	require.NoError(t, err)

	ring := NewKeyRing()
	ring.AddKey(old)
	ring.AddKey(current)

	// New payloads sign with the latest key.
	assert.Equal(t, "2026-01", ring.KeyID())

	body := []byte("signed before rotation")
	oldSig, err := old.Sign(body)
	require.NoError(t, err)

	// Old payloads still verify by key id until revoked.
	ok, err := ring.VerifyKey("2025-12", body, oldSig)
	require.NoError(t, err)
	assert.True(t, ok)

	ring.RevokeKey("2025-12")
	_, err = ring.VerifyKey("2025-12", body, oldSig)
	assert.Error(t, err)
}

func TestLoadKeyRingFromFiles_SingleUsesGivenKeyID(t *testing.T) {
	signer, err := NewEd25519Signer("tat-2026")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "signing.key")
	require.NoError(t, signer.WriteSeedFile(path))

	ring, err := LoadKeyRingFromFiles([]string{path}, "tat-2026")
	require.NoError(t, err)
	assert.Equal(t, "tat-2026", ring.KeyID())
	assert.Equal(t, signer.PublicKey(), ring.PublicKey())
}

func TestLoadKeyRingFromFiles_MultipleRotateByFileName(t *testing.T) {
	dir := t.TempDir()
	oldSigner, err := NewEd25519Signer("ignored")
	require.NoError(t, err)
	newSigner, err := NewEd25519Signer("ignored")
	require.NoError(t, err)

	oldPath := filepath.Join(dir, "tat-2025.key")
	newPath := filepath.Join(dir, "tat-2026.key")
	require.NoError(t, oldSigner.WriteSeedFile(oldPath))
	require.NoError(t, newSigner.WriteSeedFile(newPath))

	ring, err := LoadKeyRingFromFiles([]string{oldPath, newPath}, "unused")
	require.NoError(t, err)

	// Key IDs come from file names; the lexicographically last one signs.
	assert.Equal(t, "tat-2026", ring.KeyID())
	assert.Equal(t, newSigner.PublicKey(), ring.PublicKey())

	body := []byte("rotated but still verifiable")
	oldSig, err := oldSigner.Sign(body)
	require.NoError(t, err)
	ok, err := ring.VerifyKey("tat-2025", body, oldSig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadKeyRingFromFiles_Errors(t *testing.T) {
	_, err := LoadKeyRingFromFiles(nil, "tat-2026")
	assert.Error(t, err)

	_, err = LoadKeyRingFromFiles([]string{filepath.Join(t.TempDir(), "missing.key")}, "tat-2026")
	assert.Error(t, err)
}

func TestKeyRing_Empty(t *testing.T) {
	ring := NewKeyRing()
	_, err := ring.Sign([]byte("nothing to sign with"))
	assert.Error(t, err)
	assert.Empty(t, ring.KeyID())
}
