// Package envelope wraps query results in a signed payload so clients can
// verify a response came from the publisher and was not altered in
// transit.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/levslove/tat-mcp-server/pkg/canonicalize"
	"github.com/levslove/tat-mcp-server/pkg/crypto"
)

// ErrSigningUnavailable distinguishes "cannot prove authenticity" from
// data errors like an empty result set.
var ErrSigningUnavailable = errors.New("signing unavailable: no usable signing key")

// SignedPayload is the response envelope. Body holds the canonical (RFC
// 8785) serialization of the query result; Signature is an Ed25519
// signature over exactly those bytes, hex encoded.
type SignedPayload struct {
	ID        string          `json:"id"`
	Body      json.RawMessage `json:"body"`
	BodyHash  string          `json:"body_hash"`
	Signature string          `json:"signature,omitempty"`
	KeyID     string          `json:"key_id,omitempty"`
	Algorithm string          `json:"algorithm,omitempty"`
	Unsigned  bool            `json:"unsigned,omitempty"`
}

// Sealer canonicalizes bodies and attaches signatures. The missing-key
// policy is explicit: with allowUnsigned=false (the default posture) a
// missing or failing signer surfaces ErrSigningUnavailable; with
// allowUnsigned=true the payload goes out flagged Unsigned so the client
// can still distinguish "no news" from "cannot verify".
type Sealer struct {
	signer        crypto.Signer
	allowUnsigned bool

	warnOnce sync.Once
}

// NewSealer builds a sealer. signer may be nil only in unsigned mode.
func NewSealer(signer crypto.Signer, allowUnsigned bool) *Sealer {
	return &Sealer{signer: signer, allowUnsigned: allowUnsigned}
}

// Seal canonicalizes body and signs the canonical bytes.
func (s *Sealer) Seal(body interface{}) (*SignedPayload, error) {
	canonical, err := canonicalize.JCS(body)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	p := &SignedPayload{
		ID:       uuid.NewString(),
		Body:     canonical,
		BodyHash: canonicalize.HashBytes(canonical),
	}

	if s.signer == nil {
		return s.unsigned(p, ErrSigningUnavailable)
	}
	sig, err := s.signer.Sign(canonical)
	if err != nil {
		return s.unsigned(p, fmt.Errorf("%w: %v", ErrSigningUnavailable, err))
	}

	p.Signature = sig
	p.KeyID = s.signer.KeyID()
	p.Algorithm = crypto.AlgorithmEd25519
	return p, nil
}

func (s *Sealer) unsigned(p *SignedPayload, cause error) (*SignedPayload, error) {
	if !s.allowUnsigned {
		return nil, cause
	}
	s.warnOnce.Do(func() {
		slog.Warn("envelope: issuing unsigned payloads, clients cannot verify authenticity")
	})
	p.Unsigned = true
	return p, nil
}

// Verify re-canonicalizes the payload body and checks the signature
// against the given hex public key. Unsigned payloads never verify.
func Verify(p *SignedPayload, pubKeyHex string) (bool, error) {
	if p == nil {
		return false, fmt.Errorf("nil payload")
	}
	if p.Unsigned || p.Signature == "" {
		return false, nil
	}
	canonical, err := canonicalize.Transform(p.Body)
	if err != nil {
		return false, fmt.Errorf("verify: body is not valid JSON: %w", err)
	}
	return crypto.Verify(pubKeyHex, p.Signature, canonical)
}
