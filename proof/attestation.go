// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"crypto/hmac"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ProofType identifies which subsystem produced a proof, for attestation
// binding and for the Agent's `/api/proofs/{kind}` filter.
type ProofType string

const (
	ProofTypeConnectivity    ProofType = "connectivity"
	ProofTypeGossipProtocol  ProofType = "gossip_protocol"
	ProofTypeCrdtConvergence ProofType = "crdt_convergence"
)

// Attestation binds an observer, the kind of proof it observed, a content
// hash of that proof's canonical serialized form, and when it was made.
// It is the unit of trust passed between agents and the orchestrator; once
// constructed it is immutable and referenced by value.
type Attestation struct {
	ObserverID  AgentID   `json:"observer_id"`
	ProofType   ProofType `json:"proof_type"`
	ContentHash [32]byte  `json:"content_hash"`
	Timestamp   time.Time `json:"timestamp"`
	Signature   []byte    `json:"signature,omitempty"`
}

// NewAttestation builds an attestation over payload's canonical form.
func NewAttestation(observerID AgentID, kind ProofType, payload any) (Attestation, error) {
	hash, err := ContentHash(payload)
	if err != nil {
		return Attestation{}, err
	}
	return Attestation{
		ObserverID:  observerID,
		ProofType:   kind,
		ContentHash: hash,
		Timestamp:   time.Now(),
	}, nil
}

// ContentHash computes a deterministic BLAKE2b-256 digest over the
// canonical JSON encoding of v. Canonical here means: struct fields in
// declaration order and map keys sorted, both of which Go's encoding/json
// already does, so the same value always serializes identically
// regardless of construction order.
func ContentHash(v any) ([32]byte, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(canonical), nil
}

// MarshalCanonical serializes v to its canonical JSON form: compact,
// struct fields in declaration order, map keys sorted lexically (both of
// which encoding/json already guarantees).
func MarshalCanonical(v any) ([]byte, error) {
	return json.Marshal(v)
}

// UnmarshalCanonical is the inverse of MarshalCanonical.
func UnmarshalCanonical(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// VerifyContentHash recomputes the hash of payload's canonical form and
// reports whether it matches att.ContentHash. Used to detect the
// "internal invariant violation" class of error from spec §7 (content
// hash mismatch on verification).
func VerifyContentHash(att Attestation, payload any) (bool, error) {
	want, err := ContentHash(payload)
	if err != nil {
		return false, err
	}
	return hmac.Equal(want[:], att.ContentHash[:]), nil
}
