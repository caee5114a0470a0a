// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package proof defines the data model shared by every verifier in
// netproof: agent/run identities, NAT and connection taxonomies, the
// signed attestation primitive, and the per-subsystem proof types that
// the orchestrator composes into a ProofBasedTestReport.
package proof

import "time"

// AgentID is an opaque stable identifier for a test agent, typically a
// public-key fingerprint.
type AgentID string

// RunID uniquely identifies one verification run.
type RunID string

// NatType classifies the NAT behavior an agent observed for itself.
type NatType string

const (
	NatNone              NatType = "none"
	NatFullCone          NatType = "full_cone"
	NatAddressRestricted NatType = "address_restricted"
	NatPortRestricted    NatType = "port_restricted"
	NatSymmetric         NatType = "symmetric"
	NatCgnat             NatType = "cgnat"
	NatUnknown           NatType = "unknown"
)

// ConnectionMethod enumerates the paths a connection attempt can take.
// Order matters: PreferredMethod reports the best-of in this priority order.
type ConnectionMethod string

const (
	MethodDirect      ConnectionMethod = "direct"
	MethodHolePunched ConnectionMethod = "hole_punched"
	MethodRelayed     ConnectionMethod = "relayed"
)

// methodRank gives the preference order Direct > HolePunched > Relayed
// used when summarizing which method a pair ultimately succeeded with.
var methodRank = map[ConnectionMethod]int{
	MethodDirect:      0,
	MethodHolePunched: 1,
	MethodRelayed:     2,
}

// PreferredMethod returns whichever of two successful methods ranks higher
// (lower rank number wins). Unknown methods rank last.
func PreferredMethod(a, b ConnectionMethod) ConnectionMethod {
	ra, ok := methodRank[a]
	if !ok {
		ra = len(methodRank)
	}
	rb, ok := methodRank[b]
	if !ok {
		rb = len(methodRank)
	}
	if ra <= rb {
		return a
	}
	return b
}

// IPVersion distinguishes the two address families a connection attempt
// can be made over.
type IPVersion string

const (
	IPv4 IPVersion = "v4"
	IPv6 IPVersion = "v6"
)

// Direction records which side of a pairwise attempt this outcome
// describes.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Outcome is the result of a single connection attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeUnknown Outcome = "unknown"
)

// FallbackAddr is the sentinel address an agent reports in place of a v4
// or v6 listen address it does not have. The connectivity verifier treats
// it as a missing capability, never as a failed attempt.
const FallbackAddr = "0.0.0.0:0"

// ConnectionAttempt is one cell of a peer's (method x ip_version x
// direction) reachability cube.
type ConnectionAttempt struct {
	Method    ConnectionMethod `json:"method"`
	IPVersion IPVersion        `json:"ip_version"`
	Direction Direction        `json:"direction"`
	Outcome   Outcome          `json:"outcome"`
	RTTMillis *float64         `json:"rtt_ms,omitempty"`
}

// PeerAttestation is a signed claim by ObserverID that it exchanged
// traffic with PeerID in the given direction and method.
type PeerAttestation struct {
	PeerID     AgentID   `json:"peer_id"`
	ObserverID AgentID   `json:"observer_id"`
	Direction  Direction `json:"direction"`
	Method     ConnectionMethod `json:"method"`
	Success    bool      `json:"success"`
	RTTMillis  *float64  `json:"rtt_ms,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Signature  []byte    `json:"signature,omitempty"`
}
