// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package connectivity builds the N×N reachability matrix, drives the
// connect-back protocol that proves true bidirectional NAT traversal, and
// cross-validates pairwise outcomes, grounded directly on spec §4.2 and
// original_source's registry.rs proof types (via proof.NetworkConnectivityProof).
package connectivity

import (
	"sync"
	"time"

	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/proof"
)

// PairOutcome is the terminal classification of one (A,B) pair after the
// connect-back sequence runs to completion.
type PairOutcome string

const (
	PairBidirectional      PairOutcome = "bidirectional"
	PairAsymmetricTraversal PairOutcome = "asymmetric_nat_traversal"
	PairUnreachable        PairOutcome = "peer_unreachable"
)

// ConnectBackState is the state machine driving one pair's connect-back
// sequence (spec §4.2 step 3).
type ConnectBackState int

const (
	ConnectBackAwaitingOutbound ConnectBackState = iota
	ConnectBackWaitingForCallback
	ConnectBackRetrying
	ConnectBackDone
)

// ConnectBackSession tracks one pair's progress through the connect-back
// protocol: A dials B, A waits for B's callback, and on timeout A gets a
// single retry dial before the pair is marked unreachable.
type ConnectBackSession struct {
	A, B      proof.AgentID
	State     ConnectBackState
	StartedAt time.Time
	Deadline  time.Time
	Retried   bool
	Outcome   PairOutcome
}

// NewConnectBackSession starts a session with the default 30s
// connect-back timeout (spec §4.2 step 3b), overridable via timeout.
func NewConnectBackSession(a, b proof.AgentID, now time.Time, timeout time.Duration) *ConnectBackSession {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ConnectBackSession{
		A:         a,
		B:         b,
		State:     ConnectBackAwaitingOutbound,
		StartedAt: now,
		Deadline:  now.Add(timeout),
	}
}

// RecordOutboundSuccess transitions Awaiting->WaitingForCallback once A's
// initial dial to B succeeds.
func (s *ConnectBackSession) RecordOutboundSuccess() {
	if s.State == ConnectBackAwaitingOutbound {
		s.State = ConnectBackWaitingForCallback
	}
}

// RecordCallback marks the session Done/Bidirectional when B's callback
// to A arrives before the deadline.
func (s *ConnectBackSession) RecordCallback(now time.Time) {
	if s.State != ConnectBackWaitingForCallback {
		return
	}
	if now.After(s.Deadline) {
		return
	}
	s.State = ConnectBackDone
	s.Outcome = PairBidirectional
}

// ExpireAndRetry is called when the callback deadline has passed without
// a callback: A gets exactly one retry dial. If that retry succeeds the
// pair is AsymmetricNatTraversal (A can reach B, B cannot reach A); if it
// also fails, the pair is PeerUnreachable.
func (s *ConnectBackSession) ExpireAndRetry(now time.Time, retrySucceeded bool) {
	if s.State != ConnectBackWaitingForCallback || now.Before(s.Deadline) {
		return
	}
	if !s.Retried {
		s.Retried = true
		s.State = ConnectBackRetrying
	}
	if retrySucceeded {
		s.Outcome = PairAsymmetricTraversal
	} else {
		s.Outcome = PairUnreachable
	}
	s.State = ConnectBackDone
}

// AttemptRecord is one recorded connection attempt between two agents,
// stored against the observing agent's perspective.
type AttemptRecord struct {
	Peer    proof.AgentID
	Attempt proof.ConnectionAttempt
}

// Verifier accumulates per-agent attempt records and builds a
// NetworkConnectivityProof from them. State is guarded by a mutex rather
// than a wrapper library (see DESIGN.md), matching how the rest of
// netproof guards small in-memory maps.
type Verifier struct {
	mu            sync.RWMutex
	observer      proof.AgentID
	expectedPeers map[proof.AgentID]struct{}
	attempts      map[proof.AgentID][]AttemptRecord // observer's own perspective per peer
	peerReports   map[proof.AgentID]map[proof.AgentID]struct{} // what each peer says it can reach
	log           logging.Logger
}

// New builds a Verifier observing from observerID's perspective across
// the given expected peer set.
func New(observerID proof.AgentID, expectedPeers []proof.AgentID, log logging.Logger) *Verifier {
	if log == nil {
		log = logging.NoOp()
	}
	expected := make(map[proof.AgentID]struct{}, len(expectedPeers))
	for _, p := range expectedPeers {
		expected[p] = struct{}{}
	}
	return &Verifier{
		observer:      observerID,
		expectedPeers: expected,
		attempts:      make(map[proof.AgentID][]AttemptRecord),
		peerReports:   make(map[proof.AgentID]map[proof.AgentID]struct{}),
		log:           log,
	}
}

// RecordAttempt stores one outcome of an attempt with peer.
func (v *Verifier) RecordAttempt(peer proof.AgentID, attempt proof.ConnectionAttempt) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.attempts[peer] = append(v.attempts[peer], AttemptRecord{Peer: peer, Attempt: attempt})
}

// RecordPeerReport stores the set of peers that `peer` itself claims to
// observe, used to build cross_validations.
func (v *Verifier) RecordPeerReport(peer proof.AgentID, reachable []proof.AgentID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	set := make(map[proof.AgentID]struct{}, len(reachable))
	for _, r := range reachable {
		set[r] = struct{}{}
	}
	v.peerReports[peer] = set
}

// ObservedPeers returns the peers this observer has at least one
// successful attempt with.
func (v *Verifier) ObservedPeers() map[proof.AgentID]struct{} {
	v.mu.RLock()
	defer v.mu.RUnlock()
	observed := make(map[proof.AgentID]struct{})
	for peer, records := range v.attempts {
		for _, r := range records {
			if r.Attempt.Outcome == proof.OutcomeSuccess {
				observed[peer] = struct{}{}
				break
			}
		}
	}
	return observed
}

// PreferredMethodFor returns the best successful connection method
// observed with a peer (Direct > HolePunched > Relayed), per spec §4.2's
// tie-break rule.
func (v *Verifier) PreferredMethodFor(peer proof.AgentID) (proof.ConnectionMethod, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var best proof.ConnectionMethod
	found := false
	for _, r := range v.attempts[peer] {
		if r.Attempt.Outcome != proof.OutcomeSuccess {
			continue
		}
		if !found {
			best = r.Attempt.Method
			found = true
			continue
		}
		best = proof.PreferredMethod(best, r.Attempt.Method)
	}
	return best, found
}

// BuildProof assembles the NetworkConnectivityProof from accumulated
// state: the connectivity matrix, cross-validations, and the final
// attestation.
func (v *Verifier) BuildProof(connectivityMatrix map[proof.AgentID]map[proof.AgentID]struct{}) (proof.NetworkConnectivityProof, error) {
	v.mu.RLock()
	observed := v.ObservedPeersLocked()
	crossValidations := v.crossValidationsLocked(connectivityMatrix)
	v.mu.RUnlock()

	p := proof.NetworkConnectivityProof{
		ObserverID:         v.observer,
		ExpectedPeers:      v.cloneExpected(),
		ObservedPeers:      observed,
		ConnectivityMatrix: connectivityMatrix,
		CrossValidations:   crossValidations,
	}

	att, err := proof.NewAttestation(v.observer, proof.ProofTypeConnectivity, p)
	if err != nil {
		return proof.NetworkConnectivityProof{}, err
	}
	p.Attestation = att
	return p, nil
}

func (v *Verifier) cloneExpected() map[proof.AgentID]struct{} {
	out := make(map[proof.AgentID]struct{}, len(v.expectedPeers))
	for k := range v.expectedPeers {
		out[k] = struct{}{}
	}
	return out
}

// ObservedPeersLocked is ObservedPeers without acquiring the lock, for
// callers that already hold it.
func (v *Verifier) ObservedPeersLocked() map[proof.AgentID]struct{} {
	observed := make(map[proof.AgentID]struct{})
	for peer, records := range v.attempts {
		for _, r := range records {
			if r.Attempt.Outcome == proof.OutcomeSuccess {
				observed[peer] = struct{}{}
				break
			}
		}
	}
	return observed
}

// crossValidationsLocked builds the cross-validation list: every pair
// (A,B) in the matrix contributes one entry with
// agree = (A sees B) == (B sees A).
func (v *Verifier) crossValidationsLocked(matrix map[proof.AgentID]map[proof.AgentID]struct{}) []proof.CrossValidation {
	seen := make(map[[2]proof.AgentID]struct{})
	var out []proof.CrossValidation

	for a, peers := range matrix {
		for b := range peers {
			key := pairKey(a, b)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			aSeesB := hasEdge(matrix, a, b)
			bSeesA := hasEdge(matrix, b, a)
			out = append(out, proof.CrossValidation{A: a, B: b, Agree: aSeesB == bSeesA})
		}
	}
	return out
}

func hasEdge(matrix map[proof.AgentID]map[proof.AgentID]struct{}, from, to proof.AgentID) bool {
	peers, ok := matrix[from]
	if !ok {
		return false
	}
	_, ok = peers[to]
	return ok
}

func pairKey(a, b proof.AgentID) [2]proof.AgentID {
	if a < b {
		return [2]proof.AgentID{a, b}
	}
	return [2]proof.AgentID{b, a}
}
