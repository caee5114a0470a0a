// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import (
	"time"

	"github.com/luxfi/netproof/config"
	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/proof"
)

// Verifier composes an OperationTracker and a ConvergenceState into the
// final CrdtConvergenceProof, grounded on crdt_verification.rs's
// CrdtVerifier.
type Verifier struct {
	testID     string
	crdtType   proof.CrdtType
	cfg        config.CrdtVerifierConfig
	tracker    *OperationTracker
	state      *ConvergenceState
	attestors  []proof.AgentID
	log        logging.Logger
}

// New builds a Verifier for one CRDT-convergence test.
func New(testID string, crdtType proof.CrdtType, cfg config.CrdtVerifierConfig, now time.Time, log logging.Logger) *Verifier {
	if log == nil {
		log = logging.NoOp()
	}
	return &Verifier{
		testID:   testID,
		crdtType: crdtType,
		cfg:      cfg,
		tracker:  NewOperationTracker(),
		state:    NewConvergenceState(now),
		log:      log,
	}
}

// Tracker exposes the underlying OperationTracker for recording
// operations.
func (v *Verifier) Tracker() *OperationTracker { return v.tracker }

// State exposes the underlying ConvergenceState for recording hashes.
func (v *Verifier) State() *ConvergenceState { return v.state }

// AddAttestor registers an agent whose attestation will be included in
// the final proof.
func (v *Verifier) AddAttestor(id proof.AgentID) {
	v.attestors = append(v.attestors, id)
}

// BuildProof composes the CrdtConvergenceProof: pass iff all current
// hashes are equal within convergence_timeout_ms, and every concurrent
// pair category has a non-empty resolution outcome (spec §4.4, final
// paragraph).
func (v *Verifier) BuildProof(observer proof.AgentID) (proof.CrdtConvergenceProof, error) {
	ops := v.tracker.Operations()
	concurrentPairs := FindConcurrentPairs(ops)

	var initialHash proof.StateHash
	for _, h := range v.state.Initial {
		initialHash = h
		break
	}

	converged := v.state.IsConverged()
	convergenceTimeMs := v.state.ConvergenceTimeMs()
	withinTimeout := v.cfg.ConvergenceTimeout == 0 || time.Duration(convergenceTimeMs)*time.Millisecond <= v.cfg.ConvergenceTimeout

	conflictOK := true
	if v.cfg.VerifyConflictResolution {
		conflictOK = ScoreConflictResolution(v.crdtType, len(concurrentPairs), converged)
	}

	attestations := make([]proof.Attestation, 0, len(v.attestors))
	for _, a := range v.attestors {
		att, err := proof.NewAttestation(a, proof.ProofTypeCrdtConvergence, ops)
		if err != nil {
			return proof.CrdtConvergenceProof{}, err
		}
		attestations = append(attestations, att)
	}

	finalStates := make(map[proof.AgentID]proof.StateHash, len(v.state.Current))
	for node, h := range v.state.Current {
		finalStates[node] = h
	}

	p := proof.CrdtConvergenceProof{
		TestID:                    v.testID,
		CrdtType:                  v.crdtType,
		InitialStateHash:          initialHash,
		Operations:                ops,
		NodeFinalStates:           finalStates,
		ConvergenceAchieved:       converged && withinTimeout,
		ConvergenceTimeMs:         convergenceTimeMs,
		ConflictResolutionCorrect: conflictOK,
		DivergentNodes:            v.state.DivergentNodes(),
		Attestations:              attestations,
		Timestamp:                 time.Now(),
	}
	return p, nil
}

// Passes implements the pass predicate: convergence achieved (within
// timeout) and conflict resolution scored consistent with the CRDT type.
func Passes(p proof.CrdtConvergenceProof) bool {
	return p.ConvergenceAchieved && p.ConflictResolutionCorrect
}
