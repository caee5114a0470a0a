// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package crdt tracks vector clocks on operations, detects concurrent
// operations, measures convergence latency, and attests that replicas
// reach an identical state hash, grounded directly on
// original_source/.../crdt_verification.rs.
package crdt

import (
	"sync"
	"time"

	"github.com/luxfi/netproof/proof"
)

// OperationTracker owns the run's operation list and each node's current
// vector clock (spec §3: "An OperationTracker in the CRDT verifier owns
// its operation list; vector clocks are per-node maps with monotonic
// counters").
type OperationTracker struct {
	mu         sync.RWMutex
	operations []proof.CrdtOperation
	clocks     map[proof.AgentID]proof.VectorClock
}

// NewOperationTracker returns an empty tracker.
func NewOperationTracker() *OperationTracker {
	return &OperationTracker{
		clocks: make(map[proof.AgentID]proof.VectorClock),
	}
}

// RecordOperation advances the origin node's clock by exactly 1 (P3) and
// stores the operation with the tracker's clock snapshot at insertion
// time (spec §5: "a recorded operation's clock equals the tracker's
// clock snapshot at insertion time").
func (t *OperationTracker) RecordOperation(origin proof.AgentID, opType string, timestamp time.Time) proof.CrdtOperation {
	t.mu.Lock()
	defer t.mu.Unlock()

	clock, ok := t.clocks[origin]
	if !ok {
		clock = make(proof.VectorClock)
	}
	clock[origin] = clock[origin] + 1
	t.clocks[origin] = clock

	snapshot := clock.Clone()
	op := proof.CrdtOperation{
		OriginNode:  origin,
		OpType:      opType,
		VectorClock: snapshot,
		Timestamp:   timestamp,
	}
	t.operations = append(t.operations, op)
	return op
}

// Operations returns the totally-ordered operation list (observation
// order, distinct from happens-before order).
func (t *OperationTracker) Operations() []proof.CrdtOperation {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]proof.CrdtOperation, len(t.operations))
	copy(out, t.operations)
	return out
}

// ClockFor returns a copy of the current clock for a node.
func (t *OperationTracker) ClockFor(node proof.AgentID) proof.VectorClock {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.clocks[node].Clone()
}

// HappensBefore reports whether clock a happens-before clock b: every
// entry in a is ≤ the corresponding entry in b, and at least one entry is
// strictly less (or b has an origin a lacks).
func HappensBefore(a, b proof.VectorClock) bool {
	lessSomewhere := false
	for origin, av := range a {
		bv := b[origin]
		if av > bv {
			return false
		}
		if av < bv {
			lessSomewhere = true
		}
	}
	for origin, bv := range b {
		if _, ok := a[origin]; !ok && bv > 0 {
			lessSomewhere = true
		}
	}
	return lessSomewhere
}

// AreConcurrent implements P4: symmetric, and false whenever either clock
// dominates the other. Two operations are concurrent iff neither
// happens-before the other.
func AreConcurrent(a, b proof.VectorClock) bool {
	return !HappensBefore(a, b) && !HappensBefore(b, a)
}

// FindConcurrentPairs returns every pair of operations in ops that are
// concurrent with each other.
func FindConcurrentPairs(ops []proof.CrdtOperation) [][2]proof.CrdtOperation {
	var pairs [][2]proof.CrdtOperation
	for i := 0; i < len(ops); i++ {
		for j := i + 1; j < len(ops); j++ {
			if AreConcurrent(ops[i].VectorClock, ops[j].VectorClock) {
				pairs = append(pairs, [2]proof.CrdtOperation{ops[i], ops[j]})
			}
		}
	}
	return pairs
}
