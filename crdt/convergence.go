// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import (
	"bytes"
	"sync"
	"time"

	"github.com/luxfi/netproof/proof"
)

// ConvergenceState tracks per-node state hashes over the life of a run
// (spec §4.4: "convergence: {initial, current, started_at, converged_at?}").
type ConvergenceState struct {
	mu          sync.RWMutex
	Initial     map[proof.AgentID]proof.StateHash
	Current     map[proof.AgentID]proof.StateHash
	StartedAt   time.Time
	ConvergedAt *time.Time
}

// NewConvergenceState starts tracking at now.
func NewConvergenceState(now time.Time) *ConvergenceState {
	return &ConvergenceState{
		Initial:   make(map[proof.AgentID]proof.StateHash),
		Current:   make(map[proof.AgentID]proof.StateHash),
		StartedAt: now,
	}
}

// RecordInitial stores a node's initial_state_hash, reported before the
// test begins (spec §4.4 step 1).
func (c *ConvergenceState) RecordInitial(node proof.AgentID, hash proof.StateHash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Initial[node] = hash
}

// InitialHashesConsistent reports whether every reported initial hash is
// equal; spec §4.4 step 1 requires this before the test can proceed.
func (c *ConvergenceState) InitialHashesConsistent() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return allEqual(c.Initial)
}

// RecordCurrent stores a node's current_state_hash and, on the first
// round where all current hashes agree, stamps ConvergedAt (spec §4.4
// step 3).
func (c *ConvergenceState) RecordCurrent(node proof.AgentID, hash proof.StateHash, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Current[node] = hash
	if c.ConvergedAt == nil && len(c.Current) > 0 && allEqual(c.Current) {
		t := now
		c.ConvergedAt = &t
	}
}

// IsConverged reports whether all recorded current hashes are equal
// (P5).
func (c *ConvergenceState) IsConverged() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Current) > 0 && allEqual(c.Current)
}

// DivergentNodes returns every node whose current hash differs from the
// plurality hash. When several hashes tie for the plurality, the
// bytewise smallest of them is taken as the plurality hash.
func (c *ConvergenceState) DivergentNodes() []proof.AgentID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[proof.StateHash]int)
	for _, h := range c.Current {
		counts[h]++
	}
	var plurality proof.StateHash
	best := -1
	for h, n := range counts {
		if n > best || (n == best && bytes.Compare(h[:], plurality[:]) < 0) {
			best = n
			plurality = h
		}
	}

	var divergent []proof.AgentID
	for node, h := range c.Current {
		if h != plurality {
			divergent = append(divergent, node)
		}
	}
	return divergent
}

// ConvergenceTimeMs returns the elapsed time from StartedAt to
// ConvergedAt, or 0 if not yet converged.
func (c *ConvergenceState) ConvergenceTimeMs() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ConvergedAt == nil {
		return 0
	}
	return uint64(c.ConvergedAt.Sub(c.StartedAt).Milliseconds())
}

func allEqual(m map[proof.AgentID]proof.StateHash) bool {
	var first proof.StateHash
	set := false
	for _, h := range m {
		if !set {
			first = h
			set = true
			continue
		}
		if h != first {
			return false
		}
	}
	return true
}
