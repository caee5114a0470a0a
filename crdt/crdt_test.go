// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/netproof/config"
	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/proof"
)

func TestRecordOperationAdvancesClockByOne(t *testing.T) {
	tr := NewOperationTracker()
	op1 := tr.RecordOperation("node1", "add", time.Now())
	require.Equal(t, uint64(1), op1.VectorClock["node1"])

	op2 := tr.RecordOperation("node1", "add", time.Now())
	require.Equal(t, uint64(2), op2.VectorClock["node1"])
}

func TestAreConcurrentSymmetric(t *testing.T) {
	a := proof.VectorClock{"node1": 1}
	b := proof.VectorClock{"node2": 1}
	require.True(t, AreConcurrent(a, b))
	require.True(t, AreConcurrent(b, a))
}

func TestAreConcurrentFalseWhenDominated(t *testing.T) {
	a := proof.VectorClock{"node1": 1}
	b := proof.VectorClock{"node1": 2}
	require.False(t, AreConcurrent(a, b))
	require.True(t, HappensBefore(a, b))
}

func TestConvergenceStateDetectsDivergence(t *testing.T) {
	// Scenario 3: two nodes, hashes [1;32] and [2;32].
	now := time.Now()
	cs := NewConvergenceState(now)
	var h1, h2 proof.StateHash
	h1[0] = 1
	h2[0] = 2

	cs.RecordCurrent("node1", h1, now)
	cs.RecordCurrent("node2", h2, now)

	require.False(t, cs.IsConverged())
	require.Contains(t, cs.DivergentNodes(), proof.AgentID("node2"))
}

func TestConvergenceStateConverges(t *testing.T) {
	now := time.Now()
	cs := NewConvergenceState(now)
	var h proof.StateHash
	h[0] = 7

	cs.RecordCurrent("node1", h, now)
	cs.RecordCurrent("node2", h, now.Add(time.Second))

	require.True(t, cs.IsConverged())
	require.Empty(t, cs.DivergentNodes())
}

func TestVerifierBuildProofPassesOnConvergence(t *testing.T) {
	now := time.Now()
	v := New("test1", proof.CrdtOrSet, config.DefaultCrdtVerifierConfig(), now, logging.NoOp())
	v.AddAttestor("node1")

	var h proof.StateHash
	h[0] = 9
	v.State().RecordCurrent("node1", h, now)
	v.State().RecordCurrent("node2", h, now.Add(10*time.Millisecond))

	p, err := v.BuildProof("node1")
	require.NoError(t, err)
	require.True(t, Passes(p))
}

func TestUnknownCrdtTypeFailsResolution(t *testing.T) {
	require.False(t, ScoreConflictResolution("bogus", 0, true))
}
