// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package connectivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/proof"
)

func TestVerifierObservedPeersRequiresSuccess(t *testing.T) {
	v := New("node1", []proof.AgentID{"node2"}, logging.NoOp())
	v.RecordAttempt("node2", proof.ConnectionAttempt{Method: proof.MethodDirect, Outcome: proof.OutcomeFailure})
	require.Empty(t, v.ObservedPeers())

	v.RecordAttempt("node2", proof.ConnectionAttempt{Method: proof.MethodHolePunched, Outcome: proof.OutcomeSuccess})
	require.Contains(t, v.ObservedPeers(), proof.AgentID("node2"))
}

func TestPreferredMethodForPrefersDirect(t *testing.T) {
	v := New("node1", nil, logging.NoOp())
	v.RecordAttempt("node2", proof.ConnectionAttempt{Method: proof.MethodRelayed, Outcome: proof.OutcomeSuccess})
	v.RecordAttempt("node2", proof.ConnectionAttempt{Method: proof.MethodDirect, Outcome: proof.OutcomeSuccess})
	v.RecordAttempt("node2", proof.ConnectionAttempt{Method: proof.MethodHolePunched, Outcome: proof.OutcomeSuccess})

	method, ok := v.PreferredMethodFor("node2")
	require.True(t, ok)
	require.Equal(t, proof.MethodDirect, method)
}

func TestBuildProofPasses(t *testing.T) {
	v := New("node1", []proof.AgentID{"node2"}, logging.NoOp())
	v.RecordAttempt("node2", proof.ConnectionAttempt{Method: proof.MethodDirect, Outcome: proof.OutcomeSuccess})

	matrix := map[proof.AgentID]map[proof.AgentID]struct{}{
		"node1": {"node2": {}},
		"node2": {"node1": {}},
	}

	p, err := v.BuildProof(matrix)
	require.NoError(t, err)
	require.True(t, p.ObservedSubsetOfExpected())
	require.True(t, Passes(p, CrossValidationTolerance{MaxDisagreements: 0}))
}

func TestBuildProofFailsOnAsymmetry(t *testing.T) {
	v := New("node1", []proof.AgentID{"node2"}, logging.NoOp())
	matrix := map[proof.AgentID]map[proof.AgentID]struct{}{
		"node1": {"node2": {}},
		"node2": {},
	}

	p, err := v.BuildProof(matrix)
	require.NoError(t, err)
	require.False(t, Passes(p, CrossValidationTolerance{MaxDisagreements: 0}))
}

func TestConnectBackSessionBidirectional(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewConnectBackSession("a", "b", now, time.Second)
	s.RecordOutboundSuccess()
	s.RecordCallback(now.Add(500 * time.Millisecond))

	require.Equal(t, ConnectBackDone, s.State)
	require.Equal(t, PairBidirectional, s.Outcome)
}

func TestConnectBackSessionRetryThenUnreachable(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewConnectBackSession("a", "b", now, time.Second)
	s.RecordOutboundSuccess()

	past := now.Add(2 * time.Second)
	s.ExpireAndRetry(past, false)

	require.True(t, s.Retried)
	require.Equal(t, PairUnreachable, s.Outcome)
}

func TestConnectBackSessionRetrySucceedsAsymmetric(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewConnectBackSession("a", "b", now, time.Second)
	s.RecordOutboundSuccess()

	past := now.Add(2 * time.Second)
	s.ExpireAndRetry(past, true)

	require.Equal(t, PairAsymmetricTraversal, s.Outcome)
}
