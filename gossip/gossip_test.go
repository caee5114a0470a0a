// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/netproof/config"
	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/proof"
)

func healthyStats(id proof.AgentID) AgentGossipStats {
	return AgentGossipStats{
		AgentID: id,
		HyParView: HyParViewStats{
			ActiveViewSize:  4,
			PassiveViewSize: 16,
			JoinedAtMs:      500,
		},
		Swim: SwimStats{
			AliveCount:   1,
			PingsSent:    10,
			AcksReceived: 10,
		},
		Plumtree: PlumtreeStats{
			MessagesSent:     5,
			MessagesReceived: 5,
			Grafts:           1,
		},
	}
}

func TestVerifierAllProtocolsValidOnHealthyStats(t *testing.T) {
	cfg := config.DefaultGossipVerifierConfig()
	v := New("observer", cfg, logging.NoOp())
	v.RecordStats(healthyStats("node1"))
	v.RecordStats(healthyStats("node2"))

	p, err := v.BuildProof()
	require.NoError(t, err)
	require.True(t, p.AllProtocolsValid())
}

func TestSwimFalsePositiveFailsThreePartyCase(t *testing.T) {
	// Scenario 4: three nodes, alive=1 suspect=2 dead=0 at each node.
	cfg := config.DefaultGossipVerifierConfig()
	v := New("observer", cfg, logging.NoOp())
	for _, id := range []proof.AgentID{"node1", "node2", "node3"} {
		s := healthyStats(id)
		s.Swim.AliveCount = 1
		s.Swim.SuspectCount = 2
		s.Swim.DeadCount = 0
		v.RecordStats(s)
	}

	p, err := v.BuildProof()
	require.NoError(t, err)
	require.False(t, p.Swim.IsValid())
	require.False(t, p.AllProtocolsValid())
}

func TestResetClearsStats(t *testing.T) {
	v := New("observer", config.DefaultGossipVerifierConfig(), logging.NoOp())
	v.RecordStats(healthyStats("node1"))
	v.Reset()

	p, err := v.BuildProof()
	require.NoError(t, err)
	require.Equal(t, 0, p.HyParView.ActiveViewSize)
}

func TestPlumtreeNoTrafficDefaultsToValid(t *testing.T) {
	v := New("observer", config.DefaultGossipVerifierConfig(), logging.NoOp())
	v.RecordStats(AgentGossipStats{AgentID: "node1"})

	p, err := v.BuildProof()
	require.NoError(t, err)
	require.True(t, p.Plumtree.IsValid())
}

func TestPlumtreeNoTrafficInconclusiveFailsWhenConfigured(t *testing.T) {
	cfg := config.DefaultGossipVerifierConfig()
	cfg.NoTrafficInconclusive = true
	v := New("observer", cfg, logging.NoOp())
	v.RecordStats(AgentGossipStats{AgentID: "node1"})

	p, err := v.BuildProof()
	require.NoError(t, err)
	require.False(t, p.Plumtree.IsValid())
}

func TestCrossNodeAgreementFlagsDivergence(t *testing.T) {
	a := proof.GossipProof{ObserverID: "a", Plumtree: proof.PlumtreeProof{MessagesBroadcast: 10, MessagesDelivered: 10}}
	b := proof.GossipProof{ObserverID: "b", Plumtree: proof.PlumtreeProof{MessagesBroadcast: 10, MessagesDelivered: 2}}

	anomalies := CrossNodeAgreement([]proof.GossipProof{a, b}, 0.1)
	require.NotEmpty(t, anomalies)
	require.Equal(t, 3, anomalies[0].Severity)
}
