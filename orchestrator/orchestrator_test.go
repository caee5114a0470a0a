// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/netproof/agent"
	"github.com/luxfi/netproof/agentclient"
	"github.com/luxfi/netproof/agentclient/agentclientmock"
	"github.com/luxfi/netproof/discovery"
	"github.com/luxfi/netproof/gossip"
	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/proof"
	"github.com/luxfi/netproof/scenario"
)

func testGossipStats(id proof.AgentID) gossip.AgentGossipStats {
	return gossip.AgentGossipStats{
		AgentID: id,
		HyParView: gossip.HyParViewStats{
			ActiveViewSize:  4,
			PassiveViewSize: 16,
			Shuffles:        10,
			Joins:           2,
		},
		Swim: gossip.SwimStats{
			AliveCount:   5,
			SuspectCount: 0,
			DeadCount:    0,
			PingsSent:    100,
			AcksReceived: 95,
		},
		Plumtree: gossip.PlumtreeStats{
			EagerPeers:       3,
			LazyPeers:        5,
			MessagesSent:     50,
			MessagesReceived: 48,
			Duplicates:       5,
			Grafts:           2,
			Prunes:           1,
		},
	}
}

func TestOrchestratorCreation(t *testing.T) {
	o := New(discovery.NewMemoryRegistry(0), logging.NoOp())
	require.NotEmpty(t, o.SessionID())
}

func TestNodeRegistration(t *testing.T) {
	o := New(discovery.NewMemoryRegistry(0), logging.NoOp())
	o.RegisterNode("node1")
	o.RegisterNode("node2")
	require.Len(t, o.snapshotNodeStates(), 2)
}

func TestConnectivityVerificationFail(t *testing.T) {
	o := New(discovery.NewMemoryRegistry(0), logging.NoOp())
	o.RegisterNode("node1")
	o.RegisterNode("node2")

	result := o.VerifyConnectivity()
	require.False(t, result.Passed)
}

func TestConnectivityVerificationPass(t *testing.T) {
	o := New(discovery.NewMemoryRegistry(0), logging.NoOp())
	o.RegisterNode("node1")
	o.RegisterNode("node2")

	o.RecordConnections("node1", []proof.AgentID{"node2"})
	o.RecordConnections("node2", []proof.AgentID{"node1"})

	result := o.VerifyConnectivity()
	require.True(t, result.Passed)
}

func TestAsymmetricConnectionDetection(t *testing.T) {
	o := New(discovery.NewMemoryRegistry(0), logging.NoOp())
	o.RegisterNode("node1")
	o.RegisterNode("node2")

	o.RecordConnections("node1", []proof.AgentID{"node2"})
	o.RecordConnections("node2", nil)

	result := o.VerifyConnectivity()
	require.False(t, result.Passed)

	found := false
	for _, a := range result.Anomalies {
		if a.Kind == "asymmetric_connection" {
			found = true
		}
	}
	require.True(t, found)
}

func TestComprehensiveTest(t *testing.T) {
	o := New(discovery.NewMemoryRegistry(0), logging.NoOp())
	o.RegisterNode("node1")
	o.RegisterNode("node2")

	o.RecordConnections("node1", []proof.AgentID{"node2"})
	o.RecordConnections("node2", []proof.AgentID{"node1"})

	o.RecordGossipStats("node1", testGossipStats("node1"))
	o.RecordGossipStats("node2", testGossipStats("node2"))

	hash := proof.StateHash{1}
	o.RecordStateHash("node1", hash)
	o.RecordStateHash("node2", hash)

	report, err := o.RunComprehensiveTest()
	require.NoError(t, err)
	require.NotEmpty(t, report.String())
}

func TestResetClearsSessionAndState(t *testing.T) {
	o := New(discovery.NewMemoryRegistry(0), logging.NoOp())
	o.RegisterNode("node1")
	before := o.SessionID()

	o.Reset()

	require.NotEqual(t, before, o.SessionID())
	require.Empty(t, o.snapshotNodeStates())
}

func TestStartAllFansOutToRegisteredAgents(t *testing.T) {
	srv1 := httptest.NewServer(agent.NewServer(agent.New("agent-1", 1, nil, nil), nil).Router())
	defer srv1.Close()
	srv2 := httptest.NewServer(agent.NewServer(agent.New("agent-2", 1, nil, nil), nil).Router())
	defer srv2.Close()

	reg := discovery.NewMemoryRegistry(0)
	ctx := context.Background()
	require.NoError(t, reg.Publish(ctx, discovery.Registration{AgentID: "agent-1", APIBaseURL: srv1.URL}))
	require.NoError(t, reg.Publish(ctx, discovery.Registration{AgentID: "agent-2", APIBaseURL: srv2.URL}))

	o := New(reg, logging.NoOp())
	result, err := o.StartAll(ctx, "run-1", scenario.CIFast(), agentclient.DefaultDeadlines())
	require.NoError(t, err)
	require.True(t, result.Started())
	require.Len(t, result.SuccessfulAgents, 2)
	require.Empty(t, result.FailedAgents)
}

func TestStartAllRecordsFailures(t *testing.T) {
	reg := discovery.NewMemoryRegistry(0)
	ctx := context.Background()
	require.NoError(t, reg.Publish(ctx, discovery.Registration{AgentID: "agent-1", APIBaseURL: "http://127.0.0.1:1"}))

	o := New(reg, logging.NoOp())
	result, err := o.StartAll(ctx, "run-1", scenario.CIFast(), agentclient.DefaultDeadlines())
	require.NoError(t, err)
	require.False(t, result.Started())
	require.Contains(t, result.FailedAgents, "agent-1")
}

// TestStartAllUsesInjectedClient exercises the fan-out against
// agentclientmock.MockAPI instead of a live agent.Server, verifying the
// exact StartRunRequest each per-agent client receives.
func TestStartAllUsesInjectedClient(t *testing.T) {
	ctrl := gomock.NewController(t)

	reg := discovery.NewMemoryRegistry(0)
	ctx := context.Background()
	require.NoError(t, reg.Publish(ctx, discovery.Registration{AgentID: "agent-1", APIBaseURL: "mock://agent-1"}))
	require.NoError(t, reg.Publish(ctx, discovery.Registration{AgentID: "agent-2", APIBaseURL: "mock://agent-2"}))

	clients := map[string]*agentclientmock.MockAPI{
		"mock://agent-1": agentclientmock.NewMockAPI(ctrl),
		"mock://agent-2": agentclientmock.NewMockAPI(ctrl),
	}
	clients["mock://agent-1"].EXPECT().
		StartRun(gomock.Any(), gomock.Any()).
		Return(agent.StartRunResponse{Success: true}, nil)
	clients["mock://agent-2"].EXPECT().
		StartRun(gomock.Any(), gomock.Any()).
		Return(agent.StartRunResponse{}, errors.New("dial refused"))

	o := New(reg, logging.NoOp())
	o.SetClientFactory(func(baseURL string, _ agentclient.Deadlines) agentclient.API {
		return clients[baseURL]
	})

	result, err := o.StartAll(ctx, "run-1", scenario.CIFast(), agentclient.DefaultDeadlines())
	require.NoError(t, err)
	require.Contains(t, result.SuccessfulAgents, "agent-1")
	require.Contains(t, result.FailedAgents, "agent-2")
}
