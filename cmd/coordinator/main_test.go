// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/netproof/discovery"
	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/orchestrator"
	"github.com/luxfi/netproof/proof"
	"github.com/luxfi/netproof/scenario"
)

func TestParseAgentsRequiresValue(t *testing.T) {
	_, err := parseAgents("")
	require.Error(t, err)
}

func TestParseAgentsParsesPairs(t *testing.T) {
	agents, err := parseAgents("agent-1=http://localhost:8081, agent-2=http://localhost:8082")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"agent-1": "http://localhost:8081",
		"agent-2": "http://localhost:8082",
	}, agents)
}

func TestParseAgentsRejectsMalformedEntry(t *testing.T) {
	_, err := parseAgents("agent-1")
	require.Error(t, err)
}

func TestLoadScenarioFallsBackToNamed(t *testing.T) {
	s, err := loadScenario("ci_fast", "")
	require.NoError(t, err)
	require.Equal(t, scenario.CIFast(), s)
}

func TestLoadConfigAppliesObserverOverride(t *testing.T) {
	cfg, err := loadConfig("", "custom-observer")
	require.NoError(t, err)
	require.Equal(t, "custom-observer", cfg.ObserverID)
}

func TestRecordConnectivityMarksHighSuccessRateAsFullyConnected(t *testing.T) {
	spec := scenario.CIFast()
	orch := orchestrator.New(discovery.NewMemoryRegistry(0), logging.NoOp())
	orch.RegisterNode("agent-1")
	orch.RegisterNode("agent-2")

	results := map[string][]scenario.AttemptResult{
		"agent-1": {{Success: true}, {Success: true}, {Success: true}},
		"agent-2": {{Success: false}, {Success: false}, {Success: false}},
	}

	recordConnectivity(orch, spec, results)

	result := orch.VerifyConnectivity()
	require.False(t, result.Passed)

	found := false
	for _, a := range result.Anomalies {
		if a.Kind == "incomplete_connectivity" {
			require.Equal(t, []proof.AgentID{"agent-2"}, a.NodesInvolved)
			found = true
		}
	}
	require.True(t, found)
}
