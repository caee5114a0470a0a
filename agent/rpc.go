// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package agent

import (
	"github.com/luxfi/netproof/scenario"
)

// HandshakeRequest is the wire payload for POST /handshake (spec §6).
type HandshakeRequest struct {
	OrchestratorID      string   `json:"orchestrator_id"`
	ProtocolVersion     int      `json:"protocol_version"`
	RequiredCapabilities []string `json:"required_capabilities"`
}

// HandshakeResponse is the wire response for POST /handshake.
type HandshakeResponse struct {
	AgentID             string   `json:"agent_id"`
	Compatible          bool     `json:"compatible"`
	MissingCapabilities []string `json:"missing_capabilities,omitempty"`
	Capabilities        []string `json:"capabilities"`
}

// StartRunRequest is the wire payload for POST /runs (spec §6).
type StartRunRequest struct {
	RunID      string                `json:"run_id"`
	Scenario   scenario.ScenarioSpec `json:"scenario"`
	AgentRole  string                `json:"agent_role"`
	PeerAgents []string              `json:"peer_agents"`
}

// StartRunResponse is the wire response for POST /runs.
type StartRunResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RunStatusResponse is the wire response for GET /runs/{id}.
type RunStatusResponse struct {
	Status         RunState        `json:"status"`
	Progress       Progress        `json:"progress"`
	PartialSummary *string         `json:"partial_summary,omitempty"`
}

// StopRunResponse is the wire response for POST /runs/{id}/stop.
type StopRunResponse struct {
	AttemptsCompleted uint32 `json:"attempts_completed"`
}

// GetResultsRequest is the wire payload for POST /runs/{id}/results.
type GetResultsRequest struct {
	RunID             string `json:"run_id"`
	Format            string `json:"format"`
	IncludeArtifacts  bool   `json:"include_artifacts"`
}

// GetResultsResponse is the wire response for POST /runs/{id}/results.
type GetResultsResponse struct {
	Results []scenario.AttemptResult `json:"results"`
}

// ProbeResponse is the best-effort snapshot returned by GET /api/probe.
type ProbeResponse struct {
	AgentID   string   `json:"agent_id"`
	RunState  RunState `json:"run_state,omitempty"`
	ListenV4  string   `json:"listen_v4"`
	ListenV6  string   `json:"listen_v6"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StartRunResult enumerates per-agent success/failure for one StartRun
// fan-out, implementing spec §4.1's "caller receives a StartRunResult
// enumerating success/failure per agent" and the "successful_agents.len()
// >= 1" started-iff rule.
type StartRunResult struct {
	SuccessfulAgents []string          `json:"successful_agents"`
	FailedAgents     map[string]string `json:"failed_agents"`
}

// Started reports whether the run counts as started: at least one agent
// accepted it (spec §4.1).
func (r StartRunResult) Started() bool {
	return len(r.SuccessfulAgents) >= 1
}
