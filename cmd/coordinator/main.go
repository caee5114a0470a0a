// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command coordinator drives one verification run end to end: it
// bootstraps a discovery registry from a static agent list, fans a
// scenario out to every agent, waits for them to finish, folds their
// results into the orchestrator, and persists the resulting proof-based
// test report, matching spec §6's external interface and exit-code
// contract. It is the thin CLI shell the package tests exercise in
// isolation (agent, orchestrator, discovery, scenario, config).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luxfi/netproof/agent"
	"github.com/luxfi/netproof/agentclient"
	"github.com/luxfi/netproof/config"
	"github.com/luxfi/netproof/discovery"
	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/orchestrator"
	"github.com/luxfi/netproof/proof"
	"github.com/luxfi/netproof/scenario"
)

// Exit codes, spec §6 exactly.
const (
	exitPass                 = 0
	exitProofsFailed         = 1
	exitInsufficientOrBad    = 2
	exitTransportUnreachable = 3
)

func main() {
	scenarioName := flag.String("scenario", "ci_fast", "built-in scenario name (connectivity_matrix, ci_fast, gossip_coverage, oracle_suite)")
	scenarioFile := flag.String("scenario-file", "", "path to a YAML scenario file, overrides -scenario")
	configFile := flag.String("config", "", "path to a YAML orchestrator config file, defaults built in if empty")
	observerID := flag.String("observer", "", "overrides the orchestrator config's observer_id")
	agentsFlag := flag.String("agents", "", "comma-separated agent_id=api_base_url pairs (required)")
	outDir := flag.String("out", "./netproof-run", "directory the run's artifacts are written to")
	runTimeout := flag.Duration("run-timeout", 2*time.Minute, "maximum wall-clock time to wait for agents to finish")
	pollInterval := flag.Duration("poll-interval", 2*time.Second, "interval between status polls")
	flag.Parse()

	log := logging.New("coordinator")

	spec, err := loadScenario(*scenarioName, *scenarioFile)
	if err != nil {
		log.Error("scenario load failed", zap.Error(err))
		os.Exit(exitInsufficientOrBad)
	}

	cfg, err := loadConfig(*configFile, *observerID)
	if err != nil {
		log.Error("config load failed", zap.Error(err))
		os.Exit(exitInsufficientOrBad)
	}

	agents, err := parseAgents(*agentsFlag)
	if err != nil {
		log.Error("invalid -agents", zap.Error(err))
		os.Exit(exitInsufficientOrBad)
	}
	if len(agents) < cfg.MinNodes {
		log.Error("insufficient agents", zap.Int("have", len(agents)), zap.Int("need", cfg.MinNodes))
		os.Exit(exitInsufficientOrBad)
	}

	runID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), *runTimeout)
	defer cancel()

	registry := discovery.NewMemoryRegistry(0)
	for id, url := range agents {
		if err := registry.Publish(ctx, discovery.Registration{AgentID: id, APIBaseURL: url}); err != nil {
			log.Error("registry publish failed", zap.String("agent_id", id), zap.Error(err))
			os.Exit(exitTransportUnreachable)
		}
	}

	orch := orchestrator.WithConfig(cfg, registry, log)
	for id := range agents {
		orch.RegisterNode(proof.AgentID(id))
	}

	deadlines := agentclient.DefaultDeadlines()
	started, err := orch.StartAll(ctx, runID, spec, deadlines)
	if err != nil {
		log.Error("start fan-out failed", zap.Error(err))
		os.Exit(exitTransportUnreachable)
	}
	if !started.Started() {
		log.Error("no agent accepted the run", zap.Any("failed_agents", started.FailedAgents))
		os.Exit(exitTransportUnreachable)
	}
	for id, reason := range started.FailedAgents {
		log.Warn("agent did not start", zap.String("agent_id", id), zap.String("reason", reason))
	}

	results, err := collectResults(ctx, started.SuccessfulAgents, agents, runID, deadlines, *pollInterval, log)
	if err != nil {
		log.Error("collecting results failed", zap.Error(err))
		os.Exit(exitTransportUnreachable)
	}

	recordConnectivity(orch, spec, results)

	report, err := orch.RunComprehensiveTest()
	if err != nil {
		log.Error("comprehensive test failed", zap.Error(err))
		os.Exit(exitInsufficientOrBad)
	}

	if err := persistRun(*outDir, spec, results, report); err != nil {
		log.Error("persisting run artifacts failed", zap.Error(err))
		os.Exit(exitInsufficientOrBad)
	}

	fmt.Println(report.String())

	if !report.Passed {
		os.Exit(exitProofsFailed)
	}
	os.Exit(exitPass)
}

func loadScenario(name, file string) (scenario.ScenarioSpec, error) {
	if file != "" {
		return scenario.LoadFile(file)
	}
	return scenario.LoadNamed(name)
}

func loadConfig(file, observerOverride string) (config.OrchestratorConfig, error) {
	cfg := config.DefaultOrchestratorConfig()
	var err error
	if file != "" {
		cfg, err = config.LoadOrchestratorConfig(file)
		if err != nil {
			return config.OrchestratorConfig{}, err
		}
	}
	if observerOverride != "" {
		cfg.ObserverID = observerOverride
	}
	if result := cfg.Validate(); !result.Valid {
		return config.OrchestratorConfig{}, fmt.Errorf("invalid orchestrator config: %v", result.Errors)
	}
	return cfg, nil
}

// parseAgents parses "agent_id=url,agent_id=url,..." into a map, the
// static stand-in for a real discovery backend (spec §6 treats the
// registry's wire transport as external).
func parseAgents(flagValue string) (map[string]string, error) {
	agents := make(map[string]string)
	if strings.TrimSpace(flagValue) == "" {
		return nil, fmt.Errorf("-agents is required")
	}
	for _, pair := range strings.Split(flagValue, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idAndURL := strings.SplitN(pair, "=", 2)
		if len(idAndURL) != 2 || idAndURL[0] == "" || idAndURL[1] == "" {
			return nil, fmt.Errorf("malformed agent entry %q, want agent_id=url", pair)
		}
		agents[idAndURL[0]] = idAndURL[1]
	}
	return agents, nil
}

// collectResults polls every successfully started agent until it reaches
// a terminal state (or the context is done) and fetches its accumulated
// AttemptResults (spec §4.1's StatusPoll/GetResults ops).
func collectResults(ctx context.Context, successfulAgents []string, agents map[string]string, runID string, deadlines agentclient.Deadlines, pollInterval time.Duration, log logging.Logger) (map[string][]scenario.AttemptResult, error) {
	clients := make(map[string]*agentclient.Client, len(successfulAgents))
	for _, id := range successfulAgents {
		clients[id] = agentclient.New(agents[id], deadlines)
	}

	pending := make(map[string]bool, len(clients))
	for id := range clients {
		pending[id] = true
	}

	for len(pending) > 0 {
		for id := range pending {
			status, err := clients[id].StatusPoll(ctx, runID)
			if err != nil {
				log.Warn("status poll failed", zap.String("agent_id", id), zap.Error(err))
				continue
			}
			switch status.Status {
			case "completed", "stopped", "failed":
				delete(pending, id)
			}
		}
		if len(pending) == 0 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for agents: %v", pendingIDs(pending))
		case <-time.After(pollInterval):
		}
	}

	results := make(map[string][]scenario.AttemptResult, len(clients))
	for id, client := range clients {
		resp, err := client.GetResults(ctx, agent.GetResultsRequest{RunID: runID, Format: "json"})
		if err != nil {
			log.Warn("fetching results failed", zap.String("agent_id", id), zap.Error(err))
			continue
		}
		results[id] = resp.Results
	}
	return results, nil
}

func pendingIDs(pending map[string]bool) []string {
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// recordConnectivity approximates a per-agent connectivity graph from the
// success rate of its own AttemptResults: an agent whose success rate
// clears the scenario's threshold is treated as connected to every other
// participating agent, otherwise as isolated. AttemptResult carries a
// test-matrix Cell (src/dst NAT, method, IP version), not the peer's
// agent_id, so a literal per-pair graph isn't recoverable from this
// channel; a real deployment would have agents push that graph directly.
func recordConnectivity(orch *orchestrator.Orchestrator, spec scenario.ScenarioSpec, results map[string][]scenario.AttemptResult) {
	agentIDs := make([]proof.AgentID, 0, len(results))
	for id := range results {
		agentIDs = append(agentIDs, proof.AgentID(id))
	}

	for id, attempts := range results {
		var succeeded int
		for _, a := range attempts {
			if a.Success {
				succeeded++
			}
		}
		rate := 0.0
		if len(attempts) > 0 {
			rate = float64(succeeded) / float64(len(attempts))
		}

		var peers []proof.AgentID
		if rate >= spec.Thresholds.MinSuccessRate {
			for _, peerID := range agentIDs {
				if string(peerID) != id {
					peers = append(peers, peerID)
				}
			}
		}
		orch.RecordConnections(proof.AgentID(id), peers)
	}
}

func persistRun(dir string, spec scenario.ScenarioSpec, results map[string][]scenario.AttemptResult, report orchestrator.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	scenarioJSON, err := proof.MarshalCanonical(spec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dir+"/scenario.json", scenarioJSON, 0o644); err != nil {
		return err
	}

	var jsonl strings.Builder
	agentIDs := make([]string, 0, len(results))
	for id := range results {
		agentIDs = append(agentIDs, id)
	}
	sort.Strings(agentIDs)
	for _, id := range agentIDs {
		for _, attempt := range results[id] {
			line, err := attempt.ToJSONL()
			if err != nil {
				return err
			}
			jsonl.WriteString(line)
			jsonl.WriteByte('\n')
		}
	}
	if err := os.WriteFile(dir+"/results.jsonl", []byte(jsonl.String()), 0o644); err != nil {
		return err
	}

	proofsJSON, err := proof.MarshalCanonical(report.ToProofReport())
	if err != nil {
		return err
	}
	if err := os.WriteFile(dir+"/proofs.json", proofsJSON, 0o644); err != nil {
		return err
	}

	if err := os.WriteFile(dir+"/report.md", []byte(report.String()), 0o644); err != nil {
		return err
	}

	if report.DebugReport != nil {
		debugJSON, err := proof.MarshalCanonical(report.DebugReport)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dir+"/debug.json", debugJSON, 0o644); err != nil {
			return err
		}
	}

	return nil
}
