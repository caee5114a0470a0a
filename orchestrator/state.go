// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package orchestrator coordinates connectivity, gossip, and CRDT
// verification into one pass/fail verdict and composes their individual
// proofs into a single ProofBasedTestReport, grounded directly on
// original_source/.../proof_orchestrator.rs's ProofOrchestrator.
package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luxfi/netproof/agentclient"
	"github.com/luxfi/netproof/config"
	"github.com/luxfi/netproof/crdt"
	"github.com/luxfi/netproof/debugger"
	"github.com/luxfi/netproof/discovery"
	"github.com/luxfi/netproof/gossip"
	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/proof"
)

// clientFactory builds the per-agent RPC client StartAll fans out to.
// Defaulting to agentclient.New and overridable via SetClientFactory lets
// tests substitute agentclientmock.MockAPI instead of dialing a live
// agent.Server through httptest.
type clientFactory func(baseURL string, deadlines agentclient.Deadlines) agentclient.API

func defaultClientFactory(baseURL string, deadlines agentclient.Deadlines) agentclient.API {
	return agentclient.New(baseURL, deadlines)
}

// NodeState is one agent's last-known state as observed by the
// orchestrator (spec §4.6's per-node bookkeeping).
type NodeState struct {
	NodeID         proof.AgentID
	ConnectedPeers []proof.AgentID
	GossipStats    *gossip.AgentGossipStats
	StateHash      *proof.StateHash
	Responsive     bool
	LastUpdated    time.Time
}

// Orchestrator coordinates all verification steps and generates
// comprehensive proofs, mirroring ProofOrchestrator's fields one-for-one:
// a gossip verifier, a crdt verifier, a debugger, and a map of per-node
// state, all keyed off one session.
type Orchestrator struct {
	mu             sync.RWMutex
	cfg            config.OrchestratorConfig
	gossipVerifier *gossip.Verifier
	crdtVerifier   *crdt.Verifier
	debug          *debugger.Debugger
	nodeStates     map[proof.AgentID]NodeState
	sessionID      string
	registry       discovery.Registry
	log            logging.Logger
	newClient      clientFactory
}

// SetClientFactory overrides how StartAll builds its per-agent RPC
// client, for tests that want to inject agentclientmock.MockAPI instead
// of a live HTTP client.
func (o *Orchestrator) SetClientFactory(f func(baseURL string, deadlines agentclient.Deadlines) agentclient.API) {
	o.newClient = f
}

// New builds an Orchestrator with the default configuration.
func New(registry discovery.Registry, log logging.Logger) *Orchestrator {
	return WithConfig(config.DefaultOrchestratorConfig(), registry, log)
}

// WithConfig builds an Orchestrator with a custom configuration.
func WithConfig(cfg config.OrchestratorConfig, registry discovery.Registry, log logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.NoOp()
	}
	return &Orchestrator{
		cfg:            cfg,
		gossipVerifier: gossip.New(proof.AgentID(cfg.ObserverID), cfg.Gossip, log),
		crdtVerifier:   crdt.New(uuid.NewString(), proof.CrdtPeerCache, cfg.Crdt, time.Now(), log),
		debug:          debugger.New(cfg.Debug, log),
		nodeStates:     make(map[proof.AgentID]NodeState),
		sessionID:      uuid.NewString(),
		registry:       registry,
		log:            log,
		newClient:      defaultClientFactory,
	}
}

// SessionID returns the current run's session identifier.
func (o *Orchestrator) SessionID() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.sessionID
}

// Config returns the orchestrator's configuration.
func (o *Orchestrator) Config() config.OrchestratorConfig {
	return o.cfg
}

// RegisterNode adds a node to be tracked for this session.
func (o *Orchestrator) RegisterNode(nodeID proof.AgentID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nodeStates[nodeID] = NodeState{
		NodeID:      nodeID,
		Responsive:  true,
		LastUpdated: time.Now(),
	}
}

// UpdateNodeState overwrites a node's full recorded state.
func (o *Orchestrator) UpdateNodeState(nodeID proof.AgentID, state NodeState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nodeStates[nodeID] = state
}

// RecordConnections stores which peers a node claims to see.
func (o *Orchestrator) RecordConnections(nodeID proof.AgentID, peers []proof.AgentID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	state, ok := o.nodeStates[nodeID]
	if !ok {
		return
	}
	state.ConnectedPeers = peers
	state.LastUpdated = time.Now()
	o.nodeStates[nodeID] = state
}

// RecordGossipStats feeds one node's gossip snapshot into the gossip
// verifier and into the orchestrator's own node-state bookkeeping.
func (o *Orchestrator) RecordGossipStats(nodeID proof.AgentID, stats gossip.AgentGossipStats) {
	o.gossipVerifier.RecordStats(stats)

	o.mu.Lock()
	defer o.mu.Unlock()
	state, ok := o.nodeStates[nodeID]
	if !ok {
		return
	}
	state.GossipStats = &stats
	state.LastUpdated = time.Now()
	o.nodeStates[nodeID] = state
}

// RecordStateHash feeds one node's CRDT state hash into the crdt verifier
// and into the orchestrator's own node-state bookkeeping.
func (o *Orchestrator) RecordStateHash(nodeID proof.AgentID, hash proof.StateHash) {
	now := time.Now()
	o.crdtVerifier.State().RecordCurrent(nodeID, hash, now)

	o.mu.Lock()
	defer o.mu.Unlock()
	state, ok := o.nodeStates[nodeID]
	if !ok {
		return
	}
	state.StateHash = &hash
	state.LastUpdated = now
	o.nodeStates[nodeID] = state
}

// AddLogs forwards log entries to the automated debugger.
func (o *Orchestrator) AddLogs(logs []debugger.LogEntry) {
	o.debug.AddLogs(logs)
}

// Reset starts a fresh session: a new session ID and cleared verifier
// state, implementing spec P9 ("re-running a scenario must not leak state
// from a prior run").
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.gossipVerifier.Reset()
	o.crdtVerifier = crdt.New(uuid.NewString(), proof.CrdtPeerCache, o.cfg.Crdt, time.Now(), o.log)
	o.debug.Clear()
	o.nodeStates = make(map[proof.AgentID]NodeState)
	o.sessionID = uuid.NewString()
}

func (o *Orchestrator) snapshotNodeStates() map[proof.AgentID]NodeState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[proof.AgentID]NodeState, len(o.nodeStates))
	for k, v := range o.nodeStates {
		out[k] = v
	}
	return out
}
