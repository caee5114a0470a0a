// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package gossip validates three interacting membership/broadcast
// protocols (HyParView, SWIM, Plumtree) against quantitative thresholds
// and computes cross-node agreement, grounded directly on
// original_source/.../gossip_verification.rs.
package gossip

import "github.com/luxfi/netproof/proof"

// HyParViewStats is one agent's snapshot of its HyParView membership
// state (spec §4.3).
type HyParViewStats struct {
	ActiveViewSize  int
	PassiveViewSize int
	Shuffles        int
	Joins           int
	ActiveNeighbors []proof.AgentID // only present if the agent reported its neighbor list
	JoinedAtMs      uint64          // ms since run start when target view size was first reached; 0 if never
}

// SwimStats is one agent's snapshot of its SWIM failure-detector state.
type SwimStats struct {
	AliveCount             int
	SuspectCount           int
	DeadCount              int
	PingsSent              int
	AcksReceived           int
	PerPeriodPingCounts    []float64 // for protocol-period variance analysis
	FailureDetectionLatencyMs uint64
}

// PlumtreeStats is one agent's snapshot of its Plumtree broadcast state.
type PlumtreeStats struct {
	EagerPeers        int
	LazyPeers         int
	MessagesSent      int
	MessagesReceived  int
	Duplicates        int
	Grafts            int
	Prunes            int
	DeliveryTimingsMs []float64
}

// AgentGossipStats bundles one agent's snapshot across all three
// protocols, as pushed into the verifier by the orchestrator's gossip
// step (spec §4.6 step 3).
type AgentGossipStats struct {
	AgentID   proof.AgentID
	HyParView HyParViewStats
	Swim      SwimStats
	Plumtree  PlumtreeStats
}
