// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/luxfi/netproof/proof"
)

// StepResult is the outcome of a single verification step (spec §4.6).
type StepResult struct {
	Name      string
	Passed    bool
	Duration  time.Duration
	Details   string
	Anomalies []proof.TestAnomaly
}

func passStep(name string, d time.Duration, details string) StepResult {
	return StepResult{Name: name, Passed: true, Duration: d, Details: details}
}

func failStep(name string, d time.Duration, details string, anomalies []proof.TestAnomaly) StepResult {
	return StepResult{Name: name, Passed: false, Duration: d, Details: details, Anomalies: anomalies}
}

// VerifyConnectivity checks that every node sees every other node and, if
// cross-validation is required, that connections are symmetric, ported
// directly from ProofOrchestrator::verify_connectivity.
func (o *Orchestrator) VerifyConnectivity() StepResult {
	start := time.Now()
	states := o.snapshotNodeStates()

	nodeCount := len(states)
	if nodeCount < o.cfg.MinNodes {
		return failStep("connectivity", time.Since(start),
			fmt.Sprintf("insufficient nodes: %d < %d", nodeCount, o.cfg.MinNodes),
			[]proof.TestAnomaly{proof.NewAnomaly(
				"insufficient_nodes",
				fmt.Sprintf("need at least %d nodes", o.cfg.MinNodes),
				4,
			)},
		)
	}

	expectedPeers := nodeCount - 1
	fullyConnected := true
	var anomalies []proof.TestAnomaly
	var connectionDetails []string

	peerSets := make(map[proof.AgentID]map[proof.AgentID]struct{}, nodeCount)
	for nodeID, state := range states {
		set := make(map[proof.AgentID]struct{}, len(state.ConnectedPeers))
		for _, p := range state.ConnectedPeers {
			set[p] = struct{}{}
		}
		peerSets[nodeID] = set

		peerCount := len(state.ConnectedPeers)
		if peerCount < expectedPeers {
			fullyConnected = false
			missing := expectedPeers - peerCount
			anomalies = append(anomalies, proof.NewAnomaly(
				"incomplete_connectivity",
				fmt.Sprintf("node %s has %d peers, expected %d, missing %d", nodeID, peerCount, expectedPeers, missing),
				3,
				nodeID,
			))
		}
		connectionDetails = append(connectionDetails, fmt.Sprintf("%s:%d", nodeID, peerCount))
	}
	sort.Strings(connectionDetails)

	if o.cfg.RequireCrossValidation {
		for nodeA, setA := range peerSets {
			for peerB := range setA {
				setB, ok := peerSets[peerB]
				if !ok {
					continue
				}
				if _, sees := setB[nodeA]; !sees {
					fullyConnected = false
					anomalies = append(anomalies, proof.NewAnomaly(
						"asymmetric_connection",
						fmt.Sprintf("%s sees %s but %s doesn't see %s", nodeA, peerB, peerB, nodeA),
						3,
						nodeA, peerB,
					))
				}
			}
		}
	}

	details := fmt.Sprintf("%d nodes, connections: [%s]", nodeCount, strings.Join(connectionDetails, ", "))
	if fullyConnected {
		return passStep("connectivity", time.Since(start), details)
	}
	return failStep("connectivity", time.Since(start), details, anomalies)
}

// VerifyGossip checks all three gossip sub-proofs are individually valid,
// ported from ProofOrchestrator::verify_gossip.
func (o *Orchestrator) VerifyGossip() (StepResult, proof.GossipProof, error) {
	start := time.Now()

	p, err := o.gossipVerifier.BuildProof()
	if err != nil {
		return StepResult{}, proof.GossipProof{}, err
	}

	var anomalies []proof.TestAnomaly
	if !p.HyParView.IsValid() {
		anomalies = append(anomalies, proof.NewAnomaly("hyparview_failure", "HyParView verification failed", 4))
	}
	if !p.Swim.IsValid() {
		anomalies = append(anomalies, proof.NewAnomaly("swim_failure", "SWIM verification failed", 4))
	}
	if !p.Plumtree.IsValid() {
		anomalies = append(anomalies, proof.NewAnomaly("plumtree_failure", "Plumtree verification failed", 4))
	}

	details := fmt.Sprintf("HyParView:%s SWIM:%s Plumtree:%s",
		okFail(p.HyParView.IsValid()), okFail(p.Swim.IsValid()), okFail(p.Plumtree.IsValid()))

	allValid := p.AllProtocolsValid()
	if allValid {
		return passStep("gossip_protocols", time.Since(start), details), p, nil
	}
	return failStep("gossip_protocols", time.Since(start), details, anomalies), p, nil
}

// VerifyCrdt checks that all recorded state hashes have converged, ported
// from ProofOrchestrator::verify_crdt.
func (o *Orchestrator) VerifyCrdt() (StepResult, proof.CrdtConvergenceProof, error) {
	start := time.Now()

	p, err := o.crdtVerifier.BuildProof(proof.AgentID(o.cfg.ObserverID))
	if err != nil {
		return StepResult{}, proof.CrdtConvergenceProof{}, err
	}

	var anomalies []proof.TestAnomaly
	if !p.ConvergenceAchieved {
		for _, node := range p.DivergentNodes {
			anomalies = append(anomalies, proof.NewAnomaly(
				"state_divergence",
				fmt.Sprintf("node %s has divergent state", node),
				5,
				node,
			))
		}
	}

	details := fmt.Sprintf("convergence:%s nodes:%d ops:%d",
		okFail(p.ConvergenceAchieved), len(p.NodeFinalStates), len(p.Operations))

	if p.ConvergenceAchieved {
		return passStep("crdt_convergence", time.Since(start), details), p, nil
	}
	return failStep("crdt_convergence", time.Since(start), details, anomalies), p, nil
}

// GenerateConnectivityProof composes the observed connectivity matrix from
// recorded node states (regardless of whether VerifyConnectivity passed),
// ported from ProofOrchestrator::generate_connectivity_proof.
func (o *Orchestrator) GenerateConnectivityProof() (proof.NetworkConnectivityProof, error) {
	states := o.snapshotNodeStates()

	expected := make(map[proof.AgentID]struct{}, len(states))
	for id := range states {
		expected[id] = struct{}{}
	}
	observed := make(map[proof.AgentID]struct{}, len(expected))
	for id := range expected {
		observed[id] = struct{}{}
	}

	matrix := make(map[proof.AgentID]map[proof.AgentID]struct{}, len(states))
	for nodeID, state := range states {
		set := make(map[proof.AgentID]struct{}, len(state.ConnectedPeers))
		for _, p := range state.ConnectedPeers {
			set[p] = struct{}{}
		}
		matrix[nodeID] = set
	}

	p := proof.NetworkConnectivityProof{
		ObserverID:         proof.AgentID(o.cfg.ObserverID),
		ExpectedPeers:      expected,
		ObservedPeers:      observed,
		ConnectivityMatrix: matrix,
	}

	att, err := proof.NewAttestation(p.ObserverID, proof.ProofTypeConnectivity, p)
	if err != nil {
		return proof.NetworkConnectivityProof{}, err
	}
	p.Attestation = att
	return p, nil
}

func okFail(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAIL"
}
