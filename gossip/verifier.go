// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/luxfi/netproof/config"
	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/proof"
)

// Verifier aggregates per-agent GossipStats snapshots and produces a
// three-part GossipProof, grounded on gossip_verification.rs's
// GossipVerifier.
type Verifier struct {
	mu       sync.RWMutex
	observer proof.AgentID
	cfg      config.GossipVerifierConfig
	stats    map[proof.AgentID]AgentGossipStats
	log      logging.Logger
}

// New builds a Verifier with the given observer identity and threshold
// configuration.
func New(observerID proof.AgentID, cfg config.GossipVerifierConfig, log logging.Logger) *Verifier {
	if log == nil {
		log = logging.NoOp()
	}
	return &Verifier{
		observer: observerID,
		cfg:      cfg,
		stats:    make(map[proof.AgentID]AgentGossipStats),
		log:      log,
	}
}

// RecordStats ingests one agent's gossip snapshot, overwriting any prior
// snapshot from the same agent.
func (v *Verifier) RecordStats(s AgentGossipStats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats[s.AgentID] = s
}

// Reset clears all recorded snapshots, used by ProofOrchestrator.reset().
func (v *Verifier) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = make(map[proof.AgentID]AgentGossipStats)
}

// BuildProof aggregates every recorded snapshot into a GossipProof and
// attests it.
func (v *Verifier) BuildProof() (proof.GossipProof, error) {
	v.mu.RLock()
	snapshots := make([]AgentGossipStats, 0, len(v.stats))
	for _, s := range v.stats {
		snapshots = append(snapshots, s)
	}
	v.mu.RUnlock()

	p := proof.GossipProof{
		ObserverID: v.observer,
		HyParView:  v.verifyHyParView(snapshots),
		Swim:       v.verifySwim(snapshots),
		Plumtree:   v.verifyPlumtree(snapshots),
		Timestamp:  time.Now(),
	}

	att, err := proof.NewAttestation(v.observer, proof.ProofTypeGossipProtocol, p)
	if err != nil {
		return proof.GossipProof{}, err
	}
	p.Attestation = att
	return p, nil
}

// verifyHyParView aggregates HyParView snapshots per spec §4.3: average
// active/passive view sizes, shuffle success rate (fraction of agents
// with a non-empty active view), bidirectional-link check, and view
// convergence time (max over agents' first-time-to-target).
func (v *Verifier) verifyHyParView(snapshots []AgentGossipStats) proof.HyParViewProof {
	if len(snapshots) == 0 {
		return proof.HyParViewProof{
			ExpectedActiveSize:  v.cfg.ExpectedActiveView,
			ExpectedPassiveSize: v.cfg.ExpectedPassiveView,
			MinShuffleRate:      v.cfg.MinShuffleRate,
			MaxConvergenceMs:    v.cfg.MaxViewConvergenceMs,
			ActiveSizeAlpha:     v.cfg.ActiveSizeAlpha,
		}
	}

	neighborSets := make(map[proof.AgentID]map[proof.AgentID]struct{}, len(snapshots))
	for _, s := range snapshots {
		set := make(map[proof.AgentID]struct{}, len(s.HyParView.ActiveNeighbors))
		for _, n := range s.HyParView.ActiveNeighbors {
			set[n] = struct{}{}
		}
		neighborSets[s.AgentID] = set
	}

	var totalActive, totalPassive, nonEmptyActive int
	var maxConvergence uint64
	var bidirectional [][2]proof.AgentID
	seenPairs := make(map[[2]proof.AgentID]struct{})

	for _, s := range snapshots {
		totalActive += s.HyParView.ActiveViewSize
		totalPassive += s.HyParView.PassiveViewSize
		if s.HyParView.ActiveViewSize > 0 {
			nonEmptyActive++
		}
		if s.HyParView.JoinedAtMs > maxConvergence {
			maxConvergence = s.HyParView.JoinedAtMs
		}

		for neighbor := range neighborSets[s.AgentID] {
			if _, ok := neighborSets[neighbor]; !ok {
				continue
			}
			if _, back := neighborSets[neighbor][s.AgentID]; !back {
				continue
			}
			key := pairKey(s.AgentID, neighbor)
			if _, dup := seenPairs[key]; dup {
				continue
			}
			seenPairs[key] = struct{}{}
			bidirectional = append(bidirectional, [2]proof.AgentID{s.AgentID, neighbor})
		}
	}

	n := len(snapshots)
	return proof.HyParViewProof{
		ExpectedActiveSize:        v.cfg.ExpectedActiveView,
		ExpectedPassiveSize:       v.cfg.ExpectedPassiveView,
		ActiveViewSize:            totalActive / n,
		PassiveViewSize:           totalPassive / n,
		ShuffleSuccessRate:        float64(nonEmptyActive) / float64(n),
		ViewConvergenceTimeMs:     maxConvergence,
		BidirectionalConnections:  bidirectional,
		MinShuffleRate:            v.cfg.MinShuffleRate,
		MaxConvergenceMs:          v.cfg.MaxViewConvergenceMs,
		ActiveSizeAlpha:           v.cfg.ActiveSizeAlpha,
	}
}

// verifySwim aggregates SWIM snapshots per spec §4.3: ping success rate,
// a suspect-ratio proxy for false positives, protocol-period consistency
// via coefficient of variation, and max observed detection latency.
func (v *Verifier) verifySwim(snapshots []AgentGossipStats) proof.SwimProof {
	if len(snapshots) == 0 {
		return proof.SwimProof{
			MinPingRate:     v.cfg.MinPingRate,
			MaxFalsePosRate: v.cfg.MaxFalsePositiveRate,
			MaxDetectionMs:  v.cfg.MaxFailureDetectionMs,
		}
	}

	var sentTotal, recvTotal int
	var alive, suspect, dead int
	var maxLatency uint64
	periodConsistent := true

	for _, s := range snapshots {
		sentTotal += s.Swim.PingsSent
		recvTotal += s.Swim.AcksReceived
		alive += s.Swim.AliveCount
		suspect += s.Swim.SuspectCount
		dead += s.Swim.DeadCount
		if s.Swim.FailureDetectionLatencyMs > maxLatency {
			maxLatency = s.Swim.FailureDetectionLatencyMs
		}

		if len(s.Swim.PerPeriodPingCounts) >= 2 {
			mean := stat.Mean(s.Swim.PerPeriodPingCounts, nil)
			if mean > 0 {
				cv := stat.StdDev(s.Swim.PerPeriodPingCounts, nil) / mean
				if cv >= 0.5 {
					periodConsistent = false
				}
			}
		}
	}

	pingRate := 1.0
	if sentTotal > 0 {
		pingRate = float64(recvTotal) / float64(sentTotal)
	}

	fpRate := 0.0
	total := alive + suspect + dead
	if total > 0 {
		fpRate = float64(suspect) / float64(total)
	}

	return proof.SwimProof{
		ProbesSent:                uint64(sentTotal),
		ProbesReceived:            uint64(recvTotal),
		PingSuccessRate:           pingRate,
		PingReqSuccessRate:        pingRate,
		FalsePositiveRate:         fpRate,
		FailureDetectionLatencyMs: maxLatency,
		ProtocolPeriodConsistent:  periodConsistent,
		MinPingRate:               v.cfg.MinPingRate,
		MaxFalsePosRate:           v.cfg.MaxFalsePositiveRate,
		MaxDetectionMs:            v.cfg.MaxFailureDetectionMs,
	}
}

// verifyPlumtree aggregates Plumtree snapshots per spec §4.3: clamped
// delivery rate, lazy-push recovery via grafts/duplicates, tree-validity
// heuristic, and average delivery latency.
func (v *Verifier) verifyPlumtree(snapshots []AgentGossipStats) proof.PlumtreeProof {
	if len(snapshots) == 0 {
		return proof.PlumtreeProof{
			MinDeliveryRate:       v.cfg.MinDeliveryRate,
			MaxDeliveryMs:         v.cfg.MaxDeliveryMs,
			NoTrafficInconclusive: v.cfg.NoTrafficInconclusive,
		}
	}

	var sent, received, duplicates, grafts, prunes int
	var timings []float64

	for _, s := range snapshots {
		sent += s.Plumtree.MessagesSent
		received += s.Plumtree.MessagesReceived
		duplicates += s.Plumtree.Duplicates
		grafts += s.Plumtree.Grafts
		prunes += s.Plumtree.Prunes
		timings = append(timings, s.Plumtree.DeliveryTimingsMs...)
	}

	lazyRecovery := float64(grafts) / float64(max1(duplicates))

	treeValid := true
	if sent > 0 {
		treeValid = float64(duplicates)/float64(sent) < 0.5
	}

	var avgLatency float64
	if len(timings) > 0 {
		avgLatency = stat.Mean(timings, nil)
	}

	p := proof.PlumtreeProof{
		MessagesBroadcast:        uint64(sent),
		MessagesDelivered:        uint64(received),
		LazyPushRecoveryRate:     lazyRecovery,
		IhaveGraftSuccessRate:    boolToRate(grafts+prunes > 0),
		TreeStructureValid:       treeValid,
		MessageDeliveryLatencyMs: uint64(avgLatency),
		MinDeliveryRate:          v.cfg.MinDeliveryRate,
		MaxDeliveryMs:            v.cfg.MaxDeliveryMs,
		NoTrafficInconclusive:    v.cfg.NoTrafficInconclusive,
	}
	p.EagerPushDeliveryRate = p.DeliveryRate()
	return p
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func boolToRate(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func pairKey(a, b proof.AgentID) [2]proof.AgentID {
	if a < b {
		return [2]proof.AgentID{a, b}
	}
	return [2]proof.AgentID{b, a}
}
