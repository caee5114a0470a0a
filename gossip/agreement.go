// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"fmt"
	"math"

	"github.com/luxfi/netproof/proof"
)

// CrossNodeAgreement compares each protocol's derived delivery/success
// rate across multiple observers' GossipProofs; divergence beyond
// threshold raises a severity-3 anomaly (spec §4.3, final paragraph).
func CrossNodeAgreement(proofs []proof.GossipProof, threshold float64) []proof.TestAnomaly {
	if len(proofs) < 2 {
		return nil
	}

	var anomalies []proof.TestAnomaly
	checks := []struct {
		name string
		get  func(proof.GossipProof) float64
	}{
		{"hyparview_shuffle_rate", func(p proof.GossipProof) float64 { return p.HyParView.ShuffleSuccessRate }},
		{"swim_ping_success_rate", func(p proof.GossipProof) float64 { return p.Swim.PingSuccessRate }},
		{"plumtree_delivery_rate", func(p proof.GossipProof) float64 { return p.Plumtree.DeliveryRate() }},
	}

	for _, c := range checks {
		min, max := c.get(proofs[0]), c.get(proofs[0])
		var nodes []proof.AgentID
		for _, p := range proofs {
			v := c.get(p)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			nodes = append(nodes, p.ObserverID)
		}
		if math.Abs(max-min) > threshold {
			anomalies = append(anomalies, proof.NewAnomaly(
				"gossip_cross_node_divergence",
				fmt.Sprintf("%s diverges across observers: min=%.3f max=%.3f", c.name, min, max),
				3,
				nodes...,
			))
		}
	}

	return anomalies
}
