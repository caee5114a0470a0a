// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import "time"

// HyParViewProof attests the overlay-membership protocol's observed state
// against its configured thresholds.
type HyParViewProof struct {
	ExpectedActiveSize     int     `json:"expected_active_size"`
	ExpectedPassiveSize    int     `json:"expected_passive_size"`
	ActiveViewSize         int     `json:"active_view_size"`
	PassiveViewSize        int     `json:"passive_view_size"`
	ShuffleSuccessRate     float64 `json:"shuffle_success_rate"`
	ViewConvergenceTimeMs  uint64  `json:"view_convergence_time_ms"`
	BidirectionalConnections [][2]AgentID `json:"bidirectional_connections,omitempty"`

	// Thresholds this proof was checked against.
	MinShuffleRate    float64 `json:"min_shuffle_rate"`
	MaxConvergenceMs  uint64  `json:"max_convergence_ms"`
	ActiveSizeAlpha   float64 `json:"active_size_alpha"`
}

// IsValid implements HyParView's pass predicate from spec §4.3:
// active_size ≥ expected*α AND shuffle_rate ≥ min_shuffle_rate AND
// view_convergence_time_ms ≤ max_convergence_ms.
func (p HyParViewProof) IsValid() bool {
	alpha := p.ActiveSizeAlpha
	if alpha == 0 {
		alpha = 1.0
	}
	minActive := float64(p.ExpectedActiveSize) * alpha
	if float64(p.ActiveViewSize) < minActive {
		return false
	}
	if p.ShuffleSuccessRate < p.MinShuffleRate {
		return false
	}
	if p.MaxConvergenceMs > 0 && p.ViewConvergenceTimeMs > p.MaxConvergenceMs {
		return false
	}
	return true
}

// SwimProof attests the SWIM failure-detector's observed state against its
// configured thresholds.
type SwimProof struct {
	ProbesSent               uint64  `json:"probes_sent"`
	ProbesReceived           uint64  `json:"probes_received"`
	PingSuccessRate          float64 `json:"ping_success_rate"`
	PingReqSuccessRate       float64 `json:"ping_req_success_rate"`
	FalsePositiveRate        float64 `json:"false_positive_rate"`
	FailureDetectionLatencyMs uint64 `json:"failure_detection_latency_ms"`
	ProtocolPeriodConsistent bool    `json:"protocol_period_consistent"`

	MinPingRate       float64 `json:"min_ping_rate"`
	MaxFalsePosRate   float64 `json:"max_false_positive_rate"`
	MaxDetectionMs    uint64  `json:"max_detection_ms"`
}

// IsValid implements SWIM's pass predicate from spec §4.3.
func (p SwimProof) IsValid() bool {
	if p.PingSuccessRate < p.MinPingRate {
		return false
	}
	if p.FalsePositiveRate > p.MaxFalsePosRate {
		return false
	}
	if p.MaxDetectionMs > 0 && p.FailureDetectionLatencyMs > p.MaxDetectionMs {
		return false
	}
	return p.ProtocolPeriodConsistent
}

// PlumtreeProof attests the epidemic-broadcast protocol's observed state
// against its configured thresholds.
type PlumtreeProof struct {
	MessagesBroadcast        uint64  `json:"messages_broadcast"`
	MessagesDelivered        uint64  `json:"messages_delivered"`
	EagerPushDeliveryRate    float64 `json:"eager_push_delivery_rate"`
	LazyPushRecoveryRate     float64 `json:"lazy_push_recovery_rate"`
	IhaveGraftSuccessRate    float64 `json:"ihave_graft_success_rate"`
	TreeStructureValid       bool    `json:"tree_structure_valid"`
	MessageDeliveryLatencyMs uint64  `json:"message_delivery_latency_ms"`

	MinDeliveryRate       float64 `json:"min_delivery_rate"`
	MaxDeliveryMs         uint64  `json:"max_delivery_ms"`
	NoTrafficInconclusive bool    `json:"no_traffic_inconclusive"`
}

// DeliveryRate is messages_delivered / messages_broadcast, clamped to
// [0,1]; broadcasting nothing is treated as perfect delivery (IsValid
// decides separately whether "no traffic" counts as a pass).
func (p PlumtreeProof) DeliveryRate() float64 {
	if p.MessagesBroadcast == 0 {
		return 1.0
	}
	rate := float64(p.MessagesDelivered) / float64(p.MessagesBroadcast)
	if rate > 1.0 {
		return 1.0
	}
	return rate
}

// IsValid implements Plumtree's pass predicate from spec §4.3. A scenario
// that never broadcasts anything is, by default, treated as valid (there
// was nothing to fail to deliver); setting NoTrafficInconclusive flips
// that case to a failure instead.
func (p PlumtreeProof) IsValid() bool {
	if p.MessagesBroadcast == 0 {
		return !p.NoTrafficInconclusive
	}
	if p.DeliveryRate() < p.MinDeliveryRate {
		return false
	}
	if !p.TreeStructureValid {
		return false
	}
	if p.MaxDeliveryMs > 0 && p.MessageDeliveryLatencyMs > p.MaxDeliveryMs {
		return false
	}
	return true
}

// GossipProof is the three-part proof the gossip verifier produces: one
// sub-proof per protocol plus the attestation binding them together.
type GossipProof struct {
	ObserverID AgentID        `json:"observer_id"`
	HyParView  HyParViewProof `json:"hyparview"`
	Swim       SwimProof      `json:"swim"`
	Plumtree   PlumtreeProof  `json:"plumtree"`
	Timestamp  time.Time      `json:"timestamp"`
	Attestation Attestation   `json:"attestation"`
}

// AllProtocolsValid is the AND of the three sub-proofs' IsValid().
func (p GossipProof) AllProtocolsValid() bool {
	return p.HyParView.IsValid() && p.Swim.IsValid() && p.Plumtree.IsValid()
}
