// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scenario

import (
	"time"

	"github.com/luxfi/netproof/proof"
)

// FailureCategory classifies why an attempt failed, spec §3:
// "category ∈ {HarnessBug, SutFailure, InfrastructureFlake}".
type FailureCategory string

const (
	FailureHarnessBug          FailureCategory = "harness_bug"
	FailureSutFailure          FailureCategory = "sut_failure"
	FailureInfrastructureFlake FailureCategory = "infrastructure_flake"
)

// ClassifiedFailure carries the category, a subcode, and supporting
// evidence for a failed attempt.
type ClassifiedFailure struct {
	Category          FailureCategory `json:"category"`
	Subcode           string          `json:"subcode"`
	Evidence          string          `json:"evidence"`
	SuggestedLocation *string         `json:"suggested_location,omitempty"`
}

// Cell identifies one point in the test matrix: a (source NAT,
// destination NAT, connection method, IP version) combination.
type Cell struct {
	SrcNat    proof.NatType         `json:"src_nat"`
	DstNat    proof.NatType         `json:"dst_nat"`
	Method    proof.ConnectionMethod `json:"method"`
	IPVersion proof.IPVersion       `json:"ip_version"`
}

// FrameCounters tallies the protocol frames exchanged during an attempt,
// for debugging and anomaly correlation.
type FrameCounters struct {
	SynSent     uint32 `json:"syn_sent"`
	SynReceived uint32 `json:"syn_received"`
	AckSent     uint32 `json:"ack_sent"`
	AckReceived uint32 `json:"ack_received"`
}

// AttemptResult is the record of one connectivity attempt at one cell of
// the test matrix (spec §3).
type AttemptResult struct {
	RunID     string             `json:"run_id"`
	AgentID   string             `json:"agent_id"`
	Cell      Cell               `json:"cell"`
	Success   bool               `json:"success"`
	RTTMillis *float64           `json:"rtt_ms,omitempty"`
	Failure   *ClassifiedFailure `json:"failure,omitempty"`
	StartedAt time.Time          `json:"started_at"`
	Frames    FrameCounters      `json:"frame_counters"`
}

// ToJSONL renders the attempt as a single-line JSON record, mirroring
// AttemptResult::to_jsonl used by the Results command.
func (a AttemptResult) ToJSONL() (string, error) {
	data, err := proof.MarshalCanonical(a)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
