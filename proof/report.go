// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import "time"

// ProofBasedTestReport is the single authoritative, storable artifact a
// run produces: the composition of the three sub-proofs plus the
// aggregated anomaly list and the final pass/fail verdict.
type ProofBasedTestReport struct {
	SessionID       string                    `json:"session_id"`
	StartedAt       time.Time                 `json:"started_at"`
	CompletedAt     *time.Time                `json:"completed_at,omitempty"`
	Connectivity    *NetworkConnectivityProof `json:"connectivity,omitempty"`
	Gossip          *GossipProof              `json:"gossip,omitempty"`
	Crdt            *CrdtConvergenceProof     `json:"crdt,omitempty"`
	Anomalies       []TestAnomaly             `json:"anomalies"`
	Passed          bool                      `json:"passed"`
	FailureSummary  *string                   `json:"failure_summary,omitempty"`
}
