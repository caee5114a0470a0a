// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import "time"

// TestAnomaly is a detected deviation surfaced by any pipeline step. It is
// first-class data, never a language-level error (spec §7): every failure
// path widens into one of these rather than aborting the run.
type TestAnomaly struct {
	Kind              string    `json:"kind"`
	Description       string    `json:"description"`
	Severity          int       `json:"severity"` // 1 (lowest) .. 5 (highest)
	NodesInvolved     []AgentID `json:"nodes_involved"`
	DetectedAt        time.Time `json:"detected_at"`
	SuggestedLocation *string   `json:"suggested_location,omitempty"`
}

// NewAnomaly builds an anomaly stamped with the current time.
func NewAnomaly(kind, description string, severity int, nodes ...AgentID) TestAnomaly {
	return TestAnomaly{
		Kind:          kind,
		Description:   description,
		Severity:      severity,
		NodesInvolved: nodes,
		DetectedAt:    time.Now(),
	}
}
