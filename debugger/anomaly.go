// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package debugger

import (
	"fmt"
	"time"

	"github.com/luxfi/netproof/proof"
)

// Anomaly is one detected deviation matched against an ErrorPattern,
// grounded on debug_automation.rs's Anomaly.
type Anomaly struct {
	Severity       Severity
	PatternName    string
	NodeID         string
	Timestamp      time.Time
	Message        string
	SuggestedCause string
	SuggestedFix   string
	Related        []int
}

// ToTestAnomaly projects an Anomaly onto the proof package's generic
// TestAnomaly, the way Anomaly::to_test_anomaly does.
func (a Anomaly) ToTestAnomaly() proof.TestAnomaly {
	return proof.TestAnomaly{
		Kind:          a.PatternName,
		Description:   fmt.Sprintf("[%s] %s: %s", a.Severity, a.NodeID, a.Message),
		Severity:      a.Severity.asTestAnomalySeverity(),
		NodesInvolved: []proof.AgentID{proof.AgentID(a.NodeID)},
		DetectedAt:    a.Timestamp,
	}
}

// DetectAnomalies matches every log line against every configured
// pattern whose severity meets minSeverity, then correlates the result
// within the given window (spec §4.5 steps 2-3).
func DetectAnomalies(logs []LogEntry, patterns []ErrorPattern, minSeverity Severity, correlationWindow time.Duration) []Anomaly {
	var anomalies []Anomaly

	for _, log := range logs {
		for _, ep := range patterns {
			if ep.Severity < minSeverity {
				continue
			}
			if !matchesPattern(log.Message, ep.Pattern) {
				continue
			}
			anomalies = append(anomalies, Anomaly{
				Severity:       ep.Severity,
				PatternName:    ep.Name,
				NodeID:         log.NodeID,
				Timestamp:      log.Timestamp,
				Message:        log.Message,
				SuggestedCause: ep.SuggestedCause,
				SuggestedFix:   ep.SuggestedFix,
			})
		}
	}

	correlateAnomalies(anomalies, correlationWindow)
	return anomalies
}

// correlateAnomalies marks every pair of anomalies within the window as
// mutually related (symmetric, O(n^2), matching correlate_anomalies).
func correlateAnomalies(anomalies []Anomaly, window time.Duration) {
	for i := 0; i < len(anomalies); i++ {
		for j := i + 1; j < len(anomalies); j++ {
			diff := anomalies[i].Timestamp.Sub(anomalies[j].Timestamp)
			if diff < 0 {
				diff = -diff
			}
			if diff <= window {
				anomalies[i].Related = append(anomalies[i].Related, j)
				anomalies[j].Related = append(anomalies[j].Related, i)
			}
		}
	}
}
