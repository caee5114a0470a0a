// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package debugger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/netproof/config"
	"github.com/luxfi/netproof/logging"
)

func TestParseLogLineExtractsLevel(t *testing.T) {
	entry := ParseLogLine("node1", "[2024-01-15 10:30:45] ERROR connection timeout", time.Now())
	require.NotNil(t, entry)
	require.Equal(t, "ERROR", entry.Level)
}

func TestParseLogLineEmptyReturnsNil(t *testing.T) {
	require.Nil(t, ParseLogLine("node1", "   ", time.Now()))
}

func TestBuildTimelineClassifiesAndSorts(t *testing.T) {
	now := time.Now()
	logs := []LogEntry{
		{NodeID: "node2", Timestamp: now.Add(time.Second), Level: "INFO", Message: "Connected to peer"},
		{NodeID: "node1", Timestamp: now, Level: "INFO", Message: "Node started"},
	}
	tl := BuildTimeline(logs)
	events := tl.Events()
	require.Len(t, events, 2)
	require.Equal(t, "node1", events[0].NodeID)
	require.Equal(t, EventNodeStart, events[0].EventType)
	require.Equal(t, EventConnectionEstablished, events[1].EventType)
}

func TestDetectAnomaliesMatchesDefaultPatterns(t *testing.T) {
	now := time.Now()
	logs := []LogEntry{
		{NodeID: "node1", Timestamp: now, Level: "ERROR", Message: "active peers 0"},
		{NodeID: "node2", Timestamp: now, Level: "WARN", Message: "connection timeout"},
	}
	anomalies := DetectAnomalies(logs, DefaultErrorPatterns(), SeverityWarning, 5*time.Second)
	require.NotEmpty(t, anomalies)
}

// TestRootCauseZeroActivePeersScenario covers scenario 6: a gossip test
// fails because HyParView never bootstrapped peers; the debugger must
// identify zero_active_peers as the root cause with confidence >= 0.6,
// and surface connection_timeout as a weighted alternative.
func TestRootCauseZeroActivePeersScenario(t *testing.T) {
	now := time.Now()
	logs := []LogEntry{
		{NodeID: "node1", Timestamp: now, Level: "ERROR", Message: "0 active peers"},
		{NodeID: "node2", Timestamp: now.Add(100 * time.Millisecond), Level: "ERROR", Message: "active_view_size: 0"},
		{NodeID: "node3", Timestamp: now.Add(200 * time.Millisecond), Level: "ERROR", Message: "active peers empty"},
		{NodeID: "node1", Timestamp: now.Add(300 * time.Millisecond), Level: "WARN", Message: "connection timeout to peer"},
	}

	d := New(config.DefaultDebuggerConfig(), logging.NoOp())
	d.AddLogs(logs)
	report := d.Investigate()

	require.NotNil(t, report.RootCause)
	require.Equal(t, "HyParView not bootstrapping - no initial peers or join failed", report.RootCause.PrimaryCause)
	require.GreaterOrEqual(t, report.RootCause.Confidence, 0.6)

	foundAlternative := false
	for _, alt := range report.RootCause.Alternatives {
		if alt.Cause == "connection_timeout" {
			foundAlternative = true
			require.Greater(t, alt.Weight, 0.0)
		}
	}
	require.True(t, foundAlternative)
	require.NotEmpty(t, report.SuggestedFixes)
}

// TestCorrelateAnomaliesSymmetric implements the correlation invariant
// (P6): if i is related to j, j must be related to i.
func TestCorrelateAnomaliesSymmetric(t *testing.T) {
	now := time.Now()
	logs := []LogEntry{
		{NodeID: "node1", Timestamp: now, Level: "ERROR", Message: "0 active peers"},
		{NodeID: "node2", Timestamp: now.Add(time.Second), Level: "WARN", Message: "connection timeout"},
	}
	anomalies := DetectAnomalies(logs, DefaultErrorPatterns(), SeverityWarning, 5*time.Second)
	require.Len(t, anomalies, 2)
	require.Contains(t, anomalies[0].Related, 1)
	require.Contains(t, anomalies[1].Related, 0)
}

// TestRootCauseConfidenceAndAlternativesInvariant implements P7:
// confidence is bounded in [0,1] and the alternative weights never
// exceed 1 in total (they are frequency shares of a partition).
func TestRootCauseConfidenceAndAlternativesInvariant(t *testing.T) {
	now := time.Now()
	logs := []LogEntry{
		{NodeID: "node1", Timestamp: now, Level: "ERROR", Message: "0 active peers"},
		{NodeID: "node2", Timestamp: now, Level: "WARN", Message: "connection timeout"},
		{NodeID: "node3", Timestamp: now, Level: "CRITICAL", Message: "panic: unwrap failed"},
	}
	anomalies := DetectAnomalies(logs, DefaultErrorPatterns(), SeverityWarning, 5*time.Second)
	rc := IdentifyRootCause(anomalies)
	require.NotNil(t, rc)
	require.GreaterOrEqual(t, rc.Confidence, 0.0)
	require.LessOrEqual(t, rc.Confidence, 1.0)

	total := 0.0
	for _, alt := range rc.Alternatives {
		total += alt.Weight
	}
	require.LessOrEqual(t, total, 1.0)
}

func TestGenerateSuggestionsDedupedAndSortedByPriority(t *testing.T) {
	now := time.Now()
	logs := []LogEntry{
		{NodeID: "node1", Timestamp: now, Level: "WARN", Message: "connection timeout"},
		{NodeID: "node2", Timestamp: now, Level: "WARN", Message: "timed out"},
		{NodeID: "node3", Timestamp: now, Level: "ERROR", Message: "panic: unwrap failed"},
	}
	anomalies := DetectAnomalies(logs, DefaultErrorPatterns(), SeverityWarning, 5*time.Second)
	fixes := GenerateSuggestions(anomalies)
	require.NotEmpty(t, fixes)
	for i := 1; i < len(fixes); i++ {
		require.GreaterOrEqual(t, fixes[i-1].Priority, fixes[i].Priority)
	}

	seen := make(map[string]bool)
	for _, f := range fixes {
		require.False(t, seen[f.Description])
		seen[f.Description] = true
	}
}

func TestIdentifyRootCauseEmptyReturnsNil(t *testing.T) {
	require.Nil(t, IdentifyRootCause(nil))
}
