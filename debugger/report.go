// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package debugger

import (
	"sort"
	"time"
)

// CodeLocation points fix suggestions at a source location, when known.
type CodeLocation struct {
	File     string
	Line     *uint32
	Function *string
}

// SuggestedFix is one deduplicated, priority-ranked remediation
// suggestion (spec §4.5 step 5).
type SuggestedFix struct {
	Description  string
	Priority     uint32
	Component    string
	CodeLocation *CodeLocation
}

// priorityFor mirrors generate_suggestions' severity-to-priority table.
func priorityFor(s Severity) uint32 {
	switch s {
	case SeverityCritical:
		return 100
	case SeverityError:
		return 75
	case SeverityWarning:
		return 50
	default:
		return 25
	}
}

// GenerateSuggestions dedups anomalies by suggested fix text and returns
// them sorted by descending priority.
func GenerateSuggestions(anomalies []Anomaly) []SuggestedFix {
	seen := make(map[string]bool)
	var fixes []SuggestedFix

	for _, a := range anomalies {
		if seen[a.SuggestedFix] {
			continue
		}
		seen[a.SuggestedFix] = true
		fixes = append(fixes, SuggestedFix{
			Description: a.SuggestedFix,
			Priority:    priorityFor(a.Severity),
			Component:   a.PatternName,
		})
	}

	sort.SliceStable(fixes, func(i, j int) bool {
		return fixes[i].Priority > fixes[j].Priority
	})
	return fixes
}

// DebugStats summarizes one investigation's inputs.
type DebugStats struct {
	LogLinesAnalyzed   int
	NodesExamined      int
	TimeSpanMs         uint64
	AnomaliesBySeverity map[Severity]int
}

// DebugReport is the complete output of one Investigate call.
type DebugReport struct {
	StartedAt      time.Time
	CompletedAt    time.Time
	Timeline       *Timeline
	Anomalies      []Anomaly
	RootCause      *RootCause
	SuggestedFixes []SuggestedFix
	Stats          DebugStats
}

func computeStats(logs []LogEntry, anomalies []Anomaly) DebugStats {
	stats := DebugStats{
		LogLinesAnalyzed:    len(logs),
		AnomaliesBySeverity: make(map[Severity]int),
	}

	nodes := make(map[string]bool)
	var minTs, maxTs time.Time
	for i, l := range logs {
		nodes[l.NodeID] = true
		if i == 0 || l.Timestamp.Before(minTs) {
			minTs = l.Timestamp
		}
		if i == 0 || l.Timestamp.After(maxTs) {
			maxTs = l.Timestamp
		}
	}
	stats.NodesExamined = len(nodes)
	if len(logs) > 0 {
		span := maxTs.Sub(minTs)
		if span > 0 {
			stats.TimeSpanMs = uint64(span.Milliseconds())
		}
	}

	for _, a := range anomalies {
		stats.AnomaliesBySeverity[a.Severity]++
	}
	return stats
}
