// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package debugger

import (
	"time"

	"github.com/luxfi/netproof/config"
	"github.com/luxfi/netproof/logging"
)

// severityFromConfig maps the wire convention used by
// config.DebuggerConfig.MinSeverity (1=Info .. 4=Critical) onto the
// package's zero-based Severity.
func severityFromConfig(n int) Severity {
	switch n {
	case 1:
		return SeverityInfo
	case 2:
		return SeverityWarning
	case 3:
		return SeverityError
	case 4:
		return SeverityCritical
	default:
		return SeverityWarning
	}
}

// Debugger collects logs across a run and turns them into a DebugReport
// when a proof fails, grounded on debug_automation.rs's AutomatedDebugger.
type Debugger struct {
	cfg      config.DebuggerConfig
	patterns []ErrorPattern
	logs     []LogEntry
	log      logging.Logger
}

// New builds a Debugger seeded with the default error patterns.
func New(cfg config.DebuggerConfig, log logging.Logger) *Debugger {
	if log == nil {
		log = logging.NoOp()
	}
	return &Debugger{
		cfg:      cfg,
		patterns: DefaultErrorPatterns(),
		log:      log,
	}
}

// WithPatterns overrides the default pattern catalog.
func (d *Debugger) WithPatterns(patterns []ErrorPattern) *Debugger {
	d.patterns = patterns
	return d
}

// AddLogs appends logs up to MaxLogLines, discarding the excess the way
// AutomatedDebugger::add_logs does.
func (d *Debugger) AddLogs(logs []LogEntry) {
	for _, l := range logs {
		if len(d.logs) >= d.cfg.MaxLogLines {
			return
		}
		d.logs = append(d.logs, l)
	}
}

// Clear discards every collected log line.
func (d *Debugger) Clear() {
	d.logs = nil
}

// Investigate runs the full pipeline: timeline, anomaly detection,
// correlation, root-cause identification, and fix generation (spec
// §4.5).
func (d *Debugger) Investigate() DebugReport {
	startedAt := time.Now()

	timeline := BuildTimeline(d.logs)
	anomalies := DetectAnomalies(d.logs, d.patterns, severityFromConfig(d.cfg.MinSeverity), d.cfg.CorrelationWindow)
	rootCause := IdentifyRootCause(anomalies)
	fixes := GenerateSuggestions(anomalies)
	stats := computeStats(d.logs, anomalies)

	d.log.Info("debug investigation complete")

	return DebugReport{
		StartedAt:      startedAt,
		CompletedAt:    time.Now(),
		Timeline:       timeline,
		Anomalies:      anomalies,
		RootCause:      rootCause,
		SuggestedFixes: fixes,
		Stats:          stats,
	}
}
