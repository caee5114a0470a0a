// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package debugger turns time-correlated per-agent logs into an
// actionable root-cause hypothesis when a proof fails, grounded directly
// on original_source/.../debug_automation.rs.
package debugger

// Severity levels for anomalies, ordered Info < Warning < Error < Critical.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARN"
	default:
		return "INFO"
	}
}

// score maps a severity to the 0.0-1.0 weight used in root-cause
// confidence (spec §4.5 step 4).
func (s Severity) score() float64 {
	switch s {
	case SeverityCritical:
		return 1.0
	case SeverityError:
		return 0.8
	case SeverityWarning:
		return 0.6
	default:
		return 0.4
	}
}

// asTestAnomalySeverity maps Severity onto the proof package's 1..5
// integer scale (spec §3: "severity ∈ 1..5").
func (s Severity) asTestAnomalySeverity() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityError:
		return 4
	case SeverityWarning:
		return 3
	default:
		return 2
	}
}

// ErrorPattern is one known failure signature the debugger matches
// against log messages (spec §4.5: "patterns are matched by lowercase
// substring union, split on |").
type ErrorPattern struct {
	Name           string
	Pattern        string
	Severity       Severity
	SuggestedCause string
	SuggestedFix   string
}

// DefaultErrorPatterns ships with the ten patterns the harness recognises
// out of the box, grounded on default_error_patterns().
func DefaultErrorPatterns() []ErrorPattern {
	return []ErrorPattern{
		{
			Name:           "zero_active_peers",
			Pattern:        "active peers|0 active|active_view_size: 0|active view: 0",
			Severity:       SeverityError,
			SuggestedCause: "HyParView not bootstrapping - no initial peers or join failed",
			SuggestedFix:   "Check registry connectivity, verify peer list is non-empty",
		},
		{
			Name:           "address_accumulation",
			Pattern:        "too many addresses|address overflow|addresses accumulated",
			Severity:       SeverityWarning,
			SuggestedCause: "Address accumulation - peers not pruning stale addresses",
			SuggestedFix:   "Check address TTL settings, verify cleanup task is running",
		},
		{
			Name:           "connection_timeout",
			Pattern:        "connection timeout|timed out|connecttimeout|connect failed",
			Severity:       SeverityWarning,
			SuggestedCause: "Connection timeouts - network issues or firewall blocking",
			SuggestedFix:   "Check firewall rules, verify QUIC ports are open (UDP)",
		},
		{
			Name:           "state_divergence",
			Pattern:        "divergent state|state mismatch|convergence failed|not converged",
			Severity:       SeverityCritical,
			SuggestedCause: "CRDT state divergence - nodes not converging",
			SuggestedFix:   "Check vector clock sync, verify gossip message delivery",
		},
		{
			Name:           "gossip_drop",
			Pattern:        "message dropped|gossip failed|broadcast error|delivery failed",
			Severity:       SeverityWarning,
			SuggestedCause: "Gossip messages being dropped",
			SuggestedFix:   "Check message queue sizes, verify network bandwidth",
		},
		{
			Name:           "memory_pressure",
			Pattern:        "out of memory|oom|memory exhausted|allocation failed",
			Severity:       SeverityCritical,
			SuggestedCause: "Memory exhaustion - likely a leak or unbounded growth",
			SuggestedFix:   "Check for unbounded collections, profile memory usage",
		},
		{
			Name:           "certificate_error",
			Pattern:        "certificate invalid|cert error|tls failed|handshake failed",
			Severity:       SeverityError,
			SuggestedCause: "Certificate/TLS issues - likely expired or misconfigured",
			SuggestedFix:   "Check certificate dates, verify crypto configuration",
		},
		{
			Name:           "panic",
			Pattern:        "panic|panicked|unwrap failed",
			Severity:       SeverityCritical,
			SuggestedCause: "Code panic - unexpected error condition",
			SuggestedFix:   "Check stack trace for source location",
		},
		{
			Name:           "swim_false_positive",
			Pattern:        "false positive|incorrectly marked dead|alive but dead",
			Severity:       SeverityWarning,
			SuggestedCause: "SWIM false positive - live node marked as dead",
			SuggestedFix:   "Check SWIM timeout settings, reduce suspicion threshold",
		},
		{
			Name:           "nat_traversal_failed",
			Pattern:        "nat traversal failed|hole punch failed|relay required",
			Severity:       SeverityWarning,
			SuggestedCause: "NAT traversal failing - fallback to relay needed",
			SuggestedFix:   "Check relay availability, verify STUN server connectivity",
		},
	}
}
