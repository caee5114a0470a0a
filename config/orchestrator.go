// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config validates the orchestrator's runtime configuration, in
// the style of the teacher repo's config.Validator.ValidateDetailed: a
// ValidationResult carrying every error found, not a single bool. It has
// no warnings list. Scenario files are validated by
// scenario.ScenarioSpec.Validate, not by this package.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors (spec §7, "Scenario validity": validate() returns
// errors, fatal — the run is never started).
var (
	ErrMissingObserverID   = errors.New("observer_id must not be empty")
	ErrMinNodesTooLow      = errors.New("min_nodes must be at least 1")
	ErrMaxProofAgeTooLow   = errors.New("max_proof_age_secs must be positive")
	ErrInvalidGossipConfig = errors.New("gossip_config thresholds out of range")
	ErrInvalidCrdtConfig   = errors.New("crdt_config timeout out of range")
)

// ValidationError carries a field, the offending value, and the
// constraint it violated, mirroring the teacher's ValidationError.
type ValidationError struct {
	Field      string
	Value      any
	Constraint string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s=%v violates constraint: %s", e.Field, e.Value, e.Constraint)
}

// ValidationResult aggregates every error found rather than stopping at
// the first, so a caller (or a scenario file author) sees the whole
// picture in one pass.
type ValidationResult struct {
	Errors []ValidationError
	Valid  bool
}

func newResult(errs []ValidationError) ValidationResult {
	return ValidationResult{Errors: errs, Valid: len(errs) == 0}
}

// GossipVerifierConfig configures the gossip verifier's thresholds
// (spec §4.3).
type GossipVerifierConfig struct {
	ExpectedActiveView    int     `yaml:"expected_active_view"`
	ExpectedPassiveView   int     `yaml:"expected_passive_view"`
	ActiveSizeAlpha       float64 `yaml:"active_size_alpha"`
	MinShuffleRate        float64 `yaml:"min_shuffle_rate"`
	MinPingRate           float64 `yaml:"min_ping_rate"`
	MaxFalsePositiveRate  float64 `yaml:"max_false_positive_rate"`
	MinDeliveryRate       float64 `yaml:"min_delivery_rate"`
	MaxFailureDetectionMs uint64  `yaml:"max_failure_detection_ms"`
	MaxViewConvergenceMs  uint64  `yaml:"max_view_convergence_ms"`
	MaxDeliveryMs         uint64  `yaml:"max_delivery_ms"`
	NoTrafficInconclusive bool    `yaml:"no_traffic_inconclusive"`
}

// DefaultGossipVerifierConfig mirrors original_source's
// GossipVerifierConfig::default().
func DefaultGossipVerifierConfig() GossipVerifierConfig {
	return GossipVerifierConfig{
		ExpectedActiveView:    4,
		ExpectedPassiveView:   16,
		ActiveSizeAlpha:       1.0,
		MinShuffleRate:        0.8,
		MinPingRate:           0.9,
		MaxFalsePositiveRate:  0.05,
		MinDeliveryRate:       0.95,
		MaxFailureDetectionMs: 5000,
		MaxViewConvergenceMs:  0, // 0 == unchecked
		MaxDeliveryMs:         0,
		NoTrafficInconclusive: false,
	}
}

// CrdtVerifierConfig configures the CRDT verifier (spec §4.4).
type CrdtVerifierConfig struct {
	ConvergenceTimeoutMs     int64         `yaml:"convergence_timeout_ms"`
	ConvergenceTimeout       time.Duration `yaml:"-"`
	PollIntervalMs           int64         `yaml:"poll_interval_ms"`
	PollInterval             time.Duration `yaml:"-"`
	MinNodes                 int           `yaml:"min_nodes"`
	VerifyConflictResolution bool          `yaml:"verify_conflict_resolution"`
}

// UnmarshalYAML derives the time.Duration fields from their millisecond
// wire representation.
func (c *CrdtVerifierConfig) UnmarshalYAML(unmarshal func(any) error) error {
	type plain CrdtVerifierConfig
	aux := plain(*c)
	if err := unmarshal(&aux); err != nil {
		return err
	}
	*c = CrdtVerifierConfig(aux)
	if c.ConvergenceTimeoutMs > 0 {
		c.ConvergenceTimeout = time.Duration(c.ConvergenceTimeoutMs) * time.Millisecond
	}
	if c.PollIntervalMs > 0 {
		c.PollInterval = time.Duration(c.PollIntervalMs) * time.Millisecond
	}
	return nil
}

// DefaultCrdtVerifierConfig mirrors CrdtVerifierConfig::default().
func DefaultCrdtVerifierConfig() CrdtVerifierConfig {
	return CrdtVerifierConfig{
		ConvergenceTimeoutMs:     30_000,
		ConvergenceTimeout:       30 * time.Second,
		PollIntervalMs:           100,
		PollInterval:             100 * time.Millisecond,
		MinNodes:                 2,
		VerifyConflictResolution: true,
	}
}

// DebuggerConfig configures the automated debugger (spec §4.5).
type DebuggerConfig struct {
	MaxLogLines          int           `yaml:"max_log_lines"`
	CorrelationWindowMs   int64         `yaml:"correlation_window_ms"`
	CorrelationWindow     time.Duration `yaml:"-"`
	MinSeverity           int           `yaml:"min_severity"` // 1 (Info) .. 4 (Critical)
}

// UnmarshalYAML derives CorrelationWindow from its millisecond wire
// representation.
func (c *DebuggerConfig) UnmarshalYAML(unmarshal func(any) error) error {
	type plain DebuggerConfig
	aux := plain(*c)
	if err := unmarshal(&aux); err != nil {
		return err
	}
	*c = DebuggerConfig(aux)
	if c.CorrelationWindowMs > 0 {
		c.CorrelationWindow = time.Duration(c.CorrelationWindowMs) * time.Millisecond
	}
	return nil
}

// DefaultDebuggerConfig mirrors DebuggerConfig::default().
func DefaultDebuggerConfig() DebuggerConfig {
	return DebuggerConfig{
		MaxLogLines:         10_000,
		CorrelationWindowMs: 5_000,
		CorrelationWindow:   5 * time.Second,
		MinSeverity:         2, // Warning
	}
}

// OrchestratorConfig is the configuration the orchestrator recognises
// (spec §4.6). MaxProofAge is expressed in the YAML source as
// max_proof_age_secs (a plain integer number of seconds) and converted to
// a time.Duration during UnmarshalYAML.
type OrchestratorConfig struct {
	ObserverID             string               `yaml:"observer_id"`
	MaxProofAgeSecs        int64                `yaml:"max_proof_age_secs"`
	MaxProofAge            time.Duration        `yaml:"-"`
	DebugOnFailure         bool                 `yaml:"debug_on_failure"`
	MinNodes               int                  `yaml:"min_nodes"`
	RequireCrossValidation bool                 `yaml:"require_cross_validation"`
	Gossip                 GossipVerifierConfig `yaml:"gossip_config"`
	Crdt                   CrdtVerifierConfig   `yaml:"crdt_config"`
	Debug                  DebuggerConfig       `yaml:"debug_config"`
}

// UnmarshalYAML decodes the seconds-based wire representation and derives
// MaxProofAge, so the rest of the codebase works with time.Duration
// exclusively.
func (c *OrchestratorConfig) UnmarshalYAML(unmarshal func(any) error) error {
	type plain OrchestratorConfig
	aux := plain(*c)
	if err := unmarshal(&aux); err != nil {
		return err
	}
	*c = OrchestratorConfig(aux)
	if c.MaxProofAgeSecs > 0 {
		c.MaxProofAge = time.Duration(c.MaxProofAgeSecs) * time.Second
	}
	return nil
}

// DefaultOrchestratorConfig mirrors ProofOrchestratorConfig::default().
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		ObserverID:             "orchestrator",
		MaxProofAgeSecs:        30,
		MaxProofAge:            30 * time.Second,
		DebugOnFailure:         true,
		MinNodes:               2,
		RequireCrossValidation: true,
		Gossip:                 DefaultGossipVerifierConfig(),
		Crdt:                   DefaultCrdtVerifierConfig(),
		Debug:                  DefaultDebuggerConfig(),
	}
}

// Validate checks the configuration and returns every violation found.
func (c OrchestratorConfig) Validate() ValidationResult {
	var errs []ValidationError

	if c.ObserverID == "" {
		errs = append(errs, ValidationError{"observer_id", c.ObserverID, "must not be empty"})
	}
	if c.MinNodes < 1 {
		errs = append(errs, ValidationError{"min_nodes", c.MinNodes, "must be at least 1"})
	}
	if c.MaxProofAge <= 0 {
		errs = append(errs, ValidationError{"max_proof_age_secs", c.MaxProofAge, "must be positive"})
	}
	if c.Gossip.MinShuffleRate < 0 || c.Gossip.MinShuffleRate > 1 {
		errs = append(errs, ValidationError{"gossip.min_shuffle_rate", c.Gossip.MinShuffleRate, "must be in [0,1]"})
	}
	if c.Gossip.MinPingRate < 0 || c.Gossip.MinPingRate > 1 {
		errs = append(errs, ValidationError{"gossip.min_ping_rate", c.Gossip.MinPingRate, "must be in [0,1]"})
	}
	if c.Crdt.ConvergenceTimeout <= 0 {
		errs = append(errs, ValidationError{"crdt.convergence_timeout", c.Crdt.ConvergenceTimeout, "must be positive"})
	}
	if c.Crdt.MinNodes < 1 {
		errs = append(errs, ValidationError{"crdt.min_nodes", c.Crdt.MinNodes, "must be at least 1"})
	}

	return newResult(errs)
}
