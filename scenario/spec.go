// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scenario declares what a run tests (NAT-profile combinations,
// attempts-per-cell, timing budgets, success thresholds) and how results
// are bucketed into summaries, grounded on
// original_source/.../bin/saorsa-testctl.rs's harness::{ScenarioSpec,
// RunSummary, DimensionStats} re-exports.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/luxfi/netproof/proof"
)

// Suite names the scenario family, mirroring the bin's load_scenario
// switch ("connectivity_matrix", "ci_fast", "gossip_coverage",
// "oracle_suite").
type Suite string

const (
	SuiteConnectivityMatrix Suite = "connectivity_matrix"
	SuiteCIFast             Suite = "ci_fast"
	SuiteGossipCoverage     Suite = "gossip_coverage"
	SuiteOracleSuite        Suite = "oracle_suite"
)

// TopologyType describes the logical shape agents are arranged in for a
// run.
type TopologyType string

const (
	TopologyFullMesh TopologyType = "full_mesh"
	TopologyStar     TopologyType = "star"
	TopologyRing     TopologyType = "ring"
)

// TopologySpec pins down the topology and, for star topologies, which
// agent is the hub.
type TopologySpec struct {
	Type TopologyType `json:"type" yaml:"type"`
	Hub  string       `json:"hub,omitempty" yaml:"hub,omitempty"`
}

// NatProfileSpec tags one NAT behavior agents may be assigned for a run.
type NatProfileSpec struct {
	Tag     string       `json:"tag" yaml:"tag"`
	NatType proof.NatType `json:"nat_type" yaml:"nat_type"`
}

// TestMatrixSpec bounds how many attempts each (src_nat, dst_nat, method,
// ip_version) cell gets and how long an attempt may run.
type TestMatrixSpec struct {
	AttemptsPerCell uint32 `json:"attempts_per_cell" yaml:"attempts_per_cell"`
	TimeoutMs       uint64 `json:"timeout_ms" yaml:"timeout_ms"`
	JitterMs        uint64 `json:"jitter_ms,omitempty" yaml:"jitter_ms,omitempty"`
}

// ThresholdSpec is the pass/fail bar a RunSummary is judged against.
type ThresholdSpec struct {
	MinSuccessRate float64 `json:"min_success_rate" yaml:"min_success_rate"`
	MaxP95LatencyMs uint64 `json:"max_p95_latency_ms" yaml:"max_p95_latency_ms"`
}

// ScenarioSpec is the declarative description of a test run (spec §3,
// "Scenario and Matrix Model").
type ScenarioSpec struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Suite       Suite            `json:"suite" yaml:"suite"`
	NatProfiles []NatProfileSpec `json:"nat_profiles" yaml:"nat_profiles"`
	Topology    TopologySpec     `json:"topology" yaml:"topology"`
	TestMatrix  TestMatrixSpec   `json:"test_matrix" yaml:"test_matrix"`
	Thresholds  ThresholdSpec    `json:"thresholds" yaml:"thresholds"`
	Seed        *uint64          `json:"seed,omitempty" yaml:"seed,omitempty"`
}

var (
	ErrEmptyID          = errors.New("scenario id must not be empty")
	ErrEmptyName        = errors.New("scenario name must not be empty")
	ErrNoNatProfiles    = errors.New("at least one nat_profile is required")
	ErrZeroAttempts     = errors.New("test_matrix.attempts_per_cell must be positive")
	ErrZeroTimeout      = errors.New("test_matrix.timeout_ms must be positive")
	ErrStarNeedsHub     = errors.New("star topology requires a hub agent")
	ErrBadSuccessRate   = errors.New("thresholds.min_success_rate must be in [0,1]")
)

// Validate returns every violation found, rather than stopping at the
// first (spec §7, "Scenario validity: validate() returns errors, fatal —
// the run is never started").
func (s ScenarioSpec) Validate() []error {
	var errs []error

	if s.ID == "" {
		errs = append(errs, ErrEmptyID)
	}
	if s.Name == "" {
		errs = append(errs, ErrEmptyName)
	}
	if len(s.NatProfiles) == 0 {
		errs = append(errs, ErrNoNatProfiles)
	}
	if s.TestMatrix.AttemptsPerCell == 0 {
		errs = append(errs, ErrZeroAttempts)
	}
	if s.TestMatrix.TimeoutMs == 0 {
		errs = append(errs, ErrZeroTimeout)
	}
	if s.Topology.Type == TopologyStar && s.Topology.Hub == "" {
		errs = append(errs, ErrStarNeedsHub)
	}
	if s.Thresholds.MinSuccessRate < 0 || s.Thresholds.MinSuccessRate > 1 {
		errs = append(errs, ErrBadSuccessRate)
	}

	return errs
}

// EstimatedDuration is a rough wall-clock bound for the whole matrix:
// cells * attempts_per_cell * (timeout + jitter), matching the bin's use
// of spec.estimated_duration() in the Validate command output.
func (s ScenarioSpec) EstimatedDuration() uint64 {
	cells := uint64(len(s.NatProfiles)) * uint64(len(s.NatProfiles))
	perAttempt := s.TestMatrix.TimeoutMs + s.TestMatrix.JitterMs
	return cells * uint64(s.TestMatrix.AttemptsPerCell) * perAttempt
}

// ConnectivityMatrix returns a scenario exercising every NAT-profile pair
// over a full mesh, grounded on ScenarioSpec::connectivity_matrix().
func ConnectivityMatrix() ScenarioSpec {
	return ScenarioSpec{
		ID:    "connectivity_matrix",
		Name:  "NAT connectivity matrix",
		Suite: SuiteConnectivityMatrix,
		NatProfiles: []NatProfileSpec{
			{Tag: "full_cone", NatType: proof.NatFullCone},
			{Tag: "port_restricted", NatType: proof.NatPortRestricted},
			{Tag: "symmetric", NatType: proof.NatSymmetric},
		},
		Topology:   TopologySpec{Type: TopologyFullMesh},
		TestMatrix: TestMatrixSpec{AttemptsPerCell: 20, TimeoutMs: 10_000},
		Thresholds: ThresholdSpec{MinSuccessRate: 0.8, MaxP95LatencyMs: 5_000},
	}
}

// CIFast returns a small scenario suitable for a CI smoke test, grounded
// on ScenarioSpec::ci_fast().
func CIFast() ScenarioSpec {
	return ScenarioSpec{
		ID:    "ci_fast",
		Name:  "CI fast smoke test",
		Suite: SuiteCIFast,
		NatProfiles: []NatProfileSpec{
			{Tag: "full_cone", NatType: proof.NatFullCone},
		},
		Topology:   TopologySpec{Type: TopologyFullMesh},
		TestMatrix: TestMatrixSpec{AttemptsPerCell: 3, TimeoutMs: 5_000},
		Thresholds: ThresholdSpec{MinSuccessRate: 0.66, MaxP95LatencyMs: 3_000},
	}
}

// GossipCoverage returns a scenario focused on gossip-protocol
// convergence rather than raw connectivity, grounded on
// ScenarioSpec::gossip_coverage().
func GossipCoverage() ScenarioSpec {
	return ScenarioSpec{
		ID:    "gossip_coverage",
		Name:  "Gossip protocol coverage",
		Suite: SuiteGossipCoverage,
		NatProfiles: []NatProfileSpec{
			{Tag: "full_cone", NatType: proof.NatFullCone},
			{Tag: "symmetric", NatType: proof.NatSymmetric},
		},
		Topology:   TopologySpec{Type: TopologyRing},
		TestMatrix: TestMatrixSpec{AttemptsPerCell: 10, TimeoutMs: 15_000},
		Thresholds: ThresholdSpec{MinSuccessRate: 0.9, MaxP95LatencyMs: 8_000},
	}
}

// OracleSuite returns the most exhaustive scenario, grounded on
// ScenarioSpec::oracle_suite().
func OracleSuite() ScenarioSpec {
	return ScenarioSpec{
		ID:    "oracle_suite",
		Name:  "Full oracle verification suite",
		Suite: SuiteOracleSuite,
		NatProfiles: []NatProfileSpec{
			{Tag: "full_cone", NatType: proof.NatFullCone},
			{Tag: "address_restricted", NatType: proof.NatAddressRestricted},
			{Tag: "port_restricted", NatType: proof.NatPortRestricted},
			{Tag: "symmetric", NatType: proof.NatSymmetric},
			{Tag: "cgnat", NatType: proof.NatCgnat},
		},
		Topology:   TopologySpec{Type: TopologyFullMesh},
		TestMatrix: TestMatrixSpec{AttemptsPerCell: 50, TimeoutMs: 20_000},
		Thresholds: ThresholdSpec{MinSuccessRate: 0.95, MaxP95LatencyMs: 10_000},
	}
}

// LoadFile reads a YAML scenario file from disk and validates it before
// returning, the same shape config.LoadOrchestratorConfig uses for
// orchestrator configuration.
func LoadFile(path string) (ScenarioSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ScenarioSpec{}, fmt.Errorf("reading scenario file: %w", err)
	}

	var spec ScenarioSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return ScenarioSpec{}, fmt.Errorf("parsing scenario file: %w", err)
	}
	if errs := spec.Validate(); len(errs) > 0 {
		return ScenarioSpec{}, fmt.Errorf("invalid scenario file: %v", errs)
	}
	return spec, nil
}

// LoadNamed resolves one of the built-in scenarios by name, mirroring
// load_scenario in the bin.
func LoadNamed(name string) (ScenarioSpec, error) {
	switch name {
	case string(SuiteConnectivityMatrix):
		return ConnectivityMatrix(), nil
	case string(SuiteCIFast):
		return CIFast(), nil
	case string(SuiteGossipCoverage):
		return GossipCoverage(), nil
	case string(SuiteOracleSuite):
		return OracleSuite(), nil
	default:
		return ScenarioSpec{}, fmt.Errorf("unknown scenario: %s", name)
	}
}
