// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBuiltinScenariosValidate(t *testing.T) {
	for _, s := range []ScenarioSpec{ConnectivityMatrix(), CIFast(), GossipCoverage(), OracleSuite()} {
		errs := s.Validate()
		require.Emptyf(t, errs, "scenario %s should validate cleanly: %v", s.ID, errs)
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	s := ScenarioSpec{}
	errs := s.Validate()
	require.Contains(t, errs, ErrEmptyID)
	require.Contains(t, errs, ErrEmptyName)
	require.Contains(t, errs, ErrNoNatProfiles)
	require.Contains(t, errs, ErrZeroAttempts)
	require.Contains(t, errs, ErrZeroTimeout)
}

func TestStarTopologyRequiresHub(t *testing.T) {
	s := CIFast()
	s.Topology = TopologySpec{Type: TopologyStar}
	errs := s.Validate()
	require.Contains(t, errs, ErrStarNeedsHub)
}

func TestLoadNamedUnknown(t *testing.T) {
	_, err := LoadNamed("nonexistent")
	require.Error(t, err)
}

func TestLoadFileRoundTrips(t *testing.T) {
	data, err := yaml.Marshal(CIFast())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, CIFast(), loaded)
}

func TestLoadFileRejectsInvalidScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: \"\"\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFileMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestFromAttemptsComputesSummary(t *testing.T) {
	rtt1, rtt2, rtt3 := 10.0, 20.0, 30.0
	results := []AttemptResult{
		{RunID: "r1", AgentID: "a", Success: true, RTTMillis: &rtt1, Cell: Cell{SrcNat: "full_cone", DstNat: "full_cone", Method: "direct"}},
		{RunID: "r1", AgentID: "a", Success: true, RTTMillis: &rtt2, Cell: Cell{SrcNat: "full_cone", DstNat: "full_cone", Method: "direct"}},
		{RunID: "r1", AgentID: "a", Success: true, RTTMillis: &rtt3, Cell: Cell{SrcNat: "full_cone", DstNat: "full_cone", Method: "direct"}},
		{RunID: "r1", AgentID: "a", Success: false, Failure: &ClassifiedFailure{Category: FailureSutFailure}, Cell: Cell{SrcNat: "symmetric", DstNat: "symmetric", Method: "relayed"}},
	}

	summary := FromAttempts("r1", "ci_fast", results)
	require.Equal(t, 4, summary.TotalAttempts)
	require.Equal(t, 3, summary.SuccessfulAttempts)
	require.Equal(t, 1, summary.FailedAttempts)
	require.Equal(t, 1, summary.SutFailures)
	require.InDelta(t, 0.75, summary.SuccessRate, 1e-9)
	require.NotNil(t, summary.LatencyP50Ms)
	require.Len(t, summary.ByDimension, 2)
}
