// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestRecordAttemptIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.RecordAttempt("hole_punched", "v4", "success")
	m.RecordAttempt("hole_punched", "v4", "success")

	got := testutil.ToFloat64(m.ConnectionAttempts.WithLabelValues("hole_punched", "v4", "success"))
	require.Equal(t, 2.0, got)
}

func TestRecordProofResultLabelsByPassed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.RecordProofResult("connectivity", true)
	m.RecordProofResult("connectivity", false)

	require.Equal(t, 1.0, testutil.ToFloat64(m.ProofResults.WithLabelValues("connectivity", "true")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ProofResults.WithLabelValues("connectivity", "false")))
}

func TestObserveConvergenceRecordsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveConvergence(1.5)
	require.Equal(t, 1, testutil.CollectAndCount(m.ConvergenceLatency))
}
