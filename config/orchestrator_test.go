// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOrchestratorConfigValid(t *testing.T) {
	result := DefaultOrchestratorConfig().Validate()
	require.True(t, result.Valid)
	require.Empty(t, result.Errors)
}

func TestOrchestratorConfigRejectsEmptyObserverID(t *testing.T) {
	cfg := DefaultOrchestratorConfig()
	cfg.ObserverID = ""

	result := cfg.Validate()
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "observer_id", result.Errors[0].Field)
}

func TestOrchestratorConfigAggregatesAllErrors(t *testing.T) {
	cfg := DefaultOrchestratorConfig()
	cfg.ObserverID = ""
	cfg.MinNodes = 0
	cfg.MaxProofAge = 0
	cfg.Gossip.MinShuffleRate = 2.0

	result := cfg.Validate()
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 4)
}
