// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/scenario"
)

func testAgent() *Agent {
	return New("agent-1", 1, []string{"quic", "hyparview"}, logging.NoOp())
}

func TestHandshakeCompatible(t *testing.T) {
	a := testAgent()
	compatible, missing, caps := a.Handshake(1, []string{"quic"})
	require.True(t, compatible)
	require.Empty(t, missing)
	require.Contains(t, caps, "quic")
}

func TestHandshakeIncompatibleProtocolVersion(t *testing.T) {
	a := testAgent()
	compatible, _, _ := a.Handshake(2, nil)
	require.False(t, compatible)
}

func TestHandshakeMissingCapability(t *testing.T) {
	a := testAgent()
	compatible, missing, _ := a.Handshake(1, []string{"swim"})
	require.False(t, compatible)
	require.Equal(t, []string{"swim"}, missing)
}

func TestStartRunRejectsInvalidScenario(t *testing.T) {
	a := testAgent()
	err := a.StartRun("run-1", scenario.ScenarioSpec{}, "initiator", nil)
	require.ErrorIs(t, err, ErrInvalidScenario)
}

func TestStartRunThenAlreadyRunning(t *testing.T) {
	a := testAgent()
	spec := scenario.CIFast()
	require.NoError(t, a.StartRun("run-1", spec, "initiator", nil))
	err := a.StartRun("run-2", spec, "initiator", nil)
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestStartRunThenCompleteAllowsReentry(t *testing.T) {
	a := testAgent()
	spec := scenario.CIFast()
	require.NoError(t, a.StartRun("run-1", spec, "initiator", nil))
	require.NoError(t, a.Complete("run-1"))
	require.NoError(t, a.StartRun("run-2", spec, "initiator", nil))
}

func TestGetResultsBeforeTerminalFails(t *testing.T) {
	a := testAgent()
	spec := scenario.CIFast()
	require.NoError(t, a.StartRun("run-1", spec, "initiator", nil))
	_, err := a.GetResults("run-1")
	require.ErrorIs(t, err, ErrRunNotFinished)
}

func TestGetResultsAfterFailedStillReturnsPartial(t *testing.T) {
	a := testAgent()
	spec := scenario.CIFast()
	require.NoError(t, a.StartRun("run-1", spec, "initiator", nil))
	require.NoError(t, a.RecordAttempt("run-1", scenario.AttemptResult{RunID: "run-1", Success: true}))
	require.NoError(t, a.Fail("run-1"))

	results, err := a.GetResults("run-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestStopRunTransitionsToStopped(t *testing.T) {
	a := testAgent()
	spec := scenario.CIFast()
	require.NoError(t, a.StartRun("run-1", spec, "initiator", nil))
	completed, err := a.StopRun("run-1", time.Second)
	require.NoError(t, err)
	require.Equal(t, uint32(0), completed)

	state, _, err := a.StatusPoll("run-1")
	require.NoError(t, err)
	require.Equal(t, StateStopped, state)
}

func TestStatusPollUnknownRun(t *testing.T) {
	a := testAgent()
	_, _, err := a.StatusPoll("does-not-exist")
	require.ErrorIs(t, err, ErrUnknownRun)
}

func TestStartRunResultStartedRule(t *testing.T) {
	r := StartRunResult{SuccessfulAgents: []string{"a1"}, FailedAgents: map[string]string{"a2": "timeout"}}
	require.True(t, r.Started())

	r2 := StartRunResult{FailedAgents: map[string]string{"a1": "timeout"}}
	require.False(t, r2.Started())
}

func TestAddressObserverDefaultsToFallback(t *testing.T) {
	o := NewAddressObserver()
	require.False(t, o.HasV6())
	require.Equal(t, "0.0.0.0:0", o.ListenAddress("v4"))
}
