// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package agent implements a single test node: identity, an observed
// address discovery loop, and the orchestrator-facing RPC surface
// (handshake, run lifecycle, results, monitoring), grounded directly on
// spec §4.1 and §6.
package agent

import (
	"errors"
	"sync"
	"time"

	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/scenario"
)

// RunState is one of the agent's run lifecycle states (spec §4.1: "Idle
// -> Running -> (Completed | Stopped | Failed)").
type RunState string

const (
	StateIdle      RunState = "idle"
	StatePending   RunState = "pending"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateStopped   RunState = "stopped"
	StateFailed    RunState = "failed"
)

// Sentinel errors matching spec §4.1's per-op error contracts.
var (
	ErrIncompatibleProtocol = errors.New("incompatible protocol version")
	ErrAlreadyRunning       = errors.New("a run is already in progress")
	ErrInvalidScenario      = errors.New("scenario failed validation")
	ErrUnknownRun           = errors.New("unknown run id")
	ErrRunNotFinished       = errors.New("run has not reached a terminal state")
)

// Progress reports how far a run has advanced, for StatusPoll.
type Progress struct {
	CompletedAttempts uint32
	TotalAttempts     uint32
}

// Run tracks one StartRun invocation's lifecycle and accumulated results.
type Run struct {
	ID        string
	Scenario  scenario.ScenarioSpec
	Role      string
	Peers     []string
	State     RunState
	Progress  Progress
	Results   []scenario.AttemptResult
	StartedAt time.Time
	StoppedAt *time.Time
	StopGrace time.Duration
}

// Agent is a single test node's in-process state: its identity,
// capability set, the currently tracked run (only one may be active at
// a time), and an address observer feeding the connectivity verifier's
// Fallback logic.
type Agent struct {
	mu           sync.RWMutex
	id           string
	capabilities map[string]struct{}
	protocolVer  int
	run          *Run
	observer     *AddressObserver
	log          logging.Logger
}

// New builds an Agent with the given identity and declared capabilities.
func New(id string, protocolVersion int, capabilities []string, log logging.Logger) *Agent {
	if log == nil {
		log = logging.NoOp()
	}
	caps := make(map[string]struct{}, len(capabilities))
	for _, c := range capabilities {
		caps[c] = struct{}{}
	}
	return &Agent{
		id:           id,
		capabilities: caps,
		protocolVer:  protocolVersion,
		observer:     NewAddressObserver(),
		log:          log,
	}
}

// ID returns the agent's stable identity.
func (a *Agent) ID() string { return a.id }

// Observer exposes the agent's address-discovery loop.
func (a *Agent) Observer() *AddressObserver { return a.observer }

// Handshake checks protocol compatibility and reports the agent's
// capabilities, implementing spec §4.1's Handshake op.
func (a *Agent) Handshake(protocolVersion int, requiredCapabilities []string) (compatible bool, missing []string, capabilities []string) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	compatible = protocolVersion == a.protocolVer
	for _, c := range requiredCapabilities {
		if _, ok := a.capabilities[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		compatible = false
	}
	for c := range a.capabilities {
		capabilities = append(capabilities, c)
	}
	return compatible, missing, capabilities
}

// StartRun validates the scenario and transitions Idle->Running,
// implementing spec §4.1's StartRun op and its Idle->Running->terminal
// state machine. Re-entry is only permitted after the prior run reaches a
// terminal state (spec §4.1: "From any state Running is re-entrant only
// via StopRun then StartRun").
func (a *Agent) StartRun(runID string, spec scenario.ScenarioSpec, role string, peers []string) error {
	if errs := spec.Validate(); len(errs) > 0 {
		return ErrInvalidScenario
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run != nil && a.run.State == StateRunning {
		return ErrAlreadyRunning
	}

	a.run = &Run{
		ID:        runID,
		Scenario:  spec,
		Role:      role,
		Peers:     peers,
		State:     StateRunning,
		StartedAt: time.Now(),
		Progress:  Progress{TotalAttempts: totalAttempts(spec)},
	}
	a.log.Info("run started")
	return nil
}

// totalAttempts is a rough upper bound on attempts a single agent will
// drive: one per NAT-profile pair per attempts_per_cell, matching
// EstimatedDuration's cell counting.
func totalAttempts(spec scenario.ScenarioSpec) uint32 {
	pairs := uint32(len(spec.NatProfiles)) * uint32(len(spec.NatProfiles))
	return pairs * spec.TestMatrix.AttemptsPerCell
}

// RecordAttempt appends one completed attempt and advances progress.
func (a *Agent) RecordAttempt(runID string, result scenario.AttemptResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run == nil || a.run.ID != runID {
		return ErrUnknownRun
	}
	a.run.Results = append(a.run.Results, result)
	a.run.Progress.CompletedAttempts++
	return nil
}

// Complete transitions a running run to Completed.
func (a *Agent) Complete(runID string) error {
	return a.transitionTerminal(runID, StateCompleted)
}

// Fail transitions a running run to Failed, retaining whatever partial
// results were collected (spec §4.1: "A Failed run retains its partial
// AttemptResult list for later collection").
func (a *Agent) Fail(runID string) error {
	return a.transitionTerminal(runID, StateFailed)
}

func (a *Agent) transitionTerminal(runID string, target RunState) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.run == nil || a.run.ID != runID {
		return ErrUnknownRun
	}
	a.run.State = target
	return nil
}

// StatusPoll reports the current run's state and progress, implementing
// spec §4.1's StatusPoll op.
func (a *Agent) StatusPoll(runID string) (RunState, Progress, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.run == nil || a.run.ID != runID {
		return "", Progress{}, ErrUnknownRun
	}
	return a.run.State, a.run.Progress, nil
}

// StopRun moves a running run to Stopped at once and records the given
// grace period in StopGrace. It does not wait for in-flight attempts to
// drain; a run already in a terminal state is left unchanged. It returns
// the number of attempts completed so far.
func (a *Agent) StopRun(runID string, grace time.Duration) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.run == nil || a.run.ID != runID {
		return 0, ErrUnknownRun
	}
	if a.run.State == StateRunning {
		a.run.State = StateStopped
		now := time.Now()
		a.run.StoppedAt = &now
		a.run.StopGrace = grace
	}
	return a.run.Progress.CompletedAttempts, nil
}

// GetResults returns the full AttemptResult list once the run has
// reached a terminal state (spec §4.1's GetResults op).
func (a *Agent) GetResults(runID string) ([]scenario.AttemptResult, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.run == nil || a.run.ID != runID {
		return nil, ErrUnknownRun
	}
	switch a.run.State {
	case StateCompleted, StateStopped, StateFailed:
		return a.run.Results, nil
	default:
		return nil, ErrRunNotFinished
	}
}

// CurrentRun returns a snapshot of the active run, or nil if idle.
func (a *Agent) CurrentRun() *Run {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.run == nil {
		return nil
	}
	cp := *a.run
	return &cp
}
