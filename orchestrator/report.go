// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/luxfi/netproof/debugger"
	"github.com/luxfi/netproof/proof"
)

// Report is the complete test report the orchestrator produces, ported
// from ProofOrchestrator's OrchestratorReport.
type Report struct {
	SessionID         string
	StartedAt         time.Time
	CompletedAt       time.Time
	Passed            bool
	StepResults       []StepResult
	ConnectivityProof *proof.NetworkConnectivityProof
	GossipProof       *proof.GossipProof
	CrdtProof         *proof.CrdtConvergenceProof
	DebugReport       *debugger.DebugReport
	AllAnomalies      []proof.TestAnomaly
	FailureSummary    *string
}

// ToProofReport converts a Report into the storable
// proof.ProofBasedTestReport, dropping step-level detail the storage
// format does not carry.
func (r Report) ToProofReport() proof.ProofBasedTestReport {
	completed := r.CompletedAt
	return proof.ProofBasedTestReport{
		SessionID:      r.SessionID,
		StartedAt:      r.StartedAt,
		CompletedAt:    &completed,
		Connectivity:   r.ConnectivityProof,
		Gossip:         r.GossipProof,
		Crdt:           r.CrdtProof,
		Anomalies:      r.AllAnomalies,
		Passed:         r.Passed,
		FailureSummary: r.FailureSummary,
	}
}

// String renders a human-readable summary, ported from
// OrchestratorReport's Display impl.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "Proof-Based Test Report")
	fmt.Fprintln(&b, "=======================")
	fmt.Fprintf(&b, "Session: %s\n", r.SessionID)
	fmt.Fprintf(&b, "Status: %s\n\n", okFail(r.Passed))

	fmt.Fprintln(&b, "Step Results:")
	for _, step := range r.StepResults {
		mark := "[FAIL]"
		if step.Passed {
			mark = "[PASS]"
		}
		fmt.Fprintf(&b, "  %s %s - %s (%s)\n", mark, step.Name, step.Details, step.Duration)
	}
	fmt.Fprintln(&b)

	if len(r.AllAnomalies) > 0 {
		fmt.Fprintf(&b, "Anomalies (%d):\n", len(r.AllAnomalies))
		for _, a := range r.AllAnomalies {
			fmt.Fprintf(&b, "  - %s: %s\n", a.Kind, a.Description)
		}
		fmt.Fprintln(&b)
	}

	if r.FailureSummary != nil {
		fmt.Fprintf(&b, "Failure Summary: %s\n", *r.FailureSummary)
	}

	return b.String()
}

// RunComprehensiveTest runs the full pipeline, ported from
// ProofOrchestrator::run_comprehensive_test: connectivity, then gossip,
// then CRDT, proofs generated regardless of per-step outcome, then
// automated debugging if any step failed and debug_on_failure is set
// (spec §4.6 steps 1-6).
func (o *Orchestrator) RunComprehensiveTest() (Report, error) {
	startedAt := time.Now()
	var stepResults []StepResult
	var allAnomalies []proof.TestAnomaly
	passed := true

	connectivityResult := o.VerifyConnectivity()
	allAnomalies = append(allAnomalies, connectivityResult.Anomalies...)
	if !connectivityResult.Passed {
		passed = false
	}
	stepResults = append(stepResults, connectivityResult)

	connectivityProof, err := o.GenerateConnectivityProof()
	if err != nil {
		return Report{}, err
	}

	gossipResult, gossipProof, err := o.VerifyGossip()
	if err != nil {
		return Report{}, err
	}
	allAnomalies = append(allAnomalies, gossipResult.Anomalies...)
	if !gossipResult.Passed {
		passed = false
	}
	stepResults = append(stepResults, gossipResult)

	crdtResult, crdtProof, err := o.VerifyCrdt()
	if err != nil {
		return Report{}, err
	}
	allAnomalies = append(allAnomalies, crdtResult.Anomalies...)
	if !crdtResult.Passed {
		passed = false
	}
	stepResults = append(stepResults, crdtResult)

	var debugReport *debugger.DebugReport
	if !passed && o.cfg.DebugOnFailure {
		r := o.debug.Investigate()
		debugReport = &r
	}

	var failureSummary *string
	if !passed {
		var failedSteps []string
		for _, s := range stepResults {
			if !s.Passed {
				failedSteps = append(failedSteps, s.Name)
			}
		}
		summary := fmt.Sprintf("test failed at steps: %s. total anomalies: %d",
			strings.Join(failedSteps, ", "), len(allAnomalies))
		failureSummary = &summary
	}

	return Report{
		SessionID:         o.SessionID(),
		StartedAt:         startedAt,
		CompletedAt:       time.Now(),
		Passed:            passed,
		StepResults:       stepResults,
		ConnectivityProof: &connectivityProof,
		GossipProof:       &gossipProof,
		CrdtProof:         &crdtProof,
		DebugReport:       debugReport,
		AllAnomalies:      allAnomalies,
		FailureSummary:    failureSummary,
	}, nil
}
