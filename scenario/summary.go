// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scenario

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DimensionStats aggregates success/failure counts for one slice of the
// result set (e.g. one NAT-profile pair, one connection method), mirrored
// from RunSummary::by_dimension entries in generate_run_report.
type DimensionStats struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	SuccessRate float64 `json:"success_rate"`
}

// FailureBreakdown counts classified failures by category.
type FailureBreakdown struct {
	HarnessFailures          int `json:"harness_failures"`
	SutFailures              int `json:"sut_failures"`
	InfrastructureFailures   int `json:"infrastructure_failures"`
}

// RunSummary buckets a flat []AttemptResult into aggregate statistics,
// grounded on RunSummary::from_attempts and its use in
// generate_run_report / generate_matrix_report.
type RunSummary struct {
	RunID             string                    `json:"run_id"`
	Scenario          string                    `json:"scenario"`
	TotalAttempts     int                       `json:"total_attempts"`
	SuccessfulAttempts int                      `json:"successful_attempts"`
	FailedAttempts    int                       `json:"failed_attempts"`
	SuccessRate       float64                   `json:"success_rate"`
	FailureBreakdown
	LatencyP50Ms *float64                  `json:"latency_p50_ms,omitempty"`
	LatencyP95Ms *float64                  `json:"latency_p95_ms,omitempty"`
	LatencyP99Ms *float64                  `json:"latency_p99_ms,omitempty"`
	ByDimension  map[string]DimensionStats `json:"by_dimension"`
}

// FromAttempts computes a RunSummary from a flat result list, the way
// RunSummary::from_attempts does: overall counts, a failure-category
// breakdown, latency percentiles over successful attempts, and a
// per-dimension ("nat_pair:method") breakdown.
func FromAttempts(runID, scenarioName string, results []AttemptResult) RunSummary {
	summary := RunSummary{
		RunID:       runID,
		Scenario:    scenarioName,
		ByDimension: make(map[string]DimensionStats),
	}

	var latencies []float64
	dimCounts := make(map[string]*DimensionStats)

	for _, r := range results {
		summary.TotalAttempts++
		if r.Success {
			summary.SuccessfulAttempts++
			if r.RTTMillis != nil {
				latencies = append(latencies, *r.RTTMillis)
			}
		} else {
			summary.FailedAttempts++
			if r.Failure != nil {
				switch r.Failure.Category {
				case FailureHarnessBug:
					summary.HarnessFailures++
				case FailureSutFailure:
					summary.SutFailures++
				case FailureInfrastructureFlake:
					summary.InfrastructureFailures++
				}
			}
		}

		key := fmt.Sprintf("%s-%s:%s", r.Cell.SrcNat, r.Cell.DstNat, r.Cell.Method)
		d, ok := dimCounts[key]
		if !ok {
			d = &DimensionStats{}
			dimCounts[key] = d
		}
		d.Total++
		if r.Success {
			d.Successful++
		}
	}

	if summary.TotalAttempts > 0 {
		summary.SuccessRate = float64(summary.SuccessfulAttempts) / float64(summary.TotalAttempts)
	}

	for key, d := range dimCounts {
		if d.Total > 0 {
			d.SuccessRate = float64(d.Successful) / float64(d.Total)
		}
		summary.ByDimension[key] = *d
	}

	if len(latencies) > 0 {
		sort.Float64s(latencies)
		p50 := quantile(latencies, 0.50)
		p95 := quantile(latencies, 0.95)
		p99 := quantile(latencies, 0.99)
		summary.LatencyP50Ms = &p50
		summary.LatencyP95Ms = &p95
		summary.LatencyP99Ms = &p99
	}

	return summary
}

// quantile wraps gonum's empirical CDF quantile; sorted must already be
// ascending.
func quantile(sorted []float64, q float64) float64 {
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}
