// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wraps prometheus.Registerer the way the teacher's
// metrics.Metrics does (a thin Register(collector) facade), generalized
// with concrete netproof_* collectors for attempts, proof results,
// anomalies, convergence latency and active runs. The orchestrator
// pipeline does not update them itself; callers do, through the
// Record*/Observe* helpers or the exported collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every netproof collector plus the registerer they were
// registered against, mirroring the teacher's Metrics{Registry} shape.
type Metrics struct {
	Registry prometheus.Registerer

	ConnectionAttempts *prometheus.CounterVec
	ProofResults       *prometheus.CounterVec
	AnomaliesDetected  *prometheus.CounterVec
	ConvergenceLatency prometheus.Histogram
	ActiveRuns         prometheus.Gauge
}

// New builds and registers every netproof collector against reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Registry: reg,
		ConnectionAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netproof_connection_attempts_total",
			Help: "Connection attempts by method, ip_version, and outcome.",
		}, []string{"method", "ip_version", "outcome"}),
		ProofResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netproof_proof_results_total",
			Help: "Pass/fail outcomes per proof kind (connectivity, gossip_protocol, crdt_convergence).",
		}, []string{"proof_type", "passed"}),
		AnomaliesDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netproof_anomalies_detected_total",
			Help: "Anomalies detected by kind.",
		}, []string{"kind"}),
		ConvergenceLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "netproof_crdt_convergence_seconds",
			Help:    "Time from first operation to full CRDT state convergence.",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netproof_active_runs",
			Help: "Number of verification runs currently in flight.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.ConnectionAttempts,
		m.ProofResults,
		m.AnomaliesDetected,
		m.ConvergenceLatency,
		m.ActiveRuns,
	} {
		if err := m.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Register registers a collector against the underlying registerer,
// mirroring the teacher's Metrics.Register.
func (m *Metrics) Register(collector prometheus.Collector) error {
	return m.Registry.Register(collector)
}

// RecordAttempt increments ConnectionAttempts for one connectivity
// attempt outcome (spec §4.2).
func (m *Metrics) RecordAttempt(method, ipVersion, outcome string) {
	m.ConnectionAttempts.WithLabelValues(method, ipVersion, outcome).Inc()
}

// RecordProofResult increments ProofResults for one step's pass/fail
// verdict (spec §4.6).
func (m *Metrics) RecordProofResult(proofType string, passed bool) {
	m.ProofResults.WithLabelValues(proofType, boolLabel(passed)).Inc()
}

// RecordAnomaly increments AnomaliesDetected for one detected anomaly
// kind (spec §7).
func (m *Metrics) RecordAnomaly(kind string) {
	m.AnomaliesDetected.WithLabelValues(kind).Inc()
}

// ObserveConvergence records one run's convergence latency in seconds
// (spec §4.4).
func (m *Metrics) ObserveConvergence(seconds float64) {
	m.ConvergenceLatency.Observe(seconds)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
