package gateway

import (
	"sync/atomic"
	"time"
)

// Metrics tracks gateway-level counters using atomic operations for lock-free concurrency.
type Metrics struct {
	executions   atomic.Int64
	failures     atomic.Int64
	approvals    atomic.Int64
	denials      atomic.Int64
	totalLatency atomic.Int64 // nanoseconds across executions
}

// RecordExecution records one tool execution attempt and its latency.
func (m *Metrics) RecordExecution(success bool, latency time.Duration) {
	m.executions.Add(1)
	m.totalLatency.Add(int64(latency))
	if !success {
		m.failures.Add(1)
	}
}

// RecordResolution records a human approval decision.
func (m *Metrics) RecordResolution(approved bool) {
	if approved {
		m.approvals.Add(1)
	} else {
		m.denials.Add(1)
	}
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	executions := m.executions.Load()
	snap := MetricsSnapshot{
		Executions: executions,
		Failures:   m.failures.Load(),
		Approvals:  m.approvals.Load(),
		Denials:    m.denials.Load(),
	}
	if executions > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / executions)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Executions int64         `json:"executions"`
	Failures   int64         `json:"failures"`
	Approvals  int64         `json:"approvals"`
	Denials    int64         `json:"denials"`
	AvgLatency time.Duration `json:"avg_latency_ns"`
}
