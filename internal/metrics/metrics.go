package metrics

import "sync/atomic"

// ID identifies one counter in the in-process metrics table.
type ID uint8

const (
	MetricVerifySuccess ID = iota
	MetricVerifyFailure
	MetricVerifyRateLimited
	MetricTokenIssued
	MetricTokenRevoked
	MetricAuthenticateHit
	MetricAuthenticateMiss
	MetricPermissionGranted
	MetricPermissionDenied

	// IDCount is the number of defined counters.
	IDCount
)

// Config controls metrics collection.
type Config struct {
	Enabled bool
}

// Metrics is a fixed table of atomic counters. A disabled instance keeps
// every operation a no-op so callers never branch.
type Metrics struct {
	enabled  bool
	counters [IDCount]atomic.Uint64
}

// New creates a [Metrics] instance. When cfg.Enabled is false all
// operations are no-ops.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc adds one to the identified counter.
func (m *Metrics) Inc(id ID) {
	if m == nil || !m.enabled || id >= IDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the identified counter's current value.
func (m *Metrics) Get(id ID) uint64 {
	if m == nil || id >= IDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters [IDCount]uint64
}

// Snapshot returns a consistent-enough copy for export: each counter is
// read atomically, the table as a whole is not fenced.
func (m *Metrics) Snapshot() Snapshot {
	var s Snapshot
	if m == nil {
		return s
	}
	for i := range m.counters {
		s.Counters[i] = m.counters[i].Load()
	}
	return s
}
