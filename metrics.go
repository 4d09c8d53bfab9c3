package kcluster

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRun is called after every single run of a core loop.
	// err is nil if the run finished.
	RecordRun(algorithm string, iterations int, objective float64, duration time.Duration, err error)

	// RecordCall is called once per KMeans / KMedoids call with the number
	// of restarts it executed.
	RecordCall(algorithm string, tries int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(string, int, float64, time.Duration, error) {}
func (NoopMetricsCollector) RecordCall(string, int, time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount        atomic.Int64
	RunErrors       atomic.Int64
	RunIterations   atomic.Int64
	RunTotalNanos   atomic.Int64
	CallCount       atomic.Int64
	CallErrors      atomic.Int64
	CallTries       atomic.Int64
	CallTotalNanos  atomic.Int64
	mu              sync.Mutex
	bestObjective   float64
	bestObjectiveOK bool
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ string, iterations int, objective float64, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	b.RunIterations.Add(int64(iterations))

	b.mu.Lock()
	if !b.bestObjectiveOK || objective < b.bestObjective {
		b.bestObjective = objective
		b.bestObjectiveOK = true
	}
	b.mu.Unlock()
}

// RecordCall implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCall(_ string, tries int, duration time.Duration, err error) {
	b.CallCount.Add(1)
	b.CallTries.Add(int64(tries))
	b.CallTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CallErrors.Add(1)
	}
}

// MetricsStats is a snapshot of BasicMetricsCollector.
type MetricsStats struct {
	RunCount         int64
	RunErrors        int64
	RunAvgIterations float64
	RunAvgNanos      int64
	CallCount        int64
	CallErrors       int64
	CallTries        int64
	CallAvgNanos     int64
	BestObjective    float64
	HasBestObjective bool
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() MetricsStats {
	s := MetricsStats{
		RunCount:   b.RunCount.Load(),
		RunErrors:  b.RunErrors.Load(),
		CallCount:  b.CallCount.Load(),
		CallErrors: b.CallErrors.Load(),
		CallTries:  b.CallTries.Load(),
	}
	if s.RunCount > 0 {
		s.RunAvgNanos = b.RunTotalNanos.Load() / s.RunCount
	}
	if ok := s.RunCount - s.RunErrors; ok > 0 {
		s.RunAvgIterations = float64(b.RunIterations.Load()) / float64(ok)
	}
	if s.CallCount > 0 {
		s.CallAvgNanos = b.CallTotalNanos.Load() / s.CallCount
	}

	b.mu.Lock()
	s.BestObjective = b.bestObjective
	s.HasBestObjective = b.bestObjectiveOK
	b.mu.Unlock()
	return s
}
