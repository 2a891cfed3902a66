package solver

import (
	"fmt"
	"sync"
	"time"
)

// Stats holds statistics about propagation and search.
type Stats struct {
	// Search statistics
	Nodes      int           // Decisions taken
	Backtracks int           // Worlds popped to refute or undo a decision
	Fails      int           // Contradictions caught by the search
	Solutions  int           // Solutions found
	MaxDepth   int           // Deepest decision level reached
	SearchTime time.Duration // Wall time of the last Solve

	// Propagation statistics
	Propagations int // Propagator executions
	Schedulings  int // Propagators enqueued in a priority bucket
	Constraints  int // Constraints posted

	// Memory statistics
	PeakTrailSize int // Largest trail of undo operations
}

// Monitor collects Stats. Recording is done by the solving goroutine, reading
// may happen concurrently, for instance from a metrics scrape.
type Monitor struct {
	mu        sync.Mutex
	stats     Stats
	startTime time.Time
}

// NewMonitor creates a monitor with zeroed statistics.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Stats returns a copy of the current statistics.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Reset zeroes the statistics.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = Stats{}
}

// StartSearch marks the beginning of a search.
func (m *Monitor) StartSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startTime = time.Now()
}

// FinishSearch marks the end of a search.
func (m *Monitor) FinishSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.startTime.IsZero() {
		m.stats.SearchTime = time.Since(m.startTime)
		m.startTime = time.Time{}
	}
}

// RecordNode records a decision.
func (m *Monitor) RecordNode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Nodes++
}

// RecordBacktrack records a popped world.
func (m *Monitor) RecordBacktrack() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Backtracks++
}

// RecordFail records a contradiction.
func (m *Monitor) RecordFail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Fails++
}

// RecordSolution records a solution.
func (m *Monitor) RecordSolution() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Solutions++
}

// RecordDepth records the current decision depth.
func (m *Monitor) RecordDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth > m.stats.MaxDepth {
		m.stats.MaxDepth = depth
	}
}

// RecordPropagation records a propagator execution.
func (m *Monitor) RecordPropagation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Propagations++
}

// RecordScheduling records a propagator entering a bucket.
func (m *Monitor) RecordScheduling() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Schedulings++
}

// RecordConstraint records a posted constraint.
func (m *Monitor) RecordConstraint() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Constraints++
}

// RecordTrailSize records the current trail size.
func (m *Monitor) RecordTrailSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size > m.stats.PeakTrailSize {
		m.stats.PeakTrailSize = size
	}
}

// String returns a formatted representation of the statistics.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Solver Statistics:\n"+
			"  Search: %d nodes, %d backtracks, %d fails, %d solutions, %v time, max depth %d\n"+
			"  Propagation: %d executions, %d schedulings, %d constraints\n"+
			"  Memory: peak trail %d",
		s.Nodes, s.Backtracks, s.Fails, s.Solutions, s.SearchTime, s.MaxDepth,
		s.Propagations, s.Schedulings, s.Constraints,
		s.PeakTrailSize,
	)
}
