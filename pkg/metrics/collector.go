// Package metrics exports solver statistics to Prometheus.
package metrics

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gitrdm/gokanfd/pkg/solver"
)

const (
	namespace = "gokanfd"
	subsystem = "solver"

	ModelLabel   = "model"
	ModelIDLabel = "model_id"
)

type stat struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(solver.Stats) float64
}

func newStat(name, help string, kind prometheus.ValueType, value func(solver.Stats) float64) stat {
	return stat{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, name),
			help,
			[]string{ModelLabel, ModelIDLabel},
			nil,
		),
		kind:  kind,
		value: value,
	}
}

// Collector reads the monitors of registered models on every scrape.
type Collector struct {
	mu     sync.RWMutex
	models map[uuid.UUID]*solver.Model
	stats  []stat
}

// NewCollector returns a collector with no model.
func NewCollector() *Collector {
	return &Collector{
		models: make(map[uuid.UUID]*solver.Model),
		stats: []stat{
			newStat("nodes_total", "Decisions taken by the search.", prometheus.CounterValue,
				func(s solver.Stats) float64 { return float64(s.Nodes) }),
			newStat("backtracks_total", "Worlds popped by the search.", prometheus.CounterValue,
				func(s solver.Stats) float64 { return float64(s.Backtracks) }),
			newStat("fails_total", "Contradictions caught by the search.", prometheus.CounterValue,
				func(s solver.Stats) float64 { return float64(s.Fails) }),
			newStat("solutions_total", "Solutions found.", prometheus.CounterValue,
				func(s solver.Stats) float64 { return float64(s.Solutions) }),
			newStat("propagations_total", "Propagator executions.", prometheus.CounterValue,
				func(s solver.Stats) float64 { return float64(s.Propagations) }),
			newStat("schedulings_total", "Propagators enqueued by the engine.", prometheus.CounterValue,
				func(s solver.Stats) float64 { return float64(s.Schedulings) }),
			newStat("constraints_total", "Constraints posted.", prometheus.CounterValue,
				func(s solver.Stats) float64 { return float64(s.Constraints) }),
			newStat("max_depth", "Deepest decision level reached.", prometheus.GaugeValue,
				func(s solver.Stats) float64 { return float64(s.MaxDepth) }),
			newStat("peak_trail_size", "Largest trail of undo operations.", prometheus.GaugeValue,
				func(s solver.Stats) float64 { return float64(s.PeakTrailSize) }),
			newStat("search_seconds", "Wall time of the last search.", prometheus.GaugeValue,
				func(s solver.Stats) float64 { return s.SearchTime.Seconds() }),
		},
	}
}

// Add registers a model. Adding it again is a no-op.
func (c *Collector) Add(m *solver.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[m.ID()] = m
}

// Remove forgets a model.
func (c *Collector) Remove(m *solver.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.models, m.ID())
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, s := range c.stats {
		ch <- s.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for id, m := range c.models {
		st := m.Monitor().Stats()
		for _, s := range c.stats {
			ch <- prometheus.MustNewConstMetric(s.desc, s.kind, s.value(st), m.Name(), id.String())
		}
	}
}
