// Package metrics keeps in-process timing counters for the hot paths of the
// viewer: dataset load, store indexing, ring computation and rendering.
//
// Counters are lock-free and can be disabled with PANTHEON_METRICS=0.
//
//	defer metrics.Timer(metrics.RingCompute)()
package metrics

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("PANTHEON_METRICS") != "0")
}

// Enabled reports whether samples are being recorded.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns recording on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations for one named operation.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	min   atomic.Int64 // 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for old := m.max.Load(); ns > old; old = m.max.Load() {
		if m.max.CompareAndSwap(old, ns) {
			break
		}
	}
	for old := m.min.Load(); old == 0 || ns < old; old = m.min.Load() {
		if m.min.CompareAndSwap(old, ns) {
			break
		}
	}
}

func (m *TimingMetric) Name() string { return m.name }

func (m *TimingMetric) Count() int64 { return m.count.Load() }

// MinNs is 0 when nothing was recorded.
func (m *TimingMetric) MinNs() int64 { return m.min.Load() }

// Stats snapshots the counters. Fields are read one by one, so a concurrent
// Record may be half visible.
func (m *TimingMetric) Stats() TimingStats {
	n := m.count.Load()
	total := m.total.Load()
	s := TimingStats{
		Name:    m.name,
		Count:   n,
		TotalMs: nsToMs(total),
		MaxMs:   nsToMs(m.max.Load()),
		MinMs:   nsToMs(m.min.Load()),
	}
	if n > 0 {
		s.AvgMs = nsToMs(total / n)
	}
	return s
}

func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

func nsToMs(ns int64) float64 { return float64(ns) / 1e6 }

// TimingStats is a point-in-time copy of a TimingMetric.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts a measurement and returns the func that ends it.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

var (
	DatasetLoad     = newTimingMetric("dataset_load")
	JSONParsing     = newTimingMetric("json_parsing")
	SQLiteRead      = newTimingMetric("sqlite_read")
	StoreBuild      = newTimingMetric("store_build")
	RingCompute     = newTimingMetric("ring_compute")
	Reconcile       = newTimingMetric("reconcile")
	UIRender        = newTimingMetric("ui_render")
	LineageAnalysis = newTimingMetric("lineage_analysis")
	SearchQuery     = newTimingMetric("search_query")
	SnapshotRender  = newTimingMetric("snapshot_render")

	all = []*TimingMetric{
		DatasetLoad, JSONParsing, SQLiteRead, StoreBuild, RingCompute,
		Reconcile, UIRender, LineageAnalysis, SearchQuery, SnapshotRender,
	}
)

// ResetAll clears every registered metric.
func ResetAll() {
	for _, m := range all {
		m.Reset()
	}
}

// AllTimingStats returns stats for metrics that have at least one sample.
func AllTimingStats() []TimingStats {
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}

// Summary formats the recorded stats, slowest total first, one per line.
func Summary() string {
	stats := AllTimingStats()
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].TotalMs > stats[j].TotalMs })

	var sb strings.Builder
	for _, s := range stats {
		fmt.Fprintf(&sb, "%-18s n=%-5d avg=%.3fms max=%.3fms\n", s.Name, s.Count, s.AvgMs, s.MaxMs)
	}
	return sb.String()
}
