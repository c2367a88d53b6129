// Package metrics provides in-memory timing statistics for client calls.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Call names for the collector.
const (
	CallExecute  = "graphql_execute"
	CallUpload   = "staged_upload"
	CallDownload = "result_download"
)

// CallMetrics holds aggregated timings for a single call kind.
type CallMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// CallSnapshot provides computed stats from raw metrics.
type CallSnapshot struct {
	Name        string
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Collector aggregates in-memory timing statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	calls     map[string]*CallMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		calls:     make(map[string]*CallMetrics),
	}
}

// RecordTiming records the duration of one call.
func (c *Collector) RecordTiming(call string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.calls[call]
	if !ok {
		m = &CallMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.calls[call] = m
	}

	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Uptime returns the time elapsed since the collector was created.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// Snapshot returns a point-in-time snapshot of all recorded call kinds,
// sorted by name for stable output.
func (c *Collector) Snapshot() []CallSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snaps := make([]CallSnapshot, 0, len(c.calls))
	for name, m := range c.calls {
		if m.Count == 0 {
			continue
		}
		snaps = append(snaps, CallSnapshot{
			Name:        name,
			Count:       m.Count,
			TotalTimeMs: m.TotalTime.Milliseconds(),
			AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
			MinTimeMs:   m.MinTime.Milliseconds(),
			MaxTimeMs:   m.MaxTime.Milliseconds(),
		})
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
	return snaps
}
