// Package stats tracks ingest counters for periodic console output and the
// live dashboard.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sensormon/strutil"
)

// Tracker counts lines and records as they move through the pipeline.
// Counters live in atomics plus a sync.Map so per-line increments never fight
// over a mutex.
type Tracker struct {
	start       atomic.Int64
	parsed      atomic.Uint64
	rejected    atomic.Uint64
	duplicates  atomic.Uint64
	stateCounts sync.Map // state string -> *atomic.Uint64
}

// NewTracker creates a tracker with the clock started.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.start.Store(time.Now().UnixNano())
	return t
}

// IncrementParsed counts a line that parsed into a record.
func (t *Tracker) IncrementParsed() {
	t.parsed.Add(1)
}

// IncrementRejected counts a line the parser dropped.
func (t *Tracker) IncrementRejected() {
	t.rejected.Add(1)
}

// IncrementDuplicate counts a record suppressed by the dedup window.
func (t *Tracker) IncrementDuplicate() {
	t.duplicates.Add(1)
}

// IncrementState counts a record by its raw state value.
func (t *Tracker) IncrementState(state string) {
	state = strutil.NormalizeUpper(state)
	if state == "" {
		state = "EMPTY"
	}
	counter, _ := t.stateCounts.LoadOrStore(state, &atomic.Uint64{})
	counter.(*atomic.Uint64).Add(1)
}

// Parsed returns the number of successfully parsed lines.
func (t *Tracker) Parsed() uint64 {
	return t.parsed.Load()
}

// Rejected returns the number of dropped lines.
func (t *Tracker) Rejected() uint64 {
	return t.rejected.Load()
}

// Duplicates returns the number of suppressed duplicate records.
func (t *Tracker) Duplicates() uint64 {
	return t.duplicates.Load()
}

// Total returns all lines observed, parsed or not.
func (t *Tracker) Total() uint64 {
	return t.parsed.Load() + t.rejected.Load()
}

// StateCounts returns a copy of the per-state record counts.
func (t *Tracker) StateCounts() map[string]uint64 {
	counts := make(map[string]uint64)
	t.stateCounts.Range(func(key, value any) bool {
		counts[key.(string)] = value.(*atomic.Uint64).Load()
		return true
	})
	return counts
}

// Uptime returns how long the tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(time.Unix(0, t.start.Load()))
}

// SnapshotLines returns human-readable counters ready for console display.
func (t *Tracker) SnapshotLines() []string {
	lines := make([]string, 0, 2)
	lines = append(lines, fmt.Sprintf("Ingest: %d lines (%d parsed, %d rejected, %d duplicates) uptime %s",
		t.Total(), t.Parsed(), t.Rejected(), t.Duplicates(), t.Uptime().Round(time.Second)))

	counts := t.StateCounts()
	if len(counts) == 0 {
		return lines
	}
	parts := make([]string, 0, len(counts))
	for _, state := range sortedKeys(counts) {
		parts = append(parts, fmt.Sprintf("%s=%d", state, counts[state]))
	}
	lines = append(lines, "States: "+strings.Join(parts, " "))
	return lines
}

func sortedKeys(counts map[string]uint64) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
