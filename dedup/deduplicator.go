// Package dedup implements a shard-locked duplicate cache that suppresses
// identical telemetry records within a configurable time window. The check is
// synchronous so the fold stays a strictly sequential single pass; sharding
// only keeps map contention bounded when a dashboard sweep runs alongside.
package dedup

import (
	"sync"
	"sync/atomic"
	"time"

	"sensormon/record"
)

// shardCount must remain a power of two so shard selection is a bit mask.
const shardCount = 64

// Deduplicator suppresses records whose Hash32 was already seen inside the
// window. A zero or negative window disables suppression entirely while
// keeping the pipeline topology intact.
type Deduplicator struct {
	window time.Duration
	shards []shard

	processed  atomic.Uint64
	duplicates atomic.Uint64
}

type shard struct {
	mu    sync.Mutex
	cache map[uint32]time.Time
}

// New creates a deduplicator with the given suppression window.
func New(window time.Duration) *Deduplicator {
	shards := make([]shard, shardCount)
	for i := range shards {
		shards[i].cache = make(map[uint32]time.Time)
	}
	return &Deduplicator{window: window, shards: shards}
}

// IsDuplicate reports whether an identical record was already observed within
// the window, recording the sighting either way. Nil receivers and disabled
// windows always pass records through.
func (d *Deduplicator) IsDuplicate(r record.Record, now time.Time) bool {
	if d == nil || d.window <= 0 {
		return false
	}
	d.processed.Add(1)
	h := r.Hash32()
	sh := &d.shards[h&(shardCount-1)]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if last, ok := sh.cache[h]; ok && now.Sub(last) < d.window {
		d.duplicates.Add(1)
		return true
	}
	sh.cache[h] = now
	return false
}

// Sweep drops cache entries older than the window. Callers invoke it from a
// ticker in follow mode; file-mode runs are short enough to skip it.
func (d *Deduplicator) Sweep(now time.Time) {
	if d == nil || d.window <= 0 {
		return
	}
	for i := range d.shards {
		sh := &d.shards[i]
		sh.mu.Lock()
		for h, last := range sh.cache {
			if now.Sub(last) >= d.window {
				delete(sh.cache, h)
			}
		}
		sh.mu.Unlock()
	}
}

// Stats returns how many records were checked and how many were suppressed.
func (d *Deduplicator) Stats() (processed, duplicates uint64) {
	if d == nil {
		return 0, 0
	}
	return d.processed.Load(), d.duplicates.Load()
}
