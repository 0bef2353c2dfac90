// Package buffer provides a lock-free ring buffer holding the most recent
// parsed records for dashboard snapshots. Each slot stores an atomic pointer
// so readers either see a complete record or the previous one, never a
// partially written structure.
package buffer

import (
	"sync/atomic"

	"sensormon/record"
)

type slot struct {
	seq uint64
	rec record.Record
}

// RingBuffer is a thread-safe circular buffer of recent records. Writers
// atomically publish completed entries and readers walk backwards from the
// newest sequence number to gather a snapshot, so no mutex is needed.
type RingBuffer struct {
	slots    []atomic.Pointer[slot]
	capacity int
	total    atomic.Uint64 // Total records added (may exceed capacity)
}

// NewRingBuffer allocates a ring buffer with the specified capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{
		slots:    make([]atomic.Pointer[slot], capacity),
		capacity: capacity,
	}
}

// Add appends a record to the ring, assigning a monotonic sequence number so
// readers can skip over stale entries when the buffer wraps.
func (rb *RingBuffer) Add(rec record.Record) {
	if rb == nil {
		return
	}
	seq := rb.total.Add(1)
	idx := (seq - 1) % uint64(rb.capacity)
	rb.slots[idx].Store(&slot{seq: seq, rec: rec})
}

// Recent returns up to n of the most recent records, newest first.
func (rb *RingBuffer) Recent(n int) []record.Record {
	if rb == nil || n <= 0 {
		return nil
	}
	total := rb.total.Load()
	available := int(total)
	if available > rb.capacity {
		available = rb.capacity
	}
	if n > available {
		n = available
	}

	result := make([]record.Record, 0, n)
	if total == 0 {
		return result
	}
	minSeq := total - uint64(available)
	for seq := total; seq > minSeq && len(result) < n; {
		seq--
		idx := seq % uint64(rb.capacity)
		// The sequence check skips slots overwritten after wraparound.
		if s := rb.slots[idx].Load(); s != nil && s.seq == seq+1 {
			result = append(result, s.rec)
		}
	}
	return result
}

// Count returns the total number of records added (may be > capacity).
func (rb *RingBuffer) Count() int {
	if rb == nil {
		return 0
	}
	return int(rb.total.Load())
}
