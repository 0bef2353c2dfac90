// Package record defines the canonical telemetry record structure and helpers
// used across the analyzer pipeline: parsing of raw log lines, state
// classification, and hashing for dedup.
package record

import (
	"github.com/zeebo/xxh3"
)

// Device states recognized by the aggregator. Any other state value carried
// by a record is ignored downstream.
const (
	StateHealthy = "02"
	StateFaulty  = "DD"
)

// Record is one structured telemetry report extracted from a raw log line.
// Records are immutable once parsed and are consumed exactly once by the
// aggregator.
type Record struct {
	SensorID string // reporting device id, uppercased, never empty
	SP1      string // first packed status field
	SP2      string // second packed status field
	State    string // reported device state ("02" healthy, "DD" faulty, other ignored)
}

// IsHealthy reports whether the record carries the healthy state.
func (r Record) IsHealthy() bool {
	return r.State == StateHealthy
}

// IsFaulty reports whether the record carries the faulty state.
func (r Record) IsFaulty() bool {
	return r.State == StateFaulty
}

// Field widths for the fixed-layout hash buffer. Oversized values are
// truncated; identical records always hash identically across platforms.
const (
	hashSensorWidth = 16
	hashStatusWidth = 10
	hashStateWidth  = 4
)

// Hash32 returns a 32-bit hash for deduplication using a fixed-layout,
// zero-allocation buffer covering sensor id, both status fields, and state.
// xxh3 is used for speed; the result is folded to 32 bits for the dedup map.
func (r Record) Hash32() uint32 {
	var buf [hashSensorWidth + 2*hashStatusWidth + hashStateWidth]byte
	off := 0
	off += writeFixedField(buf[off:off+hashSensorWidth], r.SensorID)
	off += writeFixedField(buf[off:off+hashStatusWidth], r.SP1)
	off += writeFixedField(buf[off:off+hashStatusWidth], r.SP2)
	writeFixedField(buf[off:off+hashStateWidth], r.State)
	return uint32(xxh3.Hash(buf[:]))
}

// writeFixedField copies value into dst, truncating or zero-padding to the
// destination width, and returns the width written.
func writeFixedField(dst []byte, value string) int {
	n := 0
	for i := 0; i < len(value) && n < len(dst); i++ {
		dst[n] = value[i]
		n++
	}
	for n < len(dst) {
		dst[n] = 0
		n++
	}
	return len(dst)
}
