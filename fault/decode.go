// Package fault decodes the packed status fields carried by faulty telemetry
// reports into a human-readable fault reason.
package fault

import (
	"strconv"
	"strings"
)

// Reason names the dominant fault of a device. Only one reason is ever
// surfaced even when the encoding carries several simultaneous flags.
type Reason string

const (
	Battery     Reason = "Battery device error"
	Temperature Reason = "Temperature device error"
	Threshold   Reason = "Threshold central error"
	Unknown     Reason = "Unknown device error"
)

const (
	packedLen = 6
	// flagMask selects bit index 4 counted from the most significant bit of
	// the 8-bit pair value.
	flagMask = 0x08
)

// Decoding priority is fixed: a Battery flag always outranks Temperature and
// Threshold flags regardless of their values.
var byPriority = [...]Reason{Battery, Temperature, Threshold}

// Decode names the dominant fault encoded in the two packed status fields.
//
// The final character of sp1 is a checksum and is discarded unconditionally;
// leading '-' characters on sp2 are stripped. The surviving digits are
// concatenated, zero-padded on the left to 6 characters, truncated to exactly
// 6, and split into three consecutive decimal pairs. The first pair (in
// priority order) whose flag bit is set decides the reason.
//
// Decode is a pure function and never fails: empty inputs, non-numeric pairs,
// and out-of-range values all yield Unknown.
func Decode(sp1, sp2 string) Reason {
	if sp1 == "" || sp2 == "" {
		return Unknown
	}
	combined := sp1[:len(sp1)-1] + strings.TrimLeft(sp2, "-")
	if len(combined) < packedLen {
		combined = strings.Repeat("0", packedLen-len(combined)) + combined
	}
	combined = combined[:packedLen]

	// All three pairs must be valid 8-bit decimal values before any flag is
	// honored; a single malformed pair invalidates the whole decode.
	var values [len(byPriority)]int
	for i := range values {
		pair := combined[2*i : 2*i+2]
		value, err := strconv.Atoi(pair)
		if err != nil || value < 0 || value > 255 {
			return Unknown
		}
		values[i] = value
	}
	for i, reason := range byPriority {
		if values[i]&flagMask != 0 {
			return reason
		}
	}
	return Unknown
}
