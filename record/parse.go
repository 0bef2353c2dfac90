package record

import (
	"strings"

	"sensormon/strutil"
)

// Wire layout of a telemetry line: the payload follows the first "> " marker,
// is optionally wrapped in one layer of quotes, and splits on ";" into at
// least 18 fields. Field 0 is the handler tag; the state is always the
// second-to-last field regardless of total field count.
const (
	lineMarker   = "> "
	handlerTag   = "BIG"
	minFields    = 18
	handlerField = 0
	sensorField  = 2
	sp1Field     = 6
	sp2Field     = 15
)

// ParseLine extracts a structured Record from one raw log line. The second
// return value is false when the line does not carry a usable telemetry
// report: no "> " marker, fewer than 18 semicolon-separated fields, a handler
// tag other than "BIG", or an empty sensor id. Parsing is total over all
// string inputs and never fails loudly; rejected lines are simply dropped by
// callers.
func ParseLine(line string) (Record, bool) {
	idx := strings.Index(line, lineMarker)
	if idx < 0 {
		return Record{}, false
	}
	payload := trimQuoteLayer(strings.TrimSpace(line[idx+len(lineMarker):]))
	fields := strings.Split(payload, ";")
	if len(fields) < minFields {
		return Record{}, false
	}
	if strings.TrimSpace(fields[handlerField]) != handlerTag {
		return Record{}, false
	}
	sensorID := strutil.NormalizeUpper(fields[sensorField])
	if sensorID == "" {
		return Record{}, false
	}
	return Record{
		SensorID: sensorID,
		SP1:      strings.TrimSpace(fields[sp1Field]),
		SP2:      strings.TrimSpace(fields[sp2Field]),
		State:    strings.TrimSpace(fields[len(fields)-2]),
	}, true
}

// trimQuoteLayer removes a single layer of enclosing quote characters, each
// side independently, so unbalanced quoting still parses.
func trimQuoteLayer(s string) string {
	if len(s) > 0 && (s[0] == '\'' || s[0] == '"') {
		s = s[1:]
	}
	if len(s) > 0 && (s[len(s)-1] == '\'' || s[len(s)-1] == '"') {
		s = s[:len(s)-1]
	}
	return s
}
