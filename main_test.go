package main

import (
	"strings"
	"testing"
	"time"

	"sensormon/aggregate"
	"sensormon/dedup"
	"sensormon/stats"
)

func testLine(sensor, sp1, sp2, state string) string {
	fields := make([]string, 18)
	for i := range fields {
		fields[i] = "x"
	}
	fields[0] = "BIG"
	fields[2] = sensor
	fields[6] = sp1
	fields[15] = sp2
	fields[16] = state
	fields[17] = "tail"
	return "2026-03-01 12:00:00 handler> '" + strings.Join(fields, ";") + "'"
}

func newTestPipeline(window time.Duration) *pipeline {
	p := &pipeline{
		tracker: stats.NewTracker(),
		agg:     aggregate.New(),
	}
	if window > 0 {
		p.dedup = dedup.New(window)
	}
	return p
}

func TestPipelineCountsRejectedLines(t *testing.T) {
	p := newTestPipeline(0)
	p.handleLine("not a telemetry line")
	p.handleLine("")
	if got := p.tracker.Rejected(); got != 2 {
		t.Fatalf("expected 2 rejected lines, got %d", got)
	}
	if got := p.tracker.Parsed(); got != 0 {
		t.Fatalf("expected 0 parsed lines, got %d", got)
	}
	if s := p.agg.Summarize(); s.TotalDevices != 0 {
		t.Fatalf("rejected lines must not create devices: %+v", s)
	}
}

func TestPipelineAggregatesParsedLines(t *testing.T) {
	p := newTestPipeline(0)
	p.handleLine(testLine("A1", "12", "03", "02"))
	p.handleLine(testLine("A1", "12", "03", "02"))
	p.handleLine(testLine("X9", "99", "-50", "DD"))

	if got := p.tracker.Parsed(); got != 3 {
		t.Fatalf("expected 3 parsed lines, got %d", got)
	}
	s := p.agg.Summarize()
	if s.TotalDevices != 2 || s.HealthyCount != 1 || s.FaultyCount != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if n, ok := s.HealthyOccurrences("A1"); !ok || n != 2 {
		t.Fatalf("expected A1 to have 2 healthy reports, got %d (ok=%v)", n, ok)
	}
}

func TestPipelineSuppressesDuplicates(t *testing.T) {
	p := newTestPipeline(time.Minute)
	line := testLine("A1", "12", "03", "02")
	p.handleLine(line)
	p.handleLine(line)

	if got := p.tracker.Duplicates(); got != 1 {
		t.Fatalf("expected 1 duplicate, got %d", got)
	}
	s := p.agg.Summarize()
	if n, ok := s.HealthyOccurrences("A1"); !ok || n != 1 {
		t.Fatalf("duplicate must not be aggregated, got count %d (ok=%v)", n, ok)
	}
}

func TestPipelineStateCountsIncludeDuplicates(t *testing.T) {
	p := newTestPipeline(time.Minute)
	line := testLine("A1", "12", "03", "02")
	p.handleLine(line)
	p.handleLine(line)

	counts := p.tracker.StateCounts()
	if counts["02"] != 2 {
		t.Fatalf("expected state count 2 for 02, got %v", counts)
	}
}
