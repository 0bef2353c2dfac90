package ui

import (
	"io"
	"strings"
	"testing"

	"sensormon/aggregate"
	"sensormon/fault"
	"sensormon/record"
)

func TestNilDashboardMethodsAreSafe(t *testing.T) {
	var d *Dashboard
	d.WaitReady()
	d.SetStats([]string{"a"})
	d.SetSummary(aggregate.Summary{})
	d.SetRecent([]record.Record{{SensorID: "A1"}})
	d.Stop()
	if d.SystemWriter() != io.Discard {
		t.Fatalf("nil dashboard must hand out io.Discard")
	}
}

func TestNewDashboardDisabledReturnsNil(t *testing.T) {
	if d := NewDashboard(false, nil); d != nil {
		t.Fatalf("disabled dashboard must be nil, got %v", d)
	}
}

func TestHeaderLine(t *testing.T) {
	got := headerLine(aggregate.Summary{TotalDevices: 3, HealthyCount: 2, FaultyCount: 1})
	if got != "devices 3   healthy 2   faulty 1" {
		t.Fatalf("unexpected header line: %q", got)
	}
}

func TestFaultyLines(t *testing.T) {
	got := faultyLines([]aggregate.SensorFault{
		{SensorID: "X9", Reason: fault.Battery},
		{SensorID: "Y1", Reason: fault.Threshold},
	})
	want := "X9: Battery device error\nY1: Threshold central error\n"
	if got != want {
		t.Fatalf("faultyLines = %q, want %q", got, want)
	}
}

func TestHealthyLinesSortDescendingStable(t *testing.T) {
	in := []aggregate.SensorHealth{
		{SensorID: "A1", Count: 2},
		{SensorID: "B2", Count: 5},
		{SensorID: "C3", Count: 2},
	}
	got := healthyLines(in)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	want := []string{"B2: 5", "A1: 2", "C3: 2"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if in[0].SensorID != "A1" {
		t.Fatalf("healthyLines must sort a copy, input order changed: %+v", in)
	}
}

func TestRecentLines(t *testing.T) {
	got := recentLines([]record.Record{
		{SensorID: "A1", State: "02", SP1: "12", SP2: "03"},
		{SensorID: "X9", State: "DD", SP1: "99", SP2: "-50"},
	})
	want := "A1 02 sp1=12 sp2=03\nX9 DD sp1=99 sp2=-50\n"
	if got != want {
		t.Fatalf("recentLines = %q, want %q", got, want)
	}
}
