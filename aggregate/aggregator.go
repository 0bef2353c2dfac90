// Package aggregate folds parsed telemetry records into per-device
// classification state and materializes the final summary.
package aggregate

import (
	"sync"

	"sensormon/fault"
	"sensormon/record"
)

// Aggregator consumes records one at a time in stream order and tracks one
// tagged state per sensor id. A device is either healthy (accumulating
// occurrence counts) or faulty (reason frozen by the first "DD" record);
// faulty is sticky and wins retroactively over earlier healthy reports, so
// the invariant is enforced on write and no end-of-stream sweep is needed.
//
// Add never fails: records with unrecognized states have no effect at all,
// not even device-state creation.
//
// The mutex exists for follow mode, where the dashboard snapshots state while
// the single fold goroutine keeps writing. There is always exactly one writer.
type Aggregator struct {
	mu      sync.Mutex
	devices map[string]*deviceState
	order   []string // sensor ids in first-classified-record order
}

// deviceState is the per-sensor tagged variant.
type deviceState struct {
	faulty  bool
	reason  fault.Reason
	healthy int // healthy occurrences; meaningful only while !faulty
	seen    int // all classified records observed, kept for diagnostics
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{devices: make(map[string]*deviceState)}
}

// Add folds one record into the per-device state.
func (a *Aggregator) Add(r record.Record) {
	switch r.State {
	case record.StateFaulty:
		a.mu.Lock()
		st := a.ensureLocked(r.SensorID)
		st.seen++
		if !st.faulty {
			st.faulty = true
			st.reason = fault.Decode(r.SP1, r.SP2)
			st.healthy = 0
		}
		a.mu.Unlock()
	case record.StateHealthy:
		a.mu.Lock()
		st := a.ensureLocked(r.SensorID)
		st.seen++
		if !st.faulty {
			st.healthy++
		}
		a.mu.Unlock()
	}
}

func (a *Aggregator) ensureLocked(id string) *deviceState {
	st, ok := a.devices[id]
	if !ok {
		st = &deviceState{}
		a.devices[id] = st
		a.order = append(a.order, id)
	}
	return st
}

// SensorFault pairs a faulty sensor id with its decoded reason.
type SensorFault struct {
	SensorID string       `json:"sensor_id"`
	Reason   fault.Reason `json:"reason"`
}

// SensorHealth pairs a healthy sensor id with its occurrence count.
type SensorHealth struct {
	SensorID string `json:"sensor_id"`
	Count    int    `json:"count"`
}

// Summary is the terminal result of an aggregation run. Faulty and Healthy
// never share a sensor id, both are ordered by first appearance in the
// stream, and TotalDevices always equals len(Faulty)+len(Healthy).
type Summary struct {
	TotalDevices int            `json:"total_devices"`
	HealthyCount int            `json:"healthy_count"`
	FaultyCount  int            `json:"faulty_count"`
	Faulty       []SensorFault  `json:"faulty_devices"`
	Healthy      []SensorHealth `json:"healthy_devices"`
}

// Summarize materializes the current state into an immutable Summary. It can
// be called repeatedly; in file mode it runs once at end-of-stream, in follow
// mode the dashboard calls it on every refresh tick.
func (a *Aggregator) Summarize() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	var s Summary
	for _, id := range a.order {
		st := a.devices[id]
		if st.faulty {
			s.Faulty = append(s.Faulty, SensorFault{SensorID: id, Reason: st.reason})
		} else {
			s.Healthy = append(s.Healthy, SensorHealth{SensorID: id, Count: st.healthy})
		}
	}
	s.FaultyCount = len(s.Faulty)
	s.HealthyCount = len(s.Healthy)
	s.TotalDevices = s.FaultyCount + s.HealthyCount
	return s
}

// FaultReason looks up the decoded reason for a faulty sensor id.
func (s Summary) FaultReason(id string) (fault.Reason, bool) {
	for _, f := range s.Faulty {
		if f.SensorID == id {
			return f.Reason, true
		}
	}
	return "", false
}

// HealthyOccurrences looks up the occurrence count for a healthy sensor id.
func (s Summary) HealthyOccurrences(id string) (int, bool) {
	for _, h := range s.Healthy {
		if h.SensorID == id {
			return h.Count, true
		}
	}
	return 0, false
}
