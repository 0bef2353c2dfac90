package record

import "testing"

func TestHash32IdenticalRecords(t *testing.T) {
	a := Record{SensorID: "AB", SP1: "12", SP2: "03", State: "02"}
	b := Record{SensorID: "AB", SP1: "12", SP2: "03", State: "02"}
	if a.Hash32() != b.Hash32() {
		t.Fatalf("identical records must hash identically")
	}
}

func TestHash32DistinguishesFields(t *testing.T) {
	base := Record{SensorID: "AB", SP1: "12", SP2: "03", State: "02"}
	variants := []Record{
		{SensorID: "AC", SP1: "12", SP2: "03", State: "02"},
		{SensorID: "AB", SP1: "13", SP2: "03", State: "02"},
		{SensorID: "AB", SP1: "12", SP2: "04", State: "02"},
		{SensorID: "AB", SP1: "12", SP2: "03", State: "DD"},
	}
	for _, v := range variants {
		if v.Hash32() == base.Hash32() {
			t.Fatalf("expected %+v to hash differently from base", v)
		}
	}
}

func TestStateClassification(t *testing.T) {
	if !(Record{State: StateFaulty}).IsFaulty() {
		t.Fatalf("DD must classify as faulty")
	}
	if !(Record{State: StateHealthy}).IsHealthy() {
		t.Fatalf("02 must classify as healthy")
	}
	other := Record{State: "ZZ"}
	if other.IsHealthy() || other.IsFaulty() {
		t.Fatalf("unrecognized states must classify as neither healthy nor faulty")
	}
}
