package metrics

import (
	"errors"
	"testing"
)

type recordingSink struct {
	runs      int
	locations int
	err       error
}

func (r *recordingSink) RecordRun(RunEvent) error {
	r.runs++
	return r.err
}

func (r *recordingSink) RecordLocationScored(LocationEvent) error {
	r.locations++
	return r.err
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordRun(RunEvent{RunID: "r1"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordLocationScored(LocationEvent{RunID: "r1", Location: "north"}); err != nil {
		t.Fatalf("record location: %v", err)
	}
	if a.runs != 1 || b.runs != 1 || a.locations != 1 || b.locations != 1 {
		t.Fatalf("events not delivered to all sinks: %+v %+v", a, b)
	}
}

func TestMultiSinkStopsOnFirstError(t *testing.T) {
	fail := &recordingSink{err: errors.New("sink down")}
	after := &recordingSink{}
	m := NewMultiSink(fail, after)

	if err := m.RecordRun(RunEvent{}); err == nil {
		t.Fatalf("expected error")
	}
	if after.runs != 0 {
		t.Fatalf("later sink should not receive the event after a failure")
	}
}
