package h2

import "testing"

func TestStreamTableCreateAndGet(t *testing.T) {
	tbl := NewStreamTable(4)
	s, ok := tbl.CreateOrRefused(1, 1048576)
	if !ok {
		t.Fatal("expected creation to succeed")
	}
	if tbl.Get(1) != s {
		t.Fatal("Get did not return the created stream")
	}
	if tbl.Active() != 1 {
		t.Fatalf("expected 1 active stream, got %d", tbl.Active())
	}
}

func TestStreamTableRefusesOverCapacity(t *testing.T) {
	tbl := NewStreamTable(1)
	if _, ok := tbl.CreateOrRefused(1, 0); !ok {
		t.Fatal("expected first create to succeed")
	}
	if _, ok := tbl.CreateOrRefused(3, 0); ok {
		t.Fatal("expected second create to be refused at capacity 1")
	}
}

func TestStreamTableSweepEvictsClosedStreams(t *testing.T) {
	tbl := NewStreamTable(16)
	s1, _ := tbl.CreateOrRefused(1, 0)
	_, _ = tbl.CreateOrRefused(3, 0)
	s1.Reset()

	evicted := tbl.Sweep()
	if evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if tbl.Get(1) != nil {
		t.Fatal("expected stream 1 evicted")
	}
	if tbl.Active() != 1 {
		t.Fatalf("expected 1 remaining active stream, got %d", tbl.Active())
	}
}

func TestStreamIndexingByIDShiftedRight(t *testing.T) {
	tbl := NewStreamTable(16)
	tbl.CreateOrRefused(5, 0)
	if tbl.slot(5) != 2 {
		t.Fatalf("expected slot 2 for id 5, got %d", tbl.slot(5))
	}
}

func TestStreamStateMachineHalfCloseThenClose(t *testing.T) {
	s := NewStream(1, 1048576)
	if s.State != StateIdle {
		t.Fatalf("expected idle initial state, got %v", s.State)
	}
	s.State = StateOpen
	s.OnEndStreamObserved()
	if s.State != StateHalfClosedRemote {
		t.Fatalf("expected half-closed-remote, got %v", s.State)
	}
	s.OnEndStreamSent()
	if s.State != StateClosed {
		t.Fatalf("expected closed, got %v", s.State)
	}
	if !s.Closed() {
		t.Fatal("expected Closed() true")
	}
}
