// File: h2/streamtable.go
// Author: momentics <momentics@gmail.com>
//
// StreamTable is a dense-slice map from stream id to *Stream, indexed
// by id>>1 since client-initiated stream ids are always odd (spec.md
// §3's "Stream table" data-model note and §9's design note both call
// this out explicitly as preferable to a hash map). Bounded by
// max_concurrent_streams; periodically swept to evict closed streams.
//
// New — the teacher has no multi-stream concept to ground this on;
// built in the connection-owns-its-state idiom the rest of h2/ uses.

package h2

// StreamTable holds the live streams of one HTTP/2 connection. Like
// Stream, it is only ever touched by that connection's single frame
// loop goroutine.
type StreamTable struct {
	slots   []*Stream // indexed by id>>1
	active  int
	maxConc int
}

// NewStreamTable creates an empty table bounded by maxConcurrentStreams.
func NewStreamTable(maxConcurrentStreams int) *StreamTable {
	return &StreamTable{maxConc: maxConcurrentStreams}
}

func (t *StreamTable) slot(id uint32) int {
	return int(id >> 1)
}

// Get returns the stream for id, or nil if absent.
func (t *StreamTable) Get(id uint32) *Stream {
	idx := t.slot(id)
	if idx < 0 || idx >= len(t.slots) {
		return nil
	}
	return t.slots[idx]
}

// CreateOrRefused creates a new Stream for id if the table has
// capacity, growing the slice as needed. Returns (nil, false) if the
// table is already at max_concurrent_streams — the caller must send
// RST_STREAM REFUSED_STREAM.
func (t *StreamTable) CreateOrRefused(id uint32, initialWindow int32) (*Stream, bool) {
	if t.active >= t.maxConc {
		return nil, false
	}
	idx := t.slot(id)
	for idx >= len(t.slots) {
		t.slots = append(t.slots, nil)
	}
	s := NewStream(id, initialWindow)
	t.slots[idx] = s
	t.active++
	return s, true
}

// Active returns the current number of non-evicted streams.
func (t *StreamTable) Active() int {
	return t.active
}

// Sweep evicts every stream in the Closed state, reclaiming its slot.
// Called every ten dispatched frames per spec.md §4.6.
func (t *StreamTable) Sweep() int {
	evicted := 0
	for i, s := range t.slots {
		if s != nil && s.Closed() {
			t.slots[i] = nil
			t.active--
			evicted++
		}
	}
	return evicted
}
