// File: h2/stream.go
// Author: momentics <momentics@gmail.com>
//
// Stream is one HTTP/2 stream's accumulated state: header block,
// body bytes, flow-control window, and the idle/open/half-closed/
// closed state machine from spec.md §4.7. New — the teacher has no
// multiplexed-stream concept (a WSConnection is the whole connection);
// built in the style of h2/codec.go's plain value-struct + named
// error-code idiom.

package h2

import "bytes"

// State is one HTTP/2 stream's RFC 7540 lifecycle state, restricted to
// the subset spec.md's table distinguishes.
type State int

const (
	StateIdle State = iota
	StateOpen
	StateHalfClosedLocal
	StateHalfClosedRemote
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpen:
		return "open"
	case StateHalfClosedLocal:
		return "half-closed-local"
	case StateHalfClosedRemote:
		return "half-closed-remote"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stream tracks one HTTP/2 stream's accumulated header/body bytes and
// its lifecycle state. Not safe for concurrent use — a Stream is only
// ever touched by the single goroutine running its connection's frame
// loop (spec.md §7: "frames sent/received on one connection are
// processed/serialised in order").
type Stream struct {
	ID    uint32
	State State

	Headers     []HeaderField
	headerBlock bytes.Buffer // accumulates HEADERS/CONTINUATION fragments
	Body        bytes.Buffer

	SendWindow int32
	RecvWindow int32

	Priority uint32 // optional; recorded from PRIORITY frames, not enforced
}

// NewStream creates a stream in the idle state with the connection's
// negotiated initial window size.
func NewStream(id uint32, initialWindow int32) *Stream {
	return &Stream{ID: id, State: StateIdle, SendWindow: initialWindow, RecvWindow: initialWindow}
}

// AppendHeaderFragment accumulates one HEADERS/CONTINUATION frame's
// payload. Call FinishHeaders once END_HEADERS is observed.
func (s *Stream) AppendHeaderFragment(payload []byte) {
	s.headerBlock.Write(payload)
}

// FinishHeaders decodes the accumulated header block (simplified
// encoding, see hpack_lite.go) and resets the accumulator.
func (s *Stream) FinishHeaders() error {
	fields, err := DecodeHeaderBlock(s.headerBlock.Bytes())
	if err != nil {
		return err
	}
	s.Headers = fields
	s.headerBlock.Reset()
	return nil
}

// AppendData accumulates one DATA frame's payload into the stream body.
func (s *Stream) AppendData(payload []byte) {
	s.Body.Write(payload)
}

// OnEndStreamObserved advances the state machine when END_STREAM is
// seen on a frame received from the peer (the "remote" half closes).
func (s *Stream) OnEndStreamObserved() {
	switch s.State {
	case StateIdle, StateOpen:
		s.State = StateHalfClosedRemote
	case StateHalfClosedLocal:
		s.State = StateClosed
	}
}

// OnEndStreamSent advances the state machine when this side sends
// END_STREAM (the "local" half closes).
func (s *Stream) OnEndStreamSent() {
	switch s.State {
	case StateIdle, StateOpen:
		s.State = StateHalfClosedLocal
	case StateHalfClosedRemote:
		s.State = StateClosed
	}
}

// Reset transitions the stream directly to closed, as RST_STREAM does
// regardless of its prior state.
func (s *Stream) Reset() {
	s.State = StateClosed
}

// Closed reports whether the stream has reached its terminal state and
// is eligible for eviction from the stream table.
func (s *Stream) Closed() bool {
	return s.State == StateClosed
}
