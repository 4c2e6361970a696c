package h2

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/kestrelgw/kestrel/gwlog"
)

// clientWriteFrame is a minimal test-side frame writer independent of
// Conn's internals, so the test exercises the wire format rather than
// reusing the code under test.
func clientWriteFrame(w io.Writer, hdr FrameHeader, payload []byte) error {
	hdr.Length = uint32(len(payload))
	buf := make([]byte, 9)
	if _, err := EncodeFrameHeader(buf, hdr); err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func clientReadFrame(r io.Reader) (FrameHeader, []byte, error) {
	hdr, err := DecodeFrameHeader(r, 0)
	if err != nil {
		return FrameHeader{}, nil, err
	}
	payload := make([]byte, hdr.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return FrameHeader{}, nil, err
	}
	return hdr, payload, nil
}

func TestConnRespondsToGetRequest(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	handler := func(headers []HeaderField, body []byte) ([]HeaderField, []byte, error) {
		return []HeaderField{{Name: ":status", Value: "200"}}, []byte("hello"), nil
	}
	conn := NewConn(serverSide, handler, gwlog.Nop())

	done := make(chan error, 1)
	go func() { done <- conn.Serve() }()

	// Drain the server's initial SETTINGS frame.
	hdr, _, err := clientReadFrame(clientSide)
	if err != nil || hdr.Type != FrameSettings {
		t.Fatalf("expected initial SETTINGS frame, got %+v err=%v", hdr, err)
	}

	// Client sends its own SETTINGS (server must ACK).
	if err := clientWriteFrame(clientSide, FrameHeader{Type: FrameSettings}, nil); err != nil {
		t.Fatalf("write client SETTINGS: %v", err)
	}
	hdr, _, err = clientReadFrame(clientSide)
	if err != nil || hdr.Type != FrameSettings || !hdr.HasFlag(FlagAck) {
		t.Fatalf("expected SETTINGS ACK, got %+v err=%v", hdr, err)
	}

	// Client sends a HEADERS frame with END_STREAM | END_HEADERS.
	block := EncodeHeaderBlock([]HeaderField{{Name: ":method", Value: "GET"}, {Name: ":path", Value: "/"}})
	if err := clientWriteFrame(clientSide, FrameHeader{Type: FrameHeaders, Flags: FlagEndHeaders | FlagEndStream, StreamID: 1}, block); err != nil {
		t.Fatalf("write HEADERS: %v", err)
	}

	hdr, payload, err := clientReadFrame(clientSide)
	if err != nil {
		t.Fatalf("read response HEADERS: %v", err)
	}
	if hdr.Type != FrameHeaders || hdr.StreamID != 1 {
		t.Fatalf("expected HEADERS on stream 1, got %+v", hdr)
	}
	fields, err := DecodeHeaderBlock(payload)
	if err != nil {
		t.Fatalf("decode response headers: %v", err)
	}
	if v, ok := Get(fields, ":status"); !ok || v != "200" {
		t.Fatalf("expected :status 200, got %q ok=%v", v, ok)
	}

	hdr, payload, err = clientReadFrame(clientSide)
	if err != nil {
		t.Fatalf("read response DATA: %v", err)
	}
	if hdr.Type != FrameData || string(payload) != "hello" || !hdr.HasFlag(FlagEndStream) {
		t.Fatalf("unexpected DATA frame: %+v %q", hdr, payload)
	}

	clientSide.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after client close")
	}
}

func TestConnRefusesStreamOverCapacity(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	handler := func(headers []HeaderField, body []byte) ([]HeaderField, []byte, error) {
		return []HeaderField{{Name: ":status", Value: "200"}}, nil, nil
	}
	conn := NewConn(serverSide, handler, gwlog.Nop())
	conn.streams = NewStreamTable(0) // force every stream to be refused

	go conn.Serve()

	if _, _, err := clientReadFrame(clientSide); err != nil {
		t.Fatalf("expected initial SETTINGS: %v", err)
	}

	block := EncodeHeaderBlock([]HeaderField{{Name: ":method", Value: "GET"}})
	clientWriteFrame(clientSide, FrameHeader{Type: FrameHeaders, Flags: FlagEndHeaders | FlagEndStream, StreamID: 1}, block)

	hdr, payload, err := clientReadFrame(clientSide)
	if err != nil {
		t.Fatalf("expected RST_STREAM response: %v", err)
	}
	if hdr.Type != FrameRSTStream {
		t.Fatalf("expected RST_STREAM, got %v", hdr.Type)
	}
	code := ErrorCode(uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3]))
	if code != ErrRefusedStream {
		t.Fatalf("expected REFUSED_STREAM, got %v", code)
	}
}
