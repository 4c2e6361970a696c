package pool

import (
	"bytes"
	"testing"
)

func TestCursorBufferAppendAndConsume(t *testing.T) {
	mgr := NewManager()
	cb := NewCursorBuffer(mgr, 64, -1)
	defer cb.Release()

	n := copy(cb.Free(), []byte("GET / HTTP/1.1\r\n"))
	cb.Advance(n)

	if !bytes.Equal(cb.Unread(), []byte("GET / HTTP/1.1\r\n")) {
		t.Fatalf("unexpected unread bytes: %q", cb.Unread())
	}

	cb.Consume(4) // consume "GET "
	if !bytes.Equal(cb.Unread(), []byte("/ HTTP/1.1\r\n")) {
		t.Fatalf("unexpected unread bytes after consume: %q", cb.Unread())
	}
}

func TestCursorBufferCompactReclaimsSpace(t *testing.T) {
	mgr := NewManager()
	cb := NewCursorBuffer(mgr, 16, -1)
	defer cb.Release()

	cb.Advance(copy(cb.Free(), []byte("0123456789")))
	cb.Consume(8)
	before := len(cb.Free())
	cb.Compact()
	after := len(cb.Free())
	if after <= before {
		t.Fatalf("expected compact to grow free space: before=%d after=%d", before, after)
	}
	if !bytes.Equal(cb.Unread(), []byte("89")) {
		t.Fatalf("compact corrupted unread bytes: %q", cb.Unread())
	}
}

func TestCursorBufferConsumePastWriteCursorPanics(t *testing.T) {
	mgr := NewManager()
	cb := NewCursorBuffer(mgr, 16, -1)
	defer cb.Release()
	cb.Advance(copy(cb.Free(), []byte("ab")))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic consuming past write cursor")
		}
	}()
	cb.Consume(10)
}

func TestCursorBufferForwardAllResetsCursors(t *testing.T) {
	mgr := NewManager()
	cb := NewCursorBuffer(mgr, 16, -1)
	defer cb.Release()
	cb.Advance(copy(cb.Free(), []byte("abcdef")))
	cb.Consume(6)
	cb.ForwardAll()
	if len(cb.Unread()) != 0 {
		t.Fatalf("expected empty unread after ForwardAll, got %q", cb.Unread())
	}
	if len(cb.Free()) != cb.Cap() {
		t.Fatalf("expected full capacity free after ForwardAll")
	}
}
