package upstream

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/kestrelgw/kestrel/h2"
)

func TestPoolForwardRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go fakeUpstreamServer(t, ln)

	p := NewPool(nil, nil, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	headers, body, err := p.Forward(ctx, "http://"+ln.Addr().String(), []h2.HeaderField{{Name: ":method", Value: "GET"}}, nil)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if v, _ := h2.Get(headers, ":status"); v != "200" {
		t.Fatalf("expected 200, got %q", v)
	}
	if string(body) != "pong" {
		t.Fatalf("unexpected body %q", body)
	}
	if p.Len() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", p.Len())
	}
}

func TestPoolForwardFailureYields502(t *testing.T) {
	p := NewPool(&net.Dialer{Timeout: 50 * time.Millisecond}, nil, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	headers, _, err := p.Forward(ctx, "http://127.0.0.1:1", nil, nil)
	if err == nil {
		t.Fatal("expected error from unreachable upstream")
	}
	if v, _ := h2.Get(headers, ":status"); v != "502" {
		t.Fatalf("expected 502-equivalent response, got %q", v)
	}
}

func TestPoolReusesEntryPerTarget(t *testing.T) {
	p := NewPool(nil, nil, 3)
	e1 := p.entryFor("http://a")
	e2 := p.entryFor("http://a")
	e3 := p.entryFor("http://b")
	if e1 != e2 {
		t.Fatal("expected same Entry for the same target")
	}
	if e1 == e3 {
		t.Fatal("expected distinct Entry for a different target")
	}
}
