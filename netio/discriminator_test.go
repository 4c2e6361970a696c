package netio

import (
	"bufio"
	"strings"
	"testing"
)

func TestDiscriminateHTTP2Preface(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("PRI * HTTP/2.0\r\n\r\nSM\r\n\r\nrest"))
	proto, err := Discriminate(br)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proto != HTTP2 {
		t.Fatalf("expected HTTP2, got %v", proto)
	}
	// Preface bytes must still be readable by the caller.
	line, _ := br.ReadString('\n')
	if !strings.HasPrefix(line, "PRI * HTTP/2.0") {
		t.Fatalf("peek consumed bytes it should not have: %q", line)
	}
}

func TestDiscriminatePlainHTTP1(t *testing.T) {
	req := "GET /widgets HTTP/1.1\r\nHost: example.com\r\n\r\n"
	br := bufio.NewReader(strings.NewReader(req))
	proto, err := Discriminate(br)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proto != HTTP1 {
		t.Fatalf("expected HTTP1, got %v", proto)
	}
}

func TestDiscriminateWebSocketUpgrade(t *testing.T) {
	req := "GET /chat HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Connection: Upgrade\r\n" +
		"Upgrade: websocket\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"
	br := bufio.NewReader(strings.NewReader(req))
	proto, err := Discriminate(br)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proto != WebSocketUpgrade {
		t.Fatalf("expected WebSocketUpgrade, got %v", proto)
	}
}

func TestDiscriminateConnectionUpgradeWithoutWebsocketToken(t *testing.T) {
	req := "GET /foo HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Connection: Upgrade\r\n" +
		"Upgrade: h2c\r\n\r\n"
	br := bufio.NewReader(strings.NewReader(req))
	proto, err := Discriminate(br)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proto != HTTP1 {
		t.Fatalf("expected plain HTTP1 for non-websocket upgrade, got %v", proto)
	}
}

func TestDiscriminateUnknownGarbage(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("\x16\x03\x01\x00\xa5garbage"))
	proto, err := Discriminate(br)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proto != Unknown {
		t.Fatalf("expected Unknown, got %v", proto)
	}
}
