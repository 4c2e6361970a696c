package h1

import (
	"bytes"
	"strings"
	"testing"
)

func TestResponseWriteIncludesStatusLineHeadersAndBody(t *testing.T) {
	resp := NewResponse(200, []byte("hello"))
	resp.Header.Set("Content-Type", "text/plain")

	var buf bytes.Buffer
	if err := resp.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected status line: %q", out)
	}
	if !strings.Contains(out, "Content-Length: 5\r\n") {
		t.Fatalf("expected Content-Length header, got %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\nhello") {
		t.Fatalf("expected blank line then body, got %q", out)
	}
}

func TestResponseWriteEmptyBody(t *testing.T) {
	resp := NewResponse(204, nil)
	var buf bytes.Buffer
	if err := resp.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "Content-Length: 0\r\n") {
		t.Fatalf("expected Content-Length: 0, got %q", buf.String())
	}
}
