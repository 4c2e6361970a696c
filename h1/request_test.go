package h1

import (
	"bufio"
	"strings"
	"testing"
)

func TestReadRequestParsesLineHeadersAndBody(t *testing.T) {
	raw := "POST /widgets HTTP/1.1\r\nHost: example.com\r\nContent-Length: 5\r\n\r\nhello"
	req, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.Method != "POST" || req.Path != "/widgets" {
		t.Fatalf("unexpected method/path: %q %q", req.Method, req.Path)
	}
	if req.Host != "example.com" {
		t.Fatalf("unexpected host: %q", req.Host)
	}
	if string(req.Body) != "hello" {
		t.Fatalf("unexpected body: %q", req.Body)
	}
}

func TestReadRequestRejectsHTTP09(t *testing.T) {
	raw := "GET /\r\n\r\n"
	_, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)))
	if err == nil {
		t.Fatal("expected rejection of non-HTTP/1.x request line")
	}
}

func TestReadRequestRejectsOversizeHeaderBlock(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("GET / HTTP/1.1\r\nHost: x\r\n")
	bigValue := strings.Repeat("a", MaxHeaderBlockSize+1)
	sb.WriteString("X-Big: " + bigValue + "\r\n\r\n")
	_, err := ReadRequest(bufio.NewReader(strings.NewReader(sb.String())))
	if err != ErrHeaderBlockTooLarge {
		t.Fatalf("expected ErrHeaderBlockTooLarge, got %v", err)
	}
}

func TestReadRequestDechunksBody(t *testing.T) {
	raw := "POST /x HTTP/1.1\r\nHost: example.com\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n"
	req, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if string(req.Body) != "hello" {
		t.Fatalf("expected dechunked body %q, got %q", "hello", req.Body)
	}
}
