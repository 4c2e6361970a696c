// File: h1/request.go
// Author: momentics <momentics@gmail.com>
//
// HTTP/1.1 request parsing, grounded on the teacher's
// protocol/handshake.go's DoHandshakeCore, which already parses a raw
// connection via bufio.Reader + net/http.ReadRequest rather than a
// hand-rolled line scanner — kestrelgw reuses that idiom for every
// HTTP/1.1 request, not only the WebSocket-upgrade ones.

package h1

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxHeaderBlockSize is the 64 KB cap spec.md recommends on the
// combined header block size.
const MaxHeaderBlockSize = 64 * 1024

var (
	ErrUnsupportedVersion = errors.New("h1: unsupported HTTP version")
	ErrHeaderBlockTooLarge = errors.New("h1: header block exceeds 64KB cap")
)

// Request is the parsed form of an HTTP/1.1 request handed to the
// router/middleware chain.
type Request struct {
	Method  string
	Path    string
	Proto   string
	Header  http.Header
	Body    []byte
	Host    string
}

// ReadRequest parses one HTTP/1.0 or HTTP/1.1 request from br,
// rejecting any other protocol version and any header block over
// MaxHeaderBlockSize.
func ReadRequest(br *bufio.Reader) (*Request, error) {
	raw, err := http.ReadRequest(br)
	if err != nil {
		return nil, fmt.Errorf("h1: read request: %w", err)
	}
	if raw.ProtoMajor != 1 || (raw.ProtoMinor != 0 && raw.ProtoMinor != 1) {
		return nil, ErrUnsupportedVersion
	}
	if headerBlockSize(raw.Header) > MaxHeaderBlockSize {
		return nil, ErrHeaderBlockTooLarge
	}
	body, err := readBody(raw)
	if err != nil {
		return nil, fmt.Errorf("h1: read body: %w", err)
	}
	return &Request{
		Method: raw.Method,
		Path:   raw.URL.RequestURI(),
		Proto:  raw.Proto,
		Header: raw.Header,
		Body:   body,
		Host:   raw.Host,
	}, nil
}

// readBody fully buffers the request body. net/http.ReadRequest
// already transparently dechunks a Transfer-Encoding: chunked body and
// bounds a Content-Length body, so a plain io.ReadAll suffices here.
func readBody(raw *http.Request) ([]byte, error) {
	if raw.Body == nil {
		return nil, nil
	}
	defer raw.Body.Close()
	return io.ReadAll(raw.Body)
}

func headerBlockSize(h http.Header) int {
	total := 0
	for k, vs := range h {
		total += len(k)
		for _, v := range vs {
			total += len(v)
		}
	}
	return total
}
