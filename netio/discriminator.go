// File: netio/discriminator.go
// Author: momentics <momentics@gmail.com>
//
// Discriminate peeks at the first bytes of a freshly accepted
// connection and classifies it as HTTP/2 (client preface), an
// HTTP/1.1 request (known method token), a WebSocket upgrade riding an
// HTTP/1.1 request, or Unknown, without consuming bytes the chosen
// protocol handler still needs to see.
//
// Grounded on the teacher's header-token matching idiom
// (protocol/handshake.go's headerContainsToken: case-insensitive,
// comma-split token scan) for the WebSocket-upgrade-within-HTTP/1.1
// case, combined with a byte-prefix peek (new — the teacher never
// needed to distinguish HTTP/2 from HTTP/1.1, since every teacher
// listener only ever speaks one protocol).

package netio

import (
	"bufio"
	"strings"
)

// Protocol is the result of classifying a connection's opening bytes.
type Protocol int

const (
	Unknown Protocol = iota
	HTTP2
	HTTP1
	WebSocketUpgrade
)

func (p Protocol) String() string {
	switch p {
	case HTTP2:
		return "http2"
	case HTTP1:
		return "http1"
	case WebSocketUpgrade:
		return "websocket-upgrade"
	default:
		return "unknown"
	}
}

// http2Preface is the fixed 24-byte client connection preface every
// HTTP/2 connection begins with, per RFC 7540 §3.5.
const http2Preface = "PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"

var http1Methods = []string{
	"GET ", "POST ", "PUT ", "DELETE ", "HEAD ",
	"OPTIONS ", "PATCH ", "CONNECT ", "TRACE ",
}

// Discriminate peeks up to len(http2Preface) bytes from br without
// consuming them, classifying the connection. For HTTP1/WebSocketUpgrade
// it additionally peeks the full request line + headers (bounded by
// bufio.Reader's buffer) to distinguish a plain request from an
// upgrade, again without consuming anything — the caller's subsequent
// http.ReadRequest(br) sees the identical bytes.
func Discriminate(br *bufio.Reader) (Protocol, error) {
	prefix, err := br.Peek(len(http2Preface))
	if err == nil && string(prefix) == http2Preface {
		return HTTP2, nil
	}

	// A short peek (connection closed early, etc.) still might be a
	// valid HTTP/1.1 method prefix; re-peek with whatever is available.
	head, peekErr := br.Peek(8)
	if peekErr != nil && len(head) == 0 {
		return Unknown, peekErr
	}
	for _, m := range http1Methods {
		if len(head) >= len(m) && string(head[:len(m)]) == m {
			if isWebSocketUpgrade(br) {
				return WebSocketUpgrade, nil
			}
			return HTTP1, nil
		}
	}
	return Unknown, nil
}

// isWebSocketUpgrade peeks the largest buffered prefix available and
// scans it for "Connection: Upgrade" / "Upgrade: websocket" header
// lines without running a full HTTP parse (a truncated header block
// mid-buffer is fine — a false negative here just routes the
// connection to the plain HTTP/1.1 path, which will itself see the
// complete headers once it parses the request).
func isWebSocketUpgrade(br *bufio.Reader) bool {
	buffered := br.Buffered()
	if buffered == 0 {
		return false
	}
	data, err := br.Peek(buffered)
	if err != nil {
		return false
	}
	text := string(data)
	lines := strings.Split(text, "\r\n")
	hasUpgradeConn := false
	hasWSUpgrade := false
	for _, line := range lines {
		sep := strings.IndexByte(line, ':')
		if sep < 0 {
			continue
		}
		name := strings.TrimSpace(line[:sep])
		val := strings.TrimSpace(line[sep+1:])
		switch {
		case strings.EqualFold(name, "Connection") && headerTokenMatch(val, "upgrade"):
			hasUpgradeConn = true
		case strings.EqualFold(name, "Upgrade") && headerTokenMatch(val, "websocket"):
			hasWSUpgrade = true
		}
	}
	return hasUpgradeConn && hasWSUpgrade
}

// headerTokenMatch reports whether token appears as a comma-separated
// entry in value, case-insensitively — the same scan
// protocol/handshake.go's headerContainsToken performs over a parsed
// http.Header, applied here to a raw unparsed header line.
func headerTokenMatch(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
