// File: h1/websocket.go
// Author: momentics <momentics@gmail.com>
//
// WebSocket upgrade detection and handshake response, grounded directly
// on the teacher's protocol/upgrader.go UpgradeToWebSocket (header
// validation order, RFC6455 GUID, SHA-1+base64 accept-key computation)
// and protocol/handshake.go's headerContainsToken helper — the §9 open
// question about a hand-rolled constant accept key is resolved by
// reusing this already-correct computed-key path everywhere.

package h1

import (
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var (
	ErrNotUpgradeRequest  = errors.New("h1: not a WebSocket upgrade request")
	ErrMissingWebSocketKey = errors.New("h1: missing or malformed Sec-WebSocket-Key")
	ErrBadWebSocketVersion = errors.New("h1: unsupported Sec-WebSocket-Version")
)

// IsUpgradeRequest reports whether header carries a well-formed
// WebSocket upgrade request: Connection: Upgrade, Upgrade: websocket.
func IsUpgradeRequest(header http.Header) bool {
	return headerContainsToken(header, "Connection", "Upgrade") &&
		headerContainsToken(header, "Upgrade", "websocket")
}

// ComputeAcceptKey derives Sec-WebSocket-Accept from a client's
// Sec-WebSocket-Key per RFC 6455 §4.2.2.
func ComputeAcceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey + websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// UpgradeResponse validates an upgrade request's headers (Connection,
// Upgrade, Sec-WebSocket-Key length, Sec-WebSocket-Version) and returns
// the response headers to complete the handshake.
func UpgradeResponse(req *Request) (http.Header, error) {
	if !IsUpgradeRequest(req.Header) {
		return nil, ErrNotUpgradeRequest
	}
	key := req.Header.Get("Sec-WebSocket-Key")
	if len(key) != 24 {
		return nil, ErrMissingWebSocketKey
	}
	if req.Header.Get("Sec-WebSocket-Version") != "13" {
		return nil, ErrBadWebSocketVersion
	}
	resp := make(http.Header)
	resp.Set("Upgrade", "websocket")
	resp.Set("Connection", "Upgrade")
	resp.Set("Sec-WebSocket-Accept", ComputeAcceptKey(key))
	return resp, nil
}

func headerContainsToken(h http.Header, headerName, token string) bool {
	vals := h[http.CanonicalHeaderKey(headerName)]
	token = strings.ToLower(token)
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if strings.ToLower(strings.TrimSpace(p)) == token {
				return true
			}
		}
	}
	return false
}
