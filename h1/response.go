// File: h1/response.go
// Author: momentics <momentics@gmail.com>
//
// HTTP/1.1 response serialization, written in the same status-line
// plus header-map plus body shape the teacher's handshake response
// construction uses (protocol/handshake.go builds an http.Header and
// writes it out; kestrelgw generalizes that to arbitrary status codes
// and bodies for non-upgrade responses).

package h1

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Response is the serialized form of an HTTP/1.1 response the router,
// middleware, or upstream pool produces.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewResponse builds a Response with an empty header map ready for
// Header().Set calls.
func NewResponse(statusCode int, body []byte) *Response {
	return &Response{StatusCode: statusCode, Header: make(http.Header), Body: body}
}

// Write serializes the status line, headers (adding Content-Length if
// absent), and body to w.
func (r *Response) Write(w io.Writer) error {
	if r.Header.Get("Content-Length") == "" {
		r.Header.Set("Content-Length", strconv.Itoa(len(r.Body)))
	}
	statusText := http.StatusText(r.StatusCode)
	if statusText == "" {
		statusText = "Status"
	}
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", r.StatusCode, statusText); err != nil {
		return err
	}
	if err := r.Header.Write(w); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return err
	}
	if len(r.Body) > 0 {
		if _, err := w.Write(r.Body); err != nil {
			return err
		}
	}
	return nil
}

// StatusText exposes http.StatusText so callers outside net/http don't
// need a second import just for status reason phrases.
func StatusText(code int) string {
	return http.StatusText(code)
}
