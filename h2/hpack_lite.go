// File: h2/hpack_lite.go
// Author: momentics <momentics@gmail.com>
//
// Simplified (non-HPACK) HEADERS wire encoding: each header is
// `name:value\0`, concatenated in order. This is the explicit choice
// documented in DESIGN.md's Open Questions — not RFC 7540-compliant
// for arbitrary external peers, acceptable per spec.md §4.6 for
// cooperating internal peers. No teacher file encodes headers this
// way (WebSocket frames carry no headers); entries are NUL-terminated
// rather than length-prefixed.

package h2

import (
	"bytes"
	"fmt"
)

// HeaderField is one HTTP/2 header/pseudo-header entry. Pseudo-headers
// (:method, :path, :scheme, :authority, :status) use their RFC names
// verbatim as Name.
type HeaderField struct {
	Name  string
	Value string
}

// EncodeHeaderBlock serializes fields as a sequence of
// "name:value\x00" entries, in order. Order is preserved so a
// cooperating peer can recover pseudo-header position if it cares.
func EncodeHeaderBlock(fields []HeaderField) []byte {
	var buf bytes.Buffer
	for _, f := range fields {
		buf.WriteString(f.Name)
		buf.WriteByte(':')
		buf.WriteString(f.Value)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// DecodeHeaderBlock parses a block produced by EncodeHeaderBlock.
// Returns a ProtocolError (COMPRESSION_ERROR) on a malformed entry —
// no colon before the terminating NUL.
func DecodeHeaderBlock(block []byte) ([]HeaderField, error) {
	var fields []HeaderField
	for len(block) > 0 {
		nul := bytes.IndexByte(block, 0)
		if nul < 0 {
			return nil, &ProtocolError{Code: ErrCompression, Msg: "header entry missing NUL terminator"}
		}
		entry := block[:nul]
		block = block[nul+1:]
		// Pseudo-headers (:method, :path, :scheme, :authority, :status)
		// carry a leading ':' that is part of the name, not the
		// name/value delimiter — search for the delimiter after it.
		searchFrom := 0
		if len(entry) > 0 && entry[0] == ':' {
			searchFrom = 1
		}
		colon := bytes.IndexByte(entry[searchFrom:], ':')
		if colon < 0 {
			return nil, &ProtocolError{Code: ErrCompression, Msg: fmt.Sprintf("header entry missing ':': %q", entry)}
		}
		colon += searchFrom
		fields = append(fields, HeaderField{Name: string(entry[:colon]), Value: string(entry[colon+1:])})
	}
	return fields, nil
}

// Get returns the value of the first field named name, case-sensitive
// (pseudo-headers and this encoding are both case-sensitive by
// convention), and whether it was found.
func Get(fields []HeaderField, name string) (string, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}
