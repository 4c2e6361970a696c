// File: h2/codec.go
// Author: momentics <momentics@gmail.com>
//
// Encode/decode of the 9-byte HTTP/2 frame header and the SETTINGS
// frame payload. Grounded on the teacher's protocol/frame.go
// (DecodeFrame/EncodeFrame: io.ReadFull into scratch arrays,
// binary.BigEndian for multi-byte fields, explicit offset bookkeeping)
// — the same idiom, widened from WebSocket's variable-length encoding
// to HTTP/2's single fixed 9-byte layout.

package h2

import (
	"encoding/binary"
	"fmt"
	"io"
)

const frameHeaderLen = 9

// EncodeFrameHeader writes h's 9-byte wire form into dst, which must be
// at least frameHeaderLen bytes. Returns the number of bytes written.
func EncodeFrameHeader(dst []byte, h FrameHeader) (int, error) {
	if len(dst) < frameHeaderLen {
		return 0, fmt.Errorf("h2: frame header buffer too small: %d", len(dst))
	}
	if h.Length > 0xFFFFFF {
		return 0, fmt.Errorf("h2: frame length %d exceeds 24-bit field", h.Length)
	}
	dst[0] = byte(h.Length >> 16)
	dst[1] = byte(h.Length >> 8)
	dst[2] = byte(h.Length)
	dst[3] = byte(h.Type)
	dst[4] = h.Flags
	binary.BigEndian.PutUint32(dst[5:9], h.StreamID&0x7FFFFFFF)
	return frameHeaderLen, nil
}

// DecodeFrameHeader reads and parses the next 9-byte frame header from
// r, validating Length against maxFrameSize.
func DecodeFrameHeader(r io.Reader, maxFrameSize uint32) (FrameHeader, error) {
	var buf [frameHeaderLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return FrameHeader{}, err
	}
	return ParseFrameHeader(buf[:], maxFrameSize)
}

// ParseFrameHeader decodes a 9-byte buffer already read from the wire.
func ParseFrameHeader(buf []byte, maxFrameSize uint32) (FrameHeader, error) {
	if len(buf) < frameHeaderLen {
		return FrameHeader{}, fmt.Errorf("h2: short frame header: %d bytes", len(buf))
	}
	length := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
	if maxFrameSize > 0 && length > maxFrameSize {
		return FrameHeader{}, &ProtocolError{Code: ErrFrameSize, Msg: fmt.Sprintf("frame length %d exceeds max_frame_size %d", length, maxFrameSize)}
	}
	h := FrameHeader{
		Length:   length,
		Type:     FrameType(buf[3]),
		Flags:    buf[4],
		StreamID: binary.BigEndian.Uint32(buf[5:9]) & 0x7FFFFFFF,
	}
	return h, nil
}

// ProtocolError signals an RFC 7540 protocol violation that should
// produce a RST_STREAM or GOAWAY with the given code, per spec.md's
// error-handling table.
type ProtocolError struct {
	Code ErrorCode
	Msg  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("h2 protocol error %d: %s", e.Code, e.Msg)
}

// Setting is one entry of a SETTINGS frame payload: a 16-bit identifier
// and a 32-bit value.
type Setting struct {
	ID    uint16
	Value uint32
}

// Recognized SETTINGS identifiers.
const (
	SettingHeaderTableSize      uint16 = 0x1
	SettingEnablePush           uint16 = 0x2
	SettingMaxConcurrentStreams uint16 = 0x3
	SettingInitialWindowSize    uint16 = 0x4
	SettingMaxFrameSize         uint16 = 0x5
	SettingMaxHeaderListSize    uint16 = 0x6
)

// EncodeSettings serializes entries as a SETTINGS frame payload (6
// bytes per entry).
func EncodeSettings(entries []Setting) []byte {
	out := make([]byte, 6*len(entries))
	for i, s := range entries {
		off := i * 6
		binary.BigEndian.PutUint16(out[off:], s.ID)
		binary.BigEndian.PutUint32(out[off+2:], s.Value)
	}
	return out
}

// DecodeSettings parses a SETTINGS frame payload into entries.
func DecodeSettings(payload []byte) ([]Setting, error) {
	if len(payload)%6 != 0 {
		return nil, &ProtocolError{Code: ErrFrameSize, Msg: "SETTINGS payload not a multiple of 6"}
	}
	out := make([]Setting, len(payload)/6)
	for i := range out {
		off := i * 6
		out[i] = Setting{
			ID:    binary.BigEndian.Uint16(payload[off:]),
			Value: binary.BigEndian.Uint32(payload[off+2:]),
		}
	}
	return out, nil
}

// DefaultSettings returns the SETTINGS values spec.md recommends
// advertising on every new connection.
func DefaultSettings() []Setting {
	return []Setting{
		{ID: SettingHeaderTableSize, Value: 4096},
		{ID: SettingMaxConcurrentStreams, Value: 256},
		{ID: SettingInitialWindowSize, Value: 1048576},
		{ID: SettingMaxFrameSize, Value: 16384},
	}
}
