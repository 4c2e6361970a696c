package h2

import (
	"bytes"
	"testing"
)

func TestFrameHeaderRoundTrip(t *testing.T) {
	h := FrameHeader{Length: 16, Type: FrameHeaders, Flags: FlagEndHeaders | FlagEndStream, StreamID: 1}
	buf := make([]byte, 9)
	n, err := EncodeFrameHeader(buf, h)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if n != 9 {
		t.Fatalf("expected 9 bytes written, got %d", n)
	}
	want := []byte{0x00, 0x00, 0x10, 0x01, 0x05, 0x00, 0x00, 0x00, 0x01}
	if !bytes.Equal(buf, want) {
		t.Fatalf("encoding mismatch: got %x want %x", buf, want)
	}
	got, err := ParseFrameHeader(buf, 0)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, h)
	}
}

func TestParseFrameHeaderRejectsOversizeFrame(t *testing.T) {
	h := FrameHeader{Length: 100000, Type: FrameData, StreamID: 3}
	buf := make([]byte, 9)
	EncodeFrameHeader(buf, h)
	_, err := ParseFrameHeader(buf, 16384)
	pe, ok := err.(*ProtocolError)
	if !ok {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if pe.Code != ErrFrameSize {
		t.Fatalf("expected FRAME_SIZE_ERROR, got %v", pe.Code)
	}
}

func TestSettingsEncodeDecodeRoundTrip(t *testing.T) {
	entries := DefaultSettings()
	payload := EncodeSettings(entries)
	if len(payload)%6 != 0 {
		t.Fatalf("expected payload length multiple of 6, got %d", len(payload))
	}
	decoded, err := DecodeSettings(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(decoded))
	}
	for i := range entries {
		if decoded[i] != entries[i] {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, decoded[i], entries[i])
		}
	}
}

func TestDecodeSettingsRejectsMisalignedPayload(t *testing.T) {
	_, err := DecodeSettings(make([]byte, 5))
	if err == nil {
		t.Fatal("expected error for non-multiple-of-6 payload")
	}
}

func TestHeaderBlockEncodeDecodeRoundTrip(t *testing.T) {
	fields := []HeaderField{
		{Name: ":method", Value: "GET"},
		{Name: ":path", Value: "/widgets"},
		{Name: "host", Value: "example.com"},
	}
	block := EncodeHeaderBlock(fields)
	decoded, err := DecodeHeaderBlock(block)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != len(fields) {
		t.Fatalf("expected %d fields, got %d", len(fields), len(decoded))
	}
	for i := range fields {
		if decoded[i] != fields[i] {
			t.Fatalf("field %d mismatch: got %+v want %+v", i, decoded[i], fields[i])
		}
	}
	if v, ok := Get(decoded, ":path"); !ok || v != "/widgets" {
		t.Fatalf("Get(:path) = %q, %v", v, ok)
	}
}

func TestDecodeHeaderBlockRejectsMissingColon(t *testing.T) {
	bad := append([]byte("nocolonhere"), 0)
	_, err := DecodeHeaderBlock(bad)
	if err == nil {
		t.Fatal("expected error for entry missing colon")
	}
}
