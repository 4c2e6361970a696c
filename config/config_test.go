package config

import "testing"

func TestDefaultGatewayConfigIsUsable(t *testing.T) {
	cfg := DefaultGatewayConfig()
	if cfg.ListenAddr == "" {
		t.Fatal("expected a default listen address")
	}
	if cfg.NumWorkers <= 0 {
		t.Fatal("expected at least one worker by default")
	}
	if cfg.MaxConcurrentStreams != 256 || cfg.MaxFrameSize != 16384 {
		t.Fatalf("expected spec-default HTTP/2 settings, got %+v", cfg)
	}
}
