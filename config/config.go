// File: config/config.go
// Author: momentics <momentics@gmail.com>
//
// Configuration structs the core consumes. Loading these from JSON/
// YAML/flags and hot-reload are explicitly out of scope per spec.md §1
// ("JSON config loading... CLI" are external collaborators) — this
// package only defines the shapes and their defaults, grounded on the
// teacher's facade/hioload.go Config (a flat struct of tunables plus a
// DefaultConfig constructor).
package config

import "time"

// RouteConfig is one configured route: {path pattern, upstream target,
// allowed methods, middleware names}, per spec.md's Route config data
// model entry.
type RouteConfig struct {
	Path           string
	UpstreamTarget string
	Methods        []string
	Middleware     []string
}

// GatewayConfig is the top-level configuration the composition root
// passes to the core. Every field here is an opaque value the core
// reads once at startup; nothing in this package watches a file or
// parses flags.
type GatewayConfig struct {
	ListenAddr      string
	NumWorkers      int
	NUMAPinning     bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	MaxConcurrentStreams uint32
	InitialWindowSize    int32
	MaxFrameSize         uint32

	UpstreamMaxConnectAttempts int
	UpstreamBufferSize         int

	Routes []RouteConfig

	EnableMetrics bool
	MetricsAddr   string
	LogLevel      string
}

// DefaultGatewayConfig mirrors the teacher's DefaultConfig: a
// reasonable baseline a caller can selectively override.
func DefaultGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		ListenAddr:                 ":8080",
		NumWorkers:                 4,
		NUMAPinning:                true,
		ReadTimeout:                5 * time.Second,
		WriteTimeout:               5 * time.Second,
		ShutdownTimeout:            30 * time.Second,
		MaxConcurrentStreams:       256,
		InitialWindowSize:          1048576,
		MaxFrameSize:               16384,
		UpstreamMaxConnectAttempts: 3,
		UpstreamBufferSize:         64 * 1024,
		EnableMetrics:              true,
		MetricsAddr:                ":9090",
		LogLevel:                   "info",
	}
}
