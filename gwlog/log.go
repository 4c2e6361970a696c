// File: gwlog/log.go
// Author: momentics <momentics@gmail.com>
//
// Structured logging for the gateway via github.com/hashicorp/go-hclog,
// replacing the teacher's bare log.Printf calls (facade/hioload.go,
// server/hioload.go: "DPDK init failed: %v, falling back to native",
// "Affinity pin warning: %v") with leveled, field-based logging every
// component can share.

package gwlog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// Logger is the gateway-wide logging interface; an alias of
// hclog.Logger so components can depend on this package without
// importing hclog directly.
type Logger = hclog.Logger

// New creates a named root logger writing to stderr at the given
// level ("trace", "debug", "info", "warn", "error").
func New(name, level string) Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		Level:           hclog.LevelFromString(level),
		Output:          os.Stderr,
		IncludeLocation: false,
	})
}

// Nop returns a logger that discards everything, for tests and
// components that haven't been wired to a real sink yet.
func Nop() Logger {
	return hclog.NewNullLogger()
}
