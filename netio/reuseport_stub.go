//go:build !linux
// +build !linux

// File: netio/reuseport_stub.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux fallback: plain net.Listen. SO_REUSEPORT is a Linux-only
// socket option; other platforms run a single acceptor per port.

package netio

import "net"

func listenReusePort(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
