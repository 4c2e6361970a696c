//go:build linux
// +build linux

// File: netio/reuseport_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux listener setup enabling SO_REUSEPORT, so several acceptor
// processes (or NUMA-pinned instances of this one) can bind the same
// port and let the kernel load-balance accepts across them. The
// teacher never needed this (single listener, single process); grounded
// on the reactor package's general comfort reaching for
// golang.org/x/sys/unix for raw socket options
// (reactor/reactor_linux.go), applied here to net.ListenConfig.Control
// instead of epoll setup.

package netio

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

func listenReusePort(addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.Listen(context.Background(), "tcp", addr)
}
