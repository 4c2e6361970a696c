//go:build !linux
// +build !linux

// File: internal/topology/topology_stub.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux fallback: reports a single NUMA node spanning every
// logical CPU runtime.NumCPU() sees.

package topology

func discover() Snapshot {
	return discoverSingleNode()
}
