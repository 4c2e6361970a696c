//go:build !linux
// +build !linux

// File: internal/affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux fallback: pinning is unsupported, so Pin is a no-op that
// reports success. Callers treat affinity as a best-effort hint, never
// a correctness requirement, so a platform without pinning support
// still runs correctly — just without NUMA locality guarantees.

package affinity

func setAffinityPlatform(cpuID int) error {
	return nil
}
