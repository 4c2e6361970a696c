// File: internal/affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity pinning. Platform-specific
// implementations live in affinity_linux.go (cgo pthread_setaffinity_np)
// and affinity_stub.go (no-op everywhere else).
//
// Adapted directly from the teacher's affinity/affinity.go +
// affinity_linux.go pair, kept in the same shape: a single exported
// Pin function dispatching to setAffinityPlatform.

package affinity

// Pin pins the calling OS thread to the given logical CPU. Must be
// called from the goroutine that should be pinned, after
// runtime.LockOSThread — pinning a thread the scheduler can still move
// the goroutine off of is a no-op in practice.
func Pin(cpuID int) error {
	return setAffinityPlatform(cpuID)
}
