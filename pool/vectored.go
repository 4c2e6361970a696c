// File: pool/vectored.go
// Author: momentics <momentics@gmail.com>
//
// VectoredBuffer batches several pooled Buffers into one writev-style
// scatter/gather write, avoiding the copy-into-one-slice step a naive
// response writer would pay on every header+body pair.
//
// Grounded on the teacher's batch.go (BufferBatch zero-copy batching);
// the write path is new, using net.Buffers so the runtime lowers the
// scatter/gather write to writev(2) on platforms that support it.

package pool

import (
	"io"
	"net"
)

// VectoredBuffer is a zero-copy batch of Buffers awaiting a single
// scatter/gather write. Not safe for concurrent mutation.
type VectoredBuffer struct {
	bufs []Buffer
}

// NewVectoredBuffer allocates a batch with the given initial capacity.
func NewVectoredBuffer(capacity int) *VectoredBuffer {
	return &VectoredBuffer{bufs: make([]Buffer, 0, capacity)}
}

// Append adds a Buffer to the batch.
func (v *VectoredBuffer) Append(b Buffer) {
	v.bufs = append(v.bufs, b)
}

// Len returns the number of buffers queued.
func (v *VectoredBuffer) Len() int { return len(v.bufs) }

// ByteLen returns the sum of all queued buffers' lengths.
func (v *VectoredBuffer) ByteLen() int {
	n := 0
	for _, b := range v.bufs {
		n += len(b.Data)
	}
	return n
}

// Reset clears the batch, retaining the underlying slice's capacity.
func (v *VectoredBuffer) Reset() {
	v.bufs = v.bufs[:0]
}

// ReleaseAll returns every queued buffer to its pool.
func (v *VectoredBuffer) ReleaseAll() {
	for _, b := range v.bufs {
		b.Release()
	}
	v.Reset()
}

// netBuffers exposes the batch as net.Buffers for WriteTo, which the
// runtime lowers to writev when the underlying conn supports it
// (net.TCPConn does on all platforms Go targets).
func (v *VectoredBuffer) netBuffers() net.Buffers {
	out := make(net.Buffers, len(v.bufs))
	for i, b := range v.bufs {
		out[i] = b.Data
	}
	return out
}

// WriteTo writes every queued buffer to w as a single scatter/gather
// operation and releases them back to their pools regardless of error,
// since a partial write still consumed whatever bytes accounting
// net.Buffers.WriteTo reports.
func (v *VectoredBuffer) WriteTo(w io.Writer) (int64, error) {
	bufs := v.netBuffers()
	n, err := bufs.WriteTo(w)
	v.ReleaseAll()
	return n, err
}
