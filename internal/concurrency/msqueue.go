// File: internal/concurrency/msqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Queue is an unbounded, lock-free MPMC FIFO built from CAS-linked
// cells with a sentinel head/tail node, per the classic Michael-Scott
// algorithm. It replaces the teacher's two queue implementations: the
// bounded Vyukov-style ring (core/concurrency/lock_free_queue.go, fixed
// capacity, returns false when full — wrong shape for an acceptor that
// must never reject a connection because a ring filled up) and the
// internal/concurrency/executor.go wrapper around github.com/eapache/queue
// (a plain slice-backed deque with no internal synchronization at all —
// concurrent Submit/run-loop access was a real race). Neither teacher
// queue is reused; this one is built fresh in the same package the
// teacher used for its concurrency primitives.

package concurrency

import "sync/atomic"

type msNode[T any] struct {
	value T
	next  atomic.Pointer[msNode[T]]
}

// Queue is a lock-free, unbounded multi-producer multi-consumer FIFO.
// The zero value is not usable; construct with NewQueue.
type Queue[T any] struct {
	head atomic.Pointer[msNode[T]]
	tail atomic.Pointer[msNode[T]]
	size atomic.Int64
}

// NewQueue returns an empty Queue seeded with a sentinel node.
func NewQueue[T any]() *Queue[T] {
	sentinel := &msNode[T]{}
	q := &Queue[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Enqueue appends v to the tail. Always succeeds; the queue never
// rejects on capacity since it grows with each node allocation.
func (q *Queue[T]) Enqueue(v T) {
	n := &msNode[T]{value: v}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue // tail moved under us, retry
		}
		if next == nil {
			if tail.next.CompareAndSwap(nil, n) {
				q.tail.CompareAndSwap(tail, n) // help advance tail
				q.size.Add(1)
				return
			}
		} else {
			// tail lagged behind an already-linked node: help it along
			q.tail.CompareAndSwap(tail, next)
		}
	}
}

// Dequeue removes and returns the head value. ok is false if the queue
// was empty at the attempt.
func (q *Queue[T]) Dequeue() (result T, ok bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if head == tail {
			if next == nil {
				var zero T
				return zero, false
			}
			// tail lagged behind: help advance before retrying
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		v := next.value
		if q.head.CompareAndSwap(head, next) {
			q.size.Add(-1)
			return v, true
		}
	}
}

// Len returns an approximate count of queued items. Safe to call
// concurrently with Enqueue/Dequeue but may be stale by the time the
// caller observes it.
func (q *Queue[T]) Len() int {
	if n := q.size.Load(); n > 0 {
		return int(n)
	}
	return 0
}
