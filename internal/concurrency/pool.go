// File: internal/concurrency/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool is a fixed-size worker pool in which each goroutine drains its
// own Queue[Task] and steals from the other workers' queues when its
// own is empty; the goroutines are not pinned to CPUs. Grounded on the
// teacher's ThreadPool/Executor pairing (internal/concurrency/
// threadpool.go, executor.go): ThreadPool.Submit/Close wrapping an
// Executor that owned a queue and a fixed goroutine count. The queue
// underneath is this package's Michael-Scott Queue rather than the
// teacher's unsynchronized eapache/queue wrapper, and workers now take
// a NUMA node hint so Submit can request same-node execution when the
// caller is servicing a connection whose buffers were allocated there.

package concurrency

import (
	"sync"
	"sync/atomic"
)

// Task is a unit of work submitted to a Pool.
type Task func()

// Pool runs submitted Tasks across a fixed set of goroutines. Each
// worker is associated with a NUMA node only through nodeOf, which
// Submit uses to pick a queue; the worker goroutines are not pinned to
// a CPU or node.
type Pool struct {
	queues  []*Queue[Task]
	wake    []chan struct{}
	nodeOf  func(workerIdx int) int
	wg      sync.WaitGroup
	closed  atomic.Bool
	closeCh chan struct{}
}

// NewPool starts a Pool with `workers` goroutines. nodeOf maps a worker
// index to its NUMA node and is used only by Submit to choose the queue
// for a preferred node; pass nil to send every task to worker 0's
// queue, from which the other workers take work by stealing.
func NewPool(workers int, nodeOf func(workerIdx int) int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		queues:  make([]*Queue[Task], workers),
		wake:    make([]chan struct{}, workers),
		nodeOf:  nodeOf,
		closeCh: make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = NewQueue[Task]()
		p.wake[i] = make(chan struct{}, 1)
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.runWorker(i)
	}
	return p
}

func (p *Pool) runWorker(idx int) {
	defer p.wg.Done()
	q := p.queues[idx]
	wake := p.wake[idx]
	for {
		if t, ok := q.Dequeue(); ok {
			t()
			continue
		}
		if t, stolen := p.steal(idx); stolen {
			t()
			continue
		}
		select {
		case <-wake:
			continue
		case <-p.closeCh:
			// drain remaining work before exiting
			for {
				t, ok := q.Dequeue()
				if !ok {
					return
				}
				t()
			}
		}
	}
}

// steal pulls one task from another worker's queue whenever this
// worker's own queue is empty (before the close signal is checked), so idle
// workers on one NUMA node can absorb overflow from a hot node instead
// of sitting empty while another queue backs up.
func (p *Pool) steal(self int) (Task, bool) {
	for i := range p.queues {
		if i == self {
			continue
		}
		if t, ok := p.queues[i].Dequeue(); ok {
			return t, true
		}
	}
	return nil, false
}

// Submit enqueues t for execution, preferring the worker whose node
// matches preferredNode when nodeOf is set. Returns false if the pool
// is closed.
func (p *Pool) Submit(t Task, preferredNode int) bool {
	if p.closed.Load() {
		return false
	}
	idx := p.pickWorker(preferredNode)
	p.queues[idx].Enqueue(t)
	select {
	case p.wake[idx] <- struct{}{}:
	default:
	}
	return true
}

func (p *Pool) pickWorker(preferredNode int) int {
	if p.nodeOf == nil || preferredNode < 0 {
		return 0
	}
	for i := range p.queues {
		if p.nodeOf(i) == preferredNode {
			return i
		}
	}
	return 0
}

// Close signals every worker to drain its queue and exit, then blocks
// until all have returned.
func (p *Pool) Close() {
	if p.closed.CompareAndSwap(false, true) {
		close(p.closeCh)
	}
	p.wg.Wait()
}
