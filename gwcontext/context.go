// File: gwcontext/context.go
// Author: momentics <momentics@gmail.com>
//
// Per-connection context, grounded on two teacher pieces:
// internal/session/context_store.go's mutex-guarded, TTL-aware
// map-of-entries (reused near-verbatim as the key/value store every
// context embeds for route params and middleware-set values) and
// facade/hioload.go's Config/composition-root struct shape (the set of
// collaborators a top-level object owns and hands down). spec.md §4.9
// additionally names concrete resources the teacher's generic store
// doesn't have; the new fields on top of the reused store are one
// pooled buffer, lazily created per-connection cursor buffers, a
// metrics reference, and a start timer. The Context holds no router
// reference and no vectored buffer pool.
package gwcontext

import (
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"

	"github.com/kestrelgw/kestrel/metrics"
	"github.com/kestrelgw/kestrel/pool"
)

// entry holds a value, its propagation flag, and an optional expiry.
type entry struct {
	value      any
	propagated bool
	expiry     time.Time
}

// store is a thread-safe, TTL-aware key/value map, reused from the
// teacher's contextStore.
type store struct {
	mu   sync.RWMutex
	vals map[string]entry
}

func newStore() *store {
	return &store{vals: make(map[string]entry)}
}

func (s *store) Set(key string, value any, propagated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = entry{value: value, propagated: propagated}
}

func (s *store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.vals[key]
	if !ok {
		return nil, false
	}
	if !e.expiry.IsZero() && time.Now().After(e.expiry) {
		return nil, false
	}
	return e.value, true
}

func (s *store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vals, key)
}

func (s *store) WithExpiration(key string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.vals[key]; ok {
		e.expiry = time.Now().Add(ttl)
		s.vals[key] = e
	}
}

// cursorPoolSize is the number of 64KB cursor buffers a connection's
// lazily-created cursor pool holds, per spec.md §4.9's example sizing.
const cursorPoolSize = 4

// Context wraps one accepted connection: its routing/middleware
// key-value store, one pooled buffer, a start timer, and lazily
// created per-connection cursor buffers (there is no vectored buffer
// pool). Deinit returns
// everything pooled and closes the underlying connection.
type Context struct {
	*store

	Conn    net.Conn
	Buf     pool.Buffer
	Metrics *metrics.Sink
	Started time.Time

	// ID is a per-connection correlation ID for log lines spanning
	// multiple requests on the same connection (HTTP/1.1 keep-alive,
	// HTTP/2 multiplexed streams). Generation failure (entropy
	// exhaustion) is non-fatal; an empty ID just omits correlation.
	ID string

	NUMANode    int
	RouteParams map[string]string

	mgr         *pool.Manager
	cursorsOnce sync.Once
	cursors     []*pool.CursorBuffer
}

// New wraps conn into a fresh Context, pulling one buffer from mgr
// sized bufSize for the connection's scratch reads.
func New(conn net.Conn, mgr *pool.Manager, sink *metrics.Sink, numaNode, bufSize int) *Context {
	id, _ := uuid.GenerateUUID()
	return &Context{
		store:       newStore(),
		Conn:        conn,
		Buf:         mgr.Get(bufSize, numaNode),
		Metrics:     sink,
		Started:     time.Now(),
		ID:          id,
		NUMANode:    numaNode,
		RouteParams: make(map[string]string),
		mgr:         mgr,
	}
}

// Cursors lazily allocates cursorPoolSize 64KB cursor buffers on first
// use and returns them; subsequent calls return the same slice.
func (c *Context) Cursors() []*pool.CursorBuffer {
	c.cursorsOnce.Do(func() {
		c.cursors = make([]*pool.CursorBuffer, cursorPoolSize)
		for i := range c.cursors {
			c.cursors[i] = pool.NewCursorBuffer(c.mgr, 65536, c.NUMANode)
		}
	})
	return c.cursors
}

// Elapsed reports how long this connection's context has been alive.
func (c *Context) Elapsed() time.Duration {
	return time.Since(c.Started)
}

// Deinit returns the pooled buffer and cursor buffers, clears the
// key/value store, and closes the underlying connection.
func (c *Context) Deinit() error {
	c.Buf.Release()
	for _, cb := range c.cursors {
		cb.Release()
	}
	c.store.mu.Lock()
	c.store.vals = nil
	c.store.mu.Unlock()
	return c.Conn.Close()
}
