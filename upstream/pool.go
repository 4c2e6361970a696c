// File: upstream/pool.go
// Author: momentics <momentics@gmail.com>
//
// Pool caches one Entry per canonical upstream URL, per spec.md §4.10.
// Grounded on the teacher's buffer-pool-manager idiom of a
// mutex-guarded map keyed by a small discriminator (pool/numapool.go's
// map[node]*slabPool), generalized here to map[url]*Entry with the
// same get-or-create-under-lock shape.
package upstream

import (
	"context"
	"net"
	"sync"

	"github.com/kestrelgw/kestrel/gwerrors"
	"github.com/kestrelgw/kestrel/gwlog"
	"github.com/kestrelgw/kestrel/h2"
)

// Pool maps canonical upstream URLs to their connection Entry.
type Pool struct {
	mu          sync.RWMutex
	entries     map[string]*Entry
	dialer      *net.Dialer
	log         gwlog.Logger
	maxAttempts int
}

// NewPool builds an empty Pool. maxAttempts bounds connect retries per
// entry (spec.md's upstream-failure disposition: exhausting retries
// yields a 502-equivalent response, not an indefinite retry loop).
func NewPool(dialer *net.Dialer, log gwlog.Logger, maxAttempts int) *Pool {
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	return &Pool{
		entries:     make(map[string]*Entry),
		dialer:      dialer,
		log:         log,
		maxAttempts: maxAttempts,
	}
}

func (p *Pool) entryFor(target string) *Entry {
	p.mu.RLock()
	e, ok := p.entries[target]
	p.mu.RUnlock()
	if ok {
		return e
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[target]; ok {
		return e
	}
	e = newEntry(target, p.dialer, p.maxAttempts, p.log)
	p.entries[target] = e
	return e
}

// Forward acquires (or creates) the Entry for target and round-trips
// one request through it. A connect or stream failure is translated to
// a 502-equivalent response per spec.md's error-handling table, with
// the underlying error also returned for logging.
func (p *Pool) Forward(ctx context.Context, target string, headers []h2.HeaderField, body []byte) ([]h2.HeaderField, []byte, error) {
	e := p.entryFor(target)
	respHeaders, respBody, err := e.Do(ctx, headers, body)
	if err != nil {
		wrapped := gwerrors.New(gwerrors.CodeUpstreamUnreachable, "upstream request failed").
			WithContext("target", target).WithContext("cause", err.Error())
		return []h2.HeaderField{{Name: ":status", Value: "502"}}, nil, wrapped
	}
	return respHeaders, respBody, nil
}

// Len reports the number of distinct upstream targets currently cached.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
