// File: middleware/chain.go
// Author: momentics <momentics@gmail.com>
//
// Ordered, short-circuiting middleware chain per spec.md §4.8: each
// Processor exposes process(ctx) → {success, status?, body?,
// error_message?} and execution stops at the first failure. Grounded
// on the ordering convention of the teacher's
// lowlevel/server/handler_chain.go (NewHandlerChain: "first in slice is
// outermost") and highlevel/server.go's applyMiddleware (middleware
// registered first runs first) — kestrelgw keeps that "registration
// order is execution order" contract but replaces the teacher's
// decorator-wrapping shape (`func(api.Handler) api.Handler`) with a
// flat slice walked front-to-back, since spec.md's processors return a
// result the chain itself inspects to short-circuit, rather than each
// middleware deciding whether to call the next one.
package middleware

// Result is what a single Processor returns.
type Result struct {
	Success      bool
	Status       int
	Body         []byte
	ErrorMessage string
}

// Ok is the zero-value success result; processors that only gate (rate
// limiting, auth) return this to allow the chain to proceed.
func Ok() Result { return Result{Success: true} }

// Fail builds a short-circuiting failure result.
func Fail(status int, errorMessage string) Result {
	return Result{Success: false, Status: status, ErrorMessage: errorMessage}
}

// Processor inspects/mutates ctx and decides whether the chain may
// continue. C is the connection-context type (gwcontext.Context in
// production, a fake in tests).
type Processor[C any] func(ctx C) Result

// Chain runs an ordered sequence of Processors, short-circuiting on the
// first Result with Success == false. Ordering is configuration order:
// a reasonable default puts the most likely rejecters (rate limit,
// auth) first to minimise wasted work, per spec.md §4.8.
type Chain[C any] struct {
	processors []Processor[C]
}

// NewChain builds a Chain from processors in execution order.
func NewChain[C any](processors ...Processor[C]) *Chain[C] {
	return &Chain[C]{processors: processors}
}

// Run executes the chain against ctx, returning the first failing
// Result or a successful Result once every processor has passed.
func (c *Chain[C]) Run(ctx C) Result {
	for _, p := range c.processors {
		if r := p(ctx); !r.Success {
			return r
		}
	}
	return Ok()
}

// Len reports the number of processors in the chain.
func (c *Chain[C]) Len() int { return len(c.processors) }
