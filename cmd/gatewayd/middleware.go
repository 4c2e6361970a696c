// File: cmd/gatewayd/middleware.go
// Author: momentics <momentics@gmail.com>
//
// Built-in named middleware, grounded on the teacher's
// highlevel/server.go LoggingMiddleware/MetricsMiddleware (fmt.Printf
// around next(conn), atomic connection counter) — adapted from the
// teacher's decorator-wrapping shape to the gateway's short-circuiting
// Processor[C] contract: these two never fail the chain, they only
// observe.
package main

import (
	"github.com/kestrelgw/kestrel/gwcontext"
	"github.com/kestrelgw/kestrel/gwlog"
	"github.com/kestrelgw/kestrel/metrics"
	"github.com/kestrelgw/kestrel/middleware"
)

// loggingProcessor logs one line per request with method, path, and
// elapsed time since the connection's context was created.
func loggingProcessor(log gwlog.Logger) middleware.Processor[*gwcontext.Context] {
	return func(ctx *gwcontext.Context) middleware.Result {
		log.Debug("request", "conn_id", ctx.ID, "elapsed_ms", ctx.Elapsed().Milliseconds(), "numa_node", ctx.NUMANode)
		return middleware.Ok()
	}
}

// metricsProcessor increments the gateway's request counter. Duration
// is recorded by the caller once the response is known, since this
// processor only runs before dispatch.
func metricsProcessor(sink *metrics.Sink) middleware.Processor[*gwcontext.Context] {
	return func(ctx *gwcontext.Context) middleware.Result {
		if sink != nil {
			sink.RequestsTotal.WithLabelValues("", "").Inc()
		}
		return middleware.Ok()
	}
}

// namedProcessors resolves spec.md §4.8's configured middleware names
// to Processor values. Names with no registered implementation are
// skipped rather than failing route setup, since the built-in set is
// intentionally small.
func namedProcessors(names []string, log gwlog.Logger, sink *metrics.Sink) []middleware.Processor[*gwcontext.Context] {
	registry := map[string]middleware.Processor[*gwcontext.Context]{
		"logging": loggingProcessor(log),
		"metrics": metricsProcessor(sink),
	}
	out := make([]middleware.Processor[*gwcontext.Context], 0, len(names))
	for _, n := range names {
		if p, ok := registry[n]; ok {
			out = append(out, p)
		}
	}
	return out
}
