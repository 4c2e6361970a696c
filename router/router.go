// File: router/router.go
// Author: momentics <momentics@gmail.com>
//
// Method-aware route matching with parameter extraction, grounded on
// the teacher's highlevel/server.go (HandleFuncWithMethods/findHandler/
// convertToRegex: pattern registration, :param regex conversion,
// method allow-lists). kestrelgw replaces the teacher's two backing
// stores — an exact-match map plus a `map[*regexp.Regexp]*RouteHandler`
// walked in randomized Go map-iteration order — with a single ordered
// []*Route slice, since spec.md's "first match wins, ties broken by
// configuration order" cannot hold over a Go map.
package router

import "strings"

// Param is one extracted `:name` path parameter.
type Param struct {
	Name  string
	Value string
}

type routeSegment struct {
	literal   string
	isParam   bool
	paramName string
}

// Route is one registered (methods, pattern, handler) entry. H is the
// handler value type — callers choose what a matched route carries
// (e.g. a request-handling closure or a middleware-wrapped chain).
type Route[H any] struct {
	Pattern    string
	Handler    H
	methods    map[string]bool
	segments   []routeSegment
	isWildcard bool
}

// Router holds routes in registration order and matches them in that
// order, per spec.md §4.8.
type Router[H any] struct {
	routes []*Route[H]
}

// New returns an empty Router.
func New[H any]() *Router[H] {
	return &Router[H]{}
}

// Handle registers pattern for methods. A pattern ending in "/*"
// matches any path sharing its prefix; a pattern containing one or
// more ":name" segments binds those segments positionally; otherwise
// the pattern must equal the request path exactly.
func (r *Router[H]) Handle(pattern string, methods []string, handler H) {
	route := &Route[H]{Pattern: pattern, Handler: handler, methods: toMethodSet(methods)}
	if strings.HasSuffix(pattern, "/*") {
		route.isWildcard = true
		route.segments = splitSegments(strings.TrimSuffix(pattern, "/*"))
	} else {
		route.segments = splitSegments(pattern)
	}
	r.routes = append(r.routes, route)
}

// Match returns the first registered route (in configuration order)
// whose method and path match, along with its extracted parameters.
func (r *Router[H]) Match(method, path string) (handler H, params []Param, ok bool) {
	reqSegs := splitPath(path)
	for _, route := range r.routes {
		if !route.methods[method] {
			continue
		}
		if p, matched := matchSegments(route, reqSegs); matched {
			return route.Handler, p, true
		}
	}
	var zero H
	return zero, nil, false
}

// Routes returns the routes in registration order, for introspection
// (e.g. building an OPTIONS/405 response listing allowed methods).
func (r *Router[H]) Routes() []*Route[H] {
	out := make([]*Route[H], len(r.routes))
	copy(out, r.routes)
	return out
}

func matchSegments[H any](route *Route[H], reqSegs []string) ([]Param, bool) {
	if route.isWildcard {
		if len(reqSegs) < len(route.segments) {
			return nil, false
		}
	} else if len(reqSegs) != len(route.segments) {
		return nil, false
	}
	var params []Param
	for i, seg := range route.segments {
		if seg.isParam {
			params = append(params, Param{Name: seg.paramName, Value: reqSegs[i]})
		} else if seg.literal != reqSegs[i] {
			return nil, false
		}
	}
	return params, true
}

func toMethodSet(methods []string) map[string]bool {
	set := make(map[string]bool, len(methods))
	for _, m := range methods {
		set[m] = true
	}
	return set
}

func splitSegments(pattern string) []routeSegment {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	segs := make([]routeSegment, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, ":") {
			segs = append(segs, routeSegment{isParam: true, paramName: p[1:]})
		} else {
			segs = append(segs, routeSegment{literal: p})
		}
	}
	return segs
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
