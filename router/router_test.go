package router

import "testing"

func TestRouterExactMatch(t *testing.T) {
	r := New[string]()
	r.Handle("/health", []string{"GET"}, "health-handler")

	h, params, ok := r.Match("GET", "/health")
	if !ok || h != "health-handler" {
		t.Fatalf("expected exact match, got ok=%v h=%q", ok, h)
	}
	if len(params) != 0 {
		t.Fatalf("expected no params, got %v", params)
	}
}

func TestRouterMethodMismatch(t *testing.T) {
	r := New[string]()
	r.Handle("/widgets", []string{"GET"}, "list-widgets")

	if _, _, ok := r.Match("POST", "/widgets"); ok {
		t.Fatal("expected no match for disallowed method")
	}
}

func TestRouterParamExtraction(t *testing.T) {
	r := New[string]()
	r.Handle("/users/:id/messages/:messageId", []string{"GET"}, "get-message")

	h, params, ok := r.Match("GET", "/users/42/messages/99")
	if !ok || h != "get-message" {
		t.Fatalf("expected match, got ok=%v h=%q", ok, h)
	}
	want := []Param{{Name: "id", Value: "42"}, {Name: "messageId", Value: "99"}}
	if len(params) != len(want) || params[0] != want[0] || params[1] != want[1] {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestRouterParamDoesNotCrossSlash(t *testing.T) {
	r := New[string]()
	r.Handle("/users/:id", []string{"GET"}, "get-user")

	if _, _, ok := r.Match("GET", "/users/1/extra"); ok {
		t.Fatal("expected :id segment not to absorb additional path segments")
	}
}

func TestRouterWildcardMatchesPrefix(t *testing.T) {
	r := New[string]()
	r.Handle("/static/*", []string{"GET"}, "static-files")

	h, _, ok := r.Match("GET", "/static/css/app.css")
	if !ok || h != "static-files" {
		t.Fatalf("expected wildcard match, got ok=%v h=%q", ok, h)
	}
}

func TestRouterFirstMatchWinsInConfigurationOrder(t *testing.T) {
	r := New[string]()
	r.Handle("/users/:id", []string{"GET"}, "generic-user")
	r.Handle("/users/admin", []string{"GET"}, "admin-user")

	// "/users/:id" was registered first, so it wins even though
	// "/users/admin" would also match literally.
	h, params, ok := r.Match("GET", "/users/admin")
	if !ok || h != "generic-user" {
		t.Fatalf("expected first-registered route to win, got h=%q", h)
	}
	if len(params) != 1 || params[0].Value != "admin" {
		t.Fatalf("unexpected params: %+v", params)
	}
}
