package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDMiddleware_GeneratesUUID(t *testing.T) {
	var captured string
	handler := NewRequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(captured); err != nil {
		t.Fatalf("request id %q is not a UUID: %v", captured, err)
	}
	if got := w.Result().Header.Get(RequestIDHeader); got != captured {
		t.Errorf("%s header = %q, want %q", RequestIDHeader, got, captured)
	}
}

func TestRequestIDMiddleware_PropagatesIncomingID(t *testing.T) {
	var captured string
	handler := NewRequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if captured != "upstream-id-1" {
		t.Errorf("request id = %q, want %q", captured, "upstream-id-1")
	}
	if got := w.Result().Header.Get(RequestIDHeader); got != "upstream-id-1" {
		t.Errorf("%s header = %q, want %q", RequestIDHeader, got, "upstream-id-1")
	}
}

func TestRequestIDMiddleware_ReplacesOversizedID(t *testing.T) {
	var captured string
	handler := NewRequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if _, err := uuid.Parse(captured); err != nil {
		t.Errorf("expected a fresh UUID, got %q", captured)
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}
}
