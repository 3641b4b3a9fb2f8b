package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/middleware"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// stubResponseHandler records calls instead of writing JSON.
type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any
	writeErrorCalled   bool
	writeErrorStatus   int
	handleErrorCalled  bool
	handleErrorErr     error
}

func (s *stubResponseHandler) WriteSuccess(_ http.ResponseWriter, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data
}

func (s *stubResponseHandler) WriteError(_ http.ResponseWriter, _ *http.Request, status int, _, _ string) {
	s.writeErrorCalled = true
	s.writeErrorStatus = status
}

func (s *stubResponseHandler) HandleError(_ http.ResponseWriter, _ *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleErrorErr = err
}

// withUID injects a UID into the request context.
func withUID(r *http.Request, uid string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UIDKey, uid)
	return r.WithContext(ctx)
}

// withChiParam injects a chi URL parameter into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}
