package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
)

func TestNewHTTPServer(t *testing.T) {
	cfg := HTTPConfig{Port: 8080, MaxHeaderBytes: 1 << 20, ReadTimeout: time.Second, WriteTimeout: 2 * time.Second, IdleTimeout: 3 * time.Second, ReadHeader: 4 * time.Second}
	srv := NewHTTPServer(cfg, http.NotFoundHandler())
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
	assert.Equal(t, 4*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 1<<20, srv.MaxHeaderBytes)
}

func TestNewChiRouter_SetsRequestID(t *testing.T) {
	// given
	mux := NewChiRouter("test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rr := httptest.NewRecorder()
	// when
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	// then
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestNewGRPCServer_Registers(t *testing.T) {
	called := false
	srv := NewGRPCServer(slog.New(slog.NewTextHandler(io.Discard, nil)), true, func(*grpc.Server) { called = true })
	defer srv.Stop()
	assert.True(t, called)
	assert.Contains(t, srv.GetServiceInfo(), "grpc.reflection.v1.ServerReflection")
}
