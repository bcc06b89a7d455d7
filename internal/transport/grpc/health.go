// Package grpc exposes the standard gRPC health service for the product store.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/abgdnv/producthub/pkg/server"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health entry tracking the product catalog.
const ServiceName = "producthub.ProductService"

// defaultPingTimeout bounds a single store ping made through Check.
const defaultPingTimeout = 5 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health wraps the grpc health server and keeps its status in line with the store.
type Health struct {
	server *health.Server
	store  Pinger
	logger *slog.Logger
}

func NewHealth(store Pinger, logger *slog.Logger) *Health {
	return &Health{
		server: health.NewServer(),
		store:  store,
		logger: logger.With("component", "grpc-health"),
	}
}

// Registration registers the health service with a grpc server.
func (h *Health) Registration() server.RegistrationFunc {
	return func(s *grpc.Server) {
		healthpb.RegisterHealthServer(s, h.server)
	}
}

// Check pings the store once and publishes the result for both the overall and the product entry.
func (h *Health) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	return h.check(ctx, defaultPingTimeout)
}

// check reports NOT_SERVING when the ping fails or outlasts timeout.
func (h *Health) check(ctx context.Context, timeout time.Duration) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(pingCtx); err != nil {
		h.logger.WarnContext(ctx, "Store ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Monitor checks the store every interval until ctx is done. A ping may take at most one interval.
func (h *Health) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	h.check(ctx, interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.check(ctx, interval)
		}
	}
}

// Shutdown marks every entry NOT_SERVING and stops watchers.
func (h *Health) Shutdown() {
	h.server.Shutdown()
}

// Server exposes the underlying health server.
func (h *Health) Server() healthpb.HealthServer {
	return h.server
}
