// Package app contains the application setup for ProductHub.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abgdnv/producthub/internal/config"
	"github.com/abgdnv/producthub/internal/service"
	"github.com/abgdnv/producthub/internal/store"
	grpcImpl "github.com/abgdnv/producthub/internal/transport/grpc"
	"github.com/abgdnv/producthub/internal/transport/rest"
	pkgconfig "github.com/abgdnv/producthub/pkg/config"
	"github.com/abgdnv/producthub/pkg/messaging"
	"github.com/abgdnv/producthub/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
)

// ServiceName names the service in traces, metrics and configuration.
const ServiceName = "producthub"

// Store is a ProductStore that can report whether its backend is reachable.
type Store interface {
	store.ProductStore
	Ping(ctx context.Context) error
}

type Dependencies struct {
	ProductService service.ProductService
	Store          Store
	Health         *grpcImpl.Health
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// SetupDependencies builds the service graph over backing, wrapping it in a circuit breaker when enabled.
func SetupDependencies(backing Store, publisher messaging.Publisher, cb pkgconfig.CircuitBreakerConfig, logger *slog.Logger) *Dependencies {
	var productStore store.ProductStore = backing
	if cb.Enabled {
		productStore = store.NewBreakerStore(backing, cb)
	}

	return &Dependencies{
		ProductService: service.NewService(productStore, publisher, logger),
		Store:          backing,
		Health:         grpcImpl.NewHealth(backing, logger),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the routes and middleware of the HTTP API.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(ServiceName, deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for ProductHub.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Store, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures the HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer initializes the gRPC server carrying the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, deps.Health.Registration())
}
