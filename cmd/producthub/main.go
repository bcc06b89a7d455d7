// Package main runs the ProductHub HTTP and gRPC servers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/producthub/internal/app"
	"github.com/abgdnv/producthub/internal/config"
	"github.com/abgdnv/producthub/internal/store"
	"github.com/abgdnv/producthub/pkg/bootstrap"
	"github.com/abgdnv/producthub/pkg/config/configloader"
	"github.com/abgdnv/producthub/pkg/messaging"
	"github.com/abgdnv/producthub/pkg/nats"
	"github.com/abgdnv/producthub/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads configuration, connects to MongoDB and NATS, and serves HTTP, gRPC and pprof until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](app.ServiceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Traces.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, app.ServiceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "tracer provider", cfg.Shutdown.Timeout, tp.Shutdown)
	}

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		mp, handler, err := telemetry.NewMeterProvider(app.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "meter provider", cfg.Shutdown.Timeout, mp.Shutdown)
		metricsHandler = handler
	}

	mongoClient, err := bootstrap.NewMongoClient(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer shutdownWithTimeout(logger, "MongoDB client", cfg.Shutdown.Timeout, mongoClient.Disconnect)
	logger.Info("Successfully connected to MongoDB!")

	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		return err
	}

	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if cfg.NATS.Enabled {
		nc, err := nats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
		if err != nil {
			return err
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("NATS drain failed", "error", err)
			}
		}()
		js, err := nats.NewJetStreamContext(nc)
		if err != nil {
			return err
		}
		if err := nats.EnsureStream(ctx, js, cfg.NATS.Stream, messaging.ProductsSubjects); err != nil {
			return err
		}
		publisher = nats.NewNatsPublisher(js)
		logger.Info("Publishing product events to NATS", slog.String("stream", cfg.NATS.Stream))
	}

	deps := app.SetupDependencies(mongoStore, publisher, cfg.Resilience.CircuitBreaker, logger)
	deps.MetricsHandler = metricsHandler

	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	pprofServer := &http.Server{
		Addr: cfg.PProf.Addr,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Keep gRPC health in line with the store
	g.Go(func() error {
		deps.Health.Monitor(gCtx, cfg.Health.Interval)
		return nil
	})

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the gRPC server
	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	// gracefully shutdown gRPC server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gRPC server...")
		deps.Health.Shutdown()
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// shutdownWithTimeout runs fn with a fresh context bounded by timeout and logs a failure.
func shutdownWithTimeout(logger *slog.Logger, name string, timeout time.Duration, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("Shutdown failed", "component", name, "error", err)
	}
}
