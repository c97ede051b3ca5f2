// Package grpcserver exposes the scraper's health over gRPC and, through
// grpc-gateway, over HTTP at /healthz.
package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/narwhalmedia/scraper/internal/config"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

const refreshInterval = 15 * time.Second

// CheckFunc reports whether a dependency is healthy
type CheckFunc func(ctx context.Context) error

// Server serves the health protocol for the scraper
type Server struct {
	cfg      config.ServerConfig
	grpc     *grpc.Server
	health   *health.Server
	registry *scraping.Registry
	logger   *zap.Logger

	mu     sync.Mutex
	checks map[string]CheckFunc
}

// New creates the gRPC server with the health service registered
func New(cfg config.ServerConfig, registry *scraping.Registry, logger *zap.Logger) *Server {
	logger = logger.Named("grpc")
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			UnaryRecoveryInterceptor(logger),
			UnaryLoggingInterceptor(logger),
		),
		grpc.ChainStreamInterceptor(
			StreamRecoveryInterceptor(logger),
			StreamLoggingInterceptor(logger),
		),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthServer)
	reflection.Register(srv)

	return &Server{
		cfg:      cfg,
		grpc:     srv,
		health:   healthServer,
		registry: registry,
		logger:   logger,
		checks:   make(map[string]CheckFunc),
	}
}

// AddCheck registers a dependency check evaluated on every refresh
func (s *Server) AddCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Refresh evaluates every check and publishes the overall status under both
// the empty service name and the configured service name.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	s.mu.Lock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(s.checks))
	for name, check := range s.checks {
		checks[name] = check
	}
	s.mu.Unlock()
	sort.Strings(names)

	status := healthpb.HealthCheckResponse_SERVING
	if !s.registry.Usable() {
		s.logger.Warn("No usable backends")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.cfg.ServiceName, status)
	return status
}

// Serve runs the gRPC and HTTP listeners until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		grpcLis.Close()
		return fmt.Errorf("failed to dial gRPC server: %w", err)
	}
	defer conn.Close()

	mux := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.Refresh(ctx)

	errCh := make(chan error, 2)
	go func() {
		s.logger.Info("starting gRPC server", zap.Int("port", s.cfg.GRPCPort))
		errCh <- s.grpc.Serve(grpcLis)
	}()
	go func() {
		s.logger.Info("starting HTTP health endpoint", zap.Int("port", s.cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	var serveErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			s.Refresh(ctx)
		case serveErr = <-errCh:
			break loop
		}
	}

	s.health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTime)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	s.grpc.GracefulStop()
	return serveErr
}
