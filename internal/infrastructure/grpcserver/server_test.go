package grpcserver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/narwhalmedia/scraper/internal/config"
	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

type fakeBackend struct {
	initialized bool
}

func (b fakeBackend) Name() string      { return "fake" }
func (b fakeBackend) Initialized() bool { return b.initialized }
func (b fakeBackend) Query(context.Context, media.Item) (map[string]scraping.RawResult, error) {
	return nil, nil
}

func newServer(t *testing.T, usable bool) *Server {
	t.Helper()
	registry, err := scraping.NewRegistry(zap.NewNop(), fakeBackend{initialized: usable})
	require.NoError(t, err)
	return New(config.ServerConfig{ServiceName: "scraper", GRPCPort: 9090, HTTPPort: 8080}, registry, zap.NewNop())
}

func servingStatus(t *testing.T, s *Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestRefresh(t *testing.T) {
	s := newServer(t, true)
	natsDown := errors.New("nats down")
	var natsErr error
	s.AddCheck("nats", func(context.Context) error { return natsErr })

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, s.Refresh(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, s, "scraper"))

	natsErr = natsDown
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, s.Refresh(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, s, ""))
}

func TestRefreshWithoutUsableBackends(t *testing.T) {
	s := newServer(t, false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, s.Refresh(context.Background()))
}

func TestUnaryRecoveryInterceptor(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	interceptor := UnaryRecoveryInterceptor(zap.New(core))

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"},
		func(context.Context, interface{}) (interface{}, error) { panic("boom") })

	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestUnaryLoggingInterceptorLevels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	interceptor := UnaryLoggingInterceptor(zap.New(core))
	ok := func(context.Context, interface{}) (interface{}, error) { return "ok", nil }

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: healthMethodPrefix + "Check"}, ok)
	require.NoError(t, err)
	assert.Zero(t, logs.Len(), "health probes log at debug")

	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"},
		func(context.Context, interface{}) (interface{}, error) {
			return nil, status.Error(codes.Unavailable, "down")
		})
	require.Error(t, err)
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "Unavailable", entries[0].ContextMap()["code"])
}
