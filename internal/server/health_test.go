package server

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type fakeStats struct {
	active atomic.Int64
}

func (f *fakeStats) GetActiveGameCount() int { return int(f.active.Load()) }

func (f *fakeStats) HaltedGameCount() int { return 0 }

func dialHealth(t *testing.T, hs *HealthService) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(ChainUnaryInterceptors(
		RecoveryInterceptor(zaptest.NewLogger(t)),
		LoggingInterceptor(zaptest.NewLogger(t)),
	)))
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthServiceCapacity(t *testing.T) {
	stats := &fakeStats{}
	hs := NewHealthService(stats, 2, zaptest.NewLogger(t))
	client := dialHealth(t, hs)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, GameServiceName))

	stats.active.Store(2)
	hs.Update()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, GameServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))

	stats.active.Store(1)
	hs.Update()
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, GameServiceName))
}

func TestHealthServiceUnlimited(t *testing.T) {
	stats := &fakeStats{}
	stats.active.Store(500)
	hs := NewHealthService(stats, 0, zaptest.NewLogger(t))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hs.Update())
}

func TestHealthServiceShutdown(t *testing.T) {
	hs := NewHealthService(&fakeStats{}, 0, zaptest.NewLogger(t))
	client := dialHealth(t, hs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hs.Run(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()
	<-done

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, GameServiceName))
}
