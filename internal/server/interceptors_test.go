package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/magblast.Test/Call"}

func TestChainUnaryInterceptorsOrder(t *testing.T) {
	var calls []string
	record := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			calls = append(calls, name+" before")
			resp, err := handler(ctx, req)
			calls = append(calls, name+" after")
			return resp, err
		}
	}

	chain := ChainUnaryInterceptors(record("outer"), record("inner"))
	resp, err := chain(context.Background(), "req", testInfo, func(ctx context.Context, req any) (any, error) {
		calls = append(calls, "handler")
		return req.(string) + " done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "req done", resp)
	assert.Equal(t, []string{"outer before", "inner before", "handler", "inner after", "outer after"}, calls)
}

func TestChainUnaryInterceptorsEmpty(t *testing.T) {
	resp, err := ChainUnaryInterceptors()(context.Background(), 1, testInfo, func(ctx context.Context, req any) (any, error) {
		return req, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp)
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zaptest.NewLogger(t))

	_, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	interceptor := LoggingInterceptor(zaptest.NewLogger(t))
	want := status.Error(codes.NotFound, "missing")

	_, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		return nil, want
	})
	assert.True(t, errors.Is(err, want))
	assert.Equal(t, codes.NotFound, status.Code(err))
}
