package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(context.Context) error { return p.err }

// hangingPinger blocks until its context is done.
type hangingPinger struct{}

func (hangingPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestHealth_Check(t *testing.T) {
	ctx := context.Background()
	pinger := &stubPinger{}
	h := NewHealth(pinger, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// store reachable
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.Check(ctx))
	resp, err := h.Server().Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	// store down
	pinger.err = errors.New("no primary")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, h.Check(ctx))
	resp, err = h.Server().Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestHealth_Shutdown(t *testing.T) {
	ctx := context.Background()
	h := NewHealth(&stubPinger{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.Check(ctx)

	h.Shutdown()

	resp, err := h.Server().Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestHealth_HungStoreTimesOut(t *testing.T) {
	// given
	h := NewHealth(hangingPinger{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	start := time.Now()

	// when
	status := h.check(context.Background(), 20*time.Millisecond)

	// then
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHealth_MonitorKeepsTickingWithHungStore(t *testing.T) {
	// given
	h := NewHealth(hangingPinger{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// when
	go func() {
		h.Monitor(ctx, 20*time.Millisecond)
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()

	// then
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Monitor did not return after cancel")
	}
	resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
