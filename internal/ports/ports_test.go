package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func check(name string, err error) CheckFunc {
	return CheckFunc{CheckName: name, Fn: func(context.Context) error { return err }}
}

func TestHealthRegistry_Register(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(check("quote-api", nil)))

	err := registry.Register(check("quote-api", nil))
	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.ErrorContains(t, err, "quote-api")

	assert.Len(t, registry.CheckAll(context.Background()).Checks, 1)
}

func TestHealthRegistry_CheckAll(t *testing.T) {
	tests := map[string]struct {
		checks []CheckFunc
		want   HealthStatus
	}{
		"none":    {nil, HealthStatusHealthy},
		"healthy": {[]CheckFunc{check("quote-api", nil), check("sync_queue", nil)}, HealthStatusHealthy},
		"one down": {
			[]CheckFunc{check("quote-api", nil), check("sync_queue", errors.New("queue closed")), check("sessions", nil)},
			HealthStatusUnhealthy,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for _, c := range tt.checks {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(context.Background())

			assert.Equal(t, tt.want, result.Status)
			assert.Len(t, result.Checks, len(tt.checks))
			assert.False(t, result.Timestamp.IsZero())

			for _, c := range tt.checks {
				got := result.Checks[c.CheckName]
				require.NotNil(t, got)

				if err := c.Fn(context.Background()); err != nil {
					assert.Equal(t, HealthStatusUnhealthy, got.Status)
					assert.Equal(t, err.Error(), got.Message)
				} else {
					assert.Equal(t, HealthStatusHealthy, got.Status)
					assert.Empty(t, got.Message)
				}
			}
		})
	}
}

func TestHealthRegistry_Timeout(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Timeout = 20 * time.Millisecond

	require.NoError(t, registry.Register(CheckFunc{CheckName: "slow", Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["slow"].Message, "deadline exceeded")
}

func TestHealthRegistry_CancelledContext(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(CheckFunc{CheckName: "sessions", Fn: func(ctx context.Context) error {
		return ctx.Err()
	}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["sessions"].Message, "context canceled")
}

func TestHealthRegistry_Panic(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(CheckFunc{CheckName: "broken", Fn: func(context.Context) error {
		panic("nil breaker")
	}}))
	require.NoError(t, registry.Register(check("sessions", nil)))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Equal(t, "panic: nil breaker", result.Checks["broken"].Message)
	assert.Equal(t, HealthStatusHealthy, result.Checks["sessions"].Status)
}

func TestViewerContext(t *testing.T) {
	ctx := WithViewer(context.Background(), &Viewer{SessionID: "s-1", UserID: "u-1", Token: "tok"})

	v := ViewerFromContext(ctx)
	require.NotNil(t, v)
	assert.Equal(t, "u-1", v.UserID)
	assert.False(t, v.Anonymous())
	assert.Equal(t, "tok", TokenFromContext(ctx))
}

func TestViewerContext_Guest(t *testing.T) {
	ctx := WithViewer(context.Background(), &Viewer{SessionID: "s-2"})

	assert.True(t, ViewerFromContext(ctx).Anonymous())
	assert.Empty(t, TokenFromContext(ctx))
}

func TestViewerContext_Missing(t *testing.T) {
	assert.Nil(t, ViewerFromContext(context.Background()))
	assert.Empty(t, TokenFromContext(context.Background()))

	var v *Viewer
	assert.True(t, v.Anonymous())
}
