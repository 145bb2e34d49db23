package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallel2_BothSucceed(t *testing.T) {
	a, b, err := Parallel2(context.Background(),
		func(context.Context) (int, error) { return 7, nil },
		func(context.Context) (string, error) { return "reviews", nil },
	)
	require.NoError(t, err)

	assert.Equal(t, 7, a)
	assert.Equal(t, "reviews", b)
}

func TestParallel2_FailureCancelsSibling(t *testing.T) {
	boom := errors.New("stats down")

	var cancelled atomic.Bool

	a, b, err := Parallel2(context.Background(),
		func(context.Context) (int, error) { return 0, boom },
		func(ctx context.Context) (string, error) {
			select {
			case <-ctx.Done():
				cancelled.Store(true)
				return "", ctx.Err()
			case <-time.After(time.Second):
				return "late", nil
			}
		},
	)

	require.ErrorIs(t, err, boom)
	assert.Zero(t, a)
	assert.Empty(t, b)
	assert.True(t, cancelled.Load())
}

func TestBestEffort(t *testing.T) {
	var ran atomic.Int32

	failed := BestEffort(context.Background(),
		Task{Name: "categories", Run: func(context.Context) error { ran.Add(1); return nil }},
		Task{Name: "stats", Run: func(context.Context) error { ran.Add(1); return errors.New("503") }},
		Task{Name: "reviews", Run: func(context.Context) error { ran.Add(1); return nil }},
	)

	assert.Equal(t, int32(3), ran.Load())
	require.Len(t, failed, 1)
	assert.EqualError(t, failed["stats"], "503")
}

func TestBestEffort_NoTasks(t *testing.T) {
	assert.Empty(t, BestEffort(context.Background()))
}
