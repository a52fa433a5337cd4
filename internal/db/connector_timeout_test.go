package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testhelpers "github.com/vvka-141/metdbload/internal/testing"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

func TestStandardConnector_RespectsContextTimeout(t *testing.T) {
	cfg := testConnectionConfig()
	cfg.Host = "nonexistent.invalid"
	c := NewStandardConnector(cfg, testhelpers.NewCaptureLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	pool, err := c.Connect(ctx)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Less(t, elapsed, 2*time.Second, "retries must stop at the context deadline")
}

func TestNewRetryExecutor_MaxDelayConstraint(t *testing.T) {
	var delays []time.Duration
	executor := newRetryExecutor(testhelpers.NewCaptureLogger()).WithOnRetry(func(_ int, _ error, delay time.Duration) {
		delays = append(delays, delay)
	})

	err := executor.Execute(context.Background(), func(context.Context) error {
		return errors.New("connection refused")
	})
	require.Error(t, err)

	require.Len(t, delays, metdbload.DefaultRetryMaxAttempts)
	for _, d := range delays {
		assert.Positive(t, d)
		assert.LessOrEqual(t, d, metdbload.DefaultRetryMaxDelay)
	}
}
