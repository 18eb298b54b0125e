package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/pkg/retry"
)

func testConfig(name string) Config {
	cfg := DefaultConfig(name)
	cfg.MinRequests = 2
	cfg.Timeout = time.Hour
	return cfg
}

func TestWrapper_OpensAfterFailures(t *testing.T) {
	w := NewWrapper(testConfig("test-open"))
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		err := w.Execute(context.Background(), func() error { return boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.True(t, w.IsOpen())

	called := false
	err := w.Execute(context.Background(), func() error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, IsOpenError(err))
	assert.False(t, called)
}

func TestWrapper_FatalErrorsDoNotTrip(t *testing.T) {
	w := NewWrapper(testConfig("test-fatal"))

	for i := 0; i < 5; i++ {
		_ = w.Execute(context.Background(), func() error {
			return retry.Permanent(errors.New("422 from provider"))
		})
	}

	assert.Equal(t, gobreaker.StateClosed, w.State())
}

func TestWrapper_CancelledContext(t *testing.T) {
	w := NewWrapper(testConfig("test-ctx"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Execute(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, w.State())
}

func TestWrapper_StateChangeCallback(t *testing.T) {
	var transitions []gobreaker.State
	cfg := testConfig("test-callback")
	cfg.OnStateChange = func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	}
	w := NewWrapper(cfg)

	for i := 0; i < 2; i++ {
		_ = w.Execute(context.Background(), func() error { return errors.New("down") })
	}

	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
	assert.Equal(t, "test-callback", w.Name())
}
