package resilience_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpulse/greenpulse/internal/provider/resilience"
)

func TestWaitReady_EventuallyReady(t *testing.T) {
	var probes atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if probes.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := resilience.WaitReady(context.Background(), server.Client(), server.URL, resilience.ReadyConfig{
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		MaxElapsed:      2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), probes.Load())
}

func TestWaitReady_GivesUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := resilience.WaitReady(context.Background(), server.Client(), server.URL, resilience.ReadyConfig{
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		MaxElapsed:      50 * time.Millisecond,
	})
	assert.Error(t, err)
}

func TestWaitReady_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.WaitReady(ctx, nil, "http://127.0.0.1:1/ready", resilience.ReadyConfig{})
	assert.Error(t, err)
}
