package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/clouddrive/internal/logging"
	"github.com/dmitrijs2005/clouddrive/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_RequiresSecret(t *testing.T) {
	_, err := NewApp(&config.Config{}, logging.NewNop())
	require.Error(t, err)
}

func TestServe_AnswersAndStopsOnCancel(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_WaitsForInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusAccepted)
	})
	app := &App{logger: logging.NewNop(), handler: slow}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, l) }()

	status := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + l.Addr().String() + "/slow")
		if err != nil {
			status <- 0
			return
		}
		_ = resp.Body.Close()
		status <- resp.StatusCode
	}()

	<-started
	cancel()

	select {
	case <-done:
		t.Fatal("serve returned before the in-flight request finished")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	assert.Equal(t, http.StatusAccepted, <-status)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_ReturnsListenerFailureWithoutCancel(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	done := make(chan error, 1)
	go func() { done <- app.Serve(context.Background(), l) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorContains(t, err, "serve:")
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return on a closed listener")
	}
}
