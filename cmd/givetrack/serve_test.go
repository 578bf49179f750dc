package main

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"givetrack/internal/log"
)

// blockingServer returns from ListenAndServe as soon as Shutdown starts,
// like http.Server, and takes drainFor to finish Shutdown.
type blockingServer struct {
	stopping chan struct{}
	drainFor time.Duration
	drained  atomic.Bool
	listen   error
}

func newBlockingServer(drainFor time.Duration) *blockingServer {
	return &blockingServer{stopping: make(chan struct{}), drainFor: drainFor}
}

func (s *blockingServer) ListenAndServe() error {
	if s.listen != nil {
		return s.listen
	}
	<-s.stopping
	return http.ErrServerClosed
}

func (s *blockingServer) Shutdown(ctx context.Context) error {
	close(s.stopping)
	time.Sleep(s.drainFor)
	s.drained.Store(true)
	return nil
}

func TestServeWaitsForDrain(t *testing.T) {
	srv := newBlockingServer(100 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second, log.Nop()) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("serve did not return after shutdown")
	}

	if !srv.drained.Load() {
		t.Fatalf("serve returned before shutdown finished draining")
	}
}

func TestServeReturnsListenError(t *testing.T) {
	srv := newBlockingServer(0)
	srv.listen = errors.New("address in use")

	err := serve(context.Background(), srv, time.Second, log.Nop())
	if err == nil || err.Error() != "address in use" {
		t.Fatalf("expected listen error, got %v", err)
	}
}
