package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/CristiGvl/picoHWMQTT/api"
	"github.com/CristiGvl/picoHWMQTT/internal/logger"
	"github.com/CristiGvl/picoHWMQTT/internal/status"
)

func TestStatusAPIListenFailureIsNotFatal(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	server := api.NewServer(status.NewStore(), prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- runStatusAPI(ctx, server, busy.Addr().String(), logger.Discard())
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected listener failure to be swallowed, got %v", err)
		}
		if ctx.Err() != nil {
			t.Fatal("expected the shared context to stay alive")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected runStatusAPI to return after the listener failed")
	}
}
