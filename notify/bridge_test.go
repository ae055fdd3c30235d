package notify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestBridgeDeliversNudges(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger, _ := test.NewNullLogger()
	hub := NewHub(time.Hour, logger)
	defer hub.Close()
	bridge := NewBridge(hub, client, "", logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bridge.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	var calls atomic.Int64
	ch, unsubscribe := hub.Subscribe("kim", counter(&calls))
	defer unsubscribe()
	receive(t, ch, time.Second)

	// the subscription may not be live yet, so keep nudging until it lands
	waitFor(t, 2*time.Second, func() bool {
		bridge.Nudge(context.Background(), "kim")
		time.Sleep(10 * time.Millisecond)
		return calls.Load() >= 2
	})
}

func TestBridgeWithoutRedisIsLocal(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(time.Hour, logger)
	defer hub.Close()
	bridge := NewBridge(hub, nil, "", logger)
	bridge.Run(context.Background())

	var calls atomic.Int64
	ch, cancel := hub.Subscribe("kim", counter(&calls))
	defer cancel()
	receive(t, ch, time.Second)

	bridge.Nudge(context.Background(), "kim")
	if u := receive(t, ch, time.Second); u.Count != 2 {
		t.Fatalf("expected local nudge, got %+v", u)
	}
}
