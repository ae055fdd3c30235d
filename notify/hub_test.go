package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func counter(n *atomic.Int64) FetchFunc {
	return func(context.Context) (int64, error) {
		return n.Add(1), nil
	}
}

func receive(t *testing.T, ch <-chan Update, timeout time.Duration) Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed")
		}
		return u
	case <-time.After(timeout):
		t.Fatalf("no update within %v", timeout)
	}
	return Update{}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestFirstFetchIsImmediate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(time.Hour, logger)
	defer hub.Close()

	var calls atomic.Int64
	ch, cancel := hub.Subscribe("kim", counter(&calls))
	defer cancel()

	if u := receive(t, ch, time.Second); u.Count != 1 {
		t.Fatalf("unexpected first update: %+v", u)
	}
}

func TestPollsOnInterval(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(20*time.Millisecond, logger)
	defer hub.Close()

	var calls atomic.Int64
	ch, cancel := hub.Subscribe("kim", counter(&calls))
	defer cancel()

	first := receive(t, ch, time.Second)
	second := receive(t, ch, time.Second)
	if second.Count <= first.Count {
		t.Fatalf("expected increasing counts, got %d then %d", first.Count, second.Count)
	}
}

func TestSubscribersShareOnePoller(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(time.Hour, logger)
	defer hub.Close()

	var calls atomic.Int64
	ch1, cancel1 := hub.Subscribe("kim", counter(&calls))
	receive(t, ch1, time.Second)

	var other atomic.Int64
	ch2, cancel2 := hub.Subscribe("kim", counter(&other))
	if u := receive(t, ch2, time.Second); u.Count != 1 {
		t.Fatalf("late subscriber should get the latest value, got %+v", u)
	}
	if other.Load() != 0 {
		t.Fatalf("joining a running poller must not fetch")
	}
	if hub.Active() != 1 {
		t.Fatalf("expected one poller, got %d", hub.Active())
	}

	cancel1()
	if hub.Active() != 1 {
		t.Fatalf("poller must survive while a subscriber remains")
	}
	cancel2()
	cancel2()
	if hub.Active() != 0 {
		t.Fatalf("expected poller stopped after last cancel")
	}
	if _, ok := <-ch1; ok {
		t.Fatalf("expected cancelled channel to be closed")
	}
}

func TestPollerStopsFetchingAfterLastCancel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(10*time.Millisecond, logger)
	defer hub.Close()

	var calls atomic.Int64
	ch, cancel := hub.Subscribe("kim", counter(&calls))
	receive(t, ch, time.Second)
	cancel()

	time.Sleep(20 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != settled {
		t.Fatalf("poller kept fetching after cancel: %d -> %d", settled, calls.Load())
	}
}

func TestFailedFetchIsLoggedAndRetried(t *testing.T) {
	logger, hook := test.NewNullLogger()
	hub := NewHub(10*time.Millisecond, logger)
	defer hub.Close()

	var calls atomic.Int64
	fetch := func(context.Context) (int64, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("upstream down")
		}
		return 3, nil
	}
	ch, cancel := hub.Subscribe("kim", fetch)
	defer cancel()

	if u := receive(t, ch, time.Second); u.Count != 3 {
		t.Fatalf("unexpected update after failure: %+v", u)
	}
	waitFor(t, time.Second, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Message == "unread count poll failed" && e.Data["subject"] == "kim" {
				return true
			}
		}
		return false
	})
}

func TestSlowSubscriberKeepsLatest(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(5*time.Millisecond, logger)
	defer hub.Close()

	var calls atomic.Int64
	ch, cancel := hub.Subscribe("kim", counter(&calls))
	defer cancel()

	waitFor(t, time.Second, func() bool { return calls.Load() >= 5 })
	u := receive(t, ch, time.Second)
	if u.Count < 4 {
		t.Fatalf("expected a recent value, got %d after %d fetches", u.Count, calls.Load())
	}
}

func TestNudgeFetchesNow(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(time.Hour, logger)
	defer hub.Close()

	var calls atomic.Int64
	ch, cancel := hub.Subscribe("kim", counter(&calls))
	defer cancel()
	receive(t, ch, time.Second)

	hub.Nudge("kim")
	if u := receive(t, ch, time.Second); u.Count != 2 {
		t.Fatalf("expected nudged fetch, got %+v", u)
	}
	hub.Nudge("nobody")
}

func TestCloseClosesSubscribers(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(time.Hour, logger)

	var calls atomic.Int64
	ch, cancel := hub.Subscribe("kim", counter(&calls))
	receive(t, ch, time.Second)

	hub.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed")
	}
	cancel()
	hub.Close()

	late, _ := hub.Subscribe("kim", counter(&calls))
	if _, ok := <-late; ok {
		t.Fatalf("subscribing to a closed hub should yield a closed channel")
	}
}

func TestPollerFetchesWithNewestSubscriber(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(time.Hour, logger)
	defer hub.Close()

	var stale atomic.Int64
	ch1, cancel1 := hub.Subscribe("kim", counter(&stale))
	receive(t, ch1, time.Second)

	var fresh atomic.Int64
	ch2, cancel2 := hub.Subscribe("kim", func(context.Context) (int64, error) {
		return 100 + fresh.Add(1), nil
	})
	defer cancel2()
	receive(t, ch2, time.Second)

	cancel1()
	hub.Nudge("kim")
	if u := receive(t, ch2, time.Second); u.Count != 101 {
		t.Fatalf("expected count from the remaining subscriber's fetch, got %+v", u)
	}
	if stale.Load() != 1 {
		t.Fatalf("departed subscriber's fetch was called %d times", stale.Load())
	}
}

func TestPollerFallsBackToOlderSubscriber(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(time.Hour, logger)
	defer hub.Close()

	var older atomic.Int64
	ch1, cancel1 := hub.Subscribe("kim", counter(&older))
	defer cancel1()
	receive(t, ch1, time.Second)

	var newer atomic.Int64
	ch2, cancel2 := hub.Subscribe("kim", counter(&newer))
	receive(t, ch2, time.Second)
	hub.Nudge("kim")
	waitFor(t, time.Second, func() bool { return newer.Load() == 1 })
	receive(t, ch1, time.Second)

	cancel2()
	hub.Nudge("kim")
	if u := receive(t, ch1, time.Second); u.Count != 2 {
		t.Fatalf("expected the older subscriber's fetch to resume, got %+v", u)
	}
	if newer.Load() != 1 {
		t.Fatalf("cancelled subscriber's fetch was called %d times", newer.Load())
	}
}
