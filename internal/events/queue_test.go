package events_test

import (
	"testing"
	"time"

	"go.uber.org/goleak"

	"audittray/internal/events"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestQueuePreservesOrderWithoutBlocking(t *testing.T) {
	q := events.NewQueue[int]()
	defer q.Close()

	const n = 10000
	for i := 0; i < n; i++ {
		if !q.Push(i) {
			t.Fatalf("push %d rejected", i)
		}
	}
	for i := 0; i < n; i++ {
		if got := receive(t, q.Out()); got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
}

func TestQueueCloseStopsDelivery(t *testing.T) {
	q := events.NewQueue[string]()
	q.Push("pending")
	q.Close()
	q.Close()

	if q.Push("late") {
		t.Fatal("push after close should be rejected")
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-q.Out():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Out was not closed")
		}
	}
}

func TestTriggerPushesEveryClick(t *testing.T) {
	q := events.NewQueue[events.WakeEvent]()
	defer q.Close()
	trigger := events.NewTrigger(q)

	for i := 0; i < 3; i++ {
		if !trigger.Click() {
			t.Fatal("click rejected")
		}
	}
	for i := 0; i < 3; i++ {
		if got := receive(t, q.Out()); got != events.UserClick {
			t.Fatalf("expected UserClick, got %s", got)
		}
	}

	var nilTrigger *events.Trigger
	if nilTrigger.Click() {
		t.Fatal("nil trigger should not accept clicks")
	}
}
