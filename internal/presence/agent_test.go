package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arman-h/arvis-core/internal/bus"
	"github.com/arman-h/arvis-core/internal/state"
)

// collector counts bus events by type.
type collector struct {
	mu     sync.Mutex
	counts map[string]int
}

func collect(b *bus.Bus, types ...string) *collector {
	c := &collector{counts: make(map[string]int)}
	for _, eventType := range types {
		et := eventType
		b.Subscribe(et, func(context.Context, bus.Event) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.counts[et]++
			return nil
		})
	}
	return c
}

func (c *collector) count(eventType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[eventType]
}

func motionEvent() bus.Event {
	return bus.NewEvent(EventMotionDetected, "test", map[string]any{"sensor_id": "pir1"})
}

func newTestAgent(timeout time.Duration) (*Agent, *bus.Bus, *state.Manager) {
	b := bus.New()
	sm := state.NewManager(b)
	agent := NewAgent(b, sm, AgentConfig{
		OccupancyTimeout: timeout,
		CheckInterval:    30 * time.Second,
	})
	return agent, b, sm
}

func TestMotionFromEmptyPublishesSingleEntry(t *testing.T) {
	agent, b, sm := newTestAgent(time.Minute)
	c := collect(b, EventEntryDetected)
	ctx := context.Background()

	agent.Start(ctx)
	defer agent.Stop()

	b.Publish(ctx, motionEvent())

	if sm.Current() != state.StateOccupied {
		t.Fatalf("state = %s, want occupied", sm.Current())
	}
	if c.count(EventEntryDetected) != 1 {
		t.Fatalf("entry_detected = %d, want 1", c.count(EventEntryDetected))
	}

	// Second motion while occupied: no extra entry event.
	b.Publish(ctx, motionEvent())

	if c.count(EventEntryDetected) != 1 {
		t.Errorf("entry_detected after second motion = %d, want 1", c.count(EventEntryDetected))
	}
	if sm.Current() != state.StateOccupied {
		t.Errorf("state = %s, want occupied", sm.Current())
	}
}

func TestMotionRefreshesTimer(t *testing.T) {
	agent, b, _ := newTestAgent(time.Minute)
	ctx := context.Background()

	agent.Start(ctx)
	defer agent.Stop()

	if _, ok := agent.TimeSinceMotion(); ok {
		t.Fatal("TimeSinceMotion reported motion before any event")
	}

	b.Publish(ctx, motionEvent())

	elapsed, ok := agent.TimeSinceMotion()
	if !ok {
		t.Fatal("TimeSinceMotion not tracking after motion")
	}
	if elapsed > time.Second {
		t.Errorf("elapsed = %v immediately after motion", elapsed)
	}
}

func TestTimeoutTransitionsToEmpty(t *testing.T) {
	// Scenario 3 from the design notes: 600ms timeout.
	timeout := 600 * time.Millisecond
	agent, b, sm := newTestAgent(timeout)
	c := collect(b, EventEntryDetected, EventExitDetected, EventRoomEmptyTimeout)
	ctx := context.Background()

	agent.Start(ctx)
	defer agent.Stop()

	b.Publish(ctx, motionEvent())
	if sm.Current() != state.StateOccupied {
		t.Fatalf("state = %s, want occupied", sm.Current())
	}

	// Before the timeout elapses the check must be a no-op.
	agent.CheckTimeout(ctx)
	if sm.Current() != state.StateOccupied {
		t.Fatal("premature exit before timeout elapsed")
	}

	time.Sleep(timeout + 50*time.Millisecond)
	agent.CheckTimeout(ctx)

	if sm.Current() != state.StateEmpty {
		t.Fatalf("state = %s, want empty", sm.Current())
	}
	if c.count(EventExitDetected) != 1 {
		t.Errorf("exit_detected = %d, want 1", c.count(EventExitDetected))
	}
	if c.count(EventRoomEmptyTimeout) != 1 {
		t.Errorf("room_empty_timeout = %d, want 1", c.count(EventRoomEmptyTimeout))
	}
}

func TestTickerDrivenTimeout(t *testing.T) {
	// The capped cadence must detect a short timeout without a manual
	// check: 200ms timeout → effective interval 100ms.
	agent, b, sm := newTestAgent(200 * time.Millisecond)
	ctx := context.Background()

	agent.Start(ctx)
	defer agent.Stop()

	b.Publish(ctx, motionEvent())

	deadline := time.After(2 * time.Second)
	for sm.Current() != state.StateEmpty {
		select {
		case <-deadline:
			t.Fatal("ticker never detected the timeout")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestTriggerExitGating(t *testing.T) {
	agent, b, sm := newTestAgent(time.Minute)
	c := collect(b, EventExitDetected)
	ctx := context.Background()

	agent.Start(ctx)
	defer agent.Stop()

	// Exit while EMPTY: no-op, no events.
	agent.TriggerExit(ctx)
	if c.count(EventExitDetected) != 0 {
		t.Fatalf("exit_detected while empty = %d, want 0", c.count(EventExitDetected))
	}

	b.Publish(ctx, motionEvent())

	// Exit while OCCUPIED: exactly one event, state flips.
	agent.TriggerExit(ctx)
	if sm.Current() != state.StateEmpty {
		t.Fatalf("state = %s, want empty", sm.Current())
	}
	if c.count(EventExitDetected) != 1 {
		t.Fatalf("exit_detected = %d, want 1", c.count(EventExitDetected))
	}

	// And again while EMPTY: still one.
	agent.TriggerExit(ctx)
	if c.count(EventExitDetected) != 1 {
		t.Errorf("exit_detected after repeat trigger = %d, want 1", c.count(EventExitDetected))
	}
}

func TestEntryExitPayloads(t *testing.T) {
	agent, b, _ := newTestAgent(time.Minute)
	ctx := context.Background()

	var entry, exit *bus.Event
	b.Subscribe(EventEntryDetected, func(_ context.Context, evt bus.Event) error {
		entry = &evt
		return nil
	})
	b.Subscribe(EventExitDetected, func(_ context.Context, evt bus.Event) error {
		exit = &evt
		return nil
	})

	agent.Start(ctx)
	defer agent.Stop()

	b.Publish(ctx, motionEvent())
	agent.TriggerExit(ctx)

	if entry == nil || entry.Payload["previous_state"] != "empty" {
		t.Errorf("entry payload = %+v", entry)
	}
	if exit == nil || exit.Payload["previous_state"] != "occupied" {
		t.Errorf("exit payload = %+v", exit)
	}
	if exit != nil {
		if _, ok := exit.Payload["timeout_minutes"].(float64); !ok {
			t.Errorf("exit timeout_minutes missing or wrong type: %+v", exit.Payload)
		}
	}
}

func TestStopCancelsLoop(t *testing.T) {
	agent, b, sm := newTestAgent(100 * time.Millisecond)
	ctx := context.Background()

	agent.Start(ctx)
	if !agent.Running() {
		t.Fatal("agent not running after Start")
	}

	b.Publish(ctx, motionEvent())
	agent.Stop()

	if agent.Running() {
		t.Fatal("agent still running after Stop")
	}

	// With the loop stopped and the subscription removed, the timeout
	// must never fire.
	time.Sleep(300 * time.Millisecond)
	if sm.Current() != state.StateOccupied {
		t.Errorf("state changed after Stop: %s", sm.Current())
	}

	// Stop twice is safe.
	agent.Stop()
}

func TestMotionIgnoredDuringSleep(t *testing.T) {
	agent, b, sm := newTestAgent(time.Minute)
	c := collect(b, EventEntryDetected)
	ctx := context.Background()

	agent.Start(ctx)
	defer agent.Stop()

	b.Publish(ctx, motionEvent())
	if !sm.Transition(ctx, state.StateSleep, false) {
		t.Fatal("occupied → sleep rejected")
	}

	// Motion while asleep refreshes the timer but must not fire entry.
	b.Publish(ctx, motionEvent())
	if c.count(EventEntryDetected) != 1 {
		t.Errorf("entry_detected = %d, want 1", c.count(EventEntryDetected))
	}
	if sm.Current() != state.StateSleep {
		t.Errorf("state = %s, want sleep", sm.Current())
	}
}
