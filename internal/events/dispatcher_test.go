package events

import (
	"context"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestAsyncDispatcherDeliversBeforeClose(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop())

	var delivered atomic.Int64
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		delivered.Add(1)
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: int64(i)}); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	// Close drains the queue, so all published events are handled by now.
	d.Close()
	if got := delivered.Load(); got != 3 {
		t.Errorf("delivered %d events, want 3", got)
	}
}

func TestAsyncDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop())

	var delivered atomic.Int64
	d.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		delivered.Add(1)
		return nil
	})

	_ = d.Publish(context.Background(), Event{Type: EventTicketCreated})
	d.Close()

	if delivered.Load() != 0 {
		t.Error("handler for a different event type must not fire")
	}
}

func TestPublishFillsMetadata(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop())

	var got Event
	done := make(chan struct{})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = e
		close(done)
		return nil
	})

	_ = d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 7})
	<-done
	d.Close()

	if got.ID == "" {
		t.Error("event id not assigned")
	}
	if got.Timestamp.IsZero() {
		t.Error("event timestamp not assigned")
	}
}
