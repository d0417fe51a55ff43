package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher decouples side effects from the request path. Publish is called
// after the primary mutation has committed and must never block or fail the
// caller's response.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
	Close()
}

// asyncDispatcher queues events to a background worker that invokes handlers
// with a bounded retry. A full queue drops the event with a warning rather
// than blocking the request.
type asyncDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	logger    *zap.Logger
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

const (
	queueCapacity  = 256
	handlerRetries = 3
	retryBackoff   = 2 * time.Second
	handlerTimeout = 30 * time.Second
)

// NewAsyncDispatcher creates a dispatcher and starts its worker.
func NewAsyncDispatcher(logger *zap.Logger) Dispatcher {
	d := &asyncDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, queueCapacity),
		logger:    logger,
		done:      make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Publish enqueues the event. The caller's context is deliberately not
// propagated: the request may complete long before handlers run.
func (d *asyncDispatcher) Publish(_ context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case d.queue <- event:
	default:
		d.logger.Warn("event queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *asyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Close stops the worker after draining queued events.
func (d *asyncDispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
	})
}

func (d *asyncDispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.done:
			for {
				select {
				case event := <-d.queue:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *asyncDispatcher) deliver(event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		var err error
		for attempt := 1; attempt <= handlerRetries; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			err = handler(ctx, event)
			cancel()
			if err == nil {
				break
			}
			if attempt < handlerRetries {
				time.Sleep(retryBackoff)
			}
		}
		if err != nil {
			d.logger.Warn("event handler failed after retries",
				zap.String("event_id", event.ID),
				zap.String("type", string(event.Type)),
				zap.Error(err))
		}
	}
}
