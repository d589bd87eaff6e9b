// Package messaging carries domain events between the write side and the
// projection/notification handlers. The hub runs as a single process per
// school, so the bus is in-memory; cross-process coordination goes through
// Postgres (notification outbox) instead of a broker.
package messaging

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/brightclass/conference-hub/internal/domain/shared"
)

var (
	ErrEventBusClosed = errors.New("messaging: event bus is closed")
	ErrNilHandler     = errors.New("messaging: handler is nil")
)

// InMemoryEventBus implements shared.EventBus for a single-process
// deployment. In async mode a fixed worker pool drains a delivery queue; in
// sync mode handlers run inline on the publisher's goroutine, which the
// seeder and the tests rely on for deterministic ordering.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	closed      bool

	asyncMode bool
	queue     chan delivery
	wg        sync.WaitGroup
	logger    *slog.Logger
}

type delivery struct {
	event   shared.Event
	handler shared.EventHandler
}

// InMemoryEventBusConfig configures an InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode delivers events on a worker pool instead of the
	// publisher's goroutine.
	AsyncMode bool

	// WorkerPoolSize is the number of delivery workers in async mode.
	WorkerPoolSize int

	// QueueSize bounds the async delivery queue. Publish blocks when the
	// queue is full, which backpressures bursty writers.
	QueueSize int

	// Logger receives delivery failures. Nil means slog.Default.
	Logger *slog.Logger
}

// DefaultInMemoryEventBusConfig returns the defaults the binaries start
// from.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 10,
		QueueSize:      256,
	}
}

// NewInMemoryEventBus creates a bus and, in async mode, starts its worker
// pool. Callers must Close the bus to release the workers.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bus := &InMemoryEventBus{
		handlers:  make(map[shared.EventType][]shared.EventHandler),
		asyncMode: config.AsyncMode,
		logger:    logger,
	}
	if config.AsyncMode {
		bus.queue = make(chan delivery, config.QueueSize)
		for i := 0; i < config.WorkerPoolSize; i++ {
			bus.wg.Add(1)
			go bus.worker()
		}
	}
	return bus
}

// Subscribe registers a handler for one event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// SubscribeAll registers a handler that receives every published event.
// The dispatcher uses this to route by type itself.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish delivers the event to all matching handlers. Handler errors are
// logged, not returned: one failing projection must not roll back the
// command that produced the event.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("messaging: event is nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	targets := make([]shared.EventHandler, 0,
		len(b.handlers[event.EventType()])+len(b.allHandlers))
	targets = append(targets, b.handlers[event.EventType()]...)
	targets = append(targets, b.allHandlers...)

	if b.asyncMode {
		// Enqueue under the read lock so Close cannot shut the queue
		// mid-publish.
		for _, handler := range targets {
			b.queue <- delivery{event: event, handler: handler}
		}
		b.mu.RUnlock()
		return nil
	}
	b.mu.RUnlock()

	for _, handler := range targets {
		b.invoke(event, handler)
	}
	return nil
}

// Close stops the worker pool after the queued deliveries drain. Publish
// and Subscribe fail with ErrEventBusClosed afterwards. Close is
// idempotent.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.asyncMode {
		close(b.queue)
		b.wg.Wait()
	}
	return nil
}

func (b *InMemoryEventBus) worker() {
	defer b.wg.Done()
	for d := range b.queue {
		b.invoke(d.event, d.handler)
	}
}

func (b *InMemoryEventBus) invoke(event shared.Event, handler shared.EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_type", string(event.EventType()),
				"aggregate_id", event.AggregateID(),
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()

	if err := handler(event); err != nil {
		b.logger.Error("event handler failed",
			"event_type", string(event.EventType()),
			"aggregate_id", event.AggregateID(),
			"error", err,
		)
	}
}
