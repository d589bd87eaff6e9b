package messaging

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/shared"
)

var (
	ErrDispatcherRunning    = errors.New("messaging: dispatcher already started")
	ErrDispatcherNotRunning = errors.New("messaging: dispatcher not started")
	ErrDuplicateHandler     = errors.New("messaging: handler name already registered")
)

// Dispatcher routes events from the bus to named handlers. Unlike raw bus
// subscriptions it retries transient handler failures with exponential
// backoff and recovers handler panics, so one bad projection cannot take
// the worker down.
type Dispatcher struct {
	bus    shared.EventBus
	logger *slog.Logger

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	handlerTimeout time.Duration

	mu      sync.RWMutex
	routes  map[shared.EventType][]*route
	names   map[string]struct{}
	started bool
	stopped bool

	wg sync.WaitGroup
}

type route struct {
	name    string
	handler shared.EventHandler
	async   bool
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// EventBus is the bus the dispatcher subscribes to on Start.
	EventBus shared.EventBus

	// MaxRetries is how many times a failing handler is retried before
	// the event is dropped with an error log.
	MaxRetries int

	// InitialBackoff is the wait before the first retry; it doubles per
	// attempt up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// HandlerTimeout bounds a single handler invocation.
	HandlerTimeout time.Duration

	// Logger receives routing failures. Nil means slog.Default.
	Logger *slog.Logger
}

// DefaultDispatcherConfig returns the defaults the binaries start from.
func DefaultDispatcherConfig(bus shared.EventBus) DispatcherConfig {
	return DispatcherConfig{
		EventBus:       bus,
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		HandlerTimeout: 30 * time.Second,
	}
}

// NewDispatcher creates a dispatcher. Register handlers, then Start.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = 100 * time.Millisecond
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}
	if config.HandlerTimeout <= 0 {
		config.HandlerTimeout = 30 * time.Second
	}
	return &Dispatcher{
		bus:            config.EventBus,
		logger:         logger,
		maxRetries:     config.MaxRetries,
		initialBackoff: config.InitialBackoff,
		maxBackoff:     config.MaxBackoff,
		handlerTimeout: config.HandlerTimeout,
		routes:         make(map[shared.EventType][]*route),
		names:          make(map[string]struct{}),
	}
}

// Register adds a handler that runs on its own goroutine per event.
// Handler names must be unique across the dispatcher; they identify the
// handler in failure logs.
func (d *Dispatcher) Register(eventType shared.EventType, name string, handler shared.EventHandler) error {
	return d.register(eventType, name, handler, true)
}

// RegisterSync adds a handler that runs on the delivering goroutine.
// Sync handlers preserve per-event ordering with each other.
func (d *Dispatcher) RegisterSync(eventType shared.EventType, name string, handler shared.EventHandler) error {
	return d.register(eventType, name, handler, false)
}

func (d *Dispatcher) register(eventType shared.EventType, name string, handler shared.EventHandler, async bool) error {
	if handler == nil {
		return ErrNilHandler
	}
	if name == "" {
		return errors.New("messaging: handler name is empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, name)
	}
	d.names[name] = struct{}{}
	d.routes[eventType] = append(d.routes[eventType], &route{
		name:    name,
		handler: handler,
		async:   async,
	})
	return nil
}

// Start subscribes the dispatcher to every event on the bus.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return ErrDispatcherRunning
	}
	d.started = true
	d.mu.Unlock()

	if err := d.bus.SubscribeAll(d.dispatch); err != nil {
		return fmt.Errorf("messaging: subscribe dispatcher: %w", err)
	}

	d.logger.Info("dispatcher started", "handlers", len(d.names))
	return nil
}

// Stop waits for in-flight handlers to finish. New events arriving after
// Stop are dropped.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.mu.Unlock()
		return ErrDispatcherNotRunning
	}
	d.stopped = true
	d.mu.Unlock()

	d.wg.Wait()

	d.logger.Info("dispatcher stopped")
	return nil
}

// dispatch is the bus-facing entry point, one call per published event.
func (d *Dispatcher) dispatch(event shared.Event) error {
	d.mu.RLock()
	if d.stopped {
		d.mu.RUnlock()
		return nil
	}
	targets := d.routes[event.EventType()]
	d.mu.RUnlock()

	for _, r := range targets {
		if r.async {
			d.wg.Add(1)
			go func(r *route) {
				defer d.wg.Done()
				d.deliver(event, r)
			}(r)
			continue
		}
		d.deliver(event, r)
	}
	return nil
}

func (d *Dispatcher) deliver(event shared.Event, r *route) {
	backoff := d.initialBackoff

	for attempt := 0; ; attempt++ {
		err := d.invokeWithTimeout(event, r)
		if err == nil {
			return
		}

		if attempt >= d.maxRetries {
			d.logger.Error("handler failed, retries exhausted",
				"handler", r.name,
				"event_type", string(event.EventType()),
				"aggregate_id", event.AggregateID(),
				"attempts", attempt+1,
				"error", err,
			)
			return
		}

		d.logger.Warn("handler failed, retrying",
			"handler", r.name,
			"event_type", string(event.EventType()),
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err,
		)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > d.maxBackoff {
			backoff = d.maxBackoff
		}
	}
}

// invokeWithTimeout runs the handler on its own goroutine so a stuck
// handler times out instead of wedging delivery. The result channel is
// buffered, so the handler goroutine exits as soon as the handler returns
// even after a timeout was reported.
func (d *Dispatcher) invokeWithTimeout(event shared.Event, r *route) error {
	result := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				result <- fmt.Errorf("messaging: handler %s panicked: %v\n%s",
					r.name, rec, debug.Stack())
			}
		}()
		result <- r.handler(event)
	}()

	timer := time.NewTimer(d.handlerTimeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-timer.C:
		return fmt.Errorf("messaging: handler %s timed out after %s", r.name, d.handlerTimeout)
	}
}
