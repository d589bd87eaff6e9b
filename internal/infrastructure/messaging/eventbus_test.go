package messaging

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/brightclass/conference-hub/internal/domain/shared"
)

// Every worker goroutine the bus and dispatcher start must be gone after
// Close/Stop, otherwise long-running processes leak on reconnects.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBus_SyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	var got []shared.Event
	err := bus.Subscribe(shared.EventAssessmentRecorded, func(event shared.Event) error {
		got = append(got, event)
		return nil
	})
	require.NoError(t, err)

	event := shared.NewAssessmentRecordedEvent("STU_00000001", "ASSESS_00000001", "mathematics", "quiz", 85)
	require.NoError(t, bus.Publish(event))

	require.Len(t, got, 1)
	assert.Equal(t, shared.EventAssessmentRecorded, got[0].EventType())
	assert.Equal(t, "STU_00000001", got[0].AggregateID())
}

func TestEventBus_AsyncDeliveryAndClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	var mu sync.Mutex
	seen := 0
	done := make(chan struct{})

	err := bus.Subscribe(shared.EventMeetingScheduled, func(event shared.Event) error {
		mu.Lock()
		seen++
		if seen == 3 {
			close(done)
		}
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(
			shared.NewMeetingScheduledEvent("MTG_00000001", "STU_00000001", time.Now().Add(24*time.Hour), "TEACH_000001")))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handlers did not run")
	}

	// Close drains the pool; goleak verifies nothing survives
	require.NoError(t, bus.Close())
}

func TestEventBus_TypeFiltering(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	calls := 0
	require.NoError(t, bus.Subscribe(shared.EventStudentRegistered, func(event shared.Event) error {
		calls++
		return nil
	}))

	require.NoError(t, bus.Publish(
		shared.NewAssessmentRecordedEvent("STU_00000001", "ASSESS_00000001", "science", "test", 90)))
	assert.Zero(t, calls, "handler must not fire for other event types")
}

func TestDispatcher_RoutesToNamedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	dispatcher := NewDispatcher(DefaultDispatcherConfig(bus))

	handled := make(chan shared.Event, 1)
	err := dispatcher.RegisterSync(shared.EventAssessmentRecorded, "test_handler", func(event shared.Event) error {
		handled <- event
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, dispatcher.Start())
	defer func() {
		require.NoError(t, dispatcher.Stop())
	}()

	require.NoError(t, bus.Publish(
		shared.NewAssessmentRecordedEvent("STU_00000002", "ASSESS_00000002", "english", "essay", 72)))

	select {
	case event := <-handled:
		assert.Equal(t, "STU_00000002", event.AggregateID())
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not route the event")
	}
}

func TestDispatcher_RetriesFailedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	config := DefaultDispatcherConfig(bus)
	config.MaxRetries = 3
	config.InitialBackoff = time.Millisecond
	dispatcher := NewDispatcher(config)

	var mu sync.Mutex
	attempts := 0
	succeeded := make(chan struct{})

	err := dispatcher.Register(shared.EventAssessmentRecorded, "flaky_handler", func(event shared.Event) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return assert.AnError
		}
		close(succeeded)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, dispatcher.Start())
	defer func() {
		require.NoError(t, dispatcher.Stop())
	}()

	require.NoError(t, bus.Publish(
		shared.NewAssessmentRecordedEvent("STU_00000003", "ASSESS_00000003", "history", "quiz", 64)))

	select {
	case <-succeeded:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not retried to success")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestDispatcher_SurvivesPanickingHandler(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	config := DefaultDispatcherConfig(bus)
	config.MaxRetries = 0
	dispatcher := NewDispatcher(config)

	require.NoError(t, dispatcher.RegisterSync(shared.EventAssessmentRecorded, "panicky_handler",
		func(event shared.Event) error {
			panic("projection bug")
		}))

	handled := make(chan struct{}, 1)
	require.NoError(t, dispatcher.RegisterSync(shared.EventAssessmentRecorded, "healthy_handler",
		func(event shared.Event) error {
			handled <- struct{}{}
			return nil
		}))

	require.NoError(t, dispatcher.Start())
	defer func() {
		require.NoError(t, dispatcher.Stop())
	}()

	require.NoError(t, bus.Publish(
		shared.NewAssessmentRecordedEvent("STU_00000004", "ASSESS_00000004", "physics", "lab", 88)))

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("panic in one handler blocked the others")
	}
}

func TestDispatcher_RejectsDuplicateHandlerNames(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	dispatcher := NewDispatcher(DefaultDispatcherConfig(bus))
	noop := func(event shared.Event) error { return nil }

	require.NoError(t, dispatcher.Register(shared.EventMeetingScheduled, "reminder", noop))
	assert.ErrorIs(t,
		dispatcher.Register(shared.EventMeetingCompleted, "reminder", noop),
		ErrDuplicateHandler)
}

func TestEventBus_PublishAfterCloseFails(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})
	require.NoError(t, bus.Close())

	err := bus.Publish(
		shared.NewAssessmentRecordedEvent("STU_00000005", "ASSESS_00000005", "art", "project", 95))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	// Close is idempotent.
	require.NoError(t, bus.Close())
}
