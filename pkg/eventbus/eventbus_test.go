package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	a := bus.Subscribe("audit.completed")
	b := bus.Subscribe("audit.completed")

	bus.Publish("audit.completed", Event{Payload: "report-1"})

	select {
	case ev := <-a:
		assert.Equal(t, "report-1", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("subscriber a did not receive the event")
	}
	select {
	case ev := <-b:
		assert.Equal(t, "report-1", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("subscriber b did not receive the event")
	}
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	bus := NewEventBus(1)
	done := make(chan struct{})
	go func() {
		bus.Publish("nobody.listens", Event{Payload: 1})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked with no subscribers")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus(10)
	ch := bus.Subscribe("audit.failed")
	bus.Unsubscribe("audit.failed", ch)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed after unsubscribe")

	// Publishing after unsubscribe must not panic or deliver.
	bus.Publish("audit.failed", Event{Payload: "x"})
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewEventBus(100)
	ch := bus.Subscribe("audit.completed")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish("audit.completed", Event{Payload: "r"})
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("received %d of %d events", i, n)
		}
	}
}
