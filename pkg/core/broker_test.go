package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/core"
)

func TestBroker_Decoupling(t *testing.T) {
	broker := core.NewBroker(5)
	stream, unsubscribe := broker.Subscribe()
	defer unsubscribe()

	// A slow consumer must not block the producer while the buffer has room.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			broker.Publish(core.Event{Type: core.EventCreate, ID: "evt"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for producer")
	}

	count := 0
	timeout := time.After(1 * time.Second)
	for i := 0; i < 5; i++ {
		select {
		case <-stream:
			count++
		case <-timeout:
			t.Fatal("Failed to read buffered events")
		}
	}
	assert.Equal(t, 5, count)
}

func TestBroker_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	broker := core.NewBroker(1)
	_, unsubscribe := broker.Subscribe()
	defer unsubscribe()

	broker.Publish(core.Event{ID: "1"})
	broker.Publish(core.Event{ID: "2"})

	assert.Equal(t, 1, broker.Dropped())
}

func TestBroker_UnsubscribeAndClose(t *testing.T) {
	broker := core.NewBroker(0)
	require.Equal(t, core.DefaultEventBuffer, broker.BufferSize())

	a, unsubA := broker.Subscribe()
	b, _ := broker.Subscribe()
	require.Equal(t, 2, broker.Subscribers())

	unsubA()
	unsubA()
	_, ok := <-a
	assert.False(t, ok, "unsubscribed channel should be closed")

	broker.Close()
	_, ok = <-b
	assert.False(t, ok, "broker close should close remaining channels")

	c, _ := broker.Subscribe()
	_, ok = <-c
	assert.False(t, ok, "subscribing after close yields a closed channel")
}
