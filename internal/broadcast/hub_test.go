package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/pulsepoll-api/internal/domain/results"
)

func receiveEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	first := hub.Subscribe()
	second := hub.Subscribe()
	defer hub.Unsubscribe(first)
	defer hub.Unsubscribe(second)

	hub.Publish(VoteUpdate(&results.AggregateResult{PollID: "p1"}))

	for _, sub := range []*Subscription{first, second} {
		event := receiveEvent(t, sub)
		assert.Equal(t, EventVoteUpdate, event.Kind)
		assert.Equal(t, "p1", event.PollID)
	}
}

func TestPublishOrderPerSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	hub.Publish(VoteUpdate(&results.AggregateResult{PollID: "first"}))
	hub.Publish(Reset(&results.AggregateResult{PollID: "second"}))
	hub.Publish(TunnelReady("https://example.test"))

	assert.Equal(t, "first", receiveEvent(t, sub).PollID)

	second := receiveEvent(t, sub)
	assert.Equal(t, EventReset, second.Kind)
	assert.Equal(t, "second", second.PollID)

	third := receiveEvent(t, sub)
	assert.Equal(t, EventTunnelReady, third.Kind)
	assert.Equal(t, "https://example.test", third.URL)
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe()
	healthy := hub.Subscribe()
	defer hub.Unsubscribe(healthy)

	// Fill the slow subscriber's buffer without draining it, while the
	// healthy one keeps up
	received := 0
	for i := 0; i <= subscriberBuffer; i++ {
		hub.Publish(VoteUpdate(&results.AggregateResult{PollID: "p"}))
		receiveEvent(t, healthy)
		received++
	}

	// The slow subscriber was dropped, the healthy one got everything
	assert.Equal(t, 1, hub.Count())
	assert.Equal(t, subscriberBuffer+1, received)

	// Unsubscribing an already-dropped subscriber is a no-op
	hub.Unsubscribe(slow)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	require.Equal(t, 1, hub.Count())

	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.Count())

	hub.Publish(VoteUpdate(&results.AggregateResult{PollID: "p"}))

	select {
	case <-sub.Events():
		t.Fatal("unsubscribed subscription must not receive events")
	case <-time.After(50 * time.Millisecond):
	}
}
