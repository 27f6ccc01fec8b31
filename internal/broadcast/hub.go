// Package broadcast fans aggregate updates out to every live dashboard
// connection. Delivery is at-most-once with no confirmation: clients hold
// the results query as their source of truth and the push channel only
// keeps them fresh.
package broadcast

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/pulsepoll-api/internal/domain/results"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
)

// EventKind tags the payload of a hub event
type EventKind string

const (
	EventVoteUpdate  EventKind = "vote_update"
	EventReset       EventKind = "reset"
	EventTunnelReady EventKind = "tunnel_ready"
)

// Event is the tagged union pushed to subscribers
type Event struct {
	Kind   EventKind                `json:"kind"`
	PollID string                   `json:"poll_id,omitempty"`
	Result *results.AggregateResult `json:"result,omitempty"`
	URL    string                   `json:"url,omitempty"`
}

// VoteUpdate builds a vote-update event for one poll
func VoteUpdate(result *results.AggregateResult) Event {
	return Event{Kind: EventVoteUpdate, PollID: result.PollID, Result: result}
}

// Reset builds a reset event for one poll
func Reset(result *results.AggregateResult) Event {
	return Event{Kind: EventReset, PollID: result.PollID, Result: result}
}

// TunnelReady builds the event announcing the public URL
func TunnelReady(url string) Event {
	return Event{Kind: EventTunnelReady, URL: url}
}

// subscriberBuffer bounds how many undelivered events one connection may
// lag behind before it is considered dead and dropped.
const subscriberBuffer = 16

// Subscription is one live connection's handle on the hub
type Subscription struct {
	ID     uuid.UUID
	events chan Event
}

// Events returns the channel delivering this subscriber's events in
// publish order.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Hub maintains the set of live subscribers and publishes events to all
// of them. Membership changes concurrently with publishing; a slow or dead
// subscriber never stalls delivery to the others.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription
	log  *log.Logger
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]*Subscription),
		log:  logger.Hub(),
	}
}

// Subscribe registers a new live connection
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		ID:     uuid.New(),
		events: make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	count := len(h.subs)
	h.mu.Unlock()

	h.log.Debug("subscriber connected", "subscriber_id", sub.ID, "active", count)
	return sub
}

// Unsubscribe removes a live connection. Safe to call for a subscriber
// the hub already dropped.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	_, present := h.subs[sub.ID]
	delete(h.subs, sub.ID)
	count := len(h.subs)
	h.mu.Unlock()

	if present {
		h.log.Debug("subscriber disconnected", "subscriber_id", sub.ID, "active", count)
	}
}

// Publish delivers the event to every current subscriber, best effort.
// A subscriber whose buffer is full is dropped on the spot; failures are
// never surfaced to the publisher.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	snapshot := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	var dead []*Subscription
	for _, sub := range snapshot {
		select {
		case sub.events <- event:
		default:
			dead = append(dead, sub)
		}
	}

	for _, sub := range dead {
		h.log.Warn("dropping unresponsive subscriber", "subscriber_id", sub.ID, "kind", event.Kind)
		h.Unsubscribe(sub)
	}
}

// Count returns the number of active subscribers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
