// Package event provides a small in-process pub/sub bus.
//
// The diff engine uses it to observe host interaction signals (selection
// changes, view activation, tab lifecycle) without coupling the session
// controller to the view layer.
package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Topic identifies a class of events.
type Topic string

// Topics published by the view layer and watcher.
const (
	// TopicSelectionChanged fires when the selection in any view changes.
	TopicSelectionChanged Topic = "view.selection.changed"

	// TopicActiveViewChanged fires when a different view becomes active.
	TopicActiveViewChanged Topic = "view.active.changed"

	// TopicTabsChanged fires when a tab is added or removed.
	TopicTabsChanged Topic = "view.tabs.changed"

	// TopicLayoutChanged fires when the tab-group layout changes.
	TopicLayoutChanged Topic = "view.layout.changed"

	// TopicFileChanged fires when a watched file changes on disk.
	TopicFileChanged Topic = "fs.file.changed"
)

// Event is a published occurrence on a topic.
type Event struct {
	// Topic is the event's topic.
	Topic Topic

	// Payload carries topic-specific data, may be nil.
	Payload any

	// Time is when the event was published.
	Time time.Time
}

// Handler processes a delivered event.
type Handler func(Event)

// Bus is a synchronous publish/subscribe bus.
// Handlers run on the publishing goroutine, in subscription order.
// Bus is safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]*Subscription
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[Topic][]*Subscription),
	}
}

// Subscribe registers a handler for a topic and returns its subscription.
func (b *Bus) Subscribe(topic Topic, fn Handler, opts ...SubscriptionOption) *Subscription {
	cfg := defaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		topic:   topic,
		handler: fn,
		once:    cfg.once,
		bus:     b,
	}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	return sub
}

// Publish delivers an event to every active subscription on its topic.
func (b *Bus) Publish(evt Event) {
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}

	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs[evt.Topic]))
	copy(subs, b.subs[evt.Topic])
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(evt)
	}
}

// SubscriberCount returns the number of active subscriptions on a topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// remove detaches a subscription from the bus.
func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sub.topic]
	for i, s := range list {
		if s == sub {
			b.subs[sub.topic] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.topic]) == 0 {
		delete(b.subs, sub.topic)
	}
}
