package event

import "sync/atomic"

// Subscription represents an active subscription on the bus.
// It provides a handle to cancel delivery, following scoped-resource
// discipline: whoever subscribes is responsible for cancelling.
type Subscription struct {
	id        string
	topic     Topic
	handler   Handler
	once      bool
	bus       *Bus
	cancelled atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed topic.
func (s *Subscription) Topic() Topic { return s.topic }

// IsActive returns true if the subscription can still receive events.
func (s *Subscription) IsActive() bool { return !s.cancelled.Load() }

// Cancel permanently cancels the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.cancelled.CompareAndSwap(false, true) {
		s.bus.remove(s)
	}
}

// deliver invokes the handler unless the subscription has been cancelled.
// One-shot subscriptions cancel themselves before the handler runs so a
// handler that re-publishes cannot recurse into itself.
func (s *Subscription) deliver(evt Event) {
	if s.cancelled.Load() {
		return
	}
	if s.once {
		if !s.cancelled.CompareAndSwap(false, true) {
			return
		}
		s.bus.remove(s)
	}
	s.handler(evt)
}

// SubscriptionConfig holds subscription options.
type subscriptionConfig struct {
	once bool
}

func defaultSubscriptionConfig() subscriptionConfig {
	return subscriptionConfig{}
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*subscriptionConfig)

// WithOnce makes the subscription auto-cancel after the first delivery.
func WithOnce() SubscriptionOption {
	return func(c *subscriptionConfig) {
		c.once = true
	}
}
