package registry

import (
	"sync"
)

// MemoryRegistry implements Registry for a single process.
//
// Delivery is synchronous on the publishing goroutine: Publish invokes
// every handler currently subscribed to the topic, in subscription order,
// before returning. Per-topic FIFO holds as long as publishers on a topic
// are not themselves concurrent.
type MemoryRegistry struct {
	mu     sync.Mutex
	closed bool
	nextID uint64
	topics map[string][]*memorySub
}

type memorySub struct {
	id      uint64
	topic   string
	handler Handler
	reg     *MemoryRegistry
}

// NewMemoryRegistry creates a new in-process registry. Delivery is
// synchronous, so the config's buffer size does not apply.
func NewMemoryRegistry(_ Config) *MemoryRegistry {
	return &MemoryRegistry{
		topics: make(map[string][]*memorySub),
	}
}

// Subscribe registers h on topic.
func (r *MemoryRegistry) Subscribe(topic string, h Handler) (Subscription, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrInvalidTopic
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	r.nextID++
	sub := &memorySub{
		id:      r.nextID,
		topic:   topic,
		handler: h,
		reg:     r,
	}
	r.topics[topic] = append(r.topics[topic], sub)

	return sub, nil
}

// Publish invokes every current subscriber of topic with data.
// Handlers run outside the registry lock, so they may subscribe,
// unsubscribe or publish; such changes take effect for the next Publish.
func (r *MemoryRegistry) Publish(topic string, data []byte) error {
	if err := ValidateTopic(topic); err != nil {
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	subs := make([]*memorySub, len(r.topics[topic]))
	copy(subs, r.topics[topic])
	r.mu.Unlock()

	msg := &Message{Topic: topic, Data: data}
	for _, sub := range subs {
		sub.handler(msg)
	}

	return nil
}

// Close removes all subscriptions. Subsequent Subscribe and Publish
// calls return ErrClosed. Safe to call more than once.
func (r *MemoryRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.topics = nil
	return nil
}

// Unsubscribe removes exactly this registration.
func (s *memorySub) Unsubscribe() error {
	r := s.reg
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}

	subs := r.topics[s.topic]
	for i, sub := range subs {
		if sub.id == s.id {
			r.topics[s.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(r.topics[s.topic]) == 0 {
		delete(r.topics, s.topic)
	}
	return nil
}
