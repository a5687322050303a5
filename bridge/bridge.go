package bridge

import (
	"encoding/json"

	"github.com/vinayprograms/uibridge/disposal"
	"github.com/vinayprograms/uibridge/emitter"
	"github.com/vinayprograms/uibridge/registry"
)

// DefaultTopic is the topic the host and UI processes use for the task
// system channel. Both ends must use the same topic; there is no
// negotiation or handshake.
const DefaultTopic = "tasks/ui"

// Message is an opaque JSON-RPC message. The bridge never inspects or
// transforms it.
type Message = json.RawMessage

// MessageReader is the inbound capability consumed by the connection layer.
type MessageReader interface {
	// Listen registers callback for every message arriving on the
	// bridge's topic. Expected to be called once per connection
	// lifetime. A no-op after disposal.
	Listen(callback func(Message))

	// OnError subscribes to transport errors. Never fired by this
	// transport.
	OnError(callback func(error)) disposal.Disposable

	// OnClose subscribes to transport closure. Never fired by this
	// transport.
	OnClose(callback func()) disposal.Disposable

	// OnPartialMessage subscribes to partial-frame delivery. Never
	// fired by this transport.
	OnPartialMessage(callback func(Message)) disposal.Disposable

	// Dispose releases the listener registration and the signal
	// emitters. Idempotent.
	Dispose()
}

// MessageWriter is the outbound capability consumed by the connection layer.
type MessageWriter interface {
	// Write publishes msg on the bridge's topic. No backpressure, no
	// acknowledgement; a no-op after disposal.
	Write(msg Message)

	// OnError subscribes to transport errors. Never fired by this
	// transport.
	OnError(callback func(error)) disposal.Disposable

	// OnClose subscribes to transport closure. Never fired by this
	// transport.
	OnClose(callback func()) disposal.Disposable

	// Dispose releases the bridge's resources. Idempotent.
	Dispose()
}

// Bridge binds one registry topic to both capability surfaces. The reader
// and writer halves share one disposal tracker, so disposing either
// releases everything.
type Bridge struct {
	reg     registry.Registry
	topic   string
	tracker *disposal.Tracker

	errors  *emitter.Emitter[error]
	closed  *emitter.Emitter[struct{}]
	partial *emitter.Emitter[Message]
}

var (
	_ MessageReader = (*Bridge)(nil)
	_ MessageWriter = (*Bridge)(nil)
)

// New creates a bridge over topic on reg. Multiple independent bridges may
// coexist on one registry; using a unique topic per logical connection is
// the caller's obligation, since two bridges listening on the same topic
// both receive every message.
func New(reg registry.Registry, topic string) *Bridge {
	b := &Bridge{
		reg:     reg,
		topic:   topic,
		tracker: disposal.NewTracker(),
		errors:  emitter.New[error](),
		closed:  emitter.New[struct{}](),
		partial: emitter.New[Message](),
	}

	b.tracker.Add(b.errors.Dispose)
	b.tracker.Add(b.closed.Dispose)
	b.tracker.Add(b.partial.Dispose)

	return b
}

// Topic returns the topic this bridge is bound to.
func (b *Bridge) Topic() string {
	return b.topic
}

// Reader returns the bridge as its inbound capability surface.
func (b *Bridge) Reader() MessageReader { return b }

// Writer returns the bridge as its outbound capability surface.
func (b *Bridge) Writer() MessageWriter { return b }

// Listen registers callback with the registry under the bridge's topic and
// records the unregistration in the disposal tracker. After disposal the
// registration is silently dropped: further listening is meaningless once
// the transport is gone, so this is a degrade, not a failure.
func (b *Bridge) Listen(callback func(Message)) {
	if callback == nil || b.tracker.Disposed() {
		return
	}

	sub, err := b.reg.Subscribe(b.topic, func(msg *registry.Message) {
		callback(Message(msg.Data))
	})
	if err != nil {
		// The registry refused (closed or invalid topic). The bridge
		// surfaces no errors; the connection layer simply hears nothing.
		return
	}

	b.tracker.Add(func() { sub.Unsubscribe() })
}

// Write publishes msg on the bridge's topic. Messages written after
// disposal, or while no listener is registered anywhere, are lost; the
// publish error, if any, is deliberately discarded.
func (b *Bridge) Write(msg Message) {
	if b.tracker.Disposed() {
		return
	}
	_ = b.reg.Publish(b.topic, msg)
}

// OnError subscribes callback to transport errors. This transport never
// fires it; the subscription exists to satisfy the connection layer's
// contract.
func (b *Bridge) OnError(callback func(error)) disposal.Disposable {
	return b.errors.Subscribe(callback)
}

// OnClose subscribes callback to transport closure. Never fired.
func (b *Bridge) OnClose(callback func()) disposal.Disposable {
	if callback == nil {
		return disposal.DisposeFunc(nil)
	}
	return b.closed.Subscribe(func(struct{}) { callback() })
}

// OnPartialMessage subscribes callback to partial-frame delivery. Never
// fired.
func (b *Bridge) OnPartialMessage(callback func(Message)) disposal.Disposable {
	return b.partial.Subscribe(callback)
}

// Disposed reports whether the bridge has been disposed.
func (b *Bridge) Disposed() bool {
	return b.tracker.Disposed()
}

// Dispose unregisters the listener and tears down the signal emitters,
// exactly once. Repeated calls are no-ops.
func (b *Bridge) Dispose() {
	b.tracker.Dispose()
}
