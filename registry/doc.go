// Package registry provides the shared channel registry used as the
// transport underneath host/UI message bridges.
//
// # Overview
//
// A Registry is a topic-addressed event bus with broadcast fan-out: every
// subscriber of a topic receives every message published on it. Topics
// multiplex many independent logical channels over one transport; using a
// unique topic per logical connection is the caller's obligation.
//
// # Available Implementations
//
//   - MemoryRegistry: in-process, synchronous ordered delivery
//   - NATSRegistry: cross-process topics over a NATS connection
//   - WebSocketRegistry: host-bridged topics relayed to one peer process
//     over a single WebSocket
//   - TracedRegistry: OpenTelemetry span decorator for any of the above
//
// # Usage
//
//	reg := registry.NewMemoryRegistry(registry.DefaultConfig())
//	sub, _ := reg.Subscribe("tasks/ui", func(msg *registry.Message) {
//	    // Handle message
//	})
//	reg.Publish("tasks/ui", payload)
//	sub.Unsubscribe()
//
// # Delivery Semantics
//
// MemoryRegistry delivers on the publishing goroutine, in subscription
// order, preserving per-topic FIFO with no drops. Networked registries
// inherit the ordering of their underlying transport. Messages published
// on a topic with no subscribers are lost; there is no queueing, no
// backpressure and no acknowledgement.
package registry
