// Package bridge adapts a shared channel registry topic to the reader and
// writer capability pair consumed by a JSON-RPC message connection layer.
//
// # Overview
//
// A JSON-RPC connection layer expects a stream-shaped contract: a reader it
// can Listen on, a writer it can Write to, and error/close/partial-message
// subscription points on both. The underlying transport here is not a
// stream but a name-addressed broadcast registry. Bridge closes that gap:
// Listen registers a callback on one fixed topic, Write publishes on the
// same topic, and a disposal tracker ties the listener registration and the
// signal emitters to a single teardown.
//
// # Usage
//
//	reg := registry.NewMemoryRegistry(registry.DefaultConfig())
//	b := bridge.New(reg, bridge.DefaultTopic)
//
//	b.Listen(func(msg bridge.Message) {
//	    // Inbound JSON-RPC message, delivered unchanged.
//	})
//	b.Write(bridge.Message(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
//
//	b.Dispose() // unregisters the listener, tears down the signals
//
// # Signals That Never Fire
//
// OnError, OnClose and OnPartialMessage provide working subscribe and
// unsubscribe semantics but are never fired by this transport: the registry
// has no notion of connection error, close, or partial frames distinct from
// normal message flow. The gap is intentional and kept; wiring OnClose to
// host shutdown would change behavior the connection layer may depend on.
//
// # Disposal
//
// Dispose is one-way and idempotent. After it, Listen and Write are silent
// no-ops: disposal makes further traffic unreachable rather than
// exceptional, so nothing is surfaced.
package bridge
