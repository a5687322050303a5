// Package emitter provides a small publish/subscribe signal primitive.
//
// # Overview
//
// An Emitter holds an ordered list of subscriber callbacks. Fire invokes
// every current subscriber synchronously, in subscription order, on the
// calling goroutine. Subscribe returns a disposable handle that removes
// exactly that subscription.
//
// # Usage
//
//	errs := emitter.New[error]()
//	handle := errs.Subscribe(func(err error) { log.Println(err) })
//	errs.Fire(io.ErrUnexpectedEOF)
//	handle.Dispose()
//
// # Teardown policy
//
// After Dispose, the emitter is inert: Fire delivers nothing and Subscribe
// returns a no-op handle rather than panicking. Callers that subscribe to a
// torn-down emitter simply never hear from it.
package emitter
