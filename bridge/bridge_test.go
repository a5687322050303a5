package bridge

import (
	"fmt"
	"testing"

	"github.com/vinayprograms/uibridge/registry"
)

func newTestBridge(t *testing.T) (*registry.MemoryRegistry, *Bridge) {
	t.Helper()
	reg := registry.NewMemoryRegistry(registry.DefaultConfig())
	t.Cleanup(func() { reg.Close() })
	return reg, New(reg, "x")
}

func TestBridge_WriteReachesListener(t *testing.T) {
	reg, a := newTestBridge(t)
	b := New(reg, "x")

	got := make([]string, 0, 1)
	a.Listen(func(msg Message) { got = append(got, string(msg)) })

	b.Write(Message(`{"id":1,"method":"ping"}`))

	if len(got) != 1 {
		t.Fatalf("listener invoked %d times, want exactly 1", len(got))
	}
	if got[0] != `{"id":1,"method":"ping"}` {
		t.Errorf("delivered %q, want the message unchanged", got[0])
	}
}

func TestBridge_OrderPreserved(t *testing.T) {
	reg, a := newTestBridge(t)
	b := New(reg, "x")

	var got []string
	a.Listen(func(msg Message) { got = append(got, string(msg)) })

	const n = 50
	for i := 0; i < n; i++ {
		b.Write(Message(fmt.Sprintf(`{"id":%d}`, i)))
	}

	if len(got) != n {
		t.Fatalf("delivered %d messages, want %d (no drops)", len(got), n)
	}
	for i, m := range got {
		if want := fmt.Sprintf(`{"id":%d}`, i); m != want {
			t.Fatalf("got[%d] = %q, want %q (no reordering)", i, m, want)
		}
	}
}

func TestBridge_Loopback(t *testing.T) {
	// One bridge both listens and writes on its topic; the registry
	// fans its own writes back to it.
	_, b := newTestBridge(t)

	var got int
	b.Listen(func(Message) { got++ })
	b.Write(Message(`{}`))

	if got != 1 {
		t.Errorf("listener invoked %d times, want 1", got)
	}
}

func TestBridge_WriteAfterDispose(t *testing.T) {
	reg, a := newTestBridge(t)
	b := New(reg, "x")

	var got int
	a.Listen(func(Message) { got++ })

	b.Dispose()
	b.Write(Message(`{}`)) // silent no-op, no panic

	if got != 0 {
		t.Errorf("write after dispose delivered %d messages, want 0", got)
	}
}

func TestBridge_ListenAfterDispose(t *testing.T) {
	reg, a := newTestBridge(t)
	b := New(reg, "x")

	a.Dispose()

	var got int
	a.Listen(func(Message) { got++ })

	b.Write(Message(`{}`))

	if got != 0 {
		t.Errorf("listener registered after dispose was invoked %d times", got)
	}
}

func TestBridge_DisposeRemovesListener(t *testing.T) {
	reg, a := newTestBridge(t)
	b := New(reg, "x")

	var got int
	a.Listen(func(Message) { got++ })
	a.Dispose()

	b.Write(Message(`{}`))

	if got != 0 {
		t.Errorf("disposed listener invoked %d times", got)
	}
}

func TestBridge_DisposeIdempotent(t *testing.T) {
	_, b := newTestBridge(t)

	b.Dispose()
	b.Dispose() // no error, no panic

	if !b.Disposed() {
		t.Error("Disposed() = false after Dispose")
	}
}

func TestBridge_BroadcastToTwoListeners(t *testing.T) {
	reg, a := newTestBridge(t)
	b := New(reg, "x")
	w := New(reg, "x")

	var hitsA, hitsB int
	a.Listen(func(Message) { hitsA++ })
	b.Listen(func(Message) { hitsB++ })

	w.Write(Message(`{}`))

	// Broadcast, not exactly-one-consumer.
	if hitsA != 1 || hitsB != 1 {
		t.Errorf("deliveries = (%d, %d), want (1, 1)", hitsA, hitsB)
	}
}

func TestBridge_TopicIsolation(t *testing.T) {
	reg, a := newTestBridge(t)
	other := New(reg, "y")

	var got int
	a.Listen(func(Message) { got++ })

	other.Write(Message(`{}`))

	if got != 0 {
		t.Errorf("listener on topic %q saw a message for topic %q", a.Topic(), other.Topic())
	}
}

func TestBridge_SignalsNeverFire(t *testing.T) {
	reg, a := newTestBridge(t)
	b := New(reg, "x")

	var fired int
	a.OnError(func(error) { fired++ })
	a.OnClose(func() { fired++ })
	a.OnPartialMessage(func(Message) { fired++ })
	b.OnError(func(error) { fired++ })
	b.OnClose(func() { fired++ })

	a.Listen(func(Message) {})
	b.Write(Message(`{}`))
	a.Dispose()
	b.Dispose()

	// The transport has no error/close/partial notions; the signal
	// surface exists only to satisfy the connection layer's contract.
	if fired != 0 {
		t.Errorf("auxiliary signals fired %d times, want 0", fired)
	}
}

func TestBridge_SignalSubscribeThenDispose(t *testing.T) {
	_, b := newTestBridge(t)

	hErr := b.OnError(func(error) {})
	hClose := b.OnClose(func() {})
	hPartial := b.OnPartialMessage(func(Message) {})

	b.Dispose() // must not panic with live subscriptions

	hErr.Dispose()
	hClose.Dispose()
	hPartial.Dispose() // handles stay safe after teardown
}

func TestBridge_SignalSubscribeAfterDispose(t *testing.T) {
	_, b := newTestBridge(t)
	b.Dispose()

	// Subscribing to a torn-down emitter must not panic; the handle is
	// inert.
	h := b.OnError(func(error) {})
	h.Dispose()
	b.OnClose(func() {}).Dispose()
	b.OnPartialMessage(func(Message) {}).Dispose()
	b.OnError(nil).Dispose()
	b.OnClose(nil).Dispose()
}

func TestBridge_ListenNil(t *testing.T) {
	reg, a := newTestBridge(t)
	b := New(reg, "x")

	a.Listen(nil) // ignored
	b.Write(Message(`{}`))
}

func TestBridge_PingScenario(t *testing.T) {
	// Adapter A listens on topic "x"; adapter B writes a ping; A's
	// callback is invoked exactly once with the identical payload.
	reg := registry.NewMemoryRegistry(registry.DefaultConfig())
	defer reg.Close()

	a := New(reg, "x")
	b := New(reg, "x")

	var got []string
	a.Listen(func(msg Message) { got = append(got, string(msg)) })
	b.Write(Message(`{"id":1,"method":"ping"}`))

	if len(got) != 1 {
		t.Fatalf("callback invoked %d times, want exactly 1", len(got))
	}
	if got[0] != `{"id":1,"method":"ping"}` {
		t.Errorf("payload = %s", got[0])
	}
}

func TestBridge_CapabilitySurfaces(t *testing.T) {
	_, b := newTestBridge(t)

	var r MessageReader = b.Reader()
	var w MessageWriter = b.Writer()

	r.Listen(func(Message) {})
	w.Write(Message(`{}`))
	w.Dispose()

	// The halves share one tracker: disposing the writer disposes the
	// reader too.
	if !b.Disposed() {
		t.Error("disposing one half did not dispose the bridge")
	}
}

func TestBridge_RequestResponseRoundTrip(t *testing.T) {
	// Two bridges on one topic, each playing one side of a JSON-RPC
	// exchange. The bridge passes both directions unchanged; correlation
	// is the connection layer's job.
	reg := registry.NewMemoryRegistry(registry.DefaultConfig())
	defer reg.Close()

	host := New(reg, "x")
	ui := New(reg, "x")

	var uiGot []string
	ui.Listen(func(msg Message) { uiGot = append(uiGot, string(msg)) })

	host.Listen(func(msg Message) {
		if string(msg) == `{"id":7,"method":"tasks/list"}` {
			host.Write(Message(`{"id":7,"result":[]}`))
		}
	})

	ui.Write(Message(`{"id":7,"method":"tasks/list"}`))

	// The UI sees its own request (broadcast) and the host's response.
	if len(uiGot) != 2 {
		t.Fatalf("ui deliveries = %d, want 2", len(uiGot))
	}
	if uiGot[1] != `{"id":7,"result":[]}` {
		t.Errorf("response = %s", uiGot[1])
	}
}
