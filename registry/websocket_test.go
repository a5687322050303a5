package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsPair connects a client registry to a server registry through an
// in-process HTTP server and runs both ends.
func wsPair(t *testing.T) (client, server *WebSocketRegistry) {
	t.Helper()

	upgrader := NewWebSocketUpgrader()
	serverReady := make(chan *WebSocketRegistry, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		reg := NewWebSocketRegistryFromConn(conn, DefaultWebSocketConfig())
		serverReady <- reg
		reg.Run(context.Background())
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientReg, err := DialWebSocketRegistry(url, DefaultWebSocketConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	go clientReg.Run(context.Background())
	t.Cleanup(func() { clientReg.Close() })

	select {
	case serverReg := <-serverReady:
		t.Cleanup(func() { serverReg.Close() })
		return clientReg, serverReg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for server side")
		return nil, nil
	}
}

func TestWebSocketRegistry_RelayToPeer(t *testing.T) {
	client, server := wsPair(t)

	got := make(chan *Message, 1)
	if _, err := server.Subscribe("x", func(msg *Message) { got <- msg }); err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	if err := client.Publish("x", []byte("hello")); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	select {
	case msg := <-got:
		if string(msg.Data) != "hello" {
			t.Errorf("data = %q, want %q", msg.Data, "hello")
		}
		if msg.Topic != "x" {
			t.Errorf("topic = %q, want %q", msg.Topic, "x")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for relayed message")
	}
}

func TestWebSocketRegistry_LocalDeliverySynchronous(t *testing.T) {
	client, _ := wsPair(t)

	var local int
	client.Subscribe("x", func(*Message) { local++ })

	client.Publish("x", []byte("hello"))

	if local != 1 {
		t.Errorf("local deliveries = %d, want 1", local)
	}
}

func TestWebSocketRegistry_TopicIsolationAcrossPeer(t *testing.T) {
	client, server := wsPair(t)

	hit := make(chan struct{}, 1)
	server.Subscribe("other", func(*Message) { hit <- struct{}{} })

	client.Publish("x", []byte("hello"))

	select {
	case <-hit:
		t.Error("subscriber on unrelated topic received a relayed message")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWebSocketRegistry_OriginEchoSuppressed(t *testing.T) {
	// An echo server reflects every frame verbatim; the publishing
	// registry must recognize its own origin and not deliver it again.
	upgrader := NewWebSocketUpgrader()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	reg, err := DialWebSocketRegistry(url, DefaultWebSocketConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer reg.Close()
	go reg.Run(context.Background())

	deliveries := make(chan struct{}, 4)
	reg.Subscribe("x", func(*Message) { deliveries <- struct{}{} })

	reg.Publish("x", []byte("hello"))

	// Exactly one delivery: the synchronous local one.
	select {
	case <-deliveries:
	case <-time.After(time.Second):
		t.Fatal("local delivery missing")
	}
	select {
	case <-deliveries:
		t.Error("echoed frame was delivered back to its origin")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWebSocketRegistry_CloseIdempotent(t *testing.T) {
	client, _ := wsPair(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}

	if err := client.Publish("x", nil); err != ErrClosed {
		t.Errorf("Publish after close: got %v, want ErrClosed", err)
	}
	if _, err := client.Subscribe("x", func(*Message) {}); err != ErrClosed {
		t.Errorf("Subscribe after close: got %v, want ErrClosed", err)
	}
}

func TestWebSocketRegistry_RunStopsOnClose(t *testing.T) {
	client, _ := wsPair(t)

	done := make(chan error, 1)
	reg := client
	go func() { done <- reg.Close() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}
