package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vinayprograms/uibridge/logging"
)

// WebSocketRegistry implements Registry for a host-bridged channel: local
// subscribers get synchronous fan-out, and every published message is also
// relayed to one peer process over a WebSocket. Messages received from the
// peer are fanned out to local subscribers.
//
// Each registry tags outgoing frames with its origin id and ignores frames
// carrying its own origin, so a relay loop cannot echo messages back.
type WebSocketRegistry struct {
	conn   *websocket.Conn
	config WebSocketConfig
	origin string
	log    *logging.Logger

	send chan *envelope
	done chan struct{}

	mu     sync.Mutex
	closed bool
	nextID uint64
	topics map[string][]*wsSub
}

// envelope is the frame relayed between peer processes.
type envelope struct {
	Origin  string `json:"origin"`
	Topic   string `json:"topic"`
	Payload []byte `json:"payload"`
}

type wsSub struct {
	id      uint64
	topic   string
	handler Handler
	reg     *WebSocketRegistry
}

// WebSocketConfig holds WebSocket registry configuration.
type WebSocketConfig struct {
	Config // Embed base config

	// WriteTimeout for write operations.
	WriteTimeout time.Duration

	// MaxMessageSize limits incoming frame size.
	MaxMessageSize int64

	// PingInterval for keepalive pings (0 = disabled).
	PingInterval time.Duration

	// Logger for relay events. Nil disables logging.
	Logger *logging.Logger
}

// DefaultWebSocketConfig returns configuration with sensible defaults.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		Config:         DefaultConfig(),
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 1024 * 1024, // 1MB
		PingInterval:   30 * time.Second,
	}
}

// NewWebSocketUpgrader creates an upgrader for accepting peer connections.
func NewWebSocketUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true }, // Override in production
	}
}

// DialWebSocketRegistry connects to a peer at url and creates a registry.
func DialWebSocketRegistry(url string, cfg WebSocketConfig) (*WebSocketRegistry, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return NewWebSocketRegistryFromConn(conn, cfg), nil
}

// NewWebSocketRegistryFromConn creates a registry from an existing
// connection, typically the server side of an upgraded HTTP request.
// The registry takes ownership of the connection.
func NewWebSocketRegistryFromConn(conn *websocket.Conn, cfg WebSocketConfig) *WebSocketRegistry {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	log := cfg.Logger
	if log == nil {
		log = logging.New().WithComponent("ws-registry")
		log.SetOutput(discard{})
	}

	return &WebSocketRegistry{
		conn:   conn,
		config: cfg,
		origin: uuid.NewString(),
		log:    log,
		send:   make(chan *envelope, cfg.BufferSize),
		done:   make(chan struct{}),
		topics: make(map[string][]*wsSub),
	}
}

// discard drops log output when no logger is configured.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Subscribe registers h on topic for both local and peer-published messages.
func (r *WebSocketRegistry) Subscribe(topic string, h Handler) (Subscription, error) {
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
	sub := &wsSub{
		id:      r.nextID,
		topic:   topic,
		handler: h,
		reg:     r,
	}
	r.topics[topic] = append(r.topics[topic], sub)
	r.log.SubscribeAdded(topic)

	return sub, nil
}

// Publish fans data out to local subscribers synchronously, then queues the
// frame for relay to the peer.
func (r *WebSocketRegistry) Publish(topic string, data []byte) error {
	if err := ValidateTopic(topic); err != nil {
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.mu.Unlock()

	r.deliverLocal(topic, data)

	env := &envelope{Origin: r.origin, Topic: topic, Payload: data}
	select {
	case r.send <- env:
	case <-r.done:
		return ErrClosed
	default:
		r.log.RelayDropped(topic, ErrRelayBacklog)
	}

	return nil
}

// ErrRelayBacklog indicates the peer link could not keep up and a frame
// was dropped from the relay queue. Local delivery is unaffected.
var ErrRelayBacklog = errors.New("relay queue full")

// deliverLocal fans a message out to current local subscribers.
func (r *WebSocketRegistry) deliverLocal(topic string, data []byte) {
	r.mu.Lock()
	subs := make([]*wsSub, len(r.topics[topic]))
	copy(subs, r.topics[topic])
	r.mu.Unlock()

	msg := &Message{Topic: topic, Data: data}
	for _, sub := range subs {
		sub.handler(msg)
	}
}

// Run drives the peer link, blocking until ctx is cancelled, the
// connection drops, or Close is called.
func (r *WebSocketRegistry) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		r.readLoop(ctx)
	}()

	go func() {
		defer wg.Done()
		r.writeLoop(ctx)
	}()

	r.log.PeerConnected(r.conn.RemoteAddr().String())

	select {
	case <-ctx.Done():
		r.Close()
		wg.Wait()
		return ctx.Err()
	case <-r.done:
		wg.Wait()
		return nil
	}
}

// readLoop reads peer frames and fans them out locally.
func (r *WebSocketRegistry) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		default:
		}

		_, data, err := r.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.log.PeerDisconnected(r.conn.RemoteAddr().String(), err)
			}
			r.Close()
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			r.log.RelayDropped("", err)
			continue
		}
		if env.Origin == r.origin {
			// Own frame echoed back by a relaying peer.
			continue
		}

		r.deliverLocal(env.Topic, env.Payload)
	}
}

// writeLoop relays queued frames to the peer.
func (r *WebSocketRegistry) writeLoop(ctx context.Context) {
	ticker := r.createPingTicker()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			r.writePing()
		case env := <-r.send:
			r.writeEnvelope(env)
		}
	}
}

// createPingTicker creates a ticker for keepalive pings.
func (r *WebSocketRegistry) createPingTicker() *time.Ticker {
	if r.config.PingInterval > 0 {
		return time.NewTicker(r.config.PingInterval)
	}
	// Return a ticker that never fires
	ticker := time.NewTicker(time.Hour)
	ticker.Stop()
	return ticker
}

// writePing sends a WebSocket ping frame.
func (r *WebSocketRegistry) writePing() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
}

// writeEnvelope serializes and writes a single frame.
func (r *WebSocketRegistry) writeEnvelope(env *envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		r.log.RelayDropped(env.Topic, err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	if r.config.WriteTimeout > 0 {
		r.conn.SetWriteDeadline(time.Now().Add(r.config.WriteTimeout))
	}

	if err := r.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		r.log.RelayDropped(env.Topic, err)
		return
	}
	r.log.MessageRelayed(env.Topic, len(env.Payload))
}

// Close shuts down the peer link and removes all subscriptions.
// Safe to call more than once.
func (r *WebSocketRegistry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.topics = nil
	close(r.done)
	r.mu.Unlock()

	r.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)

	return r.conn.Close()
}

// Unsubscribe removes exactly this registration.
func (s *wsSub) Unsubscribe() error {
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
	r.log.SubscribeRemoved(s.topic)
	return nil
}
