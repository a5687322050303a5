package registry

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSRegistry implements Registry over a NATS connection, letting the
// host and UI processes share topics across process boundaries.
//
// Handlers run on the NATS client's delivery goroutine. Ordering follows
// NATS semantics: per-subscription FIFO from a single publisher.
type NATSRegistry struct {
	conn    *nats.Conn
	config  NATSConfig
	ownConn bool
}

// NATSConfig holds NATS registry configuration.
type NATSConfig struct {
	Config // Embed base config

	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	URL string

	// Name is the client name for identification.
	Name string

	// Token for token-based auth.
	Token string

	// User and Password for basic auth.
	User     string
	Password string

	// ReconnectWait is the time to wait between reconnection attempts.
	ReconnectWait time.Duration

	// MaxReconnects is the maximum number of reconnection attempts.
	// -1 = unlimited
	MaxReconnects int

	// ConnectTimeout for initial connection.
	ConnectTimeout time.Duration
}

// DefaultNATSConfig returns configuration with sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		Config:         DefaultConfig(),
		URL:            nats.DefaultURL,
		ReconnectWait:  2 * time.Second,
		MaxReconnects:  -1, // Unlimited
		ConnectTimeout: 5 * time.Second,
	}
}

// NewNATSRegistry connects to NATS and creates a registry.
func NewNATSRegistry(cfg NATSConfig) (*NATSRegistry, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}

	conn, err := nats.Connect(cfg.URL, buildNATSOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &NATSRegistry{
		conn:    conn,
		config:  cfg,
		ownConn: true,
	}, nil
}

// NewNATSRegistryFromConn creates a registry from an existing connection.
// The caller keeps ownership of the connection; Close leaves it open.
func NewNATSRegistryFromConn(conn *nats.Conn, cfg NATSConfig) *NATSRegistry {
	return &NATSRegistry{
		conn:   conn,
		config: cfg,
	}
}

// buildNATSOptions constructs NATS connection options from config.
func buildNATSOptions(cfg NATSConfig) []nats.Option {
	opts := []nats.Option{
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
	}

	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}

	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	return opts
}

// Subscribe registers h on topic.
func (r *NATSRegistry) Subscribe(topic string, h Handler) (Subscription, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrInvalidTopic
	}
	if r.conn.IsClosed() {
		return nil, ErrClosed
	}

	natsSub, err := r.conn.Subscribe(topic, func(m *nats.Msg) {
		h(&Message{Topic: m.Subject, Data: m.Data})
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe: %w", err)
	}

	return &natsSub_{sub: natsSub}, nil
}

// Publish delivers data to every current subscriber of topic.
func (r *NATSRegistry) Publish(topic string, data []byte) error {
	if err := ValidateTopic(topic); err != nil {
		return err
	}
	if r.conn.IsClosed() {
		return ErrClosed
	}

	if err := r.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}

	return nil
}

// Flush waits for all published messages to reach the server.
// Useful in tests and before shutdown.
func (r *NATSRegistry) Flush() error {
	return r.conn.Flush()
}

// Close shuts down the registry. The NATS connection is closed only if
// this registry created it.
func (r *NATSRegistry) Close() error {
	if r.ownConn && !r.conn.IsClosed() {
		if err := r.conn.Drain(); err != nil {
			r.conn.Close()
			return fmt.Errorf("nats drain: %w", err)
		}
	}
	return nil
}

type natsSub_ struct {
	sub *nats.Subscription
}

// Unsubscribe removes the registration from the NATS server.
func (s *natsSub_) Unsubscribe() error {
	if !s.sub.IsValid() {
		return nil
	}
	return s.sub.Unsubscribe()
}
