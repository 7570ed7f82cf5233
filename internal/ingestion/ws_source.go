package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"solana-pool-lab/internal/observability"
)

// WSConfig configures the live snapshot feed client.
type WSConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff between attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing control frames.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default feed client configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSSource streams raw snapshot records from a collector WebSocket
// endpoint. Each text message is one JSON record. The connection is
// re-established with exponential backoff when it drops.
type WSSource struct {
	endpoint string
	config   WSConfig
	logger   *log.Logger
}

// NewWSSource creates a live snapshot feed source.
func NewWSSource(endpoint string, config *WSConfig, logger *log.Logger) *WSSource {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}
	return &WSSource{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
	}
}

var _ SnapshotSource = (*WSSource)(nil)

// Subscribe connects to the feed and returns the record channel. The
// initial dial failing is an error; later disconnects trigger reconnects
// until the context is cancelled.
func (s *WSSource) Subscribe(ctx context.Context) (<-chan RawRecord, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan RawRecord, 100)
	go s.readLoop(ctx, conn, out)
	return out, nil
}

func (s *WSSource) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

// readLoop consumes messages until the context is cancelled, reconnecting
// on failure. It owns the connection and the output channel.
func (s *WSSource) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- RawRecord) {
	defer close(out)

	pingTicker := time.NewTicker(s.config.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close()
			return
		case <-pingTicker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Printf("ping failed: %v", err)
			}
			continue
		default:
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			if ctx.Err() != nil {
				return
			}

			s.logger.Printf("feed disconnected: %v", err)
			conn = s.reconnect(ctx)
			if conn == nil {
				return
			}
			continue
		}

		var record RawRecord
		if err := json.Unmarshal(data, &record); err != nil {
			s.logger.Printf("skipping malformed record: %v", err)
			continue
		}

		select {
		case out <- record:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

// reconnect retries the dial with exponential backoff until it succeeds or
// the context is cancelled, in which case it returns nil.
func (s *WSSource) reconnect(ctx context.Context) *websocket.Conn {
	delay := s.config.ReconnectDelay
	for {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}

		conn, err := s.dial(ctx)
		if err == nil {
			observability.RecordFeedReconnect()
			return conn
		}

		s.logger.Printf("reconnect failed, retrying in %v: %v", delay, err)
		if delay *= 2; delay > s.config.MaxReconnectDelay {
			delay = s.config.MaxReconnectDelay
		}
	}
}
