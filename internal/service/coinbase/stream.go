package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Stream implements a FeedStream backed by the Coinbase Exchange websocket
// feed. One Stream carries exactly one product subscription; the supervisor
// opens a fresh Stream on every (re)start, so no two live connections exist
// for the same product within a subscription.
type Stream struct {
	url          string
	product      string
	pingInterval time.Duration

	conn      *websocket.Conn
	connected atomic.Bool
}

// NewStream creates an unconnected Stream for one product.
func NewStream(url, product string, pingInterval time.Duration) drepo.FeedStream {
	return &Stream{
		url:          url,
		product:      product,
		pingInterval: pingInterval,
	}
}

// Connect establishes the websocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("coinbase connect %s: %w", s.product, err)
	}
	s.conn = conn
	s.connected.Store(true)
	return nil
}

type subscribeChannel struct {
	Name       string   `json:"name"`
	ProductIDs []string `json:"product_ids"`
}

type subscribeMessage struct {
	Type     string             `json:"type"`
	Channels []subscribeChannel `json:"channels"`
}

// Subscribe sends the ticker subscription frame for the product.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected.Load() {
		return fmt.Errorf("coinbase %s not connected", s.product)
	}
	msg := subscribeMessage{
		Type: "subscribe",
		Channels: []subscribeChannel{
			{Name: "ticker", ProductIDs: []string{s.product}},
		},
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.product, err)
	}
	return nil
}

// Read streams decoded ticks until the connection dies. The tick channel is
// closed and ErrConnectionLost is delivered on the error channel when the
// read loop exits; the stream never reconnects on its own.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, 256)
	errs := make(chan error, 1)

	// keepalive
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			if ctx.Err() != nil {
				return
			}
			_, b, err := s.conn.ReadMessage()
			if err != nil {
				s.connected.Store(false)
				errs <- fmt.Errorf("%w: %v", drepo.ErrConnectionLost, err)
				return
			}
			tick, ok := decodeTick(b)
			if !ok {
				// malformed or non-ticker frame, never fatal
				continue
			}
			select {
			case ticks <- tick:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ticks, errs
}

// decodeTick parses a feed frame. A frame counts as tick data only when it
// carries a product_id; everything else (subscriptions acks, heartbeats,
// malformed frames) is skipped.
func decodeTick(b []byte) (*models.Tick, bool) {
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, false
	}
	product, ok := payload["product_id"].(string)
	if !ok || product == "" {
		return nil, false
	}

	ts := time.Now().UTC()
	if raw, ok := payload["time"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			ts = t
		}
	}

	return &models.Tick{ProductID: product, Time: ts, Payload: payload}, true
}

// Close closes the websocket connection.
func (s *Stream) Close() error {
	s.connected.Store(false)
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected.Load() }
