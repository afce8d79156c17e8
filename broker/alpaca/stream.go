package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/alexroth/tradebot/market"
)

// StreamURL is the market-data websocket host; the feed is appended.
const StreamURL = "wss://stream.data.alpaca.markets/v2"

// Stream subscribes to live trades over the Alpaca websocket and implements
// broker.TickStream. Ticks are delivered on a buffered channel; if the
// consumer falls behind, the oldest in-flight ticks are dropped rather than
// blocking the read pump.
type Stream struct {
	url    string
	key    string
	secret string
	log    zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewStream returns a tick stream for the given feed ("iex" or "sip").
// An empty baseURL selects the public host.
func NewStream(key, secret, feed, baseURL string, log zerolog.Logger) *Stream {
	if baseURL == "" {
		baseURL = StreamURL
	}
	if feed == "" {
		feed = "iex"
	}
	return &Stream{
		url:    baseURL + "/" + feed,
		key:    key,
		secret: secret,
		log:    log.With().Str("component", "tick-stream").Logger(),
	}
}

type streamMsg struct {
	Type   string    `json:"T"`
	Symbol string    `json:"S"`
	Price  float64   `json:"p"`
	Size   float64   `json:"s"`
	Time   time.Time `json:"t"`
	Msg    string    `json:"msg"`
}

// Subscribe connects, authenticates and subscribes to trades for symbol.
// The returned channel is closed when ctx is cancelled or the connection is
// lost.
func (s *Stream) Subscribe(ctx context.Context, symbol string) (<-chan market.Tick, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("alpaca: dial stream: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	auth := map[string]string{"action": "auth", "key": s.key, "secret": s.secret}
	if err := conn.WriteJSON(auth); err != nil {
		conn.Close()
		return nil, fmt.Errorf("alpaca: stream auth: %w", err)
	}

	sub := map[string]any{"action": "subscribe", "trades": []string{symbol}}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("alpaca: stream subscribe: %w", err)
	}

	ticks := make(chan market.Tick, 1024)

	// Close the connection when ctx ends so the read pump unblocks.
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	go s.readPump(conn, symbol, ticks)

	return ticks, nil
}

func (s *Stream) readPump(conn *websocket.Conn, symbol string, ticks chan<- market.Tick) {
	defer close(ticks)

	dropped := 0
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if dropped > 0 {
				s.log.Warn().Int("dropped", dropped).Msg("ticks dropped during session")
			}
			s.log.Info().Err(err).Msg("tick stream closed")
			return
		}

		var msgs []streamMsg
		if err := json.Unmarshal(raw, &msgs); err != nil {
			s.log.Warn().Err(err).Msg("bad stream message")
			continue
		}

		for _, m := range msgs {
			switch m.Type {
			case "t":
				if m.Symbol != symbol {
					continue
				}
				tick := market.Tick{
					Symbol: m.Symbol,
					Price:  m.Price,
					Size:   m.Size,
					Time:   m.Time,
				}
				select {
				case ticks <- tick:
				default:
					dropped++
				}
			case "error":
				s.log.Error().Str("msg", m.Msg).Msg("stream error message")
			case "success", "subscription":
				// control messages, nothing to do
			}
		}
	}
}

// Close tears down the websocket connection, unblocking the read pump.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
