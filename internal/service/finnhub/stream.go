package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applogger "StockSage/pkg/logger"
	pkgmetrics "StockSage/pkg/metrics"
)

const defaultWebsocketURL = "wss://ws.finnhub.io"

// StreamConfig controls the last-trade WebSocket stream.
type StreamConfig struct {
	APIKey         string
	WebsocketURL   string
	Symbols        []string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// LastTrade is the most recent trade seen for a symbol on the stream.
type LastTrade struct {
	Symbol string
	Price  float64
	Volume float64
	At     time.Time
}

// Stream keeps a WebSocket connection to Finnhub and maintains an
// in-memory last-trade table for the subscribed symbols. It reconnects
// on read failures until the context is cancelled.
type Stream struct {
	cfg StreamConfig
	log *applogger.Logger
	rec *pkgmetrics.Recorder

	mu     sync.RWMutex
	conn   *websocket.Conn
	trades map[string]LastTrade
}

func NewStream(cfg StreamConfig, rec *pkgmetrics.Recorder, log *applogger.Logger) *Stream {
	if cfg.WebsocketURL == "" {
		cfg.WebsocketURL = defaultWebsocketURL
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Stream{cfg: cfg, rec: rec, log: log, trades: make(map[string]LastTrade)}
}

// Latest returns the last trade seen for symbol, if any.
func (s *Stream) Latest(symbol string) (LastTrade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trades[symbol]
	return t, ok
}

// Run connects and consumes the stream until ctx is cancelled. It only
// returns the context error; transient failures are logged and retried.
func (s *Stream) Run(ctx context.Context) error {
	for {
		if err := s.connect(ctx); err != nil {
			s.log.Warn("stream connect failed", applogger.Error(err))
		} else {
			s.readLoop(ctx)
		}
		select {
		case <-ctx.Done():
			s.close()
			return ctx.Err()
		case <-time.After(s.cfg.ReconnectDelay):
		}
	}
}

func (s *Stream) connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.cfg.WebsocketURL, s.cfg.APIKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	for _, sym := range s.cfg.Symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			s.close()
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	s.log.Info("stream connected", applogger.Int("symbols", len(s.cfg.Symbols)))
	return nil
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

func (s *Stream) readLoop(ctx context.Context) {
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go s.pingLoop(pingCtx)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn := s.current()
		if conn == nil {
			return
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn("stream read failed", applogger.Error(err))
				s.rec.RecordError("stream_read")
			}
			s.close()
			return
		}
		var m wsMessage
		if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
			// ignore ping and ack frames
			continue
		}
		s.mu.Lock()
		for _, d := range m.Data {
			s.trades[d.S] = LastTrade{
				Symbol: d.S,
				Price:  d.P,
				Volume: d.V,
				At:     time.UnixMilli(d.T).UTC(),
			}
			s.rec.RecordLastPrice(d.S, d.P)
		}
		s.mu.Unlock()
	}
}

func (s *Stream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if conn := s.current(); conn != nil {
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

func (s *Stream) current() *websocket.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

func (s *Stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}
