package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// ErrReconnect is returned by Run when Discord asks the client to
// reconnect or invalidates the session.
var ErrReconnect = errors.New("gateway requested reconnect")

// MessageHandler is called for every MESSAGE_CREATE not authored by a bot.
// Calls run on their own goroutine.
type MessageHandler func(ctx context.Context, msg MessageCreate)

// Session is a single gateway connection: identify, heartbeat, dispatch.
// It does not resume; callers redial after ErrReconnect.
type Session struct {
	token     string
	intents   int
	url       string
	dialer    *websocket.Dialer
	logger    *slog.Logger
	onMessage MessageHandler

	writeMu sync.Mutex
	seq     atomic.Int64
	acked   atomic.Bool // last heartbeat from heartbeatLoop was acknowledged
	zombie  atomic.Bool // connection closed for a missed ACK or failed beat
}

// Option configures a Session.
type Option func(*Session)

// WithURL overrides the gateway endpoint.
func WithURL(u string) Option {
	return func(s *Session) { s.url = u }
}

// WithIntents overrides DefaultIntents.
func WithIntents(intents int) Option {
	return func(s *Session) { s.intents = intents }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session for the bot owning token.
func New(token string, onMessage MessageHandler, opts ...Option) *Session {
	s := &Session{
		token:     token,
		intents:   DefaultIntents,
		url:       DefaultURL,
		dialer:    websocket.DefaultDialer,
		onMessage: onMessage,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Run connects, identifies and processes frames until ctx is cancelled,
// the connection fails or Discord requests a reconnect. It waits for
// in-flight message handlers before returning.
func (s *Session) Run(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dialing gateway: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	s.seq.Store(-1)
	s.acked.Store(true)
	s.zombie.Store(false)

	interval, err := s.readHello(conn)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	if err := s.identify(conn); err != nil {
		return err
	}

	hbCtx, cancelHB := context.WithCancel(ctx)
	defer cancelHB()
	go s.heartbeatLoop(hbCtx, conn, interval)

	var handlers sync.WaitGroup
	defer handlers.Wait()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if s.zombie.Load() {
				return ErrReconnect
			}
			return fmt.Errorf("reading gateway frame: %w", err)
		}
		if err := s.handleFrame(ctx, conn, raw, &handlers); err != nil {
			return err
		}
	}
}

func (s *Session) readHello(conn *websocket.Conn) (time.Duration, error) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return 0, fmt.Errorf("reading hello: %w", err)
	}
	hello := gjson.ParseBytes(raw)
	if op := hello.Get("op").Int(); op != opHello {
		return 0, fmt.Errorf("expected hello (op %d), got op %d", opHello, op)
	}
	ms := hello.Get("d.heartbeat_interval").Int()
	if ms <= 0 {
		return 0, fmt.Errorf("hello without heartbeat interval")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (s *Session) identify(conn *websocket.Conn) error {
	return s.send(conn, frame{
		Op: opIdentify,
		D: identifyData{
			Token:   s.token,
			Intents: s.intents,
			Properties: identifyProperties{
				OS:      runtime.GOOS,
				Browser: "containerbot",
				Device:  "containerbot",
			},
		},
	})
}

func (s *Session) handleFrame(ctx context.Context, conn *websocket.Conn, raw []byte, handlers *sync.WaitGroup) error {
	f := gjson.ParseBytes(raw)
	if seq := f.Get("s"); seq.Type == gjson.Number {
		s.seq.Store(seq.Int())
	}

	switch op := f.Get("op").Int(); op {
	case opDispatch:
		s.dispatch(ctx, f.Get("t").String(), []byte(f.Get("d").Raw), handlers)
	case opHeartbeat:
		return s.heartbeat(conn)
	case opHeartbeatACK:
		s.acked.Store(true)
		s.logger.Debug("heartbeat acknowledged")
	case opReconnect, opInvalidSession:
		return ErrReconnect
	default:
		s.logger.Debug("ignoring gateway frame", slog.Int64("op", op))
	}
	return nil
}

func (s *Session) dispatch(ctx context.Context, event string, data []byte, handlers *sync.WaitGroup) {
	switch event {
	case "READY":
		var r ready
		if err := json.Unmarshal(data, &r); err != nil {
			s.logger.Warn("malformed READY payload", slog.String("error", err.Error()))
			return
		}
		s.logger.Info(fmt.Sprintf("%s is online", r.User.Username), slog.String("session_id", r.SessionID))

	case "MESSAGE_CREATE":
		var m MessageCreate
		if err := json.Unmarshal(data, &m); err != nil {
			s.logger.Warn("malformed MESSAGE_CREATE payload", slog.String("error", err.Error()))
			return
		}
		if m.Author.Bot || s.onMessage == nil {
			return
		}
		handlers.Add(1)
		go func() {
			defer handlers.Done()
			s.onMessage(ctx, m)
		}()
	}
}

func (s *Session) heartbeatLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	// First beat is jittered as the gateway docs ask.
	wait := time.Duration(rand.Float64() * float64(interval))
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if !s.acked.Swap(false) {
				s.logger.Warn("heartbeat not acknowledged, reconnecting")
				s.dropConnection(conn)
				return
			}
			if err := s.heartbeat(conn); err != nil {
				s.logger.Warn("heartbeat failed", slog.String("error", err.Error()))
				s.dropConnection(conn)
				return
			}
			timer.Reset(interval)
		}
	}
}

// dropConnection closes conn so the read loop in Run ends with ErrReconnect.
func (s *Session) dropConnection(conn *websocket.Conn) {
	s.zombie.Store(true)
	conn.Close()
}

func (s *Session) heartbeat(conn *websocket.Conn) error {
	var d any
	if seq := s.seq.Load(); seq >= 0 {
		d = seq
	}
	return s.send(conn, frame{Op: opHeartbeat, D: d})
}

// send serializes writes; gorilla connections allow one concurrent writer.
func (s *Session) send(conn *websocket.Conn, f frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshalling op %d: %w", f.Op, err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("writing op %d: %w", f.Op, err)
	}
	return nil
}
