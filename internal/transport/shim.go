// Package transport abstracts a reconnecting bidirectional channel
// (spec.md §4.J): a status observable, parsed inbound events delivered to
// a single handler, and an outbound command queue. The reconnect loop
// below is grounded on the teacher's `slackbot.BusListener.Run` —
// connect, consume until error, back off, retry — retargeted from a NATS
// JetStream consumer to a generic `gorilla/websocket` connection.
package transport

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Status is the transport's connection state.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// StatusObserver is notified whenever the transport's status changes.
type StatusObserver func(Status)

// Handler processes one decoded inbound event. It must not block; the
// shim invokes it synchronously from its read loop.
type Handler func(Event)

// ErrorSink receives transport errors (parse failures, socket errors).
// New defaults it to a stdlib log line when Config.OnErr is nil; the
// default does not write to the internal system channel.
type ErrorSink func(err error, context string)

// Dialer opens the underlying websocket connection. Abstracted so tests
// can substitute a fake without a real network dial.
type Dialer func(ctx context.Context, url string) (*websocket.Conn, error)

// Shim is a reconnecting websocket-backed transport.
type Shim struct {
	url    string
	dial   Dialer
	handle Handler
	onErr  ErrorSink

	backoff time.Duration

	mu       sync.Mutex
	status   Status
	statusObservers []StatusObserver
	conn     *websocket.Conn
	sendCh   chan []byte

	// onReconnect is invoked (with the shim's own connection, already
	// established) every time the status transitions to Connected, so the
	// caller can re-emit a switch_channel command (spec.md §4.J, §7
	// "Reconnect"). Skipping synthetic active channels is left to the
	// callback.
	onReconnect func()
}

// Config configures a new Shim.
type Config struct {
	URL            string
	Dial           Dialer // defaults to a plain websocket.DefaultDialer
	Backoff        time.Duration // defaults to 3s, per spec.md §4.J reference value
	OnErr          ErrorSink
	OnReconnect    func() // called after each successful (re)connect
}

// New creates a Shim in the disconnected state. Call Run to start it.
func New(cfg Config) *Shim {
	dial := cfg.Dial
	if dial == nil {
		dial = func(ctx context.Context, url string) (*websocket.Conn, error) {
			c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			return c, err
		}
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 3 * time.Second
	}
	onErr := cfg.OnErr
	if onErr == nil {
		onErr = func(err error, context string) {
			log.Printf("transport: %s: %v", context, err)
		}
	}
	return &Shim{
		url:         cfg.URL,
		dial:        dial,
		backoff:     backoff,
		onErr:       onErr,
		status:      StatusDisconnected,
		sendCh:      make(chan []byte, 256),
		onReconnect: cfg.OnReconnect,
	}
}

// SetHandler registers the single inbound event handler.
func (s *Shim) SetHandler(h Handler) {
	s.handle = h
}

// OnStatus registers a status observer.
func (s *Shim) OnStatus(o StatusObserver) {
	s.mu.Lock()
	s.statusObservers = append(s.statusObservers, o)
	s.mu.Unlock()
}

// Status returns the shim's current connection status.
func (s *Shim) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Shim) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	observers := append([]StatusObserver(nil), s.statusObservers...)
	s.mu.Unlock()
	for _, o := range observers {
		o(st)
	}
}

// Run connects and reconnects with a fixed backoff until ctx is
// canceled (spec.md §4.J, §5 suspension points).
func (s *Shim) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.setStatus(StatusDisconnected)
			return
		default:
		}

		s.setStatus(StatusConnecting)
		conn, err := s.dial(ctx, s.url)
		if err != nil {
			s.onErr(err, "dial")
			s.setStatus(StatusError)
			if !sleepOrDone(ctx, s.backoff) {
				return
			}
			continue
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		s.setStatus(StatusConnected)
		if s.onReconnect != nil {
			s.onReconnect()
		}

		s.consume(ctx, conn)

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			s.setStatus(StatusDisconnected)
			return
		default:
		}
		s.setStatus(StatusError)
		if !sleepOrDone(ctx, s.backoff) {
			return
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// consume reads frames until the connection errors or ctx is canceled,
// draining the outbound queue concurrently.
func (s *Shim) consume(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case frame, ok := <-s.sendCh:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					s.onErr(err, "write")
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.onErr(err, "read")
			break
		}
		ev, err := Parse(data)
		if err != nil {
			s.onErr(err, "parse")
			continue
		}
		if s.handle != nil {
			s.handle(ev)
		}
	}

	_ = conn.Close()
	<-done
}

// Send enqueues a command for delivery. While disconnected, outbound
// commands are silently discarded (spec.md §5 "Backpressure"). While
// connected, commands are queued on sendCh (capacity 256); if the queue
// is full, the command is dropped and reported to the ErrorSink.
func (s *Shim) Send(cmd Command) {
	if s.Status() != StatusConnected {
		return
	}
	data, err := Encode(cmd)
	if err != nil {
		s.onErr(err, "encode")
		return
	}
	select {
	case s.sendCh <- data:
	default:
		s.onErr(context.DeadlineExceeded, "send queue full")
	}
}
