// Package socket handles communication with a player using a websocket connection.
package socket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jacobpatterson1549/swipe-words/game/message"
	"github.com/jacobpatterson1549/swipe-words/server/log"
	"github.com/jacobpatterson1549/swipe-words/server/runner"
)

type (
	// Socket reads and writes messages to the browsers.
	Socket struct {
		runner runner.Runner
		conn   Conn
		active atomic.Bool
		Config
	}

	// Config contains commonly shared Socket properties.
	Config struct {
		// Debug is a flag that causes the socket to log the types non-ping/pong messages that are read/written.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// TimeFunc is used to get the current time.
		TimeFunc func() time.Time
		// ReadWait is the amount of time that can pass between receiving client messages before timing out.
		ReadWait time.Duration
		// WriteWait is the amount of time that the socket can take to write a message.
		WriteWait time.Duration
		// PingPeriod is how often ping messages should be sent.  Should be less than ReadWait.
		PingPeriod time.Duration
		// IdlePeriod is the amount of time that can pass between handling messages that are not pings before the connection is idle and will be disconnected.
		IdlePeriod time.Duration
		// HTTPPingPeriod is the amount of time between sending requests for the connection to send a http ping on a different socket.
		// Some hosts shut down servers if too much time passes between HTTP requests.
		HTTPPingPeriod time.Duration
	}

	// Conn is the connection than backs the socket.
	Conn interface {
		// ReadMessage reads the next message from the connection.
		ReadMessage(m *message.Message) error
		// WriteMessage writes the message to the connection.
		WriteMessage(m message.Message) error
		// SetReadDeadline sets how long a read can take before it returns an error.
		SetReadDeadline(t time.Time) error
		// SetWriteDeadline sets how long a write can take before it returns an error.
		SetWriteDeadline(t time.Time) error
		// SetPongHandler is triggered when the server receives a pong response from a previous ping.
		SetPongHandler(h func(appData string) error)
		// Close closes the connection.
		Close() error
		// WritePing writes a ping message on the connection.
		WritePing() error
		// WriteClose writes a close message on the connection.  The connection is NOT closed.
		WriteClose(reason string) error
		// IsNormalClose determines if the error message is not an unexpected close error.
		IsNormalClose(err error) bool
		// RemoteAddr gets the remote network address of the connection.
		RemoteAddr() net.Addr
	}
)

var errSocketClosed = errors.New("socket closed")

// NewSocket creates a socket.
func (cfg Config) NewSocket(conn Conn) (*Socket, error) {
	if err := cfg.validate(conn); err != nil {
		return nil, fmt.Errorf("creating socket: validation: %w", err)
	}
	s := Socket{
		conn:   conn,
		Config: cfg,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(conn Conn) error {
	switch {
	case conn == nil:
		return fmt.Errorf("websocket connection required")
	case conn.RemoteAddr() == nil:
		return fmt.Errorf("remote address of connection required")
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.ReadWait <= 0:
		return fmt.Errorf("positive read wait period required")
	case cfg.WriteWait <= 0:
		return fmt.Errorf("positive write wait period required")
	case cfg.PingPeriod <= 0:
		return fmt.Errorf("positive ping period required")
	case cfg.IdlePeriod <= 0:
		return fmt.Errorf("positive idle period required")
	case cfg.HTTPPingPeriod <= 0:
		return fmt.Errorf("positive http ping period required")
	case cfg.PingPeriod >= cfg.ReadWait:
		return fmt.Errorf("ping period should be less than read wait")
	}
	return nil
}

// Run reads messages from the connection onto the out channel and writes messages from the in channel to the connection, on separate goroutines.
// The Socket runs until the connection fails, the in channel is closed, or the context is cancelled.
func (s *Socket) Run(ctx context.Context, in <-chan message.Message, out chan<- message.Message) error {
	if err := s.runner.Run(); err != nil {
		return fmt.Errorf("running socket: %w", err)
	}
	ctx, cancelFunc := context.WithCancel(ctx)
	pingTicker := time.NewTicker(s.PingPeriod)
	httpPingTicker := time.NewTicker(s.HTTPPingPeriod)
	idleTicker := time.NewTicker(s.IdlePeriod)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		wg.Wait()
		cancelFunc()
		pingTicker.Stop()
		httpPingTicker.Stop()
		idleTicker.Stop()
		s.runner.Finish()
	}()
	go s.readMessages(ctx, cancelFunc, out, &wg)
	go s.writeMessages(ctx, in, &wg, pingTicker, httpPingTicker, idleTicker)
	return nil
}

// Done is closed when the socket stops.
func (s *Socket) Done() <-chan struct{} {
	return s.runner.Done()
}

// String identifies the socket.
func (s *Socket) String() string {
	return s.conn.RemoteAddr().String()
}

// readMessages receives messages from the connected socket and writes them to the out channel.
// Messages are read until the context is done or reading fails, which cancels the context.
func (s *Socket) readMessages(ctx context.Context, cancelFunc context.CancelFunc, out chan<- message.Message, wg *sync.WaitGroup) {
	defer wg.Done()
	defer cancelFunc()
	pongHandler := func(appData string) error {
		return s.refreshDeadline(s.conn.SetReadDeadline, s.ReadWait)
	}
	s.conn.SetPongHandler(pongHandler)
	if err := pongHandler(""); err != nil {
		s.Log.Printf("initializing read deadline for %v: %v", s, err)
		return
	}
	for { // BLOCKING
		m, err := s.readMessage()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, errSocketClosed) {
				s.Log.Printf("reading socket messages stopped for %v: %v", s, err)
			}
			return
		}
		s.active.Store(true)
		select {
		case <-ctx.Done():
			return
		case out <- *m:
		}
	}
}

// writeMessages sends messages from the in channel to the connected socket.
// The tickers are used to periodically write messages or check for read activity.
func (s *Socket) writeMessages(ctx context.Context, in <-chan message.Message, wg *sync.WaitGroup,
	pingTicker, httpPingTicker, idleTicker *time.Ticker) {
	s.active.Store(false)
	var closeReason string
	defer func() {
		if len(closeReason) != 0 {
			s.Log.Printf("closing socket %v: %v", s, closeReason)
		}
		s.conn.WriteClose(closeReason)
		s.conn.Close() // stops reading
		wg.Done()
	}()
	for { // BLOCKING
		var err error
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				closeReason = "server closed connection"
				return
			}
			err = s.writeMessage(m)
		case <-pingTicker.C:
			if err = s.refreshDeadline(s.conn.SetWriteDeadline, s.WriteWait); err == nil {
				err = s.conn.WritePing()
			}
		case <-httpPingTicker.C:
			err = s.writeMessage(message.Message{
				Type: message.SocketHTTPPing,
			})
		case <-idleTicker.C:
			if !s.active.Swap(false) {
				closeReason = "closing socket due to inactivity"
				return
			}
		}
		if err != nil {
			closeReason = fmt.Sprintf("writing socket messages stopped: %v", err)
			return
		}
	}
}

// readMessage reads the next message from the connection.
func (s *Socket) readMessage() (*message.Message, error) {
	var m message.Message
	if err := s.conn.ReadMessage(&m); err != nil { // BLOCKING
		if s.conn.IsNormalClose(err) {
			return nil, errSocketClosed
		}
		return nil, fmt.Errorf("unexpected socket closure: %w", err)
	}
	if s.Debug {
		s.Log.Printf("socket reading %v message", m.Type)
	}
	if m.Type < message.StartGame || m.Type > message.ChallengeFriend {
		return nil, fmt.Errorf("received message with type %v that only the server sends", m.Type)
	}
	return &m, nil
}

// writeMessage writes a message to the connection.
func (s *Socket) writeMessage(m message.Message) error {
	if err := s.refreshDeadline(s.conn.SetWriteDeadline, s.WriteWait); err != nil {
		return err
	}
	if s.Debug {
		s.Log.Printf("socket writing %v message", m.Type)
	}
	if err := s.conn.WriteMessage(m); err != nil {
		return fmt.Errorf("writing socket message: %w", err)
	}
	return nil
}

// refreshDeadline is called when the connection is used to extend how long it can be used until it times out.
func (s *Socket) refreshDeadline(refreshDeadlineFunc func(t time.Time) error, period time.Duration) error {
	now := s.TimeFunc()
	deadline := now.Add(period)
	if err := refreshDeadlineFunc(deadline); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}
	return nil
}
