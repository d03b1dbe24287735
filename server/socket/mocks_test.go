package socket

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/jacobpatterson1549/swipe-words/game/message"
)

// mockAddr implements the net.Addr interface.
type mockAddr string

func (m mockAddr) Network() string {
	return string(m) + "_NETWORK"
}

func (m mockAddr) String() string {
	return string(m)
}

var errNormalClose = errors.New("normal close")

// mockConn reads messages from the reads channel and writes them to the writes channel.
// Reading returns errNormalClose when the reads channel is closed or the connection is closed.
type mockConn struct {
	reads       chan message.Message
	writes      chan message.Message
	closed      chan struct{}
	closeOnce   sync.Once
	mu          sync.Mutex
	closeReason *string
	writeErr    error
}

func newMockConn() *mockConn {
	c := mockConn{
		reads:  make(chan message.Message),
		writes: make(chan message.Message, 10),
		closed: make(chan struct{}),
	}
	return &c
}

func (c *mockConn) ReadMessage(m *message.Message) error {
	select {
	case <-c.closed:
		return errNormalClose
	case m2, ok := <-c.reads:
		if !ok {
			return errNormalClose
		}
		*m = m2
		return nil
	}
}

func (c *mockConn) WriteMessage(m message.Message) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes <- m
	return nil
}

func (*mockConn) SetReadDeadline(t time.Time) error {
	return nil
}

func (*mockConn) SetWriteDeadline(t time.Time) error {
	return nil
}

func (*mockConn) SetPongHandler(h func(appData string) error) {}

func (c *mockConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	return nil
}

func (*mockConn) WritePing() error {
	return nil
}

func (c *mockConn) WriteClose(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeReason = &reason
	return nil
}

func (c *mockConn) CloseReason() *string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeReason
}

func (*mockConn) IsNormalClose(err error) bool {
	return errors.Is(err, errNormalClose)
}

func (*mockConn) RemoteAddr() net.Addr {
	return mockAddr("selene.pc")
}

// noAddrConn is a connection without a remote address.
type noAddrConn struct {
	*mockConn
}

func (noAddrConn) RemoteAddr() net.Addr {
	return nil
}
