package game

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jacobpatterson1549/swipe-words/game/message"
	"github.com/jacobpatterson1549/swipe-words/server/log"
	"github.com/jacobpatterson1549/swipe-words/server/socket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type (
	// Manager opens sockets for users and runs a Player for each one.
	// A user can have more than one socket, each playing its own games.
	Manager struct {
		upgrader   Upgrader
		sockets    map[string]map[int]context.CancelFunc
		lastID     int
		addSockets chan socketRequest
		removed    chan removedSocket
		removeUser chan string
		ManagerConfig
	}

	// ManagerConfig contains the properties to create a Manager.
	ManagerConfig struct {
		// Debug is a flag that causes the manager to log when sockets are added and removed.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// MaxSockets is the maximum number of sockets the manager runs.
		MaxSockets int
		// MaxPlayerSockets is the maximum number of sockets each user can open.  Must be no more than MaxSockets.
		MaxPlayerSockets int
		// SocketConfig is used to create sockets.
		SocketConfig socket.Config
		// PlayerConfig is used to create the players of the sockets.
		PlayerConfig PlayerConfig
	}

	// Upgrader turns a http request into a websocket.
	Upgrader interface {
		Upgrade(w http.ResponseWriter, r *http.Request) (socket.Conn, error)
	}

	// socketRequest is used to add sockets from http requests.
	socketRequest struct {
		username string
		w        http.ResponseWriter
		r        *http.Request
		result   chan<- error
	}

	// removedSocket identifies a socket that stopped.
	removedSocket struct {
		username string
		id       int
	}
)

// ErrUpgrade is returned when a request cannot be upgraded to a websocket.  The response has already been written.
var ErrUpgrade = errors.New("upgrading to websocket connection")

var openSockets = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "swipe_words",
	Name:      "open_sockets",
	Help:      "Sockets currently connected to players.",
})

// NewManager creates a Manager that opens sockets with the upgrader.
func (cfg ManagerConfig) NewManager(u Upgrader) (*Manager, error) {
	if err := cfg.validate(u); err != nil {
		return nil, fmt.Errorf("creating game manager: validation: %w", err)
	}
	m := Manager{
		upgrader:      u,
		sockets:       make(map[string]map[int]context.CancelFunc, cfg.MaxSockets),
		addSockets:    make(chan socketRequest),
		removed:       make(chan removedSocket),
		removeUser:    make(chan string),
		ManagerConfig: cfg,
	}
	return &m, nil
}

// validate ensures the configuration has no errors.
func (cfg ManagerConfig) validate(u Upgrader) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case u == nil:
		return fmt.Errorf("upgrader required")
	case cfg.MaxPlayerSockets < 1:
		return fmt.Errorf("each player must be able to open at least one socket")
	case cfg.MaxSockets < cfg.MaxPlayerSockets:
		return fmt.Errorf("players cannot create more sockets than the manager allows")
	}
	return nil
}

// Run adds and removes sockets until the context is done.  The wait group is done when every socket has stopped.
func (m *Manager) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		var socketsWG sync.WaitGroup
		defer socketsWG.Wait()
		for { // BLOCKING
			select {
			case <-ctx.Done():
				return
			case sr := <-m.addSockets:
				sr.result <- m.addSocket(ctx, sr, &socketsWG)
			case rs := <-m.removed:
				m.remove(rs)
			case username := <-m.removeUser:
				for _, cancel := range m.sockets[username] {
					cancel()
				}
			}
		}
	}()
}

// AddUser opens a socket for the user from the request.
// The request is answered with an error if the upgrade fails.
func (m *Manager) AddUser(ctx context.Context, username string, w http.ResponseWriter, r *http.Request) error {
	result := make(chan error, 1)
	sr := socketRequest{
		username: username,
		w:        w,
		r:        r,
		result:   result,
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.addSockets <- sr:
	}
	return <-result
}

// RemoveUser closes the sockets of the user.
func (m *Manager) RemoveUser(ctx context.Context, username string) {
	select {
	case <-ctx.Done():
	case m.removeUser <- username:
	}
}

// addSocket upgrades the request and runs a socket and player for it.
func (m *Manager) addSocket(ctx context.Context, sr socketRequest, wg *sync.WaitGroup) error {
	switch {
	case len(sr.username) == 0:
		return fmt.Errorf("username required")
	case m.numSockets() >= m.MaxSockets:
		return fmt.Errorf("no room for another socket")
	case len(m.sockets[sr.username]) >= m.MaxPlayerSockets:
		return fmt.Errorf("player has reached quota of sockets, close an existing one")
	}
	socketIn := make(chan message.Message)
	socketOut := make(chan message.Message)
	p, err := m.PlayerConfig.NewPlayer(sr.username, socketIn)
	if err != nil {
		return err
	}
	conn, err := m.upgrader.Upgrade(sr.w, sr.r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpgrade, err)
	}
	s, err := m.SocketConfig.NewSocket(conn)
	if err != nil {
		conn.Close()
		return err
	}
	socketCtx, cancel := context.WithCancel(ctx)
	if err := s.Run(socketCtx, socketIn, socketOut); err != nil {
		cancel()
		conn.Close()
		return err
	}
	m.lastID++
	rs := removedSocket{
		username: sr.username,
		id:       m.lastID,
	}
	if _, ok := m.sockets[rs.username]; !ok {
		m.sockets[rs.username] = make(map[int]context.CancelFunc, m.MaxPlayerSockets)
	}
	m.sockets[rs.username][rs.id] = cancel
	openSockets.Inc()
	if m.Debug {
		m.Log.Printf("added socket %v for %v", s, rs.username)
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.Run(socketCtx, socketOut)
	}()
	go func() {
		defer wg.Done()
		<-s.Done()
		cancel()
		select {
		case <-ctx.Done():
		case m.removed <- rs:
		}
	}()
	return nil
}

// remove forgets the stopped socket.
func (m *Manager) remove(rs removedSocket) {
	userSockets := m.sockets[rs.username]
	if _, ok := userSockets[rs.id]; !ok {
		return
	}
	delete(userSockets, rs.id)
	if len(userSockets) == 0 {
		delete(m.sockets, rs.username)
	}
	openSockets.Dec()
	if m.Debug {
		m.Log.Printf("removed socket %v of %v", rs.id, rs.username)
	}
}

// numSockets is the number of running sockets.
func (m *Manager) numSockets() int {
	n := 0
	for _, userSockets := range m.sockets {
		n += len(userSockets)
	}
	return n
}
