// Package game connects players' sockets to their games.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/game/daily"
	"github.com/jacobpatterson1549/swipe-words/game/duel"
	"github.com/jacobpatterson1549/swipe-words/game/grid"
	"github.com/jacobpatterson1549/swipe-words/game/message"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
	"github.com/jacobpatterson1549/swipe-words/game/session"
	"github.com/jacobpatterson1549/swipe-words/server/log"
)

type (
	// Player handles the messages of one user's socket, running at most one game at a time.
	// Everything the player changes happens on the goroutine of Run.
	Player struct {
		username    string
		out         chan<- message.Message
		actions     chan func(ctx context.Context)
		current     *game
		matchCancel context.CancelFunc
		PlayerConfig
	}

	// PlayerConfig contains the properties to create Players.
	PlayerConfig struct {
		// Debug causes messages to be logged.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// TimeFunc is the current time.
		TimeFunc func() time.Time
		// Users reads and rewards the players.
		Users Users
		// Grids creates grids for games that are not duels.
		Grids Grids
		// Daily has the word of the daily challenge grid.
		Daily DailyWords
		// Matchmaker pairs players for duels.
		Matchmaker Matchmaker
		// TrackerConfig is used to follow duels.
		TrackerConfig duel.TrackerConfig
		// SessionConfig is used to create sessions.  The Recorder is set by the player.
		SessionConfig session.Config
	}

	// Users reads players and saves what they do.
	Users interface {
		Read(ctx context.Context, username string) (*user.User, error)
		UsePowerUp(ctx context.Context, username string, k powerup.Kind) error
		RecordGame(ctx context.Context, g user.Game, xp int) (*user.Reward, error)
		CheckFriends(ctx context.Context, username, friend string) error
	}

	// Grids creates grids.
	Grids interface {
		ForPlayer(gamesPlayed int) grid.Grid
		Challenge(target string) grid.Grid
	}

	// DailyWords has the daily challenge.
	DailyWords interface {
		Today(ctx context.Context) (*daily.Challenge, error)
	}

	// Matchmaker pairs players for duels.
	Matchmaker interface {
		FindMatch(ctx context.Context, p duel.Player) (*duel.Duel, error)
		Challenge(ctx context.Context, from, to duel.Player) (*duel.Duel, error)
		CancelWaiting(ctx context.Context, userID string) error
		WaitForStart(ctx context.Context, userID string, mode session.Mode) (*duel.StartEvent, error)
	}
)

// actionBufferSize is the number of changes from sessions and duels that can wait to be handled.
const actionBufferSize = 64

// NewPlayer creates a Player for the user that writes messages to the out channel.
func (cfg PlayerConfig) NewPlayer(username string, out chan<- message.Message) (*Player, error) {
	if err := cfg.validate(username, out); err != nil {
		return nil, fmt.Errorf("creating player: validation: %w", err)
	}
	p := Player{
		username:     username,
		out:          out,
		actions:      make(chan func(ctx context.Context), actionBufferSize),
		PlayerConfig: cfg,
	}
	return &p, nil
}

// validate ensures the configuration has no errors.
func (cfg PlayerConfig) validate(username string, out chan<- message.Message) error {
	switch {
	case len(username) == 0:
		return fmt.Errorf("username required")
	case out == nil:
		return fmt.Errorf("out channel required")
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.Users == nil:
		return fmt.Errorf("users required")
	case cfg.Grids == nil:
		return fmt.Errorf("grids required")
	case cfg.Daily == nil:
		return fmt.Errorf("daily words required")
	case cfg.Matchmaker == nil:
		return fmt.Errorf("matchmaker required")
	}
	return nil
}

// Run handles messages from the in channel until it is closed or the context is done.
// The current game is stopped without saving it and the player leaves the waiting pool when Run returns.
func (p *Player) Run(ctx context.Context, in <-chan message.Message) {
	defer p.stop()
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			p.handleMessage(ctx, m)
		case a := <-p.actions:
			a(ctx)
		}
	}
}

// handleMessage takes appropriate actions for different message types.
func (p *Player) handleMessage(ctx context.Context, m message.Message) {
	if p.Debug {
		p.Log.Printf("%v sent %v message", p.username, m.Type)
	}
	switch m.Type {
	case message.StartGame:
		p.startGame(ctx, m)
	case message.FindMatch:
		p.findMatch(ctx, m)
	case message.CancelMatch:
		p.cancelMatch(ctx)
	case message.ChallengeFriend:
		p.challengeFriend(ctx, m)
	default:
		p.handleGameMessage(ctx, m)
	}
}

// handleGameMessage passes the message to the current session.
func (p *Player) handleGameMessage(ctx context.Context, m message.Message) {
	if p.current == nil {
		p.sendWarning(ctx, "No game is running.")
		return
	}
	s := p.current.session
	var err error
	switch m.Type {
	case message.Tap:
		if m.Coord == nil {
			p.sendWarning(ctx, "No cell tapped.")
			return
		}
		err = s.Tap(ctx, *m.Coord)
	case message.ClearSelection:
		err = s.ClearSelection(ctx)
	case message.SubmitWord:
		err = s.Submit(ctx)
	case message.UsePowerUp:
		err = s.UsePowerUp(ctx, m.PowerUp)
	case message.BeginTurn:
		err = s.BeginTurn(ctx)
	case message.ExitGame:
		err = s.Exit(ctx)
	default:
		p.sendWarning(ctx, fmt.Sprintf("Unknown message type: %v.", m.Type))
		return
	}
	if err == nil {
		return
	}
	select {
	case <-s.Done():
		p.sendWarning(ctx, "The game is over.")
	default:
	}
}

// startGame starts a game that does not need an opponent.
func (p *Player) startGame(ctx context.Context, m message.Message) {
	if p.busy(ctx) {
		return
	}
	u, err := p.Users.Read(ctx, p.username)
	if err != nil {
		p.sendError(ctx, fmt.Errorf("reading user: %w", err))
		return
	}
	players := []string{p.username}
	var g grid.Grid
	switch m.Mode {
	case session.Solo:
		g = p.Grids.ForPlayer(u.GamesPlayed)
	case session.PassAndPlay:
		players = m.Players
		g = p.Grids.ForPlayer(u.GamesPlayed)
	case session.Challenge:
		c, err := p.Daily.Today(ctx)
		if err != nil {
			p.sendError(ctx, fmt.Errorf("reading daily challenge: %w", err))
			return
		}
		g = p.Grids.Challenge(c.Word)
	default:
		p.sendWarning(ctx, fmt.Sprintf("Cannot start a %q game.", m.Mode))
		return
	}
	p.start(ctx, m.Mode, players, g, u.PowerUps, nil)
}

// start creates and runs a session.  The duel tracker is nil for games that are not duels.
func (p *Player) start(ctx context.Context, mode session.Mode, players []string, g grid.Grid, inv powerup.Inventory, tracker *duel.Tracker) {
	st, err := session.NewState(mode, players...)
	if err != nil {
		p.sendWarning(ctx, err.Error())
		return
	}
	gm := game{
		ctx:     ctx,
		player:  p,
		tracker: tracker,
	}
	cfg := p.SessionConfig
	cfg.Recorder = &gm
	s, err := cfg.NewSession(p.username, st, g, inv)
	if err != nil {
		p.sendError(ctx, err)
		return
	}
	gameCtx, cancel := context.WithCancel(ctx)
	gm.session = s
	gm.cancel = cancel
	p.current = &gm
	go func() {
		if err := s.Run(gameCtx, &gm); err != nil {
			p.Log.Printf("running %v game for %v: %v", mode, p.username, err)
		}
	}()
	if tracker != nil {
		go tracker.Run(gameCtx, gm.opponentProgress)
	}
}

// findMatch looks for an online opponent, or waits for a friend's challenge if the mode is a friend duel.
func (p *Player) findMatch(ctx context.Context, m message.Message) {
	if p.busy(ctx) {
		return
	}
	mode := session.Duel
	if m.Mode == session.FriendDuel {
		mode = session.FriendDuel
	} else {
		dp, err := p.duelPlayer(ctx, p.username)
		if err != nil {
			p.sendError(ctx, err)
			return
		}
		if _, err := p.Matchmaker.FindMatch(ctx, *dp); err != nil {
			p.sendError(ctx, fmt.Errorf("finding match: %w", err))
			return
		}
	}
	p.send(ctx, message.Message{Type: message.MatchWaiting, Mode: mode})
	p.waitForStart(ctx, mode)
}

// challengeFriend starts a duel with a friend who is waiting for a challenge.
func (p *Player) challengeFriend(ctx context.Context, m message.Message) {
	if p.busy(ctx) {
		return
	}
	switch err := p.Users.CheckFriends(ctx, p.username, m.Friend); {
	case errors.Is(err, user.ErrNotFriends):
		p.sendWarning(ctx, fmt.Sprintf("%q is not your friend.", m.Friend))
		return
	case err != nil:
		p.sendError(ctx, fmt.Errorf("checking friends: %w", err))
		return
	}
	from, err := p.duelPlayer(ctx, p.username)
	if err != nil {
		p.sendError(ctx, err)
		return
	}
	to, err := p.duelPlayer(ctx, m.Friend)
	if err != nil {
		p.sendWarning(ctx, fmt.Sprintf("Cannot challenge %q.", m.Friend))
		return
	}
	if _, err := p.Matchmaker.Challenge(ctx, *from, *to); err != nil {
		p.sendWarning(ctx, fmt.Sprintf("Cannot challenge %q.", m.Friend))
		return
	}
	p.waitForStart(ctx, session.FriendDuel)
}

// waitForStart watches for the start of a duel on a separate goroutine.
func (p *Player) waitForStart(ctx context.Context, mode session.Mode) {
	matchCtx, cancel := context.WithCancel(ctx)
	p.matchCancel = cancel
	go func() {
		e, err := p.Matchmaker.WaitForStart(matchCtx, p.username, mode)
		p.do(matchCtx, func(ctx context.Context) {
			if matchCtx.Err() != nil {
				return // cancelled
			}
			p.matchCancel = nil
			switch {
			case errors.Is(err, duel.ErrStaleMatch):
				if mode == session.Duel {
					p.cancelWaiting(ctx)
				}
				p.sendWarning(ctx, "No opponent found. Try again later.")
			case err != nil:
				p.sendError(ctx, fmt.Errorf("waiting for duel: %w", err))
			default:
				p.matchFound(ctx, *e)
			}
		})
	}()
}

// matchFound tells the player about the duel and starts it at the start time.
func (p *Player) matchFound(ctx context.Context, e duel.StartEvent) {
	if e.Duel == nil {
		p.sendError(ctx, fmt.Errorf("duel %v not loaded", e.GameID))
		return
	}
	tracker, err := p.TrackerConfig.NewTracker(*e.Duel, p.username)
	if err != nil {
		p.sendError(ctx, err)
		return
	}
	u, err := p.Users.Read(ctx, p.username)
	if err != nil {
		p.sendError(ctx, fmt.Errorf("reading user: %w", err))
		return
	}
	p.send(ctx, message.Message{Type: message.MatchFound, Start: &e})
	delay := time.UnixMilli(e.StartTimestamp).Sub(p.TimeFunc())
	time.AfterFunc(delay, func() {
		p.do(ctx, func(ctx context.Context) {
			if p.current != nil {
				p.Log.Printf("%v started another game before duel %v", p.username, e.GameID)
				return
			}
			p.start(ctx, e.Mode, []string{p.username}, e.Grid, u.PowerUps, tracker)
		})
	})
}

// cancelMatch stops looking for an opponent.
func (p *Player) cancelMatch(ctx context.Context) {
	if p.matchCancel == nil {
		p.sendWarning(ctx, "Not looking for a match.")
		return
	}
	p.matchCancel()
	p.matchCancel = nil
	p.cancelWaiting(ctx)
	p.send(ctx, message.Message{Type: message.SocketInfo, Info: "Stopped looking for a match."})
}

// cancelWaiting removes the player from the waiting pool.
func (p *Player) cancelWaiting(ctx context.Context) {
	if err := p.Matchmaker.CancelWaiting(ctx, p.username); err != nil {
		p.Log.Printf("removing %v from waiting players: %v", p.username, err)
	}
}

// duelPlayer reads the user for matchmaking.
func (p *Player) duelPlayer(ctx context.Context, username string) (*duel.Player, error) {
	u, err := p.Users.Read(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("reading user: %w", err)
	}
	dp := duel.Player{
		ID:          u.Username,
		Nickname:    u.Username,
		GamesPlayed: u.GamesPlayed,
	}
	return &dp, nil
}

// busy warns the player if a game is running or a match is being found.
func (p *Player) busy(ctx context.Context) bool {
	switch {
	case p.current != nil:
		p.sendWarning(ctx, "Finish or exit the current game first.")
		return true
	case p.matchCancel != nil:
		p.sendWarning(ctx, "Already looking for a match.")
		return true
	}
	return false
}

// stop cancels the current game and match.
func (p *Player) stop() {
	if p.current != nil {
		p.current.cancel()
		p.current = nil
	}
	if p.matchCancel != nil {
		p.matchCancel()
		p.matchCancel = nil
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		p.cancelWaiting(ctx)
	}
}

// do runs the action on the goroutine of Run.  The action is dropped if the context is done first.
func (p *Player) do(ctx context.Context, a func(ctx context.Context)) {
	select {
	case <-ctx.Done():
	case p.actions <- a:
	}
}

// tryDo runs the action on the goroutine of Run if there is room for it.  It never blocks.
func (p *Player) tryDo(a func(ctx context.Context)) {
	select {
	case p.actions <- a:
	default:
		p.Log.Printf("dropping update for %v: too many waiting", p.username)
	}
}

// send writes the message to the player's socket.
func (p *Player) send(ctx context.Context, m message.Message) {
	message.Send(ctx, m, p.out, p.Debug, p.Log)
}

// sendWarning tells the player that a request was rejected.
func (p *Player) sendWarning(ctx context.Context, text string) {
	p.send(ctx, message.Message{Type: message.SocketWarning, Info: text})
}

// sendError tells the player that something unexpected happened.
func (p *Player) sendError(ctx context.Context, err error) {
	p.Log.Printf("player %v: %v", p.username, err)
	p.send(ctx, message.Message{Type: message.SocketError, Info: "Something went wrong. Please try again."})
}
