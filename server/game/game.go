package game

import (
	"context"
	"fmt"

	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/game/duel"
	"github.com/jacobpatterson1549/swipe-words/game/message"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
	"github.com/jacobpatterson1549/swipe-words/game/session"
)

// game is one session of a player.  It records the session and passes what happens in it to the player.
// The listener methods run on the session's goroutine and hand their work to the player's goroutine.
type game struct {
	// ctx is the context of the player, which outlives the session.
	ctx       context.Context
	player    *Player
	session   *session.Session
	cancel    context.CancelFunc
	tracker   *duel.Tracker
	reward    *user.Reward
	wordCount int
}

// UsePowerUp removes the power-up from the saved inventory of the player.
func (g *game) UsePowerUp(ctx context.Context, player string, k powerup.Kind) error {
	return g.player.Users.UsePowerUp(ctx, player, k)
}

// RecordGame saves a finished game.  Pass-and-play games are shared by players on one device, so they are not saved.
// A finished duel is also shared with the opponent, and the result is sent to the player when the opponent finishes.
func (g *game) RecordGame(ctx context.Context, player string, ss session.Snapshot) error {
	xp := user.SoloXP
	switch ss.Mode {
	case session.PassAndPlay:
		return nil
	case session.Duel, session.FriendDuel:
		xp = user.MultiplayerXP
		if err := g.tracker.Finish(ctx, ss.Score(), ss.Words()); err != nil {
			return err
		}
		go g.awaitResult()
	}
	ug := user.Game{
		PlayerID:   player,
		Mode:       string(ss.Mode),
		Score:      ss.Score(),
		WordsFound: ss.Words(),
	}
	r, err := g.player.Users.RecordGame(ctx, ug, xp)
	if err != nil {
		return fmt.Errorf("saving game: %w", err)
	}
	g.reward = r
	return nil
}

// Changed sends the state to the player and shares new words with a duel opponent.
func (g *game) Changed(ss session.Snapshot) {
	p := g.player
	p.tryDo(func(ctx context.Context) {
		if p.current != g {
			return
		}
		p.send(ctx, message.Message{Type: message.GameState, Game: &ss})
		g.publishProgress(ctx, ss)
	})
}

// Notify sends the notice to the player.
func (g *game) Notify(n session.Notice) {
	p := g.player
	p.tryDo(func(ctx context.Context) {
		p.send(ctx, message.Notice(n))
	})
}

// Ended sends the summary of the game to the player and frees the player to start another game.
// The summary is never dropped, even if other updates are waiting.
func (g *game) Ended(ss session.Snapshot) {
	p := g.player
	go p.do(g.ctx, func(ctx context.Context) {
		if p.current == g {
			p.current = nil
			g.cancel()
		}
		m := message.Message{
			Type:     message.GameOver,
			Game:     &ss,
			PowerUps: g.session.Inventory(),
			Reward:   g.reward,
		}
		p.send(ctx, m)
	})
}

// publishProgress writes the player's score and words to the duel when a word is found.
func (g *game) publishProgress(ctx context.Context, ss session.Snapshot) {
	words := ss.Words()
	if g.tracker == nil || len(words) == g.wordCount {
		return
	}
	g.wordCount = len(words)
	if err := g.tracker.PublishProgress(ctx, ss.Score(), words); err != nil {
		g.player.Log.Printf("player %v: %v", g.player.username, err)
	}
}

// opponentProgress sends the opponent's progress to the player.
func (g *game) opponentProgress(op duel.Progress) {
	p := g.player
	p.tryDo(func(ctx context.Context) {
		p.send(ctx, message.Message{Type: message.OpponentProgress, Opponent: &op})
	})
}

// awaitResult waits for the opponent to finish the duel and sends the result to the player.
func (g *game) awaitResult() {
	p := g.player
	r, err := g.tracker.AwaitResult(g.ctx)
	p.do(g.ctx, func(ctx context.Context) {
		if err != nil {
			p.Log.Printf("player %v: %v", p.username, err)
			p.sendWarning(ctx, "The opponent did not finish the duel.")
			return
		}
		p.send(ctx, message.Message{Type: message.DuelOver, DuelResult: r})
	})
}
