// Package message contains structures to pass between the ui and server.
package message

import (
	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/game/duel"
	"github.com/jacobpatterson1549/swipe-words/game/grid"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
	"github.com/jacobpatterson1549/swipe-words/game/session"
)

type (
	// Type represents what the purpose of a message.
	Type int

	// Message contains information to or from a socket for a game.
	Message struct {
		// Type is the purpose of the message.
		Type Type `json:"type"`
		// Info is a message to show to the player.
		Info string `json:"info,omitempty"`
		// Mode is the kind of game to start.
		Mode session.Mode `json:"mode,omitempty"`
		// Players are the names of the players taking turns in a pass-and-play game.
		Players []string `json:"players,omitempty"`
		// Coord is the cell that was tapped.
		Coord *grid.Coord `json:"coord,omitempty"`
		// PowerUp is the kind of power-up to use.
		PowerUp powerup.Kind `json:"powerUp,omitempty"`
		// Friend is the username of the player to challenge.
		Friend string `json:"friend,omitempty"`
		// Game is the state of the current game.
		Game *session.Snapshot `json:"game,omitempty"`
		// PowerUps are the power-ups the player has left.
		PowerUps powerup.Inventory `json:"powerUps,omitempty"`
		// Reward is what the player earned for a finished game.
		Reward *user.Reward `json:"reward,omitempty"`
		// Start tells the player when a duel starts.
		Start *duel.StartEvent `json:"start,omitempty"`
		// Opponent is the progress of the other player of a duel.
		Opponent *duel.Progress `json:"opponent,omitempty"`
		// DuelResult is the reconciled outcome of a duel.
		DuelResult *duel.Result `json:"duelResult,omitempty"`
	}
)

const (
	_ Type = iota
	// StartGame is a Type that users send to start a solo, challenge, or pass-and-play game.
	StartGame
	// BeginTurn is a Type that users send to start the next pass-and-play turn.
	BeginTurn
	// Tap is a Type that users send to select or deselect a cell.
	Tap
	// ClearSelection is a Type that users send to deselect every cell.
	ClearSelection
	// SubmitWord is a Type that users send to check the selected word.
	SubmitWord
	// UsePowerUp is a Type that users send to use a power-up.
	UsePowerUp
	// ExitGame is a Type that users send to leave the current game without saving it.
	ExitGame
	// FindMatch is a Type that users send to look for a duel opponent.
	FindMatch
	// CancelMatch is a Type that users send to stop looking for an opponent.
	CancelMatch
	// ChallengeFriend is a Type that users send to start a duel with a friend.
	ChallengeFriend
	// GameState is a Type that the server sends when the current game changes.
	GameState
	// GameOver is a Type that the server sends when the current game ends.
	GameOver
	// MatchWaiting is a Type that the server sends when the user is waiting for an opponent.
	MatchWaiting
	// MatchFound is a Type that the server sends with the start of a duel.
	MatchFound
	// OpponentProgress is a Type that the server sends when the duel opponent finds words.
	OpponentProgress
	// DuelOver is a Type that the server sends with the reconciled result of a duel.
	DuelOver
	// SocketInfo is a Type that servers send to tell users something.
	SocketInfo
	// SocketWarning is a Type that servers send to inform users that a request is invalid.
	SocketWarning
	// SocketError is a Type that servers send to users to report an unexpected state.
	SocketError
	// SocketHTTPPing is a Type the server sends to the user to request a http request to the site to keep it active.  Some environments shut down after a period of HTTP inactivity has passed.
	SocketHTTPPing // keep last for tests
)

var typeNames = map[Type]string{
	StartGame:        "StartGame",
	BeginTurn:        "BeginTurn",
	Tap:              "Tap",
	ClearSelection:   "ClearSelection",
	SubmitWord:       "SubmitWord",
	UsePowerUp:       "UsePowerUp",
	ExitGame:         "ExitGame",
	FindMatch:        "FindMatch",
	CancelMatch:      "CancelMatch",
	ChallengeFriend:  "ChallengeFriend",
	GameState:        "GameState",
	GameOver:         "GameOver",
	MatchWaiting:     "MatchWaiting",
	MatchFound:       "MatchFound",
	OpponentProgress: "OpponentProgress",
	DuelOver:         "DuelOver",
	SocketInfo:       "SocketInfo",
	SocketWarning:    "SocketWarning",
	SocketError:      "SocketError",
	SocketHTTPPing:   "SocketHTTPPing",
}

// String is the name of the type, for logging.
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "Unknown"
}

// Notice converts a session notice into a message.
func Notice(n session.Notice) Message {
	t := SocketInfo
	if n.Warning {
		t = SocketWarning
	}
	return Message{
		Type: t,
		Info: n.Text,
	}
}
