package game

import (
	"context"
	"testing"
	"time"

	"github.com/jacobpatterson1549/swipe-words/game/daily"
	"github.com/jacobpatterson1549/swipe-words/game/grid"
	"github.com/jacobpatterson1549/swipe-words/game/message"
)

type mockValidator func(ctx context.Context, word string) (bool, error)

func (m mockValidator) IsValid(ctx context.Context, word string) (bool, error) {
	return m(ctx, word)
}

// mockGrids always creates the same grid.
type mockGrids struct {
	grid       grid.Grid
	challenges chan string
}

func (m mockGrids) ForPlayer(gamesPlayed int) grid.Grid {
	return m.grid
}

func (m mockGrids) ForDuel(gamesPlayed1, gamesPlayed2 int) grid.Grid {
	return m.grid
}

func (m mockGrids) Challenge(target string) grid.Grid {
	if m.challenges != nil {
		m.challenges <- target
	}
	return m.grid
}

type mockDaily func(ctx context.Context) (*daily.Challenge, error)

func (m mockDaily) Today(ctx context.Context) (*daily.Challenge, error) {
	return m(ctx)
}

// waitFor reads messages until one has the type.
func waitFor(t *testing.T, out <-chan message.Message, want message.Type) message.Message {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case m := <-out:
			if m.Type == want {
				return m
			}
		case <-timeout:
			t.Fatalf("no %v message", want)
			return message.Message{}
		}
	}
}
