package session

import (
	"context"
	"testing"
	"time"

	"github.com/jacobpatterson1549/swipe-words/game/powerup"
)

type mockValidator func(ctx context.Context, word string) (bool, error)

func (m mockValidator) IsValid(ctx context.Context, word string) (bool, error) {
	return m(ctx, word)
}

type mockRecorder struct {
	usePowerUpFunc func(ctx context.Context, player string, k powerup.Kind) error
	recordGameFunc func(ctx context.Context, player string, ss Snapshot) error
}

func (m mockRecorder) UsePowerUp(ctx context.Context, player string, k powerup.Kind) error {
	return m.usePowerUpFunc(ctx, player, k)
}

func (m mockRecorder) RecordGame(ctx context.Context, player string, ss Snapshot) error {
	return m.recordGameFunc(ctx, player, ss)
}

// recordingListener buffers what it receives so tests can wait for it.
type recordingListener struct {
	changed chan Snapshot
	notices chan Notice
	ended   chan Snapshot
}

func newRecordingListener() *recordingListener {
	l := recordingListener{
		changed: make(chan Snapshot, 1000),
		notices: make(chan Notice, 100),
		ended:   make(chan Snapshot, 1),
	}
	return &l
}

func (l *recordingListener) Changed(ss Snapshot) {
	select {
	case l.changed <- ss:
	default:
	}
}

func (l *recordingListener) Notify(n Notice) {
	l.notices <- n
}

func (l *recordingListener) Ended(ss Snapshot) {
	l.ended <- ss
}

func (l *recordingListener) nextNotice(t *testing.T) Notice {
	t.Helper()
	select {
	case n := <-l.notices:
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("no notice")
	}
	return Notice{}
}

func (l *recordingListener) waitEnded(t *testing.T) Snapshot {
	t.Helper()
	select {
	case ss := <-l.ended:
		return ss
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
	return Snapshot{}
}
