package word

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jacobpatterson1549/swipe-words/server/log/logtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLexicon(t *testing.T) {
	wordsFunc := func() (io.Reader, error) { return strings.NewReader("cat"), nil }
	newLexiconTests := []struct {
		LexiconConfig
		wantOk bool
	}{
		{},
		{
			LexiconConfig: LexiconConfig{
				Log: logtest.DiscardLogger,
			},
		},
		{
			LexiconConfig: LexiconConfig{
				Log:     logtest.DiscardLogger,
				Workers: 2,
			},
		},
		{
			LexiconConfig: LexiconConfig{
				Log:       logtest.DiscardLogger,
				Workers:   -1,
				WordsFunc: wordsFunc,
			},
		},
		{
			LexiconConfig: LexiconConfig{
				Log:       logtest.DiscardLogger,
				Workers:   2,
				WordsFunc: wordsFunc,
			},
			wantOk: true,
		},
	}
	for i, test := range newLexiconTests {
		_, err := test.LexiconConfig.NewLexicon()
		if test.wantOk {
			assert.NoError(t, err, "Test %v", i)
		} else {
			assert.Error(t, err, "Test %v", i)
		}
	}
}

func TestLexiconLookup(t *testing.T) {
	cfg := LexiconConfig{
		Log:     logtest.DiscardLogger,
		Workers: 3,
		WordsFunc: func() (io.Reader, error) {
			return DefaultWords(), nil
		},
	}
	l, err := cfg.NewLexicon()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	if found, ok := l.Lookup(ctx, "cat"); ok || found {
		t.Errorf("wanted lookup before ready to not be ok")
	}
	errC := make(chan error, 1)
	go func() {
		errC <- l.Run(ctx)
	}()
	select {
	case <-l.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("lexicon not ready")
	}
	lookupTests := []struct {
		word string
		want bool
	}{
		{"cat", true},
		{"water", true},
		{"CAT", true},
		{"qwrt", false},
		{"", false},
	}
	for i, test := range lookupTests {
		found, ok := l.Lookup(ctx, test.word)
		assert.True(t, ok, "Test %v", i)
		assert.Equal(t, test.want, found, "Test %v", i)
	}
	cancel()
	require.NoError(t, <-errC)
	found, ok := l.Lookup(context.Background(), "cat")
	assert.False(t, ok, "wanted lookup after stop to not be ok")
	assert.False(t, found)
}

func TestLexiconRunWordsError(t *testing.T) {
	cfg := LexiconConfig{
		Log:     logtest.DiscardLogger,
		Workers: 1,
		WordsFunc: func() (io.Reader, error) {
			return nil, fmt.Errorf("missing file")
		},
	}
	l, err := cfg.NewLexicon()
	require.NoError(t, err)
	assert.Error(t, l.Run(context.Background()))
	found, ok := l.Lookup(context.Background(), "cat")
	assert.False(t, ok)
	assert.False(t, found)
}

func TestLexiconLookupCancelled(t *testing.T) {
	cfg := LexiconConfig{
		Log:     logtest.DiscardLogger,
		Workers: 1,
		WordsFunc: func() (io.Reader, error) {
			return DefaultWords(), nil
		},
	}
	l, err := cfg.NewLexicon()
	require.NoError(t, err)
	close(l.ready) // ready without workers
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	found, ok := l.Lookup(ctx, "cat")
	assert.False(t, ok)
	assert.False(t, found)
}
