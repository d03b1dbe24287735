package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jacobpatterson1549/swipe-words/game/word"
	"github.com/jacobpatterson1549/swipe-words/game/word/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	newLoggerTests := []struct {
		logLevel string
		wantOk   bool
	}{
		{
			logLevel: "loud",
		},
		{
			logLevel: "info",
			wantOk:   true,
		},
	}
	for i, test := range newLoggerTests {
		var buf bytes.Buffer
		m := mainFlags{
			logLevel: test.logLevel,
		}
		log, err := m.newLogger(&buf)
		switch {
		case !test.wantOk:
			assert.Error(t, err, "Test %v", i)
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		default:
			log.Printf("hello %v", "world")
			assert.Contains(t, buf.String(), "hello world", "Test %v", i)
		}
	}
}

func TestCreateStore(t *testing.T) {
	createStoreTests := []struct {
		mainFlags
		wantOk bool
	}{
		{
			wantOk: true,
		},
		{
			mainFlags: mainFlags{databaseBackend: backendMemory},
			wantOk:    true,
		},
		{
			mainFlags: mainFlags{databaseBackend: "cassandra"},
		},
		{ // no url
			mainFlags: mainFlags{databaseBackend: backendPostgres},
		},
		{ // no url
			mainFlags: mainFlags{databaseBackend: backendMongo},
		},
		{ // no project
			mainFlags: mainFlags{databaseBackend: backendFirestore},
		},
	}
	for i, test := range createStoreTests {
		st, err := test.mainFlags.createStore(context.Background())
		switch {
		case !test.wantOk:
			assert.Error(t, err, "Test %v", i)
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		default:
			assert.NotNil(t, st.Store, "Test %v", i)
			assert.NoError(t, st.Close(), "Test %v", i)
		}
	}
}

func TestReadWords(t *testing.T) {
	dir := t.TempDir()
	wordsFile := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(wordsFile, []byte("apple\nberry\n"), 0600))
	readWordsTests := []struct {
		wordsFile string
		want      string
		wantOk    bool
	}{
		{
			wantOk: true,
		},
		{
			wordsFile: wordsFile,
			want:      "apple\nberry\n",
			wantOk:    true,
		},
		{
			wordsFile: filepath.Join(dir, "missing.txt"),
		},
	}
	for i, test := range readWordsTests {
		m := mainFlags{
			wordsFile: test.wordsFile,
		}
		r, err := m.readWords()
		switch {
		case !test.wantOk:
			assert.Error(t, err, "Test %v", i)
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		default:
			b, err := io.ReadAll(r)
			require.NoError(t, err, "Test %v", i)
			switch {
			case len(test.want) == 0:
				assert.NotEmpty(t, b, "Test %v: wanted default words", i)
			default:
				assert.Equal(t, test.want, string(b), "Test %v", i)
			}
		}
	}
}

func TestDailyWords(t *testing.T) {
	r := strings.NewReader("zebra cat apple Proper berry toolong crane")
	got, err := dailyWords(r)
	require.NoError(t, err)
	want := []string{"apple", "berry", "crane", "zebra"}
	assert.Equal(t, want, got)
}

func TestCreateOracle(t *testing.T) {
	createOracleTests := []struct {
		mainFlags
		wantOracle bool
		wantOk     bool
	}{
		{
			wantOk: true,
		},
		{ // no rate
			mainFlags: mainFlags{openAIKey: "k3y"},
		},
		{
			mainFlags:  mainFlags{openAIKey: "k3y", oracleRate: 1},
			wantOracle: true,
			wantOk:     true,
		},
	}
	for i, test := range createOracleTests {
		o, err := test.mainFlags.createOracle()
		switch {
		case !test.wantOk:
			assert.Error(t, err, "Test %v", i)
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		default:
			assert.Equal(t, test.wantOracle, o != nil, "Test %v: oracle created", i)
		}
	}
}

func TestCreateComponents(t *testing.T) {
	m := newMainFlags(nil, func(key string) (string, bool) {
		return "", false
	})
	st, err := m.createStore(context.Background())
	require.NoError(t, err)
	var buf bytes.Buffer
	log, err := m.newLogger(&buf)
	require.NoError(t, err)
	c, err := m.createComponents(log, st)
	require.NoError(t, err)
	assert.NotNil(t, c.server)
	assert.NotNil(t, c.lexicon)
	assert.IsType(t, &word.MemoryCache{}, c.cache)
	assert.NoError(t, c.cache.Close())
}

func TestCreateCache(t *testing.T) {
	var buf bytes.Buffer
	m := mainFlags{logLevel: "info"}
	log, err := m.newLogger(&buf)
	require.NoError(t, err)
	c, err := m.createCache(log)
	require.NoError(t, err)
	assert.IsType(t, &word.MemoryCache{}, c)
	m.wordCacheDir = t.TempDir()
	c, err = m.createCache(log)
	require.NoError(t, err)
	assert.IsType(t, &badger.Cache{}, c)
	assert.NoError(t, c.Close())
}

func TestCreateComponentsBadFlags(t *testing.T) {
	createComponentsTests := []mainFlags{
		{ // no lexicon workers
			port:      8000,
			dailySalt: "salt",
		},
		{ // no daily salt
			port:           8000,
			lexiconWorkers: 1,
		},
		{ // no port
			lexiconWorkers: 1,
			dailySalt:      "salt",
		},
		{ // bad oracle
			port:           8000,
			lexiconWorkers: 1,
			dailySalt:      "salt",
			openAIKey:      "k3y",
		},
	}
	for i, m := range createComponentsTests {
		st, err := m.createStore(context.Background())
		require.NoError(t, err, "Test %v", i)
		log, err := mainFlags{logLevel: "info"}.newLogger(io.Discard)
		require.NoError(t, err, "Test %v", i)
		_, err = m.createComponents(log, st)
		assert.Error(t, err, "Test %v", i)
	}
}
