package main

import (
	"bytes"
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"io"
	"math/rand"
	"os"
	"slices"
	"time"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/db/bcrypt"
	"github.com/jacobpatterson1549/swipe-words/db/firestore"
	"github.com/jacobpatterson1549/swipe-words/db/memory"
	"github.com/jacobpatterson1549/swipe-words/db/mongo"
	"github.com/jacobpatterson1549/swipe-words/db/sql"
	"github.com/jacobpatterson1549/swipe-words/db/sql/postgres"
	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/game/daily"
	"github.com/jacobpatterson1549/swipe-words/game/duel"
	"github.com/jacobpatterson1549/swipe-words/game/grid"
	"github.com/jacobpatterson1549/swipe-words/game/score"
	"github.com/jacobpatterson1549/swipe-words/game/session"
	"github.com/jacobpatterson1549/swipe-words/game/word"
	"github.com/jacobpatterson1549/swipe-words/game/word/badger"
	"github.com/jacobpatterson1549/swipe-words/game/word/openai"
	"github.com/jacobpatterson1549/swipe-words/server"
	"github.com/jacobpatterson1549/swipe-words/server/auth"
	"github.com/jacobpatterson1549/swipe-words/server/certificate"
	"github.com/jacobpatterson1549/swipe-words/server/game"
	"github.com/jacobpatterson1549/swipe-words/server/log"
	"github.com/jacobpatterson1549/swipe-words/server/socket"
	_ "github.com/lib/pq" // register "postgres" database driver from package init() function
)

type (
	// components are the parts of the server that are run by main.
	components struct {
		server  *server.Server
		lexicon *word.Lexicon
		cache   wordCache
	}

	// wordCache is a word.Cache that main runs and closes.
	wordCache interface {
		word.Cache
		Run(ctx context.Context) error
		Close() error
	}

	// store is a database with the function to close it.
	store struct {
		db.Store
		Close func() error
	}
)

const (
	// queryPeriod is how long each database call can take.
	queryPeriod = 5 * time.Second
	// bcryptCost is the work of hashing passwords.
	bcryptCost = 10
	// dailyWordLength is the length of daily challenge words.
	dailyWordLength = 5
)

// newLogger creates the logger of the server.
func (m mainFlags) newLogger(w io.Writer) (*log.Zerolog, error) {
	return log.New(w, m.logLevel, m.logPretty)
}

// createStore opens the database backend.
func (m mainFlags) createStore(ctx context.Context) (*store, error) {
	cfg := db.Config{
		QueryPeriod: queryPeriod,
	}
	switch m.databaseBackend {
	case backendMemory, "":
		s := store{
			Store: memory.NewStore(),
			Close: func() error { return nil },
		}
		return &s, nil
	case backendPostgres:
		d, err := sql.NewDatabase("postgres", m.databaseURL, cfg)
		if err != nil {
			return nil, err
		}
		files, err := sqlFiles(embeddedSQLFS)
		if err != nil {
			d.DB.Close()
			return nil, err
		}
		if err := d.Setup(ctx, files); err != nil {
			d.DB.Close()
			return nil, fmt.Errorf("setting up postgres database: %w", err)
		}
		s := store{
			Store: &postgres.Store{Database: d},
			Close: d.DB.Close,
		}
		return &s, nil
	case backendFirestore:
		fs, err := firestore.NewStore(ctx, cfg, m.firestoreProject)
		if err != nil {
			return nil, err
		}
		s := store{
			Store: fs,
			Close: fs.Close,
		}
		return &s, nil
	case backendMongo:
		ms, err := mongo.NewStore(ctx, cfg, m.databaseURL)
		if err != nil {
			return nil, err
		}
		s := store{
			Store: ms,
			Close: func() error {
				return ms.Close(context.Background())
			},
		}
		return &s, nil
	}
	return nil, fmt.Errorf("unknown database backend: %q", m.databaseBackend)
}

// readWords reads the words file, or the built-in words if there is no file.
func (m mainFlags) readWords() (io.Reader, error) {
	if len(m.wordsFile) == 0 {
		return word.DefaultWords(), nil
	}
	b, err := os.ReadFile(m.wordsFile)
	if err != nil {
		return nil, fmt.Errorf("reading words file: %w", err)
	}
	return bytes.NewReader(b), nil
}

// dailyWords are the sorted words that can be daily challenge words.
func dailyWords(r io.Reader) ([]string, error) {
	v, err := word.NewValidator(r)
	if err != nil {
		return nil, fmt.Errorf("reading daily words: %w", err)
	}
	keys := make([]string, 0, len(v))
	for w := range v {
		keys = append(keys, w)
	}
	slices.Sort(keys)
	var words []string
	for _, w := range keys {
		if len(w) == dailyWordLength {
			words = append(words, w)
		}
	}
	return words, nil
}

// createOracle creates the oracle that is asked about words the lexicon and ledger do not know.
// There is no oracle if there is no api key.
func (m mainFlags) createOracle() (word.Oracle, error) {
	if len(m.openAIKey) == 0 {
		return nil, nil
	}
	cfg := openai.Config{
		APIKey:            m.openAIKey,
		BaseURL:           m.openAIBaseURL,
		Model:             m.openAIModel,
		Timeout:           10 * time.Second,
		RequestsPerSecond: m.oracleRate,
		Burst:             1,
	}
	o, err := cfg.NewOracle()
	if err != nil {
		return nil, err
	}
	return o, nil
}

// createComponents creates the server and the word services it needs.
func (m mainFlags) createComponents(log *log.Zerolog, st db.Store) (*components, error) {
	timeFunc := time.Now
	lexiconCfg := word.LexiconConfig{
		Log:       log.Component("lexicon"),
		Workers:   m.lexiconWorkers,
		WordsFunc: m.readWords,
	}
	lexicon, err := lexiconCfg.NewLexicon()
	if err != nil {
		return nil, err
	}
	ledger, err := word.NewLedger(st)
	if err != nil {
		return nil, err
	}
	oracle, err := m.createOracle()
	if err != nil {
		return nil, err
	}
	chainCfg := word.ChainConfig{
		Log:     log.Component("word_chain"),
		Lexicon: lexicon,
		Ledger:  ledger,
		Oracle:  oracle,
		OnlineFunc: func() bool {
			return true // the server is always connected to its database
		},
	}
	chain, err := chainCfg.NewChain()
	if err != nil {
		return nil, err
	}
	cache, err := m.createCache(log)
	if err != nil {
		return nil, err
	}
	c, err := m.createServer(log, st, chain, cache, timeFunc)
	if err != nil {
		cache.Close()
		return nil, err
	}
	c.lexicon = lexicon
	return c, nil
}

// createCache creates the cache of words players have found.  The cache is kept in memory if there is no cache directory.
func (m mainFlags) createCache(log *log.Zerolog) (wordCache, error) {
	if len(m.wordCacheDir) == 0 {
		return word.NewMemoryCache(), nil
	}
	cfg := badger.Config{
		Log:        log.Component("word_cache"),
		Path:       m.wordCacheDir,
		GCPeriod:   10 * time.Minute,
		MaxRetries: 3,
	}
	c, err := cfg.NewCache()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// createServer creates the server that hosts games with the word services.
func (m mainFlags) createServer(log *log.Zerolog, st db.Store, chain *word.Chain, cache wordCache, timeFunc func() time.Time) (*components, error) {
	scorer, err := score.NewScorer(cache)
	if err != nil {
		return nil, err
	}
	gridCfg := grid.Config{
		IntnFunc:    rand.Intn,
		ShuffleFunc: rand.Shuffle,
	}
	grids, err := gridCfg.NewGenerator()
	if err != nil {
		return nil, err
	}
	userDaoCfg := user.DaoConfig{
		Store:           st,
		PasswordHandler: bcrypt.NewPasswordHandler(bcryptCost),
		TimeFunc:        timeFunc,
	}
	ud, err := userDaoCfg.NewDao()
	if err != nil {
		return nil, err
	}
	dailySvc, err := m.createDaily(log, st, ud, chain, timeFunc)
	if err != nil {
		return nil, err
	}
	matchmakerCfg := duel.MatchmakerConfig{
		Log:         log.Component("matchmaker"),
		Store:       st,
		Grids:       grids,
		TimeFunc:    timeFunc,
		StartDelay:  3 * time.Second,
		Freshness:   30 * time.Second,
		PollPeriod:  time.Second,
		WaitTimeout: 60 * time.Second,
	}
	matchmaker, err := matchmakerCfg.NewMatchmaker()
	if err != nil {
		return nil, err
	}
	lobby, err := m.createLobby(log, ud, grids, dailySvc, matchmaker, chain, scorer, st, timeFunc)
	if err != nil {
		return nil, err
	}
	tokenizerCfg := auth.TokenizerConfig{
		KeyReader: crypto_rand.Reader,
		TimeFunc:  timeFunc,
		Valid:     24 * time.Hour,
	}
	tokenizer, err := tokenizerCfg.NewTokenizer()
	if err != nil {
		return nil, fmt.Errorf("creating authentication tokenizer: %w", err)
	}
	serverCfg := server.Config{
		Port:    m.port,
		StopDur: 5 * time.Second,
		Challenge: certificate.Challenge{
			Token: m.challengeToken,
			Key:   m.challengeKey,
		},
		TLSCertFile: m.tlsCertFile,
		TLSKeyFile:  m.tlsKeyFile,
	}
	p := server.Parameters{
		Log:       log.Component("server"),
		Tokenizer: tokenizer,
		UserDao:   ud,
		Lobby:     lobby,
		Daily:     dailySvc,
	}
	s, err := serverCfg.NewServer(p)
	if err != nil {
		return nil, err
	}
	c := components{
		server: s,
		cache:  cache,
	}
	return &c, nil
}

// createDaily creates the daily challenge service.
func (m mainFlags) createDaily(log *log.Zerolog, st db.Store, ud *user.Dao, chain *word.Chain, timeFunc func() time.Time) (*daily.Service, error) {
	r, err := m.readWords()
	if err != nil {
		return nil, err
	}
	words, err := dailyWords(r)
	if err != nil {
		return nil, err
	}
	cfg := daily.ServiceConfig{
		Log:       log.Component("daily"),
		Store:     st,
		Users:     ud,
		Validator: chain,
		Words:     words,
		Salt:      m.dailySalt,
		TimeFunc:  timeFunc,
	}
	return cfg.NewService()
}

// createLobby creates the manager of the sockets of the players, where games are played.
func (m mainFlags) createLobby(log *log.Zerolog, ud *user.Dao, grids *grid.Generator, dailySvc *daily.Service, matchmaker *duel.Matchmaker,
	chain *word.Chain, scorer *score.Scorer, st db.Store, timeFunc func() time.Time) (*game.Manager, error) {
	socketCfg := socket.Config{
		Debug:          m.debugGame,
		Log:            log.Component("socket"),
		TimeFunc:       timeFunc,
		ReadWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		PingPeriod:     54 * time.Second, // readWait * 0.9
		IdlePeriod:     15 * time.Minute,
		HTTPPingPeriod: 10 * time.Minute,
	}
	sessionCfg := session.Config{
		Log:         log.Component("session"),
		TickPeriod:  time.Second,
		Validator:   chain,
		Scorer:      scorer,
		NewGridFunc: grids.Weighted,
	}
	trackerCfg := duel.TrackerConfig{
		Log:           log.Component("duel"),
		Store:         st,
		PollPeriod:    time.Second,
		ResultTimeout: 30 * time.Second,
	}
	playerCfg := game.PlayerConfig{
		Debug:         m.debugGame,
		Log:           log.Component("player"),
		TimeFunc:      timeFunc,
		Users:         ud,
		Grids:         grids,
		Daily:         dailySvc,
		Matchmaker:    matchmaker,
		TrackerConfig: trackerCfg,
		SessionConfig: sessionCfg,
	}
	managerCfg := game.ManagerConfig{
		Debug:            m.debugGame,
		Log:              log.Component("lobby"),
		MaxSockets:       64,
		MaxPlayerSockets: 4,
		SocketConfig:     socketCfg,
		PlayerConfig:     playerCfg,
	}
	upgrader := socket.NewUpgrader(1024, 1024)
	return managerCfg.NewManager(upgrader)
}
