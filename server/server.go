// Package server runs the http server which lets users manage their accounts and open websockets to play games.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/game/daily"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
	"github.com/jacobpatterson1549/swipe-words/server/certificate"
	"github.com/jacobpatterson1549/swipe-words/server/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type (
	// Server runs the site.
	Server struct {
		wg         sync.WaitGroup
		log        log.Logger
		tokenizer  Tokenizer
		userDao    UserDao
		lobby      Lobby
		daily      Daily
		router     chi.Router
		httpServer *http.Server
		Config
	}

	// Config contains fields which describe the server.
	Config struct {
		// Port is the TCP port for server requests.
		Port int
		// StopDur is the maximum duration the server should take to shutdown gracefully.
		StopDur time.Duration
		// TLSCertFile is the public HTTPS certificate file.  The server uses plain http if it is not set.
		TLSCertFile string
		// TLSKeyFile is the private HTTPS key file.
		TLSKeyFile string
		// Challenge is the ACME HTTP-01 Challenge used to get a certificate.
		Challenge certificate.Challenge
		// GamesLimit is the most past games a user can see.
		GamesLimit int
	}

	// Parameters contains the components the server runs.
	Parameters struct {
		Log       log.Logger
		Tokenizer Tokenizer
		UserDao   UserDao
		Lobby     Lobby
		Daily     Daily
		// Gatherer has the metrics served at /metrics.  The default prometheus gatherer is used if it is nil.
		Gatherer prometheus.Gatherer
	}

	// Tokenizer creates and reads tokens from http traffic.
	Tokenizer interface {
		Create(username string) (string, error)
		ReadUsername(tokenString string) (string, error)
	}

	// UserDao manages user accounts.
	UserDao interface {
		Create(ctx context.Context, username, password string) error
		Login(ctx context.Context, username, password string) (*user.User, error)
		Read(ctx context.Context, username string) (*user.User, error)
		UpdatePassword(ctx context.Context, username, password, newPassword string) error
		Delete(ctx context.Context, username, password string) error
		Purchase(ctx context.Context, username string, k powerup.Kind) (*user.User, error)
		Games(ctx context.Context, username string, limit int) ([]user.Game, error)
		Gifts(ctx context.Context, username string) ([]user.Gift, error)
		ClaimGift(ctx context.Context, username, giftID string) (*user.User, error)
		RequestFriend(ctx context.Context, username, friend string) (*user.Friendship, error)
		AnswerFriend(ctx context.Context, username, friendshipID string, accept bool) (*user.Friendship, error)
		Friendships(ctx context.Context, username string) ([]user.Friendship, error)
		Leaderboard(ctx context.Context) ([]user.User, error)
	}

	// Lobby is the place users can play games.
	Lobby interface {
		Run(ctx context.Context, wg *sync.WaitGroup)
		AddUser(ctx context.Context, username string, w http.ResponseWriter, r *http.Request) error
		RemoveUser(ctx context.Context, username string)
	}

	// Daily is the daily challenge.
	Daily interface {
		Today(ctx context.Context) (*daily.Challenge, error)
		Guess(ctx context.Context, username, guess string) (*daily.Result, error)
	}
)

const (
	// HeaderContentType is used to set the document type header on http responses.
	HeaderContentType = "Content-Type"
	// HeaderAuthorization has the bearer token of authenticated requests.
	HeaderAuthorization = "Authorization"
	// defaultGamesLimit is the number of past games shown when the config has no limit.
	defaultGamesLimit = 20
)

// NewServer creates a Server from the Config.
func (cfg Config) NewServer(p Parameters) (*Server, error) {
	if err := cfg.validate(p); err != nil {
		return nil, fmt.Errorf("creating server: validation: %w", err)
	}
	if cfg.GamesLimit <= 0 {
		cfg.GamesLimit = defaultGamesLimit
	}
	if p.Gatherer == nil {
		p.Gatherer = prometheus.DefaultGatherer
	}
	s := Server{
		log:       p.Log,
		tokenizer: p.Tokenizer,
		userDao:   p.UserDao,
		lobby:     p.Lobby,
		daily:     p.Daily,
		Config:    cfg,
	}
	s.router = s.routes(p.Gatherer)
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(p Parameters) error {
	switch {
	case p.Log == nil:
		return fmt.Errorf("log required")
	case p.Tokenizer == nil:
		return fmt.Errorf("tokenizer required")
	case p.UserDao == nil:
		return fmt.Errorf("user dao required")
	case p.Lobby == nil:
		return fmt.Errorf("lobby required")
	case p.Daily == nil:
		return fmt.Errorf("daily challenge required")
	case cfg.Port <= 0:
		return fmt.Errorf("positive port required")
	case cfg.StopDur <= 0:
		return fmt.Errorf("stop timeout duration required")
	case (len(cfg.TLSCertFile) == 0) != (len(cfg.TLSKeyFile) == 0):
		return fmt.Errorf("both tls cert and key files required if either is set")
	}
	return nil
}

// routes creates the handler of all the endpoints.
func (s *Server) routes(g prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/monitor", s.handleMonitor)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	r.Method(http.MethodGet, certificate.PathPrefix+"*", s.Challenge)
	r.Post("/user_create", s.handleUserCreate)
	r.Post("/user_login", s.handleUserLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/user", s.handleUser)
		r.Post("/user_update_password", s.handleUserUpdatePassword)
		r.Post("/user_delete", s.handleUserDelete)
		r.Get("/shop", s.handleShop)
		r.Post("/shop/purchase", s.handleShopPurchase)
		r.Get("/games", s.handleGames)
		r.Get("/gifts", s.handleGifts)
		r.Post("/gifts/{id}/claim", s.handleGiftClaim)
		r.Get("/friends", s.handleFriends)
		r.Post("/friends/request", s.handleFriendRequest)
		r.Post("/friends/{id}/accept", s.handleFriendAnswer(true))
		r.Post("/friends/{id}/decline", s.handleFriendAnswer(false))
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/daily", s.handleDaily)
		r.Post("/daily/guess", s.handleDailyGuess)
		r.Get("/lobby", s.handleLobby)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.httpError(w, http.StatusNotFound)
	})
	return r
}

// Run the server asynchronously until it receives a shutdown signal.
// When the server stops, the error is sent to the returned channel.
func (s *Server) Run(ctx context.Context) <-chan error {
	errC := make(chan error, 1)
	ctx, cancelFunc := context.WithCancel(ctx)
	s.lobby.Run(ctx, &s.wg)
	s.httpServer.RegisterOnShutdown(cancelFunc)
	go func() {
		switch {
		case s.hasTLS():
			s.log.Printf("starting server at https://127.0.0.1%v", s.httpServer.Addr)
			errC <- s.httpServer.ListenAndServeTLS(s.TLSCertFile, s.TLSKeyFile)
		default:
			s.log.Printf("starting server at http://127.0.0.1%v", s.httpServer.Addr)
			errC <- s.httpServer.ListenAndServe()
		}
	}()
	return errC
}

// Stop asks the server to shutdown and waits for the shutdown to complete.
// An error is returned if the server if the context times out.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.StopDur)
	defer cancelFunc()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.wg.Wait()
	return nil
}

// ServeHTTP handles the request with the routes of the server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// hasTLS determines if the server should serve https.
func (s *Server) hasTLS() bool {
	return len(s.TLSCertFile) != 0 && len(s.TLSKeyFile) != 0
}
