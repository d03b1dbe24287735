package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
	"github.com/jacobpatterson1549/swipe-words/server/game"
)

type (
	// userResponse is a user with its level progress.
	userResponse struct {
		*user.User
		Level       int `json:"level"`
		NextLevelXP int `json:"nextLevelXP"`
	}

	// loginResponse is the token for future requests of the user.
	loginResponse struct {
		Token string       `json:"token"`
		User  userResponse `json:"user"`
	}

	// shopItem is a power-up that can be purchased.
	shopItem struct {
		Kind  powerup.Kind `json:"kind"`
		Price int          `json:"price"`
	}

	// giftResponse includes the id of the gift, which is needed to claim it.
	giftResponse struct {
		ID string `json:"id"`
		user.Gift
	}
)

// newUserResponse adds level information to the user.
func newUserResponse(u *user.User) userResponse {
	return userResponse{
		User:        u,
		Level:       u.Level(),
		NextLevelXP: user.NextLevelXP(u.XP),
	}
}

// handleUserCreate creates a user, adding it to the database.
func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password_confirm")
	if err := s.userDao.Create(r.Context(), username, password); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// handleUserLogin signs a user in, writing the token to the response.
func (s *Server) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	u, err := s.userDao.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = fmt.Errorf("%w: %v", user.ErrIncorrectPassword, err)
		}
		s.handleError(w, r, err)
		return
	}
	token, err := s.tokenizer.Create(u.Username)
	if err != nil {
		s.handleError(w, r, fmt.Errorf("creating authorization token: %w", err))
		return
	}
	resp := loginResponse{
		Token: token,
		User:  newUserResponse(u),
	}
	s.writeJSON(w, r, resp)
}

// handleUser writes the signed in user.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.userDao.Read(r.Context(), username(r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, r, newUserResponse(u))
}

// handleUserUpdatePassword updates the user's password.  The user's sockets are closed.
func (s *Server) handleUserUpdatePassword(w http.ResponseWriter, r *http.Request) {
	username := username(r)
	password := r.FormValue("password")
	newPassword := r.FormValue("password_confirm")
	ctx := r.Context()
	if err := s.userDao.UpdatePassword(ctx, username, password, newPassword); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.lobby.RemoveUser(ctx, username)
}

// handleUserDelete deletes the user from the database.  The user's sockets are closed.
func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	username := username(r)
	password := r.FormValue("password")
	ctx := r.Context()
	if err := s.userDao.Delete(ctx, username, password); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.lobby.RemoveUser(ctx, username)
}

// handleShop writes the prices of the power-ups.
func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	kinds := powerup.Kinds()
	items := make([]shopItem, 0, len(kinds))
	for _, k := range kinds {
		price, err := k.Price()
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		items = append(items, shopItem{Kind: k, Price: price})
	}
	s.writeJSON(w, r, items)
}

// handleShopPurchase buys a power-up with the user's crystals.
func (s *Server) handleShopPurchase(w http.ResponseWriter, r *http.Request) {
	k := powerup.Kind(r.FormValue("power_up"))
	u, err := s.userDao.Purchase(r.Context(), username(r), k)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, r, newUserResponse(u))
}

// handleGames writes the user's most recent games.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.userDao.Games(r.Context(), username(r), s.GamesLimit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if games == nil {
		games = []user.Game{}
	}
	s.writeJSON(w, r, games)
}

// handleGifts writes the user's gifts.
func (s *Server) handleGifts(w http.ResponseWriter, r *http.Request) {
	gifts, err := s.userDao.Gifts(r.Context(), username(r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resp := make([]giftResponse, len(gifts))
	for i, g := range gifts {
		resp[i] = giftResponse{
			ID:   g.ID,
			Gift: g,
		}
	}
	s.writeJSON(w, r, resp)
}

// handleGiftClaim adds the gift to the user.
func (s *Server) handleGiftClaim(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, err := s.userDao.ClaimGift(r.Context(), username(r), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, r, newUserResponse(u))
}

// handleLobby adds the user to the lobby by upgrading the request to a websocket.
func (s *Server) handleLobby(w http.ResponseWriter, r *http.Request) {
	err := s.lobby.AddUser(r.Context(), username(r), w, r)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrUpgrade):
		// the upgrader wrote the response
		s.log.Printf("joining lobby: %v", err)
	default:
		s.handleError(w, r, fmt.Errorf("joining lobby: %w", err))
	}
}
