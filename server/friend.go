package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jacobpatterson1549/swipe-words/db/user"
)

type (
	// friendsResponse splits the friend requests of a user.
	friendsResponse struct {
		Friends  []string          `json:"friends"`
		Received []user.Friendship `json:"received"`
		Sent     []user.Friendship `json:"sent"`
	}

	// leaderboardEntry is a ranked user.
	leaderboardEntry struct {
		Rank     int    `json:"rank"`
		Username string `json:"username"`
		Score    int    `json:"score"`
		Level    int    `json:"level"`
	}
)

// handleFriends writes the friends of the user and the pending requests sent by and to the user.
func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	u := username(r)
	friendships, err := s.userDao.Friendships(r.Context(), u)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resp := friendsResponse{
		Friends:  []string{},
		Received: []user.Friendship{},
		Sent:     []user.Friendship{},
	}
	for _, f := range friendships {
		switch {
		case f.Status == user.RequestAccepted:
			resp.Friends = append(resp.Friends, f.Friend(u))
		case f.Status != user.RequestPending:
		case f.RecipientID == u:
			resp.Received = append(resp.Received, f)
		default:
			resp.Sent = append(resp.Sent, f)
		}
	}
	s.writeJSON(w, r, resp)
}

// handleFriendRequest sends a friend request from the user.
func (s *Server) handleFriendRequest(w http.ResponseWriter, r *http.Request) {
	friend := r.FormValue("friend")
	f, err := s.userDao.RequestFriend(r.Context(), username(r), friend)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, r, f)
}

// handleFriendAnswer accepts or declines a friend request sent to the user.
func (s *Server) handleFriendAnswer(accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		f, err := s.userDao.AnswerFriend(r.Context(), username(r), id, accept)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.writeJSON(w, r, f)
	}
}

// handleLeaderboard writes the users with the highest scores.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := s.userDao.Leaderboard(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resp := make([]leaderboardEntry, len(users))
	for i, u := range users {
		resp[i] = leaderboardEntry{
			Rank:     i + 1,
			Username: u.Username,
			Score:    u.Score,
			Level:    u.Level(),
		}
	}
	s.writeJSON(w, r, resp)
}
