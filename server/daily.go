package server

import (
	"net/http"

	"github.com/jacobpatterson1549/swipe-words/game/daily"
)

// dailyResponse is the user's progress on today's challenge.  The word is only included once the challenge is over for the user.
type dailyResponse struct {
	Date         string `json:"date"`
	AttemptsLeft int    `json:"attemptsLeft"`
	Completed    bool   `json:"completed"`
	Word         string `json:"word,omitempty"`
}

// handleDaily writes the user's progress on today's challenge.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.daily.Today(ctx)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	u, err := s.userDao.Read(ctx, username(r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resp := dailyResponse{
		Date:         c.Date,
		AttemptsLeft: daily.MaxAttempts,
	}
	if u.Daily.Date == c.Date {
		resp.AttemptsLeft -= u.Daily.Attempts
		resp.Completed = u.Daily.Completed
	}
	if resp.Completed || resp.AttemptsLeft <= 0 {
		resp.AttemptsLeft = max(resp.AttemptsLeft, 0)
		resp.Word = c.Word
	}
	s.writeJSON(w, r, resp)
}

// handleDailyGuess checks the guess of today's word.
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	guess := r.FormValue("guess")
	result, err := s.daily.Guess(r.Context(), username(r), guess)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, r, result)
}
