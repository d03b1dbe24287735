package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/game/daily"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
	"github.com/jacobpatterson1549/swipe-words/game/word"
)

// usernameKey is the context key of the authenticated username.
type usernameKey struct{}

// accessTokenParam is the query parameter with the token for requests that cannot set headers, such as websockets.
const accessTokenParam = "access_token"

// authenticate ensures the request has a valid token, adding its username to the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			s.log.Printf("authenticating %v: %v", r.URL.Path, err)
			s.httpError(w, http.StatusUnauthorized)
			return
		}
		username, err := s.tokenizer.ReadUsername(tokenString)
		if err != nil {
			s.log.Printf("authenticating %v: %v", r.URL.Path, err)
			s.httpError(w, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey{}, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken reads the token from the authorization header or the access token query parameter.
func bearerToken(r *http.Request) (string, error) {
	if t := r.URL.Query().Get(accessTokenParam); len(t) != 0 {
		return t, nil
	}
	authorization := r.Header.Get(HeaderAuthorization)
	t, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || len(t) == 0 {
		return "", fmt.Errorf("invalid authorization header: %q", authorization)
	}
	return t, nil
}

// username is the authenticated username of the request.
func username(r *http.Request) string {
	u, _ := r.Context().Value(usernameKey{}).(string)
	return u
}

// handleHealth writes a response that the server is running.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, map[string]bool{"ok": true})
}

// writeJSON writes the value as the json response.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set(HeaderContentType, "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("writing %v response [%v]: %v", r.URL.Path, middleware.GetReqID(r.Context()), err)
	}
}

// handleError writes the status code of the error.  Unexpected errors are logged and written as internal server errors (500).
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrInvalid),
		errors.Is(err, powerup.ErrUnknownKind),
		errors.Is(err, daily.ErrTooShort),
		errors.Is(err, daily.ErrInvalidWord):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, user.ErrIncorrectPassword):
		http.Error(w, "incorrect username/password", http.StatusUnauthorized)
	case errors.Is(err, db.ErrNotFound):
		s.httpError(w, http.StatusNotFound)
	case errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, user.ErrGiftClaimed),
		errors.Is(err, user.ErrFriendshipExists),
		errors.Is(err, user.ErrFriendshipAnswered),
		errors.Is(err, daily.ErrNoAttempts),
		errors.Is(err, daily.ErrCompleted),
		errors.Is(err, powerup.ErrInsufficientCurrency):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, word.ErrValidationUnavailable):
		s.httpError(w, http.StatusServiceUnavailable)
	default:
		s.log.Printf("server error [%v]: %v", middleware.GetReqID(r.Context()), err)
		s.httpError(w, http.StatusInternalServerError)
	}
}

// httpError writes the status code.
func (*Server) httpError(w http.ResponseWriter, statusCode int) {
	http.Error(w, http.StatusText(statusCode), statusCode)
}
