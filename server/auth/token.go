// Package auth contains code to ensure users are authorized to use the server after they have logged in.
package auth

import (
	"fmt"
	"io"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

type (
	// Tokenizer creates and reads signed tokens that identify users.
	Tokenizer struct {
		method jwt.SigningMethod
		key    []byte
		parser *jwt.Parser
		TokenizerConfig
	}

	// TokenizerConfig contains fields which describe a Tokenizer.
	TokenizerConfig struct {
		// KeyReader is used to generate the signing key.
		KeyReader io.Reader
		// TimeFunc is the current time.  Used to set and check the length of time the token is valid.
		TimeFunc func() time.Time
		// Valid is the length of time tokens are valid from when they are issued.
		Valid time.Duration
	}
)

// keyLength is the number of random bytes in a signing key.
const keyLength = 64

// NewTokenizer creates a Tokenizer with a new key from the key reader.
func (cfg TokenizerConfig) NewTokenizer() (*Tokenizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating tokenizer: validation: %w", err)
	}
	key := make([]byte, keyLength)
	if _, err := io.ReadFull(cfg.KeyReader, key); err != nil {
		return nil, fmt.Errorf("generating tokenizer key: %w", err)
	}
	t := newTokenizer(jwt.SigningMethodHS256, key, cfg)
	return t, nil
}

// newTokenizer creates a Tokenizer with the key.
func newTokenizer(method jwt.SigningMethod, key []byte, cfg TokenizerConfig) *Tokenizer {
	t := Tokenizer{
		method: method,
		key:    key,
		// The time claims are checked with the TimeFunc.
		parser:          jwt.NewParser(jwt.WithValidMethods([]string{method.Alg()}), jwt.WithoutClaimsValidation()),
		TokenizerConfig: cfg,
	}
	return &t
}

// validate ensures the configuration has no errors.
func (cfg TokenizerConfig) validate() error {
	switch {
	case cfg.KeyReader == nil:
		return fmt.Errorf("key reader required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.Valid <= 0:
		return fmt.Errorf("positive valid duration required")
	}
	return nil
}

// Create creates a token for the user.
func (t *Tokenizer) Create(username string) (string, error) {
	now := t.TimeFunc()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.Valid)),
	}
	token := jwt.NewWithClaims(t.method, claims)
	return token.SignedString(t.key)
}

// ReadUsername extracts the username from the token string if the token is valid now.
func (t *Tokenizer) ReadUsername(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, err := t.parser.ParseWithClaims(tokenString, &claims, t.keyFunc); err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	now := t.TimeFunc()
	switch {
	case !claims.VerifyNotBefore(now, true):
		return "", fmt.Errorf("token not valid yet")
	case !claims.VerifyExpiresAt(now, true):
		return "", fmt.Errorf("token expired")
	case len(claims.Subject) == 0:
		return "", fmt.Errorf("token has no username")
	}
	return claims.Subject, nil
}

// keyFunc ensures the key type (method) of the token is correct before returning the key.
func (t *Tokenizer) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != t.method {
		return nil, fmt.Errorf("incorrect authorization signing method")
	}
	return t.key, nil
}
