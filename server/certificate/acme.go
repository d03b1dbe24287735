// Package certificate contains code related to managing Transport Layer Security for HTTPS connections
package certificate

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

type (
	// Challenge token and key used to get a TLS certificate using the ACME HTTP-01
	Challenge struct {
		Token string
		Key   string
	}
)

const (
	// PathPrefix is the path of the endpoint to serve the challenge at.
	PathPrefix = "/.well-known/acme-challenge/"
)

// IsFor determines if a path is a request for an acme Challenge.  The challenge token must not be empty.
func (Challenge) IsFor(path string) bool {
	return len(path) > len(PathPrefix) && strings.HasPrefix(path, PathPrefix)
}

// Handle writes the challenge to the response.
// Writes the concatenation of the token, a period, and the key.
func (c Challenge) Handle(w io.Writer, path string) error {
	if len(c.Token) == 0 || !c.IsFor(path) || path[len(PathPrefix):] != c.Token {
		return fmt.Errorf("path '%v' is not for challenge", path)
	}
	data := c.Token + "." + c.Key
	if _, err := w.Write([]byte(data)); err != nil {
		return fmt.Errorf("writing acme token: %w", err)
	}
	return nil
}

// ServeHTTP answers challenge requests, responding with not found for other paths.
func (c Challenge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !c.IsFor(r.URL.Path) || r.URL.Path[len(PathPrefix):] != c.Token || len(c.Token) == 0 {
		http.NotFound(w, r)
		return
	}
	if err := c.Handle(w, r.URL.Path); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
