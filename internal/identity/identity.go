// Package identity abstracts how a request is resolved to a user id.
// The provider is injected into the API handlers so deployments can swap
// the trust model without touching handler logic: Passthrough trusts the
// id the client claims (an external auth layer has already validated the
// session), TokenMap maps bearer tokens to user ids, and Static pins
// every request to one id for local development.
package identity

import (
	"errors"
	"net/http"
	"strings"
)

// ErrUnknownToken indicates the bearer token did not resolve to a user.
var ErrUnknownToken = errors.New("unknown bearer token")

// Provider resolves the effective user id for a request. requested is
// the id the client supplied (query string or body field); it may be
// empty. An empty resolved id means the request carries no identity.
type Provider interface {
	Resolve(r *http.Request, requested string) (string, error)
}

// Passthrough trusts the requested id as-is.
type Passthrough struct{}

// Resolve returns the requested id unchanged.
func (Passthrough) Resolve(_ *http.Request, requested string) (string, error) {
	return requested, nil
}

// Static resolves every request to a fixed id, ignoring the claim.
// Used for single-user local runs and tests.
type Static string

// Resolve returns the fixed id.
func (s Static) Resolve(_ *http.Request, _ string) (string, error) {
	return string(s), nil
}

// TokenMap resolves the Authorization bearer token to a user id.
type TokenMap map[string]string

// Resolve looks up the bearer token. The requested id is ignored; the
// token is the only source of truth.
func (m TokenMap) Resolve(r *http.Request, _ string) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", nil
	}
	id, ok := m[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return id, nil
}

// bearerToken extracts the token from the Authorization header.
// Returns empty string for missing/malformed headers.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
