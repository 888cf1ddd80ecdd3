// Package session stores the GitHub credentials obtained by "pyfetch auth
// login" so later commands can reuse them.
//
// A [Session] holds an access token and the login it belongs to. [FileStore]
// keeps one JSON file per session under the user's config directory with
// 0600 permissions; [CLIStore] wraps it for the single "github" session the
// CLI uses.
//
//	store, err := session.NewCLIStore("")
//	if err != nil {
//	    return err
//	}
//	sess, err := store.GetSession(ctx)
//	if sess != nil {
//	    token = sess.AccessToken
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Session is a stored GitHub credential.
type Session struct {
	ID          string    `json:"id"`
	Login       string    `json:"login,omitempty"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"` // zero: never expires
}

// IsExpired reports whether the session has an expiry in the past.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get returns nil, nil when the session does not exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}

// New creates a session from an OAuth token. GitHub OAuth App tokens carry no
// expiry, in which case the session never expires.
func New(tok *oauth2.Token, login string) *Session {
	return &Session{
		ID:          uuid.NewString(),
		Login:       login,
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		CreatedAt:   time.Now(),
		ExpiresAt:   tok.Expiry,
	}
}
