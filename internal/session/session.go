// Package session implements server-side login sessions: an opaque id kept in
// a signed cookie, with the session data in Redis (or memory) under a rolling
// idle expiry.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
)

// DefaultTTL is the idle expiry of a session.
const DefaultTTL = 5 * time.Minute

var (
	// ErrNotFound means no live session matches the request.
	ErrNotFound = errors.New("session: not found")
	// ErrInvalidCookie means the cookie was present but its signature or
	// format did not check out.
	ErrInvalidCookie = errors.New("session: invalid cookie")
)

// Session is the state kept for a logged-in user.
type Session struct {
	ID         string    `json:"-"`
	UserID     uint64    `json:"userId"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	RememberMe bool      `json:"rememberMe"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store persists sessions. Touch loads a session and extends its expiry in
// one step; expired or unknown ids give ErrNotFound.
type Store interface {
	Create(ctx context.Context, s Session) error
	Touch(ctx context.Context, id string) (Session, error)
	Destroy(ctx context.Context, id string) error
}

const contextKey = "session"

// WithContext attaches s to the request context.
func WithContext(c echo.Context, s Session) {
	c.Set(contextKey, s)
}

// FromContext returns the session loaded for this request, if any.
func FromContext(c echo.Context) (Session, bool) {
	s, ok := c.Get(contextKey).(Session)
	return s, ok
}
