package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/venuehub/venuehub/internal/utils"
)

// Manager ties a Store to the cookie transport. Handlers and middleware use it
// instead of touching cookies or the store directly.
type Manager struct {
	store   Store
	cookies *Cookies
	now     func() time.Time
}

func NewManager(store Store, cookies *Cookies) *Manager {
	return &Manager{store: store, cookies: cookies, now: time.Now}
}

// Start creates a session for the given identity and writes its cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, s Session) (Session, error) {
	id, err := utils.NewSessionID()
	if err != nil {
		return Session{}, err
	}
	s.ID = id
	s.CreatedAt = m.now().UTC()
	if err := m.store.Create(ctx, s); err != nil {
		return Session{}, err
	}
	if err := m.cookies.Write(w, id, s.RememberMe); err != nil {
		_ = m.store.Destroy(ctx, id)
		return Session{}, err
	}
	return s, nil
}

// Load resolves the request's session and extends its expiry. Persistent
// cookies are re-issued so the browser-side expiry rolls too.
func (m *Manager) Load(ctx context.Context, w http.ResponseWriter, r *http.Request) (Session, error) {
	id, err := m.cookies.Read(r)
	if err != nil {
		return Session{}, err
	}
	s, err := m.store.Touch(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if s.RememberMe {
		if err := m.cookies.Write(w, id, true); err != nil {
			return Session{}, err
		}
	}
	return s, nil
}

// End destroys the request's session, if it has one, and clears the cookie.
// A missing or invalid cookie is not an error.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := m.cookies.Read(r)
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidCookie):
		m.cookies.Clear(w)
		return nil
	case err != nil:
		return err
	}
	if err := m.store.Destroy(ctx, id); err != nil {
		return err
	}
	m.cookies.Clear(w)
	return nil
}

// Discard destroys the request's session without touching the cookie. Login
// uses it before Start replaces the cookie.
func (m *Manager) Discard(ctx context.Context, r *http.Request) error {
	id, err := m.cookies.Read(r)
	if err != nil {
		return nil
	}
	return m.store.Destroy(ctx, id)
}
