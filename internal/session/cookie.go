package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultCookieName is used when CookieOptions.Name is empty.
const DefaultCookieName = "sid"

// CookieOptions configures how session ids travel to the browser.
type CookieOptions struct {
	Name   string
	Secret []byte
	TTL    time.Duration
	Secure bool
}

// Cookies signs session ids into HS256 tokens and moves them in and out of
// HTTP cookies. The token carries the id only; everything else lives in the
// Store.
type Cookies struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewCookies(opts CookieOptions) *Cookies {
	if opts.Name == "" {
		opts.Name = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Cookies{name: opts.Name, secret: opts.Secret, ttl: opts.TTL, secure: opts.Secure}
}

// Name returns the cookie name.
func (k *Cookies) Name() string { return k.name }

// Sign returns the cookie value for a session id.
func (k *Cookies) Sign(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       id,
		IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
}

// Verify checks a cookie value and returns the session id it carries.
func (k *Cookies) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return k.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid || claims.ID == "" {
		return "", ErrInvalidCookie
	}
	return claims.ID, nil
}

// Read extracts the session id from the request cookie. A missing cookie is
// ErrNotFound; a tampered one is ErrInvalidCookie.
func (k *Cookies) Read(r *http.Request) (string, error) {
	c, err := r.Cookie(k.name)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && c.Value == "") {
		return "", ErrNotFound
	}
	if err != nil {
		return "", ErrInvalidCookie
	}
	return k.Verify(c.Value)
}

// Write sets the session cookie. With rememberMe the cookie persists for the
// idle TTL, otherwise it lasts until the browser closes.
func (k *Cookies) Write(w http.ResponseWriter, id string, rememberMe bool) error {
	value, err := k.Sign(id)
	if err != nil {
		return err
	}
	c := k.base()
	c.Value = value
	if rememberMe {
		c.MaxAge = int(k.ttl / time.Second)
		c.Expires = time.Now().Add(k.ttl)
	}
	http.SetCookie(w, c)
	return nil
}

// Clear expires the session cookie in the browser.
func (k *Cookies) Clear(w http.ResponseWriter) {
	c := k.base()
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

func (k *Cookies) base() *http.Cookie {
	return &http.Cookie{
		Name:     k.name,
		Path:     "/",
		HttpOnly: true,
		Secure:   k.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
