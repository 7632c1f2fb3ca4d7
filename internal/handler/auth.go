package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuehub/venuehub/internal/model"
	"github.com/venuehub/venuehub/internal/repository"
	"github.com/venuehub/venuehub/internal/session"
	"github.com/venuehub/venuehub/internal/utils"
)

// UserStore is the account storage the auth handlers need.
// *repository.UserRepo implements it.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash, role string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// Sessions starts and ends login sessions. *session.Manager implements it.
type Sessions interface {
	Start(ctx context.Context, w http.ResponseWriter, s session.Session) (session.Session, error)
	End(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	Discard(ctx context.Context, r *http.Request) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Users      UserStore
	Sessions   Sessions
	BcryptCost int

	dummyOnce sync.Once
	dummy     string
}

func NewAuthHandler(users UserStore, sessions Sessions, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions, BcryptCost: bcryptCost}
}

const msgInvalidCredentials = "Invalid username or password"

// dummyHash is compared against when the username does not exist. It is
// hashed at BcryptCost so unknown and known usernames take the same time to
// reject.
func (h *AuthHandler) dummyHash() string {
	h.dummyOnce.Do(func() {
		h.dummy, _ = utils.HashPassword("venuehub-dummy-password", h.BcryptCost)
	})
	return h.dummy
}

type credentialsReq struct {
	Username   string `json:"username" validate:"required,max=64"`
	Password   string `json:"password" validate:"required,max=72"`
	RememberMe bool   `json:"rememberMe"`
}

type userPart struct {
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Permission int    `json:"permission"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		UserID:     strconv.FormatUint(u.ID, 10),
		Username:   u.Username,
		Role:       u.Role,
		Permission: u.Permission(),
	}
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

func bindCredentials(c echo.Context) (credentialsReq, bool) {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return req, false
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return req, false
	}
	return req, true
}

// CheckAuth reports the identity behind the request's session.
func (h *AuthHandler) CheckAuth(c echo.Context) error {
	s, ok := session.FromContext(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"userId":   strconv.FormatUint(s.UserID, 10),
		"username": s.Username,
		"role":     s.Role,
	})
}

// Signup creates a `user` account and logs it in.
func (h *AuthHandler) Signup(c echo.Context) error {
	req, ok := bindCredentials(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Username and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return fail(c, http.StatusBadRequest, "Password is too long")
	}
	if err != nil {
		log.Printf("auth: hash password: %v", err)
		return fail(c, http.StatusInternalServerError, "Failed to create user")
	}
	u, err := h.Users.Create(ctx, req.Username, hash, model.RoleUser)
	if errors.Is(err, repository.ErrUsernameExists) {
		return fail(c, http.StatusBadRequest, "Username already exists")
	}
	if err != nil {
		log.Printf("auth: signup %q: %v", req.Username, err)
		return fail(c, http.StatusInternalServerError, "Failed to create user")
	}

	if err := h.startSession(c, u, req.RememberMe); err != nil {
		log.Printf("auth: start session after signup: %v", err)
		return fail(c, http.StatusInternalServerError, "Failed to create user")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User created successfully",
		"user":    toUserPart(u),
	})
}

// Login checks credentials and replaces any existing session with a new one.
// Unknown usernames and wrong passwords get the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	req, ok := bindCredentials(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Username and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		utils.VerifyPassword(h.dummyHash(), req.Password)
		return fail(c, http.StatusUnauthorized, msgInvalidCredentials)
	case err != nil:
		log.Printf("auth: lookup %q: %v", req.Username, err)
		return fail(c, http.StatusInternalServerError, "Login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	if err := h.Sessions.Discard(ctx, c.Request()); err != nil {
		log.Printf("auth: discard previous session: %v", err)
	}
	if err := h.startSession(c, u, req.RememberMe); err != nil {
		log.Printf("auth: start session: %v", err)
		return fail(c, http.StatusInternalServerError, "Login failed")
	}
	log.Printf("auth: session created for %q", u.Username)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": toUserPart(u)})
}

// Logout destroys the session and clears the cookie. Logging out without a
// session still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Sessions.End(c.Request().Context(), c.Response(), c.Request()); err != nil {
		log.Printf("auth: logout: %v", err)
		return fail(c, http.StatusInternalServerError, "Logout failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out"})
}

func (h *AuthHandler) startSession(c echo.Context, u model.User, rememberMe bool) error {
	s, err := h.Sessions.Start(c.Request().Context(), c.Response(), session.Session{
		UserID:     u.ID,
		Username:   u.Username,
		Role:       u.Role,
		RememberMe: rememberMe,
	})
	if err != nil {
		return err
	}
	session.WithContext(c, s)
	return nil
}
