package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prodline/internal/auth"
	appmw "github.com/prodline/internal/middleware"
	"github.com/prodline/internal/model"
	"github.com/prodline/internal/store"
)

type userGetter interface {
	GetByUsername(ctx context.Context, username string) (*model.User, string, error)
}

type sessionManager interface {
	Create(user model.SessionUser) string
	Delete(token string)
}

// AuthHandler handles login, logout and the current-user endpoint.
type AuthHandler struct {
	BaseHandler
	users         userGetter
	sessions      sessionManager
	secureCookies bool
}

func NewAuthHandler(logger *slog.Logger, users userGetter, sessions sessionManager, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		users:         users,
		sessions:      sessions,
		secureCookies: secureCookies,
	}
}

const invalidCredentialsMsg = "invalid username or password"

// Login authenticates a user and issues a session cookie. Unknown usernames
// and wrong passwords produce an identical response so usernames cannot be
// enumerated through this endpoint. The active flag is checked before the
// password is verified.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := h.readJSON(w, r, &req); err != nil {
		h.failResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		h.failResponse(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	user, hash, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.failResponse(w, r, http.StatusUnauthorized, invalidCredentialsMsg)
			return
		}
		h.serverErrorResponse(w, r, err)
		return
	}

	if user.IsActive != 1 {
		h.failResponse(w, r, http.StatusForbidden, "account disabled")
		return
	}

	if !auth.Verify(hash, req.Password) {
		h.failResponse(w, r, http.StatusUnauthorized, invalidCredentialsMsg)
		return
	}

	snapshot := model.SessionUser{
		ID:       user.ID,
		Username: user.Username,
		Station:  user.Station,
		Operator: user.Operator,
		Role:     user.Role,
	}
	token := h.sessions.Create(snapshot)

	http.SetCookie(w, &http.Cookie{
		Name:     appmw.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})

	h.Logger.Info("login", "user", user.Username, "role", user.Role)
	h.okResponse(w, r, envelope{"user": snapshot})
}

// Logout destroys the current session and clears the cookie. It succeeds
// even when no session exists.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(appmw.SessionCookieName); err == nil {
		h.sessions.Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:    appmw.SessionCookieName,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	h.okResponse(w, r, nil)
}

// Me returns the session snapshot for the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := appmw.SessionFromContext(r.Context())
	if !ok {
		h.failResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	h.okResponse(w, r, envelope{"user": user})
}
