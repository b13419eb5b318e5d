package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/prodline/internal/auth"
	appmw "github.com/prodline/internal/middleware"
	"github.com/prodline/internal/model"
	"github.com/prodline/internal/store"
)

type userAdminStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, string, error)
	Create(ctx context.Context, username, passwordHash, station, operator string, role model.Role) (int64, error)
	Update(ctx context.Context, id int64, upd store.UserUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type sessionPatcher interface {
	UpdateByUserID(id int64, fn func(u *model.SessionUser))
}

// UsersHandler handles admin user management.
type UsersHandler struct {
	BaseHandler
	users    userAdminStore
	sessions sessionPatcher
}

func NewUsersHandler(logger *slog.Logger, users userAdminStore, sessions sessionPatcher) *UsersHandler {
	return &UsersHandler{BaseHandler: BaseHandler{Logger: logger}, users: users, sessions: sessions}
}

// List returns all user accounts, newest first. Password hashes never leave
// the store layer.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	h.okResponse(w, r, envelope{"rows": users})
}

// Create adds a new active account. Role defaults to viewer. The username
// uniqueness pre-check has a benign race window with the insert; the unique
// constraint on the column is the backstop.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Station  string `json:"station"`
		Operator string `json:"operator"`
		Role     string `json:"role"`
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

	role := model.RoleViewer
	if req.Role != "" {
		role = model.Role(req.Role)
		if !role.Valid() {
			h.failResponse(w, r, http.StatusBadRequest, "role must be one of admin, editor, viewer")
			return
		}
	}

	_, _, err := h.users.GetByUsername(r.Context(), req.Username)
	if err == nil {
		h.failResponse(w, r, http.StatusConflict, "username already exists")
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		h.serverErrorResponse(w, r, err)
		return
	}

	hash, err := auth.Hash(req.Password)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	if _, err := h.users.Create(r.Context(), req.Username, hash, req.Station, req.Operator, role); err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	h.Logger.Info("user created", "username", req.Username, "role", role)
	h.okResponse(w, r, nil)
}

// Update applies a sparse update to one account. A user may never deactivate
// their own account. When the caller edits their own row, live session
// snapshots are patched so the change takes effect without a re-login.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.failResponse(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Station  *string `json:"station"`
		Operator *string `json:"operator"`
		Role     *string `json:"role"`
		IsActive *int    `json:"is_active"`
	}
	if err := h.readJSON(w, r, &req); err != nil {
		h.failResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Station == nil && req.Operator == nil && req.Role == nil && req.IsActive == nil {
		h.failResponse(w, r, http.StatusBadRequest, "no updatable fields supplied")
		return
	}

	var role *model.Role
	if req.Role != nil {
		v := model.Role(*req.Role)
		if !v.Valid() {
			h.failResponse(w, r, http.StatusBadRequest, "role must be one of admin, editor, viewer")
			return
		}
		role = &v
	}

	if req.IsActive != nil && *req.IsActive != 0 && *req.IsActive != 1 {
		h.failResponse(w, r, http.StatusBadRequest, "is_active must be 0 or 1")
		return
	}

	sess, _ := appmw.SessionFromContext(r.Context())
	if id == sess.ID && req.IsActive != nil && *req.IsActive == 0 {
		h.failResponse(w, r, http.StatusBadRequest, "cannot deactivate your own account")
		return
	}

	upd := store.UserUpdate{
		Station:  req.Station,
		Operator: req.Operator,
		Role:     role,
		IsActive: req.IsActive,
	}
	if err := h.users.Update(r.Context(), id, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.failResponse(w, r, http.StatusNotFound, "user not found")
			return
		}
		h.serverErrorResponse(w, r, err)
		return
	}

	if id == sess.ID {
		h.sessions.UpdateByUserID(id, func(u *model.SessionUser) {
			if req.Station != nil {
				u.Station = *req.Station
			}
			if req.Operator != nil {
				u.Operator = *req.Operator
			}
			if role != nil {
				u.Role = *role
			}
		})
	}

	h.okResponse(w, r, nil)
}

// ResetPassword overwrites an account's password hash. Live sessions of the
// target are left intact; only future logins need the new password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.failResponse(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := h.readJSON(w, r, &req); err != nil {
		h.failResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password == "" {
		h.failResponse(w, r, http.StatusBadRequest, "password is required")
		return
	}

	hash, err := auth.Hash(req.Password)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	if err := h.users.UpdatePassword(r.Context(), id, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.failResponse(w, r, http.StatusNotFound, "user not found")
			return
		}
		h.serverErrorResponse(w, r, err)
		return
	}

	h.Logger.Info("password reset", "user_id", id)
	h.okResponse(w, r, nil)
}
