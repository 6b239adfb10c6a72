package server

import (
	"errors"
	"net/http"

	"github.com/ashita-ai/knapsack/internal/auth"
	"github.com/ashita-ai/knapsack/internal/ctxutil"
	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/storage"
)

// HandleRegister handles POST /api/auth/register.
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}
	req.Email = model.NormalizeEmail(req.Email)
	if err := model.ValidateRegistration(req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeInternalError(w, r, "failed to hash password", err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), model.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		writeError(w, r, http.StatusConflict, model.ErrCodeConflict, "email already registered")
		return
	}
	if err != nil {
		h.writeInternalError(w, r, "failed to create user", err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	h.writeSession(w, r, http.StatusCreated, user)
}

// HandleLogin handles POST /api/auth/login. Unknown emails still pay for a
// password derivation so response timing does not reveal registered accounts.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), model.NormalizeEmail(req.Email))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.writeInternalError(w, r, "failed to look up user", err)
			return
		}
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	h.writeSession(w, r, http.StatusOK, user)
}

// HandleMe handles GET /api/auth/me.
func (h *Handlers) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), ctxutil.UserIDFromContext(r.Context()))
	if errors.Is(err, storage.ErrNotFound) {
		// Token outlived its account.
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "user no longer exists")
		return
	}
	if err != nil {
		h.writeInternalError(w, r, "failed to load user", err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (h *Handlers) writeSession(w http.ResponseWriter, r *http.Request, status int, user model.User) {
	token, expiresAt, err := h.jwtMgr.IssueToken(user)
	if err != nil {
		h.writeInternalError(w, r, "failed to issue token", err)
		return
	}
	writeJSON(w, r, status, model.AuthResponse{User: user, Token: token, ExpiresAt: expiresAt})
}
