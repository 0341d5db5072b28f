package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/skepesis/skepesis/internal/auth"
	"github.com/skepesis/skepesis/internal/logging"
	"github.com/skepesis/skepesis/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required", "invalid_email")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required", "invalid_username")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "weak_password")
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Email, req.Username, hash, store.RoleStudent)
	if err != nil {
		// Unique constraint on email is the common failure here.
		writeError(w, http.StatusConflict, "an account with that email already exists", "email_taken")
		return
	}

	token, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create session", "internal_error")
		return
	}

	logging.FromContext(r.Context()).Info("account registered", "user_id", user.ID)
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same response as a bad password, no account enumeration.
			writeError(w, http.StatusUnauthorized, "invalid email or password", "invalid_credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not look up account", "internal_error")
		return
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password", "invalid_credentials")
		return
	}

	token, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create session", "internal_error")
		return
	}

	logging.FromContext(r.Context()).Info("login", "user_id", user.ID)
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	user, err := s.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "account not found", "not_found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
