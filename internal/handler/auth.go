package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/geldimmi/geldimmi/internal/middleware"
	"github.com/geldimmi/geldimmi/internal/store"
)

type AuthHandler struct {
	orgStore     *store.OrganizationStore
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	logger       *slog.Logger
}

func NewAuthHandler(os *store.OrganizationStore, us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{orgStore: os, userStore: us, sessionStore: ss, logger: logger}
}

// Register creates an organization with its admin user and signs the caller in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrganizationName string `json:"organization_name"`
		Email            string `json:"email"`
		Password         string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.OrganizationName = strings.TrimSpace(req.OrganizationName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.OrganizationName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "organization_name is required"})
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid email is required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	existing, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("check email", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}

	org, err := h.orgStore.Create(req.OrganizationName, true)
	if err != nil {
		h.logger.Error("create organization", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}
	user, err := h.userStore.Create(org.ID, req.Email, string(hash), "admin")
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}

	sess, err := h.sessionStore.Create(org.ID, &user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}
	setSessionCookie(w, sess.Token, sess.ExpiresAt)

	writeJSON(w, http.StatusCreated, map[string]any{
		"organization": org,
		"user":         user,
	})
}

// Guest creates an anonymous organization so a visitor can try the product
// without an account. Guest tenants get the anonymous limit profile.
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = "Guest"
	}

	org, err := h.orgStore.Create(req.Name, false)
	if err != nil {
		h.logger.Error("create guest organization", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create guest session"})
		return
	}

	sess, err := h.sessionStore.Create(org.ID, nil)
	if err != nil {
		h.logger.Error("create guest session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create guest session"})
		return
	}
	setSessionCookie(w, sess.Token, sess.ExpiresAt)

	writeJSON(w, http.StatusCreated, map[string]any{"organization": org})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}

	sess, err := h.sessionStore.Create(user.OrganizationID, &user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
		return
	}
	setSessionCookie(w, sess.Token, sess.ExpiresAt)

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessionStore.DeleteByToken(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
