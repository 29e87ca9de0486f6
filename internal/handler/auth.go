package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/college-board/internal/auth"
	"github.com/sakif/college-board/internal/service"
)

const stateCookie = "oauth_state"

// GitHubExchanger is the part of auth.GitHubProvider the login flow uses.
type GitHubExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AuthHandler serves account registration, login and session endpoints.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister / HandleLogin → email+password accounts, token in the body
//   - HandleGitHubLogin / HandleGitHubCallback → OAuth flow, token in a cookie
//   - HandleLogout → clear the token cookie
//   - HandleMe / HandleListUsers → who is acting, and (admins only) everybody
//
// github may be nil; the OAuth routes are then not mounted.
type AuthHandler struct {
	accounts *service.AuthService
	github   GitHubExchanger
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewAuthHandler(accounts *service.AuthService, github GitHubExchanger, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		github:   github,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// GitHubEnabled reports whether the OAuth routes should be registered.
func (h *AuthHandler) GitHubEnabled() bool {
	return h.github != nil
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a ROLE_USER account.
//
// HTTP: POST /auth/register
// Request body: {"email": "...", "username": "...", "password": "..."}
// Response: 201 with the user; 409 when the email is taken.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, user)
}

// HandleLogin exchanges credentials for an access token.
//
// HTTP: POST /auth/login
// Response: 200 {"user": {...}, "token": "..."}. The token is also set as
// the HttpOnly cookie so browser clients need no header handling.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, h.logger, http.StatusOK, result)
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state is stored in a short-lived cookie and must come back
// unchanged on the callback.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub profile with a verified email
//  3. Upsert the account by email and issue a token
//  4. Store the token in the HttpOnly cookie and redirect home
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || q.Get("state") != cookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid OAuth state"})
		return
	}

	// single-use
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := q.Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := q.Get("code")
	if code == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "missing OAuth code"})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeJSON(w, h.logger, http.StatusBadGateway, ErrorResponse{Error: "upstream_error", Message: "authentication with GitHub failed"})
		return
	}

	result, err := h.accounts.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the token cookie.
//
// HTTP: POST /auth/logout
//
// Tokens are stateless; one already handed out stays valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, h.logger, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the acting user.
//
// HTTP: GET /api/me
// Auth: Required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

// HandleListUsers returns every account.
//
// HTTP: GET /api/users
// Auth: Required, ROLE_ADMIN
func (h *AuthHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, users)
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
