package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Ly-yang/wechat-editor/internal/auth"
	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/service"
)

const stateCookie = "oauth_state"

// AuthHandler serves registration, login and the signed-in user's profile.
// GitHub sign-in is optional: with a nil provider its routes are not mounted.
type AuthHandler struct {
	auth   *service.AuthService
	github *auth.GitHubProvider
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, github: github, logger: logger}
}

// GitHubEnabled reports whether the GitHub routes should be mounted.
func (h *AuthHandler) GitHubEnabled() bool {
	return h.github != nil
}

// AuthResponse is returned by every successful sign-in.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *registerRequest) Bind(r *http.Request) error { return nil }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) Bind(r *http.Request) error { return nil }

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register {username, email, password}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AuthResponse{Token: result.Token, User: result.User})
}

// HandleLogin exchanges email and password for a token.
//
// HTTP: POST /api/auth/login {email, password}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AuthResponse{Token: result.Token, User: result.User})
}

// HandleProfile returns the caller's account.
//
// HTTP: GET /api/user/profile
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Profile(r.Context(), owner)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

// HandleGitHubLogin redirects the browser to GitHub's consent page.
//
// HTTP: GET /api/auth/github/login
//
// A random state value goes into a short-lived HttpOnly cookie and into the
// redirect; the callback accepts only a matching pair, which proves the flow
// started here.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state, err := newOAuthState()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth/github",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow and returns the same
// {token, user} body as an email login.
//
// HTTP: GET /api/auth/github/callback?code=...&state=...
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("github callback: state mismatch")
		writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "invalid OAuth state", Code: "validation_error"})
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/api/auth/github", MaxAge: -1})

	if denied := r.URL.Query().Get("error"); denied != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", denied))
		writeJSON(w, r, http.StatusUnauthorized, ErrorResponse{Error: "GitHub authorization was denied", Code: "unauthenticated"})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "missing OAuth code", Code: "validation_error", Field: "code"})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.auth.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AuthResponse{Token: result.Token, User: result.User})
}

// newOAuthState returns 128 random bits as 32 hex characters.
func newOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
