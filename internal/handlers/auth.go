package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freefinder/apiserver/internal/auth"
	"github.com/freefinder/apiserver/internal/mail"
	"github.com/freefinder/apiserver/internal/services"
	"github.com/freefinder/apiserver/internal/store"
	"github.com/freefinder/apiserver/types"
)

// AuthHandler implements the email-verification-gated signup flow and
// login. A signup request never writes to the database: the pending
// account travels inside the verification token and is only persisted
// when the token comes back via /create-user.
type AuthHandler struct {
	userService *services.UserService
	tokens      *auth.TokenService
	mailer      *mail.Mailer
	frontendURL string
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, tokens *auth.TokenService, mailer *mail.Mailer, frontendURL string) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// AuthRouter registers the auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post("/signup", handler.Signup)
	r.With(rateLimit).Post("/login", handler.Login)
	r.Post("/create-user", handler.CreateUser)
}

type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Signup starts the verification flow: it validates the fields, rejects
// emails that already have an account, and mails a verification link
// carrying the whole pending signup. Nothing is persisted here.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	if _, err := h.userService.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "email already taken")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to check user")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process signup")
		return
	}

	token, err := h.tokens.IssueVerification(auth.PendingSignup{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hashed,
		Phone:        strings.TrimSpace(req.Phone),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process signup")
		return
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", h.frontendURL, token)
	msg := mail.Message{
		To:      req.Email,
		Subject: "Verify Your Email",
		Text:    fmt.Sprintf("Click the link to verify your email (expires in 1 hour): %s", link),
		HTML: fmt.Sprintf(`<p>Click the link to verify your email (expires in 1 hour):</p>
			<a href=%q>Verify Email</a>`, link),
	}
	if err := h.mailer.Send(r.Context(), msg); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "verification email sent"})
}

// CreateUser completes the verification flow. The token is the sole
// credential: a valid one materializes the user it carries and returns a
// session token. Replaying a token after the user exists fails with 409.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	tokenString := strings.TrimSpace(r.URL.Query().Get("token"))
	if tokenString == "" {
		writeError(w, http.StatusBadRequest, "no token provided")
		return
	}

	pending, err := h.tokens.VerifyVerification(tokenString)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	// Another signup for the same email may have finished first.
	if _, err := h.userService.GetByEmail(r.Context(), pending.Email); err == nil {
		writeError(w, http.StatusConflict, "email already taken")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to check user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Email:        pending.Email,
		Name:         pending.Name,
		Phone:        pending.Phone,
		PasswordHash: pending.PasswordHash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "email already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	sessionToken, err := h.tokens.IssueSession(user.Email, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, TokenResponse{Token: sessionToken})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.IssueSession(user.Email, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
