package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freefinder/apiserver/internal/services"
	"github.com/freefinder/apiserver/internal/store"
	"github.com/freefinder/apiserver/types"
)

// UserHandler provides HTTP handlers for user profiles.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router.
func UserRouter(
	r chi.Router,
	handler *UserHandler,
	requireAuth func(http.Handler) http.Handler,
	attachIdentity func(http.Handler) http.Handler,
) {
	r.Get("/users", handler.List)
	r.Route("/user", func(r chi.Router) {
		r.With(requireAuth).Get("/me", handler.Me)
		r.With(requireAuth).Post("/update-name", handler.UpdateName)
		r.With(requireAuth).Post("/update-phone", handler.UpdatePhone)
		r.With(requireAuth).Post("/update-password", handler.UpdatePassword)
		r.With(requireAuth).Post("/update-pfp", handler.UpdateProfilePicture)
		r.With(attachIdentity).Get("/{email}", handler.Get)
	})
}

// UserResponse is an update acknowledgment carrying the updated user.
type UserResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

// Me returns the authenticated caller's own profile with contact info.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.userService.Profile(r.Context(), identity.Email, true)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Get returns a user's profile. Contact fields are withheld from
// anonymous callers.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	_, loggedIn := IdentityFromContext(r.Context())
	profile, err := h.userService.Profile(r.Context(), email, loggedIn)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// List returns all users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]types.User{"users": users})
}

// UpdateName changes the caller's display name.
func (h *UserHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		NewName string `json:"newName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.NewName) == "" {
		writeError(w, http.StatusBadRequest, "new name is required")
		return
	}

	user, err := h.userService.UpdateName(r.Context(), identity.Email, strings.TrimSpace(req.NewName))
	if err != nil {
		writeUpdateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{Message: "name updated successfully", User: user})
}

// UpdatePhone changes the caller's phone number.
func (h *UserHandler) UpdatePhone(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		NewPhone string `json:"newPhone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.NewPhone) == "" {
		writeError(w, http.StatusBadRequest, "new phone number is required")
		return
	}

	user, err := h.userService.UpdatePhone(r.Context(), identity.Email, strings.TrimSpace(req.NewPhone))
	if err != nil {
		writeUpdateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{Message: "phone number updated successfully", User: user})
}

// UpdatePassword changes the caller's password after verifying the
// current one.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Password    string `json:"password"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "current and new password are required")
		return
	}

	user, err := h.userService.UpdatePassword(r.Context(), identity.UserID, req.Password, req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrWrongPassword) {
			writeError(w, http.StatusUnauthorized, "wrong password")
			return
		}
		writeUpdateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{Message: "password updated successfully", User: user})
}

// UpdateProfilePicture changes the caller's profile picture link.
func (h *UserHandler) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		NewLink string `json:"newLink"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.NewLink) == "" {
		writeError(w, http.StatusBadRequest, "profile picture link is required")
		return
	}

	user, err := h.userService.UpdateProfilePicture(r.Context(), identity.UserID, strings.TrimSpace(req.NewLink))
	if err != nil {
		writeUpdateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{Message: "profile picture updated successfully", User: user})
}

func writeUpdateError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to update user")
}
