package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freefinder/apiserver/internal/services"
	"github.com/freefinder/apiserver/internal/store"
)

// ReviewHandler provides HTTP handlers for reviews.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler constructs a handler with the provided service.
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ReviewRouter registers review routes on the given router.
func ReviewRouter(r chi.Router, handler *ReviewHandler, requireAuth func(http.Handler) http.Handler) {
	r.With(requireAuth).Post("/review", handler.Create)
	r.Get("/reviews/{email}", handler.ListForUser)
}

type CreateReviewRequest struct {
	Email       string `json:"email"`
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

// Create posts a review on another user. The reviewer is the
// authenticated caller.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	review, err := h.reviewService.Create(r.Context(), req.Email, identity.Email, req.Rating, strings.TrimSpace(req.Description))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfReview):
			writeError(w, http.StatusBadRequest, "cannot review yourself")
		case errors.Is(err, services.ErrInvalidRating):
			writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusConflict, "review already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create review")
		}
		return
	}

	writeJSON(w, http.StatusCreated, review)
}

// ListForUser returns all reviews for a user plus their average rating.
func (h *ReviewHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	summary, err := h.reviewService.ListForUser(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
