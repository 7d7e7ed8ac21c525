package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freefinder/apiserver/internal/services"
	"github.com/freefinder/apiserver/internal/store"
	"github.com/freefinder/apiserver/types"
)

// ListingHandler provides HTTP handlers for listings.
type ListingHandler struct {
	listingService *services.ListingService
}

// NewListingHandler constructs a handler with the provided service.
func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// ListingRouter registers listing routes on the given router.
func ListingRouter(
	r chi.Router,
	handler *ListingHandler,
	requireAuth func(http.Handler) http.Handler,
	attachIdentity func(http.Handler) http.Handler,
) {
	r.Get("/listings", handler.Search)
	r.With(requireAuth).Post("/listing", handler.Create)
	r.With(attachIdentity).Get("/listing/{listingID}", handler.Get)
	r.With(requireAuth).Patch("/listing/{listingID}", handler.Update)
}

// ListingsResponse wraps search results.
type ListingsResponse struct {
	Listings []types.Listing `json:"listings"`
}

// ListingDetail is a listing plus the caller-relative isAuthor flag.
type ListingDetail struct {
	types.Listing
	IsAuthor bool `json:"isAuthor"`
}

type CreateListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	ImageURL    string `json:"fileUrl"`
}

// Search returns available listings filtered by optional keyword and
// category query parameters, newest first.
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	if category != "" && !types.IsValidCategory(category) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	listings, err := h.listingService.Search(r.Context(), keyword, category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search listings")
		return
	}

	writeJSON(w, http.StatusOK, ListingsResponse{Listings: listings})
}

// Get fetches one listing. The isAuthor flag compares the requester's
// identity (if any) to the listing's owner email.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseListingID(r)
	if err != nil {
		// A malformed id cannot name any listing.
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}

	listing, err := h.listingService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "listing not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch listing")
		return
	}

	identity, ok := IdentityFromContext(r.Context())
	isAuthor := ok && identity.Email == listing.OwnerEmail

	writeJSON(w, http.StatusOK, ListingDetail{Listing: listing, IsAuthor: isAuthor})
}

// Create posts a new listing owned by the authenticated caller.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.Title == "" || req.Location == "" || req.ImageURL == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if len(req.Title) > types.MaxTitleLength {
		writeError(w, http.StatusBadRequest, "title too long")
		return
	}
	if req.Category != "" && !types.IsValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	listing, err := h.listingService.Create(r.Context(), types.Listing{
		OwnerEmail:  identity.Email,
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Location:    req.Location,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create listing")
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

// Update applies a partial patch to a listing owned by the caller.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseListingID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}

	var patch types.ListingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		if len(trimmed) > types.MaxTitleLength {
			writeError(w, http.StatusBadRequest, "title too long")
			return
		}
		patch.Title = &trimmed
	}
	if patch.Category != nil && !types.IsValidCategory(*patch.Category) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	updated, err := h.listingService.Update(r.Context(), id, identity.Email, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "listing not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "listing does not belong to user")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update listing")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func parseListingID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "listingID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid listing id")
	}
	return id, nil
}
