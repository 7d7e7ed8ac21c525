package services

import (
	"context"

	"github.com/freefinder/apiserver/types"
)

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Search(ctx context.Context, keyword, category string) ([]types.Listing, error)
	Get(ctx context.Context, id int) (types.Listing, error)
	ListByOwner(ctx context.Context, email string) ([]types.Listing, error)
	Create(ctx context.Context, listing types.Listing) (types.Listing, error)
	Update(ctx context.Context, listing types.Listing) (types.Listing, error)
}

// ListingService encapsulates listing use-cases.
type ListingService struct {
	repo ListingRepository
}

func NewListingService(repo ListingRepository) *ListingService {
	return &ListingService{repo: repo}
}

// Search returns available listings newest first. Both filters are
// optional; category validity is checked at the HTTP boundary before
// reaching here. An empty result is not an error.
func (s *ListingService) Search(ctx context.Context, keyword, category string) ([]types.Listing, error) {
	return s.repo.Search(ctx, keyword, category)
}

func (s *ListingService) Get(ctx context.Context, id int) (types.Listing, error) {
	return s.repo.Get(ctx, id)
}

func (s *ListingService) ListByOwner(ctx context.Context, email string) ([]types.Listing, error) {
	return s.repo.ListByOwner(ctx, email)
}

func (s *ListingService) Create(ctx context.Context, listing types.Listing) (types.Listing, error) {
	if listing.Category == "" {
		listing.Category = types.DefaultCategory
	}
	listing.Available = true
	return s.repo.Create(ctx, listing)
}

// Update applies a partial patch to a listing on behalf of callerEmail.
// Only the owner may update; anyone else gets ErrForbidden. Nil patch
// fields leave the current value unchanged.
func (s *ListingService) Update(ctx context.Context, id int, callerEmail string, patch types.ListingPatch) (types.Listing, error) {
	listing, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Listing{}, err
	}
	if listing.OwnerEmail != callerEmail {
		return types.Listing{}, ErrForbidden
	}

	if patch.Title != nil {
		listing.Title = *patch.Title
	}
	if patch.Description != nil {
		listing.Description = *patch.Description
	}
	if patch.Location != nil {
		listing.Location = *patch.Location
	}
	if patch.Category != nil {
		listing.Category = *patch.Category
	}
	if patch.ImageURL != nil {
		listing.ImageURL = *patch.ImageURL
	}
	if patch.Available != nil {
		listing.Available = *patch.Available
	}

	return s.repo.Update(ctx, listing)
}
