package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/freefinder/apiserver/internal/store"
	"github.com/freefinder/apiserver/types"
)

type memUserRepo struct {
	nextID int
	users  map[string]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[string]types.User)}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context) ([]types.User, error) {
	users := make([]types.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.Email]; ok {
		return types.User{}, store.ErrDuplicate
	}
	user.ID = r.nextID
	r.nextID++
	if user.ProfilePicture == "" {
		user.ProfilePicture = types.DefaultProfilePicture
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.Email] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	for email, u := range r.users {
		if u.ID == user.ID {
			user.Email = email
			user.UpdatedAt = time.Now()
			r.users[email] = user
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

type memListingRepo struct {
	nextID   int
	listings []types.Listing
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{nextID: 1}
}

func sortNewestFirst(listings []types.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
}

func (r *memListingRepo) Search(_ context.Context, keyword, category string) ([]types.Listing, error) {
	result := make([]types.Listing, 0)
	for _, l := range r.listings {
		if !l.Available {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(l.Title), strings.ToLower(keyword)) {
			continue
		}
		if category != "" && l.Category != category {
			continue
		}
		result = append(result, l)
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *memListingRepo) Get(_ context.Context, id int) (types.Listing, error) {
	for _, l := range r.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return types.Listing{}, store.ErrNotFound
}

func (r *memListingRepo) ListByOwner(_ context.Context, email string) ([]types.Listing, error) {
	result := make([]types.Listing, 0)
	for _, l := range r.listings {
		if l.OwnerEmail == email {
			result = append(result, l)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *memListingRepo) Create(_ context.Context, listing types.Listing) (types.Listing, error) {
	listing.ID = r.nextID
	r.nextID++
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now()
	}
	listing.UpdatedAt = listing.CreatedAt
	r.listings = append(r.listings, listing)
	return listing, nil
}

func (r *memListingRepo) Update(_ context.Context, listing types.Listing) (types.Listing, error) {
	for i, l := range r.listings {
		if l.ID == listing.ID {
			listing.UpdatedAt = time.Now()
			r.listings[i] = listing
			return listing, nil
		}
	}
	return types.Listing{}, store.ErrNotFound
}

type memReviewRepo struct {
	nextID  int
	reviews []types.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{nextID: 1}
}

func (r *memReviewRepo) Create(_ context.Context, review types.Review) (types.Review, error) {
	for _, existing := range r.reviews {
		if existing.TargetEmail == review.TargetEmail && existing.ReviewerEmail == review.ReviewerEmail {
			return types.Review{}, store.ErrDuplicate
		}
	}
	review.ID = r.nextID
	r.nextID++
	review.CreatedAt = time.Now()
	r.reviews = append(r.reviews, review)
	return review, nil
}

func (r *memReviewRepo) GetByPair(_ context.Context, targetEmail, reviewerEmail string) (types.Review, error) {
	for _, review := range r.reviews {
		if review.TargetEmail == targetEmail && review.ReviewerEmail == reviewerEmail {
			return review, nil
		}
	}
	return types.Review{}, store.ErrNotFound
}

func (r *memReviewRepo) ListForTarget(_ context.Context, targetEmail string) ([]types.Review, error) {
	result := make([]types.Review, 0)
	for _, review := range r.reviews {
		if review.TargetEmail == targetEmail {
			result = append(result, review)
		}
	}
	return result, nil
}
