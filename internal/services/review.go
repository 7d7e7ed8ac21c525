package services

import (
	"context"
	"errors"

	"github.com/freefinder/apiserver/internal/store"
	"github.com/freefinder/apiserver/types"
)

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review types.Review) (types.Review, error)
	GetByPair(ctx context.Context, targetEmail, reviewerEmail string) (types.Review, error)
	ListForTarget(ctx context.Context, targetEmail string) ([]types.Review, error)
}

// ReviewService encapsulates review use-cases.
type ReviewService struct {
	repo  ReviewRepository
	users UserRepository
}

func NewReviewService(repo ReviewRepository, users UserRepository) *ReviewService {
	return &ReviewService{repo: repo, users: users}
}

// Create persists a review after checking that the reviewer is not the
// target, the rating is in range, the target user exists, and the
// reviewer has not already reviewed this target. The pre-check for
// duplicates races under concurrency; the unique constraint on
// (target_email, reviewer_email) is the backstop and also surfaces as
// store.ErrDuplicate.
func (s *ReviewService) Create(ctx context.Context, targetEmail, reviewerEmail string, rating int, description string) (types.Review, error) {
	if targetEmail == reviewerEmail {
		return types.Review{}, ErrSelfReview
	}
	if rating < 1 || rating > 5 {
		return types.Review{}, ErrInvalidRating
	}

	if _, err := s.users.GetByEmail(ctx, targetEmail); err != nil {
		return types.Review{}, err
	}

	_, err := s.repo.GetByPair(ctx, targetEmail, reviewerEmail)
	if err == nil {
		return types.Review{}, store.ErrDuplicate
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.Review{}, err
	}

	return s.repo.Create(ctx, types.Review{
		TargetEmail:   targetEmail,
		ReviewerEmail: reviewerEmail,
		Rating:        rating,
		Description:   description,
	})
}

// ListForUser returns all reviews left on a user together with the
// arithmetic mean of their ratings. The average is 0 when there are no
// reviews; Count lets clients tell that apart from a genuine zero.
func (s *ReviewService) ListForUser(ctx context.Context, email string) (types.ReviewSummary, error) {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return types.ReviewSummary{}, err
	}

	reviews, err := s.repo.ListForTarget(ctx, email)
	if err != nil {
		return types.ReviewSummary{}, err
	}

	summary := types.ReviewSummary{
		Reviews: reviews,
		Count:   len(reviews),
	}
	if len(reviews) > 0 {
		total := 0
		for _, review := range reviews {
			total += review.Rating
		}
		summary.AverageRating = float64(total) / float64(len(reviews))
	}
	return summary, nil
}
