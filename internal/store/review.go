package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/freefinder/apiserver/types"
)

// ReviewRepository handles persistence for reviews.
type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, target_email, reviewer_email, rating, description, created_at`

func (r *ReviewRepository) Create(ctx context.Context, review types.Review) (types.Review, error) {
	review.CreatedAt = time.Now()

	const query = `
		INSERT INTO reviews (target_email, reviewer_email, rating, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		review.TargetEmail,
		review.ReviewerEmail,
		review.Rating,
		review.Description,
		review.CreatedAt,
	).Scan(&review.ID); err != nil {
		return types.Review{}, mapInsertError(err)
	}
	return review, nil
}

// GetByPair fetches the review a reviewer left on a target, if any.
func (r *ReviewRepository) GetByPair(ctx context.Context, targetEmail, reviewerEmail string) (types.Review, error) {
	const query = `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE target_email = $1 AND reviewer_email = $2`
	var review types.Review
	err := r.db.QueryRowContext(ctx, query, targetEmail, reviewerEmail).Scan(
		&review.ID,
		&review.TargetEmail,
		&review.ReviewerEmail,
		&review.Rating,
		&review.Description,
		&review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Review{}, ErrNotFound
		}
		return types.Review{}, err
	}
	return review, nil
}

// ListForTarget returns all reviews left on the given user, newest first.
func (r *ReviewRepository) ListForTarget(ctx context.Context, targetEmail string) ([]types.Review, error) {
	const query = `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE target_email = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, targetEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]types.Review, 0)
	for rows.Next() {
		var review types.Review
		if err := rows.Scan(
			&review.ID,
			&review.TargetEmail,
			&review.ReviewerEmail,
			&review.Rating,
			&review.Description,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}
