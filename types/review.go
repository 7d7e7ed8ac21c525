package types

import "time"

// Review is a rating left by one user on another. At most one review may
// exist per (reviewer, target) pair, and users cannot review themselves.
type Review struct {
	ID            int       `json:"id" db:"id"`
	TargetEmail   string    `json:"email" db:"target_email"`
	ReviewerEmail string    `json:"reviewer_email" db:"reviewer_email"`
	Rating        int       `json:"rating" db:"rating"`
	Description   string    `json:"description" db:"description"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ReviewSummary is the read model for a user's review page. AverageRating
// is the arithmetic mean of all ratings and is 0 when Count is 0; clients
// should use Count to tell "unrated" apart from "rated zero".
type ReviewSummary struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"rating"`
	Count         int      `json:"count"`
}
