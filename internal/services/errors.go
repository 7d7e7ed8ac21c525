package services

import "errors"

var (
	// ErrForbidden means the caller is not the owner of the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrSelfReview means a user tried to review themselves.
	ErrSelfReview = errors.New("cannot review yourself")

	// ErrInvalidRating means the rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrWrongPassword means the current password check failed.
	ErrWrongPassword = errors.New("wrong password")
)
