package types

import "time"

// DefaultProfilePicture is used for accounts that have not uploaded one.
const DefaultProfilePicture = "https://i.pinimg.com/originals/f1/0f/f7/f10ff70a7155e5ab666bcdd1b45b726d.jpg"

// User represents a verified account in the system. Rows are only ever
// created after the email-verification token has been validated; a
// pending signup lives entirely inside the token (see auth.PendingSignup).
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's unique email address and login name.
	Email string `json:"email" db:"email"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// Phone is the user's optional contact phone number.
	Phone string `json:"phone,omitempty" db:"phone"`

	// PasswordHash stores the bcrypt digest of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// ProfilePicture is the URL of the user's avatar image.
	ProfilePicture string `json:"profilePicture" db:"profile_picture"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent account update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is the read model for a user page: the account's public fields
// plus the listings it owns. Email and Phone are cleared before the
// profile is shown to anonymous callers.
type Profile struct {
	ID             int       `json:"id"`
	Email          string    `json:"email,omitempty"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture string    `json:"profilePicture"`
	Listings       []Listing `json:"listings"`
}
