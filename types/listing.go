package types

import "time"

// MaxTitleLength bounds listing titles.
const MaxTitleLength = 40

// DefaultCategory is assigned when a listing is created without one.
const DefaultCategory = "Other"

// ValidCategories is the fixed set of listing categories.
var ValidCategories = []string{
	"Clothing & Accessories",
	"Sporting Goods",
	"Electronics",
	"Jewelry",
	"Home & Garden",
	"Collectibles & Art",
	"Other",
}

// IsValidCategory reports whether category is one of ValidCategories.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Listing represents an item posted for giving away. Only the owner
// (the user whose email matches OwnerEmail) may mutate it.
type Listing struct {
	ID          int    `json:"id" db:"id"`
	OwnerEmail  string `json:"email" db:"owner_email"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Location    string `json:"location" db:"location"`
	Category    string `json:"category" db:"category"`
	ImageURL    string `json:"fileUrl" db:"image_url"`
	Available   bool   `json:"available" db:"available"`

	// CreatedAt is immutable after insert; ordering of search results
	// is newest-first on this field.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ListingPatch carries partial updates; nil fields are left unchanged.
type ListingPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"fileUrl"`
	Available   *bool   `json:"available"`
}
