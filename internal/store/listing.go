package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/freefinder/apiserver/types"
)

// ListingRepository handles persistence for listings.
type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, owner_email, title, description, location, category, image_url, available, created_at, updated_at`

func scanListingRows(rows *sql.Rows) ([]types.Listing, error) {
	listings := make([]types.Listing, 0)
	for rows.Next() {
		var l types.Listing
		if err := rows.Scan(
			&l.ID,
			&l.OwnerEmail,
			&l.Title,
			&l.Description,
			&l.Location,
			&l.Category,
			&l.ImageURL,
			&l.Available,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// Search returns available listings, optionally narrowed by a
// case-insensitive keyword match on the title and an exact category
// match, newest first.
func (r *ListingRepository) Search(ctx context.Context, keyword, category string) ([]types.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE available = TRUE`
	args := []any{}
	idx := 1

	if keyword != "" {
		query += fmt.Sprintf(" AND title ILIKE '%%' || $%d || '%%'", idx)
		args = append(args, keyword)
		idx++
	}
	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, category)
		idx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListingRows(rows)
}

func (r *ListingRepository) Get(ctx context.Context, id int) (types.Listing, error) {
	const query = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE id = $1`
	var l types.Listing
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&l.ID,
		&l.OwnerEmail,
		&l.Title,
		&l.Description,
		&l.Location,
		&l.Category,
		&l.ImageURL,
		&l.Available,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Listing{}, ErrNotFound
		}
		return types.Listing{}, err
	}
	return l, nil
}

// ListByOwner returns every listing owned by the given email, newest
// first, regardless of availability.
func (r *ListingRepository) ListByOwner(ctx context.Context, email string) ([]types.Listing, error) {
	const query = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE owner_email = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListingRows(rows)
}

func (r *ListingRepository) Create(ctx context.Context, listing types.Listing) (types.Listing, error) {
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	const query = `
		INSERT INTO listings (owner_email, title, description, location, category, image_url, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		listing.OwnerEmail,
		listing.Title,
		listing.Description,
		listing.Location,
		listing.Category,
		listing.ImageURL,
		listing.Available,
		listing.CreatedAt,
		listing.UpdatedAt,
	).Scan(&listing.ID); err != nil {
		return types.Listing{}, err
	}
	return listing, nil
}

// Update persists every mutable field. created_at and owner_email are
// never touched.
func (r *ListingRepository) Update(ctx context.Context, listing types.Listing) (types.Listing, error) {
	listing.UpdatedAt = time.Now()

	const query = `
		UPDATE listings
		SET title = $1,
			description = $2,
			location = $3,
			category = $4,
			image_url = $5,
			available = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		listing.Title,
		listing.Description,
		listing.Location,
		listing.Category,
		listing.ImageURL,
		listing.Available,
		listing.UpdatedAt,
		listing.ID,
	)
	if err != nil {
		return types.Listing{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Listing{}, err
	}
	if affected == 0 {
		return types.Listing{}, ErrNotFound
	}
	return listing, nil
}
