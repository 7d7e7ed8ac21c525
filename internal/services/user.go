package services

import (
	"context"

	"github.com/freefinder/apiserver/internal/auth"
	"github.com/freefinder/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo     UserRepository
	listings ListingRepository
}

func NewUserService(repo UserRepository, listings ListingRepository) *UserService {
	return &UserService{repo: repo, listings: listings}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

// Profile assembles the read model for a user page: the account joined
// with its listings. Contact fields are withheld unless withContact is
// set (callers pass true only for authenticated requests).
func (s *UserService) Profile(ctx context.Context, email string, withContact bool) (types.Profile, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return types.Profile{}, err
	}

	listings, err := s.listings.ListByOwner(ctx, email)
	if err != nil {
		return types.Profile{}, err
	}

	profile := types.Profile{
		ID:             user.ID,
		Name:           user.Name,
		ProfilePicture: user.ProfilePicture,
		Listings:       listings,
	}
	if withContact {
		profile.Email = user.Email
		profile.Phone = user.Phone
	}
	return profile, nil
}

func (s *UserService) UpdateName(ctx context.Context, email, newName string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	user.Name = newName
	return s.repo.Update(ctx, user)
}

func (s *UserService) UpdatePhone(ctx context.Context, email, newPhone string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	user.Phone = newPhone
	return s.repo.Update(ctx, user)
}

// UpdatePassword re-hashes and stores a new password after verifying the
// current one. A failed check returns ErrWrongPassword and nothing is
// written.
func (s *UserService) UpdatePassword(ctx context.Context, userID int, currentPassword, newPassword string) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	if !auth.CheckPassword(currentPassword, user.PasswordHash) {
		return types.User{}, ErrWrongPassword
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return types.User{}, err
	}
	user.PasswordHash = hashed
	return s.repo.Update(ctx, user)
}

func (s *UserService) UpdateProfilePicture(ctx context.Context, userID int, link string) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	user.ProfilePicture = link
	return s.repo.Update(ctx, user)
}
