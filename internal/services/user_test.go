package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freefinder/apiserver/internal/auth"
	"github.com/freefinder/apiserver/internal/store"
	"github.com/freefinder/apiserver/types"
)

func TestProfileWithholdsContactInfo(t *testing.T) {
	users := newMemUserRepo()
	listings := newMemListingRepo()
	_, err := users.Create(context.Background(), types.User{
		Email:        "alice@example.com",
		Name:         "Alice",
		Phone:        "8055551234",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	seedListing(t, listings, "alice@example.com", "Free chair", "Other", time.Now(), true)

	svc := NewUserService(users, listings)

	anonymous, err := svc.Profile(context.Background(), "alice@example.com", false)
	require.NoError(t, err)
	assert.Empty(t, anonymous.Email)
	assert.Empty(t, anonymous.Phone)
	assert.Equal(t, "Alice", anonymous.Name)
	assert.Len(t, anonymous.Listings, 1)

	authenticated, err := svc.Profile(context.Background(), "alice@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", authenticated.Email)
	assert.Equal(t, "8055551234", authenticated.Phone)
}

func TestProfileUnknownUser(t *testing.T) {
	svc := NewUserService(newMemUserRepo(), newMemListingRepo())
	_, err := svc.Profile(context.Background(), "ghost@example.com", true)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateName(t *testing.T) {
	users := newMemUserRepo()
	_, err := users.Create(context.Background(), types.User{
		Email: "alice@example.com", Name: "Alice", PasswordHash: "hash",
	})
	require.NoError(t, err)

	svc := NewUserService(users, newMemListingRepo())
	updated, err := svc.UpdateName(context.Background(), "alice@example.com", "Alicia")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
}

func TestUpdatePasswordWrongCurrent(t *testing.T) {
	users := newMemUserRepo()
	hash, err := auth.HashPassword("original")
	require.NoError(t, err)
	created, err := users.Create(context.Background(), types.User{
		Email: "alice@example.com", Name: "Alice", PasswordHash: hash,
	})
	require.NoError(t, err)

	svc := NewUserService(users, newMemListingRepo())
	_, err = svc.UpdatePassword(context.Background(), created.ID, "not-the-password", "new-password")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestUpdatePassword(t *testing.T) {
	users := newMemUserRepo()
	hash, err := auth.HashPassword("original")
	require.NoError(t, err)
	created, err := users.Create(context.Background(), types.User{
		Email: "alice@example.com", Name: "Alice", PasswordHash: hash,
	})
	require.NoError(t, err)

	svc := NewUserService(users, newMemListingRepo())
	updated, err := svc.UpdatePassword(context.Background(), created.ID, "original", "new-password")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("new-password", updated.PasswordHash))
	assert.False(t, auth.CheckPassword("original", updated.PasswordHash))
}
