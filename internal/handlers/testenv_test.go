package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/freefinder/apiserver/config"
	"github.com/freefinder/apiserver/internal/auth"
	"github.com/freefinder/apiserver/internal/handlers"
	"github.com/freefinder/apiserver/internal/mail"
	"github.com/freefinder/apiserver/internal/services"
	"github.com/freefinder/apiserver/internal/store"
	"github.com/freefinder/apiserver/types"
)

const testFrontendURL = "http://localhost:5173"

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

// captureBackend records sent mail instead of delivering it.
type captureBackend struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (c *captureBackend) Send(_ context.Context, msg mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *captureBackend) last(t *testing.T) mail.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.messages, "expected at least one sent mail")
	return c.messages[len(c.messages)-1]
}

type testEnv struct {
	router   *chi.Mux
	users    *memUserRepo
	listings *memListingRepo
	reviews  *memReviewRepo
	mailbox  *captureBackend
	tokens   *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithAuth(t, config.AuthConfig{
		SessionSecret: "test-session-secret",
		EmailSecret:   "test-email-secret",
		SessionTTL:    24 * time.Hour,
		VerifyTTL:     time.Hour,
	})
}

func newTestEnvWithAuth(t *testing.T, authCfg config.AuthConfig) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	listings := newMemListingRepo()
	reviews := newMemReviewRepo()
	mailbox := &captureBackend{}

	userService := services.NewUserService(users, listings)
	listingService := services.NewListingService(listings)
	reviewService := services.NewReviewService(reviews, users)
	tokens := auth.NewTokenService(authCfg)

	requireAuth := handlers.RequireAuth(tokens)
	attachIdentity := handlers.AttachIdentity(tokens)
	rateLimit := handlers.RateLimit(1000, 1000)

	router := chi.NewRouter()
	handlers.AuthRouter(router, handlers.NewAuthHandler(userService, tokens, mail.New(mailbox), testFrontendURL), rateLimit)
	handlers.ListingRouter(router, handlers.NewListingHandler(listingService), requireAuth, attachIdentity)
	handlers.UserRouter(router, handlers.NewUserHandler(userService), requireAuth, attachIdentity)
	handlers.ReviewRouter(router, handlers.NewReviewHandler(reviewService), requireAuth)

	return &testEnv{
		router:   router,
		users:    users,
		listings: listings,
		reviews:  reviews,
		mailbox:  mailbox,
		tokens:   tokens,
	}
}

func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&value))
	return value
}

// signUpAndVerify drives the whole verification flow and returns a
// session token for the new account.
func (e *testEnv) signUpAndVerify(t *testing.T, email, name, password string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/signup", "", handlers.SignupRequest{
		Email:    email,
		Name:     name,
		Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	verificationToken := e.verificationTokenFromMail(t)
	rec = e.do(t, http.MethodPost, "/create-user?token="+url.QueryEscape(verificationToken), "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decodeBody[handlers.TokenResponse](t, rec).Token
}

func (e *testEnv) verificationTokenFromMail(t *testing.T) string {
	t.Helper()

	msg := e.mailbox.last(t)
	idx := strings.Index(msg.Text, "token=")
	require.GreaterOrEqual(t, idx, 0, "verification link missing from mail body")
	token := msg.Text[idx+len("token="):]
	if end := strings.IndexAny(token, " \n"); end >= 0 {
		token = token[:end]
	}
	return token
}
