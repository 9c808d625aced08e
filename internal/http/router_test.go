package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/auth"
	"accountsvc/internal/config"
	"accountsvc/internal/logging"
	"accountsvc/internal/user"
)

// memStore backs the full router with an in-memory user table.
type memStore struct {
	nextID int64
	users  map[int64]*user.User
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, users: make(map[int64]*user.User)}
}

func (s *memStore) Create(_ context.Context, u *user.User) (*user.User, error) {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, user.ErrDuplicateEmail
		}
	}
	stored := *u
	stored.ID = s.nextID
	s.nextID++
	s.users[stored.ID] = &stored
	return &stored, nil
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *memStore) List(_ context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(s.users))
	for id := int64(1); id < s.nextID; id++ {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memStore) Update(_ context.Context, u *user.User) (*user.User, error) {
	existing, ok := s.users[u.ID]
	if !ok {
		return nil, user.ErrNotFound
	}
	existing.Username = u.Username
	existing.Email = u.Email
	existing.PasswordHash = u.PasswordHash
	return existing, nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestRouter(t *testing.T, clock *fakeClock) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "prod"},
	}

	store := newMemStore()
	hasher := auth.NewArgon2Hasher()
	tokens := auth.NewJWTService([]byte("0123456789abcdef0123456789abcdef"), 15*time.Minute, 7*24*time.Hour, clock.Now)
	logger := logging.NewLogger(true)

	authService := auth.NewService(store, hasher, tokens, logger)
	authHandler := auth.NewHandler(authService, nil)
	authMiddleware := auth.NewMiddleware(tokens)
	userHandler := user.NewHandler(store, hasher)

	return NewRouter(cfg, authHandler, authMiddleware, userHandler, logger)
}

func doJSON(router http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestAccountLifecycle walks the whole flow against the wired router:
// register, login, hit protected routes, refresh an expired session and
// finally delete the account.
func TestAccountLifecycle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	router := newTestRouter(t, clock)

	// Register.
	rec := doJSON(router, http.MethodPost, "/register",
		`{"username":"alice","email":"alice@example.com","password":"s3cretpass"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered user.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Equal(t, int64(1), registered.ID)
	assert.True(t, registered.IsActive)

	// Duplicate registration is rejected.
	rec = doJSON(router, http.MethodPost, "/register",
		`{"username":"alice","email":"alice@example.com","password":"s3cretpass"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login with the wrong password fails with the envelope.
	rec = doJSON(router, http.MethodPost, "/login",
		`{"email":"alice@example.com","password":"wrongpass1"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var failed auth.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failed))
	assert.False(t, failed.Success)
	assert.Equal(t, "Invalid credentials", failed.Message)

	// Login with the right password yields both tokens.
	rec = doJSON(router, http.MethodPost, "/login",
		`{"email":"alice@example.com","password":"s3cretpass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ok auth.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	require.True(t, ok.Success)

	data, isMap := ok.Data.(map[string]any)
	require.True(t, isMap)
	accessToken := data["access_token"].(string)
	refreshToken := data["refresh_token"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	// Protected routes reject anonymous calls.
	rec = doJSON(router, http.MethodGet, "/protected", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// And accept the access token.
	rec = doJSON(router, http.MethodGet, "/protected", "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"You are authorized!"}`, rec.Body.String())

	// A refresh token is not an access token.
	rec = doJSON(router, http.MethodGet, "/protected", "", refreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// User CRUD behind the same gate.
	rec = doJSON(router, http.MethodGet, "/get-users", "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []user.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	rec = doJSON(router, http.MethodGet, "/users/1", "", accessToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/users/42", "", accessToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The access token dies at its TTL; the refresh token outlives it.
	clock.Advance(16 * time.Minute)

	rec = doJSON(router, http.MethodGet, "/protected", "", accessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(router, http.MethodPost, "/refresh", "", refreshToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var refreshed auth.RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)

	// An access token cannot be used to refresh.
	rec = doJSON(router, http.MethodPost, "/refresh", "", refreshed.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The renewed access token opens the gate again.
	rec = doJSON(router, http.MethodDelete, "/users/1", "", refreshed.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/users/1", "", refreshed.AccessToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	router := newTestRouter(t, clock)

	rec := doJSON(router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"api is running"}`, rec.Body.String())
}
