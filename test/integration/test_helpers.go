//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-commerce-api/internal/config"
	"go-commerce-api/internal/handler"
	"go-commerce-api/internal/middleware"
	"go-commerce-api/internal/model"
	"go-commerce-api/internal/router"
	"go-commerce-api/internal/security"
	"go-commerce-api/internal/service"
)

// memAccountStore is an in-memory stand-in for the Mongo-backed account
// repository, covering both the auth-facing and the admin-facing store
// surfaces.
type memAccountStore struct {
	mu       sync.Mutex
	accounts map[string]model.Account
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: map[string]model.Account{}}
}

func (s *memAccountStore) FindByID(_ context.Context, id string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	return a, nil
}

func (s *memAccountStore) FindByEmail(_ context.Context, email string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == strings.ToLower(email) {
			return a, nil
		}
	}
	return model.Account{}, model.ErrAccountNotFound
}

func (s *memAccountStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memAccountStore) Create(_ context.Context, a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Email == a.Email {
			return model.ErrEmailTaken
		}
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *memAccountStore) UpdateProfile(_ context.Context, id string, upd model.UpdateProfileRequest) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	if upd.FirstName != nil {
		a.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		a.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Phone != nil {
		a.Phone = *upd.Phone
	}
	if upd.Gender != nil {
		a.Gender = *upd.Gender
	}
	if upd.DateOfBirth != nil {
		a.DateOfBirth = upd.DateOfBirth
	}
	if upd.Avatar != nil {
		a.Avatar = *upd.Avatar
	}
	a.UpdatedAt = time.Now().UTC()
	s.accounts[id] = a
	return a, nil
}

func (s *memAccountStore) UpdateAddresses(_ context.Context, id string, addresses []model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	a.Addresses = addresses
	s.accounts[id] = a
	return nil
}

func (s *memAccountStore) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	s.accounts[id] = a
	return nil
}

func (s *memAccountStore) RecordFailedLogin(_ context.Context, id string, threshold int, lockUntil time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return 0, model.ErrAccountNotFound
	}
	a.FailedLoginAttempts++
	now := time.Now().UTC()
	if a.FailedLoginAttempts >= threshold && (a.LockedUntil == nil || a.LockedUntil.Before(now)) {
		until := lockUntil
		a.LockedUntil = &until
	}
	s.accounts[id] = a
	return a.FailedLoginAttempts, nil
}

func (s *memAccountStore) RecordSuccessfulLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	a.FailedLoginAttempts = 0
	a.LockedUntil = nil
	a.LastLogin = &at
	s.accounts[id] = a
	return nil
}

func (s *memAccountStore) List(_ context.Context, q model.AccountQuery) ([]model.Account, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Account, 0)
	for _, a := range s.accounts {
		if q.Role != "" && a.Role != q.Role {
			continue
		}
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (s *memAccountStore) UpdateRoleStatus(_ context.Context, id string, role *string, status *string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	if role != nil {
		a.Role = *role
	}
	if status != nil {
		a.Status = *status
	}
	s.accounts[id] = a
	return a, nil
}

func (s *memAccountStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return model.ErrAccountNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *memAccountStore) idByEmail(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.accounts {
		if a.Email == email {
			return id
		}
	}
	return ""
}

func (s *memAccountStore) setRole(id string, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[id]
	a.Role = role
	s.accounts[id] = a
}

type memProductStore struct {
	mu       sync.Mutex
	products map[string]model.Product
}

func newMemProductStore() *memProductStore {
	return &memProductStore{products: map[string]model.Product{}}
}

func (s *memProductStore) FindByID(_ context.Context, id string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	return p, nil
}

func (s *memProductStore) Search(_ context.Context, _ model.ProductQuery) ([]model.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Status == model.ProductStatusActive && p.Visibility == model.VisibilityVisible {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memProductStore) FindFeatured(_ context.Context, limit int) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, 0)
	for _, p := range s.products {
		if p.Featured && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memProductStore) Create(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Inventory.SKU == p.Inventory.SKU {
			return model.ErrSKUTaken
		}
	}
	s.products[p.ID] = p
	return nil
}

func (s *memProductStore) Replace(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return model.ErrProductNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *memProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *memProductStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if ok {
		p.ViewCount++
		s.products[id] = p
	}
	return nil
}

type testEnv struct {
	server   *httptest.Server
	accounts *memAccountStore
	products *memProductStore
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	accounts := newMemAccountStore()
	products := newMemProductStore()

	tokens, err := service.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	lockout := security.NewLockoutPolicy(5, 2*time.Hour)

	authService := service.NewAuthService(accounts, tokens, hasher, lockout)
	productService := service.NewProductService(products)
	userService := service.NewUserService(accounts)

	authMiddleware := middleware.NewAuthMiddleware(tokens, accounts)
	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	userHandler := handler.NewUserHandler(userService)
	orderHandler := handler.NewOrderHandler()

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		LockoutThreshold: 5,
		LockoutDuration:  2 * time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	healthCheck := func(context.Context) error { return nil }
	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler, productHandler, userHandler, orderHandler, healthCheck))
	t.Cleanup(server.Close)

	return &testEnv{server: server, accounts: accounts, products: products}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func doJSON(t *testing.T, method string, url string, payload any, token string) (*http.Response, apiResponse) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func registerUser(t *testing.T, env *testEnv, email string, password string) (string, string) {
	t.Helper()

	resp, parsed := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/register", map[string]string{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     email,
		"password":  password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, parsed.Success)

	var auth struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &auth))
	require.NotEmpty(t, auth.Token)
	return auth.Token, auth.User.ID
}
