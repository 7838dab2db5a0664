package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-commerce-api/internal/model"
)

type stubVerifier struct {
	claims model.AuthClaims
	err    error
}

func (s stubVerifier) Verify(_ string) (model.AuthClaims, error) {
	return s.claims, s.err
}

type stubAccounts struct {
	account model.Account
	err     error
}

func (s stubAccounts) FindByID(_ context.Context, _ string) (model.Account, error) {
	return s.account, s.err
}

func activeVerifier() (stubVerifier, stubAccounts) {
	claims := model.AuthClaims{AccountID: "acct-1", Email: "jane@example.com", Role: "customer"}
	account := model.Account{ID: "acct-1", Status: model.StatusActive, Role: "customer"}
	return stubVerifier{claims: claims}, stubAccounts{account: account}
}

func identityEcho(t *testing.T, want bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := IdentityFromContext(r.Context())
		assert.Equal(t, want, ok)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	verifier, accounts := activeVerifier()
	mw := NewAuthMiddleware(verifier, accounts)

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()

	mw.RequireAuth(identityEcho(t, true)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_MissingOrBadHeader(t *testing.T) {
	verifier, accounts := activeVerifier()
	mw := NewAuthMiddleware(verifier, accounts)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	for _, header := range []string{"", "some-token", "Basic abc", "Bearer"} {
		req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		mw.RequireAuth(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireAuth_RejectedToken(t *testing.T) {
	_, accounts := activeVerifier()
	mw := NewAuthMiddleware(stubVerifier{err: errors.New("token expired")}, accounts)

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rec := httptest.NewRecorder()

	mw.RequireAuth(identityEcho(t, true)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_AccountGoneOrInactive(t *testing.T) {
	verifier, _ := activeVerifier()

	gone := NewAuthMiddleware(verifier, stubAccounts{err: model.ErrAccountNotFound})
	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	gone.RequireAuth(identityEcho(t, true)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	suspended := NewAuthMiddleware(verifier, stubAccounts{
		account: model.Account{ID: "acct-1", Status: model.StatusSuspended},
	})
	rec = httptest.NewRecorder()
	suspended.RequireAuth(identityEcho(t, true)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	verifier, accounts := activeVerifier()
	mw := NewAuthMiddleware(verifier, accounts)

	// Anonymous request passes through without an identity.
	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	mw.OptionalAuth(identityEcho(t, false)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A valid token attaches the identity.
	req = httptest.NewRequest("GET", "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec = httptest.NewRecorder()
	mw.OptionalAuth(identityEcho(t, true)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	verifier, accounts := activeVerifier()
	mw := NewAuthMiddleware(verifier, accounts)

	handler := mw.RequireAuth(mw.RequireRoles("admin")(identityEcho(t, true)))

	// Customer claims against an admin-only route.
	req := httptest.NewRequest("DELETE", "/api/v1/products/p1", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin claims pass.
	adminVerifier := stubVerifier{claims: model.AuthClaims{AccountID: "acct-2", Role: "admin"}}
	adminAccounts := stubAccounts{account: model.Account{ID: "acct-2", Status: model.StatusActive, Role: "admin"}}
	adminMW := NewAuthMiddleware(adminVerifier, adminAccounts)
	handler = adminMW.RequireAuth(adminMW.RequireRoles("admin")(identityEcho(t, true)))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles_WithoutIdentity(t *testing.T) {
	verifier, accounts := activeVerifier()
	mw := NewAuthMiddleware(verifier, accounts)

	// RequireRoles placed without RequireAuth finds no identity and rejects.
	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	mw.RequireRoles("admin")(identityEcho(t, true)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
