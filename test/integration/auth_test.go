//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	env := newTestServer(t)

	token, _ := registerUser(t, env, "jane@example.com", "s3cret-pass")

	// Me with the registration token.
	resp, parsed := doJSON(t, http.MethodGet, env.server.URL+"/api/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, parsed.Success)

	var me struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &me))
	assert.Equal(t, "jane@example.com", me.User.Email)
	assert.Equal(t, "customer", me.User.Role)

	// Me without a token.
	resp, parsed = doJSON(t, http.MethodGet, env.server.URL+"/api/v1/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, parsed.Success)

	// Fresh login.
	resp, parsed = doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, parsed.Success)
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	env := newTestServer(t)
	registerUser(t, env, "jane@example.com", "s3cret-pass")

	resp, parsed := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/register", map[string]string{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"password":  "other-pass",
	}, "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "ALREADY_EXISTS", parsed.Error.Code)
}

func TestLoginLockout(t *testing.T) {
	env := newTestServer(t)
	registerUser(t, env, "jane@example.com", "s3cret-pass")

	bad := map[string]string{"email": "jane@example.com", "password": "wrong"}

	for i := 0; i < 4; i++ {
		resp, parsed := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/login", bad, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
		require.NotNil(t, parsed.Error)
		assert.Equal(t, "INVALID_CREDENTIALS", parsed.Error.Code)
	}

	// The fifth failure arms the lock and reports it immediately.
	resp, parsed := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/login", bad, "")
	require.Equal(t, http.StatusLocked, resp.StatusCode)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "ACCOUNT_LOCKED", parsed.Error.Code)

	// The right password makes no difference while locked.
	resp, parsed = doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusLocked, resp.StatusCode)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "ACCOUNT_LOCKED", parsed.Error.Code)
}

func TestChangePasswordFlow(t *testing.T) {
	env := newTestServer(t)
	token, _ := registerUser(t, env, "jane@example.com", "old-password")

	resp, _ := doJSON(t, http.MethodPut, env.server.URL+"/api/v1/auth/change-password", map[string]string{
		"currentPassword": "old-password",
		"newPassword":     "new-password",
		"confirmPassword": "new-password",
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "old-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "new-password",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAddressLifecycle(t *testing.T) {
	env := newTestServer(t)
	token, _ := registerUser(t, env, "jane@example.com", "s3cret-pass")

	resp, parsed := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/addresses", map[string]any{
		"street":  "1 Main St",
		"city":    "Nairobi",
		"state":   "Nairobi",
		"zipCode": "00100",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var payload struct {
		Addresses []struct {
			ID        string `json:"id"`
			IsDefault bool   `json:"is_default"`
		} `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &payload))
	require.Len(t, payload.Addresses, 1)
	assert.True(t, payload.Addresses[0].IsDefault)

	resp, _ = doJSON(t, http.MethodPut, env.server.URL+"/api/v1/auth/addresses/"+payload.Addresses[0].ID, map[string]any{
		"city": "Mombasa",
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, env.server.URL+"/api/v1/auth/addresses/"+payload.Addresses[0].ID, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, parsed = doJSON(t, http.MethodDelete, env.server.URL+"/api/v1/auth/addresses/missing", nil, token)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, parsed.Error)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestServer(t)

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
