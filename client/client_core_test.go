package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/middleware"
)

func testToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, err := middleware.GenerateToken(uuid.New(), "user@example.com",
		&config.JWTConfig{Secret: "client-test-secret", AccessTokenTTL: ttl})
	require.NoError(t, err)
	return token
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestLoginStoresCredentialAndAttachesBearer(t *testing.T) {
	token := testToken(t, time.Hour)

	var meAuthHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body["email"])
		writeJSON(t, w, http.StatusOK, map[string]any{
			"token": token,
			"user":  map[string]any{"id": "u1", "email": "user@example.com", "username": "user"},
		})
	})
	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		meAuthHeader = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, map[string]any{"id": "u1", "email": "user@example.com"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	res, err := c.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, token, res.Token)
	assert.Equal(t, StateAuthenticated, c.Session().State())

	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, meAuthHeader)
}

func TestErrorMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/travels/missing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "Not Found", "message": "Travel not found"})
	})
	mux.HandleFunc("/api/travels/locked", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]string{"error": "Forbidden", "message": "No access"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetTravel(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetTravel(context.Background(), "locked")
	assert.ErrorIs(t, err, ErrForbidden)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "No access", apiErr.Message)
}

func TestExpiredCredentialForcesLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/travels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{
			"error":   "Unauthorized",
			"message": "TOKEN_EXPIRED",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	defer c.Close()
	c.Session().SetToken(testToken(t, time.Hour))
	require.Equal(t, StateAuthenticated, c.Session().State())

	_, err = c.ListTravels(context.Background())
	assert.True(t, IsSessionExpired(err))
	assert.Equal(t, StateExpired, c.Session().State())
	assert.Empty(t, c.Session().Token())
}

func TestPlainUnauthorizedDoesNotExpireSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/travels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{
			"error":   "Unauthorized",
			"message": "Invalid token",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	defer c.Close()
	c.Session().SetToken(testToken(t, time.Hour))

	_, err = c.ListTravels(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, IsSessionExpired(err))
	assert.Equal(t, StateAuthenticated, c.Session().State())
}

func TestNewRejectsEmptyBaseURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
