package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsignedToken builds a JWT-shaped string with the given exp claim. The
// session never verifies signatures; only the payload matters here.
func unsignedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]int64{"exp": exp.Unix()})
	require.NoError(t, err)
	return fmt.Sprintf("%s.%s.sig", header, base64.RawURLEncoding.EncodeToString(payload))
}

func TestSessionStartsAnonymous(t *testing.T) {
	s := newSession()
	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, s.Token())
}

func TestSessionAuthenticatedWithFreshToken(t *testing.T) {
	s := newSession()
	token := unsignedToken(t, time.Now().Add(time.Hour))
	s.SetToken(token)

	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, token, s.Token())
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt(), 5*time.Second)
}

func TestSessionExpiringInsideWarningWindow(t *testing.T) {
	s := newSession()
	s.SetToken(unsignedToken(t, time.Now().Add(30*time.Second)))

	// Default warning window is one minute, so 30s out means already expiring
	assert.Equal(t, StateExpiring, s.State())
	assert.NotEmpty(t, s.Token(), "an expiring credential still authenticates requests")
}

func TestSessionExpiredTokenRejectedImmediately(t *testing.T) {
	s := newSession()
	s.SetToken(unsignedToken(t, time.Now().Add(-time.Minute)))

	assert.Equal(t, StateExpired, s.State())
	assert.Empty(t, s.Token())
}

func TestSessionTimerDrivenTransitions(t *testing.T) {
	s := newSession()
	s.warning = 150 * time.Millisecond

	var mu sync.Mutex
	var states []SessionState
	s.OnStateChange(func(st SessionState) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})

	s.SetToken(unsignedToken(t, time.Now().Add(300*time.Millisecond)))
	require.Equal(t, StateAuthenticated, s.State())

	assert.Eventually(t, func() bool { return s.State() == StateExpiring }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return s.State() == StateExpired }, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, StateExpiring)
	assert.Contains(t, states, StateExpired)
}

func TestSessionForcedExpiry(t *testing.T) {
	s := newSession()
	s.SetToken(unsignedToken(t, time.Now().Add(time.Hour)))
	require.Equal(t, StateAuthenticated, s.State())

	s.Expire()
	assert.Equal(t, StateExpired, s.State())
	assert.Empty(t, s.Token())
}

func TestSessionClearReturnsToAnonymous(t *testing.T) {
	s := newSession()
	s.SetToken(unsignedToken(t, time.Now().Add(time.Hour)))
	s.Clear()

	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, s.Token())
	assert.True(t, s.ExpiresAt().IsZero())
}

func TestSessionReloginAfterExpiry(t *testing.T) {
	s := newSession()
	s.Expire()
	require.Equal(t, StateExpired, s.State())

	s.SetToken(unsignedToken(t, time.Now().Add(time.Hour)))
	assert.Equal(t, StateAuthenticated, s.State())
}

// memoryCredentialStore is an in-process stand-in for shared token storage
type memoryCredentialStore struct {
	mu    sync.Mutex
	token string
}

func (m *memoryCredentialStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memoryCredentialStore) put(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func TestSessionFollowsExternalCredentialRemoval(t *testing.T) {
	store := &memoryCredentialStore{token: unsignedToken(t, time.Now().Add(time.Hour))}
	s := newSession()
	stop := s.WatchStore(store, 10*time.Millisecond)
	defer stop()

	require.Eventually(t, func() bool { return s.State() == StateAuthenticated },
		time.Second, 5*time.Millisecond, "stored credential must be adopted at startup")

	store.put("") // logged out from another surface
	assert.Eventually(t, func() bool { return s.State() == StateExpired },
		time.Second, 5*time.Millisecond, "removal must force expiry without manual action")
	assert.Empty(t, s.Token())
}

func TestSessionAdoptsExternalLogin(t *testing.T) {
	store := &memoryCredentialStore{}
	s := newSession()
	stop := s.WatchStore(store, 10*time.Millisecond)
	defer stop()

	require.Equal(t, StateAnonymous, s.State())

	token := unsignedToken(t, time.Now().Add(time.Hour))
	store.put(token)
	assert.Eventually(t, func() bool {
		return s.State() == StateAuthenticated && s.Token() == token
	}, time.Second, 5*time.Millisecond)
}

func TestTokenExpiryUnreadablePayload(t *testing.T) {
	assert.True(t, tokenExpiry("not-a-jwt").IsZero())
	assert.True(t, tokenExpiry("a.b.c").IsZero())
	assert.True(t, tokenExpiry("").IsZero())
}
