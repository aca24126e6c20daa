package client

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// SessionState is the lifecycle phase of the stored credential
type SessionState int

const (
	// StateAnonymous means no credential is held
	StateAnonymous SessionState = iota
	// StateAuthenticated means a credential is held and not near expiry
	StateAuthenticated
	// StateExpiring means the credential expires within the warning window
	StateExpiring
	// StateExpired means the credential expired or the server rejected it
	StateExpired
)

func (s SessionState) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateExpiring:
		return "expiring"
	case StateExpired:
		return "expired"
	default:
		return "anonymous"
	}
}

const (
	defaultSessionWarning    = time.Minute
	defaultStorePollInterval = 2 * time.Second
)

// CredentialStore is external credential storage shared with other login
// surfaces, the cross-tab analog of browser local storage. Load returns the
// stored token, empty when absent.
type CredentialStore interface {
	Load() (string, error)
}

// Session holds the bearer token and tracks its expiry. State transitions
// fire registered listeners; a server-side TOKEN_EXPIRED rejection forces
// the expired state even when the local clock disagrees.
type Session struct {
	mu        sync.Mutex
	state     SessionState
	token     string
	expiresAt time.Time
	warning   time.Duration

	listeners []func(SessionState)

	warnTimer   *time.Timer
	expireTimer *time.Timer
}

func newSession() *Session {
	return &Session{state: StateAnonymous, warning: defaultSessionWarning}
}

// State returns the current session state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the held credential, empty when anonymous or expired
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticated || s.state == StateExpiring {
		return s.token
	}
	return ""
}

// ExpiresAt returns the credential expiry, zero when unknown
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// OnStateChange registers a listener invoked on every transition.
// Listeners run outside the session lock and must not block.
func (s *Session) OnStateChange(fn func(SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetToken installs a credential and schedules the expiring/expired
// transitions from its exp claim.
func (s *Session) SetToken(token string) {
	expiresAt := tokenExpiry(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
	s.token = token
	s.expiresAt = expiresAt

	if expiresAt.IsZero() {
		// No readable exp claim; stay authenticated until the server says no
		s.setStateLocked(StateAuthenticated)
		return
	}

	untilExpiry := time.Until(expiresAt)
	if untilExpiry <= 0 {
		s.setStateLocked(StateExpired)
		return
	}

	s.expireTimer = time.AfterFunc(untilExpiry, s.timerExpire)
	if warn := untilExpiry - s.warning; warn > 0 {
		s.setStateLocked(StateAuthenticated)
		s.warnTimer = time.AfterFunc(warn, func() { s.transition(StateAuthenticated, StateExpiring) })
	} else {
		s.setStateLocked(StateExpiring)
	}
}

// timerExpire fires when the local clock passes the exp claim
func (s *Session) timerExpire() {
	s.mu.Lock()
	if s.state == StateAuthenticated || s.state == StateExpiring {
		s.token = ""
		s.setStateLocked(StateExpired)
	}
	s.mu.Unlock()
}

// Clear drops the credential, returning to the anonymous state
func (s *Session) Clear() {
	s.mu.Lock()
	s.stopTimersLocked()
	s.token = ""
	s.expiresAt = time.Time{}
	s.setStateLocked(StateAnonymous)
	s.mu.Unlock()
}

// Expire forces the expired state. Called when the server answers 401 with
// the expiry marker.
func (s *Session) Expire() {
	s.mu.Lock()
	s.stopTimersLocked()
	s.token = ""
	s.setStateLocked(StateExpired)
	s.mu.Unlock()
}

// WatchStore polls an external credential store and follows its changes:
// the stored token is adopted at startup, a new token later is treated as a
// login from another surface, and removal while the credential is live
// forces the expired state, same as a server rejection. The returned stop
// function ends the watch.
func (s *Session) WatchStore(store CredentialStore, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = defaultStorePollInterval
	}
	done := make(chan struct{})
	var once sync.Once

	go func() {
		last, err := store.Load()
		if err == nil && last != "" {
			s.SetToken(last)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				stored, err := store.Load()
				if err != nil || stored == last {
					continue
				}
				last = stored
				if stored == "" {
					s.mu.Lock()
					live := s.state == StateAuthenticated || s.state == StateExpiring
					s.mu.Unlock()
					if live {
						s.Expire()
					}
					continue
				}
				s.SetToken(stored)
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

// transition moves from..to only if the session is still in from
func (s *Session) transition(from, to SessionState) {
	s.mu.Lock()
	if s.state != from {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(to)
	s.mu.Unlock()
}

// setStateLocked updates state and snapshots listeners; callers hold s.mu.
// Listeners fire asynchronously so they can call back into the session.
func (s *Session) setStateLocked(next SessionState) {
	if s.state == next {
		return
	}
	s.state = next
	listeners := make([]func(SessionState), len(s.listeners))
	copy(listeners, s.listeners)
	go func() {
		for _, fn := range listeners {
			fn(next)
		}
	}()
}

func (s *Session) stopTimersLocked() {
	if s.warnTimer != nil {
		s.warnTimer.Stop()
		s.warnTimer = nil
	}
	if s.expireTimer != nil {
		s.expireTimer.Stop()
		s.expireTimer = nil
	}
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature. The server remains the authority; this only drives local UX.
func tokenExpiry(token string) time.Time {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(claims.Exp, 0)
}
