package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Client is the SDK entry point. One Client serves one user session; the
// realtime channel and trip store hang off it.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	session *Session

	backoffFactory func() backoff.BackOff

	credStore        CredentialStore
	credPollInterval time.Duration
	stopWatch        func()

	closedOnce uint32
	channels   []*SyncChannel
}

// New constructs a Client for the given backend base URL.
// Additional options can be provided via functional arguments.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{Timeout: 30 * time.Second},
		log:            zerolog.Nop(),
		session:        newSession(),
		backoffFactory: defaultBackoffFactory,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// Wrap HTTP transport to attach the session's bearer token
	c.wrapTransportWithSession()

	if c.credStore != nil {
		c.stopWatch = c.session.WatchStore(c.credStore, c.credPollInterval)
	}

	return c, nil
}

// Session exposes credential state for UI wiring
func (c *Client) Session() *Session { return c.session }

// Close tears down realtime channels. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.stopWatch != nil {
		c.stopWatch()
	}
	for _, ch := range c.channels {
		ch.Close()
	}
	return nil
}

// wrapTransportWithSession wraps the HTTP client's transport so every request
// carries the current bearer token, and expiry rejections flip the session.
func (c *Client) wrapTransportWithSession() {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &sessionTransport{base: base, session: c.session}
}

// sessionTransport wraps an http.RoundTripper to add the Authorization header
type sessionTransport struct {
	base    http.RoundTripper
	session *Session
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	if token := t.session.Token(); token != "" {
		cloned.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(cloned)
}

// --------------------------------------------------------------------
// Request plumbing
// --------------------------------------------------------------------

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		if IsSessionExpired(apiErr) {
			c.log.Warn().Str("path", path).Msg("credential expired, forcing logout")
			c.session.Expire()
		}
		return apiErr
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// --------------------------------------------------------------------
// Auth operations
// --------------------------------------------------------------------

// Register creates an account and installs the returned credential
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.session.SetToken(res.Token)
	return &res, nil
}

// Login authenticates and installs the returned credential
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.session.SetToken(res.Token)
	return &res, nil
}

// VerifyEmail confirms the signup verification code
func (c *Client) VerifyEmail(ctx context.Context, email, code string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/verify-email", map[string]string{
		"email": email,
		"code":  code,
	}, nil)
}

// Logout drops the local credential
func (c *Client) Logout() {
	c.session.Clear()
}

// Me returns the authenticated user's profile
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --------------------------------------------------------------------
// Travel operations
// --------------------------------------------------------------------

// CreateTravel creates a trip
func (c *Client) CreateTravel(ctx context.Context, req CreateTravelRequest) (*Travel, error) {
	var travel Travel
	if err := c.do(ctx, http.MethodPost, "/api/travels", req, &travel); err != nil {
		return nil, err
	}
	return &travel, nil
}

// ListTravels returns trips owned by or shared with the user
func (c *Client) ListTravels(ctx context.Context) ([]Travel, error) {
	var env travelListEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/travels", nil, &env); err != nil {
		return nil, err
	}
	return env.Travels, nil
}

// GetTravel returns one trip
func (c *Client) GetTravel(ctx context.Context, travelID string) (*Travel, error) {
	var travel Travel
	if err := c.do(ctx, http.MethodGet, "/api/travels/"+url.PathEscape(travelID), nil, &travel); err != nil {
		return nil, err
	}
	return &travel, nil
}

// UpdateTravel patches a trip
func (c *Client) UpdateTravel(ctx context.Context, travelID string, req UpdateTravelRequest) (*Travel, error) {
	var travel Travel
	if err := c.do(ctx, http.MethodPut, "/api/travels/"+url.PathEscape(travelID), req, &travel); err != nil {
		return nil, err
	}
	return &travel, nil
}

// DeleteTravel removes a trip (owner only)
func (c *Client) DeleteTravel(ctx context.Context, travelID string) error {
	return c.do(ctx, http.MethodDelete, "/api/travels/"+url.PathEscape(travelID), nil, nil)
}

// --------------------------------------------------------------------
// Plan operations
// --------------------------------------------------------------------

// ListPlans returns a trip's itinerary ordered by (day, sequence)
func (c *Client) ListPlans(ctx context.Context, travelID string) ([]Plan, error) {
	var env planListEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/travels/"+url.PathEscape(travelID)+"/plans", nil, &env); err != nil {
		return nil, err
	}
	return env.Plans, nil
}

// AddPlan appends a place to a day; the server assigns the sequence
func (c *Client) AddPlan(ctx context.Context, travelID string, req AddPlanRequest) (*Plan, error) {
	var plan Plan
	if err := c.do(ctx, http.MethodPost, "/api/travels/"+url.PathEscape(travelID)+"/plans", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// DeletePlan removes an itinerary entry; trailing same-day entries renumber
func (c *Client) DeletePlan(ctx context.Context, travelID, planID string) error {
	return c.do(ctx, http.MethodDelete,
		"/api/travels/"+url.PathEscape(travelID)+"/plans/"+url.PathEscape(planID), nil, nil)
}

// --------------------------------------------------------------------
// Share operations
// --------------------------------------------------------------------

// ListShares returns a trip's collaborators
func (c *Client) ListShares(ctx context.Context, travelID string) ([]Share, error) {
	var env shareListEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/travels/"+url.PathEscape(travelID)+"/share", nil, &env); err != nil {
		return nil, err
	}
	return env.Shares, nil
}

// ShareTravel grants another account access by email
func (c *Client) ShareTravel(ctx context.Context, travelID, email, role string) (*Share, error) {
	var share Share
	err := c.do(ctx, http.MethodPost, "/api/travels/"+url.PathEscape(travelID)+"/share",
		map[string]string{"email": email, "role": role}, &share)
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// UnshareTravel revokes a collaborator's access
func (c *Client) UnshareTravel(ctx context.Context, travelID, userID string) error {
	return c.do(ctx, http.MethodDelete,
		"/api/travels/"+url.PathEscape(travelID)+"/share/"+url.PathEscape(userID), nil, nil)
}

// --------------------------------------------------------------------
// Chat history
// --------------------------------------------------------------------

// ChatHistory returns persisted chat messages, oldest first
func (c *Client) ChatHistory(ctx context.Context, travelID string) ([]ChatMessage, error) {
	var env chatHistoryEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/travels/"+url.PathEscape(travelID)+"/chats", nil, &env); err != nil {
		return nil, err
	}
	return env.Messages, nil
}
