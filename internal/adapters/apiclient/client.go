// Package apiclient is the console's HTTP client for the retail backend.
// It attaches the operator's bearer token and tenant header to every call,
// refreshes the access token once on 401 and reports failures to a
// notification sink.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"retail-console/internal/adapters/persistence/repositories"
	"retail-console/internal/core/domain"
	"retail-console/internal/pkg/metrics"
	"retail-console/internal/pkg/secret"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath   = "token/"
	refreshPath = "token/refresh/"
	mePath      = "users/me"

	maxBodyBytes = 10 << 20
)

// Notifier receives human-readable error messages for the operator.
// Notify must not block.
type Notifier interface {
	Notify(message string)
}

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     repositories.TokenStore
	Notifier   Notifier
}

// Client talks to the backend on behalf of the current operator
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     repositories.TokenStore
	notifier   Notifier

	mu            sync.RWMutex
	onAuthFailure func()

	refreshes singleflight.Group
}

// New creates a backend client
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL: %q", opts.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if opts.Tokens == nil {
		return nil, errors.New("token store is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		tokens:     opts.Tokens,
		notifier:   opts.Notifier,
	}, nil
}

// OnAuthFailure sets the hook called after a refresh fails and the tokens
// have been cleared. The session manager uses it to drop to anonymous.
func (c *Client) OnAuthFailure(fn func()) {
	c.mu.Lock()
	c.onAuthFailure = fn
	c.mu.Unlock()
}

// Get issues a GET and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with in as the JSON body
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

// RawResponse receives a successful reply verbatim when passed as out to Do
type RawResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// Do sends a request to path (relative to the API base). in is encoded as
// JSON unless it already is a json.RawMessage; out may be nil or a
// *RawResponse.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	if _, err := c.resolve(path); err != nil {
		return err
	}

	var body []byte
	switch v := in.(type) {
	case nil:
	case json.RawMessage:
		body = v
	default:
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = data
	}

	req := request{
		method:    method,
		path:      path,
		body:      body,
		requestID: uuid.NewString(),
	}
	return c.send(ctx, req, out, 0)
}

// request is everything needed to rebuild an outgoing call for each attempt
type request struct {
	method    string
	path      string
	body      []byte
	requestID string
}

// reply is a backend response read into memory
type reply struct {
	status      int
	contentType string
	body        []byte
}

func (r reply) ok() bool {
	return r.status >= 200 && r.status < 300
}

// send performs one attempt. Only attempt 0 is eligible for a refresh.
func (c *Client) send(ctx context.Context, req request, out any, attempt int) error {
	access, _ := c.tokens.Access(ctx)

	resp, err := c.roundTrip(ctx, req, access)
	if err != nil {
		c.notify(DefaultErrorMessage)
		return fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, req.method, req.path, err)
	}

	if resp.status == http.StatusUnauthorized && attempt == 0 {
		original := newAPIError(resp.status, resp.body)
		if _, err := c.refreshAfter(ctx, access); err != nil {
			c.expireSession(ctx)
			return fmt.Errorf("%w: %w", original, err)
		}
		return c.send(ctx, req, out, attempt+1)
	}

	if !resp.ok() {
		apiErr := newAPIError(resp.status, resp.body)
		c.notify(apiErr.Message)
		return apiErr
	}

	if raw, ok := out.(*RawResponse); ok {
		*raw = RawResponse{Status: resp.status, ContentType: resp.contentType, Body: resp.body}
		return nil
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.path, err)
	}
	return nil
}

// roundTrip builds a fresh *http.Request and reads the whole response
func (c *Client) roundTrip(ctx context.Context, req request, access string) (reply, error) {
	target, err := c.resolve(req.path)
	if err != nil {
		return reply{}, err
	}

	var body io.Reader = http.NoBody
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
	if err != nil {
		return reply{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}
	if tenant := TenantFromHost(target.Host); tenant != "" {
		httpReq.Header.Set("X-Tenant", tenant)
	}
	if req.requestID != "" {
		httpReq.Header.Set("X-Request-ID", req.requestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(req.method, "error").Inc()
		return reply{}, err
	}
	defer resp.Body.Close()

	metrics.BackendRequests.WithLabelValues(req.method, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return reply{}, fmt.Errorf("failed to read response body: %w", err)
	}
	return reply{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

// resolve joins path onto the API base. Absolute and host-relative
// references are rejected so the bearer token only goes to the base host.
func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPath, path, err)
	}
	if ref.IsAbs() || ref.Host != "" || ref.User != nil {
		return nil, fmt.Errorf("%w %q: must be relative to the API base", ErrInvalidPath, path)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// Refresh exchanges the stored refresh token for a new access token.
// Concurrent callers share one in-flight exchange.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	v, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refreshAfter refreshes unless the token that got the 401 is already stale,
// in which case another caller has refreshed and the current token is used.
func (c *Client) refreshAfter(ctx context.Context, rejected string) (string, error) {
	if current, ok := c.tokens.Access(ctx); ok && current != rejected {
		return current, nil
	}
	v, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		if current, ok := c.tokens.Access(ctx); ok && current != rejected {
			return current, nil
		}
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) refresh(ctx context.Context) (string, error) {
	refreshToken, ok := c.tokens.Refresh(ctx)
	if !ok {
		metrics.TokenRefreshes.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: no refresh token stored", domain.ErrRefresh)
	}

	body, _ := json.Marshal(map[string]string{"refresh": refreshToken})
	resp, err := c.roundTrip(ctx, request{
		method:    http.MethodPost,
		path:      refreshPath,
		body:      body,
		requestID: uuid.NewString(),
	}, "")
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: %w: %w", domain.ErrRefresh, domain.ErrNetwork, err)
	}
	if !resp.ok() {
		metrics.TokenRefreshes.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrRefresh, newAPIError(resp.status, resp.body))
	}

	var pair domain.TokenPair
	if err := json.Unmarshal(resp.body, &pair); err != nil || pair.Access == "" {
		metrics.TokenRefreshes.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: malformed refresh response", domain.ErrRefresh)
	}
	// Backends that rotate refresh tokens send a new one; keep the old otherwise.
	if pair.Refresh == "" {
		pair.Refresh = refreshToken
	}
	if err := c.tokens.Save(ctx, pair); err != nil {
		metrics.TokenRefreshes.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrRefresh, err)
	}

	metrics.TokenRefreshes.WithLabelValues("ok").Inc()
	log.Printf("✅ Access token refreshed [%s]", secret.Fingerprint(pair.Access))
	return pair.Access, nil
}

// expireSession clears the tokens and tells the session owner
func (c *Client) expireSession(ctx context.Context) {
	if err := c.tokens.Clear(ctx); err != nil {
		log.Printf("❌ Failed to clear tokens: %v", err)
	}
	log.Println("⚠️ Session expired, redirecting to login")

	c.mu.RLock()
	hook := c.onAuthFailure
	c.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

func (c *Client) notify(message string) {
	if c.notifier != nil {
		c.notifier.Notify(message)
	}
}

// Credentials exchanges a phone number and password for a token pair.
// It does not store the pair.
func (c *Client) Credentials(ctx context.Context, phoneNumber, password string) (domain.TokenPair, error) {
	body, err := json.Marshal(map[string]string{
		"phone_number": phoneNumber,
		"password":     password,
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	resp, err := c.roundTrip(ctx, request{
		method:    http.MethodPost,
		path:      loginPath,
		body:      body,
		requestID: uuid.NewString(),
	}, "")
	if err != nil {
		c.notify(DefaultErrorMessage)
		return domain.TokenPair{}, fmt.Errorf("%w: login: %w", domain.ErrNetwork, err)
	}
	if !resp.ok() {
		apiErr := newAPIError(resp.status, resp.body)
		c.notify(apiErr.Message)
		return domain.TokenPair{}, apiErr
	}

	var pair domain.TokenPair
	if err := json.Unmarshal(resp.body, &pair); err != nil || pair.Access == "" {
		return domain.TokenPair{}, errors.New("malformed login response")
	}
	return pair, nil
}

// Me fetches the profile of the operator owning the current access token
func (c *Client) Me(ctx context.Context) (*domain.CurrentUser, error) {
	var user domain.CurrentUser
	if err := c.Get(ctx, mePath, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, errors.New("malformed profile response")
	}
	return &user, nil
}
