package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"retail-console/internal/adapters/persistence/repositories"
	"retail-console/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// fakeBackend serves token/refresh/ and a protected stocks/ resource.
// The resource accepts only validToken; refresh hands out issuedToken.
type fakeBackend struct {
	validToken   atomic.Value
	issuedToken  atomic.Value
	refreshCalls atomic.Int32
	stockCalls   atomic.Int32
	refreshOK    atomic.Bool
	refreshDelay time.Duration

	mu      sync.Mutex
	headers []http.Header
	// beforeReject runs before a stocks/ request is answered with 401
	beforeReject func()
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{}
	b.validToken.Store("fresh")
	b.issuedToken.Store("fresh")
	b.refreshOK.Store(true)
	return b
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		if !b.refreshOK.Load() || body["refresh"] == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access": b.issuedToken.Load().(string)})
	})

	mux.HandleFunc("/api/v1/stocks/", func(w http.ResponseWriter, r *http.Request) {
		b.stockCalls.Add(1)
		b.mu.Lock()
		b.headers = append(b.headers, r.Header.Clone())
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer "+b.validToken.Load().(string) {
			b.mu.Lock()
			hook := b.beforeReject
			b.mu.Unlock()
			if hook != nil {
				hook()
			}
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
			return
		}
		_, _ = w.Write([]byte(`{"count":2}`))
	})

	mux.HandleFunc("/api/v1/products/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Price must be positive","error":"validation"}`))
	})

	return mux
}

func (b *fakeBackend) seenHeaders() []http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]http.Header(nil), b.headers...)
}

func setupClient(t *testing.T, backend *fakeBackend) (*Client, repositories.TokenStore, *recordingNotifier) {
	t.Helper()

	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	tokens := repositories.NewMemoryTokenStore()
	notifier := &recordingNotifier{}

	client, err := New(Options{
		BaseURL:    server.URL + "/api/v1",
		HTTPClient: server.Client(),
		Tokens:     tokens,
		Notifier:   notifier,
	})
	require.NoError(t, err)

	return client, tokens, notifier
}

func TestClient_NoTokenNoAuthorizationHeader(t *testing.T) {
	backend := newFakeBackend()
	client, _, _ := setupClient(t, backend)

	// Without a token the resource rejects; with no refresh token the refresh fails.
	_ = client.Get(context.Background(), "stocks/", nil)

	headers := backend.seenHeaders()
	require.Len(t, headers, 1)
	assert.Empty(t, headers[0].Get("Authorization"))
	assert.Equal(t, "application/json", headers[0].Get("Content-Type"))
	assert.NotEmpty(t, headers[0].Get("X-Request-ID"))
	assert.Zero(t, backend.refreshCalls.Load(), "no refresh token means no refresh request")
}

func TestClient_AttachesBearerToken(t *testing.T) {
	backend := newFakeBackend()
	client, tokens, notifier := setupClient(t, backend)
	require.NoError(t, tokens.Save(context.Background(), domain.TokenPair{Access: "fresh", Refresh: "r"}))

	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, client.Get(context.Background(), "/stocks/", &out))

	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "Bearer fresh", backend.seenHeaders()[0].Get("Authorization"))
	assert.Zero(t, backend.refreshCalls.Load())
	assert.Empty(t, notifier.all())
}

func TestClient_RefreshesOnceAndRetries(t *testing.T) {
	backend := newFakeBackend()
	client, tokens, notifier := setupClient(t, backend)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, domain.TokenPair{Access: "stale", Refresh: "r"}))

	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, client.Get(ctx, "stocks/", &out))

	assert.Equal(t, 2, out.Count)
	assert.EqualValues(t, 1, backend.refreshCalls.Load())
	assert.EqualValues(t, 2, backend.stockCalls.Load(), "original plus exactly one retry")

	headers := backend.seenHeaders()
	assert.Equal(t, "Bearer stale", headers[0].Get("Authorization"))
	assert.Equal(t, "Bearer fresh", headers[1].Get("Authorization"))
	assert.Equal(t, headers[0].Get("X-Request-ID"), headers[1].Get("X-Request-ID"))

	access, _ := tokens.Access(ctx)
	assert.Equal(t, "fresh", access)
	refresh, _ := tokens.Refresh(ctx)
	assert.Equal(t, "r", refresh, "refresh token is kept when not rotated")
	assert.Empty(t, notifier.all())
}

func TestClient_RefreshFailureClearsTokens(t *testing.T) {
	backend := newFakeBackend()
	backend.refreshOK.Store(false)
	client, tokens, notifier := setupClient(t, backend)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, domain.TokenPair{Access: "stale", Refresh: "revoked"}))

	var hookCalls atomic.Int32
	client.OnAuthFailure(func() { hookCalls.Add(1) })

	err := client.Get(ctx, "stocks/", nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrRefresh)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Given token not valid for any token type", apiErr.Message)

	assert.EqualValues(t, 1, backend.refreshCalls.Load())
	assert.EqualValues(t, 1, backend.stockCalls.Load(), "no retry after a failed refresh")
	assert.EqualValues(t, 1, hookCalls.Load())

	_, ok := tokens.Access(ctx)
	assert.False(t, ok)
	_, ok = tokens.Refresh(ctx)
	assert.False(t, ok)
	assert.Empty(t, notifier.all(), "auth failures redirect instead of notifying")
}

func TestClient_SecondUnauthorizedIsFinal(t *testing.T) {
	backend := newFakeBackend()
	backend.issuedToken.Store("also-rejected")
	client, tokens, notifier := setupClient(t, backend)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, domain.TokenPair{Access: "stale", Refresh: "r"}))

	err := client.Get(ctx, "stocks/", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.NotErrorIs(t, err, domain.ErrRefresh)
	assert.EqualValues(t, 1, backend.refreshCalls.Load(), "no refresh loop")
	assert.EqualValues(t, 2, backend.stockCalls.Load())
	assert.Equal(t, []string{"Given token not valid for any token type"}, notifier.all())

	access, _ := tokens.Access(ctx)
	assert.Equal(t, "also-rejected", access, "tokens are kept after a final 401")
}

func TestClient_StaleTokenRetriesWithoutRefresh(t *testing.T) {
	backend := newFakeBackend()
	client, tokens, notifier := setupClient(t, backend)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, domain.TokenPair{Access: "old", Refresh: "r"}))

	// Another caller stores a new token while the request with the old one is in flight.
	backend.validToken.Store("rotated")
	backend.beforeReject = func() {
		_ = tokens.Save(ctx, domain.TokenPair{Access: "rotated", Refresh: "r"})
	}

	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, client.Get(ctx, "stocks/", &out))

	assert.Equal(t, 2, out.Count)
	assert.Zero(t, backend.refreshCalls.Load(), "a stale token is retried without refreshing")
	headers := backend.seenHeaders()
	require.Len(t, headers, 2)
	assert.Equal(t, "Bearer old", headers[0].Get("Authorization"))
	assert.Equal(t, "Bearer rotated", headers[1].Get("Authorization"))
	assert.Empty(t, notifier.all())
}

func TestClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	backend := newFakeBackend()
	backend.refreshDelay = 50 * time.Millisecond
	client, tokens, _ := setupClient(t, backend)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, domain.TokenPair{Access: "stale", Refresh: "r"}))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- client.Get(ctx, "stocks/", nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, backend.refreshCalls.Load())
}

func TestClient_ErrorResponseNotifies(t *testing.T) {
	backend := newFakeBackend()
	client, tokens, notifier := setupClient(t, backend)
	require.NoError(t, tokens.Save(context.Background(), domain.TokenPair{Access: "fresh"}))

	err := client.Post(context.Background(), "products/", map[string]any{"price": -1}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Price must be positive", apiErr.Message)
	assert.Equal(t, []string{"Price must be positive"}, notifier.all())
}

func TestClient_NetworkError(t *testing.T) {
	tokens := repositories.NewMemoryTokenStore()
	notifier := &recordingNotifier{}

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := New(Options{BaseURL: baseURL, Tokens: tokens, Notifier: notifier, Timeout: time.Second})
	require.NoError(t, err)

	err = client.Get(context.Background(), "stocks/", nil)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, []string{DefaultErrorMessage}, notifier.all())
}

func TestClient_TenantHeader(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	// Route every host to the test server so the tenant host is preserved.
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, network, server.Listener.Addr().String())
		},
	}

	tokens := repositories.NewMemoryTokenStore()
	require.NoError(t, tokens.Save(context.Background(), domain.TokenPair{Access: "fresh"}))

	client, err := New(Options{
		BaseURL:    "http://shop1.retail.uz/api/v1/",
		HTTPClient: &http.Client{Transport: transport},
		Tokens:     tokens,
	})
	require.NoError(t, err)

	require.NoError(t, client.Get(context.Background(), "stocks/", nil))
	assert.Equal(t, "shop1", backend.seenHeaders()[0].Get("X-Tenant"))
}

func TestClient_Credentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/token/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["phone_number"] != "+998901112233" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access":"a1","refresh":"r1"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	notifier := &recordingNotifier{}
	client, err := New(Options{BaseURL: server.URL + "/api/v1/", Tokens: repositories.NewMemoryTokenStore(), Notifier: notifier})
	require.NoError(t, err)

	pair, err := client.Credentials(context.Background(), "+998901112233", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenPair{Access: "a1", Refresh: "r1"}, pair)

	_, err = client.Credentials(context.Background(), "+998901112233", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, []string{"No active account found with the given credentials"}, notifier.all())
}

func TestClient_RejectsPathsOutsideBase(t *testing.T) {
	backend := newFakeBackend()
	client, tokens, notifier := setupClient(t, backend)
	require.NoError(t, tokens.Save(context.Background(), domain.TokenPair{Access: "fresh", Refresh: "r"}))

	for _, path := range []string{
		"http://attacker.example/stocks/",
		"HTTPS://attacker.example/stocks/",
		"https://user@attacker.example/",
	} {
		err := client.Get(context.Background(), path, nil)
		assert.ErrorIs(t, err, ErrInvalidPath, path)
	}
	assert.Empty(t, backend.seenHeaders(), "nothing was sent")
	assert.Empty(t, notifier.all())

	// Leading slashes are stripped, so a host-like path stays on the base host.
	_ = client.Get(context.Background(), "//stocks/", nil)
	require.Len(t, backend.seenHeaders(), 1)
}

func TestClient_RawResponse(t *testing.T) {
	backend := newFakeBackend()
	client, tokens, _ := setupClient(t, backend)
	require.NoError(t, tokens.Save(context.Background(), domain.TokenPair{Access: "fresh", Refresh: "r"}))

	var raw RawResponse
	require.NoError(t, client.Get(context.Background(), "stocks/", &raw))

	assert.Equal(t, http.StatusOK, raw.Status)
	assert.Equal(t, "application/json", raw.ContentType)
	assert.JSONEq(t, `{"count":2}`, string(raw.Body))
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "not a url", Tokens: repositories.NewMemoryTokenStore()})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "https://shop1.retail.uz/api/v1/"})
	assert.Error(t, err)
}
