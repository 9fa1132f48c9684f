// Package testbackend is a fake admin API used by the client tests.
// Protected routes accept only the access tokens it has been told about;
// refresh tokens are single use, mirroring rotation on the real backend.
package testbackend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/stretchr/testify/require"
)

const (
	apiPrefix    = "/api"
	signingKey   = "test-backend-secret"
	bearerPrefix = "Bearer "
)

// Recorded is one request seen by the backend
type Recorded struct {
	Method        string
	Path          string
	Authorization []string
	RequestID     string
	Header        http.Header
	Body          string
}

type account struct {
	password string
	grant    authapi.TokenResponse
}

type Backend struct {
	server *httptest.Server

	mu            sync.Mutex
	accessTokens  map[string]bool
	refreshGrants map[string]authapi.TokenResponse
	accounts      map[string]account
	profile       *users.Summary
	refreshStatus int
	refreshDelay  time.Duration
	refreshCalls  int
	logoutCalls   int
	requests      []Recorded
}

func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		accessTokens:  make(map[string]bool),
		refreshGrants: make(map[string]authapi.TokenResponse),
		accounts:      make(map[string]account),
	}

	r := mux.NewRouter()
	r.Use(b.record)
	api := r.PathPrefix(apiPrefix).Subrouter()
	api.HandleFunc(authapi.RouteRefreshToken, b.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc(authapi.RouteLogin, b.handleLogin).Methods(http.MethodPost)
	api.HandleFunc(authapi.RouteLogout, b.handleLogout).Methods(http.MethodPost)
	api.HandleFunc(authapi.RouteProfile, b.protected(b.handleProfile)).Methods(http.MethodGet)
	api.PathPrefix("/").HandlerFunc(b.protected(b.handleEcho))

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

// BaseURL is the API base the client should be configured with
func (b *Backend) BaseURL() string {
	return b.server.URL + apiPrefix
}

// Close stops the server so later calls fail at the transport level
func (b *Backend) Close() {
	b.server.Close()
}

func (b *Backend) AcceptAccessToken(tokens ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tok := range tokens {
		b.accessTokens[tok] = true
	}
}

func (b *Backend) RevokeAccessToken(tokens ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tok := range tokens {
		delete(b.accessTokens, tok)
	}
}

// GrantRefresh makes refreshToken exchangeable once for resp.
// The issued access token is accepted by protected routes.
func (b *Backend) GrantRefresh(refreshToken string, resp authapi.TokenResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshGrants[refreshToken] = resp
}

// FailRefresh forces every refresh to answer with status. Zero restores normal behaviour.
func (b *Backend) FailRefresh(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshStatus = status
}

func (b *Backend) SetRefreshDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshDelay = d
}

func (b *Backend) AddAccount(username, password string, grant authapi.TokenResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[username] = account{password: password, grant: grant}
}

func (b *Backend) SetProfile(u users.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profile = &u
}

func (b *Backend) RefreshCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

func (b *Backend) LogoutCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logoutCalls
}

// Requests returns the recorded requests for path, or all of them when path is ""
func (b *Backend) Requests(path string) []Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Recorded, 0, len(b.requests))
	for _, r := range b.requests {
		if path == "" || r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		b.mu.Lock()
		b.requests = append(b.requests, Recorded{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, apiPrefix),
			Authorization: r.Header.Values("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Header:        r.Header.Clone(),
			Body:          string(body),
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) protected(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		tok := strings.TrimPrefix(authHeader, bearerPrefix)

		b.mu.Lock()
		ok := strings.HasPrefix(authHeader, bearerPrefix) && b.accessTokens[tok]
		b.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, authapi.ErrorResponse{
				Detail: "Given token not valid for any token type",
				Code:   "token_not_valid",
			})
			return
		}
		next(w, r)
	}
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authapi.RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	b.refreshCalls++
	delay, status := b.refreshDelay, b.refreshStatus
	grant, ok := b.refreshGrants[req.RefreshToken]
	if ok && status == 0 {
		delete(b.refreshGrants, req.RefreshToken)
		b.accessTokens[grant.GetAccessToken()] = true
	}
	b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		writeJSON(w, status, authapi.ErrorResponse{Detail: "refresh failed"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, authapi.ErrorResponse{Detail: "Token is invalid or expired", Code: "token_not_valid"})
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, authapi.ErrorResponse{Detail: "malformed body"})
		return
	}

	b.mu.Lock()
	acc, ok := b.accounts[req.Username]
	if ok && acc.password == req.Password {
		b.accessTokens[acc.grant.GetAccessToken()] = true
	}
	b.mu.Unlock()

	if !ok || acc.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, authapi.ErrorResponse{Detail: "No active account found with the given credentials"})
		return
	}
	writeJSON(w, http.StatusOK, acc.grant)
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req authapi.LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	b.logoutCalls++
	delete(b.refreshGrants, req.RefreshToken)
	b.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleProfile(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	profile := b.profile
	b.mu.Unlock()

	if profile == nil {
		writeJSON(w, http.StatusNotFound, authapi.ErrorResponse{Detail: "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (b *Backend) handleEcho(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	writeJSON(w, http.StatusOK, map[string]string{
		"method": r.Method,
		"path":   strings.TrimPrefix(r.URL.Path, apiPrefix),
		"body":   string(body),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MintAccessToken signs a JWT access token for sub that expires at exp
func MintAccessToken(t testing.TB, sub string, exp time.Time) string {
	t.Helper()
	claims := jwtlib.MapClaims{
		"sub":        sub,
		"exp":        exp.Unix(),
		"iat":        exp.Add(-5 * time.Minute).Unix(),
		"token_type": "access",
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	require.NoError(t, err)
	return signed
}
