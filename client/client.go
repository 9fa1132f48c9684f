// Package client is the authenticated HTTP client for the admin platform API.
//
// Every request carries the stored access token as a bearer credential. A
// token whose exp claim has passed is refreshed before sending, and a 401 is
// answered with at most one refresh and one retry. When that fails the stored
// credential is wiped and ErrAuthenticationRequired is returned, so callers
// never deal with the token lifecycle themselves.
package client

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-admin-client/credentials"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *credentials.Store
	config     config.ClientConfig
	log        zerolog.Logger
	nowFunc    func() time.Time

	dedupeRefresh bool
	refreshGroup  singleflight.Group
	refreshing    atomic.Int32

	listeners []StateListener
	stateMu   sync.Mutex
	lastState State
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (timeout from HTTP_TIMEOUT)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// WithNowFunc sets the clock used for the expiry hint (primarily for testing)
func WithNowFunc(now func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = now
	}
}

// WithStateListener registers a callback for session state transitions
func WithStateListener(listener StateListener) Option {
	return func(c *Client) {
		c.listeners = append(c.listeners, listener)
	}
}

// WithRefreshDeduplication controls whether concurrent callers share one
// in-flight refresh. When disabled every caller runs its own attempt.
func WithRefreshDeduplication(enabled bool) Option {
	return func(c *Client) {
		c.dedupeRefresh = enabled
	}
}

// New creates a client for the API base URL in cfg, persisting the session through store.
func New(cfg config.Config, store *credentials.Store, options ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("[client New] config is required")
	}
	if store == nil {
		return nil, errors.New("[client New] credential store is required")
	}

	baseURL := strings.TrimRight(cfg.GetAPIBaseURL(), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[client New] invalid API base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[client New] API base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: cfg.GetRequestTimeout()},
		store:         store,
		config:        cfg,
		log:           log.Logger,
		nowFunc:       time.Now,
		dedupeRefresh: cfg.GetDeduplicateRefresh(),
	}
	for _, opt := range options {
		opt(c)
	}
	c.log = c.log.With().Str("component", "api-client").Logger()
	c.lastState = c.State()
	return c, nil
}

// BaseURL returns the API base every request path is joined to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsAuthenticated reports whether an access token is stored. It does not
// check expiry; it is an optimistic hint for gating UI, not a security decision.
func (c *Client) IsAuthenticated() bool {
	return c.store.AccessToken() != ""
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) isExpired(accessToken string) bool {
	return token.IsExpired(accessToken, c.nowFunc(), c.config.GetExpiryLeeway())
}
