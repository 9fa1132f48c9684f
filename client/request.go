package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/rs/zerolog"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	bearerPrefix        = "Bearer "
	maxDrainBytes       = 64 << 10
)

type requestOptions struct {
	headers http.Header
	timeout time.Duration
}

// RequestOption customises a single Request call
type RequestOption func(*requestOptions)

// WithHeader sets a request header. Authorization is owned by the client and cannot be overridden.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Add(key, value)
	}
}

// WithTimeout bounds the whole call, including any refresh and retry.
// The deadline stays armed until the response body is closed.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = d
	}
}

// Request sends method to path (relative to the API base) with body JSON-encoded.
//
// Sequence: proactive expiry check (refresh if needed), send, and on 401 a
// single refresh followed by a single retry. A proactive refresh uses up the
// refresh budget. If the call ends unauthenticated the credential is cleared
// and errors.ErrAuthenticationRequired is returned. A 401 to a call made
// without any credential is returned as-is. Other statuses are returned untouched.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*http.Response, error) {
	ro := requestOptions{headers: http.Header{}}
	for _, opt := range opts {
		opt(&ro)
	}

	cancel := context.CancelFunc(func() {})
	if ro.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, ro.timeout)
	}

	resp, err := c.request(ctx, method, path, body, ro.headers)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *Client) request(ctx context.Context, method, path string, body any, headers http.Header) (*http.Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := c.log.With().Str("request_id", requestID).Str("method", method).Str("path", path).Logger()

	refreshAttempted := false
	accessToken := c.store.AccessToken()
	if accessToken != "" && c.isExpired(accessToken) {
		c.transition(Expired)
		refreshAttempted = true
		logger.Debug().Msg("Access token past expiry hint, refreshing before send")
		if err := c.RefreshSession(ctx); err != nil {
			logger.Warn().Err(err).Msg("Proactive refresh failed, sending with current token")
		}
		accessToken = c.store.AccessToken()
	}

	resp, err := c.send(ctx, method, path, payload, accessToken, requestID, headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if refreshAttempted {
		drain(resp)
		return nil, c.authenticationRequired(logger, "rejected after proactive refresh")
	}

	// Another caller may already have rotated the pair this request was sent with
	if current := c.store.AccessToken(); current != "" && current != accessToken {
		logger.Debug().Msg("Access token rotated concurrently, retrying with stored token")
		drain(resp)
		return c.retry(ctx, logger, method, path, payload, current, requestID, headers)
	}

	refreshToken := c.store.RefreshToken()
	refreshErr := c.RefreshSession(ctx)
	if refreshErr != nil {
		if accessToken == "" && errors.Is(refreshErr, errors.ErrNoRefreshToken) {
			return resp, nil
		}
		drain(resp)
		if ctx.Err() != nil {
			logger.Debug().Err(refreshErr).Msg("Caller gave up while refreshing")
			return nil, errors.Join(errors.ErrNetworkFailure, ctx.Err())
		}
		// A concurrent login or refresh may have replaced the pair while ours failed
		if current := c.store.AccessToken(); current != "" && (current != accessToken || c.store.RefreshToken() != refreshToken) {
			logger.Debug().Err(refreshErr).Msg("Credential replaced during failed refresh, retrying with stored token")
			return c.retry(ctx, logger, method, path, payload, current, requestID, headers)
		}
		logger.Warn().Err(refreshErr).Msg("Refresh after 401 failed")
		return nil, c.authenticationRequired(logger, "refresh failed")
	}
	drain(resp)
	return c.retry(ctx, logger, method, path, payload, c.store.AccessToken(), requestID, headers)
}

func (c *Client) retry(ctx context.Context, logger zerolog.Logger, method, path string, payload []byte, accessToken, requestID string, headers http.Header) (*http.Response, error) {
	resp, err := c.send(ctx, method, path, payload, accessToken, requestID, headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		return nil, c.authenticationRequired(logger, "rejected after refresh")
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, accessToken, requestID string, headers http.Header) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set(headerRequestID, requestID)
	req.Header.Del(headerAuthorization)
	if accessToken != "" {
		req.Header.Set(headerAuthorization, bearerPrefix+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(errors.ErrNetworkFailure, err)
	}
	return resp, nil
}

func (c *Client) authenticationRequired(logger zerolog.Logger, reason string) error {
	logger.Info().Str("reason", reason).Msg("Session is no longer authenticated, clearing credential")
	if err := c.store.Clear(); err != nil {
		logger.Error().Err(err).Msg("Failed to clear session credential")
	}
	c.transition(Anonymous)
	return errors.ErrAuthenticationRequired
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case io.Reader:
		payload, err := io.ReadAll(b)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		return payload, nil
	default:
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return payload, nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}
