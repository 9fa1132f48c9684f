package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/credentials"
	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/users"
)

// Login exchanges a username and password for a session credential and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (*users.Summary, error) {
	payload, err := json.Marshal(authapi.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, http.MethodPost, authapi.RouteLogin, payload, "", uuid.NewString(), nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		c.log.Info().Str("username", username).Int("status", resp.StatusCode).Msg("Login refused")
		return nil, errors.ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, newStatusError(http.MethodPost, authapi.RouteLogin, resp)
	}

	var tr authapi.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if !tr.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "login response has no access token")
	}

	if err := c.store.Save(credentials.Session{
		AccessToken:  tr.GetAccessToken(),
		RefreshToken: tr.GetRefreshToken(),
		User:         tr.User,
	}); err != nil {
		return nil, err
	}
	c.transition(c.State())
	c.log.Info().Str("username", username).Msg("Logged in")
	return tr.User, nil
}

// Logout tells the backend to drop the refresh token, then clears the stored
// credential whatever the backend answered.
func (c *Client) Logout(ctx context.Context) error {
	accessToken, refreshToken := c.store.AccessToken(), c.store.RefreshToken()
	if accessToken != "" || refreshToken != "" {
		payload, err := json.Marshal(authapi.LogoutRequest{RefreshToken: refreshToken})
		if err != nil {
			return err
		}
		resp, err := c.send(ctx, http.MethodPost, authapi.RouteLogout, payload, accessToken, uuid.NewString(), nil)
		if err != nil {
			c.log.Warn().Err(err).Msg("Logout call failed, clearing local credential anyway")
		} else {
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				c.log.Debug().Int("status", resp.StatusCode).Msg("Backend refused logout")
			}
			drain(resp)
		}
	}

	if err := c.store.Clear(); err != nil {
		return err
	}
	c.transition(Anonymous)
	return nil
}

// FetchProfile loads the current user from the backend and replaces the cached summary.
func (c *Client) FetchProfile(ctx context.Context) (*users.Summary, error) {
	var u users.Summary
	if err := c.Do(ctx, http.MethodGet, authapi.RouteProfile, nil, &u); err != nil {
		return nil, err
	}
	if err := c.store.SaveUser(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUser returns the cached user summary without a network call
func (c *Client) CurrentUser() (*users.Summary, error) {
	return c.store.User()
}

// StatusError is a non-2xx answer returned by Do
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func newStatusError(method, path string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDrainBytes))
	var er authapi.ErrorResponse
	_ = json.Unmarshal(body, &er)
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Detail:     er.Detail,
		Body:       body,
	}
}

// Do is Request for JSON endpoints: a 2xx body is decoded into out (if non-nil),
// anything else is returned as a *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	resp, err := c.Request(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(method, path, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
