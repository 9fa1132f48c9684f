package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/credentials"
	"github.com/jrsteele09/go-admin-client/internal/errors"
)

// Refresh exchanges the stored refresh token for a new session credential.
// It reports false on any failure and leaves storage untouched in that case.
func (c *Client) Refresh(ctx context.Context) bool {
	return c.RefreshSession(ctx) == nil
}

// RefreshSession is Refresh with the failure reason:
//   - errors.ErrNoRefreshToken: nothing stored, no network call was made
//   - errors.ErrNetworkFailure: the refresh endpoint could not be reached
//   - errors.ErrRefreshRejected: the backend refused the token or answered nonsense
func (c *Client) RefreshSession(ctx context.Context) error {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		return errors.ErrNoRefreshToken
	}
	if !c.dedupeRefresh {
		return c.refresh(ctx, refreshToken)
	}

	// The shared refresh outlives any one caller; each waiter only gives up on its own ctx
	ch := c.refreshGroup.DoChan(refreshToken, func() (any, error) {
		return nil, c.refresh(context.WithoutCancel(ctx), refreshToken)
	})
	select {
	case res := <-ch:
		if res.Shared {
			c.log.Debug().Err(res.Err).Msg("Joined in-flight refresh")
		}
		return res.Err
	case <-ctx.Done():
		return errors.Join(errors.ErrNetworkFailure, ctx.Err())
	}
}

func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	c.refreshing.Add(1)
	c.transition(Refreshing)
	defer func() {
		c.refreshing.Add(-1)
		c.transition(c.State())
	}()

	if timeout := c.config.GetRefreshTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	payload, err := json.Marshal(authapi.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(authapi.RouteRefreshToken), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("Refresh endpoint unreachable")
		return errors.Join(errors.ErrNetworkFailure, err)
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Info().Int("status", resp.StatusCode).Msg("Refresh token rejected")
		return fmt.Errorf("%w: status %d", errors.ErrRefreshRejected, resp.StatusCode)
	}

	var tr authapi.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		c.log.Warn().Err(err).Msg("Undecodable refresh response")
		return errors.Join(errors.ErrRefreshRejected, err)
	}
	if !tr.Valid() {
		c.log.Warn().Msg("Refresh response without access token")
		return fmt.Errorf("%w: response has no access token", errors.ErrRefreshRejected)
	}

	session := credentials.Session{
		AccessToken:  tr.GetAccessToken(),
		RefreshToken: tr.GetRefreshToken(),
		User:         tr.User,
	}
	// Backends that do not rotate omit these; keep what is already held
	if session.RefreshToken == "" {
		session.RefreshToken = refreshToken
	}
	if session.User == nil {
		if cached, err := c.store.User(); err == nil {
			session.User = cached
		}
	}

	if err := c.store.Save(session); err != nil {
		c.log.Error().Err(err).Msg("Failed to persist refreshed credential")
		return err
	}
	c.log.Debug().Msg("Session credential refreshed")
	return nil
}
