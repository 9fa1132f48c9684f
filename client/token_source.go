package client

import (
	"context"

	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/token"
	"golang.org/x/oauth2"
)

type tokenSource struct {
	ctx    context.Context
	client *Client
}

// TokenSource exposes the stored session to golang.org/x/oauth2, e.g.
// oauth2.NewClient(ctx, c.TokenSource(ctx)). Expired tokens are refreshed
// through the same flow Request uses.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c}
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	c := ts.client
	accessToken := c.store.AccessToken()
	if accessToken == "" || c.isExpired(accessToken) {
		if err := c.RefreshSession(ts.ctx); err != nil {
			return nil, errors.Join(errors.ErrAuthenticationRequired, err)
		}
		accessToken = c.store.AccessToken()
	}

	expiry, _ := token.ExpiryHint(accessToken)
	return &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		RefreshToken: c.store.RefreshToken(),
		Expiry:       expiry,
	}, nil
}
