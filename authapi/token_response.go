package authapi

import (
	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/jrsteele09/go-admin-client/users"
)

// TokenResponse is the body returned by the login and refresh-token endpoints.
// A successful response always replaces the whole session credential.
type TokenResponse struct {
	// AccessToken is the short-lived JWT sent with every API request.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Usage: Authorization: Bearer <access_token>
	AccessToken *string `json:"access_token,omitempty"`

	// RefreshToken is exchanged at /auth/refresh-token for a new pair.
	// Lifespan: Long-lived; the backend rotates it on every refresh
	RefreshToken *string `json:"refresh_token,omitempty"`

	// User is the profile snapshot cached alongside the tokens.
	// Roles may be names or {name, permissions} objects; users.RoleRef normalises both.
	User *users.Summary `json:"user,omitempty"`
}

// Valid reports whether the response carries an access token to use
func (t *TokenResponse) Valid() bool {
	return t != nil && utils.Value(t.AccessToken) != ""
}

// GetAccessToken returns the access token or ""
func (t *TokenResponse) GetAccessToken() string {
	return utils.Value(t.AccessToken)
}

// GetRefreshToken returns the refresh token or ""
func (t *TokenResponse) GetRefreshToken() string {
	return utils.Value(t.RefreshToken)
}
