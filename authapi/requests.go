package authapi

// RefreshRequest is the body of POST /auth/refresh-token
type RefreshRequest struct {
	// RefreshToken is the token currently held by the client.
	// Behavior: rotated - the old refresh token is invalid once a new pair is issued
	RefreshToken string `json:"refresh_token"`
}

// LoginRequest is the body of POST /auth/login/
type LoginRequest struct {
	Username string `json:"username"`
	// Password is never logged or persisted
	Password string `json:"password"`
}

// LogoutRequest is the body of POST /auth/logout/. The backend blacklists the refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ErrorResponse is the error body returned by the backend
type ErrorResponse struct {
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
}
