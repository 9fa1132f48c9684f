// Package token inspects access tokens on the client side.
//
// Nothing here verifies a signature. The expiry hint only saves a round trip
// that would end in a 401; the server's answer is the sole authority on
// whether a token is valid.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-admin-client/internal/errors"
)

// ExpiryHint decodes the exp claim of raw without verifying the signature.
// A zero time with a nil error means the token carries no exp claim.
func ExpiryHint(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.ErrInvalidToken
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, errors.Join(errors.ErrInvalidToken, err)
	}

	exp, err := unverifiedToken.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Join(errors.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// IsExpired reports whether raw should be refreshed before use at now.
// Tokens that cannot be decoded count as expired. leeway moves the deadline
// earlier so a token does not lapse while the request is in flight.
func IsExpired(raw string, now time.Time, leeway time.Duration) bool {
	exp, err := ExpiryHint(raw)
	if err != nil {
		return true
	}
	if exp.IsZero() {
		return false
	}
	return !now.Before(exp.Add(-leeway))
}

// Subject returns the unverified sub claim, or "" if there is none
func Subject(raw string) string {
	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return ""
	}
	sub, _ := unverifiedToken.Claims.GetSubject()
	return sub
}
