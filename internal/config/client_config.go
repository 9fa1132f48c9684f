package config

import "time"

type ClientSettings struct {
	RequestTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	RefreshTimeout     time.Duration `env:"REFRESH_TIMEOUT" envDefault:"10s"`
	ExpiryLeeway       time.Duration `env:"EXPIRY_LEEWAY" envDefault:"5s"`
	DeduplicateRefresh bool          `env:"DEDUPLICATE_REFRESH" envDefault:"true"`
}

var _ ClientConfig = ClientSettings{}

func (c ClientSettings) GetRequestTimeout() time.Duration {
	return c.RequestTimeout
}

// GetRefreshTimeout bounds a single call to the refresh endpoint
func (c ClientSettings) GetRefreshTimeout() time.Duration {
	return c.RefreshTimeout
}

// GetExpiryLeeway is subtracted from the token expiry before the proactive check,
// so a token about to lapse in flight is refreshed first.
func (c ClientSettings) GetExpiryLeeway() time.Duration {
	return c.ExpiryLeeway
}

func (c ClientSettings) GetDeduplicateRefresh() bool {
	return c.DeduplicateRefresh
}
