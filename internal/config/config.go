package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	ClientConfig
}

type EnvConfig interface {
	GetAPIBaseURL() string
	GetAppName() string
	GetEnv() string
	GetCredentialsFile() string
}

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetExpiryLeeway() time.Duration
	GetDeduplicateRefresh() bool
}

type mainConfig struct {
	EnvVars
	ClientSettings
}

// New reads the configuration from the process environment.
func New() (Config, error) {
	return NewFromEnvironment(nil)
}

// NewFromEnvironment reads the configuration from the given variables.
// A nil map falls back to the process environment.
func NewFromEnvironment(environment map[string]string) (Config, error) {
	opts := env.Options{Environment: environment}

	var c mainConfig
	if err := env.ParseWithOptions(&c.EnvVars, opts); err != nil {
		return nil, errors.Wrap(err, "[config New] parse environment")
	}
	if err := env.ParseWithOptions(&c.ClientSettings, opts); err != nil {
		return nil, errors.Wrap(err, "[config New] parse client settings")
	}
	return c, nil
}
