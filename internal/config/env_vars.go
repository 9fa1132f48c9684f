package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

const (
	devBaseURL          = "http://localhost:8000/api"
	credentialsFileName = "credentials.json"
)

// HostnameFunc returns the machine hostname. It can be overridden in tests.
var HostnameFunc = os.Hostname

type EnvVars struct {
	APIBaseURL      string `env:"API_BASE_URL"`
	AppHost         string `env:"APP_HOST"`
	AppName         string `env:"APP_NAME" envDefault:"Admin Console"`
	Env             string `env:"ENV" envDefault:"DEV"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

var _ EnvConfig = EnvVars{}

// GetAPIBaseURL returns the API base URL without a trailing slash.
// API_BASE_URL wins; otherwise the default depends on the host the console is served from.
func (e EnvVars) GetAPIBaseURL() string {
	if e.APIBaseURL != "" {
		return strings.TrimRight(e.APIBaseURL, "/")
	}
	host := e.AppHost
	if host == "" {
		host, _ = HostnameFunc()
	}
	return defaultBaseURL(host)
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

// GetCredentialsFile returns where the CLI persists the session credential
func (e EnvVars) GetCredentialsFile() string {
	if e.CredentialsFile != "" {
		return e.CredentialsFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return credentialsFileName
	}
	return filepath.Join(home, ".config", "adminctl", credentialsFileName)
}

func defaultBaseURL(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if isLocalHost(host) {
		return devBaseURL
	}
	return fmt.Sprintf("https://%s/api", host)
}

func isLocalHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	switch host {
	case "", "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return true
	}
	return strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".localhost")
}
