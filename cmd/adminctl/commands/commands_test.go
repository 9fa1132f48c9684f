package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/internal/testbackend"
	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/stretchr/testify/require"
)

type cli struct {
	backend   *testbackend.Backend
	credsFile string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ENV", "PROD")
	return &cli{
		backend:   testbackend.New(t),
		credsFile: filepath.Join(t.TempDir(), "credentials.json"),
	}
}

func (c *cli) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append([]string{
		"--base-url", c.backend.BaseURL(),
		"--credentials-file", c.credsFile,
		"--log-level", "error",
	}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestCLI_SessionLifecycle(t *testing.T) {
	c := newCLI(t)
	at := testbackend.MintAccessToken(t, "jdoe", time.Now().Add(time.Hour))
	c.backend.AddAccount("jdoe", "s3cret", authapi.TokenResponse{
		AccessToken:  utils.Ptr(at),
		RefreshToken: utils.Ptr("rt-1"),
		User: &users.Summary{
			ID:       "7",
			Username: "jdoe",
			FullName: "Jane Doe",
			Roles:    []users.RoleRef{users.NewRoleRef("accountant")},
		},
	})

	out, err := c.run(t, "s3cret\n", "login", "--username", "jdoe", "--password-stdin")
	require.NoError(t, err)
	require.Contains(t, out, "as Jane Doe (jdoe)")

	out, err = c.run(t, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, `"state": "authenticated"`)
	require.Contains(t, out, `"subject": "jdoe"`)

	out, err = c.run(t, "", "request", "get", authapi.RouteHierarchy)
	require.NoError(t, err)
	require.Contains(t, out, `"path": "/hierarchy/"`)

	out, err = c.run(t, "", "request", "POST", authapi.RouteCustomers, "--data", `{"name":"Acme"}`, "-H", "X-Tenant: north")
	require.NoError(t, err)
	require.Contains(t, out, `"method": "POST"`)
	recorded := c.backend.Requests(authapi.RouteCustomers)
	require.Len(t, recorded, 1)
	require.Equal(t, "north", recorded[0].Header.Get("X-Tenant"))

	out, err = c.run(t, "", "menu")
	require.NoError(t, err)
	require.Contains(t, out, authapi.RouteFinance)
	require.NotContains(t, out, authapi.RouteEmployees)

	_, err = c.run(t, "", "logout")
	require.NoError(t, err)
	require.Equal(t, 1, c.backend.LogoutCalls())

	out, err = c.run(t, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, `"state": "anonymous"`)

	_, err = c.run(t, "", "menu")
	require.ErrorContains(t, err, "not logged in")
}

func TestCLI_LoginRejected(t *testing.T) {
	c := newCLI(t)
	c.backend.AddAccount("jdoe", "s3cret", authapi.TokenResponse{AccessToken: utils.Ptr("at")})

	_, err := c.run(t, "wrong\n", "login", "-u", "jdoe", "--password-stdin")
	require.ErrorContains(t, err, "invalid username or password")
}

func TestCLI_RequestValidation(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "", "request", "GET")
	require.Error(t, err)

	_, err = c.run(t, "", "request", "POST", "/crm/customers/", "--data", "{not json")
	require.ErrorContains(t, err, "valid JSON")

	_, err = c.run(t, "", "request", "GET", "/hierarchy/", "-H", "no-colon")
	require.ErrorContains(t, err, "Key: value")
}

func TestCLI_AnonymousRequestReportsStatus(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, "", "request", "GET", authapi.RouteHierarchy)
	require.ErrorContains(t, err, "status 401")
	require.Contains(t, out, "token_not_valid")
	require.Zero(t, c.backend.RefreshCalls())
}

func TestEnvironment_FlagsOverride(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://env.example.com/api")
	flags = globalFlags{baseURL: "https://flag.example.com/api", credentialsFile: "/tmp/creds.json"}
	defer func() { flags = globalFlags{} }()

	env := environment()
	require.Equal(t, "https://flag.example.com/api", env["API_BASE_URL"])
	require.Equal(t, "/tmp/creds.json", env["CREDENTIALS_FILE"])
}
