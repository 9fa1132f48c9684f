package filerepo_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/go-admin-client/credentials"
	"github.com/jrsteele09/go-admin-client/credentials/filerepo"
	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://admin.example.com/api"

func TestNew_Validation(t *testing.T) {
	_, err := filerepo.New("", baseURL)
	require.Error(t, err)

	_, err = filerepo.New(filepath.Join(t.TempDir(), "c.json"), "")
	require.Error(t, err)
}

func TestFileRepo_UpsertGetDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	repo, err := filerepo.New(path, baseURL+"/")
	require.NoError(t, err)

	_, err = repo.Get(credentials.KeyAccessToken)
	require.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, repo.Upsert(map[string]string{
		credentials.KeyAccessToken:  "at-1",
		credentials.KeyRefreshToken: "rt-1",
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v, err := repo.Get(credentials.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "at-1", v)

	require.NoError(t, repo.Upsert(map[string]string{credentials.KeyRefreshToken: ""}))
	_, err = repo.Get(credentials.KeyRefreshToken)
	require.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, repo.Delete(credentials.AllKeys...))
	profiles, err := repo.Profiles()
	require.NoError(t, err)
	require.Empty(t, profiles)
}

func TestFileRepo_ProfilesAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	prod, err := filerepo.New(path, baseURL)
	require.NoError(t, err)
	dev, err := filerepo.New(path, "http://localhost:8000/api")
	require.NoError(t, err)

	require.NoError(t, prod.Upsert(map[string]string{credentials.KeyAccessToken: "prod-at"}))
	require.NoError(t, dev.Upsert(map[string]string{credentials.KeyAccessToken: "dev-at"}))

	v, err := prod.Get(credentials.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "prod-at", v)

	require.NoError(t, dev.Delete(credentials.AllKeys...))
	v, err = prod.Get(credentials.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "prod-at", v)

	profiles, err := prod.Profiles()
	require.NoError(t, err)
	require.Equal(t, []string{baseURL}, profiles)
}

func TestFileRepo_Encrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	repo, err := filerepo.New(path, baseURL, filerepo.WithPassphrase("correct horse"))
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(map[string]string{credentials.KeyAccessToken: "secret-at"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "secret-at"))
	require.Contains(t, string(raw), "ciphertext")

	v, err := repo.Get(credentials.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "secret-at", v)

	wrong, err := filerepo.New(path, baseURL, filerepo.WithPassphrase("battery staple"))
	require.NoError(t, err)
	_, err = wrong.Get(credentials.KeyAccessToken)
	require.True(t, errors.Is(err, filerepo.ErrDecrypt))

	plain, err := filerepo.New(path, baseURL)
	require.NoError(t, err)
	_, err = plain.Get(credentials.KeyAccessToken)
	require.True(t, errors.Is(err, filerepo.ErrPassphraseRequired))
}

func TestFileRepo_WorksBehindStore(t *testing.T) {
	repo, err := filerepo.New(filepath.Join(t.TempDir(), "credentials.json"), baseURL)
	require.NoError(t, err)
	store, err := credentials.NewStore(repo)
	require.NoError(t, err)

	require.NoError(t, store.Save(credentials.Session{AccessToken: "at", RefreshToken: "rt"}))
	require.Equal(t, "rt", store.RefreshToken())

	require.NoError(t, store.Clear())
	require.Empty(t, store.AccessToken())
}
