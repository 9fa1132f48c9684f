package credentials

// Persisted key names. Absence of KeyAccessToken means the client is anonymous.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// AllKeys lists every key that makes up the session credential
var AllKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Repo is the key-value storage capability the session credential lives in.
// Implementations must apply each Upsert and Delete as a single operation so a
// reader never sees one half of a token pair.
type Repo interface {
	// Get returns errors.ErrNotFound when the key is absent
	Get(key string) (string, error)

	// Upsert writes every entry of values together. An empty value removes the key.
	Upsert(values map[string]string) error

	// Delete removes the keys together. Missing keys are not an error.
	Delete(keys ...string) error
}
