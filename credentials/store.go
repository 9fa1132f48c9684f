package credentials

import (
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/users"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Session is the session credential: both tokens and the cached user, treated as one unit
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *users.Summary
}

// Store reads and writes the session credential through a Repo.
// It is the only code that knows the persisted key layout.
type Store struct {
	repo Repo
	log  zerolog.Logger
}

type StoreOption func(*Store)

func WithStoreLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = logger
	}
}

func NewStore(repo Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, pkgerrors.New("[NewStore] repo is required")
	}
	s := &Store{
		repo: repo,
		log:  log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// AccessToken returns the stored access token, or "" when anonymous
func (s *Store) AccessToken() string {
	return s.get(KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or ""
func (s *Store) RefreshToken() string {
	return s.get(KeyRefreshToken)
}

// User returns the cached user summary. It returns errors.ErrNotFound when none is cached.
func (s *Store) User() (*users.Summary, error) {
	raw, err := s.repo.Get(KeyUser)
	if err != nil {
		return nil, err
	}
	var u users.Summary
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &u, nil
}

// Load returns the whole credential. It returns errors.ErrNotFound when there is no access token.
func (s *Store) Load() (*Session, error) {
	access := s.AccessToken()
	if access == "" {
		return nil, errors.ErrNotFound
	}
	session := &Session{
		AccessToken:  access,
		RefreshToken: s.RefreshToken(),
	}
	if u, err := s.User(); err == nil {
		session.User = u
	}
	return session, nil
}

// Save replaces the credential wholesale in a single repo operation.
// A nil user removes the cached summary.
func (s *Store) Save(session Session) error {
	values := map[string]string{
		KeyAccessToken:  session.AccessToken,
		KeyRefreshToken: session.RefreshToken,
		KeyUser:         "",
	}
	if session.User != nil {
		b, err := json.Marshal(session.User)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		values[KeyUser] = string(b)
	}
	if err := s.repo.Upsert(values); err != nil {
		return errors.Wrapf(err, "save session credential")
	}
	return nil
}

// SaveUser refreshes only the cached user summary
func (s *Store) SaveUser(u *users.Summary) error {
	if u == nil {
		return s.repo.Delete(KeyUser)
	}
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.repo.Upsert(map[string]string{KeyUser: string(b)})
}

// Clear removes the credential entirely
func (s *Store) Clear() error {
	if err := s.repo.Delete(AllKeys...); err != nil {
		return errors.Wrapf(err, "clear session credential")
	}
	return nil
}

func (s *Store) get(key string) string {
	v, err := s.repo.Get(key)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to read session credential")
		}
		return ""
	}
	return v
}
