// Package filerepo persists the session credential in a JSON file on disk,
// one profile per API base URL. With a passphrase the file is sealed with
// XChaCha20-Poly1305 under an Argon2id-derived key.
package filerepo

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jrsteele09/go-admin-client/credentials"
	"github.com/jrsteele09/go-admin-client/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltLength = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var (
	ErrPassphraseRequired = pkgerrors.New("credentials file is encrypted; passphrase required")
	ErrDecrypt            = pkgerrors.New("cannot decrypt credentials file")
)

var _ credentials.Repo = (*FileRepo)(nil)

type credsFile struct {
	Profiles map[string]map[string]string `json:"profiles"`
}

type sealedFile struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

type FileRepo struct {
	path       string
	profile    string
	passphrase []byte
	mu         sync.Mutex
}

type Option func(*FileRepo)

// WithPassphrase encrypts the file at rest
func WithPassphrase(passphrase string) Option {
	return func(r *FileRepo) {
		if passphrase != "" {
			r.passphrase = []byte(passphrase)
		}
	}
}

// New returns a repo for the profile (normally the API base URL) stored in path
func New(path, profile string, options ...Option) (*FileRepo, error) {
	if path == "" {
		return nil, pkgerrors.New("[filerepo New] path is required")
	}
	profile = strings.TrimRight(profile, "/")
	if profile == "" {
		return nil, pkgerrors.New("[filerepo New] profile is required")
	}
	r := &FileRepo{path: path, profile: profile}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

func (r *FileRepo) Get(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cf, err := r.load()
	if err != nil {
		return "", err
	}
	v, ok := cf.Profiles[r.profile][key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (r *FileRepo) Upsert(values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cf, err := r.load()
	if err != nil {
		return err
	}
	p := cf.Profiles[r.profile]
	if p == nil {
		p = make(map[string]string)
	}
	for k, v := range values {
		if v == "" {
			delete(p, k)
			continue
		}
		p[k] = v
	}
	cf.set(r.profile, p)
	return r.save(cf)
}

func (r *FileRepo) Delete(keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cf, err := r.load()
	if err != nil {
		return err
	}
	p, ok := cf.Profiles[r.profile]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(p, k)
	}
	cf.set(r.profile, p)
	return r.save(cf)
}

// Profiles lists the base URLs that have stored credentials
func (r *FileRepo) Profiles() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cf, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(cf.Profiles))
	for k := range cf.Profiles {
		out = append(out, k)
	}
	return out, nil
}

func (cf *credsFile) set(profile string, values map[string]string) {
	if len(values) == 0 {
		delete(cf.Profiles, profile)
		return
	}
	cf.Profiles[profile] = values
}

func (r *FileRepo) load() (*credsFile, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return &credsFile{Profiles: map[string]map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	var probe struct {
		credsFile
		sealedFile
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("decode credentials file: %w", err)
	}

	cf := probe.credsFile
	if len(probe.Ciphertext) > 0 {
		if r.passphrase == nil {
			return nil, ErrPassphraseRequired
		}
		plain, err := r.open(probe.sealedFile)
		if err != nil {
			return nil, err
		}
		cf = credsFile{}
		if err := json.Unmarshal(plain, &cf); err != nil {
			return nil, fmt.Errorf("decode credentials file: %w", err)
		}
	}
	if cf.Profiles == nil {
		cf.Profiles = map[string]map[string]string{}
	}
	return &cf, nil
}

func (r *FileRepo) save(cf *credsFile) error {
	b, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return err
	}
	if r.passphrase != nil {
		sealed, err := r.seal(b)
		if err != nil {
			return err
		}
		if b, err = json.MarshalIndent(sealed, "", "  "); err != nil {
			return err
		}
	}
	return writeFileAtomic(r.path, b)
}

func (r *FileRepo) seal(plain []byte) (sealedFile, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return sealedFile{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	aead, err := chacha20poly1305.NewX(r.key(salt))
	if err != nil {
		return sealedFile{}, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return sealedFile{}, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return sealedFile{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plain, nil),
	}, nil
}

func (r *FileRepo) open(s sealedFile) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(r.key(s.Salt))
	if err != nil {
		return nil, err
	}
	if len(s.Nonce) != aead.NonceSize() {
		return nil, ErrDecrypt
	}
	plain, err := aead.Open(nil, s.Nonce, s.Ciphertext, nil)
	if err != nil {
		return nil, errors.Join(ErrDecrypt, err)
	}
	return plain, nil
}

func (r *FileRepo) key(salt []byte) []byte {
	return argon2.IDKey(r.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

// writeFileAtomic replaces path in one rename so readers never see a partial file
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
