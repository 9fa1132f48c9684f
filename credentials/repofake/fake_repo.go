package fakecredentialsrepo

import (
	"maps"
	"sync"

	"github.com/jrsteele09/go-admin-client/credentials"
	"github.com/jrsteele09/go-admin-client/internal/errors"
)

var _ credentials.Repo = (*FakeRepo)(nil)

// FakeRepo is an in-memory credentials.Repo, the equivalent of browser local storage
type FakeRepo struct {
	values map[string]string
	writes int
	lock   sync.RWMutex
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		values: make(map[string]string),
	}
}

// NewFakeRepoWith seeds the repo, e.g. with an expired token pair
func NewFakeRepoWith(values map[string]string) *FakeRepo {
	r := NewFakeRepo()
	maps.Copy(r.values, values)
	return r
}

func (r *FakeRepo) Get(key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (r *FakeRepo) Upsert(values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for k, v := range values {
		if v == "" {
			delete(r.values, k)
			continue
		}
		r.values[k] = v
	}
	r.writes++
	return nil
}

func (r *FakeRepo) Delete(keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, k := range keys {
		delete(r.values, k)
	}
	r.writes++
	return nil
}

// Snapshot returns a copy of every stored value
func (r *FakeRepo) Snapshot() map[string]string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return maps.Clone(r.values)
}

// Writes counts the Upsert and Delete calls made so far
func (r *FakeRepo) Writes() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.writes
}
