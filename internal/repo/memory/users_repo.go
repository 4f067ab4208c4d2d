package memory

import (
	"context"
	"sync"

	"github.com/nextera/workforce-api/internal/domain/user"
)

// UsersRepo is the in-memory counterpart of the Mongo store. Same contract,
// no external process; tests and local tinkering run against this.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User // keyed by email
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[email]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Insert(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.items[u.Email]

	if exists {
		return user.ErrEmailTaken
	}

	r.items[u.Email] = u

	return nil
}

func (r *UsersRepo) UpdateFields(_ context.Context, email string, changes user.Changes) error {
	if changes.IsEmpty() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[email]

	if !ok {
		return user.ErrNotFound
	}

	if changes.FullName != nil {
		u.FullName = *changes.FullName
	}

	if changes.HashedPassword != nil {
		u.HashedPassword = *changes.HashedPassword
	}

	r.items[email] = u

	return nil
}

func (r *UsersRepo) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[email]

	if !ok {
		return user.ErrNotFound
	}

	delete(r.items, email)

	return nil
}
