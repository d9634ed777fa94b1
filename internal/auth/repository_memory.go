package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. Used when no database is
// configured and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
	byName  map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
		byName:  make(map[string]string),
	}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return User{}, ErrDuplicateUser
	}
	if _, ok := r.byName[username]; ok {
		return User{}, ErrDuplicateUser
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	r.byName[username] = u.ID
	return u, nil
}

func (r *MemoryRepository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepository) FindUserByID(ctx context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}
