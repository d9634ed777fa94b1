package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (User, error) {
	args := m.Called(ctx, username, email, passwordHash)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindUserByID(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

// countingHasher records how many comparisons ran.
type countingHasher struct {
	BcryptHasher
	compares int
}

func (h *countingHasher) Compare(hash, password string) error {
	h.compares++
	return h.BcryptHasher.Compare(hash, password)
}

// failingHasher fails every Hash call with err.
type failingHasher struct {
	BcryptHasher
	err error
}

func (h failingHasher) Hash(string) (string, error) { return "", h.err }
