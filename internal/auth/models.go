package auth

import (
	"errors"
	"time"

	"github.com/CleytonSeles/play-fullstack/internal/access"
)

// User is the stored account. PasswordHash never leaves this package.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

type Session struct {
	AccessToken string     `json:"access_token"`
	User        PublicUser `json:"user"`
}

// Identity is what a verified token proves about its bearer.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

func (i Identity) Principal() access.Principal {
	return access.Principal{UserID: i.UserID, Email: i.Email}
}

type RegisterInput struct {
	Username string `json:"username" validate:"notblank,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already exists")
)
