package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/validation"
)

const msgInvalidCredentials = "invalid credentials"

// Verifier registers accounts and exchanges credentials for sessions.
type Verifier struct {
	repo   Repository
	hasher PasswordHasher
	codec  *TokenCodec
	log    *log.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewVerifier(repo Repository, hasher PasswordHasher, codec *TokenCodec, logger *log.Logger) *Verifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Verifier{
		repo:   repo,
		hasher: hasher,
		codec:  codec,
		log:    logger.With("component", "auth"),
	}
}

func (v *Verifier) Codec() *TokenCodec { return v.codec }

func (v *Verifier) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	const op = "auth.Register"

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	hash, err := v.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.Validation(op, "password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("%s: hash password: %w", op, err)
	}

	user, err := v.repo.CreateUser(ctx, in.Username, in.Email, hash)
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, apperror.Conflict(op, "Username or email already exists")
		}
		return nil, fmt.Errorf("%s: create user: %w", op, err)
	}

	v.log.Info("user registered", "user_id", user.ID)
	return v.session(op, user)
}

// Login runs exactly one hash comparison whether or not the email is known,
// and reports both failures with the same message.
func (v *Verifier) Login(ctx context.Context, in LoginInput) (*Session, error) {
	const op = "auth.Login"

	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	user, err := v.repo.FindUserByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%s: find user: %w", op, err)
		}
		_ = v.hasher.Compare(v.dummy(), in.Password)
		return nil, apperror.Unauthorized(op, msgInvalidCredentials)
	}

	if err := v.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return nil, apperror.Unauthorized(op, msgInvalidCredentials)
	}

	return v.session(op, user)
}

// Me returns the account behind a verified identity.
func (v *Verifier) Me(ctx context.Context, id Identity) (*PublicUser, error) {
	const op = "auth.Me"

	user, err := v.repo.FindUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.NotFound(op, "user not found")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pub := user.Public()
	return &pub, nil
}

func (v *Verifier) session(op string, user User) (*Session, error) {
	token, err := v.codec.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: issue token: %w", op, err)
	}
	return &Session{AccessToken: token, User: user.Public()}, nil
}

// dummy returns a digest produced by the configured hasher so the
// unknown-email path costs the same as a wrong password.
func (v *Verifier) dummy() string {
	v.dummyOnce.Do(func() {
		h, err := v.hasher.Hash("watchplay-dummy-password")
		if err != nil {
			v.log.Warn("could not build dummy password hash", "err", err)
			return
		}
		v.dummyHash = h
	})
	return v.dummyHash
}
