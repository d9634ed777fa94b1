package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CleytonSeles/play-fullstack/internal/apperror"
)

const (
	DefaultTokenTTL = 24 * time.Hour

	// InsecureDefaultSecret is used when no secret is configured. Never rely
	// on it outside local development.
	InsecureDefaultSecret = "watchplay_secret_key_replace_in_production"
)

// TokenConfig is the signing key material, built once at start-up.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// UsesInsecureDefault reports whether the config falls back to
// InsecureDefaultSecret.
func (c TokenConfig) UsesInsecureDefault() bool {
	return c.Secret == "" || c.Secret == InsecureDefaultSecret
}

type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(cfg TokenConfig) *TokenCodec {
	secret := cfg.Secret
	if secret == "" {
		secret = InsecureDefaultSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (c *TokenCodec) TTL() time.Duration { return c.ttl }

func (c *TokenCodec) Issue(subjectID, email string) (string, error) {
	now := c.now()
	claims := &TokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature, algorithm and expiry. Every failure is reported
// as the same invalid-token error.
func (c *TokenCodec) Verify(raw string) (Identity, error) {
	const op = "auth.Verify"

	if raw == "" {
		return Identity{}, apperror.InvalidToken(op, errors.New("empty token"))
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Identity{}, apperror.InvalidToken(op, err)
	}
	if !token.Valid {
		return Identity{}, apperror.InvalidToken(op, errors.New("token not valid"))
	}
	if claims.Subject == "" || claims.Email == "" {
		return Identity{}, apperror.InvalidToken(op, errors.New("missing subject or email"))
	}

	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
