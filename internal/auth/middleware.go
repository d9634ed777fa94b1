package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/httputil"
)

type ctxIdentityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey{}).(Identity)
	return id, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware rejects requests without a valid bearer token and stores the
// verified Identity in the request context.
func Middleware(codec *TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				httputil.WriteError(w, nil, apperror.InvalidToken("auth.Middleware", errors.New("missing bearer token")))
				return
			}
			id, err := codec.Verify(raw)
			if err != nil {
				httputil.WriteError(w, nil, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
