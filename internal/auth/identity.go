// Package auth resolves the calling identity and gates administrative
// operations. Token issuance lives outside this service; only verification
// happens here.
package auth

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrUnauthorized    = errors.New("not authorized")
)

// Identity is an authenticated actor. The admin flag deliberately does not
// live here: it is re-derived from the profile record on every privileged
// call instead of being trusted for the token's lifetime.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type contextKey struct{}

func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, ident)
}

// FromContext returns the request identity, or nil for anonymous callers.
func FromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(contextKey{}).(*Identity)
	return ident
}
