package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/tastebite/storefront/internal/profile"
)

// ProfileSource is the slice of the profile repository the gate needs.
type ProfileSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

// Gate answers whether an identity may touch administrative state. The
// admin flag is read from the profile record on every call; a revoked
// flag takes effect on the next privileged operation.
type Gate struct {
	profiles ProfileSource
}

func NewGate(profiles ProfileSource) *Gate {
	return &Gate{profiles: profiles}
}

func (g *Gate) Authorize(ctx context.Context, ident *Identity) (bool, error) {
	if ident == nil {
		return false, nil
	}

	p, err := g.profiles.GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("gate: failed to load profile: %w", err)
	}

	return p.IsAdmin, nil
}
