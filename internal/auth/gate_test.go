package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/profile"
)

type stubProfiles struct {
	profiles map[uuid.UUID]*profile.Profile
	err      error
}

func (s *stubProfiles) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

func TestGate_Authorize(t *testing.T) {
	adminID := uuid.Must(uuid.NewV4())
	customerID := uuid.Must(uuid.NewV4())
	unknownID := uuid.Must(uuid.NewV4())

	profiles := &stubProfiles{profiles: map[uuid.UUID]*profile.Profile{
		adminID:    {ID: adminID, IsAdmin: true},
		customerID: {ID: customerID, IsAdmin: false},
	}}
	gate := auth.NewGate(profiles)

	tests := []struct {
		name  string
		ident *auth.Identity
		want  bool
	}{
		{name: "nil_identity", ident: nil, want: false},
		{name: "admin", ident: &auth.Identity{UserID: adminID}, want: true},
		{name: "non_admin", ident: &auth.Identity{UserID: customerID}, want: false},
		{name: "no_profile_yet", ident: &auth.Identity{UserID: unknownID}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gate.Authorize(context.Background(), tt.ident)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGate_AuthorizeSurfacesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	gate := auth.NewGate(&stubProfiles{err: storeErr})

	ok, err := gate.Authorize(context.Background(), &auth.Identity{UserID: uuid.Must(uuid.NewV4())})

	assert.False(t, ok)
	assert.ErrorIs(t, err, storeErr)
}
