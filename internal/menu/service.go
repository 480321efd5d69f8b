package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tastebite/storefront/internal/auth"
)

var ErrNegativePrice = errors.New("menu item price cannot be negative")

// Authorizer decides whether an identity may mutate the menu.
type Authorizer interface {
	Authorize(ctx context.Context, ident *auth.Identity) (bool, error)
}

type Service struct {
	repo Repository
	gate Authorizer
}

func NewService(repo Repository, gate Authorizer) *Service {
	return &Service{repo: repo, gate: gate}
}

// ListAvailable returns the customer-facing menu.
func (s *Service) ListAvailable(ctx context.Context, category string) ([]Item, error) {
	return s.repo.List(ctx, true, category)
}

// ListAll returns every item, including disabled ones. Admin only.
func (s *Service) ListAll(ctx context.Context, ident *auth.Identity) ([]Item, error) {
	if err := s.requireAdmin(ctx, ident); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, false, "")
}

func (s *Service) Create(ctx context.Context, ident *auth.Identity, item *Item) error {
	if err := s.requireAdmin(ctx, ident); err != nil {
		return err
	}
	if item.Price.IsNegative() {
		return ErrNegativePrice
	}

	if err := s.repo.Create(ctx, item); err != nil {
		log.Error().Err(err).Str("name", item.Name).Msg("service: failed to create menu item")
		return fmt.Errorf("service: failed to create menu item: %w", err)
	}
	return nil
}

func (s *Service) Update(ctx context.Context, ident *auth.Identity, item *Item) error {
	if err := s.requireAdmin(ctx, ident); err != nil {
		return err
	}
	if item.Price.IsNegative() {
		return ErrNegativePrice
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("menu_item_id", item.ID).Msg("service: failed to update menu item")
		return fmt.Errorf("service: failed to update menu item: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, ident *auth.Identity, id uuid.UUID) error {
	if err := s.requireAdmin(ctx, ident); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) SetAvailability(ctx context.Context, ident *auth.Identity, id uuid.UUID, available bool) error {
	if err := s.requireAdmin(ctx, ident); err != nil {
		return err
	}
	return s.repo.SetAvailability(ctx, id, available)
}

func (s *Service) requireAdmin(ctx context.Context, ident *auth.Identity) error {
	ok, err := s.gate.Authorize(ctx, ident)
	if err != nil {
		return fmt.Errorf("service: authorization check failed: %w", err)
	}
	if !ok {
		return auth.ErrUnauthorized
	}
	return nil
}
