// Package stats is the read model behind the admin dashboard. It only
// aggregates; all writes happen in the order and menu packages.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tastebite/storefront/internal/auth"
)

type RecentOrder struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type Summary struct {
	TotalOrders   int             `json:"total_orders"`
	PendingOrders int             `json:"pending_orders"`
	Revenue       decimal.Decimal `json:"revenue"`
	MenuItems     int             `json:"menu_items"`
	RecentOrders  []RecentOrder   `json:"recent_orders"`
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Summary(ctx context.Context) (*Summary, error) {
	var s Summary

	err := r.db.QueryRowxContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0)
		FROM orders
	`).Scan(&s.TotalOrders, &s.PendingOrders, &s.Revenue)
	if err != nil {
		return nil, fmt.Errorf("stats: failed to aggregate orders: %w", err)
	}

	if err := r.db.GetContext(ctx, &s.MenuItems, `SELECT COUNT(*) FROM menu_items`); err != nil {
		return nil, fmt.Errorf("stats: failed to count menu items: %w", err)
	}

	s.RecentOrders = make([]RecentOrder, 0)
	err = r.db.SelectContext(ctx, &s.RecentOrders, `
		SELECT id, total_amount, status, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("stats: failed to select recent orders: %w", err)
	}

	return &s, nil
}

// Authorizer gates the dashboard.
type Authorizer interface {
	Authorize(ctx context.Context, ident *auth.Identity) (bool, error)
}

type Service struct {
	repo *Repository
	gate Authorizer
}

func NewService(repo *Repository, gate Authorizer) *Service {
	return &Service{repo: repo, gate: gate}
}

func (s *Service) Summary(ctx context.Context, ident *auth.Identity) (*Summary, error) {
	ok, err := s.gate.Authorize(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("stats: authorization check failed: %w", err)
	}
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	return s.repo.Summary(ctx)
}
