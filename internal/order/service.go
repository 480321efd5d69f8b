package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/cart"
	"github.com/tastebite/storefront/internal/pricing"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOrderPersist means nothing was written: the cart is intact and the
	// checkout can simply be retried.
	ErrOrderPersist = errors.New("failed to persist order")
	// ErrOrderItemsPersist means the order row exists but its items do not.
	// The cart is intact; an operator has to reconcile the dangling order.
	ErrOrderItemsPersist = errors.New("failed to persist order items")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// Authorizer gates staff-facing operations.
type Authorizer interface {
	Authorize(ctx context.Context, ident *auth.Identity) (bool, error)
}

// EventRecorder appends a domain event to the outbox. Recording is
// best-effort: a failure is logged and never fails the operation.
type EventRecorder interface {
	Record(ctx context.Context, aggregateID, eventType string, payload any) error
}

type Service interface {
	Checkout(ctx context.Context, ident *auth.Identity, delivery DeliveryInfo, paymentMethod string) (*Order, error)
	Advance(ctx context.Context, ident *auth.Identity, orderID uuid.UUID, target Status) (*Order, error)
	GetByID(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, ident *auth.Identity) ([]Order, error)
	ListAll(ctx context.Context, ident *auth.Identity) ([]Order, error)
}

type service struct {
	repo   Repository
	carts  cart.Store
	calc   *pricing.Calculator
	gate   Authorizer
	events EventRecorder
}

func NewService(repo Repository, carts cart.Store, calc *pricing.Calculator, gate Authorizer, events EventRecorder) Service {
	return &service{
		repo:   repo,
		carts:  carts,
		calc:   calc,
		gate:   gate,
		events: events,
	}
}

// Checkout converts the caller's cart into a persisted order. The order row
// and its items are two sequential writes, not one transaction; a failure
// between them is surfaced distinctly so the caller can tell "retry freely"
// from "order exists without items". The cart is cleared only after both
// writes succeed, so the user never has to re-enter items to retry. Checkout
// is not idempotent: callers must prevent duplicate submission themselves.
func (s *service) Checkout(ctx context.Context, ident *auth.Identity, delivery DeliveryInfo, paymentMethod string) (*Order, error) {
	if ident == nil {
		return nil, auth.ErrUnauthenticated
	}

	snapshot, err := s.carts.Get(ctx, ident.UserID.String())
	if err != nil && !errors.Is(err, cart.ErrNotFound) {
		return nil, fmt.Errorf("service: failed to read cart: %w", err)
	}
	if len(snapshot.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]Item, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		menuItemID, err := uuid.FromString(line.ID)
		if err != nil {
			return nil, fmt.Errorf("service: cart line %q has an invalid menu item id: %w", line.ID, err)
		}
		items = append(items, Item{
			MenuItemID: menuItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
	}

	quote := s.calc.Quote(snapshot.Total)

	ord := &Order{
		UserID:        ident.UserID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		PaymentMethod: paymentMethod,
		TotalAmount:   quote.GrandTotal,
		Delivery:      delivery,
	}

	if err := s.repo.CreateOrder(ctx, ord); err != nil {
		log.Error().Err(err).Stringer("user_id", ident.UserID).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: %w: %v", ErrOrderPersist, err)
	}

	if err := s.repo.CreateOrderItems(ctx, ord.ID, items); err != nil {
		// The order row is now dangling without items. Surface it loudly so
		// an operator can reconcile instead of silently re-charging.
		log.Error().Err(err).Stringer("order_id", ord.ID).Msg("service: order persisted without items")
		return nil, fmt.Errorf("service: %w: %v", ErrOrderItemsPersist, err)
	}
	ord.Items = items

	if err := s.carts.Delete(ctx, ident.UserID.String()); err != nil {
		// The order is committed either way; a stale cart is an annoyance,
		// not a checkout failure.
		log.Warn().Err(err).Stringer("order_id", ord.ID).Msg("service: failed to clear cart after checkout")
	}

	s.record(ctx, ord.ID, "order.created", map[string]any{
		"order_id":     ord.ID,
		"user_id":      ord.UserID,
		"total_amount": ord.TotalAmount,
		"status":       ord.Status,
	})

	log.Info().Stringer("order_id", ord.ID).Stringer("user_id", ord.UserID).Str("total", ord.TotalAmount.StringFixed(2)).Msg("service: order created")

	return ord, nil
}

// Advance moves an order to the target fulfillment status. Every change is
// operator-initiated and gated on the admin flag, which is re-checked here
// on each call. Two staff sessions racing on the same order resolve as
// last-write-wins; there is no optimistic locking.
func (s *service) Advance(ctx context.Context, ident *auth.Identity, orderID uuid.UUID, target Status) (*Order, error) {
	ok, err := s.gate.Authorize(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("service: authorization check failed: %w", err)
	}
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	if !target.Valid() {
		return nil, fmt.Errorf("service: %w: unknown status %q", ErrInvalidTransition, target)
	}

	ord, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to load order for status update: %w", err)
	}

	if !ord.Status.CanTransitionTo(target) {
		log.Warn().
			Stringer("order_id", orderID).
			Str("current_status", string(ord.Status)).
			Str("target_status", string(target)).
			Msg("service: rejected status transition")
		return nil, fmt.Errorf("service: %w: %s -> %s", ErrInvalidTransition, ord.Status, target)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, target); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	previous := ord.Status
	ord.Status = target

	s.record(ctx, ord.ID, "order.status_changed", map[string]any{
		"order_id": ord.ID,
		"from":     previous,
		"to":       target,
	})

	log.Info().Stringer("order_id", orderID).Str("from", string(previous)).Str("to", string(target)).Msg("service: order status updated")

	return ord, nil
}

func (s *service) GetByID(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*Order, error) {
	if ident == nil {
		return nil, auth.ErrUnauthenticated
	}

	ord, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ord.UserID != ident.UserID {
		admin, err := s.gate.Authorize(ctx, ident)
		if err != nil {
			return nil, fmt.Errorf("service: authorization check failed: %w", err)
		}
		if !admin {
			return nil, auth.ErrUnauthorized
		}
	}

	return ord, nil
}

func (s *service) ListByUser(ctx context.Context, ident *auth.Identity) ([]Order, error) {
	if ident == nil {
		return nil, auth.ErrUnauthenticated
	}
	return s.repo.ListByUser(ctx, ident.UserID)
}

func (s *service) ListAll(ctx context.Context, ident *auth.Identity) ([]Order, error) {
	ok, err := s.gate.Authorize(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("service: authorization check failed: %w", err)
	}
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	return s.repo.ListAll(ctx)
}

func (s *service) record(ctx context.Context, aggregateID uuid.UUID, eventType string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(ctx, aggregateID.String(), eventType, payload); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Stringer("aggregate_id", aggregateID).Msg("service: failed to record outbox event")
	}
}
