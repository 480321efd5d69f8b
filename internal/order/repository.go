package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("order not found")

// Repository persists orders. CreateOrder and CreateOrderItems are
// deliberately separate calls with no shared transaction: the checkout
// reports a failure between them as a distinct error instead of hiding the
// partial write.
type Repository interface {
	CreateOrder(ctx context.Context, ord *Order) error
	CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateOrder(ctx context.Context, ord *Order) error {
	if ord.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", err)
		}
		ord.ID = id
	}

	now := time.Now().UTC()
	ord.CreatedAt = now
	ord.UpdatedAt = now

	query := `
		INSERT INTO orders (id, user_id, status, payment_status, payment_method, total_amount,
			delivery_full_name, delivery_email, delivery_phone, delivery_address, delivery_city, delivery_zip,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		ord.ID,
		ord.UserID,
		string(ord.Status),
		string(ord.PaymentStatus),
		ord.PaymentMethod,
		ord.TotalAmount,
		ord.Delivery.FullName,
		ord.Delivery.Email,
		ord.Delivery.Phone,
		ord.Delivery.Address,
		ord.Delivery.City,
		ord.Delivery.Zip,
		ord.CreatedAt,
		ord.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	return nil
}

func (r *postgresRepository) CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []Item) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("repository: failed to rollback order items transaction")
			}
		}
	}()

	query := `
		INSERT INTO order_items (id, order_id, menu_item_id, name, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range items {
		item := &items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			return err
		}
		item.ID = itemID
		item.OrderID = orderID
		item.CreatedAt = time.Now().UTC()

		_, err = tx.Exec(ctx, query,
			item.ID,
			item.OrderID,
			item.MenuItemID,
			item.Name,
			item.Quantity,
			item.UnitPrice,
			item.CreatedAt,
		)
		if err != nil {
			err = fmt.Errorf("repository: failed to insert order item for order %s: %w", orderID, err)
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("repository: failed to commit order items for order %s: %w", orderID, err)
		return err
	}

	return nil
}

const orderColumns = `id, user_id, status, payment_status, payment_method, total_amount,
	delivery_full_name, delivery_email, delivery_phone, delivery_address, delivery_city, delivery_zip,
	created_at, updated_at`

func scanOrder(row pgx.Row, ord *Order) error {
	return row.Scan(
		&ord.ID,
		&ord.UserID,
		&ord.Status,
		&ord.PaymentStatus,
		&ord.PaymentMethod,
		&ord.TotalAmount,
		&ord.Delivery.FullName,
		&ord.Delivery.Email,
		&ord.Delivery.Phone,
		&ord.Delivery.Address,
		&ord.Delivery.City,
		&ord.Delivery.Zip,
		&ord.CreatedAt,
		&ord.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var ord Order
	if err := scanOrder(r.db.QueryRow(ctx, query, id), &ord); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order %s: %w", id, err)
	}

	items, err := r.itemsForOrders(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	ord.Items = items[id]
	if ord.Items == nil {
		ord.Items = []Item{}
	}

	return &ord, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	return r.collectOrders(ctx, rows)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	return r.collectOrders(ctx, rows)
}

func (r *postgresRepository) collectOrders(ctx context.Context, rows pgx.Rows) ([]Order, error) {
	orders := make([]Order, 0)
	var ids []uuid.UUID
	for rows.Next() {
		var ord Order
		if err := scanOrder(rows, &ord); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		ord.Items = []Item{}
		orders = append(orders, ord)
		ids = append(ids, ord.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.itemsForOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if items, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].Items = items
		}
	}

	return orders, nil
}

func (r *postgresRepository) itemsForOrders(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]Item, error) {
	query := `
		SELECT id, order_id, menu_item_id, name, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[uuid.UUID][]Item)
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.MenuItemID,
			&item.Name,
			&item.Quantity,
			&item.UnitPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	return itemsByOrder, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update status for order %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
