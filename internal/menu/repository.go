package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("menu item not found")

type Repository interface {
	List(ctx context.Context, onlyAvailable bool, category string) ([]Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) List(ctx context.Context, onlyAvailable bool, category string) ([]Item, error) {
	query := `
		SELECT id, name, description, price, category, image_url, available, created_at
		FROM menu_items
		WHERE ($1 = FALSE OR available)
		  AND ($2 = '' OR category = $2)
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, onlyAvailable, category)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.Category,
			&item.ImageURL,
			&item.Available,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating menu items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	query := `
		SELECT id, name, description, price, category, image_url, available, created_at
		FROM menu_items
		WHERE id = $1
	`

	var item Item
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Category,
		&item.ImageURL,
		&item.Available,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select menu item %s: %w", id, err)
	}

	return &item, nil
}

func (r *postgresRepository) Create(ctx context.Context, item *Item) error {
	if item.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate menu item ID: %w", err)
		}
		item.ID = id
	}
	item.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO menu_items (id, name, description, price, category, image_url, available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		item.ID,
		item.Name,
		item.Description,
		item.Price,
		item.Category,
		item.ImageURL,
		item.Available,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert menu item: %w", err)
	}

	return nil
}

func (r *postgresRepository) Update(ctx context.Context, item *Item) error {
	query := `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4, image_url = $5, available = $6
		WHERE id = $7
	`

	cmdTag, err := r.db.Exec(ctx, query,
		item.Name,
		item.Description,
		item.Price,
		item.Category,
		item.ImageURL,
		item.Available,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update menu item %s: %w", item.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete menu item %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE menu_items SET available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return fmt.Errorf("repository: failed to set availability for menu item %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
