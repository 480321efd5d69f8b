package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("profile not found")

type Repository interface {
	// Ensure returns the profile for the identity, creating a default
	// non-admin row on first sight.
	Ensure(ctx context.Context, id uuid.UUID, email, fullName string) (*Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, upd ContactUpdate) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Ensure(ctx context.Context, id uuid.UUID, email, fullName string) (*Profile, error) {
	existing, err := r.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	query := `
		INSERT INTO profiles (id, email, full_name, is_admin, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
	`
	_, err = r.db.Exec(ctx, query, id, email, fullName, time.Now().UTC())
	if err != nil {
		// Another request for the same identity may have created the row
		// between our select and insert. That row wins.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			log.Debug().Stringer("profile_id", id).Msg("repository: profile created concurrently, reusing")
			return r.GetByID(ctx, id)
		}
		return nil, fmt.Errorf("repository: failed to insert profile %s: %w", id, err)
	}

	return r.GetByID(ctx, id)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `
		SELECT id, email, full_name, phone, address, city, pin, is_admin, created_at
		FROM profiles
		WHERE id = $1
	`

	var p Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Phone,
		&p.Address,
		&p.City,
		&p.Pin,
		&p.IsAdmin,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select profile %s: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, upd ContactUpdate) error {
	query := `
		UPDATE profiles
		SET full_name = $1, phone = $2, address = $3, city = $4, pin = $5
		WHERE id = $6
	`

	cmdTag, err := r.db.Exec(ctx, query, upd.FullName, upd.Phone, upd.Address, upd.City, upd.Pin, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update profile %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
