// Package outbox stages domain events in Postgres and relays them to Kafka.
// Writers insert rows alongside their state changes; the poller publishes
// unprocessed rows and marks them, so a broker outage delays events instead
// of losing them.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type Repository interface {
	Record(ctx context.Context, aggregateID, eventType string, payload any) error
	Unprocessed(ctx context.Context, limit int) ([]Event, error)
	MarkProcessed(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Record(ctx context.Context, aggregateID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("outbox: failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events_outbox (aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, query, aggregateID, eventType, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("outbox: failed to insert event: %w", err)
	}

	return nil
}

func (r *postgresRepository) Unprocessed(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload, created_at, processed_at
		FROM events_outbox
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("outbox: failed to query unprocessed events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt, &ev.ProcessedAt); err != nil {
			return nil, fmt.Errorf("outbox: failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outbox: error iterating events: %w", err)
	}

	return events, nil
}

func (r *postgresRepository) MarkProcessed(ctx context.Context, id int64) error {
	query := `UPDATE events_outbox SET processed_at = $1 WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("outbox: failed to mark event %d processed: %w", id, err)
	}
	return nil
}
