package outbox

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const Topic = "storefront.orders"

// Writer is the slice of kafka.Writer the poller uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Poller struct {
	repo      Repository
	writer    Writer
	tick      time.Duration
	batchSize int
}

func NewPoller(repo Repository, brokers ...string) *Poller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Poller{
		repo:      repo,
		writer:    w,
		tick:      time.Second,
		batchSize: 100,
	}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) publishPending(ctx context.Context) {
	events, err := p.repo.Unprocessed(ctx, p.batchSize)
	if err != nil {
		log.Error().Err(err).Msg("outbox: failed to fetch unprocessed events")
		return
	}

	for _, ev := range events {
		msg := kafka.Message{
			// Key by aggregate so all events of one order stay ordered.
			Key:   []byte(ev.AggregateID),
			Value: ev.Payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(ev.EventType)},
			},
		}
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			log.Error().Err(err).Int64("event_id", ev.ID).Msg("outbox: failed to publish event")
			continue
		}

		if err := p.repo.MarkProcessed(ctx, ev.ID); err != nil {
			log.Error().Err(err).Int64("event_id", ev.ID).Msg("outbox: failed to mark event processed")
		}
	}
}
