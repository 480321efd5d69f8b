package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	RecordFunc        func(ctx context.Context, aggregateID, eventType string, payload any) error
	UnprocessedFunc   func(ctx context.Context, limit int) ([]Event, error)
	MarkProcessedFunc func(ctx context.Context, id int64) error
}

func (m *mockRepository) Record(ctx context.Context, aggregateID, eventType string, payload any) error {
	return m.RecordFunc(ctx, aggregateID, eventType, payload)
}

func (m *mockRepository) Unprocessed(ctx context.Context, limit int) ([]Event, error) {
	return m.UnprocessedFunc(ctx, limit)
}

func (m *mockRepository) MarkProcessed(ctx context.Context, id int64) error {
	return m.MarkProcessedFunc(ctx, id)
}

type mockWriter struct {
	messages []kafka.Message
	err      error
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func pendingEvents() []Event {
	return []Event{
		{ID: 1, AggregateID: "order-1", EventType: "order.created", Payload: []byte(`{"order_id":"order-1"}`)},
		{ID: 2, AggregateID: "order-1", EventType: "order.status_changed", Payload: []byte(`{"to":"preparing"}`)},
	}
}

func TestPoller_PublishPending(t *testing.T) {
	var marked []int64
	repo := &mockRepository{
		UnprocessedFunc: func(_ context.Context, limit int) ([]Event, error) {
			assert.Equal(t, 2, limit)
			return pendingEvents(), nil
		},
		MarkProcessedFunc: func(_ context.Context, id int64) error {
			marked = append(marked, id)
			return nil
		},
	}
	writer := &mockWriter{}
	p := &Poller{repo: repo, writer: writer, tick: time.Second, batchSize: 2}

	p.publishPending(context.Background())

	require.Len(t, writer.messages, 2)
	assert.Equal(t, []byte("order-1"), writer.messages[0].Key)
	assert.Equal(t, []byte(`{"order_id":"order-1"}`), writer.messages[0].Value)
	require.Len(t, writer.messages[0].Headers, 1)
	assert.Equal(t, "event_type", writer.messages[0].Headers[0].Key)
	assert.Equal(t, []byte("order.created"), writer.messages[0].Headers[0].Value)

	assert.Equal(t, []int64{1, 2}, marked)
}

func TestPoller_PublishFailureLeavesEventsPending(t *testing.T) {
	repo := &mockRepository{
		UnprocessedFunc: func(context.Context, int) ([]Event, error) {
			return pendingEvents(), nil
		},
		MarkProcessedFunc: func(_ context.Context, id int64) error {
			t.Fatalf("event %d must stay pending after a publish failure", id)
			return nil
		},
	}
	writer := &mockWriter{err: errors.New("broker unreachable")}
	p := &Poller{repo: repo, writer: writer, tick: time.Second, batchSize: 100}

	p.publishPending(context.Background())
}

func TestPoller_FetchFailureIsSwallowed(t *testing.T) {
	repo := &mockRepository{
		UnprocessedFunc: func(context.Context, int) ([]Event, error) {
			return nil, errors.New("connection refused")
		},
	}
	p := &Poller{repo: repo, writer: &mockWriter{}, tick: time.Second, batchSize: 100}

	// Must not panic or touch the writer; the next tick retries.
	p.publishPending(context.Background())
}

func TestPoller_RunStopsOnContextCancel(t *testing.T) {
	repo := &mockRepository{
		UnprocessedFunc: func(context.Context, int) ([]Event, error) {
			return []Event{}, nil
		},
	}
	p := &Poller{repo: repo, writer: &mockWriter{}, tick: time.Millisecond, batchSize: 100}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
