package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketplace/internal/domain"
)

type fakeOutboxStore struct {
	pending []domain.OutboxMessage
	sent    []string
	failed  []string
}

func (f *fakeOutboxStore) CreateMessage(_ context.Context, _ domain.Querier, msg *domain.OutboxMessage) error {
	f.pending = append(f.pending, *msg)
	return nil
}

func (f *fakeOutboxStore) GetPendingMessages(_ context.Context, _ domain.Querier, limit int) ([]domain.OutboxMessage, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxStore) MarkMessageSent(_ context.Context, _ domain.Querier, id string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutboxStore) MarkMessagesFailed(_ context.Context, _ domain.Querier, ids []string) error {
	f.failed = append(f.failed, ids...)
	return nil
}

type fakeProducer struct {
	produced  []string
	failTopic string
}

func (f *fakeProducer) Produce(_ context.Context, topic string, key, _ []byte) error {
	if topic == f.failTopic {
		return errors.New("broker unreachable")
	}
	f.produced = append(f.produced, string(key))
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func pendingMessage(id, topic string, createdAt time.Time) domain.OutboxMessage {
	return domain.OutboxMessage{
		ID:        id,
		Topic:     topic,
		Key:       id,
		Payload:   []byte(`{}`),
		Status:    domain.OutboxStatusPending,
		CreatedAt: createdAt,
	}
}

func TestProcessorPublishesPendingMessages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	store := &fakeOutboxStore{pending: []domain.OutboxMessage{
		pendingMessage("m1", "payment_events", time.Now()),
		pendingMessage("m2", "payment_events", time.Now()),
	}}
	producer := &fakeProducer{}

	p := NewProcessor(db, store, producer, time.Second, time.Second, zap.NewNop())
	p.processMessages(context.Background())

	assert.Equal(t, []string{"m1", "m2"}, producer.produced)
	assert.Equal(t, []string{"m1", "m2"}, store.sent)
	assert.Empty(t, store.failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessorRetriesFreshFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	store := &fakeOutboxStore{pending: []domain.OutboxMessage{
		pendingMessage("m1", "payment_events", time.Now()),
	}}
	producer := &fakeProducer{failTopic: "payment_events"}

	p := NewProcessor(db, store, producer, time.Second, time.Second, zap.NewNop())
	p.processMessages(context.Background())

	// Still pending: retried on the next tick, not abandoned.
	assert.Empty(t, store.sent)
	assert.Empty(t, store.failed)
}

func TestProcessorGivesUpOnStaleFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	stale := pendingMessage("m-stale", "payment_events", time.Now().Add(-2*giveUpAfter))
	fresh := pendingMessage("m-fresh", "payment_events", time.Now())
	store := &fakeOutboxStore{pending: []domain.OutboxMessage{stale, fresh}}
	producer := &fakeProducer{failTopic: "payment_events"}

	p := NewProcessor(db, store, producer, time.Second, time.Second, zap.NewNop())
	p.processMessages(context.Background())

	assert.Equal(t, []string{"m-stale"}, store.failed)
	assert.Empty(t, store.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
