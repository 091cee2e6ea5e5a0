package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"marketplace/internal/domain"
	"marketplace/internal/repository/outbox_repo"
)

type pgOutboxRepository struct{}

func NewOutboxRepository() outbox_repo.OutboxRepository {
	return &pgOutboxRepository{}
}

func (r *pgOutboxRepository) CreateMessage(ctx context.Context, q domain.Querier, msg *domain.OutboxMessage) error {
	query := `INSERT INTO outbox_messages (id, aggregate_id, aggregate_type, message_type, topic, key_value, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		msg.ID, msg.AggregateID, msg.AggregateType, msg.MessageType,
		msg.Topic, msg.Key, msg.Payload, msg.Status, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

func (r *pgOutboxRepository) GetPendingMessages(ctx context.Context, q domain.Querier, limit int) ([]domain.OutboxMessage, error) {
	query := `SELECT id, aggregate_id, aggregate_type, message_type, topic, key_value, payload, status, created_at, sent_at
		FROM outbox_messages
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED`
	rows, err := q.QueryContext(ctx, query, domain.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.OutboxMessage
	for rows.Next() {
		msg := domain.OutboxMessage{}
		var sentAt sql.NullTime
		err := rows.Scan(&msg.ID, &msg.AggregateID, &msg.AggregateType, &msg.MessageType,
			&msg.Topic, &msg.Key, &msg.Payload, &msg.Status, &msg.CreatedAt, &sentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		if sentAt.Valid {
			msg.SentAt = &sentAt.Time
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}
	return messages, nil
}

func (r *pgOutboxRepository) MarkMessageSent(ctx context.Context, q domain.Querier, id string) error {
	query := `UPDATE outbox_messages SET status = $1, sent_at = $2 WHERE id = $3 AND status = $4`
	_, err := q.ExecContext(ctx, query, domain.OutboxStatusSent, time.Now(), id, domain.OutboxStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message %s as sent: %w", id, err)
	}
	return nil
}

func (r *pgOutboxRepository) MarkMessagesFailed(ctx context.Context, q domain.Querier, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE outbox_messages SET status = $1, sent_at = NULL WHERE id = ANY($2)`
	_, err := q.ExecContext(ctx, query, domain.OutboxStatusFailed, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to mark outbox messages as failed: %w", err)
	}
	return nil
}
