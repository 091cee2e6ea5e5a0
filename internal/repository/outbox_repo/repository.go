package outbox_repo

import (
	"context"

	"marketplace/internal/domain"
)

type OutboxRepository interface {
	CreateMessage(ctx context.Context, q domain.Querier, msg *domain.OutboxMessage) error
	GetPendingMessages(ctx context.Context, q domain.Querier, limit int) ([]domain.OutboxMessage, error)
	MarkMessageSent(ctx context.Context, q domain.Querier, id string) error
	MarkMessagesFailed(ctx context.Context, q domain.Querier, ids []string) error
}
