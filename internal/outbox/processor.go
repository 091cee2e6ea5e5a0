package outbox

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/infrastructure/kafka"
	"marketplace/internal/repository/outbox_repo"
)

const (
	pollBatchSize = 10

	// giveUpAfter bounds redelivery: a message still failing to produce this
	// long after creation is flipped to FAILED instead of blocking the batch
	// forever.
	giveUpAfter = time.Hour
)

// Processor publishes pending outbox messages to Kafka on a poll ticker.
// Produce happens before the status flip, so a crash between the two
// redelivers the message; consumers treat replays as no-ops.
type Processor struct {
	db           *sql.DB
	outboxRepo   outbox_repo.OutboxRepository
	producer     kafka.Producer
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *zap.Logger
	stopSignal   chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
}

func NewProcessor(
	db *sql.DB,
	outboxRepo outbox_repo.OutboxRepository,
	producer kafka.Producer,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		db:           db,
		outboxRepo:   outboxRepo,
		producer:     producer,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		logger:       logger,
		stopSignal:   make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (p *Processor) Start(ctx context.Context) {
	p.logger.Info("Starting outbox processor...")
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.processMessages(ctx)
			case <-p.stopSignal:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping outbox processor...")
		close(p.stopSignal)
	})
	<-p.done
}

func (p *Processor) processMessages(ctx context.Context) {
	queryCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
	defer cancel()

	tx, err := p.db.BeginTx(queryCtx, nil)
	if err != nil {
		p.logger.Error("Failed to begin outbox transaction", zap.Error(err))
		return
	}
	defer tx.Rollback()

	messages, err := p.outboxRepo.GetPendingMessages(queryCtx, tx, pollBatchSize)
	if err != nil {
		p.logger.Error("Failed to get pending outbox messages", zap.Error(err))
		return
	}
	if len(messages) == 0 {
		return
	}

	p.logger.Debug("Found pending outbox messages", zap.Int("count", len(messages)))

	var failed []string
	for _, msg := range messages {
		if err := p.producer.Produce(ctx, msg.Topic, []byte(msg.Key), msg.Payload); err != nil {
			p.logger.Error("Failed to produce outbox message",
				zap.String("message_id", msg.ID),
				zap.String("topic", msg.Topic),
				zap.Error(err))
			if time.Since(msg.CreatedAt) > giveUpAfter {
				failed = append(failed, msg.ID)
			}
			continue
		}
		if err := p.outboxRepo.MarkMessageSent(queryCtx, tx, msg.ID); err != nil {
			p.logger.Error("Failed to mark outbox message as sent",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			return
		}
		p.logger.Info("Outbox message published",
			zap.String("message_id", msg.ID),
			zap.String("topic", msg.Topic),
			zap.String("message_type", msg.MessageType))
	}

	if len(failed) > 0 {
		if err := p.outboxRepo.MarkMessagesFailed(queryCtx, tx, failed); err != nil {
			p.logger.Error("Failed to mark outbox messages as failed", zap.Error(err))
			return
		}
		p.logger.Warn("Gave up on undeliverable outbox messages", zap.Strings("message_ids", failed))
	}

	if err := tx.Commit(); err != nil {
		p.logger.Error("Failed to commit outbox transaction", zap.Error(err))
	}
}
