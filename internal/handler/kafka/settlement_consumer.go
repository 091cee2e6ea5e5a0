package kafka

import (
	"context"
	"encoding/json"

	segmentio "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"marketplace/internal/app/settlement"
)

type SettlementConsumer struct {
	service settlement.SettlementService
	logger  *zap.Logger
}

func NewSettlementConsumer(s settlement.SettlementService, l *zap.Logger) *SettlementConsumer {
	return &SettlementConsumer{service: s, logger: l}
}

func (c *SettlementConsumer) HandleMessage(ctx context.Context, msg segmentio.Message) error {
	var event settlement.SettlementEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// Malformed messages are dropped, not retried.
		c.logger.Error("Error unmarshalling settlement message",
			zap.Error(err),
			zap.ByteString("raw_message", msg.Value))
		return nil
	}

	c.logger.Info("Received payout settlement",
		zap.String("payout_id", event.PayoutID),
		zap.String("status", event.Status))

	if err := c.service.HandleSettlement(ctx, &event); err != nil {
		c.logger.Error("Error processing payout settlement",
			zap.String("payout_id", event.PayoutID),
			zap.Error(err))
		return err
	}
	return nil
}
