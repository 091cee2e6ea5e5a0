package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"marketplace/internal/domain"
	"marketplace/internal/repository/payment_repo"
)

// SettlementEvent is the payout disposition reported by the settlement rail.
type SettlementEvent struct {
	PayoutID string `json:"payout_id"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

type SettlementService interface {
	// HandleSettlement flips a pending payout to its terminal status.
	// Replayed events and already-settled payouts are no-ops.
	HandleSettlement(ctx context.Context, event *SettlementEvent) error
}

type settlementService struct {
	db          *sql.DB
	paymentRepo payment_repo.PaymentRepository
	logger      *zap.Logger
}

func NewSettlementService(db *sql.DB, paymentRepo payment_repo.PaymentRepository, logger *zap.Logger) SettlementService {
	return &settlementService{db: db, paymentRepo: paymentRepo, logger: logger}
}

func (s *settlementService) HandleSettlement(ctx context.Context, event *SettlementEvent) error {
	var status domain.PayoutStatus
	switch event.Status {
	case "SETTLED", "SUCCESS":
		status = domain.PayoutStatusSettled
	case "FAILED":
		status = domain.PayoutStatusFailed
	default:
		return fmt.Errorf("unknown settlement status: %s", event.Status)
	}

	if err := s.paymentRepo.UpdatePayoutStatus(ctx, s.db, event.PayoutID, status); err != nil {
		if errors.Is(err, domain.ErrPayoutNotFound) {
			s.logger.Warn("Settlement for unknown payout, ignoring",
				zap.String("payout_id", event.PayoutID))
			return nil
		}
		return err
	}

	s.logger.Info("Payout settled",
		zap.String("payout_id", event.PayoutID),
		zap.String("status", string(status)),
		zap.String("reason", event.Reason))
	return nil
}
