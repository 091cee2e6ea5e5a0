package payment

import (
	"context"
	"fmt"

	"marketplace/internal/domain"
	"marketplace/internal/util"
)

// demoProvider confirms payments with a direct client call instead of a
// gateway signature. Used when gateway credentials are absent or the
// gateway is unreachable at checkout.
type demoProvider struct{}

func NewDemoProvider() Provider {
	return &demoProvider{}
}

func (p *demoProvider) Mode() domain.PaymentMode {
	return domain.PaymentModeDemo
}

func (p *demoProvider) CreateOrder(_ context.Context, amount int64, currency, _ string) (*GatewayOrder, error) {
	return &GatewayOrder{
		ID:       fmt.Sprintf("demo_%s", util.GenerateUUID()),
		Amount:   amount,
		Currency: currency,
	}, nil
}

func (p *demoProvider) VerifySignature(_, _, _ string) error {
	return nil
}
