package report_repo

import (
	"context"

	"marketplace/internal/domain"
)

type ReportRepository interface {
	Create(ctx context.Context, q domain.Querier, report *domain.Report) error
	GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Report, error)
	ListUnhandled(ctx context.Context, q domain.Querier, limit, offset int) ([]*domain.Report, error)
	Resolve(ctx context.Context, q domain.Querier, id, resolution string) error
}
