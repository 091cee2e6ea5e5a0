package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository/report_repo"
)

type pgReportRepository struct{}

func NewReportRepository() report_repo.ReportRepository {
	return &pgReportRepository{}
}

func (r *pgReportRepository) Create(ctx context.Context, q domain.Querier, report *domain.Report) error {
	query := `INSERT INTO reports (id, reporter_id, vendor_id, listing_id, reason, details, handled, resolution, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)`
	_, err := q.ExecContext(ctx, query,
		report.ID, report.ReporterID, report.VendorID, report.ListingID,
		report.Reason, report.Details, report.Handled, report.Resolution,
		report.CreatedAt, report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func scanReport(row interface{ Scan(...any) error }) (*domain.Report, error) {
	rp := &domain.Report{}
	var listingID sql.NullString
	err := row.Scan(&rp.ID, &rp.ReporterID, &rp.VendorID, &listingID,
		&rp.Reason, &rp.Details, &rp.Handled, &rp.Resolution, &rp.CreatedAt, &rp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if listingID.Valid {
		rp.ListingID = listingID.String
	}
	return rp, nil
}

const reportColumns = `id, reporter_id, vendor_id, listing_id, reason, details, handled, resolution, created_at, updated_at`

func (r *pgReportRepository) GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	report, err := scanReport(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report by ID %s: %w", id, err)
	}
	return report, nil
}

func (r *pgReportRepository) ListUnhandled(ctx context.Context, q domain.Querier, limit, offset int) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE NOT handled ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	rows, err := q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query unhandled reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return reports, nil
}

func (r *pgReportRepository) Resolve(ctx context.Context, q domain.Querier, id, resolution string) error {
	query := `UPDATE reports SET handled = TRUE, resolution = $2, updated_at = $3 WHERE id = $1 AND NOT handled`
	res, err := q.ExecContext(ctx, query, id, resolution, time.Now())
	if err != nil {
		return fmt.Errorf("failed to resolve report %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check resolve result: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}
