package reports

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/domain"
	"marketplace/internal/repository/report_repo"
	"marketplace/internal/util"
)

type CreateReportRequest struct {
	VendorID  string `json:"vendor_id"`
	ListingID string `json:"listing_id,omitempty"`
	Reason    string `json:"reason"`
	Details   string `json:"details"`
}

type ResolveReportRequest struct {
	Resolution string `json:"resolution"`
}

type ReportResponse struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporter_id"`
	VendorID   string    `json:"vendor_id"`
	ListingID  string    `json:"listing_id,omitempty"`
	Reason     string    `json:"reason"`
	Details    string    `json:"details"`
	Handled    bool      `json:"handled"`
	Resolution string    `json:"resolution,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReportService interface {
	Create(ctx context.Context, reporterID string, req *CreateReportRequest) (*ReportResponse, error)
	ListUnhandled(ctx context.Context, limit, offset int) ([]*ReportResponse, error)
	Resolve(ctx context.Context, reportID, resolution string) error
}

type reportService struct {
	db         *sql.DB
	reportRepo report_repo.ReportRepository
	logger     *zap.Logger
}

func NewReportService(db *sql.DB, reportRepo report_repo.ReportRepository, logger *zap.Logger) ReportService {
	return &reportService{db: db, reportRepo: reportRepo, logger: logger}
}

func (s *reportService) Create(ctx context.Context, reporterID string, req *CreateReportRequest) (*ReportResponse, error) {
	if strings.TrimSpace(req.VendorID) == "" || strings.TrimSpace(req.Reason) == "" {
		return nil, domain.ErrInvalidReport
	}

	now := time.Now()
	report := &domain.Report{
		ID:         util.GenerateUUID(),
		ReporterID: reporterID,
		VendorID:   req.VendorID,
		ListingID:  req.ListingID,
		Reason:     req.Reason,
		Details:    req.Details,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reportRepo.Create(ctx, s.db, report); err != nil {
		s.logger.Error("Failed to create report", zap.String("vendor_id", req.VendorID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Report filed",
		zap.String("report_id", report.ID),
		zap.String("vendor_id", report.VendorID))
	return mapReportToResponse(report), nil
}

func (s *reportService) ListUnhandled(ctx context.Context, limit, offset int) ([]*ReportResponse, error) {
	reportsList, err := s.reportRepo.ListUnhandled(ctx, s.db, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list unhandled reports", zap.Error(err))
		return nil, err
	}
	responses := make([]*ReportResponse, len(reportsList))
	for i, r := range reportsList {
		responses[i] = mapReportToResponse(r)
	}
	return responses, nil
}

func (s *reportService) Resolve(ctx context.Context, reportID, resolution string) error {
	if err := s.reportRepo.Resolve(ctx, s.db, reportID, resolution); err != nil {
		return err
	}
	s.logger.Info("Report resolved", zap.String("report_id", reportID))
	return nil
}

func mapReportToResponse(r *domain.Report) *ReportResponse {
	return &ReportResponse{
		ID:         r.ID,
		ReporterID: r.ReporterID,
		VendorID:   r.VendorID,
		ListingID:  r.ListingID,
		Reason:     r.Reason,
		Details:    r.Details,
		Handled:    r.Handled,
		Resolution: r.Resolution,
		CreatedAt:  r.CreatedAt,
	}
}
