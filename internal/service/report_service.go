package service

import (
	"context"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/repository"

	"go.uber.org/zap"
)

type ReportService interface {
	GetByDate(ctx context.Context, reportAt time.Time) ([]models.OrderReport, error)
	// BuildDailyReport агрегирует заказы за день в order_reports.
	// Повторный запуск за тот же день строк не дублирует.
	BuildDailyReport(ctx context.Context, day time.Time) (int64, error)
}

var _ ReportService = (*reportService)(nil)

type reportService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReportService(repo *repository.Repository, log *zap.Logger) *reportService {
	return &reportService{repo: repo, log: log}
}

func (s *reportService) GetByDate(ctx context.Context, reportAt time.Time) ([]models.OrderReport, error) {
	return s.repo.Reports.GetByDate(ctx, reportAt)
}

func (s *reportService) BuildDailyReport(ctx context.Context, day time.Time) (int64, error) {
	rows, err := s.repo.Reports.AggregateDay(ctx, day)
	if err != nil {
		return 0, err
	}

	created, err := s.repo.Reports.BulkCreate(ctx, rows)
	if err != nil {
		return 0, err
	}

	s.log.Info("daily report built",
		zap.String("day", day.Format("2006-01-02")),
		zap.Int("orders", len(rows)),
		zap.Int64("rows_created", created))
	return created, nil
}
