package scheduler

import (
	"context"
	"time"

	"shop-service/internal/service"

	"go.uber.org/zap"
)

// Scheduler запускает периодическое построение дневного отчёта по заказам.
type Scheduler struct {
	reports  service.ReportService
	interval time.Duration
	log      *zap.Logger
	stopCh   chan struct{}
}

func NewScheduler(reports service.ReportService, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		reports:  reports,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting report scheduler", zap.Duration("interval", s.interval))
	go s.runDailyReport(ctx)
}

func (s *Scheduler) Stop() {
	s.log.Info("stopping report scheduler")
	close(s.stopCh)
}

func (s *Scheduler) runDailyReport(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// отчёт за прошедшие сутки
			day := time.Now().Add(-s.interval)
			if _, err := s.reports.BuildDailyReport(ctx, day); err != nil {
				s.log.Error("daily report failed", zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("report scheduler stopped")
			return
		case <-ctx.Done():
			s.log.Info("report scheduler cancelled")
			return
		}
	}
}

// RunOnceNow строит отчёт немедленно (для ручного запуска и тестов).
func (s *Scheduler) RunOnceNow(ctx context.Context, day time.Time) error {
	_, err := s.reports.BuildDailyReport(ctx, day)
	return err
}
