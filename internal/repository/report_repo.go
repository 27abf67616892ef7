package repository

import (
	"context"
	"time"

	"shop-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepo interface {
	GetByDate(ctx context.Context, reportAt time.Time) ([]models.OrderReport, error)
	// AggregateDay считает количество товаров в каждом заказе, созданном за день.
	AggregateDay(ctx context.Context, day time.Time) ([]models.OrderReport, error)
	BulkCreate(ctx context.Context, rows []models.OrderReport) (int64, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepo(db *gorm.DB) ReportRepo { return &reportRepo{db: db} }

func (r *reportRepo) GetByDate(ctx context.Context, reportAt time.Time) ([]models.OrderReport, error) {
	var rows []models.OrderReport
	err := r.db.WithContext(ctx).
		Where("report_at = ?", reportAt.Format("2006-01-02")).
		Order("order_id ASC").Find(&rows).Error
	return rows, err
}

func (r *reportRepo) AggregateDay(ctx context.Context, day time.Time) ([]models.OrderReport, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	type aggRow struct {
		OrderID      int64
		CountProduct int64
	}

	var agg []aggRow
	err := r.db.WithContext(ctx).Raw(`
SELECT o.id AS order_id, COUNT(op.product_id) AS count_product
FROM orders o
JOIN order_products op ON op.order_id = o.id
WHERE o.created_at >= ? AND o.created_at < ?
GROUP BY o.id
ORDER BY o.id
`, dayStart, dayEnd).Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	rows := make([]models.OrderReport, 0, len(agg))
	for _, a := range agg {
		rows = append(rows, models.OrderReport{
			ReportAt:     dayStart,
			OrderID:      a.OrderID,
			CountProduct: a.CountProduct,
		})
	}
	return rows, nil
}

// BulkCreate идемпотентен: повторный прогон за тот же день не дублирует строки
// благодаря ux_order_reports_day_order.
func (r *reportRepo) BulkCreate(ctx context.Context, rows []models.OrderReport) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	return tx.RowsAffected, tx.Error
}
