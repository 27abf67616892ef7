package repository

import (
	"context"

	"shop-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo interface {
	// MarkConsumed регистрирует событие; false — событие уже обрабатывалось.
	MarkConsumed(ctx context.Context, eventID uuid.UUID) (bool, error)
}

type eventRepo struct{ db *gorm.DB }

func NewEventRepo(db *gorm.DB) EventRepo { return &eventRepo{db: db} }

func (r *eventRepo) MarkConsumed(ctx context.Context, eventID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ConsumedEvent{EventID: eventID})
	return tx.RowsAffected > 0, tx.Error
}
