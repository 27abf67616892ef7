package repository

import (
	"time"

	"shop-service/internal/cache"

	"gorm.io/gorm"
)

type Repository struct {
	DB       *gorm.DB
	Users    UserRepo
	Products ProductRepo
	Orders   OrderRepo
	Reports  ReportRepo
	Events   EventRepo

	cache    cache.Store
	cacheTTL time.Duration
}

func buildRepository(db *gorm.DB, c cache.Store, ttl time.Duration) *Repository {
	return &Repository{
		DB:       db,
		Users:    NewUserRepo(db, c, ttl),
		Products: NewProductRepo(db, c, ttl),
		Orders:   NewOrderRepo(db),
		Reports:  NewReportRepo(db),
		Events:   NewEventRepo(db),
		cache:    c,
		cacheTTL: ttl,
	}
}

func New(db *gorm.DB, c cache.Store, ttl time.Duration) *Repository {
	return buildRepository(db, c, ttl)
}

// Глобальная транзакция на весь набор репо. Кэш остаётся тем же инстансом:
// записи в кэш внутри fn-а не допускаются, обновлять кэш — после коммита.
func (r *Repository) WithTx(fn func(tx *Repository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx, r.cache, r.cacheTTL))
	})
}
