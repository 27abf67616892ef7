package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/cache"
	"shop-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepo interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	BatchGetByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	// Upsert вставляет продукт с заданным id либо перезаписывает изменяемые поля.
	Upsert(ctx context.Context, p *models.Product) error
	UpdateStock(ctx context.Context, id int64, newQuantity int64) (*models.Product, error)
	// DecrementStock атомарно списывает qty, если остатка хватает.
	// false — остатка не хватило (ни одна строка не изменена).
	DecrementStock(ctx context.Context, id int64, qty int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// RefreshCache перечитывает строку из БД и кладёт свежий снапшот в кэш.
	RefreshCache(ctx context.Context, id int64)
}

type productRepo struct {
	db    *gorm.DB
	cache cache.Store
	ttl   time.Duration
}

func NewProductRepo(db *gorm.DB, c cache.Store, ttl time.Duration) ProductRepo {
	return &productRepo{db: db, cache: c, ttl: ttl}
}

func productCacheKey(id int64) string { return fmt.Sprintf("product:%d", id) }

func (r *productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	key := productCacheKey(id)
	if data, ok := r.cache.Get(ctx, key); ok {
		var p models.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		r.cache.Delete(ctx, key)
	}

	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		r.cache.Set(ctx, key, data, r.ttl)
	}
	return &p, nil
}

func (r *productRepo) GetAll(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *productRepo) BatchGetByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var list []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) Upsert(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "price_cents", "quantity_tovar"}),
	}).Create(p).Error
}

// UpdateStock читает напрямую из БД (мимо кэша, чтобы не множить staleness),
// пишет новый остаток и обновляет кэш свежим снапшотом — значение уже известно,
// refresh дешевле лишнего промаха.
func (r *productRepo) UpdateStock(ctx context.Context, id int64, newQuantity int64) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Update("quantity_tovar", newQuantity).Error; err != nil {
		return nil, err
	}

	p.QuantityTovar = newQuantity
	if data, err := json.Marshal(p); err == nil {
		r.cache.Set(ctx, productCacheKey(id), data, r.ttl)
	}
	return &p, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, id int64, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET quantity_tovar = quantity_tovar - @q
WHERE id = @pid
  AND quantity_tovar >= @q
`, map[string]any{
		"pid": id,
		"q":   qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if tx.Error != nil {
		return false, tx.Error
	}
	r.cache.Delete(ctx, productCacheKey(id))
	return tx.RowsAffected > 0, nil
}

func (r *productRepo) RefreshCache(ctx context.Context, id int64) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		// строки больше нет — чистим кэш, чтобы не отдавать призрака
		r.cache.Delete(ctx, productCacheKey(id))
		return
	}
	if data, err := json.Marshal(p); err == nil {
		r.cache.Set(ctx, productCacheKey(id), data, r.ttl)
	}
}
