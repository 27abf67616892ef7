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
)

type UserFilter struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

type UserRepo interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByFilter(ctx context.Context, f UserFilter, count, page int) ([]models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type userRepo struct {
	db    *gorm.DB
	cache cache.Store
	ttl   time.Duration
}

func NewUserRepo(db *gorm.DB, c cache.Store, ttl time.Duration) UserRepo {
	return &userRepo{db: db, cache: c, ttl: ttl}
}

func userCacheKey(id int64) string { return fmt.Sprintf("user:%d", id) }

// GetByID сначала смотрит в кэш; на промахе читает БД и наполняет кэш.
func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	key := userCacheKey(id)
	if data, ok := r.cache.Get(ctx, key); ok {
		var u models.User
		if err := json.Unmarshal(data, &u); err == nil {
			return &u, nil
		}
		// битый снапшот — выкидываем и идём в БД
		r.cache.Delete(ctx, key)
	}

	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if data, err := json.Marshal(userSnapshot(&u)); err == nil {
		r.cache.Set(ctx, key, data, r.ttl)
	}
	return &u, nil
}

// userSnapshot — снапшот без адресов: кэшируем по значению, не по ссылке.
func userSnapshot(u *models.User) models.User {
	return models.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByFilter(ctx context.Context, f UserFilter, count, page int) ([]models.User, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})

	if f.Username != nil {
		q = q.Where("username = ?", *f.Username)
	}
	if f.Email != nil {
		q = q.Where("email = ?", *f.Email)
	}
	if f.FirstName != nil {
		q = q.Where("first_name = ?", *f.FirstName)
	}
	if f.LastName != nil {
		q = q.Where("last_name = ?", *f.LastName)
	}

	if count <= 0 {
		count = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * count

	// Страница за пределами данных — пустой список, не ошибка
	var list []models.User
	err := q.Order("id ASC").Limit(count).Offset(offset).Find(&list).Error
	return list, err
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// UpdateFields применяет частичное обновление и инвалидирует кэш-запись:
// следующее чтение наполнит её заново.
func (r *userRepo) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return err
	}
	r.cache.Delete(ctx, userCacheKey(id))
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if tx.Error != nil {
		return false, tx.Error
	}
	r.cache.Delete(ctx, userCacheKey(id))
	return tx.RowsAffected > 0, nil
}
