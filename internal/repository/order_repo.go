package repository

import (
	"context"
	"errors"

	"shop-service/internal/models"

	"gorm.io/gorm"
)

type OrderRepo interface {
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByUser(ctx context.Context, userID int64) ([]models.Order, error)
	// Create создаёт заказ; неизвестные productIDs молча отбрасываются,
	// дубликаты схлопываются в одно членство. Пустой список — валидный заказ.
	Create(ctx context.Context, userID, shippingAddressID int64, productIDs []int64) (*models.Order, error)
	AddProduct(ctx context.Context, orderID, productID int64) (*models.Order, error)
	RemoveProduct(ctx context.Context, orderID, productID int64) (*models.Order, error)
	Delete(ctx context.Context, orderID int64) error
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Products").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *orderRepo) GetAll(ctx context.Context) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).Preload("Products").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *orderRepo) GetByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).Preload("Products").
		Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *orderRepo) Create(ctx context.Context, userID, shippingAddressID int64, productIDs []int64) (*models.Order, error) {
	ord := &models.Order{
		UserID:            userID,
		ShippingAddressID: shippingAddressID,
	}

	if len(productIDs) > 0 {
		// IN-выборка сама отбрасывает несуществующие id и дубликаты
		var products []models.Product
		if err := r.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			return nil, err
		}
		ord.Products = products
	}

	if err := r.db.WithContext(ctx).Create(ord).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, ord.ID)
}

// AddProduct — no-op, если продукт не существует или уже в заказе.
func (r *orderRepo) AddProduct(ctx context.Context, orderID, productID int64) (*models.Order, error) {
	ord, err := r.GetByID(ctx, orderID)
	if err != nil || ord == nil {
		return ord, err
	}

	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ord, nil
		}
		return nil, err
	}

	for _, m := range ord.Products {
		if m.ID == productID {
			return ord, nil
		}
	}

	if err := r.db.WithContext(ctx).Model(ord).Association("Products").Append(&p); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// RemoveProduct — no-op, если продукт не является членом заказа.
func (r *orderRepo) RemoveProduct(ctx context.Context, orderID, productID int64) (*models.Order, error) {
	ord, err := r.GetByID(ctx, orderID)
	if err != nil || ord == nil {
		return ord, err
	}

	member := false
	for _, m := range ord.Products {
		if m.ID == productID {
			member = true
			break
		}
	}
	if !member {
		return ord, nil
	}

	if err := r.db.WithContext(ctx).Model(ord).Association("Products").Delete(&models.Product{ID: productID}); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// Delete — no-op (не ошибка), если заказа нет.
func (r *orderRepo) Delete(ctx context.Context, orderID int64) error {
	ord, err := r.GetByID(ctx, orderID)
	if err != nil || ord == nil {
		return err
	}

	if err := r.db.WithContext(ctx).Model(ord).Association("Products").Clear(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", orderID).Error
}
