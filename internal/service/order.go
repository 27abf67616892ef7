package service

import (
	"context"

	"shop-service/internal/models"
)

type OrderItemInput struct {
	ProductID int64
	Quantity  int64
}

type PlaceOrderInput struct {
	UserID            int64
	ShippingAddressID int64
	Items             []OrderItemInput
}

type PlaceOrderResult struct {
	Order      *models.Order
	TotalCents int64
}

type OrderService interface {
	// PlaceOrder — путь с контролем остатков: сперва валидируются все позиции,
	// затем заказ и списания фиксируются одной транзакцией.
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error)

	// CreateOrder — простой путь без проверки остатков (легаси-создание).
	CreateOrder(ctx context.Context, userID, shippingAddressID int64, productIDs []int64) (*models.Order, error)

	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByUser(ctx context.Context, userID int64) ([]models.Order, error)
	AddProduct(ctx context.Context, orderID, productID int64) (*models.Order, error)
	RemoveProduct(ctx context.Context, orderID, productID int64) (*models.Order, error)
	Delete(ctx context.Context, orderID int64) error
}
