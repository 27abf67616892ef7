package dto

import (
	"time"

	"shop-service/internal/models"
)

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type CreateProductRequest struct {
	Title         string `json:"title" binding:"required"`
	PriceCents    int64  `json:"price_cents"`
	QuantityTovar int64  `json:"quantity_tovar"`
}

type UpdateStockRequest struct {
	QuantityTovar int64 `json:"quantity_tovar"`
}

type CreateOrderRequest struct {
	UserID            int64   `json:"user_id" binding:"required"`
	ShippingAddressID int64   `json:"shipping_address_id" binding:"required"`
	ProductIDs        []int64 `json:"product_ids"`
}

type CheckoutItem struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	UserID            int64          `json:"user_id" binding:"required"`
	ShippingAddressID int64          `json:"shipping_address_id" binding:"required"`
	Items             []CheckoutItem `json:"items" binding:"required"`
}

type CheckoutResponse struct {
	Order      models.Order `json:"order"`
	TotalCents int64        `json:"total_cents"`
}

type ReportRow struct {
	ID           int64  `json:"id"`
	ReportAt     string `json:"report_at"`
	OrderID      int64  `json:"order_id"`
	CountProduct int64  `json:"count_product"`
}

func ToReportRow(r models.OrderReport) ReportRow {
	return ReportRow{
		ID:           r.ID,
		ReportAt:     r.ReportAt.Format(time.DateOnly),
		OrderID:      r.OrderID,
		CountProduct: r.CountProduct,
	}
}
