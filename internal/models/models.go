package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FirstName string `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string `gorm:"type:varchar(100)" json:"last_name"`

	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"` // каскад на адреса
}

func (User) TableName() string { return "users" }

type Address struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"not null;index" json:"user_id"`
	City   string `gorm:"type:varchar(100);not null" json:"city"`
	Street string `gorm:"type:varchar(200);not null" json:"street"`
}

func (Address) TableName() string { return "addresses" }

type Product struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string `gorm:"type:varchar(200);not null" json:"title"`
	PriceCents int64  `gorm:"not null;default:0" json:"price_cents"`
	// Остаток на складе. CHECK >= 0 добавляется в миграции.
	QuantityTovar int64 `gorm:"not null;default:0" json:"quantity_tovar"`
}

func (Product) TableName() string { return "products" }

type Order struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64     `gorm:"not null;index" json:"user_id"`
	ShippingAddressID int64     `gorm:"not null" json:"shipping_address_id"`
	CreatedAt         time.Time `gorm:"not null;default:now();index" json:"created_at"`

	// Set-семантика: составной PK в order_products схлопывает дубликаты.
	Products []Product `gorm:"many2many:order_products" json:"products"`
}

func (Order) TableName() string { return "orders" }

type OrderReport struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportAt     time.Time `gorm:"type:date;not null;index;uniqueIndex:ux_order_reports_day_order" json:"report_at"`
	OrderID      int64     `gorm:"not null;uniqueIndex:ux_order_reports_day_order" json:"order_id"`
	CountProduct int64     `gorm:"not null" json:"count_product"`
}

func (OrderReport) TableName() string { return "order_reports" }

// ConsumedEvent — журнал обработанных событий из очереди заказов.
// При повторной доставке event_id уже занят и событие пропускается.
type ConsumedEvent struct {
	EventID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConsumedAt time.Time `gorm:"not null;default:now()"`
}

func (ConsumedEvent) TableName() string { return "consumed_events" }
