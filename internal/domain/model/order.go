package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// 請求先・配送先住所（ordersにJSONで保存）
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CustomerName    string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerPhone   string          `gorm:"type:varchar(30)" json:"customer_phone,omitempty"`
	BillingAddress  Address         `gorm:"type:jsonb;serializer:json" json:"billing_address"`
	ShippingAddress Address         `gorm:"type:jsonb;serializer:json" json:"shipping_address"`
	PaymentMethod   string          `gorm:"type:varchar(50);not null" json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	OrderStatus     OrderStatus     `gorm:"type:varchar(20);not null;index" json:"order_status"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	TrackingNumber  string          `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"tax_amount"`
	ShippingCost    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"shipping_cost"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"discount_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// 明細は order_items テーブル。注文と一緒に作成・削除する
	Items []OrderItem `gorm:"-" json:"items"`
}

// ステータスとして妥当な値か
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}
