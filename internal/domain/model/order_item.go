package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文の明細1行。
// total_price = quantity * unit_price を必ず満たす。
// 商品名などは注文時点のスナップショット（表示用）。
type OrderItem struct {
	ID                   string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID              string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID            string          `gorm:"type:varchar(36);not null;index" json:"product_id"`
	Quantity             int64           `gorm:"not null" json:"quantity"`
	UnitPrice            decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	TotalPrice           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	ProductNameSnapshot  string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductSlugSnapshot  string          `gorm:"type:varchar(255)" json:"product_slug,omitempty"`
	ProductImageSnapshot string          `gorm:"type:varchar(512)" json:"product_image,omitempty"`
	CreatedAt            time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
