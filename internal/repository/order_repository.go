package repository

import (
	"context"
	"errors"
	"time"

	"giftbloom/internal/domain/model"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// 部分更新で更新対象が1つも無い
var ErrNoUpdateFields = errors.New("no fields to update")

// 一意制約違反など
var ErrConflict = errors.New("conflict")

// 一覧検索の絞り込み。指定があるものだけANDで適用する。
type OrderListFilter struct {
	Page          int
	Limit         int
	Status        string
	CustomerEmail string
	From          *time.Time
	To            *time.Time
}

// 部分更新。nilでないフィールドだけ反映する（ホワイトリスト方式）。
type OrderUpdate struct {
	OrderStatus    *model.OrderStatus
	PaymentStatus  *model.PaymentStatus
	Notes          *string
	TrackingNumber *string
}

func (u OrderUpdate) IsEmpty() bool {
	return u.OrderStatus == nil && u.PaymentStatus == nil &&
		u.Notes == nil && u.TrackingNumber == nil
}

// 直近N日間の集計
type OrderStatistics struct {
	TotalOrders       int64           `json:"total_orders"`
	CompletedOrders   int64           `json:"completed_orders"`
	PendingOrders     int64           `json:"pending_orders"`
	CancelledOrders   int64           `json:"cancelled_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)

	// 新しい順。Limitが指定された時だけoffsetページングする。
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)

	// 空の更新は ErrNoUpdateFields。updated_atは常に更新する。
	Update(ctx context.Context, orderID string, u OrderUpdate) (model.Order, error)

	// 実際に消えたかどうかを返す
	Delete(ctx context.Context, orderID string) (bool, error)

	Statistics(ctx context.Context, days int) (OrderStatistics, error)
}
