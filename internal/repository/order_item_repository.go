package repository

import (
	"context"

	"giftbloom/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error)

	// 注文削除の前に明細を消す（削除件数を返す）
	DeleteByOrderID(ctx context.Context, orderID string) (int64, error)
}
