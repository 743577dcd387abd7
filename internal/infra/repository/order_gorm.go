package repository

import (
	"context"
	"errors"
	"time"

	"giftbloom/internal/domain/model"
	repo "giftbloom/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 一意制約違反（23505）かどうか
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) error {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return err
	}
	return nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("order_status = ?", f.Status)
	}

	//customer_email 絞り込み
	if f.CustomerEmail != "" {
		q = q.Where("customer_email = ?", f.CustomerEmail)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	//新しい順。limit指定があるときだけページング
	q = q.Order("created_at desc")
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q = q.Limit(f.Limit).Offset((page - 1) * f.Limit)
	}

	var items []model.Order
	if err := q.Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) Update(ctx context.Context, orderID string, u repo.OrderUpdate) (model.Order, error) {
	if u.IsEmpty() {
		return model.Order{}, repo.ErrNoUpdateFields
	}

	//nilでないフィールドだけSETする
	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if u.OrderStatus != nil {
		fields["order_status"] = *u.OrderStatus
	}
	if u.PaymentStatus != nil {
		fields["payment_status"] = *u.PaymentStatus
	}
	if u.Notes != nil {
		fields["notes"] = *u.Notes
	}
	if u.TrackingNumber != nil {
		fields["tracking_number"] = *u.TrackingNumber
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(fields)

	if res.Error != nil {
		return model.Order{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Order{}, repo.ErrNotFound
	}

	return r.FindByID(ctx, orderID)
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", orderID).Delete(&model.Order{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

type orderStatsRow struct {
	TotalOrders       int64
	CompletedOrders   int64
	PendingOrders     int64
	CancelledOrders   int64
	TotalRevenue      string
	AverageOrderValue string
}

// 直近days日間の件数とsum/avg
func (r *OrderGormRepository) Statistics(ctx context.Context, days int) (repo.OrderStatistics, error) {
	var row orderStatsRow

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_orders,
			COUNT(CASE WHEN order_status = 'completed' THEN 1 END) AS completed_orders,
			COUNT(CASE WHEN order_status = 'pending' THEN 1 END) AS pending_orders,
			COUNT(CASE WHEN order_status = 'cancelled' THEN 1 END) AS cancelled_orders,
			COALESCE(SUM(total_amount), 0)::text AS total_revenue,
			COALESCE(ROUND(AVG(total_amount), 2), 0)::text AS average_order_value
		FROM orders
		WHERE created_at >= NOW() - make_interval(days => ?)`,
		days,
	).Scan(&row).Error
	if err != nil {
		return repo.OrderStatistics{}, err
	}

	stats := repo.OrderStatistics{
		TotalOrders:     row.TotalOrders,
		CompletedOrders: row.CompletedOrders,
		PendingOrders:   row.PendingOrders,
		CancelledOrders: row.CancelledOrders,
	}
	if stats.TotalRevenue, err = parseDecimal(row.TotalRevenue); err != nil {
		return repo.OrderStatistics{}, err
	}
	if stats.AverageOrderValue, err = parseDecimal(row.AverageOrderValue); err != nil {
		return repo.OrderStatistics{}, err
	}
	return stats, nil
}
