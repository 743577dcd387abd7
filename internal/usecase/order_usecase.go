package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"giftbloom/internal/domain/model"
	repo "giftbloom/internal/repository"
	"giftbloom/internal/validator"

	"github.com/shopspring/decimal"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 操作名を付けて500に包む。HTTPErrorはそのまま通す。
func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("failed to %s: %v", op, err))
}

// ID生成（本番はUUID、テストでは固定値）
type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

// 金額計算のルール。税・送料は設定値、プロモは割引率（%）の表。
type PricingRules struct {
	TaxRate         decimal.Decimal
	ShippingFlat    decimal.Decimal
	FreeShippingMin decimal.Decimal
	PromoPercents   map[string]int64
}

func DefaultPromoPercents() map[string]int64 {
	return map[string]int64{
		"SAVE10":  10,
		"BLOOM20": 20,
	}
}

type OrderUsecase struct {
	tx      repo.TransactionManager
	idGen   IDGenerator
	clock   Clock
	pricing PricingRules
}

// DI
func NewOrderUsecase(tx repo.TransactionManager, idGen IDGenerator, clock Clock, pricing PricingRules) *OrderUsecase {
	return &OrderUsecase{tx: tx, idGen: idGen, clock: clock, pricing: pricing}
}

type OrderItemInput struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateOrderInput struct {
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone"`
	BillingAddress  model.Address `json:"billing_address"`
	ShippingAddress model.Address `json:"shipping_address"`
	PaymentMethod   string        `json:"payment_method"`
	Notes           string        `json:"notes"`
	PromoCode       string        `json:"promo_code"`

	Items []OrderItemInput `json:"items"`
}

type OrderTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PromoCode      string          `json:"promo_code,omitempty"`
}

// 小計からの派生額をまとめて出す。
// total = subtotal + tax + shipping - discount の不変条件はここで閉じる。
func (u *OrderUsecase) totalsFromSubtotal(subtotal decimal.Decimal, promoCode string) (OrderTotals, error) {
	discount := decimal.Zero
	code := strings.ToUpper(strings.TrimSpace(promoCode))
	if code != "" {
		pct, ok := u.pricing.PromoPercents[code]
		if !ok {
			return OrderTotals{}, NewHTTPError(http.StatusBadRequest, "invalid promo code")
		}
		discount = subtotal.Mul(decimal.NewFromInt(pct)).
			Div(decimal.NewFromInt(100)).Round(2)
	}

	tax := subtotal.Mul(u.pricing.TaxRate).Round(2)

	shipping := u.pricing.ShippingFlat
	if subtotal.GreaterThanOrEqual(u.pricing.FreeShippingMin) {
		shipping = decimal.Zero
	}

	return OrderTotals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ShippingCost:   shipping,
		DiscountAmount: discount,
		TotalAmount:    subtotal.Add(tax).Add(shipping).Sub(discount),
		PromoCode:      code,
	}, nil
}

// CalculateTotals はカートの中身から合計をプレビューする（保存はしない）。
// 単価はクライアント送信値をそのまま使う。確定時(PlaceOrder)は商品マスタから引き直す。
func (u *OrderUsecase) CalculateTotals(items []OrderItemInput, promoCode string) (OrderTotals, error) {
	if len(items) == 0 {
		return OrderTotals{}, NewHTTPError(http.StatusBadRequest, "items must not be empty")
	}

	subtotal := decimal.Zero
	for _, it := range items {
		if err := validator.ValidateQuantity(it.Quantity); err != nil {
			return OrderTotals{}, NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if it.UnitPrice.IsNegative() {
			return OrderTotals{}, NewHTTPError(http.StatusBadRequest, "unit_price must be >= 0")
		}
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}

	return u.totalsFromSubtotal(subtotal, promoCode)
}

// PlaceOrder は注文を確定する。
// 注文行と明細行は1トランザクションで作成し、途中で失敗したら全部ロールバック。
// 金額はクライアントの申告値を信用せず、商品マスタの価格からサーバー側で再計算する。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, in CreateOrderInput) (model.Order, error) {
	if err := validator.ValidateRequired("customer_name", in.CustomerName, 255); err != nil {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validator.ValidateEmail(in.CustomerEmail); err != nil {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validator.ValidatePaymentMethod(in.PaymentMethod); err != nil {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(in.Items) == 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "order must contain at least one item")
	}
	for _, it := range in.Items {
		if err := validator.ValidateQuantity(it.Quantity); err != nil {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()
		orderID := u.idGen.NewID()

		subtotal := decimal.Zero
		items := make([]model.OrderItem, 0, len(in.Items))

		for _, it := range in.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "unknown product: "+it.ProductID)
			}
			if err != nil {
				return err
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "product not available: "+it.ProductID)
			}

			line := p.Price.Mul(decimal.NewFromInt(it.Quantity))
			items = append(items, model.OrderItem{
				ID:                   u.idGen.NewID(),
				OrderID:              orderID,
				ProductID:            p.ID,
				Quantity:             it.Quantity,
				UnitPrice:            p.Price,
				TotalPrice:           line,
				ProductNameSnapshot:  p.Name,
				ProductSlugSnapshot:  p.Slug,
				ProductImageSnapshot: p.ImageURL,
				CreatedAt:            now,
			})
			subtotal = subtotal.Add(line)
		}

		totals, err := u.totalsFromSubtotal(subtotal, in.PromoCode)
		if err != nil {
			return err
		}

		order := model.Order{
			ID:              orderID,
			CustomerName:    in.CustomerName,
			CustomerEmail:   in.CustomerEmail,
			CustomerPhone:   in.CustomerPhone,
			BillingAddress:  in.BillingAddress,
			ShippingAddress: in.ShippingAddress,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   model.PaymentStatusPending,
			OrderStatus:     model.OrderStatusPending,
			Notes:           in.Notes,
			Subtotal:        totals.Subtotal,
			TaxAmount:       totals.TaxAmount,
			ShippingCost:    totals.ShippingCost,
			DiscountAmount:  totals.DiscountAmount,
			TotalAmount:     totals.TotalAmount,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := r.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return err
		}

		order.Items = items
		out = order
		return nil
	})

	if err != nil {
		return model.Order{}, wrapOp("create order", err)
	}
	return out, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		o.Items = items
		out = o
		return nil
	})

	if err != nil {
		return model.Order{}, wrapOp("get order", err)
	}
	return out, nil
}

type ListOrdersInput struct {
	Page          int
	Limit         int
	Status        string
	CustomerEmail string
	From          *time.Time
	To            *time.Time
}

type OrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *OrderUsecase) ListOrders(ctx context.Context, in ListOrdersInput) (OrderListOutput, error) {
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Status != "" && !model.OrderStatus(in.Status).Valid() {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, repo.OrderListFilter{
			Page:          in.Page,
			Limit:         in.Limit,
			Status:        in.Status,
			CustomerEmail: in.CustomerEmail,
			From:          in.From,
			To:            in.To,
		})
		if err != nil {
			return err
		}

		for i := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, orders[i].ID)
			if err != nil {
				return err
			}
			orders[i].Items = items
		}

		out = OrderListOutput{Items: orders, Total: total, Page: in.Page, Limit: in.Limit}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, wrapOp("list orders", err)
	}
	return out, nil
}

// 許可する遷移だけ並べる。completed/cancelledは終端。
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:    {model.OrderStatusCompleted},
}

func canTransition(from, to model.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type UpdateStatusInput struct {
	Status string
	Notes  *string
}

// UpdateStatus は注文ステータスを更新する。
// 遷移チェックに通った場合だけ部分更新をかける。shippedになる時は追跡番号を発行。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, orderID string, in UpdateStatusInput) (model.Order, error) {
	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		if err != nil {
			return err
		}

		// すでに同じなら何もしない
		if o.OrderStatus == newStatus && in.Notes == nil {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return err
			}
			o.Items = items
			out = o
			return nil
		}

		upd := repo.OrderUpdate{Notes: in.Notes}

		if o.OrderStatus != newStatus {
			if !canTransition(o.OrderStatus, newStatus) {
				return NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("cannot transition order from %s to %s", o.OrderStatus, newStatus))
			}
			upd.OrderStatus = &newStatus

			//発送時に追跡番号が無ければ発行する
			if newStatus == model.OrderStatusShipped && o.TrackingNumber == "" {
				tn := u.newTrackingNumber()
				upd.TrackingNumber = &tn
			}
		}

		updated, err := r.Orders().Update(ctx, orderID, upd)
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		updated.Items = items
		out = updated
		return nil
	})

	if err != nil {
		return model.Order{}, wrapOp("update order status", err)
	}
	return out, nil
}

func (u *OrderUsecase) newTrackingNumber() string {
	raw := strings.ReplaceAll(u.idGen.NewID(), "-", "")
	if len(raw) > 12 {
		raw = raw[:12]
	}
	return "GB-" + strings.ToUpper(raw)
}

// CancelOrder は注文をキャンセルする（pending/processingのみ）。
// 理由はnotesに追記し、支払い済みならrefundedへ落とす。
func (u *OrderUsecase) CancelOrder(ctx context.Context, orderID string, reason string) (model.Order, error) {
	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		if err != nil {
			return err
		}

		if !canTransition(o.OrderStatus, model.OrderStatusCancelled) {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("cannot cancel %s order", o.OrderStatus))
		}

		cancelled := model.OrderStatusCancelled
		upd := repo.OrderUpdate{OrderStatus: &cancelled}

		if reason = strings.TrimSpace(reason); reason != "" {
			notes := o.Notes
			if notes != "" {
				notes += "\n"
			}
			notes += "Cancellation reason: " + reason
			upd.Notes = &notes
		}
		if o.PaymentStatus == model.PaymentStatusPaid {
			refunded := model.PaymentStatusRefunded
			upd.PaymentStatus = &refunded
		}

		updated, err := r.Orders().Update(ctx, orderID, upd)
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		updated.Items = items
		out = updated
		return nil
	})

	if err != nil {
		return model.Order{}, wrapOp("cancel order", err)
	}
	return out, nil
}

// DeleteOrder は明細→注文の順に物理削除する（1トランザクション）。
// 消えたかどうかを返し、存在しなければ404。
func (u *OrderUsecase) DeleteOrder(ctx context.Context, orderID string) error {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
			return err
		}
		deleted, err := r.Orders().Delete(ctx, orderID)
		if err != nil {
			return err
		}
		if !deleted {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		return nil
	})

	return wrapOp("delete order", err)
}

type PaymentInput struct {
	Method string
}

type PaymentResult struct {
	OrderID       string              `json:"order_id"`
	TransactionID string              `json:"transaction_id"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	Amount        decimal.Decimal     `json:"amount"`
}

// ProcessPayment は決済スタブ。実際の決済連携はしない。
// 支払い済みマークを付けて、pendingならprocessingへ進める。
func (u *OrderUsecase) ProcessPayment(ctx context.Context, orderID string, in PaymentInput) (PaymentResult, error) {
	var out PaymentResult

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		if err != nil {
			return err
		}

		if o.PaymentStatus == model.PaymentStatusPaid {
			return NewHTTPError(http.StatusBadRequest, "order is already paid")
		}
		if o.OrderStatus == model.OrderStatusCancelled {
			return NewHTTPError(http.StatusBadRequest, "cannot pay a cancelled order")
		}

		paid := model.PaymentStatusPaid
		upd := repo.OrderUpdate{PaymentStatus: &paid}
		if o.OrderStatus == model.OrderStatusPending {
			processing := model.OrderStatusProcessing
			upd.OrderStatus = &processing
		}

		if _, err := r.Orders().Update(ctx, orderID, upd); err != nil {
			return err
		}

		out = PaymentResult{
			OrderID:       orderID,
			TransactionID: u.idGen.NewID(),
			PaymentStatus: paid,
			Amount:        o.TotalAmount,
		}
		return nil
	})

	if err != nil {
		return PaymentResult{}, wrapOp("process payment", err)
	}
	return out, nil
}

type TrackingEvent struct {
	Status model.OrderStatus `json:"status"`
	At     time.Time         `json:"at"`
}

type TrackingOutput struct {
	OrderID           string            `json:"order_id"`
	OrderStatus       model.OrderStatus `json:"order_status"`
	TrackingNumber    string            `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time        `json:"estimated_delivery,omitempty"`
	History           []TrackingEvent   `json:"history"`
}

// GetTracking は保存済みフィールドから追跡情報を組み立てる。
// 配送業者との連携は無い（注文データから合成するだけ）。
func (u *OrderUsecase) GetTracking(ctx context.Context, orderID string) (TrackingOutput, error) {
	o, err := u.GetOrder(ctx, orderID)
	if err != nil {
		return TrackingOutput{}, err
	}

	out := TrackingOutput{
		OrderID:        o.ID,
		OrderStatus:    o.OrderStatus,
		TrackingNumber: o.TrackingNumber,
		History:        []TrackingEvent{{Status: model.OrderStatusPending, At: o.CreatedAt}},
	}

	if o.OrderStatus != model.OrderStatusPending {
		out.History = append(out.History, TrackingEvent{Status: o.OrderStatus, At: o.UpdatedAt})
	}

	switch o.OrderStatus {
	case model.OrderStatusPending, model.OrderStatusProcessing, model.OrderStatusShipped:
		est := o.CreatedAt.AddDate(0, 0, 5)
		out.EstimatedDelivery = &est
	}

	return out, nil
}

var periodRe = regexp.MustCompile(`^(\d{1,3})d?$`)

// "30d" 形式。省略時は30日。
func parsePeriod(period string) (int, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return 30, nil
	}
	m := periodRe.FindStringSubmatch(period)
	if m == nil {
		return 0, NewHTTPError(http.StatusBadRequest, "invalid period")
	}
	days, err := strconv.Atoi(m[1])
	if err != nil || days < 1 || days > 365 {
		return 0, NewHTTPError(http.StatusBadRequest, "invalid period")
	}
	return days, nil
}

func (u *OrderUsecase) Statistics(ctx context.Context, period string) (repo.OrderStatistics, error) {
	days, err := parsePeriod(period)
	if err != nil {
		return repo.OrderStatistics{}, err
	}

	var out repo.OrderStatistics
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		stats, err := r.Orders().Statistics(ctx, days)
		if err != nil {
			return err
		}
		out = stats
		return nil
	})

	if err != nil {
		return repo.OrderStatistics{}, wrapOp("get order statistics", err)
	}
	return out, nil
}
