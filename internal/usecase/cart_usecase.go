package usecase

import (
	"context"
	"errors"
	"net/http"

	"giftbloom/internal/domain/model"
	"giftbloom/internal/infra/cartstore"
	repo "giftbloom/internal/repository"

	"github.com/shopspring/decimal"
)

// チェックアウトで注文確定を頼む先（テストでは差し替える）
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in CreateOrderInput) (model.Order, error)
}

// CartUsecase は /cart の業務ロジック。
// カートはセッション単位・メモリ保持で、DBには入れない。
type CartUsecase struct {
	store       *cartstore.Store
	productRepo repo.ProductRepository
	placer      OrderPlacer
}

// DI
func NewCartUsecase(store *cartstore.Store, productRepo repo.ProductRepository, placer OrderPlacer) *CartUsecase {
	return &CartUsecase{store: store, productRepo: productRepo, placer: placer}
}

type CartItemView struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type CartView struct {
	Items   []CartItemView    `json:"items"`
	Summary model.CartSummary `json:"summary"`
}

func toCartView(c model.Cart) CartView {
	items := make([]CartItemView, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItemView{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			TotalPrice:  it.TotalPrice(),
		})
	}
	return CartView{Items: items, Summary: c.Summary()}
}

func (u *CartUsecase) GetCart(sessionID string) CartView {
	return toCartView(u.store.Get(sessionID))
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 追加時点の商品名・価格をスナップショットする。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, productID string, qty int64) (CartView, error) {
	if qty < 1 {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "unknown product: "+productID)
	}
	if err != nil {
		return CartView{}, wrapOp("add to cart", err)
	}
	if !p.IsActive {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "product not available: "+productID)
	}

	cart := u.store.Mutate(sessionID, func(c *model.Cart) {
		c.AddItem(p, qty)
	})
	return toCartView(cart), nil
}

// 数量変更。0以下は削除扱い。カートに無い商品は黙って無視する。
func (u *CartUsecase) UpdateItemQuantity(sessionID string, productID string, qty int64) CartView {
	cart := u.store.Mutate(sessionID, func(c *model.Cart) {
		c.UpdateQuantity(productID, qty)
	})
	return toCartView(cart)
}

func (u *CartUsecase) RemoveItem(sessionID string, productID string) CartView {
	cart := u.store.Mutate(sessionID, func(c *model.Cart) {
		c.RemoveItem(productID)
	})
	return toCartView(cart)
}

func (u *CartUsecase) ClearCart(sessionID string) {
	u.store.Clear(sessionID)
}

type CheckoutInput struct {
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone"`
	BillingAddress  model.Address `json:"billing_address"`
	ShippingAddress model.Address `json:"shipping_address"`
	PaymentMethod   string        `json:"payment_method"`
	Notes           string        `json:"notes"`
	PromoCode       string        `json:"promo_code"`
}

// Checkout はカートの中身で注文を確定し、成功したらカートを破棄する。
func (u *CartUsecase) Checkout(ctx context.Context, sessionID string, in CheckoutInput) (model.Order, error) {
	cart := u.store.Get(sessionID)
	if cart.IsEmpty() {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	items := make([]OrderItemInput, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	order, err := u.placer.PlaceOrder(ctx, CreateOrderInput{
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		BillingAddress:  in.BillingAddress,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
		PromoCode:       in.PromoCode,
		Items:           items,
	})
	if err != nil {
		return model.Order{}, err
	}

	//注文できたらカートは空にする
	u.store.Clear(sessionID)

	return order, nil
}
