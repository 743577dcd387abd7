package usecase

import (
	"context"
	"net/http"
	"testing"

	"giftbloom/internal/domain/model"
	"giftbloom/internal/infra/cartstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// チェックアウト先の差し替え
type fakePlacer struct {
	got      CreateOrderInput
	order    model.Order
	placeErr error
}

func (p *fakePlacer) PlaceOrder(_ context.Context, in CreateOrderInput) (model.Order, error) {
	p.got = in
	if p.placeErr != nil {
		return model.Order{}, p.placeErr
	}
	return p.order, nil
}

func newCartFixture(products ...model.Product) (*CartUsecase, *fakePlacer, *cartstore.Store) {
	store := cartstore.New()
	placer := &fakePlacer{order: model.Order{ID: "o-1", OrderStatus: model.OrderStatusPending}}
	uc := NewCartUsecase(store, newFakeProductRepo(products...), placer)
	return uc, placer, store
}

func TestAddToCartSnapshotsProduct(t *testing.T) {
	uc, _, _ := newCartFixture(roseBouquet())

	view, err := uc.AddToCart(context.Background(), "sess-1", "p-rose", 2)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, "Rose Bouquet", view.Items[0].ProductName)
	assert.Equal(t, "10.00", view.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "20.00", view.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, int64(2), view.Summary.TotalItems)
}

func TestAddToCartMergesQuantities(t *testing.T) {
	uc, _, _ := newCartFixture(roseBouquet())

	_, err := uc.AddToCart(context.Background(), "sess-1", "p-rose", 1)
	require.NoError(t, err)
	view, err := uc.AddToCart(context.Background(), "sess-1", "p-rose", 2)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(3), view.Items[0].Quantity)
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	inactive := roseBouquet()
	inactive.IsActive = false
	uc, _, _ := newCartFixture(inactive)

	_, err := uc.AddToCart(context.Background(), "sess-1", "p-rose", 0)
	requireHTTPError(t, err, http.StatusBadRequest)

	_, err = uc.AddToCart(context.Background(), "sess-1", "p-404", 1)
	he := requireHTTPError(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Message, "unknown product")

	_, err = uc.AddToCart(context.Background(), "sess-1", "p-rose", 1)
	he = requireHTTPError(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Message, "not available")
}

func TestUpdateItemQuantityZeroRemoves(t *testing.T) {
	uc, _, _ := newCartFixture(roseBouquet())

	_, err := uc.AddToCart(context.Background(), "sess-1", "p-rose", 2)
	require.NoError(t, err)

	view := uc.UpdateItemQuantity("sess-1", "p-rose", 0)
	assert.Empty(t, view.Items)
	assert.True(t, view.Summary.IsEmpty)
}

func TestRemoveAndClear(t *testing.T) {
	uc, _, _ := newCartFixture(roseBouquet(), giftCard())

	_, err := uc.AddToCart(context.Background(), "sess-1", "p-rose", 1)
	require.NoError(t, err)
	_, err = uc.AddToCart(context.Background(), "sess-1", "p-card", 1)
	require.NoError(t, err)

	view := uc.RemoveItem("sess-1", "p-rose")
	require.Len(t, view.Items, 1)
	assert.Equal(t, "p-card", view.Items[0].ProductID)

	uc.ClearCart("sess-1")
	assert.True(t, uc.GetCart("sess-1").Summary.IsEmpty)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	uc, _, _ := newCartFixture()

	_, err := uc.Checkout(context.Background(), "sess-1", CheckoutInput{
		CustomerName:  "Hanako Yamada",
		CustomerEmail: "hanako@example.com",
		PaymentMethod: "credit_card",
	})
	he := requireHTTPError(t, err, http.StatusBadRequest)
	assert.Equal(t, "cart is empty", he.Message)
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	uc, placer, _ := newCartFixture(roseBouquet(), giftCard())

	_, err := uc.AddToCart(context.Background(), "sess-1", "p-rose", 2)
	require.NoError(t, err)
	_, err = uc.AddToCart(context.Background(), "sess-1", "p-card", 1)
	require.NoError(t, err)

	order, err := uc.Checkout(context.Background(), "sess-1", CheckoutInput{
		CustomerName:  "Hanako Yamada",
		CustomerEmail: "hanako@example.com",
		PaymentMethod: "credit_card",
		PromoCode:     "SAVE10",
	})
	require.NoError(t, err)
	assert.Equal(t, "o-1", order.ID)

	// カートの中身がそのまま注文入力になる
	assert.Equal(t, "Hanako Yamada", placer.got.CustomerName)
	assert.Equal(t, "SAVE10", placer.got.PromoCode)
	require.Len(t, placer.got.Items, 2)
	assert.Equal(t, "p-rose", placer.got.Items[0].ProductID)
	assert.Equal(t, int64(2), placer.got.Items[0].Quantity)
	assert.Equal(t, "10.00", placer.got.Items[0].UnitPrice.StringFixed(2))

	// 成功したらカートは空
	assert.True(t, uc.GetCart("sess-1").Summary.IsEmpty)
}

func TestCheckoutKeepsCartOnFailure(t *testing.T) {
	uc, placer, _ := newCartFixture(roseBouquet())
	placer.placeErr = NewHTTPError(http.StatusBadRequest, "invalid promo code")

	_, err := uc.AddToCart(context.Background(), "sess-1", "p-rose", 1)
	require.NoError(t, err)

	_, err = uc.Checkout(context.Background(), "sess-1", CheckoutInput{
		CustomerName:  "Hanako Yamada",
		CustomerEmail: "hanako@example.com",
		PaymentMethod: "credit_card",
		PromoCode:     "NOPE",
	})
	requireHTTPError(t, err, http.StatusBadRequest)

	// 失敗時はカートを破棄しない
	assert.False(t, uc.GetCart("sess-1").Summary.IsEmpty)
}

func TestGetCartViewTotals(t *testing.T) {
	uc, _, _ := newCartFixture(roseBouquet(), giftCard())

	_, err := uc.AddToCart(context.Background(), "sess-1", "p-rose", 3)
	require.NoError(t, err)
	_, err = uc.AddToCart(context.Background(), "sess-1", "p-card", 1)
	require.NoError(t, err)

	view := uc.GetCart("sess-1")
	assert.Equal(t, int64(4), view.Summary.TotalItems)
	assert.Equal(t, 2, view.Summary.ItemCount)
	assert.True(t, view.Summary.TotalPrice.Equal(decimal.RequireFromString("55.00")))
	assert.Equal(t, "$55.00", view.Summary.FormattedTotalPrice)
}
