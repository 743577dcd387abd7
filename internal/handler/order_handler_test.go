package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"giftbloom/internal/domain/model"
	"giftbloom/internal/repository"
	"giftbloom/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// OrderServiceの差し替え（使うメソッドだけ関数を入れる）
type stubOrderService struct {
	placeOrder      func(ctx context.Context, in usecase.CreateOrderInput) (model.Order, error)
	calculateTotals func(items []usecase.OrderItemInput, promoCode string) (usecase.OrderTotals, error)
	getOrder        func(ctx context.Context, orderID string) (model.Order, error)
	listOrders      func(ctx context.Context, in usecase.ListOrdersInput) (usecase.OrderListOutput, error)
	updateStatus    func(ctx context.Context, orderID string, in usecase.UpdateStatusInput) (model.Order, error)
	cancelOrder     func(ctx context.Context, orderID string, reason string) (model.Order, error)
	deleteOrder     func(ctx context.Context, orderID string) error
	processPayment  func(ctx context.Context, orderID string, in usecase.PaymentInput) (usecase.PaymentResult, error)
	getTracking     func(ctx context.Context, orderID string) (usecase.TrackingOutput, error)
	statistics      func(ctx context.Context, period string) (repository.OrderStatistics, error)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, in usecase.CreateOrderInput) (model.Order, error) {
	return s.placeOrder(ctx, in)
}

func (s *stubOrderService) CalculateTotals(items []usecase.OrderItemInput, promoCode string) (usecase.OrderTotals, error) {
	return s.calculateTotals(items, promoCode)
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	return s.getOrder(ctx, orderID)
}

func (s *stubOrderService) ListOrders(ctx context.Context, in usecase.ListOrdersInput) (usecase.OrderListOutput, error) {
	return s.listOrders(ctx, in)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderID string, in usecase.UpdateStatusInput) (model.Order, error) {
	return s.updateStatus(ctx, orderID, in)
}

func (s *stubOrderService) CancelOrder(ctx context.Context, orderID string, reason string) (model.Order, error) {
	return s.cancelOrder(ctx, orderID, reason)
}

func (s *stubOrderService) DeleteOrder(ctx context.Context, orderID string) error {
	return s.deleteOrder(ctx, orderID)
}

func (s *stubOrderService) ProcessPayment(ctx context.Context, orderID string, in usecase.PaymentInput) (usecase.PaymentResult, error) {
	return s.processPayment(ctx, orderID, in)
}

func (s *stubOrderService) GetTracking(ctx context.Context, orderID string) (usecase.TrackingOutput, error) {
	return s.getTracking(ctx, orderID)
}

func (s *stubOrderService) Statistics(ctx context.Context, period string) (repository.OrderStatistics, error) {
	return s.statistics(ctx, period)
}

func newOrderEcho(svc OrderService) *echo.Echo {
	e := echo.New()
	NewOrderHandler(svc).RegisterRoutes(e.Group("/api"))
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateOrderReturns201Envelope(t *testing.T) {
	svc := &stubOrderService{
		placeOrder: func(_ context.Context, in usecase.CreateOrderInput) (model.Order, error) {
			assert.Equal(t, "Hanako Yamada", in.CustomerName)
			return model.Order{
				ID:          "o-1",
				OrderStatus: model.OrderStatusPending,
				TotalAmount: decimal.RequireFromString("27.59"),
			}, nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodPost, "/api/orders", `{
		"customer_name": "Hanako Yamada",
		"customer_email": "hanako@example.com",
		"payment_method": "credit_card",
		"items": [{"product_id": "p-rose", "quantity": 2}]
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Order created successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "o-1", data["id"])
}

func TestCreateOrderMapsServiceErrorToEnvelope(t *testing.T) {
	svc := &stubOrderService{
		placeOrder: func(_ context.Context, _ usecase.CreateOrderInput) (model.Order, error) {
			return model.Order{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid promo code")
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodPost, "/api/orders", `{"customer_name": "x"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid promo code", body["message"])
}

func TestGetOrderNotFoundEnvelope(t *testing.T) {
	svc := &stubOrderService{
		getOrder: func(_ context.Context, orderID string) (model.Order, error) {
			assert.Equal(t, "o-404", orderID)
			return model.Order{}, usecase.NewHTTPError(http.StatusNotFound, "Order not found")
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodGet, "/api/orders/o-404", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Order not found", body["message"])
}

func TestListOrdersDefaultsAndPagination(t *testing.T) {
	var got usecase.ListOrdersInput
	svc := &stubOrderService{
		listOrders: func(_ context.Context, in usecase.ListOrdersInput) (usecase.OrderListOutput, error) {
			got = in
			return usecase.OrderListOutput{
				Items: []model.Order{{ID: "o-1"}, {ID: "o-2"}},
				Total: 25, Page: in.Page, Limit: in.Limit,
			}, nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// デフォルトは page=1, limit=10
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 10, got.Limit)

	body := decodeBody(t, rec)
	pg := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pg["page"])
	assert.Equal(t, float64(25), pg["total"])
	assert.Equal(t, float64(3), pg["total_pages"])
}

func TestListOrdersPassesFilters(t *testing.T) {
	var got usecase.ListOrdersInput
	svc := &stubOrderService{
		listOrders: func(_ context.Context, in usecase.ListOrdersInput) (usecase.OrderListOutput, error) {
			got = in
			return usecase.OrderListOutput{Page: in.Page, Limit: in.Limit}, nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodGet,
		"/api/orders?page=2&limit=5&status=pending&email=hanako%40example.com&from=2026-08-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "hanako@example.com", got.CustomerEmail)
	require.NotNil(t, got.From)
	assert.Equal(t, 2026, got.From.Year())
	assert.Nil(t, got.To)
}

func TestListOrdersRejectsBadQuery(t *testing.T) {
	svc := &stubOrderService{}
	e := newOrderEcho(svc)

	assert.Equal(t, http.StatusBadRequest, doJSON(e, http.MethodGet, "/api/orders?page=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(e, http.MethodGet, "/api/orders?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(e, http.MethodGet, "/api/orders?from=yesterday", "").Code)
}

func TestUpdateStatusRoute(t *testing.T) {
	svc := &stubOrderService{
		updateStatus: func(_ context.Context, orderID string, in usecase.UpdateStatusInput) (model.Order, error) {
			assert.Equal(t, "o-1", orderID)
			assert.Equal(t, "processing", in.Status)
			require.NotNil(t, in.Notes)
			assert.Equal(t, "packed", *in.Notes)
			return model.Order{ID: "o-1", OrderStatus: model.OrderStatusProcessing}, nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodPatch, "/api/orders/o-1/status", `{"status":"processing","notes":"packed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Order status updated successfully", body["message"])
}

func TestCancelOrderRoute(t *testing.T) {
	svc := &stubOrderService{
		cancelOrder: func(_ context.Context, orderID string, reason string) (model.Order, error) {
			assert.Equal(t, "o-1", orderID)
			assert.Equal(t, "changed my mind", reason)
			return model.Order{ID: "o-1", OrderStatus: model.OrderStatusCancelled}, nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodPatch, "/api/orders/o-1/cancel", `{"reason":"changed my mind"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Order cancelled successfully", body["message"])
}

func TestDeleteOrderRoute(t *testing.T) {
	svc := &stubOrderService{
		deleteOrder: func(_ context.Context, orderID string) error {
			assert.Equal(t, "o-1", orderID)
			return nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodDelete, "/api/orders/o-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Order deleted successfully", body["message"])
}

func TestProcessPaymentRoute(t *testing.T) {
	svc := &stubOrderService{
		processPayment: func(_ context.Context, orderID string, in usecase.PaymentInput) (usecase.PaymentResult, error) {
			assert.Equal(t, "o-1", orderID)
			assert.Equal(t, "credit_card", in.Method)
			return usecase.PaymentResult{
				OrderID:       "o-1",
				TransactionID: "tx-1",
				PaymentStatus: model.PaymentStatusPaid,
				Amount:        decimal.RequireFromString("27.59"),
			}, nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodPost, "/api/orders/o-1/payment", `{"payment_method":"credit_card"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "paid", data["payment_status"])
}

func TestCalculateTotalsRoute(t *testing.T) {
	svc := &stubOrderService{
		calculateTotals: func(items []usecase.OrderItemInput, promoCode string) (usecase.OrderTotals, error) {
			assert.Len(t, items, 1)
			assert.Equal(t, "SAVE10", promoCode)
			return usecase.OrderTotals{
				Subtotal:    decimal.RequireFromString("20.00"),
				TotalAmount: decimal.RequireFromString("27.59"),
				PromoCode:   "SAVE10",
			}, nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodPost, "/api/orders/calculate-totals",
		`{"items":[{"product_id":"p-rose","quantity":2,"unit_price":"10.00"}],"promo_code":"SAVE10"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
}

func TestStatisticsRoute(t *testing.T) {
	svc := &stubOrderService{
		statistics: func(_ context.Context, period string) (repository.OrderStatistics, error) {
			assert.Equal(t, "7d", period)
			return repository.OrderStatistics{
				TotalOrders:  10,
				TotalRevenue: decimal.RequireFromString("523.40"),
			}, nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodGet, "/api/orders/statistics?period=7d", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["total_orders"])
}

func TestTrackingRoute(t *testing.T) {
	svc := &stubOrderService{
		getTracking: func(_ context.Context, orderID string) (usecase.TrackingOutput, error) {
			assert.Equal(t, "o-1", orderID)
			return usecase.TrackingOutput{
				OrderID:        "o-1",
				OrderStatus:    model.OrderStatusShipped,
				TrackingNumber: "GB-AAAA00000000",
			}, nil
		},
	}
	e := newOrderEcho(svc)

	rec := doJSON(e, http.MethodGet, "/api/orders/o-1/tracking", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "GB-AAAA00000000", data["tracking_number"])
}
