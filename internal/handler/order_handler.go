package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"giftbloom/internal/domain/model"
	"giftbloom/internal/repository"
	"giftbloom/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 統一レスポンス {success, message?, data?, pagination?}
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, Response{Success: false, Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "internal error"})
}

// handlerが必要とする注文サービスの約束（テストでは差し替える）
type OrderService interface {
	PlaceOrder(ctx context.Context, in usecase.CreateOrderInput) (model.Order, error)
	CalculateTotals(items []usecase.OrderItemInput, promoCode string) (usecase.OrderTotals, error)
	GetOrder(ctx context.Context, orderID string) (model.Order, error)
	ListOrders(ctx context.Context, in usecase.ListOrdersInput) (usecase.OrderListOutput, error)
	UpdateStatus(ctx context.Context, orderID string, in usecase.UpdateStatusInput) (model.Order, error)
	CancelOrder(ctx context.Context, orderID string, reason string) (model.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	ProcessPayment(ctx context.Context, orderID string, in usecase.PaymentInput) (usecase.PaymentResult, error)
	GetTracking(ctx context.Context, orderID string) (usecase.TrackingOutput, error)
	Statistics(ctx context.Context, period string) (repository.OrderStatistics, error)
}

type OrderHandler struct {
	svc OrderService
}

// DI
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/orders")

	g.POST("", h.create)
	g.POST("/calculate-totals", h.calculateTotals)
	g.GET("", h.list)
	g.GET("/statistics", h.statistics)
	g.GET("/:id", h.detail)
	g.GET("/:id/tracking", h.tracking)
	g.PATCH("/:id/status", h.updateStatus)
	g.PATCH("/:id/cancel", h.cancel)
	g.POST("/:id/payment", h.processPayment)
	g.DELETE("/:id", h.remove)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid body"})
	}

	order, err := h.svc.PlaceOrder(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}

type CalculateTotalsRequest struct {
	Items     []usecase.OrderItemInput `json:"items"`
	PromoCode string                   `json:"promo_code"`
}

func (h *OrderHandler) calculateTotals(c echo.Context) error {
	var req CalculateTotalsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid body"})
	}

	totals, err := h.svc.CalculateTotals(req.Items, req.PromoCode)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, Response{Success: true, Data: totals})
}

func (h *OrderHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid page"})
		}
		page = p
	}

	// limit（default 10）
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid limit"})
		}
		limit = l
	}

	in := usecase.ListOrdersInput{
		Page:          page,
		Limit:         limit,
		Status:        c.QueryParam("status"),
		CustomerEmail: c.QueryParam("email"),
	}

	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid from"})
		}
		in.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid to"})
		}
		in.To = &t
	}

	out, err := h.svc.ListOrders(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	totalPages := int64(0)
	if out.Limit > 0 {
		totalPages = (out.Total + int64(out.Limit) - 1) / int64(out.Limit)
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    out.Items,
		Pagination: &Pagination{
			Page:       out.Page,
			Limit:      out.Limit,
			Total:      out.Total,
			TotalPages: totalPages,
		},
	})
}

func (h *OrderHandler) detail(c echo.Context) error {
	order, err := h.svc.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: order})
}

func (h *OrderHandler) tracking(c echo.Context) error {
	tracking, err := h.svc.GetTracking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: tracking})
}

type UpdateOrderStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid body"})
	}

	order, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), usecase.UpdateStatusInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Order status updated successfully",
		Data:    order,
	})
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) cancel(c echo.Context) error {
	var req CancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid body"})
	}

	order, err := h.svc.CancelOrder(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Order cancelled successfully",
		Data:    order,
	})
}

type ProcessPaymentRequest struct {
	Method string `json:"payment_method"`
}

func (h *OrderHandler) processPayment(c echo.Context) error {
	var req ProcessPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid body"})
	}

	result, err := h.svc.ProcessPayment(c.Request().Context(), c.Param("id"), usecase.PaymentInput{
		Method: req.Method,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Payment processed successfully",
		Data:    result,
	})
}

func (h *OrderHandler) remove(c echo.Context) error {
	if err := h.svc.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Order deleted successfully"})
}

func (h *OrderHandler) statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: stats})
}
