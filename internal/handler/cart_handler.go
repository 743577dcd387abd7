package handler

import (
	"context"
	"net/http"

	"giftbloom/internal/domain/model"
	"giftbloom/internal/middleware"
	"giftbloom/internal/usecase"

	"github.com/labstack/echo/v4"
)

// handlerが必要とするカートサービスの約束
type CartService interface {
	GetCart(sessionID string) usecase.CartView
	AddToCart(ctx context.Context, sessionID string, productID string, qty int64) (usecase.CartView, error)
	UpdateItemQuantity(sessionID string, productID string, qty int64) usecase.CartView
	RemoveItem(sessionID string, productID string) usecase.CartView
	ClearCart(sessionID string)
	Checkout(ctx context.Context, sessionID string, in usecase.CheckoutInput) (model.Order, error)
}

// /cartのHTTP
type CartHandler struct {
	svc CartService
}

// DI
func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

type AddCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *CartHandler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/cart")
	g.Use(middleware.CartSession())

	g.GET("", h.getCart)
	g.POST("", h.addItem)
	g.PATCH("/:productId", h.updateItem)
	g.DELETE("/:productId", h.removeItem)
	g.DELETE("", h.clear)
	g.POST("/checkout", h.checkout)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sid, ok := middleware.GetCartSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "no cart session"})
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: h.svc.GetCart(sid)})
}

func (h *CartHandler) addItem(c echo.Context) error {
	sid, ok := middleware.GetCartSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "no cart session"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid body"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.svc.AddToCart(c.Request().Context(), sid, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

func (h *CartHandler) updateItem(c echo.Context) error {
	sid, ok := middleware.GetCartSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "no cart session"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid body"})
	}

	view := h.svc.UpdateItemQuantity(sid, c.Param("productId"), req.Quantity)
	return c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

func (h *CartHandler) removeItem(c echo.Context) error {
	sid, ok := middleware.GetCartSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "no cart session"})
	}
	view := h.svc.RemoveItem(sid, c.Param("productId"))
	return c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

func (h *CartHandler) clear(c echo.Context) error {
	sid, ok := middleware.GetCartSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "no cart session"})
	}
	h.svc.ClearCart(sid)
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Cart cleared"})
}

func (h *CartHandler) checkout(c echo.Context) error {
	sid, ok := middleware.GetCartSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "no cart session"})
	}

	var req usecase.CheckoutInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid body"})
	}

	order, err := h.svc.Checkout(c.Request().Context(), sid, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}
