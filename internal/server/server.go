package server

import (
	"net/http"
	"time"

	"giftbloom/internal/config"
	"giftbloom/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// エラーと404をまとめて {success:false, message, path, method, timestamp} に整形する
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if s, ok := he.Message.(string); ok {
			message = s
		}
		if status == http.StatusNotFound {
			message = "Route not found"
		}
	}

	_ = c.JSON(status, map[string]interface{}{
		"success":   false,
		"message":   message,
		"path":      c.Request().URL.Path,
		"method":    c.Request().Method,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// New はechoアプリを組み立てる。ハンドラはDIで受け取る。
func New(cfg config.Config, orderH *handler.OrderHandler, cartH *handler.CartHandler, productH *handler.ProductHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("10M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Requested-With"},
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))

	started := time.Now()

	// サービスメタ情報
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"service":     "GiftBloom Backend API",
			"version":     "1.0.0",
			"status":      "running",
			"environment": cfg.GoEnv,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":      "healthy",
			"uptime":      time.Since(started).String(),
			"environment": cfg.GoEnv,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := e.Group("/api")
	orderH.RegisterRoutes(api)
	cartH.RegisterRoutes(api)
	productH.RegisterRoutes(api)

	return e
}
