package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftbloom/internal/config"
	"giftbloom/internal/domain/model"
	"giftbloom/internal/handler"
	"giftbloom/internal/infra/cartstore"
	"giftbloom/internal/infra/db"
	infraRepo "giftbloom/internal/infra/repository"
	"giftbloom/internal/server"
	"giftbloom/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = db.Close(gormDB) }()

	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	tx := infraRepo.NewTxManagerGorm(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	pricing := usecase.PricingRules{
		TaxRate:         cfg.TaxRate,
		ShippingFlat:    cfg.ShippingFlat,
		FreeShippingMin: cfg.FreeShippingMin,
		PromoPercents:   usecase.DefaultPromoPercents(),
	}

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(tx, idGen, clock, pricing)
	productUC := usecase.NewProductUsecase(productRepo)

	cartStore := cartstore.New()
	cartUC := usecase.NewCartUsecase(cartStore, productRepo, orderUC)

	//Handler生成
	orderH := handler.NewOrderHandler(orderUC)
	cartH := handler.NewCartHandler(cartUC)
	productH := handler.NewProductHandler(productUC)

	e := server.New(cfg, orderH, cartH, productH)

	//Server起動
	addr := ":" + cfg.Port
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	//SIGINT/SIGTERMで猶予付きシャットダウン
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
