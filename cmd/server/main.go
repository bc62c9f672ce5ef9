package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ystore/marketplace/internal/config"
	"github.com/ystore/marketplace/internal/es"
	"github.com/ystore/marketplace/internal/handlers"
	"github.com/ystore/marketplace/internal/handlers/cart"
	"github.com/ystore/marketplace/internal/logging"
	"github.com/ystore/marketplace/internal/mykafka"
	"github.com/ystore/marketplace/internal/payments"
	"github.com/ystore/marketplace/internal/service/token"
	httpserver "github.com/ystore/marketplace/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		brokers := []string{configuration.KAFKA_ADDRESS}
		topics := []string{"user_events", "cart_events", "product_events", "order_events"}
		prod, err = mykafka.NewProducer(brokers, topics)
		if err != nil {
			log.Fatalf("kafka init failed: %v", err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, events disabled")
	}

	var searchHandler *handlers.SearchHandler
	productHandler := &handlers.ProductHandler{DB: db, Producer: prod}
	if configuration.ES_URL != "" {
		client, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init failed: %v", err)
		}
		productHandler.ES = client
		searchHandler = &handlers.SearchHandler{ES: client, Index: es.ProductIndex}
	} else {
		logger.Warn("ES_URL not set, search disabled")
	}

	paymentsClient := payments.NewClient(configuration)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())

	deps := httpserver.Deps{
		DB:              db,
		Tokens:          tokens,
		AuthHandler:     &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: prod},
		ProductHandler:  productHandler,
		CategoryHandler: &handlers.CategoryHandler{DB: db},
		CartHandler:     &cart.CartHandler{DB: db, Producer: prod},
		OrderHandler:    &handlers.OrderHandler{DB: db, Producer: prod},
		CheckoutHandler: &handlers.CheckoutHandler{DB: db, Payments: paymentsClient, PublicBaseURL: configuration.PUBLIC_BASE_URL},
		ContentHandler:  &handlers.ContentHandler{DB: db},
		CRMHandler:      &handlers.CRMHandler{DB: db},
		AdminHandler:    &handlers.AdminHandler{DB: db},
		SearchHandler:   searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
