package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"storefront/internal/cart"
	"storefront/internal/cartstorage/file"
	"storefront/internal/cartstorage/memory"
	redisstorage "storefront/internal/cartstorage/redis"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	orderrepo "storefront/internal/repository/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info")
		fallback.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.LogLevel).With().Str("component", "api").Logger()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer dbpool.Close()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	var slots cart.Slots
	switch cfg.CartBackend {
	case "redis":
		slots = redisstorage.New(redisClient)
	case "file":
		slots = file.New(cfg.CartStateDir)
	default:
		slots = memory.New()
	}
	logger.Info().Str("cart_backend", cfg.CartBackend).Msg("cart storage selected")

	catalogClient := catalog.NewClient(catalog.Options{
		BaseURL:     cfg.ShopAPIBase,
		AccessToken: cfg.ShopAccessToken,
		APIKey:      cfg.ShopAPIKey,
		Cache:       catalog.NewRedisCache(redisClient, cfg.ProductCacheTTL),
	}, logger.With().Str("component", "catalog").Logger())

	orders := orderrepo.NewPostgres(dbpool, logger.With().Str("component", "orders").Logger())
	checkoutSvc := checkout.NewService(orders, logger.With().Str("component", "checkout").Logger())
	carts := cart.NewRegistry(slots, logger.With().Str("component", "cart").Logger())

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Carts:    carts,
		Catalog:  catalogClient,
		Checkout: checkoutSvc,
		Orders:   orders,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
