package main

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info")
		fallback.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.LogLevel).With().Str("component", "importer").Logger()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}

	client := catalog.NewClient(catalog.Options{
		BaseURL:     cfg.ShopAPIBase,
		AccessToken: cfg.ShopAccessToken,
		APIKey:      cfg.ShopAPIKey,
	}, logger)

	cache := catalog.NewRedisCache(redisClient, cfg.ProductCacheTTL)
	warmed, err := importer.Run(ctx, client, cache, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("warm product cache")
	}
	logger.Info().Int("products", warmed).Msg("done")
}
