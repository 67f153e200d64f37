package importer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

// Lister fetches the full upstream product listing.
type Lister interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

// Run fetches the catalog and writes every product into the cache so the
// first storefront requests after a deploy do not all hit the upstream API.
// Individual cache failures are logged and skipped.
func Run(ctx context.Context, lister Lister, cache catalog.ProductCache, logger zerolog.Logger) (int, error) {
	products, err := lister.Products(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch product listing: %w", err)
	}

	warmed := 0
	for _, p := range products {
		if err := cache.Set(ctx, p); err != nil {
			logger.Warn().Err(err).Str("product_id", p.ID.String()).Msg("cache product failed")
			continue
		}
		warmed++
	}

	logger.Info().Int("fetched", len(products)).Int("warmed", warmed).Msg("product cache warmed")
	return warmed, nil
}
