// Package catalog fronts the upstream shop API. Product records are
// normalized here (id and image types, discount rule) so the rest of the
// codebase only ever sees the strict domain shapes.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

// ErrCacheMiss is returned by a ProductCache when the product is not
// cached.
var ErrCacheMiss = errors.New("catalog cache miss")

// ProductCache is an optional read-through cache for single products.
type ProductCache interface {
	Get(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	Set(ctx context.Context, product domain.Product) error
}

// Options configures a Client. AccessToken and APIKey are forwarded as the
// upstream API's auth headers; both may be empty for public listings.
type Options struct {
	BaseURL     string
	AccessToken string
	APIKey      string
	HTTPClient  *http.Client
	Cache       ProductCache
}

type Client struct {
	baseURL     string
	accessToken string
	apiKey      string
	httpClient  *http.Client
	cache       ProductCache
	logger      zerolog.Logger
}

func NewClient(opts Options, logger zerolog.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:     opts.BaseURL,
		accessToken: opts.AccessToken,
		apiKey:      opts.APIKey,
		httpClient:  httpClient,
		cache:       opts.Cache,
		logger:      logger,
	}
}

// envelope is the upstream response wrapper: {"data": ..., "meta": ...}.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// Product fetches one product by id, consulting the cache first. Cache
// failures degrade to an upstream fetch, never to a caller-visible error.
func (c *Client) Product(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	id = domain.CanonicalProductID(id.String())
	if id == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidArgument)
	}

	if c.cache != nil {
		cached, err := c.cache.Get(ctx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("product_id", id.String()).Msg("catalog cache read failed")
		}
	}

	raw, err := c.get(ctx, c.baseURL+"/online-shop/"+id.String())
	if err != nil {
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, product); err != nil {
			c.logger.Warn().Err(err).Str("product_id", id.String()).Msg("catalog cache write failed")
		}
	}
	return &product, nil
}

// Products fetches the full upstream listing, unfiltered.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	raw, err := c.get(ctx, c.baseURL+"/online-shop")
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode product listing: %w", err)
	}
	return products, nil
}

func (c *Client) get(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Noroff-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call shop api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read shop api response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
			return nil, fmt.Errorf("shop api status %d: %s", resp.StatusCode, env.Message)
		}
		return nil, fmt.Errorf("shop api status %d", resp.StatusCode)
	}

	// Some deployments return the payload without the {"data": ...}
	// envelope; arrays are always bare payloads.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode shop api envelope: %w", err)
	}
	if len(env.Data) == 0 {
		return body, nil
	}
	return env.Data, nil
}
