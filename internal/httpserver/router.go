package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

const sessionHeader = "X-Session-ID"

const sessionKey = "session_id"

// Catalog is the storefront's view of the product source.
type Catalog interface {
	Product(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	Products(ctx context.Context) ([]domain.Product, error)
}

// OrderReader serves the order history endpoints.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (*domain.OrderSnapshot, error)
	GetLatestBySession(ctx context.Context, sessionID string) (*domain.OrderSnapshot, error)
}

// Deps carries the wired services the routes need.
type Deps struct {
	Carts    *cart.Registry
	Catalog  Catalog
	Checkout *checkout.Service
	Orders   OrderReader
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Carts == nil {
		return nil, errors.New("httpserver: cart registry is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", sessionHeader},
		ExposeHeaders: []string{sessionHeader},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/", sessionMiddleware())
	{
		api.GET("/products", listProductsHandler(deps.Catalog))
		api.GET("/products/:id", getProductHandler(deps.Catalog))

		api.GET("/cart", getCartHandler(deps.Carts))
		api.POST("/cart/items", addCartItemHandler(deps.Carts, deps.Catalog))
		api.PATCH("/cart/items/:id", updateCartItemHandler(deps.Carts))
		api.DELETE("/cart/items/:id", removeCartItemHandler(deps.Carts))
		api.DELETE("/cart", clearCartHandler(deps.Carts))

		api.POST("/checkout", checkoutHandler(deps.Carts, deps.Checkout))
		api.GET("/orders/latest", latestOrderHandler(deps.Orders))
		api.GET("/orders/:id", getOrderHandler(deps.Orders))
	}

	return router, nil
}

// sessionMiddleware resolves the cart session. Clients without a session
// get a fresh one back in the response header and are expected to echo it
// on later requests.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		c.Set(sessionKey, sessionID)
		c.Header(sessionHeader, sessionID)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

// writeError maps domain sentinels onto HTTP statuses. The kind field
// lets clients branch without parsing the message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_argument"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "kind": "not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "kind": "internal"})
	}
}

func writeBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "kind": "invalid_argument"})
}
