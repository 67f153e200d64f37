package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

type cartResponse struct {
	Items      []domain.LineItem `json:"items"`
	ItemCount  int               `json:"itemCount"`
	TotalPrice string            `json:"totalPrice"`
}

func toCartResponse(items []domain.LineItem) cartResponse {
	if items == nil {
		items = []domain.LineItem{}
	}
	return cartResponse{
		Items:      items,
		ItemCount:  domain.ItemCount(items),
		TotalPrice: domain.TotalPrice(items).StringFixed(2),
	}
}

func getCartHandler(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := carts.For(sessionID(c)).GetItems(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(items))
	}
}

type addItemRequest struct {
	ProductID domain.ProductID `json:"productId"`
	Quantity  *int             `json:"quantity"`
}

func addCartItemHandler(carts *cart.Registry, catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBadRequest(c, "invalid request body")
			return
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}

		product, err := catalog.Product(c.Request.Context(), req.ProductID)
		if err != nil {
			writeError(c, err)
			return
		}

		items, err := carts.For(sessionID(c)).AddItem(c.Request.Context(), *product, quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(items))
	}
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func updateCartItemHandler(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			writeBadRequest(c, "quantity is required")
			return
		}

		id := domain.CanonicalProductID(c.Param("id"))
		if id == "" {
			writeBadRequest(c, "empty product id")
			return
		}

		items, err := carts.For(sessionID(c)).UpdateQuantity(c.Request.Context(), id, *req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(items))
	}
}

func removeCartItemHandler(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := domain.CanonicalProductID(c.Param("id"))
		items, err := carts.For(sessionID(c)).RemoveItem(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(items))
	}
}

func clearCartHandler(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := carts.For(sessionID(c)).Clear(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(nil))
	}
}
