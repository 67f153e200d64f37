package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

func checkoutHandler(carts *cart.Registry, svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.SubmitInput
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "invalid request body")
			return
		}

		sid := sessionID(c)
		order, err := svc.Submit(c.Request.Context(), carts.For(sid), sid, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func latestOrderHandler(orders OrderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.GetLatestBySession(c.Request.Context(), sessionID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func getOrderHandler(orders OrderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		// Orders are visible only to the session that placed them.
		if order.SessionID != sessionID(c) {
			writeError(c, domain.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
