package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

func listProductsHandler(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.Products(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"data": products})
	}
}

func getProductHandler(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := domain.CanonicalProductID(c.Param("id"))
		product, err := catalog.Product(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": product})
	}
}
