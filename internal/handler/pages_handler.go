package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageData carries the template values shared by all pages.
type PageData struct {
	MerchantName string
	GatewayURL   string
	Currency     string
}

// PagesHandler serves the demo storefront pages. The templates load
// Checkout.js straight from the gateway host so card data never reaches
// this service.
type PagesHandler struct {
	data PageData
}

// NewPagesHandler creates a new PagesHandler
func NewPagesHandler(data PageData) *PagesHandler {
	return &PagesHandler{data: data}
}

// Index handles GET /
func (h *PagesHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.data)
}

// Checkout handles GET /checkout
func (h *PagesHandler) Checkout(c *gin.Context) {
	c.HTML(http.StatusOK, "checkout.html", h.data)
}

// Receipt handles GET /receipt
func (h *PagesHandler) Receipt(c *gin.Context) {
	c.HTML(http.StatusOK, "receipt.html", h.data)
}
