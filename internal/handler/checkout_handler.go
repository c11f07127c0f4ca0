package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lakpay/mpgs-hosted-checkout/internal/dto"
	"github.com/lakpay/mpgs-hosted-checkout/internal/service"
)

// CheckoutHandler exposes the checkout API consumed by the browser-side
// orchestrator. Every failure, validation included, answers 500 with a
// {success:false, error} body: existing integrations key off the success
// flag, not the status code.
type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

var errInvalidJSON = errors.New("invalid JSON data")

func fail(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(err))
}

// InitiateCheckout handles POST /initiate-checkout
// Creates a gateway checkout session for the submitted order.
func (h *CheckoutHandler) InitiateCheckout(c *gin.Context) {
	var req dto.InitiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidJSON)
		return
	}

	// The completion redirect lands on this host's receipt page unless the
	// caller supplied its own return URL.
	if req.ReturnURL == "" {
		req.ReturnURL = requestBaseURL(c) + "/receipt"
	}

	resp, err := h.checkoutService.InitiateCheckout(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubsequentOperations handles POST /subsequent-operations
// Dispatches a CAPTURE, REFUND or VOID against an existing transaction.
func (h *CheckoutHandler) SubsequentOperations(c *gin.Context) {
	var req dto.SubsequentOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidJSON)
		return
	}

	resp, err := h.checkoutService.SubsequentOperation(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetOrderResult handles GET /get-order-result?orderId=
// Returns the order aggregate with its transaction history.
func (h *CheckoutHandler) GetOrderResult(c *gin.Context) {
	orderID := c.Query("orderId")

	resp, err := h.checkoutService.GetOrderResult(c.Request.Context(), orderID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyResult handles GET /verify-result?orderId=&resultIndicator=
// Confirms that a completion redirect carries the indicator issued for the
// order's checkout session.
func (h *CheckoutHandler) VerifyResult(c *gin.Context) {
	orderID := c.Query("orderId")
	resultIndicator := c.Query("resultIndicator")

	resp, err := h.checkoutService.VerifyResult(c.Request.Context(), orderID, resultIndicator)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// requestBaseURL reconstructs the external base URL of this service from the
// inbound request.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
