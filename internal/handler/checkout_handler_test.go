package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lakpay/mpgs-hosted-checkout/internal/dto"
	"github.com/lakpay/mpgs-hosted-checkout/internal/gateway"
	"github.com/lakpay/mpgs-hosted-checkout/internal/middleware"
)

// mockCheckoutService implements service.CheckoutService for testing
type mockCheckoutService struct {
	initiateResp  *dto.InitiateCheckoutResponse
	initiateErr   error
	lastInitiate  *dto.InitiateCheckoutRequest
	operationResp *dto.SubsequentOperationResponse
	operationErr  error
	lastOperation *dto.SubsequentOperationRequest
	orderResp     *dto.OrderResultResponse
	orderErr      error
	lastOrderID   string
	verifyResp    *dto.VerifyResultResponse
	verifyErr     error
	lastIndicator string
	verifyOrderID string
}

func (m *mockCheckoutService) InitiateCheckout(ctx context.Context, req *dto.InitiateCheckoutRequest) (*dto.InitiateCheckoutResponse, error) {
	m.lastInitiate = req
	return m.initiateResp, m.initiateErr
}

func (m *mockCheckoutService) SubsequentOperation(ctx context.Context, req *dto.SubsequentOperationRequest) (*dto.SubsequentOperationResponse, error) {
	m.lastOperation = req
	return m.operationResp, m.operationErr
}

func (m *mockCheckoutService) GetOrderResult(ctx context.Context, orderID string) (*dto.OrderResultResponse, error) {
	m.lastOrderID = orderID
	return m.orderResp, m.orderErr
}

func (m *mockCheckoutService) VerifyResult(ctx context.Context, orderID, resultIndicator string) (*dto.VerifyResultResponse, error) {
	m.verifyOrderID = orderID
	m.lastIndicator = resultIndicator
	return m.verifyResp, m.verifyErr
}

func setupTestRouter(svc *mockCheckoutService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.CORS())
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	handler := NewCheckoutHandler(svc)
	router.POST("/initiate-checkout", handler.InitiateCheckout)
	router.POST("/subsequent-operations", handler.SubsequentOperations)
	router.GET("/get-order-result", handler.GetOrderResult)
	router.GET("/verify-result", handler.VerifyResult)

	return router
}

func TestCheckoutHandler_InitiateCheckout(t *testing.T) {
	svc := &mockCheckoutService{
		initiateResp: &dto.InitiateCheckoutResponse{
			Success:          true,
			SessionID:        "SESSION0002899838031N2920839J86",
			SuccessIndicator: "0a1b2c3d4e5f",
			OrderID:          "ORDER-12345",
		},
	}
	router := setupTestRouter(svc)

	body := []byte(`{"amount":"1000.00","currency":"LKR","description":"Test purchase","operation":"PURCHASE"}`)
	req, _ := http.NewRequest("POST", "/initiate-checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var response dto.InitiateCheckoutResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	if !response.Success {
		t.Error("Expected success response")
	}
	if response.SessionID != "SESSION0002899838031N2920839J86" {
		t.Errorf("Expected session id to round-trip, got %q", response.SessionID)
	}
	if svc.lastInitiate.Amount.String() != "1000.00" {
		t.Errorf("Expected amount 1000.00 passed to service, got %q", svc.lastInitiate.Amount.String())
	}
}

func TestCheckoutHandler_InitiateCheckout_DefaultReturnURL(t *testing.T) {
	svc := &mockCheckoutService{
		initiateResp: &dto.InitiateCheckoutResponse{Success: true},
	}
	router := setupTestRouter(svc)

	body := []byte(`{"amount":"50.00"}`)
	req, _ := http.NewRequest("POST", "/initiate-checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Host = "shop.example.com"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if svc.lastInitiate.ReturnURL != "http://shop.example.com/receipt" {
		t.Errorf("Expected default return URL derived from request host, got %q", svc.lastInitiate.ReturnURL)
	}
}

func TestCheckoutHandler_InitiateCheckout_KeepsCallerReturnURL(t *testing.T) {
	svc := &mockCheckoutService{
		initiateResp: &dto.InitiateCheckoutResponse{Success: true},
	}
	router := setupTestRouter(svc)

	body := []byte(`{"amount":"50.00","returnUrl":"https://merchant.example/thanks"}`)
	req, _ := http.NewRequest("POST", "/initiate-checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if svc.lastInitiate.ReturnURL != "https://merchant.example/thanks" {
		t.Errorf("Expected caller return URL preserved, got %q", svc.lastInitiate.ReturnURL)
	}
}

func TestCheckoutHandler_InitiateCheckout_InvalidJSON(t *testing.T) {
	svc := &mockCheckoutService{}
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("POST", "/initiate-checkout", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var response dto.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Success {
		t.Error("Expected success=false")
	}
	if response.Error != "invalid JSON data" {
		t.Errorf("Expected error %q, got %q", "invalid JSON data", response.Error)
	}
}

func TestCheckoutHandler_InitiateCheckout_GatewayErrorMapsTo500(t *testing.T) {
	svc := &mockCheckoutService{
		initiateErr: &gateway.GatewayError{Status: 402, Explanation: "Insufficient funds"},
	}
	router := setupTestRouter(svc)

	body := []byte(`{"amount":"1000.00"}`)
	req, _ := http.NewRequest("POST", "/initiate-checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var response dto.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Success {
		t.Error("Expected success=false")
	}
	if !strings.Contains(response.Error, "Insufficient funds") {
		t.Errorf("Expected explanation in error body, got %q", response.Error)
	}
}

func TestCheckoutHandler_SubsequentOperations(t *testing.T) {
	svc := &mockCheckoutService{
		operationResp: &dto.SubsequentOperationResponse{
			Success:       true,
			Operation:     "CAPTURE",
			OrderID:       "ORDER-1",
			TransactionID: "1",
			Response:      &gateway.TransactionResult{Result: "SUCCESS", Raw: json.RawMessage(`{"result":"SUCCESS","transaction":{"type":"CAPTURE"}}`)},
		},
	}
	router := setupTestRouter(svc)

	body := []byte(`{"operation":"CAPTURE","orderId":"ORDER-1","transactionId":"1"}`)
	req, _ := http.NewRequest("POST", "/subsequent-operations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	// The gateway response must be relayed verbatim, not re-shaped.
	var envelope struct {
		Success  bool            `json:"success"`
		Response json.RawMessage `json:"response"`
	}
	json.Unmarshal(w.Body.Bytes(), &envelope)
	if !envelope.Success {
		t.Error("Expected success response")
	}
	if string(envelope.Response) != `{"result":"SUCCESS","transaction":{"type":"CAPTURE"}}` {
		t.Errorf("Expected raw gateway body relayed, got %s", envelope.Response)
	}
}

func TestCheckoutHandler_SubsequentOperations_NumericAmount(t *testing.T) {
	svc := &mockCheckoutService{
		operationResp: &dto.SubsequentOperationResponse{Success: true},
	}
	router := setupTestRouter(svc)

	body := []byte(`{"operation":"REFUND","orderId":"ORDER-1","transactionId":"1","amount":250.00}`)
	req, _ := http.NewRequest("POST", "/subsequent-operations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d for JSON-number amount, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if svc.lastOperation.Amount.String() != "250.00" {
		t.Errorf("Expected amount 250.00 passed to service, got %q", svc.lastOperation.Amount.String())
	}
}

func TestCheckoutHandler_SubsequentOperations_ValidationErrorMapsTo500(t *testing.T) {
	svc := &mockCheckoutService{
		operationErr: &gateway.ValidationError{Reason: "order ID is required"},
	}
	router := setupTestRouter(svc)

	body := []byte(`{"operation":"CAPTURE"}`)
	req, _ := http.NewRequest("POST", "/subsequent-operations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestCheckoutHandler_GetOrderResult(t *testing.T) {
	svc := &mockCheckoutService{
		orderResp: &dto.OrderResultResponse{
			Success: true,
			Order:   dto.OrderSummary{ID: "ORDER-42", Amount: "1000.00", Currency: "LKR", Status: "CAPTURED"},
		},
	}
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/get-order-result?orderId=ORDER-42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if svc.lastOrderID != "ORDER-42" {
		t.Errorf("Expected orderId query forwarded, got %q", svc.lastOrderID)
	}
}

func TestCheckoutHandler_GetOrderResult_Error(t *testing.T) {
	svc := &mockCheckoutService{
		orderErr: &gateway.ValidationError{Reason: "order ID is required"},
	}
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/get-order-result", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestCheckoutHandler_VerifyResult(t *testing.T) {
	svc := &mockCheckoutService{
		verifyResp: &dto.VerifyResultResponse{Success: true, Verified: true, OrderID: "ORDER-7"},
	}
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/verify-result?orderId=ORDER-7&resultIndicator=abc123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if svc.verifyOrderID != "ORDER-7" || svc.lastIndicator != "abc123" {
		t.Errorf("Expected query params forwarded, got orderId=%q indicator=%q", svc.verifyOrderID, svc.lastIndicator)
	}
}

func TestCheckoutHandler_MethodNotAllowed(t *testing.T) {
	svc := &mockCheckoutService{}
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/initiate-checkout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "Method not allowed" {
		t.Errorf("Expected error %q, got %q", "Method not allowed", body["error"])
	}
}

func TestCheckoutHandler_PreflightOptions(t *testing.T) {
	svc := &mockCheckoutService{}
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("OPTIONS", "/initiate-checkout", nil)
	req.Header.Set("Origin", "https://shop.example.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d for preflight, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Expected CORS headers on preflight response")
	}
}
