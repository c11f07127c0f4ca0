package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// API is the set of hosted-checkout operations exposed by the gateway's REST
// surface. *Client is the production implementation; tests substitute mocks.
type API interface {
	CreateSession(ctx context.Context, order OrderRequest, operation string, opts *CheckoutOptions) (*SessionResult, error)
	RetrieveOrder(ctx context.Context, orderID string) (*OrderDetails, error)
	Capture(ctx context.Context, orderID, transactionID, amount, currency string) (*TransactionResult, error)
	Refund(ctx context.Context, orderID, transactionID, amount, currency string) (*TransactionResult, error)
	Void(ctx context.Context, orderID, transactionID string) (*TransactionResult, error)
	RetrieveTransaction(ctx context.Context, orderID, transactionID string) (*TransactionResult, error)
}

// Config holds the merchant credentials and defaults the client needs.
type Config struct {
	BaseURL      string
	MerchantID   string
	APIPassword  string
	APIVersion   string
	Currency     string
	MerchantName string
	Timeout      time.Duration
}

// Client wraps the gateway's REST API: session creation, order retrieval and
// the capture/refund/void transaction operations. Calls are single synchronous
// exchanges over HTTPS with Basic auth; the client never retries internally.
type Client struct {
	config     *Config
	httpClient *http.Client
	wire       *WireLog
}

// NewClient creates a gateway client from immutable configuration. The wire
// log may be nil.
func NewClient(cfg *Config, wire *WireLog) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("gateway config is required")
	}
	if cfg.MerchantID == "" {
		return nil, fmt.Errorf("merchant ID is required")
	}
	if cfg.APIPassword == "" {
		return nil, fmt.Errorf("API password is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		wire:       wire,
	}, nil
}

type merchantBody struct {
	Name string `json:"name"`
}

type interactionBody struct {
	Operation  string       `json:"operation"`
	Merchant   merchantBody `json:"merchant"`
	ReturnURL  string       `json:"returnUrl,omitempty"`
	TimeoutURL string       `json:"timeoutUrl,omitempty"`
	CancelURL  string       `json:"cancelUrl,omitempty"`
}

type orderBody struct {
	Currency    string `json:"currency"`
	Amount      string `json:"amount"`
	ID          string `json:"id"`
	Description string `json:"description"`
}

type initiateCheckoutBody struct {
	APIOperation string          `json:"apiOperation"`
	Interaction  interactionBody `json:"interaction"`
	Order        orderBody       `json:"order"`
	Customer     json.RawMessage `json:"customer,omitempty"`
	Billing      json.RawMessage `json:"billing,omitempty"`
	Shipping     json.RawMessage `json:"shipping,omitempty"`
}

type transactionBody struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type operationBody struct {
	APIOperation string           `json:"apiOperation"`
	Transaction  *transactionBody `json:"transaction,omitempty"`
}

// CreateSession runs INITIATE_CHECKOUT and returns the session ID together
// with the successIndicator token. The order is validated before any network
// call; optional fields that were not supplied are left out of the body.
func (c *Client) CreateSession(ctx context.Context, order OrderRequest, operation string, opts *CheckoutOptions) (*SessionResult, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	if operation == "" {
		operation = OperationAuthorize
	}

	currency := order.Currency
	if currency == "" {
		currency = c.config.Currency
	}
	description := order.Description
	if description == "" {
		description = "Order " + order.ID
	}

	body := initiateCheckoutBody{
		APIOperation: "INITIATE_CHECKOUT",
		Interaction: interactionBody{
			Operation: operation,
			Merchant:  merchantBody{Name: c.config.MerchantName},
		},
		Order: orderBody{
			Currency:    currency,
			Amount:      order.Amount,
			ID:          order.ID,
			Description: description,
		},
	}

	if opts != nil {
		body.Interaction.ReturnURL = opts.ReturnURL
		body.Interaction.TimeoutURL = opts.TimeoutURL
		body.Interaction.CancelURL = opts.CancelURL
		body.Customer = opts.Customer
		body.Billing = opts.Billing
		body.Shipping = opts.Shipping
	}

	data, err := c.do(ctx, http.MethodPost, "/session", body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
		SuccessIndicator string `json:"successIndicator"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &ProtocolError{Status: http.StatusOK, Err: err}
	}

	return &SessionResult{
		SessionID:        parsed.Session.ID,
		SuccessIndicator: parsed.SuccessIndicator,
	}, nil
}

// RetrieveOrder fetches the order aggregate with its transaction history.
func (c *Client) RetrieveOrder(ctx context.Context, orderID string) (*OrderDetails, error) {
	if orderID == "" {
		return nil, &ValidationError{Reason: "order ID is required"}
	}

	data, err := c.do(ctx, http.MethodGet, "/order/"+orderID, nil)
	if err != nil {
		return nil, err
	}

	order := &OrderDetails{}
	if err := json.Unmarshal(data, order); err != nil {
		return nil, &ProtocolError{Status: http.StatusOK, Err: err}
	}
	return order, nil
}

// Capture settles a prior authorization. When amount is empty the transaction
// block is omitted and the gateway captures the full authorized amount.
func (c *Client) Capture(ctx context.Context, orderID, transactionID, amount, currency string) (*TransactionResult, error) {
	body := operationBody{APIOperation: OperationCapture}
	if amount != "" {
		body.Transaction = &transactionBody{
			Amount:   amount,
			Currency: c.currencyOrDefault(currency),
		}
	}
	return c.transactionOp(ctx, orderID, transactionID, body)
}

// Refund returns captured funds to the payer. The amount is mandatory.
func (c *Client) Refund(ctx context.Context, orderID, transactionID, amount, currency string) (*TransactionResult, error) {
	if amount == "" {
		return nil, &ValidationError{Reason: "refund amount is required"}
	}
	body := operationBody{
		APIOperation: OperationRefund,
		Transaction: &transactionBody{
			Amount:   amount,
			Currency: c.currencyOrDefault(currency),
		},
	}
	return c.transactionOp(ctx, orderID, transactionID, body)
}

// Void cancels a prior transaction before settlement.
func (c *Client) Void(ctx context.Context, orderID, transactionID string) (*TransactionResult, error) {
	return c.transactionOp(ctx, orderID, transactionID, operationBody{APIOperation: OperationVoid})
}

// RetrieveTransaction fetches a single transaction of an order.
func (c *Client) RetrieveTransaction(ctx context.Context, orderID, transactionID string) (*TransactionResult, error) {
	if orderID == "" {
		return nil, &ValidationError{Reason: "order ID is required"}
	}
	if transactionID == "" {
		return nil, &ValidationError{Reason: "transaction ID is required"}
	}

	data, err := c.do(ctx, http.MethodGet, "/order/"+orderID+"/transaction/"+transactionID, nil)
	if err != nil {
		return nil, err
	}
	return parseTransactionResult(data)
}

func (c *Client) transactionOp(ctx context.Context, orderID, transactionID string, body operationBody) (*TransactionResult, error) {
	if orderID == "" {
		return nil, &ValidationError{Reason: "order ID is required"}
	}
	if transactionID == "" {
		return nil, &ValidationError{Reason: "transaction ID is required"}
	}

	data, err := c.do(ctx, http.MethodPut, "/order/"+orderID+"/transaction/"+transactionID, body)
	if err != nil {
		return nil, err
	}
	return parseTransactionResult(data)
}

func parseTransactionResult(data []byte) (*TransactionResult, error) {
	var envelope struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &ProtocolError{Status: http.StatusOK, Err: err}
	}
	return &TransactionResult{Result: envelope.Result, Raw: data}, nil
}

func (c *Client) currencyOrDefault(currency string) string {
	if currency != "" {
		return currency
	}
	return c.config.Currency
}

func validateOrder(order OrderRequest) error {
	if order.Amount == "" {
		return &ValidationError{Reason: "order amount is required"}
	}
	if order.ID == "" {
		return &ValidationError{Reason: "order ID is required"}
	}
	amount, err := strconv.ParseFloat(order.Amount, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return &ValidationError{Reason: "invalid order amount"}
	}
	return nil
}

func (c *Client) buildURL(resource string) string {
	return c.config.BaseURL + "/api/rest/version/" + c.config.APIVersion +
		"/merchant/" + c.config.MerchantID + resource
}

// do performs one authenticated exchange with the gateway and normalizes the
// outcome: a reachable gateway answering non-2xx becomes a GatewayError, an
// unreachable one a TransportError, a 2xx non-JSON body a ProtocolError.
func (c *Client) do(ctx context.Context, method, resource string, body any) ([]byte, error) {
	url := c.buildURL(resource)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("cannot encode request body: %v", err)}
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("cannot build request: %v", err)}
	}
	req.SetBasicAuth("merchant."+c.config.MerchantID, c.config.APIPassword)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.wire.Request(method, url, payload)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.wire.Failure(err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.wire.Failure(err)
		return nil, &TransportError{Err: err}
	}

	c.wire.Response(resp.StatusCode, data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{
			Status:      resp.StatusCode,
			Explanation: extractExplanation(data),
		}
	}

	if !json.Valid(data) {
		return nil, &ProtocolError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("response body is not valid JSON"),
		}
	}

	return data, nil
}

func extractExplanation(data []byte) string {
	var parsed struct {
		Error struct {
			Explanation string `json:"explanation"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}
	return parsed.Error.Explanation
}
