package dto

import (
	"encoding/json"

	"github.com/lakpay/mpgs-hosted-checkout/internal/gateway"
)

// InitiateCheckoutRequest is the body of POST /initiate-checkout. Amount
// accepts both a JSON number and a numeric string; customer, billing and
// shipping are relayed to the gateway untouched.
type InitiateCheckoutRequest struct {
	OrderID     string          `json:"orderId,omitempty"`
	Amount      json.Number     `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Description string          `json:"description,omitempty"`
	Operation   string          `json:"operation,omitempty"`
	ReturnURL   string          `json:"returnUrl,omitempty"`
	Customer    json.RawMessage `json:"customer,omitempty"`
	Billing     json.RawMessage `json:"billing,omitempty"`
	Shipping    json.RawMessage `json:"shipping,omitempty"`
}

// InitiateCheckoutResponse echoes the created session back to the browser.
type InitiateCheckoutResponse struct {
	Success          bool   `json:"success"`
	SessionID        string `json:"sessionId"`
	SuccessIndicator string `json:"successIndicator"`
	OrderID          string `json:"orderId"`
}

// SubsequentOperationRequest is the body of POST /subsequent-operations.
// Amount accepts both a JSON number and a numeric string, like the initiate
// endpoint.
type SubsequentOperationRequest struct {
	Operation     string      `json:"operation"`
	OrderID       string      `json:"orderId"`
	TransactionID string      `json:"transactionId"`
	Amount        json.Number `json:"amount,omitempty"`
	Currency      string      `json:"currency,omitempty"`
}

// SubsequentOperationResponse relays the gateway's reply verbatim.
type SubsequentOperationResponse struct {
	Success       bool                       `json:"success"`
	Operation     string                     `json:"operation"`
	OrderID       string                     `json:"orderId"`
	TransactionID string                     `json:"transactionId"`
	Response      *gateway.TransactionResult `json:"response"`
}

// OrderSummary is the order-level part of GET /get-order-result.
type OrderSummary struct {
	ID                    string      `json:"id"`
	Amount                json.Number `json:"amount"`
	Currency              string      `json:"currency"`
	Status                string      `json:"status"`
	Description           string      `json:"description"`
	CreationTime          string      `json:"creationTime"`
	TotalAuthorizedAmount json.Number `json:"totalAuthorizedAmount"`
	TotalCapturedAmount   json.Number `json:"totalCapturedAmount"`
	TotalRefundedAmount   json.Number `json:"totalRefundedAmount"`
}

// TransactionSummary is one entry of an order's transaction history.
type TransactionSummary struct {
	ID                string      `json:"id"`
	Type              string      `json:"type"`
	Amount            json.Number `json:"amount"`
	Currency          string      `json:"currency"`
	AuthorizationCode string      `json:"authorizationCode,omitempty"`
	Receipt           string      `json:"receipt,omitempty"`
	Result            string      `json:"result"`
	Timestamp         string      `json:"timestamp"`
}

// CardSummary is the masked card on a paid order.
type CardSummary struct {
	Number string          `json:"number,omitempty"`
	Scheme string          `json:"scheme,omitempty"`
	Brand  string          `json:"brand,omitempty"`
	Expiry json.RawMessage `json:"expiry,omitempty"`
}

// PaymentMethodSummary describes the source of funds of a paid order.
type PaymentMethodSummary struct {
	Type string       `json:"type"`
	Card *CardSummary `json:"card,omitempty"`
}

// OrderResultResponse is the body of GET /get-order-result.
type OrderResultResponse struct {
	Success       bool                  `json:"success"`
	Order         OrderSummary          `json:"order"`
	Transactions  []TransactionSummary  `json:"transactions"`
	PaymentMethod *PaymentMethodSummary `json:"paymentMethod,omitempty"`
}

// VerifyResultResponse is the body of GET /verify-result.
type VerifyResultResponse struct {
	Success  bool   `json:"success"`
	Verified bool   `json:"verified"`
	OrderID  string `json:"orderId"`
}

// ErrorResponse is the uniform failure shape of every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewErrorResponse builds an error payload from any failure.
func NewErrorResponse(err error) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: err.Error()}
}

// FromOrderDetails reshapes the gateway's order aggregate into the wire
// contract served to the browser, keeping transactions in gateway order.
func FromOrderDetails(order *gateway.OrderDetails) *OrderResultResponse {
	resp := &OrderResultResponse{
		Success: true,
		Order: OrderSummary{
			ID:                    order.ID,
			Amount:                order.Amount,
			Currency:              order.Currency,
			Status:                order.Status,
			Description:           order.Description,
			CreationTime:          order.CreationTime,
			TotalAuthorizedAmount: order.TotalAuthorizedAmount,
			TotalCapturedAmount:   order.TotalCapturedAmount,
			TotalRefundedAmount:   order.TotalRefundedAmount,
		},
		Transactions: make([]TransactionSummary, 0, len(order.Transaction)),
	}

	for _, entry := range order.Transaction {
		resp.Transactions = append(resp.Transactions, TransactionSummary{
			ID:                entry.ID,
			Type:              entry.Transaction.Type,
			Amount:            entry.Transaction.Amount,
			Currency:          entry.Transaction.Currency,
			AuthorizationCode: entry.Transaction.AuthorizationCode,
			Receipt:           entry.Transaction.Receipt,
			Result:            entry.Result,
			Timestamp:         entry.TimeOfRecord,
		})
	}

	if order.SourceOfFunds != nil {
		resp.PaymentMethod = &PaymentMethodSummary{Type: order.SourceOfFunds.Type}
		if order.SourceOfFunds.Provided != nil && order.SourceOfFunds.Provided.Card != nil {
			card := order.SourceOfFunds.Provided.Card
			resp.PaymentMethod.Card = &CardSummary{
				Number: card.Number,
				Scheme: card.Scheme,
				Brand:  card.Brand,
				Expiry: card.Expiry,
			}
		}
	}

	return resp
}
