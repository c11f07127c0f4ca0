package gateway

import "encoding/json"

// Checkout interaction operations understood by the gateway.
const (
	OperationAuthorize = "AUTHORIZE"
	OperationPurchase  = "PURCHASE"
	OperationVerify    = "VERIFY"
)

// Subsequent transaction operations.
const (
	OperationCapture = "CAPTURE"
	OperationRefund  = "REFUND"
	OperationVoid    = "VOID"
)

// OrderRequest describes the order a checkout session is created for. Amount
// is kept as a decimal string so the value reaches the gateway exactly as the
// caller supplied it.
type OrderRequest struct {
	ID          string
	Amount      string
	Currency    string
	Description string
}

// CheckoutOptions carries the optional parts of a session request. Customer,
// Billing and Shipping are relayed to the gateway verbatim; nil fields are
// omitted from the request body entirely.
type CheckoutOptions struct {
	ReturnURL  string
	TimeoutURL string
	CancelURL  string
	Customer   json.RawMessage
	Billing    json.RawMessage
	Shipping   json.RawMessage
}

// SessionResult is the outcome of INITIATE_CHECKOUT. The SuccessIndicator is
// the opaque token later echoed back on the completion redirect.
type SessionResult struct {
	SessionID        string
	SuccessIndicator string
}

// OrderDetails is the gateway-side order aggregate returned by order
// retrieval, including its transaction history.
type OrderDetails struct {
	ID                    string             `json:"id"`
	Amount                json.Number        `json:"amount"`
	Currency              string             `json:"currency"`
	Status                string             `json:"status"`
	Description           string             `json:"description"`
	CreationTime          string             `json:"creationTime"`
	TotalAuthorizedAmount json.Number        `json:"totalAuthorizedAmount"`
	TotalCapturedAmount   json.Number        `json:"totalCapturedAmount"`
	TotalRefundedAmount   json.Number        `json:"totalRefundedAmount"`
	Transaction           []TransactionEntry `json:"transaction"`
	SourceOfFunds         *SourceOfFunds     `json:"sourceOfFunds,omitempty"`
}

// TransactionEntry is one ledger entry of an order. The gateway nests the
// transaction detail under its own "transaction" key.
type TransactionEntry struct {
	ID           string            `json:"id,omitempty"`
	Transaction  TransactionDetail `json:"transaction"`
	Result       string            `json:"result,omitempty"`
	TimeOfRecord string            `json:"timeOfRecord,omitempty"`
}

// TransactionDetail holds the monetary part of a transaction entry.
type TransactionDetail struct {
	Type              string      `json:"type,omitempty"`
	Amount            json.Number `json:"amount,omitempty"`
	Currency          string      `json:"currency,omitempty"`
	AuthorizationCode string      `json:"authorizationCode,omitempty"`
	Receipt           string      `json:"receipt,omitempty"`
}

// SourceOfFunds describes how the order was paid.
type SourceOfFunds struct {
	Type     string          `json:"type,omitempty"`
	Provided *ProvidedFunds  `json:"provided,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

// ProvidedFunds holds the payment instrument details (masked by the gateway).
type ProvidedFunds struct {
	Card *CardDetails `json:"card,omitempty"`
}

// CardDetails is the masked card summary of a paid order.
type CardDetails struct {
	Number string          `json:"number,omitempty"`
	Scheme string          `json:"scheme,omitempty"`
	Brand  string          `json:"brand,omitempty"`
	Expiry json.RawMessage `json:"expiry,omitempty"`
}

// TransactionResult is the gateway's reply to a CAPTURE, REFUND or VOID call.
// The raw body is preserved so callers can relay it verbatim.
type TransactionResult struct {
	Result string
	Raw    json.RawMessage
}

// MarshalJSON re-emits the gateway's response unchanged.
func (r *TransactionResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}
