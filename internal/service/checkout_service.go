package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/lakpay/mpgs-hosted-checkout/internal/dto"
	"github.com/lakpay/mpgs-hosted-checkout/internal/gateway"
	"github.com/lakpay/mpgs-hosted-checkout/internal/logger"
	"github.com/lakpay/mpgs-hosted-checkout/internal/metrics"
	"github.com/lakpay/mpgs-hosted-checkout/internal/session"
	"github.com/lakpay/mpgs-hosted-checkout/internal/telemetry"
)

// CheckoutService drives the hosted-checkout flow: session creation, the
// capture/refund/void operations, order result retrieval and completion
// verification.
type CheckoutService interface {
	InitiateCheckout(ctx context.Context, req *dto.InitiateCheckoutRequest) (*dto.InitiateCheckoutResponse, error)
	SubsequentOperation(ctx context.Context, req *dto.SubsequentOperationRequest) (*dto.SubsequentOperationResponse, error)
	GetOrderResult(ctx context.Context, orderID string) (*dto.OrderResultResponse, error)
	VerifyResult(ctx context.Context, orderID, resultIndicator string) (*dto.VerifyResultResponse, error)
}

// CheckoutServiceConfig holds the defaults applied to incoming requests.
type CheckoutServiceConfig struct {
	Currency         string
	DefaultOperation string
}

type checkoutService struct {
	gw     gateway.API
	store  session.Store
	config *CheckoutServiceConfig
}

// NewCheckoutService creates the checkout service.
func NewCheckoutService(gw gateway.API, store session.Store, cfg *CheckoutServiceConfig) CheckoutService {
	if cfg == nil {
		cfg = &CheckoutServiceConfig{}
	}
	if cfg.DefaultOperation == "" {
		cfg.DefaultOperation = gateway.OperationAuthorize
	}
	return &checkoutService{
		gw:     gw,
		store:  store,
		config: cfg,
	}
}

// InitiateCheckout fills in request defaults, creates the gateway session and
// records the successIndicator for later redirect verification.
func (s *checkoutService) InitiateCheckout(ctx context.Context, req *dto.InitiateCheckoutRequest) (*dto.InitiateCheckoutResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.initiate")
	defer span.End()

	orderID := req.OrderID
	if orderID == "" {
		orderID = generateOrderID()
	}

	currency := req.Currency
	if currency == "" {
		currency = s.config.Currency
	}

	description := req.Description
	if description == "" {
		description = "Online Purchase"
	}

	operation := strings.ToUpper(req.Operation)
	if operation == "" {
		operation = s.config.DefaultOperation
	}

	order := gateway.OrderRequest{
		ID:          orderID,
		Amount:      req.Amount.String(),
		Currency:    currency,
		Description: description,
	}
	opts := &gateway.CheckoutOptions{
		ReturnURL: req.ReturnURL,
		Customer:  req.Customer,
		Billing:   req.Billing,
		Shipping:  req.Shipping,
	}

	result, err := timedCall(ctx, "INITIATE_CHECKOUT", func() (*gateway.SessionResult, error) {
		return s.gw.CreateSession(ctx, order, operation, opts)
	})
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	metrics.SessionsCreated.Inc(ctx)

	// A failed session save only degrades the receipt verification step, the
	// checkout itself proceeds.
	if putErr := s.store.Put(ctx, &session.CheckoutSession{
		OrderID:          orderID,
		SessionID:        result.SessionID,
		SuccessIndicator: result.SuccessIndicator,
		CreatedAt:        time.Now().UTC(),
	}); putErr != nil {
		logger.Get().Warn("failed to store checkout session",
			zap.String("order_id", orderID),
			zap.Error(putErr),
		)
	}

	return &dto.InitiateCheckoutResponse{
		Success:          true,
		SessionID:        result.SessionID,
		SuccessIndicator: result.SuccessIndicator,
		OrderID:          orderID,
	}, nil
}

// SubsequentOperation dispatches a CAPTURE, REFUND or VOID against an
// existing order transaction.
func (s *checkoutService) SubsequentOperation(ctx context.Context, req *dto.SubsequentOperationRequest) (*dto.SubsequentOperationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.operation")
	defer span.End()

	if req.Operation == "" {
		return nil, &gateway.ValidationError{Reason: "operation type is required"}
	}
	if req.OrderID == "" {
		return nil, &gateway.ValidationError{Reason: "order ID is required"}
	}
	if req.TransactionID == "" {
		return nil, &gateway.ValidationError{Reason: "transaction ID is required"}
	}

	operation := strings.ToUpper(req.Operation)

	var (
		result *gateway.TransactionResult
		err    error
	)
	switch operation {
	case gateway.OperationCapture:
		result, err = timedCall(ctx, operation, func() (*gateway.TransactionResult, error) {
			return s.gw.Capture(ctx, req.OrderID, req.TransactionID, req.Amount.String(), req.Currency)
		})
	case gateway.OperationRefund:
		result, err = timedCall(ctx, operation, func() (*gateway.TransactionResult, error) {
			return s.gw.Refund(ctx, req.OrderID, req.TransactionID, req.Amount.String(), req.Currency)
		})
	case gateway.OperationVoid:
		result, err = timedCall(ctx, operation, func() (*gateway.TransactionResult, error) {
			return s.gw.Void(ctx, req.OrderID, req.TransactionID)
		})
	default:
		return nil, &gateway.ValidationError{Reason: "invalid operation type, supported: CAPTURE, REFUND, VOID"}
	}
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	return &dto.SubsequentOperationResponse{
		Success:       true,
		Operation:     operation,
		OrderID:       req.OrderID,
		TransactionID: req.TransactionID,
		Response:      result,
	}, nil
}

// GetOrderResult retrieves the order aggregate and reshapes it for the
// browser.
func (s *checkoutService) GetOrderResult(ctx context.Context, orderID string) (*dto.OrderResultResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.order_result")
	defer span.End()

	if orderID == "" {
		return nil, &gateway.ValidationError{Reason: "order ID is required"}
	}

	metrics.OrderLookups.Inc(ctx)

	order, err := timedCall(ctx, "RETRIEVE_ORDER", func() (*gateway.OrderDetails, error) {
		return s.gw.RetrieveOrder(ctx, orderID)
	})
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	return dto.FromOrderDetails(order), nil
}

// VerifyResult compares the indicator echoed back on the completion redirect
// against the one stored at initiation. The comparison is exact and
// case-sensitive; a missing session verifies as false, never as an error. A
// matched session is cleared so the indicator cannot be replayed.
func (s *checkoutService) VerifyResult(ctx context.Context, orderID, resultIndicator string) (*dto.VerifyResultResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.verify_result")
	defer span.End()

	if orderID == "" {
		return nil, &gateway.ValidationError{Reason: "order ID is required"}
	}

	metrics.IndicatorChecks.Inc(ctx)

	stored, err := s.store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return &dto.VerifyResultResponse{Success: true, Verified: false, OrderID: orderID}, nil
		}
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	verified := resultIndicator != "" && stored.SuccessIndicator == resultIndicator
	if verified {
		metrics.IndicatorMatches.Inc(ctx)
		if delErr := s.store.Delete(ctx, orderID); delErr != nil {
			logger.Get().Warn("failed to clear checkout session",
				zap.String("order_id", orderID),
				zap.Error(delErr),
			)
		}
	}

	return &dto.VerifyResultResponse{Success: true, Verified: verified, OrderID: orderID}, nil
}

// timedCall wraps one gateway exchange with call metrics.
func timedCall[T any](ctx context.Context, operation string, fn func() (T, error)) (T, error) {
	start := time.Now()
	opAttr := attribute.String("operation", operation)

	metrics.GatewayCalls.Inc(ctx, opAttr)
	result, err := fn()
	metrics.GatewayCallDuration.Record(ctx, time.Since(start).Seconds(), opAttr)

	if err != nil {
		metrics.GatewayFailures.Inc(ctx, opAttr, attribute.String("kind", errorKind(err)))
	}
	return result, err
}

func errorKind(err error) string {
	var (
		vErr *gateway.ValidationError
		tErr *gateway.TransportError
		gErr *gateway.GatewayError
		pErr *gateway.ProtocolError
	)
	switch {
	case errors.As(err, &vErr):
		return "validation"
	case errors.As(err, &tErr):
		return "transport"
	case errors.As(err, &gErr):
		return "gateway"
	case errors.As(err, &pErr):
		return "protocol"
	default:
		return "unknown"
	}
}

func generateOrderID() string {
	return fmt.Sprintf("ORDER-%s", strings.ToUpper(uuid.New().String()[:8]))
}
