package payment

import (
	"context"
	"fmt"
)

// CaptureStatusSucceeded is the only capture status that means funds were moved.
const CaptureStatusSucceeded = "succeeded"

// Gateway is the payment processor as the escrow workflow sees it.
// Every call that moves money carries an idempotency key.
type Gateway interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (string, error)
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
	Transfer(ctx context.Context, req TransferRequest) (string, error)
	Refund(ctx context.Context, req RefundRequest) (string, error)
}

type CustomerRequest struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// CaptureRequest charges the customer's payment method immediately.
// Amount is in currency minor units.
type CaptureRequest struct {
	CustomerID      string
	PaymentMethodID string
	Amount          int64
	Currency        string
	Description     string
	Metadata        map[string]string
	IdempotencyKey  string
}

type CaptureResult struct {
	IntentID string
	ChargeID string
	Status   string
}

type TransferRequest struct {
	DestinationID  string
	Amount         int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

type RefundRequest struct {
	IntentID       string
	Amount         int64
	Metadata       map[string]string
	IdempotencyKey string
}

// GatewayError carries the processor's own message so it can be logged and shown as is.
type GatewayError struct {
	Op         string
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %s failed (%s): %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway %s failed: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
