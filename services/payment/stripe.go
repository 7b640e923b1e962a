package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway on top of Stripe PaymentIntents, Transfers and Refunds.
type StripeGateway struct {
	sc      *client.API
	timeout time.Duration
	logger  *zap.Logger
}

func NewStripeGateway(key string, timeout time.Duration, logger *zap.Logger) *StripeGateway {
	return NewStripeGatewayWithBackends(key, nil, timeout, logger)
}

// NewStripeGatewayWithBackends lets callers point the client at another API host.
func NewStripeGatewayWithBackends(key string, backends *stripe.Backends, timeout time.Duration, logger *zap.Logger) *StripeGateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StripeGateway{
		sc:      client.New(key, backends),
		timeout: timeout,
		logger:  logger,
	}
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, req CustomerRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
		Name:  stripe.String(req.Name),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	cus, err := g.sc.Customers.New(params)
	if err != nil {
		return "", g.toGatewayError("create_customer", err)
	}
	return cus.ID, nil
}

func (g *StripeGateway) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		Customer:      stripe.String(req.CustomerID),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, g.toGatewayError("capture", err)
	}

	res := &CaptureResult{IntentID: pi.ID, Status: string(pi.Status)}
	if pi.LatestCharge != nil {
		res.ChargeID = pi.LatestCharge.ID
	}
	g.logger.Debug("payment intent confirmed",
		zap.String("intentId", pi.ID),
		zap.String("status", res.Status),
		zap.Int64("amount", req.Amount))
	return res, nil
}

func (g *StripeGateway) Transfer(ctx context.Context, req TransferRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Destination: stripe.String(req.DestinationID),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	tr, err := g.sc.Transfers.New(params)
	if err != nil {
		return "", g.toGatewayError("transfer", err)
	}
	return tr.ID, nil
}

func (g *StripeGateway) Refund(ctx context.Context, req RefundRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.IntentID),
		Amount:        stripe.Int64(req.Amount),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	rf, err := g.sc.Refunds.New(params)
	if err != nil {
		return "", g.toGatewayError("refund", err)
	}
	return rf.ID, nil
}

func (g *StripeGateway) toGatewayError(op string, err error) *GatewayError {
	gerr := &GatewayError{Op: op, Message: err.Error(), Err: err}

	var serr *stripe.Error
	if errors.As(err, &serr) {
		gerr.Code = string(serr.Code)
		gerr.Message = serr.Msg
		gerr.StatusCode = serr.HTTPStatusCode
	}
	g.logger.Warn("stripe call failed",
		zap.String("op", op),
		zap.String("code", gerr.Code),
		zap.String("message", gerr.Message))
	return gerr
}
