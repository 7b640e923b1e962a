package booking

import (
	"context"
	"fmt"
	"strings"

	"gigbook/models"
	"gigbook/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const captureDescription = "Booking payment (held by platform until service delivered)"

// CreateBookingAndHoldFunds validates and prices the requested slots, captures
// the charge and records the payment with its bookings in one transaction.
// Nothing is charged unless every slot is valid; once the capture succeeds any
// later failure is reported as ReconciliationRequired.
func (s *DefaultEscrowService) CreateBookingAndHoldFunds(ctx context.Context, caller models.Caller, req models.BookingRequest) (*models.BookingResult, error) {
	ref, err := SelectorOf(&req)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, offeringLockKey(ref))
	if err != nil {
		return nil, err
	}
	defer release()

	off, err := s.ResolveOffering(ctx, ref)
	if err != nil {
		return nil, err
	}
	if off.ProviderID == caller.ID {
		return nil, newError(KindForbidden, "providers cannot book their own %s", strings.ToLower(string(ref.Kind)))
	}

	planned, err := s.ValidateSlots(ctx, off, req.Slots)
	if err != nil {
		return nil, err
	}

	fee := s.FeePercent
	if fee == 0 {
		fee = DefaultFeePercent
	}
	quote, err := CalculatePrice(off.HourlyRate, req.Slots, fee)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = strings.ToUpper(s.DefaultCurrency)
	}
	if currency == "" {
		currency = "USD"
	}

	customerID, err := s.ensureGatewayCustomer(ctx, caller)
	if err != nil {
		return nil, err
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}
	capture, err := s.Gateway.Capture(ctx, payment.CaptureRequest{
		CustomerID:      customerID,
		PaymentMethodID: req.PaymentMethodID,
		Amount:          quote.Amount,
		Currency:        currency,
		Description:     captureDescription,
		Metadata: map[string]string{
			"customerId": caller.ID,
			"providerId": off.ProviderID,
			"type":       "BOOKING_HELD",
		},
		IdempotencyKey: "booking:" + key,
	})
	if err != nil {
		return nil, wrapError(KindGatewayError, err, "payment capture failed")
	}
	if capture.Status != payment.CaptureStatusSucceeded {
		return nil, newError(KindGatewayError, "payment was not completed (status %s)", capture.Status)
	}

	// Funds are held from here on.
	pctx, cancel := detached(ctx)
	defer cancel()

	now := s.now()
	pay := &models.Payment{
		ID:              uuid.New().String(),
		CustomerID:      caller.ID,
		ProviderID:      off.ProviderID,
		Amount:          quote.Amount,
		Currency:        currency,
		PlatformShare:   quote.PlatformShare,
		ProviderShare:   quote.ProviderShare,
		Status:          models.PaymentHeld,
		PaymentIntentID: capture.IntentID,
		ChargeID:        capture.ChargeID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	bookings := make([]*models.Booking, len(planned))
	ids := make([]string, len(planned))
	for i, p := range planned {
		b := &models.Booking{
			ID:         uuid.New().String(),
			CustomerID: caller.ID,
			PaymentID:  pay.ID,
			BookDate:   p.BookDate,
			StartTime:  p.StartTime,
			EndTime:    p.EndTime,
			Status:     models.BookingPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		b.SetOffering(ref)
		bookings[i] = b
		ids[i] = b.ID
	}

	notes := []*models.Notification{
		s.newNotification(off.ProviderID, caller.ID, models.NotificationNewBooking, "New Booking Received",
			fmt.Sprintf("You have %d new booking(s). %s is held by the platform until the service is delivered.",
				len(bookings), formatMoney(pay.Amount, currency))),
		s.newNotification(caller.ID, "", models.NotificationPaymentHeld, "Booking Payment Received",
			fmt.Sprintf("Your payment of %s is held by the platform until the service is delivered.",
				formatMoney(pay.Amount, currency))),
	}

	err = s.Tx.WithTransaction(pctx, func(tx context.Context) error {
		if err := s.Bookings.ReserveOffering(tx, ref); err != nil {
			return err
		}
		if err := s.checkStoredOverlaps(tx, ref, planned); err != nil {
			return err
		}
		if err := s.Payments.Create(tx, pay); err != nil {
			return err
		}
		if err := s.Bookings.CreateMany(tx, bookings); err != nil {
			return err
		}
		if err := s.Payments.SetBookingIDs(tx, pay.ID, ids); err != nil {
			return err
		}
		return s.storeNotifications(tx, notes...)
	})
	if err != nil {
		return nil, s.reconciliationRequired("capture", capture.IntentID, err,
			zap.String("paymentId", pay.ID),
			zap.String("customerId", caller.ID),
			zap.String("offering", ref.Key()),
			zap.Int64("amount", pay.Amount),
			zap.String("currency", currency))
	}
	pay.BookingIDs = ids

	s.log().Info("booking created, funds held",
		zap.String("paymentId", pay.ID),
		zap.String("offering", ref.Key()),
		zap.Int("slots", len(bookings)),
		zap.Int64("amount", pay.Amount))

	s.emitAll(pctx, notes...)

	result := &models.BookingResult{
		Payment:  pay.Summary(),
		Bookings: make([]models.Booking, len(bookings)),
	}
	for i, b := range bookings {
		result.Bookings[i] = *b
	}
	return result, nil
}

// ensureGatewayCustomer returns the caller's processor customer id, creating
// and storing one on first use.
func (s *DefaultEscrowService) ensureGatewayCustomer(ctx context.Context, caller models.Caller) (string, error) {
	u, err := s.Users.GetUser(ctx, caller.ID)
	if err != nil {
		return "", fromRepo(err, "customer %s", caller.ID)
	}
	if u.CustomerID != "" {
		return u.CustomerID, nil
	}

	customerID, err := s.Gateway.CreateCustomer(ctx, payment.CustomerRequest{
		Email: u.Email,
		Name:  u.Name,
		Metadata: map[string]string{
			"userId": u.ID,
			"role":   string(u.Role),
		},
	})
	if err != nil {
		return "", wrapError(KindGatewayError, err, "could not register customer with the payment processor")
	}
	if err := s.Users.SetGatewayCustomerID(ctx, u.ID, customerID); err != nil {
		// The processor customer stays usable for this request.
		s.log().Warn("storing gateway customer id failed",
			zap.String("userId", u.ID),
			zap.String("gatewayCustomerId", customerID),
			zap.Error(err))
	}
	return customerID, nil
}
