package booking

import (
	"context"
	"fmt"

	"gigbook/models"
	"gigbook/services/payment"

	"go.uber.org/zap"
)

func (s *DefaultEscrowService) getPayment(ctx context.Context, id string) (*models.Payment, error) {
	p, err := s.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "payment %s", id)
	}
	return p, nil
}

// RequestPayment moves a payment from HELD to REQUESTED on behalf of the provider.
func (s *DefaultEscrowService) RequestPayment(ctx context.Context, caller models.Caller, paymentID string) (models.PaymentStatus, error) {
	release, err := s.lock(ctx, paymentLockKey(paymentID))
	if err != nil {
		return "", err
	}
	defer release()

	p, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if caller.ID != p.ProviderID && !caller.IsAdmin() {
		return "", newError(KindForbidden, "only the provider of this payment can request it")
	}
	if p.Status != models.PaymentHeld {
		return "", invalidState("payment", p.Status, models.PaymentHeld)
	}

	note := s.newNotification(p.CustomerID, p.ProviderID, models.NotificationPaymentRequest, "Payment Requested",
		fmt.Sprintf("Your provider has requested release of %s. Release it once the service is delivered.",
			formatMoney(p.Amount, p.Currency)))

	err = s.Tx.WithTransaction(ctx, func(tx context.Context) error {
		if err := s.Payments.UpdateStatus(tx, p.ID, models.PaymentHeld, models.PaymentRequested, models.PaymentUpdate{}); err != nil {
			return fromRepo(err, "payment %s", p.ID)
		}
		return s.storeNotifications(tx, note)
	})
	if err != nil {
		return "", err
	}

	s.log().Info("payment requested", zap.String("paymentId", p.ID), zap.String("by", caller.ID))
	s.emitAll(ctx, note)
	return models.PaymentRequested, nil
}

// ReleaseFunds transfers the provider share and completes the bookings.
// Once a transfer is recorded, repeat calls return it without a new transfer.
func (s *DefaultEscrowService) ReleaseFunds(ctx context.Context, caller models.Caller, paymentID string) (*models.ReleaseResult, error) {
	release, err := s.lock(ctx, paymentLockKey(paymentID))
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if caller.ID != p.CustomerID && !caller.IsAdmin() {
		return nil, newError(KindForbidden, "only the customer who paid can release this payment")
	}
	if p.ProviderTransferID != nil {
		return &models.ReleaseResult{
			PaymentID:       p.ID,
			TransferID:      *p.ProviderTransferID,
			Amount:          p.ProviderShare,
			AlreadyReleased: true,
			Message:         "funds were already released",
		}, nil
	}
	if p.Status != models.PaymentRequested {
		return nil, invalidState("payment", p.Status, models.PaymentRequested)
	}

	bookings, err := s.Bookings.ListByPayment(ctx, p.ID)
	if err != nil {
		return nil, fromRepo(err, "bookings of payment %s", p.ID)
	}
	for _, b := range bookings {
		if b.Status != models.BookingPending {
			return nil, invalidState("booking "+b.ID, b.Status, models.BookingPending)
		}
	}

	dest, err := s.Directory.GetPayoutDestination(ctx, p.ProviderID)
	if err != nil {
		return nil, fromRepo(err, "provider %s", p.ProviderID)
	}
	if dest == "" {
		return nil, newError(KindInvalidState, "provider has no linked payout destination")
	}

	transferID, err := s.Gateway.Transfer(ctx, payment.TransferRequest{
		DestinationID: dest,
		Amount:        p.ProviderShare,
		Currency:      p.Currency,
		Metadata: map[string]string{
			"paymentId":  p.ID,
			"providerId": p.ProviderID,
			"type":       "PROVIDER_PAYOUT",
		},
		IdempotencyKey: "payment:" + p.ID + ":release",
	})
	if err != nil {
		return nil, wrapError(KindGatewayError, err, "transfer to provider failed")
	}

	pctx, cancel := detached(ctx)
	defer cancel()

	notes := []*models.Notification{
		s.newNotification(p.CustomerID, "", models.NotificationFundsReleased, "Funds Released",
			fmt.Sprintf("You released %s to your provider.", formatMoney(p.ProviderShare, p.Currency))),
		s.newNotification(p.ProviderID, p.CustomerID, models.NotificationPayoutSent, "Payout Sent",
			fmt.Sprintf("A payout of %s has been sent to your account.", formatMoney(p.ProviderShare, p.Currency))),
	}
	err = s.Tx.WithTransaction(pctx, func(tx context.Context) error {
		update := models.PaymentUpdate{ProviderTransferID: &transferID}
		if err := s.Payments.UpdateStatus(tx, p.ID, models.PaymentRequested, models.PaymentReleased, update); err != nil {
			return err
		}
		if err := s.Bookings.UpdateStatusByPayment(tx, p.ID, models.BookingCompleted); err != nil {
			return err
		}
		return s.storeNotifications(tx, notes...)
	})
	if err != nil {
		return nil, s.reconciliationRequired("release", transferID, err,
			zap.String("paymentId", p.ID),
			zap.String("providerId", p.ProviderID),
			zap.Int64("amount", p.ProviderShare),
			zap.String("currency", p.Currency))
	}

	s.log().Info("funds released",
		zap.String("paymentId", p.ID),
		zap.String("transferId", transferID),
		zap.Int64("amount", p.ProviderShare))
	s.emitAll(pctx, notes...)

	return &models.ReleaseResult{
		PaymentID:  p.ID,
		TransferID: transferID,
		Amount:     p.ProviderShare,
		Message:    "funds released to provider",
	}, nil
}
