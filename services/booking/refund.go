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

// RequestRefund opens a dispute on a HELD payment. Only the paying customer may
// do so, and only one request may be pending per payment.
func (s *DefaultEscrowService) RequestRefund(ctx context.Context, caller models.Caller, paymentID, reason string) (*models.RefundRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newError(KindInvalidRequest, "a reason is required")
	}

	release, err := s.lock(ctx, paymentLockKey(paymentID))
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if caller.ID != p.CustomerID {
		return nil, newError(KindForbidden, "only the customer who paid can request a refund")
	}
	if p.Status != models.PaymentHeld {
		return nil, invalidState("payment", p.Status, models.PaymentHeld)
	}

	pending, err := s.Refunds.FindPendingByPayment(ctx, p.ID)
	if err != nil {
		return nil, fromRepo(err, "refund requests of payment %s", p.ID)
	}
	if pending != nil {
		return nil, newError(KindInvalidState, "refund request %s is already pending for this payment", pending.ID)
	}

	now := s.now()
	rr := &models.RefundRequest{
		ID:         uuid.New().String(),
		PaymentID:  p.ID,
		CustomerID: p.CustomerID,
		ProviderID: p.ProviderID,
		Reason:     reason,
		Status:     models.RefundPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Refunds.Create(ctx, rr); err != nil {
		return nil, fromRepo(err, "refund request for payment %s", p.ID)
	}

	s.log().Info("refund requested", zap.String("paymentId", p.ID), zap.String("refundRequestId", rr.ID))
	return rr, nil
}

func (s *DefaultEscrowService) getRefundRequest(ctx context.Context, id string) (*models.RefundRequest, error) {
	rr, err := s.Refunds.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "refund request %s", id)
	}
	return rr, nil
}

// ApproveRefund refunds the provider share of a HELD payment and cancels its
// bookings. Approving an already refunded request returns the earlier result.
func (s *DefaultEscrowService) ApproveRefund(ctx context.Context, caller models.Caller, refundRequestID string) (*models.RefundResult, error) {
	if !caller.IsAdmin() {
		return nil, newError(KindForbidden, "only an administrator can approve refunds")
	}

	rr, err := s.getRefundRequest(ctx, refundRequestID)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, paymentLockKey(rr.PaymentID))
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := s.getPayment(ctx, rr.PaymentID)
	if err != nil {
		return nil, err
	}
	// Re-read under the lock.
	if rr, err = s.getRefundRequest(ctx, refundRequestID); err != nil {
		return nil, err
	}

	if rr.Status == models.RefundRefunded && p.ProviderTransferReversedID != nil {
		return &models.RefundResult{
			PaymentID:       p.ID,
			RefundRequestID: rr.ID,
			RefundedAmount:  p.ProviderShare,
			GatewayRefundID: *p.ProviderTransferReversedID,
			AlreadyRefunded: true,
		}, nil
	}
	if rr.Status != models.RefundPending {
		return nil, invalidState("refund request", rr.Status, models.RefundPending)
	}
	if p.Status != models.PaymentHeld {
		return nil, invalidState("payment", p.Status, models.PaymentHeld)
	}

	refundID, err := s.Gateway.Refund(ctx, payment.RefundRequest{
		IntentID: p.PaymentIntentID,
		Amount:   p.ProviderShare,
		Metadata: map[string]string{
			"refundRequestId": rr.ID,
			"reason":          rr.Reason,
			"type":            "ADMIN_APPROVED_REFUND",
		},
		IdempotencyKey: "payment:" + p.ID + ":refund",
	})
	if err != nil {
		return nil, wrapError(KindGatewayError, err, "refund failed")
	}

	pctx, cancel := detached(ctx)
	defer cancel()

	note := s.newNotification(p.CustomerID, "", models.NotificationRefundApproved, "Refund Approved",
		fmt.Sprintf("Your refund of %s has been approved.", formatMoney(p.ProviderShare, p.Currency)))
	err = s.Tx.WithTransaction(pctx, func(tx context.Context) error {
		update := models.PaymentUpdate{ProviderTransferReversedID: &refundID}
		if err := s.Payments.UpdateStatus(tx, p.ID, models.PaymentHeld, models.PaymentRefunded, update); err != nil {
			return err
		}
		if err := s.Refunds.UpdateStatus(tx, rr.ID, models.RefundPending, models.RefundRefunded); err != nil {
			return err
		}
		if err := s.Bookings.UpdateStatusByPayment(tx, p.ID, models.BookingCancelled); err != nil {
			return err
		}
		return s.storeNotifications(tx, note)
	})
	if err != nil {
		return nil, s.reconciliationRequired("refund", refundID, err,
			zap.String("paymentId", p.ID),
			zap.String("refundRequestId", rr.ID),
			zap.Int64("amount", p.ProviderShare),
			zap.String("currency", p.Currency))
	}

	s.log().Info("refund approved",
		zap.String("paymentId", p.ID),
		zap.String("refundRequestId", rr.ID),
		zap.String("refundId", refundID),
		zap.String("approvedBy", caller.ID))
	s.emitAll(pctx, note)

	return &models.RefundResult{
		PaymentID:       p.ID,
		RefundRequestID: rr.ID,
		RefundedAmount:  p.ProviderShare,
		GatewayRefundID: refundID,
	}, nil
}

// RejectRefund closes a pending request. The payment stays HELD.
func (s *DefaultEscrowService) RejectRefund(ctx context.Context, caller models.Caller, refundRequestID string) (*models.RefundRequest, error) {
	if !caller.IsAdmin() {
		return nil, newError(KindForbidden, "only an administrator can reject refunds")
	}

	rr, err := s.getRefundRequest(ctx, refundRequestID)
	if err != nil {
		return nil, err
	}
	if rr.Status != models.RefundPending {
		return nil, invalidState("refund request", rr.Status, models.RefundPending)
	}

	note := s.newNotification(rr.CustomerID, "", models.NotificationRefundRejected, "Refund Request Rejected",
		"Your refund request was reviewed and rejected. The payment remains held by the platform.")
	err = s.Tx.WithTransaction(ctx, func(tx context.Context) error {
		if err := s.Refunds.UpdateStatus(tx, rr.ID, models.RefundPending, models.RefundRejected); err != nil {
			return fromRepo(err, "refund request %s", rr.ID)
		}
		return s.storeNotifications(tx, note)
	})
	if err != nil {
		return nil, err
	}

	rr.Status = models.RefundRejected
	rr.UpdatedAt = s.now()
	s.log().Info("refund rejected", zap.String("refundRequestId", rr.ID), zap.String("rejectedBy", caller.ID))
	s.emitAll(ctx, note)
	return rr, nil
}
