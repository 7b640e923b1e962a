package booking

import (
	"context"
	"testing"

	"gigbook/models"
)

func TestRequestRefund(t *testing.T) {
	h := newHarness()
	h.seedPayment("pay1", models.PaymentHeld)

	if _, err := h.svc.RequestRefund(context.Background(), provider, "pay1", "no show"); !IsKind(err, KindForbidden) {
		t.Fatalf("expected Forbidden for provider, got %v", err)
	}
	if _, err := h.svc.RequestRefund(context.Background(), customer, "pay1", "  "); !IsKind(err, KindInvalidRequest) {
		t.Fatalf("expected InvalidRequest for empty reason, got %v", err)
	}

	rr, err := h.svc.RequestRefund(context.Background(), customer, "pay1", "no show")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rr.Status != models.RefundPending || rr.ProviderID != "p1" || rr.Reason != "no show" {
		t.Fatalf("unexpected refund request %+v", rr)
	}

	if _, err := h.svc.RequestRefund(context.Background(), customer, "pay1", "again"); !IsKind(err, KindInvalidState) {
		t.Fatalf("expected InvalidState for duplicate request, got %v", err)
	}
}

func TestRequestRefundOnlyWhileHeld(t *testing.T) {
	for _, status := range []models.PaymentStatus{models.PaymentRequested, models.PaymentReleased, models.PaymentRefunded} {
		h := newHarness()
		h.seedPayment("pay1", status)
		if _, err := h.svc.RequestRefund(context.Background(), customer, "pay1", "late"); !IsKind(err, KindInvalidState) {
			t.Errorf("%s: expected InvalidState, got %v", status, err)
		}
	}
}

func seedRefundRequest(h *harness, id, paymentID string, status models.RefundStatus) {
	h.refunds.byID[id] = models.RefundRequest{
		ID:         id,
		PaymentID:  paymentID,
		CustomerID: "c1",
		ProviderID: "p1",
		Reason:     "no show",
		Status:     status,
	}
}

func TestApproveRefundOnHeldPayment(t *testing.T) {
	h := newHarness()
	h.seedPayment("pay1", models.PaymentHeld)
	seedRefundRequest(h, "rr1", "pay1", models.RefundPending)

	res, err := h.svc.ApproveRefund(context.Background(), admin, "rr1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.RefundedAmount != 3600 || res.GatewayRefundID != "re_1" || res.AlreadyRefunded {
		t.Fatalf("unexpected result %+v", res)
	}

	rf := h.gateway.refunds[0]
	if rf.IntentID != "pi_pay1" || rf.Amount != 3600 || rf.IdempotencyKey != "payment:pay1:refund" {
		t.Fatalf("unexpected refund call %+v", rf)
	}
	if rf.Metadata["type"] != "ADMIN_APPROVED_REFUND" || rf.Metadata["refundRequestId"] != "rr1" {
		t.Fatalf("unexpected refund metadata %v", rf.Metadata)
	}

	p := h.payments.byID["pay1"]
	if p.Status != models.PaymentRefunded || p.ProviderTransferReversedID == nil || *p.ProviderTransferReversedID != "re_1" {
		t.Fatalf("unexpected payment %+v", p)
	}
	if h.refunds.byID["rr1"].Status != models.RefundRefunded {
		t.Fatalf("refund request status %s", h.refunds.byID["rr1"].Status)
	}
	if h.bookings.all[0].Status != models.BookingCancelled {
		t.Fatalf("expected booking cancelled, got %s", h.bookings.all[0].Status)
	}
	if got := h.notifications.types(); len(got) != 1 || got[0] != models.NotificationRefundApproved {
		t.Fatalf("unexpected notifications %v", got)
	}

	again, err := h.svc.ApproveRefund(context.Background(), admin, "rr1")
	if err != nil || !again.AlreadyRefunded || again.GatewayRefundID != "re_1" {
		t.Fatalf("expected idempotent repeat, got %+v, %v", again, err)
	}
	if len(h.gateway.refunds) != 1 {
		t.Fatalf("expected exactly one refund call, got %d", len(h.gateway.refunds))
	}
}

func TestApproveRefundOnlyFromHeld(t *testing.T) {
	for _, status := range []models.PaymentStatus{models.PaymentRequested, models.PaymentReleased, models.PaymentRefunded} {
		h := newHarness()
		h.seedPayment("pay1", status)
		seedRefundRequest(h, "rr1", "pay1", models.RefundPending)

		_, err := h.svc.ApproveRefund(context.Background(), admin, "rr1")
		if !IsKind(err, KindInvalidState) {
			t.Errorf("%s: expected InvalidState, got %v", status, err)
		}
		if len(h.gateway.refunds) != 0 {
			t.Errorf("%s: no refund call expected", status)
		}
	}
}

func TestApproveRefundGuards(t *testing.T) {
	h := newHarness()
	h.seedPayment("pay1", models.PaymentHeld)
	seedRefundRequest(h, "rr1", "pay1", models.RefundRejected)

	if _, err := h.svc.ApproveRefund(context.Background(), customer, "rr1"); !IsKind(err, KindForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	if _, err := h.svc.ApproveRefund(context.Background(), admin, "rr1"); !IsKind(err, KindInvalidState) {
		t.Fatalf("expected InvalidState for rejected request, got %v", err)
	}
	if _, err := h.svc.ApproveRefund(context.Background(), admin, "missing"); !IsKind(err, KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestApproveRefundWriteFailureNeedsReconciliation(t *testing.T) {
	h := newHarness()
	h.seedPayment("pay1", models.PaymentHeld)
	seedRefundRequest(h, "rr1", "pay1", models.RefundPending)
	h.tx.err = errWriteConflict

	_, err := h.svc.ApproveRefund(context.Background(), admin, "rr1")
	if !IsKind(err, KindReconciliationRequired) {
		t.Fatalf("expected ReconciliationRequired, got %v", err)
	}
}

func TestRejectRefund(t *testing.T) {
	h := newHarness()
	h.seedPayment("pay1", models.PaymentHeld)
	seedRefundRequest(h, "rr1", "pay1", models.RefundPending)

	if _, err := h.svc.RejectRefund(context.Background(), customer, "rr1"); !IsKind(err, KindForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	rr, err := h.svc.RejectRefund(context.Background(), admin, "rr1")
	if err != nil || rr.Status != models.RefundRejected {
		t.Fatalf("expected REJECTED, got %+v, %v", rr, err)
	}
	if h.payments.byID["pay1"].Status != models.PaymentHeld {
		t.Fatal("payment must stay HELD after a rejection")
	}
	if _, err := h.svc.RejectRefund(context.Background(), admin, "rr1"); !IsKind(err, KindInvalidState) {
		t.Fatalf("expected InvalidState on second reject, got %v", err)
	}

	// A rejected request does not block a new one.
	if _, err := h.svc.RequestRefund(context.Background(), customer, "pay1", "still no show"); err != nil {
		t.Fatalf("new request after rejection: %v", err)
	}
}
