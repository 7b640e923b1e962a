package booking

import (
	"context"

	"gigbook/models"
)

// GetPaymentDetails lists the caller's payments as a customer, with their bookings.
func (s *DefaultEscrowService) GetPaymentDetails(ctx context.Context, caller models.Caller) ([]models.PaymentDetails, error) {
	payments, err := s.Payments.ListByCustomer(ctx, caller.ID)
	if err != nil {
		return nil, fromRepo(err, "payments of customer %s", caller.ID)
	}
	return s.withBookings(ctx, payments, false)
}

// GetMyTasks lists the payments the caller is the provider of, with the share split.
func (s *DefaultEscrowService) GetMyTasks(ctx context.Context, caller models.Caller) ([]models.PaymentDetails, error) {
	payments, err := s.Payments.ListByProvider(ctx, caller.ID)
	if err != nil {
		return nil, fromRepo(err, "payments of provider %s", caller.ID)
	}
	return s.withBookings(ctx, payments, true)
}

func (s *DefaultEscrowService) GetPendingRefundRequests(ctx context.Context, caller models.Caller) ([]models.RefundRequest, error) {
	if !caller.IsAdmin() {
		return nil, newError(KindForbidden, "only an administrator can list refund requests")
	}
	reqs, err := s.Refunds.ListByStatus(ctx, models.RefundPending)
	if err != nil {
		return nil, fromRepo(err, "pending refund requests")
	}
	return reqs, nil
}

func (s *DefaultEscrowService) withBookings(ctx context.Context, payments []models.Payment, shares bool) ([]models.PaymentDetails, error) {
	out := make([]models.PaymentDetails, 0, len(payments))
	if len(payments) == 0 {
		return out, nil
	}

	ids := make([]string, len(payments))
	for i, p := range payments {
		ids[i] = p.ID
	}
	bookings, err := s.Bookings.ListByPaymentIDs(ctx, ids)
	if err != nil {
		return nil, fromRepo(err, "bookings")
	}
	byPayment := make(map[string][]models.Booking, len(payments))
	for _, b := range bookings {
		byPayment[b.PaymentID] = append(byPayment[b.PaymentID], b)
	}

	for _, p := range payments {
		d := models.PaymentDetails{
			PaymentID:  p.ID,
			Status:     p.Status,
			Amount:     p.Amount,
			Currency:   p.Currency,
			CustomerID: p.CustomerID,
			ProviderID: p.ProviderID,
			CreatedAt:  p.CreatedAt,
			Bookings:   byPayment[p.ID],
		}
		if d.Bookings == nil {
			d.Bookings = []models.Booking{}
		}
		if shares {
			d.PlatformShare = p.PlatformShare
			d.ProviderShare = p.ProviderShare
		}
		out = append(out, d)
	}
	return out, nil
}
