package paymentRepo

import (
	"context"

	"gigbook/models"
)

// PaymentRepository persists escrow ledger entries. Status changes go through
// UpdateStatus only, which is conditional on the current status.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	SetBookingIDs(ctx context.Context, id string, bookingIDs []string) error
	UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus, update models.PaymentUpdate) error
	ListByCustomer(ctx context.Context, customerID string) ([]models.Payment, error)
	ListByProvider(ctx context.Context, providerID string) ([]models.Payment, error)
}
