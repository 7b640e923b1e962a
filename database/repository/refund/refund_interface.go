package refundRepo

import (
	"context"

	"gigbook/models"
)

type RefundRepository interface {
	Create(ctx context.Context, req *models.RefundRequest) error
	GetByID(ctx context.Context, id string) (*models.RefundRequest, error)
	// FindPendingByPayment returns the payment's PENDING request, or nil.
	FindPendingByPayment(ctx context.Context, paymentID string) (*models.RefundRequest, error)
	UpdateStatus(ctx context.Context, id string, from, to models.RefundStatus) error
	ListByStatus(ctx context.Context, status models.RefundStatus) ([]models.RefundRequest, error)
}
