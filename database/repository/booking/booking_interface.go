package bookingRepo

import (
	"context"
	"time"

	"gigbook/models"
)

type BookingRepository interface {
	CreateMany(ctx context.Context, bookings []*models.Booking) error
	// FindOverlapping returns a non-cancelled booking of the offering whose range
	// intersects (start, end), or nil when the range is free.
	FindOverlapping(ctx context.Context, ref models.OfferingRef, start, end time.Time) (*models.Booking, error)
	ListByPayment(ctx context.Context, paymentID string) ([]models.Booking, error)
	ListByPaymentIDs(ctx context.Context, paymentIDs []string) ([]models.Booking, error)
	UpdateStatusByPayment(ctx context.Context, paymentID string, status models.BookingStatus) error
	// ReserveOffering writes the offering's lock document. Called inside a
	// transaction it makes two concurrent bookings of one offering conflict.
	ReserveOffering(ctx context.Context, ref models.OfferingRef) error
}
