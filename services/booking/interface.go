package booking

import (
	"context"
	"time"

	"gigbook/database/repository"
	bookingRepo "gigbook/database/repository/booking"
	directoryRepo "gigbook/database/repository/directory"
	notificationRepo "gigbook/database/repository/notification"
	paymentRepo "gigbook/database/repository/payment"
	refundRepo "gigbook/database/repository/refund"
	"gigbook/models"
	"gigbook/services/notification"
	"gigbook/services/payment"

	"go.uber.org/zap"
)

// EscrowService is the booking-and-escrow workflow: capture on booking, then
// request, release or refund of the held funds.
type EscrowService interface {
	CreateBookingAndHoldFunds(ctx context.Context, caller models.Caller, req models.BookingRequest) (*models.BookingResult, error)
	RequestPayment(ctx context.Context, caller models.Caller, paymentID string) (models.PaymentStatus, error)
	ReleaseFunds(ctx context.Context, caller models.Caller, paymentID string) (*models.ReleaseResult, error)
	RequestRefund(ctx context.Context, caller models.Caller, paymentID, reason string) (*models.RefundRequest, error)
	ApproveRefund(ctx context.Context, caller models.Caller, refundRequestID string) (*models.RefundResult, error)
	RejectRefund(ctx context.Context, caller models.Caller, refundRequestID string) (*models.RefundRequest, error)

	GetPaymentDetails(ctx context.Context, caller models.Caller) ([]models.PaymentDetails, error)
	GetMyTasks(ctx context.Context, caller models.Caller) ([]models.PaymentDetails, error)
	GetPendingRefundRequests(ctx context.Context, caller models.Caller) ([]models.RefundRequest, error)
}

// Locker serializes work on one key across instances.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// DefaultEscrowService implements EscrowService.
type DefaultEscrowService struct {
	Directory     directoryRepo.ProviderDirectory
	Users         directoryRepo.UserDirectory
	Payments      paymentRepo.PaymentRepository
	Bookings      bookingRepo.BookingRepository
	Refunds       refundRepo.RefundRepository
	Notifications notificationRepo.NotificationRepository
	Tx            repository.TxRunner
	Gateway       payment.Gateway
	Emitter       notification.Emitter
	Locker        Locker
	Logger        *zap.Logger

	// Location is the calendar weekday names are computed in. Defaults to UTC.
	Location        *time.Location
	FeePercent      int64
	DefaultCurrency string
	LockTTL         time.Duration
	Clock           func() time.Time
}

var _ EscrowService = (*DefaultEscrowService)(nil)

// persistTimeout bounds the writes that follow a completed gateway call.
const persistTimeout = 15 * time.Second

func (s *DefaultEscrowService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *DefaultEscrowService) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *DefaultEscrowService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// detached keeps post-gateway writes running even if the client goes away.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}
