package booking

import (
	"context"
	"fmt"

	"gigbook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultEscrowService) newNotification(receiverID, senderID, kind, title, body string) *models.Notification {
	now := s.now()
	return &models.Notification{
		ID:         uuid.New().String(),
		ReceiverID: receiverID,
		SenderID:   senderID,
		Type:       kind,
		Title:      title,
		Body:       body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// storeNotifications is called inside the transaction of the transition that
// produced the notifications.
func (s *DefaultEscrowService) storeNotifications(ctx context.Context, ns ...*models.Notification) error {
	for _, n := range ns {
		if err := s.Notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("store notification for %s: %w", n.ReceiverID, err)
		}
	}
	return nil
}

// emitAll runs after commit. Failures are logged and never undo the transition.
func (s *DefaultEscrowService) emitAll(ctx context.Context, ns ...*models.Notification) {
	if s.Emitter == nil {
		return
	}
	for _, n := range ns {
		if err := s.Emitter.Emit(ctx, n); err != nil {
			s.log().Warn("notification enqueue failed",
				zap.String("notificationId", n.ID),
				zap.String("receiverId", n.ReceiverID),
				zap.String("type", n.Type),
				zap.Error(err))
		}
	}
}

// reconciliationRequired reports money that moved at the gateway without the
// matching ledger write.
func (s *DefaultEscrowService) reconciliationRequired(op, reference string, err error, fields ...zap.Field) error {
	fields = append(fields,
		zap.String("event", "reconciliation_required"),
		zap.String("op", op),
		zap.String("gatewayReference", reference),
		zap.Error(err))
	s.log().Error("gateway call succeeded but ledger write failed", fields...)

	return wrapError(KindReconciliationRequired, err,
		"%s completed at the payment processor but could not be recorded; do not retry, contact support with reference %s", op, reference)
}
