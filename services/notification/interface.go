package notification

import (
	"context"
	"errors"
	"fmt"

	"gigbook/database/repository"
	directoryRepo "gigbook/database/repository/directory"
	notificationRepo "gigbook/database/repository/notification"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrGone marks a notification that can never be delivered; the worker drops it.
var ErrGone = errors.New("notification cannot be delivered")

// DeliveryService pushes stored notifications to their receivers.
type DeliveryService interface {
	Deliver(ctx context.Context, notificationID string) error
}

// PushSender is satisfied by *messaging.Client.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultDeliveryService marks notifications sent and pushes them over FCM
// when the receiver registered a device token. Push may be nil.
type DefaultDeliveryService struct {
	Notifications notificationRepo.NotificationRepository
	Users         directoryRepo.UserDirectory
	Push          PushSender
	Logger        *zap.Logger
}

func (s *DefaultDeliveryService) Deliver(ctx context.Context, notificationID string) error {
	n, err := s.Notifications.GetByID(ctx, notificationID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("notification %s: %w", notificationID, ErrGone)
	}
	if err != nil {
		return err
	}
	if n.Sent {
		return nil
	}

	u, err := s.Users.GetUser(ctx, n.ReceiverID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("receiver %s of notification %s: %w", n.ReceiverID, n.ID, ErrGone)
	}
	if err != nil {
		return err
	}

	if s.Push != nil && u.FCMToken != "" {
		msg := &messaging.Message{
			Token: u.FCMToken,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: map[string]string{
				"notificationId": n.ID,
				"type":           n.Type,
				"role":           string(u.Role),
			},
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					ChannelID: "high_priority",
					Sound:     "default",
				},
			},
			APNS: &messaging.APNSConfig{
				Headers: map[string]string{
					"apns-priority":  "10",
					"apns-push-type": "alert",
				},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{Sound: "default"},
				},
			},
		}
		if _, err := s.Push.Send(ctx, msg); err != nil {
			return fmt.Errorf("push notification %s: %w", n.ID, err)
		}
	} else {
		s.logger().Debug("no push token, storing notification only",
			zap.String("notificationId", n.ID),
			zap.String("receiverId", n.ReceiverID))
	}

	return s.Notifications.MarkSent(ctx, n.ID)
}

func (s *DefaultDeliveryService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
