package notificationRepo

import (
	"context"

	"gigbook/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	MarkSent(ctx context.Context, id string) error
}
