package notification

import (
	"context"
	"fmt"

	"gigbook/models"
	"gigbook/services/tasks"

	"github.com/hibiken/asynq"
)

// Emitter hands a stored notification over for delivery. Callers treat it as
// fire-and-forget: an error is logged, never rolled back.
type Emitter interface {
	Emit(ctx context.Context, n *models.Notification) error
}

// AsynqEmitter enqueues delivery tasks on the notifications queue.
type AsynqEmitter struct {
	client *asynq.Client
}

func NewAsynqEmitter(client *asynq.Client) *AsynqEmitter {
	return &AsynqEmitter{client: client}
}

func (e *AsynqEmitter) Emit(ctx context.Context, n *models.Notification) error {
	task, opts, err := tasks.NewNotificationTask(tasks.NotificationPayload{
		NotificationID: n.ID,
		ReceiverID:     n.ReceiverID,
	})
	if err != nil {
		return fmt.Errorf("build notification task: %w", err)
	}
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue notification %s: %w", n.ID, err)
	}
	return nil
}
