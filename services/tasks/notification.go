package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeNotificationDeliver = "notification:deliver"
	QueueNotifications      = "notifications"
)

// NotificationPayload points the worker at a stored notification.
type NotificationPayload struct {
	NotificationID string `json:"notificationId"`
	ReceiverID     string `json:"receiverId"`
}

func NewNotificationTask(payload NotificationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationDeliver, b)
	opts := []asynq.Option{
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}

	return task, opts, nil
}

func ParseNotificationPayload(task *asynq.Task) (NotificationPayload, error) {
	var p NotificationPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
