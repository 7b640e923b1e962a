package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gigbook/config"
	"gigbook/services/notification"
	"gigbook/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotificationWorker drains the notifications queue.
type NotificationWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// QueueRedisOpt is the asynq connection for REDIS_QUEUE_DB, shared by the
// client that enqueues and the server that consumes.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

func NewNotificationWorker(delivery notification.DeliveryService, logger *zap.Logger) *NotificationWorker {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QueueNotifications: 1,
			},
			Logger:   logger.Sugar(),
			LogLevel: asynq.WarnLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationDeliver, HandleNotificationTask(delivery, logger))

	return &NotificationWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker in the background, retrying startup with a growing
// delay, and watches the queue's Redis until ctx is done.
func (w *NotificationWorker) Start(ctx context.Context) {
	go w.monitorRedisConnection(ctx)

	go func() {
		w.logger.Info("starting notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("notification worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))

			if attempts == maxAttempts {
				w.logger.Fatal("notification worker: max retry attempts reached")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
}

// Shutdown waits for in-flight tasks to finish.
func (w *NotificationWorker) Shutdown() {
	w.srv.Shutdown()
}

// HandleNotificationTask delivers one stored notification. Notifications that
// can never be delivered are dropped instead of retried.
func HandleNotificationTask(delivery notification.DeliveryService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseNotificationPayload(task)
		if err != nil || p.NotificationID == "" {
			logger.Error("invalid notification payload", zap.ByteString("payload", task.Payload()), zap.Error(err))
			return fmt.Errorf("invalid notification payload: %w", asynq.SkipRetry)
		}

		err = delivery.Deliver(ctx, p.NotificationID)
		switch {
		case err == nil:
			logger.Debug("notification delivered",
				zap.String("notificationId", p.NotificationID),
				zap.String("receiverId", p.ReceiverID))
			return nil
		case errors.Is(err, notification.ErrGone):
			logger.Warn("dropping undeliverable notification",
				zap.String("notificationId", p.NotificationID),
				zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		default:
			logger.Warn("notification delivery failed, will retry",
				zap.String("notificationId", p.NotificationID),
				zap.Error(err))
			return err
		}
	}
}

// monitorRedisConnection pings the queue's Redis periodically to surface
// failures at runtime.
func (w *NotificationWorker) monitorRedisConnection(ctx context.Context) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				w.logger.Warn("queue redis connection lost", zap.Error(err))
			}
		}
	}
}
