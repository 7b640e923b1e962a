package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gigbook/services/notification"
	"gigbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type stubDelivery struct {
	err error
	got []string
}

func (s *stubDelivery) Deliver(_ context.Context, id string) error {
	s.got = append(s.got, id)
	return s.err
}

func task(t *testing.T, id string) *asynq.Task {
	t.Helper()
	tk, _, err := tasks.NewNotificationTask(tasks.NotificationPayload{NotificationID: id, ReceiverID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	return tk
}

func TestHandleNotificationTaskDelivers(t *testing.T) {
	d := &stubDelivery{}
	h := HandleNotificationTask(d, zap.NewNop())

	if err := h(context.Background(), task(t, "n1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.got) != 1 || d.got[0] != "n1" {
		t.Fatalf("expected delivery of n1, got %v", d.got)
	}
}

func TestHandleNotificationTaskSkipsRetryWhenGone(t *testing.T) {
	d := &stubDelivery{err: fmt.Errorf("receiver u1: %w", notification.ErrGone)}
	h := HandleNotificationTask(d, zap.NewNop())

	err := h(context.Background(), task(t, "n1"))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandleNotificationTaskRetriesTransientErrors(t *testing.T) {
	transient := errors.New("mongo timeout")
	h := HandleNotificationTask(&stubDelivery{err: transient}, zap.NewNop())

	err := h(context.Background(), task(t, "n1"))
	if !errors.Is(err, transient) || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestHandleNotificationTaskRejectsBadPayload(t *testing.T) {
	d := &stubDelivery{}
	h := HandleNotificationTask(d, zap.NewNop())

	err := h(context.Background(), asynq.NewTask(tasks.TypeNotificationDeliver, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if len(d.got) != 0 {
		t.Fatal("delivery should not run for a bad payload")
	}
}
