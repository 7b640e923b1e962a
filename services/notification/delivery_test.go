package notification

import (
	"context"
	"errors"
	"testing"

	"gigbook/database/repository"
	"gigbook/models"

	"firebase.google.com/go/v4/messaging"
)

type memNotifications struct {
	items map[string]*models.Notification
}

func (m *memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.items[n.ID] = n
	return nil
}

func (m *memNotifications) GetByID(_ context.Context, id string) (*models.Notification, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memNotifications) MarkSent(_ context.Context, id string) error {
	m.items[id].Sent = true
	return nil
}

type memUsers map[string]*models.User

func (m memUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m memUsers) SetGatewayCustomerID(context.Context, string, string) error { return nil }

type fakePush struct {
	err  error
	sent []*messaging.Message
}

func (f *fakePush) Send(_ context.Context, msg *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "projects/test/messages/1", nil
}

func newDelivery(push PushSender) (*DefaultDeliveryService, *memNotifications) {
	repo := &memNotifications{items: map[string]*models.Notification{
		"n1": {ID: "n1", ReceiverID: "u1", Type: models.NotificationPaymentHeld, Title: "Payment held", Body: "Your payment is held"},
		"n2": {ID: "n2", ReceiverID: "u2", Type: models.NotificationNewBooking, Title: "New booking"},
		"n3": {ID: "n3", ReceiverID: "ghost"},
	}}
	users := memUsers{
		"u1": {ID: "u1", Role: models.RoleUser, FCMToken: "tok-1"},
		"u2": {ID: "u2", Role: models.RoleMusician},
	}
	return &DefaultDeliveryService{Notifications: repo, Users: users, Push: push}, repo
}

func TestDeliverPushesAndMarksSent(t *testing.T) {
	push := &fakePush{}
	svc, repo := newDelivery(push)

	if err := svc.Deliver(context.Background(), "n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(push.sent) != 1 {
		t.Fatalf("expected one push, got %d", len(push.sent))
	}
	msg := push.sent[0]
	if msg.Token != "tok-1" || msg.Notification.Title != "Payment held" || msg.Data["notificationId"] != "n1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !repo.items["n1"].Sent {
		t.Fatal("notification should be marked sent")
	}
}

func TestDeliverWithoutTokenOnlyMarksSent(t *testing.T) {
	push := &fakePush{}
	svc, repo := newDelivery(push)

	if err := svc.Deliver(context.Background(), "n2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(push.sent) != 0 {
		t.Fatal("no push expected without a device token")
	}
	if !repo.items["n2"].Sent {
		t.Fatal("notification should be marked sent")
	}
}

func TestDeliverSkipsAlreadySent(t *testing.T) {
	push := &fakePush{}
	svc, repo := newDelivery(push)
	repo.items["n1"].Sent = true

	if err := svc.Deliver(context.Background(), "n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(push.sent) != 0 {
		t.Fatal("already sent notification was pushed again")
	}
}

func TestDeliverPushFailureLeavesUnsent(t *testing.T) {
	svc, repo := newDelivery(&fakePush{err: errors.New("fcm unavailable")})

	if err := svc.Deliver(context.Background(), "n1"); err == nil {
		t.Fatal("expected error")
	}
	if repo.items["n1"].Sent {
		t.Fatal("failed push must not be marked sent")
	}
}

func TestDeliverGone(t *testing.T) {
	svc, _ := newDelivery(nil)

	for _, id := range []string{"missing", "n3"} {
		if err := svc.Deliver(context.Background(), id); !errors.Is(err, ErrGone) {
			t.Errorf("%s: expected ErrGone, got %v", id, err)
		}
	}
}
