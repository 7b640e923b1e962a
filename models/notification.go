package models

import "time"

const (
	NotificationNewBooking     = "new_booking"
	NotificationPaymentHeld    = "payment_held"
	NotificationPaymentRequest = "payment_requested"
	NotificationFundsReleased  = "funds_released"
	NotificationPayoutSent     = "payout_sent"
	NotificationRefundApproved = "refund_approved"
	NotificationRefundRejected = "refund_rejected"
)

// Notification is stored in the same transaction as the transition that produced it
// and delivered afterwards by the notification worker.
type Notification struct {
	ID         string    `bson:"id" json:"id"`
	ReceiverID string    `bson:"receiverId" json:"receiverId"`
	SenderID   string    `bson:"senderId,omitempty" json:"senderId,omitempty"`
	Type       string    `bson:"type" json:"type"`
	Title      string    `bson:"title" json:"title"`
	Body       string    `bson:"body" json:"body"`
	Sent       bool      `bson:"sent" json:"sent"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
