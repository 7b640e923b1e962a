package models

import "time"

type RefundStatus string

const (
	RefundPending  RefundStatus = "PENDING"
	RefundRejected RefundStatus = "REJECTED"
	RefundRefunded RefundStatus = "REFUNDED"
)

// RefundRequest is a customer dispute awaiting an administrator decision.
type RefundRequest struct {
	ID         string       `bson:"id" json:"id"`
	PaymentID  string       `bson:"paymentId" json:"paymentId"`
	CustomerID string       `bson:"customerId" json:"customerId"`
	ProviderID string       `bson:"providerId" json:"providerId"`
	Reason     string       `bson:"reason" json:"reason"`
	Status     RefundStatus `bson:"status" json:"status"`
	CreatedAt  time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// RefundResult is returned by the approve transition.
type RefundResult struct {
	PaymentID       string `json:"paymentId"`
	RefundRequestID string `json:"refundRequestId"`
	RefundedAmount  int64  `json:"refundedAmount"`
	GatewayRefundID string `json:"stripeRefundId"`
	AlreadyRefunded bool   `json:"alreadyRefunded"`
}
